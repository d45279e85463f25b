// Package logline classifies single lines of a trading terminal activity log
// into typed events.
package logline

// Level is the severity column of the log envelope.
type Level string

const (
	LevelDebug      Level = "Debug"
	LevelService    Level = "Service"
	LevelTrade      Level = "Trade"
	LevelUserAction Level = "User_action"
)

// Kind tags which variant an Event holds.
type Kind int

const (
	// NotALogLine means the envelope did not match.
	NotALogLine Kind = iota
	// Unrecognized means the envelope matched but no inner pattern did, or a
	// captured number failed to parse.
	Unrecognized
	ServiceBalanceInit
	TradeBalanceUpdate
	OrderPlacedOrModified
	OrderOpened
	OrderClosed
	CloseAllConfirmed
	CloseAllSummary
	DeleteRequested
	DeleteConfirmed
	CloseAllRequested
)

var kindNames = [...]string{
	NotALogLine:           "NotALogLine",
	Unrecognized:          "Unrecognized",
	ServiceBalanceInit:    "ServiceBalanceInit",
	TradeBalanceUpdate:    "TradeBalanceUpdate",
	OrderPlacedOrModified: "OrderPlacedOrModified",
	OrderOpened:           "OrderOpened",
	OrderClosed:           "OrderClosed",
	CloseAllConfirmed:     "CloseAllConfirmed",
	CloseAllSummary:       "CloseAllSummary",
	DeleteRequested:       "DeleteRequested",
	DeleteConfirmed:       "DeleteConfirmed",
	CloseAllRequested:     "CloseAllRequested",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Kind(?)"
	}
	return kindNames[k]
}

// Recognized reports whether the kind carries journal information.
func (k Kind) Recognized() bool {
	return k != NotALogLine && k != Unrecognized
}

// Event is one classified line. Only the fields captured by the pattern
// that produced Kind are set; the rest stay at their zero value.
type Event struct {
	Line int
	Kind Kind

	// Envelope
	Timestamp string
	Level     Level
	AccountID string
	Message   string

	OrderID    int64
	Direction  string // "buy" or "sell"
	OrderKind  string // "limit", "stop" or empty
	Volume     float64
	Instrument string
	Price      float64
	PriceText  string // Price as written in the log
	TakeProfit float64
	StopLoss   float64
	ClosedBy   string
	Details    string
	Balance    float64

	// CloseAllSummary
	Closed int
	Total  int
}
