// Package journal rebuilds a trading journal from classified log events and
// writes it to CSV, SQLite or Org-mode.
package journal

// Action is the journal action column.
type Action string

const (
	ActionPlaceMod    Action = "Place/Mod"
	ActionOpen        Action = "Open"
	ActionClose       Action = "Close"
	ActionCloseOK     Action = "Close OK"
	ActionDeleteReq   Action = "Delete Req"
	ActionDeleteOK    Action = "Delete OK"
	ActionCloseAllReq Action = "Close All Req"
)

// Values of the Type column written by the builder.
const (
	TypeLimitHit   = "Limit Hit"
	TypeMarketGap  = "Market?/Gap?"
	TypeLimitStop  = "Limit/Stop"
	TypeLimitOrder = "Limit"
	TypeStopOrder  = "Stop"
)

// Record is one journal row. Nil pointers are empty cells.
type Record struct {
	Timestamp  string
	OrderID    *int64
	Action     Action
	Direction  string
	Type       string
	Instrument string
	Volume     *float64
	Price      *float64
	TakeProfit *float64
	StopLoss   *float64
	Notes      string

	// Set only by P/L attribution on Close records.
	BalanceAfterClose *float64
	PL                *float64
}

// Attributed reports whether the record carries a realized P/L.
func (r Record) Attributed() bool {
	return r.PL != nil
}

func ptr[T any](v T) *T {
	return &v
}
