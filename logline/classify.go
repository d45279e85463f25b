package logline

import (
	"regexp"
	"strconv"
	"strings"
)

// TimestampLayout is the envelope timestamp in time.Parse form. Timestamps are
// kept as text because the layout already sorts lexically.
const TimestampLayout = "2006.01.02 15:04:05.000"

var envelope = regexp.MustCompile(
	`^(\d{4}\.\d{2}\.\d{2} \d{2}:\d{2}:\d{2}\.\d{3})\s+` +
		`(Debug|Service|Trade|User_action)\s+` +
		`'(\d+)':\s+` +
		`(.*)$`)

var (
	rxBalanceInit = regexp.MustCompile(`account balance ([\d.]+) USD`)
	rxBalanceUpd  = regexp.MustCompile(`upd account info balance ([\d.]+)`)
	rxModify      = regexp.MustCompile(`^modify event #(\d+) (buy|sell) +(?:(limit|stop) +)?([\d.]+) lots (\S+) at ([\d.]+) tp: ([\d.]+) sl: ([\d.]+)`)
	rxOpen        = regexp.MustCompile(`^open event #(\d+) (buy|sell) ([\d.]+) lots (\S+) at ([\d.]+)`)
	rxClose       = regexp.MustCompile(`^close event #(\d+) (buy|sell) ([\d.]+) lots (\S+) at ([\d.]+) by (\S+)`)
	rxCloseAllOK  = regexp.MustCompile(`^success close #(\d+) (.*) at ([\d.]+)`)
	rxCloseAllSum = regexp.MustCompile(`^close (\d+) from (\d+) \{.*\}`)
	rxDeleteReq   = regexp.MustCompile(`^request delete #(\d+) (.*)`)
	rxDeleteOK    = regexp.MustCompile(`^success delete #(\d+) (.*)`)
	rxCloseAllReq = regexp.MustCompile(`^request close all orders positions`)
)

// rule pairs an inner pattern with the function that fills the event from
// its submatches. fill returns false when a captured number does not parse.
type rule struct {
	re   *regexp.Regexp
	fill func(m []string, ev *Event) bool
}

// rules lists inner patterns per level in priority order. Balance patterns
// come first for Trade; delete and close-all requests come first for
// User_action. Debug lines have no rules.
var rules = map[Level][]rule{
	LevelService: {
		{rxBalanceInit, fillBalance(ServiceBalanceInit)},
	},
	LevelTrade: {
		{rxBalanceUpd, fillBalance(TradeBalanceUpdate)},
		{rxModify, fillModify},
		{rxOpen, fillOpen},
		{rxClose, fillClose},
		{rxCloseAllOK, fillCloseAllOK},
		{rxCloseAllSum, fillCloseAllSummary},
	},
	LevelUserAction: {
		{rxDeleteReq, fillDelete(DeleteRequested)},
		{rxDeleteOK, fillDelete(DeleteConfirmed)},
		{rxCloseAllReq, func(_ []string, ev *Event) bool {
			ev.Kind = CloseAllRequested
			return true
		}},
	},
}

// Classify turns one raw line into an Event. lineNum is 1-based and only
// carried through for diagnostics. Classify never fails: lines outside the
// envelope come back as NotALogLine, everything else that does not match
// cleanly as Unrecognized.
func Classify(lineNum int, raw string) Event {
	ev := Event{Line: lineNum, Kind: NotALogLine}

	m := envelope.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return ev
	}

	ev.Kind = Unrecognized
	ev.Timestamp = m[1]
	ev.Level = Level(m[2])
	ev.AccountID = m[3]
	ev.Message = m[4]

	for _, r := range rules[ev.Level] {
		sub := r.re.FindStringSubmatch(ev.Message)
		if sub == nil {
			continue
		}
		if !r.fill(sub, &ev) {
			return clearPayload(ev)
		}
		return ev
	}
	return ev
}

// clearPayload drops partially filled fields so an Unrecognized event never
// carries half a payload.
func clearPayload(ev Event) Event {
	return Event{
		Line:      ev.Line,
		Kind:      Unrecognized,
		Timestamp: ev.Timestamp,
		Level:     ev.Level,
		AccountID: ev.AccountID,
		Message:   ev.Message,
	}
}

func fillBalance(kind Kind) func([]string, *Event) bool {
	return func(m []string, ev *Event) bool {
		var ok bool
		if ev.Balance, ok = parseFloat(m[1]); !ok {
			return false
		}
		ev.Kind = kind
		return true
	}
}

func fillModify(m []string, ev *Event) bool {
	var ok bool
	if ev.OrderID, ok = parseID(m[1]); !ok {
		return false
	}
	ev.Direction = m[2]
	ev.OrderKind = m[3]
	if ev.Volume, ok = parseFloat(m[4]); !ok {
		return false
	}
	ev.Instrument = m[5]
	if ev.Price, ok = parseFloat(m[6]); !ok {
		return false
	}
	if ev.TakeProfit, ok = parseFloat(m[7]); !ok {
		return false
	}
	if ev.StopLoss, ok = parseFloat(m[8]); !ok {
		return false
	}
	ev.Kind = OrderPlacedOrModified
	return true
}

func fillOpen(m []string, ev *Event) bool {
	var ok bool
	if ev.OrderID, ok = parseID(m[1]); !ok {
		return false
	}
	ev.Direction = m[2]
	if ev.Volume, ok = parseFloat(m[3]); !ok {
		return false
	}
	ev.Instrument = m[4]
	if ev.Price, ok = parseFloat(m[5]); !ok {
		return false
	}
	ev.Kind = OrderOpened
	return true
}

func fillClose(m []string, ev *Event) bool {
	if !fillOpen(m[:6], ev) {
		return false
	}
	ev.ClosedBy = m[6]
	ev.Kind = OrderClosed
	return true
}

func fillCloseAllOK(m []string, ev *Event) bool {
	var ok bool
	if ev.OrderID, ok = parseID(m[1]); !ok {
		return false
	}
	ev.Details = m[2]
	if ev.Price, ok = parseFloat(m[3]); !ok {
		return false
	}
	ev.PriceText = m[3]
	ev.Kind = CloseAllConfirmed
	return true
}

func fillCloseAllSummary(m []string, ev *Event) bool {
	closed, err := strconv.Atoi(m[1])
	if err != nil {
		return false
	}
	total, err := strconv.Atoi(m[2])
	if err != nil {
		return false
	}
	ev.Closed, ev.Total = closed, total
	ev.Kind = CloseAllSummary
	return true
}

func fillDelete(kind Kind) func([]string, *Event) bool {
	return func(m []string, ev *Event) bool {
		var ok bool
		if ev.OrderID, ok = parseID(m[1]); !ok {
			return false
		}
		ev.Details = m[2]
		ev.Kind = kind
		return true
	}
}

// parseFloat accepts the [\d.]+ captures; "1.2.3" and "." are rejected.
func parseFloat(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	return v, err == nil
}

func parseID(s string) (int64, bool) {
	v, err := strconv.ParseInt(s, 10, 64)
	return v, err == nil
}
