package journal

import (
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/tradelog/logline"
)

// FormatCloseOrg renders a Close record as an Org-mode block suitable for
// pasting into a journal. Structured facts live in the PROPERTIES drawer;
// the Review heading is left for the trader.
func FormatCloseOrg(r Record) string {
	id := "?"
	if r.OrderID != nil {
		id = fmt.Sprint(*r.OrderID)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "** Close: %s %s (#%s)\n", r.Direction, r.Instrument, id)
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":ORDER_ID: %s\n", id)
	fmt.Fprintf(&b, ":CLOSED: %s\n", orgTime(r.Timestamp))
	fmt.Fprintf(&b, ":INSTRUMENT: %s\n", r.Instrument)
	fmt.Fprintf(&b, ":DIRECTION: %s\n", r.Direction)
	fmt.Fprintf(&b, ":VOLUME: %s\n", optNum(r.Volume))
	fmt.Fprintf(&b, ":PRICE: %s\n", optNum(r.Price))
	fmt.Fprintf(&b, ":BALANCE_AFTER: %s\n", orUnknown(optMoney(r.BalanceAfterClose)))
	fmt.Fprintf(&b, ":REALIZED_PL: %s\n", orUnknown(optMoney(r.PL)))
	fmt.Fprintf(&b, ":NOTES: %s\n", r.Notes)
	b.WriteString(":END:\n")
	b.WriteString("\n")
	b.WriteString("*** Review\n- \n")

	return b.String()
}

// FormatClosesOrg renders every Close record separated by blank lines.
func FormatClosesOrg(records []Record) string {
	var b strings.Builder
	n := 0
	for _, r := range records {
		if r.Action != ActionClose {
			continue
		}
		if n > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatCloseOrg(r))
		n++
	}
	return b.String()
}

// orgTime converts a log timestamp into an inactive Org timestamp. Text that
// does not parse is returned unchanged.
func orgTime(ts string) string {
	t, err := time.Parse(logline.TimestampLayout, ts)
	if err != nil {
		return ts
	}
	return t.Format("[2006-01-02 Mon 15:04:05]")
}

func orUnknown(s string) string {
	if s == "" {
		return "(unattributed)"
	}
	return s
}
