package journal

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/tradelog/logline"
)

// Stats counts what a build saw.
type Stats struct {
	Lines               int
	EnvelopeLines       int
	Events              int
	ForeignAccountLines int
}

// Skipped is the number of lines that produced no event.
func (s Stats) Skipped() int {
	return s.Lines - s.Events
}

type balanceUpdate struct {
	timestamp string
	line      int
	balance   float64
}

// window buffers balance updates that arrived while several closes were
// queued. It settles FIFO once it holds one update per queued close.
type window struct {
	baseline float64
	size     int
	updates  []balanceUpdate
}

func (w *window) last() balanceUpdate {
	return w.updates[len(w.updates)-1]
}

// Builder folds classified events, in file order, into journal records.
// A Builder holds the state of a single run and must not be reused.
type Builder struct {
	log zerolog.Logger

	records    []Record
	advisories []Advisory

	// order id -> index into records
	pending map[int64]int
	open    map[int64]int

	queue  []int64
	window *window

	balance     float64
	haveBalance bool

	accountID string
	stats     Stats
	finished  bool
}

// NewBuilder returns an empty Builder. Pass zerolog.Nop() for silence.
func NewBuilder(log zerolog.Logger) *Builder {
	return &Builder{
		log:     log.With().Str("component", "journal").Logger(),
		pending: make(map[int64]int),
		open:    make(map[int64]int),
	}
}

// AccountID is the first account id seen in the envelope.
func (b *Builder) AccountID() string {
	return b.accountID
}

// Stats returns the counters gathered so far.
func (b *Builder) Stats() Stats {
	return b.stats
}

// Balance returns the running balance, if one has been seen.
func (b *Builder) Balance() (float64, bool) {
	return b.balance, b.haveBalance
}

// PendingOrders returns the ids of placed orders that were neither filled
// nor deleted, ascending.
func (b *Builder) PendingOrders() []int64 {
	return sortedKeys(b.pending)
}

// OpenPositions returns the ids of opened positions with no close, ascending.
func (b *Builder) OpenPositions() []int64 {
	return sortedKeys(b.open)
}

// Apply consumes the next event.
func (b *Builder) Apply(ev logline.Event) {
	b.stats.Lines++
	if ev.Kind == logline.NotALogLine {
		return
	}
	b.stats.EnvelopeLines++

	if b.accountID == "" {
		b.accountID = ev.AccountID
	} else if ev.AccountID != b.accountID {
		b.stats.ForeignAccountLines++
	}

	if !ev.Kind.Recognized() {
		return
	}
	b.stats.Events++

	b.log.Debug().
		Int("line", ev.Line).
		Str("kind", ev.Kind.String()).
		Int64("order", ev.OrderID).
		Msg("event")

	switch ev.Kind {
	case logline.ServiceBalanceInit:
		if !b.haveBalance {
			b.balance = ev.Balance
			b.haveBalance = true
		}
	case logline.TradeBalanceUpdate:
		b.onBalanceUpdate(ev)
	case logline.OrderPlacedOrModified:
		b.onPlaced(ev)
	case logline.OrderOpened:
		b.onOpened(ev)
	case logline.OrderClosed:
		b.onClosed(ev)
	case logline.CloseAllConfirmed:
		b.onCloseConfirmed(ev)
	case logline.CloseAllSummary:
		if ev.Closed < ev.Total {
			b.advise(Advisory{
				Severity:  SeverityInfo,
				Timestamp: ev.Timestamp,
				Line:      ev.Line,
				Message: fmt.Sprintf("Close all at %s closed %d of %d positions; the rest remain open.",
					ev.Timestamp, ev.Closed, ev.Total),
			})
		}
	case logline.DeleteRequested:
		b.append(Record{
			Timestamp: ev.Timestamp,
			OrderID:   ptr(ev.OrderID),
			Action:    ActionDeleteReq,
			Notes:     "User: " + ev.Details,
		})
	case logline.DeleteConfirmed:
		delete(b.pending, ev.OrderID)
		b.append(Record{
			Timestamp: ev.Timestamp,
			OrderID:   ptr(ev.OrderID),
			Action:    ActionDeleteOK,
			Notes:     "Success: " + ev.Details,
		})
	case logline.CloseAllRequested:
		b.append(Record{
			Timestamp: ev.Timestamp,
			Action:    ActionCloseAllReq,
			Notes:     "User requested close all",
		})
	}
}

// Finish settles any buffered attribution and returns the records and
// advisories. Calling Finish twice returns the same values.
func (b *Builder) Finish() ([]Record, []Advisory) {
	if !b.finished {
		b.finished = true
		if b.window != nil {
			b.abandonWindow()
		}
	}
	return b.records, b.advisories
}

func (b *Builder) onPlaced(ev logline.Event) {
	idx := b.append(Record{
		Timestamp:  ev.Timestamp,
		OrderID:    ptr(ev.OrderID),
		Action:     ActionPlaceMod,
		Direction:  capitalize(ev.Direction),
		Type:       orderType(ev.OrderKind),
		Instrument: ev.Instrument,
		Volume:     ptr(ev.Volume),
		Price:      ptr(ev.Price),
		TakeProfit: ptr(ev.TakeProfit),
		StopLoss:   ptr(ev.StopLoss),
	})
	b.pending[ev.OrderID] = idx
}

func (b *Builder) onOpened(ev logline.Event) {
	rec := Record{
		Timestamp:  ev.Timestamp,
		OrderID:    ptr(ev.OrderID),
		Action:     ActionOpen,
		Direction:  capitalize(ev.Direction),
		Type:       TypeMarketGap,
		Instrument: ev.Instrument,
		Volume:     ptr(ev.Volume),
		Price:      ptr(ev.Price),
	}
	if p, ok := b.pending[ev.OrderID]; ok {
		placed := b.records[p]
		rec.Type = TypeLimitHit
		rec.TakeProfit = placed.TakeProfit
		rec.StopLoss = placed.StopLoss
		delete(b.pending, ev.OrderID)
	}
	b.open[ev.OrderID] = b.append(rec)
}

func (b *Builder) onClosed(ev logline.Event) {
	// A new close breaks an unfilled window: its updates can no longer be
	// matched one-to-one with the closes before it.
	if b.window != nil {
		b.abandonWindow()
	}

	delete(b.open, ev.OrderID)
	b.append(Record{
		Timestamp:  ev.Timestamp,
		OrderID:    ptr(ev.OrderID),
		Action:     ActionClose,
		Direction:  capitalize(ev.Direction),
		Instrument: ev.Instrument,
		Volume:     ptr(ev.Volume),
		Price:      ptr(ev.Price),
		Notes:      "Closed by " + ev.ClosedBy,
	})
	b.queue = append(b.queue, ev.OrderID)
}

func (b *Builder) onCloseConfirmed(ev logline.Event) {
	price := ev.PriceText
	if price == "" {
		price = formatNum(ev.Price)
	}
	for i := len(b.records) - 1; i >= 0; i-- {
		r := &b.records[i]
		if r.Action == ActionClose && r.OrderID != nil && *r.OrderID == ev.OrderID {
			r.Notes += ". Close OK @ " + price
			return
		}
	}
	b.append(Record{
		Timestamp: ev.Timestamp,
		OrderID:   ptr(ev.OrderID),
		Action:    ActionCloseOK,
		Notes:     "Part of Close All. Confirmed @ " + price,
	})
}

func (b *Builder) onBalanceUpdate(ev logline.Event) {
	upd := balanceUpdate{timestamp: ev.Timestamp, line: ev.Line, balance: ev.Balance}

	if !b.haveBalance {
		b.balance = upd.balance
		b.haveBalance = true
		return
	}

	if b.window != nil {
		b.window.updates = append(b.window.updates, upd)
		b.balance = upd.balance
		if len(b.window.updates) == b.window.size {
			b.settleWindow()
		}
		return
	}

	switch len(b.queue) {
	case 0:
		if upd.balance != b.balance {
			delta := round2(upd.balance - b.balance)
			b.advise(Advisory{
				Severity:  SeverityInfo,
				Timestamp: upd.timestamp,
				Line:      upd.line,
				Delta:     ptr(delta),
				Message: fmt.Sprintf("Balance changed by %.2f at %s without a directly preceding logged close event "+
					"(potentially occurred during connection gap or external action).", delta, upd.timestamp),
			})
		}
	case 1:
		id := b.queue[0]
		if idx, ok := b.findUnattributedClose(id, nil); ok {
			b.attribute(idx, b.balance, upd.balance)
			b.queue = b.queue[:0]
		} else {
			b.abandon(upd, upd.balance-b.balance)
		}
	default:
		b.window = &window{
			baseline: b.balance,
			size:     len(b.queue),
			updates:  []balanceUpdate{upd},
		}
		b.log.Debug().
			Int("line", upd.line).
			Int("queued", len(b.queue)).
			Msg("deferring attribution")
	}
	b.balance = upd.balance
}

// settleWindow attributes a full window FIFO: the i-th queued close gets the
// i-th buffered update, each measured from the balance before it. Either
// every close is attributed or none is.
func (b *Builder) settleWindow() {
	w := b.window
	idxs := make([]int, 0, w.size)
	taken := make(map[int]bool, w.size)
	for _, id := range b.queue[:w.size] {
		idx, ok := b.findUnattributedClose(id, taken)
		if !ok {
			b.abandonWindow()
			return
		}
		taken[idx] = true
		idxs = append(idxs, idx)
	}

	prev := w.baseline
	for i, idx := range idxs {
		b.attribute(idx, prev, w.updates[i].balance)
		prev = w.updates[i].balance
	}
	b.queue = b.queue[w.size:]
	b.window = nil
}

func (b *Builder) abandonWindow() {
	w := b.window
	b.window = nil
	b.abandon(w.last(), w.last().balance-w.baseline)
}

// abandon gives up on every queued close. Nothing is reported when the
// balance ended where it started.
func (b *Builder) abandon(at balanceUpdate, delta float64) {
	delta = round2(delta)
	ids := slices.Clone(b.queue)
	b.queue = b.queue[:0]
	if delta == 0 {
		b.log.Debug().
			Int("line", at.line).
			Ints64("orders", ids).
			Msg("unattributed closes, balance unchanged")
		return
	}
	b.advise(Advisory{
		Severity:  SeverityWarning,
		Timestamp: at.timestamp,
		Line:      at.line,
		OrderIDs:  ids,
		Delta:     ptr(delta),
		Message: fmt.Sprintf("Balance changed by %.2f at %s, but could not attribute P/L directly to a single recent "+
			"close event (IDs: %s). Manual review might be needed for precise P/L split.", delta, at.timestamp, joinIDs(ids)),
	})
}

func (b *Builder) attribute(idx int, before, after float64) {
	r := &b.records[idx]
	r.PL = ptr(round2(after - before))
	r.BalanceAfterClose = ptr(after)
	b.log.Debug().
		Int64("order", *r.OrderID).
		Float64("pl", *r.PL).
		Msg("attributed")
}

// findUnattributedClose scans backwards for the newest Close of id that has
// no P/L yet and is not in skip.
func (b *Builder) findUnattributedClose(id int64, skip map[int]bool) (int, bool) {
	for i := len(b.records) - 1; i >= 0; i-- {
		r := b.records[i]
		if r.Action != ActionClose || r.OrderID == nil || *r.OrderID != id {
			continue
		}
		if r.PL != nil || skip[i] {
			continue
		}
		return i, true
	}
	return 0, false
}

func (b *Builder) append(r Record) int {
	b.records = append(b.records, r)
	return len(b.records) - 1
}

func (b *Builder) advise(a Advisory) {
	b.advisories = append(b.advisories, a)
}

func orderType(kind string) string {
	switch kind {
	case "limit":
		return TypeLimitOrder
	case "stop":
		return TypeStopOrder
	default:
		return TypeLimitStop
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ", ")
}

func sortedKeys(m map[int64]int) []int64 {
	out := make([]int64, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}
