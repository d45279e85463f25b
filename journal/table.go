package journal

import (
	"math"
	"strconv"
)

// Columns is the fixed column order of a journal table.
var Columns = []string{
	"Timestamp",
	"Order/Pos ID",
	"Action",
	"Direction",
	"Type",
	"Instrument",
	"Volume",
	"Price",
	"TP",
	"SL",
	"Notes",
	"Balance After Close",
	"P/L ($)",
}

// Table is the assembled, ordered journal.
type Table struct {
	Rows []Record
}

// NewTable copies records into a table. Non-finite numbers become empty
// cells instead of failing the table.
func NewTable(records []Record) Table {
	rows := make([]Record, len(records))
	for i, r := range records {
		r.Volume = finite(r.Volume)
		r.Price = finite(r.Price)
		r.TakeProfit = finite(r.TakeProfit)
		r.StopLoss = finite(r.StopLoss)
		r.BalanceAfterClose = finite(r.BalanceAfterClose)
		r.PL = finite(r.PL)
		rows[i] = r
	}
	return Table{Rows: rows}
}

func (t Table) Len() int {
	return len(t.Rows)
}

func (t Table) Empty() bool {
	return len(t.Rows) == 0
}

// Closes returns the Close rows in table order.
func (t Table) Closes() []Record {
	var out []Record
	for _, r := range t.Rows {
		if r.Action == ActionClose {
			out = append(out, r)
		}
	}
	return out
}

// TotalPL sums attributed P/L.
func (t Table) TotalPL() float64 {
	var sum float64
	for _, r := range t.Rows {
		if r.PL != nil {
			sum += *r.PL
		}
	}
	return round2(sum)
}

// Cells renders the record in Columns order. Money columns keep two
// decimals; missing values are empty strings.
func (r Record) Cells() []string {
	id := ""
	if r.OrderID != nil {
		id = strconv.FormatInt(*r.OrderID, 10)
	}
	return []string{
		r.Timestamp,
		id,
		string(r.Action),
		r.Direction,
		r.Type,
		r.Instrument,
		optNum(r.Volume),
		optNum(r.Price),
		optNum(r.TakeProfit),
		optNum(r.StopLoss),
		r.Notes,
		optMoney(r.BalanceAfterClose),
		optMoney(r.PL),
	}
}

func finite(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	return v
}

func optNum(v *float64) string {
	if v == nil {
		return ""
	}
	return formatNum(*v)
}

func optMoney(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}
