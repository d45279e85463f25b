package journal

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RunSummary is one row of the runs table.
type RunSummary struct {
	ID           string
	Source       string
	AccountID    string
	CreatedAt    time.Time
	Lines        int
	Events       int
	Records      int
	Advisories   int
	TotalPL      float64
	FinalBalance *float64
}

const runColumns = `run_id, source, account_id, created_at, lines, events, records, advisories, total_pl, final_balance`

// GetRun returns a single run by ID.
func (j *SQLite) GetRun(ctx context.Context, runID string) (RunSummary, error) {
	row := j.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID)

	rs, err := scanRun(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return RunSummary{}, fmt.Errorf("run %q not found", runID)
		}
		return RunSummary{}, err
	}
	return rs, nil
}

// ListRuns returns every run, oldest first.
func (j *SQLite) ListRuns(ctx context.Context) ([]RunSummary, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY created_at ASC, run_id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		rs, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rs)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListRecords returns the journal rows of a run in their original order.
func (j *SQLite) ListRecords(ctx context.Context, runID string) ([]Record, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT timestamp, order_id, action, direction, type, instrument,
		       volume, price, tp, sl, notes, balance_after_close, pl
		FROM records
		WHERE run_id = ?
		ORDER BY seq ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			rec                         Record
			action                      string
			orderID                     sql.NullInt64
			vol, price, tp, sl, bal, pl sql.NullFloat64
		)
		if err := rows.Scan(
			&rec.Timestamp,
			&orderID,
			&action,
			&rec.Direction,
			&rec.Type,
			&rec.Instrument,
			&vol, &price, &tp, &sl,
			&rec.Notes,
			&bal, &pl,
		); err != nil {
			return nil, err
		}
		rec.Action = Action(action)
		if orderID.Valid {
			rec.OrderID = ptr(orderID.Int64)
		}
		rec.Volume = nullFloat(vol)
		rec.Price = nullFloat(price)
		rec.TakeProfit = nullFloat(tp)
		rec.StopLoss = nullFloat(sl)
		rec.BalanceAfterClose = nullFloat(bal)
		rec.PL = nullFloat(pl)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListAdvisories returns the advisories of a run in emission order.
func (j *SQLite) ListAdvisories(ctx context.Context, runID string) ([]Advisory, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT severity, timestamp, line, message, order_ids, delta
		FROM advisories
		WHERE run_id = ?
		ORDER BY seq ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Advisory
	for rows.Next() {
		var (
			a        Advisory
			severity string
			ids      string
			delta    sql.NullFloat64
		)
		if err := rows.Scan(&severity, &a.Timestamp, &a.Line, &a.Message, &ids, &delta); err != nil {
			return nil, err
		}
		a.Severity = ParseSeverity(severity)
		if a.OrderIDs, err = parseIDs(ids); err != nil {
			return nil, fmt.Errorf("advisory order ids: %w", err)
		}
		a.Delta = nullFloat(delta)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (RunSummary, error) {
	var (
		rs  RunSummary
		bal sql.NullFloat64
	)
	err := s.Scan(
		&rs.ID,
		&rs.Source,
		&rs.AccountID,
		&rs.CreatedAt,
		&rs.Lines,
		&rs.Events,
		&rs.Records,
		&rs.Advisories,
		&rs.TotalPL,
		&bal,
	)
	rs.FinalBalance = nullFloat(bal)
	return rs, err
}

func nullFloat(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	return ptr(n.Float64)
}

// parseIDs reverses joinIDs.
func parseIDs(s string) ([]int64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
