package journal

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite stores runs, their records and advisories.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

// RecordRun stores a run in a single transaction.
func (j *SQLite) RecordRun(ctx context.Context, run Run) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res := run.Result
	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(run_id, source, account_id, created_at, lines, events, records, advisories, total_pl, final_balance)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Source, res.AccountID, run.CreatedAt.UTC(),
		res.Stats.Lines, res.Stats.Events, res.Table.Len(), len(res.Advisories),
		res.Table.TotalPL(), res.FinalBalance,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	recStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records
		(run_id, seq, timestamp, order_id, action, direction, type, instrument,
		 volume, price, tp, sl, notes, balance_after_close, pl)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer recStmt.Close()

	for i, r := range res.Table.Rows {
		_, err := recStmt.ExecContext(ctx,
			run.ID, i, r.Timestamp, r.OrderID, string(r.Action), r.Direction, r.Type, r.Instrument,
			r.Volume, r.Price, r.TakeProfit, r.StopLoss, r.Notes, r.BalanceAfterClose, r.PL,
		)
		if err != nil {
			return fmt.Errorf("insert record %d: %w", i, err)
		}
	}

	advStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO advisories
		(run_id, seq, severity, timestamp, line, message, order_ids, delta)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer advStmt.Close()

	for i, a := range res.Advisories {
		_, err := advStmt.ExecContext(ctx,
			run.ID, i, a.Severity.String(), a.Timestamp, a.Line, a.Message,
			joinIDs(a.OrderIDs), a.Delta,
		)
		if err != nil {
			return fmt.Errorf("insert advisory %d: %w", i, err)
		}
	}

	return tx.Commit()
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
