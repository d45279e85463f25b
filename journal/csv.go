package journal

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// CSVJournal writes one run's table to a CSV file.
type CSVJournal struct {
	w       *csv.Writer
	f       *os.File
	written bool
}

func NewCSV(path string) (*CSVJournal, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &CSVJournal{w: csv.NewWriter(f), f: f}, nil
}

func (j *CSVJournal) RecordRun(ctx context.Context, run Run) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if j.written {
		return fmt.Errorf("csv journal %s already holds a run", j.f.Name())
	}
	j.written = true
	return writeTable(j.w, run.Result.Table)
}

func (j *CSVJournal) Close() error {
	j.w.Flush()
	if err := j.w.Error(); err != nil {
		return err
	}
	return j.f.Close()
}

// WriteCSV writes the header row followed by every row of t.
func WriteCSV(w io.Writer, t Table) error {
	return writeTable(csv.NewWriter(w), t)
}

func writeTable(w *csv.Writer, t Table) error {
	if err := w.Write(Columns); err != nil {
		return err
	}
	for _, r := range t.Rows {
		if err := w.Write(r.Cells()); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
