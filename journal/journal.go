package journal

import (
	"context"
	"time"
)

// Run is one build of one log, ready to be recorded.
type Run struct {
	ID        string
	Source    string
	CreatedAt time.Time
	Result    Result
}

// Sink receives finished runs.
type Sink interface {
	RecordRun(ctx context.Context, run Run) error
	Close() error
}

// MultiSink fans a run out to several sinks, stopping at the first error.
type MultiSink []Sink

func (m MultiSink) RecordRun(ctx context.Context, run Run) error {
	for _, s := range m {
		if err := s.RecordRun(ctx, run); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink and returns the first error.
func (m MultiSink) Close() error {
	var first error
	for _, s := range m {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
