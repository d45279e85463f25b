package journal

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/rustyeddy/tradelog/logline"
)

var (
	// ErrNoInput means no log was supplied at all.
	ErrNoInput = errors.New("no log file supplied")
	// ErrDecode means the log content could not be decoded as text.
	ErrDecode = errors.New("error decoding file: the log must be UTF-8 encoded")
)

// Result is everything a build produces.
type Result struct {
	Table      Table
	Advisories []Advisory
	AccountID  string
	Stats      Stats

	// State left over at the end of the log.
	PendingOrders []int64
	OpenPositions []int64
	FinalBalance  *float64
}

// Failed reports whether the build was abandoned.
func (r Result) Failed() bool {
	for _, a := range r.Advisories {
		if a.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Decode turns raw log bytes into text. A UTF-8 BOM is dropped; content with
// a UTF-16 BOM is transcoded. Anything else must be valid UTF-8.
func Decode(content []byte) (string, error) {
	if !hasUTF16BOM(content) && !utf8.Valid(content) {
		return "", ErrDecode
	}
	out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), content)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return string(out), nil
}

func hasUTF16BOM(b []byte) bool {
	return bytes.HasPrefix(b, []byte{0xFF, 0xFE}) || bytes.HasPrefix(b, []byte{0xFE, 0xFF})
}

// Process decodes content and builds its journal. Only decoding can fail;
// everything wrong inside the log ends up as skipped lines or advisories.
func Process(content []byte, log zerolog.Logger) (Result, error) {
	text, err := Decode(content)
	if err != nil {
		return Result{}, err
	}
	return Build(text, log), nil
}

// classify is swapped out by tests that need a failing classifier.
var classify = logline.Classify

// Build runs a fresh Builder over every line of text, top to bottom. An
// internal fault is turned into a single error advisory and an empty table.
func Build(text string, log zerolog.Logger) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("journal build aborted")
			res = Result{
				Advisories: []Advisory{{
					Severity: SeverityError,
					Message:  fmt.Sprintf("An error occurred during log processing: %v", r),
				}},
			}
		}
	}()

	b := NewBuilder(log)
	for i, line := range splitLines(text) {
		b.Apply(classify(i+1, line))
	}

	records, advisories := b.Finish()
	res = Result{
		Table:         NewTable(records),
		Advisories:    advisories,
		AccountID:     b.AccountID(),
		Stats:         b.Stats(),
		PendingOrders: b.PendingOrders(),
		OpenPositions: b.OpenPositions(),
	}
	if bal, ok := b.Balance(); ok {
		res.FinalBalance = ptr(bal)
	}
	return res
}

// splitLines breaks text at "\r\n", "\r" or "\n". A break at the very end
// does not start an extra empty line.
func splitLines(text string) []string {
	var out []string
	for len(text) > 0 {
		i := strings.IndexAny(text, "\r\n")
		if i < 0 {
			out = append(out, text)
			break
		}
		out = append(out, text[:i])
		if text[i] == '\r' && i+1 < len(text) && text[i+1] == '\n' {
			i++
		}
		text = text[i+1:]
	}
	return out
}
