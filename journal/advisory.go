package journal

import "strings"

// Severity grades an Advisory.
type Severity int

const (
	// SeverityInfo marks an explained or harmless balance change.
	SeverityInfo Severity = iota
	// SeverityWarning marks P/L that could not be attributed.
	SeverityWarning
	// SeverityError marks a run that was abandoned.
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// ParseSeverity is the inverse of Severity.String. Unknown names map to info.
func ParseSeverity(s string) Severity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "warning", "warn":
		return SeverityWarning
	case "error":
		return SeverityError
	default:
		return SeverityInfo
	}
}

// Advisory is a non-fatal diagnostic produced while building a journal.
type Advisory struct {
	Severity  Severity
	Timestamp string
	Line      int
	Message   string
	OrderIDs  []int64
	Delta     *float64
}
