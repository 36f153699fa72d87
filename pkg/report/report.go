// Package report defines the core entities of the crash-report pipeline:
// raw inputs, recognized dialects, partially extracted fields, and the
// normalized record that gets stored.
package report

import "time"

// UnknownValue is the sentinel substituted for fields that could not be
// recovered from a report.
const UnknownValue = "<unknown>"

// Dialect identifies a recognized crash-report format.
type Dialect string

const (
	// DialectLegacyCrash is the classic fixed-label .crash text format.
	DialectLegacyCrash Dialect = "legacy_crash"

	// DialectDiagReport is the labeled diagnostic report format (.diag, .spin).
	DialectDiagReport Dialect = "diag_report"

	// DialectIPSReport is the JSON-header .ips format.
	DialectIPSReport Dialect = "ips_report"

	// DialectShutdownStall is the shutdown stall watchdog report format.
	DialectShutdownStall Dialect = "shutdown_stall"

	// DialectUnknown marks a report that matched no known format.
	// It is a valid terminal classification, not an error.
	DialectUnknown Dialect = "unknown"
)

// Dialects lists every recognized dialect, Unknown last.
func Dialects() []Dialect {
	return []Dialect{
		DialectLegacyCrash,
		DialectDiagReport,
		DialectIPSReport,
		DialectShutdownStall,
		DialectUnknown,
	}
}

// ParseDialect maps a user-supplied name to a Dialect.
// Returns false if the name matches no known dialect.
func ParseDialect(s string) (Dialect, bool) {
	for _, d := range Dialects() {
		if string(d) == s {
			return d, true
		}
	}
	return DialectUnknown, false
}

// RawReport is one candidate report as handed to the pipeline.
// The caller materializes the content; the pipeline never touches the
// filesystem. A RawReport is consumed once and never mutated.
type RawReport struct {
	// Path identifies the report for outcome reporting. It is not required
	// to be a real filesystem path.
	Path string

	// Bytes is the raw report content.
	Bytes []byte

	// DialectHint is derived from the file extension, if any.
	// The detector uses it only as a tie-breaker.
	DialectHint Dialect
}

// Fields holds values recovered from a report. Nil means the extractor could
// not locate the field; presence is tracked so the normalizer can tell an
// empty value from a missing one and apply sentinel policy uniformly.
type Fields struct {
	ProcessName       *string
	ExceptionType     *string
	TerminationReason *string
	CrashTime         *time.Time
}

// Warning records a partial-field recovery during extraction.
// Warnings are surfaced alongside the record and are never fatal.
type Warning struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (w Warning) String() string {
	return w.Field + ": " + w.Reason
}

// CrashRecord is the canonical normalized entity persisted by the store.
// Identity is the fingerprint, not the file path: report files rotate and
// get renamed across re-scans.
type CrashRecord struct {
	// ID is the store-assigned surrogate key. Zero before the first upsert.
	ID int64 `json:"id"`

	// Fingerprint is the stable dedup key derived from the normalized
	// fields and/or content.
	Fingerprint string `json:"fingerprint"`

	ProcessName       string `json:"process_name"`
	ExceptionType     string `json:"exception_type"`
	TerminationReason string `json:"termination_reason"`

	// CrashTime is when the report claims the crash occurred.
	// Epoch zero with TimeMissing set when unrecoverable.
	CrashTime   time.Time `json:"crash_time"`
	TimeMissing bool      `json:"time_missing"`

	Dialect Dialect `json:"dialect"`

	// RawText is the full original content, kept verbatim for display.
	RawText string `json:"raw_text,omitempty"`

	// Notation is free-text set through the annotate operation only.
	// It is the single field mutated after creation.
	Notation string `json:"notation"`

	// FirstSeenAt and LastSeenAt are storage-assigned.
	FirstSeenAt time.Time `json:"first_seen_at"`
	LastSeenAt  time.Time `json:"last_seen_at"`
}
