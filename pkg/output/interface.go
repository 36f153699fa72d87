// Package output provides formatting for sweep reports and record listings.
package output

import (
	"context"
	"io"

	"github.com/bandicoot-project/bandicoot/pkg/ingest"
	"github.com/bandicoot-project/bandicoot/pkg/report"
)

// Formatter renders results in a specific format.
type Formatter interface {
	// FormatSweep renders a sweep report to the given writer.
	FormatSweep(ctx context.Context, sweep *ingest.SweepReport, w io.Writer) error

	// FormatRecords renders a record listing to the given writer.
	FormatRecords(ctx context.Context, records []report.CrashRecord, w io.Writer) error

	// Name returns the format name (text, json).
	Name() string
}

// FormatOptions controls formatter behavior.
type FormatOptions struct {
	// Verbose enables detailed output including known reports and raw
	// fingerprints.
	Verbose bool

	// Quiet enables minimal summary-only output.
	Quiet bool
}
