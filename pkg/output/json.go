package output

import (
	"context"
	"encoding/json"
	"io"

	"github.com/bandicoot-project/bandicoot/pkg/ingest"
	"github.com/bandicoot-project/bandicoot/pkg/report"
)

// JSONFormatter formats results as JSON.
type JSONFormatter struct {
	opts FormatOptions
}

// NewJSONFormatter creates a new JSON formatter with the given options.
func NewJSONFormatter(opts FormatOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Name returns the format name.
func (f *JSONFormatter) Name() string {
	return "json"
}

// FormatSweep renders a sweep report as JSON.
func (f *JSONFormatter) FormatSweep(_ context.Context, sweep *ingest.SweepReport, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if f.opts.Quiet {
		// Quiet mode: just the summary
		return encoder.Encode(sweep.Summary)
	}

	return encoder.Encode(sweep)
}

// FormatRecords renders a record listing as JSON. Raw report text is bulky
// and omitted unless Verbose is set.
func (f *JSONFormatter) FormatRecords(_ context.Context, records []report.CrashRecord, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if !f.opts.Verbose {
		trimmed := make([]report.CrashRecord, len(records))
		copy(trimmed, records)
		for i := range trimmed {
			trimmed[i].RawText = ""
		}
		records = trimmed
	}

	return encoder.Encode(records)
}
