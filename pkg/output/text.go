package output

import (
	"context"
	"fmt"
	"io"

	"github.com/bandicoot-project/bandicoot/pkg/ingest"
	"github.com/bandicoot-project/bandicoot/pkg/report"
)

// TextFormatter formats results as human-readable text.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// FormatSweep renders a sweep report as text.
func (f *TextFormatter) FormatSweep(_ context.Context, sweep *ingest.SweepReport, w io.Writer) error {
	if f.opts.Quiet {
		return f.sweepSummary(sweep, w)
	}

	for _, out := range sweep.Outcomes {
		// Known, clean reports are noise unless asked for.
		if !f.opts.Verbose && !out.IsNew && len(out.Warnings) == 0 && out.Err == nil {
			continue
		}

		status := "known"
		switch {
		case out.Err != nil:
			status = "failed"
		case out.IsNew:
			status = "new"
		}
		fmt.Fprintf(w, "%-6s %-14s %s\n", status, out.Dialect, out.Path)

		if out.Err != nil {
			fmt.Fprintf(w, "       error: %v\n", out.Err)
		}
		for _, warn := range out.Warnings {
			fmt.Fprintf(w, "       warning: %s\n", warn)
		}
		if f.opts.Verbose && out.Fingerprint != "" {
			fmt.Fprintf(w, "       fingerprint: %s\n", out.Fingerprint)
		}
	}

	fmt.Fprintln(w, "---")
	if err := f.sweepSummary(sweep, w); err != nil {
		return err
	}
	if f.opts.Verbose {
		fmt.Fprintf(w, "Duration: %s\n", sweep.Metadata.Duration.Round(1e6))
	}
	return nil
}

func (f *TextFormatter) sweepSummary(sweep *ingest.SweepReport, w io.Writer) error {
	fmt.Fprintf(w, "bandicoot: %d scanned, %d new, %d already known, %d with warnings",
		sweep.Summary.Scanned,
		sweep.Summary.New,
		sweep.Summary.Known,
		sweep.Summary.WithWarnings)
	if sweep.Summary.Failed > 0 {
		fmt.Fprintf(w, ", %d failed", sweep.Summary.Failed)
	}
	fmt.Fprintln(w)
	return nil
}

// FormatRecords renders a record listing as text.
func (f *TextFormatter) FormatRecords(_ context.Context, records []report.CrashRecord, w io.Writer) error {
	if f.opts.Quiet {
		fmt.Fprintf(w, "%d crash reports\n", len(records))
		return nil
	}

	if len(records) == 0 {
		fmt.Fprintln(w, "No crash reports found")
		return nil
	}

	for _, rec := range records {
		crashTime := rec.CrashTime.Format("2006-01-02 15:04:05")
		if rec.TimeMissing {
			crashTime = "(no timestamp)"
		}
		fmt.Fprintf(w, "#%-5d %-19s %-14s %-24s %s\n",
			rec.ID, crashTime, rec.Dialect, rec.ProcessName, rec.ExceptionType)

		if rec.TerminationReason != "" {
			fmt.Fprintf(w, "       reason: %s\n", rec.TerminationReason)
		}
		if rec.Notation != "" {
			fmt.Fprintf(w, "       note: %s\n", rec.Notation)
		}
		if f.opts.Verbose {
			fmt.Fprintf(w, "       fingerprint: %s\n", rec.Fingerprint)
			fmt.Fprintf(w, "       first seen:  %s\n", rec.FirstSeenAt.Format("2006-01-02 15:04:05"))
			fmt.Fprintf(w, "       last seen:   %s\n", rec.LastSeenAt.Format("2006-01-02 15:04:05"))
		}
	}

	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "%d crash reports\n", len(records))
	return nil
}
