// Package extractor pulls the normalized field set out of a detected-dialect
// report. One pure function per dialect, selected by the Dialect tag.
// Extractors never fail: a field that cannot be located is omitted and a
// malformed section produces a warning while extraction continues.
package extractor

import (
	"strings"
	"time"

	"github.com/bandicoot-project/bandicoot/pkg/report"
)

// ExtractFunc is a dialect-specific extractor.
type ExtractFunc func(raw report.RawReport) (report.Fields, []report.Warning)

var extractors = map[report.Dialect]ExtractFunc{
	report.DialectLegacyCrash:   ExtractLegacy,
	report.DialectDiagReport:    ExtractDiag,
	report.DialectIPSReport:     ExtractIPS,
	report.DialectShutdownStall: ExtractShutdownStall,
}

// Extract runs the extractor for the given dialect.
// DialectUnknown yields no fields: extraction is not attempted for it.
func Extract(dialect report.Dialect, raw report.RawReport) (report.Fields, []report.Warning) {
	fn, ok := extractors[dialect]
	if !ok {
		return report.Fields{}, nil
	}
	return fn(raw)
}

// labeledValue scans lines for the first one starting with any of the given
// labels followed by a colon and returns the trimmed remainder.
// First matching labeled line wins.
func labeledValue(lines []string, labels ...string) (string, bool) {
	for _, line := range lines {
		for _, label := range labels {
			rest, ok := strings.CutPrefix(line, label)
			if !ok {
				continue
			}
			rest = strings.TrimLeft(rest, " \t")
			rest, ok = strings.CutPrefix(rest, ":")
			if !ok {
				continue
			}
			return strings.TrimSpace(rest), true
		}
	}
	return "", false
}

// splitLines breaks raw content into lines without allocating per-line copies
// beyond the split itself. Carriage returns are trimmed.
func splitLines(b []byte) []string {
	lines := strings.Split(string(b), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, "\r")
	}
	return lines
}

// parseTime tries each layout in order. Returns false when none parse;
// callers omit the field and warn rather than guess.
func parseTime(s string, layouts []string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }
