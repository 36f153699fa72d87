// Package normalizer merges extractor output into a canonical CrashRecord,
// substituting sentinels for omitted fields. It never fails: an
// unparseable-but-present report is still evidence worth storing.
package normalizer

import (
	"strings"
	"time"

	"github.com/bandicoot-project/bandicoot/pkg/report"
)

// Normalize builds the pre-fingerprint, pre-store portion of a CrashRecord.
// Omitted fields get sentinels, extracted text is whitespace-collapsed, and
// the full raw content is retained verbatim for display.
func Normalize(dialect report.Dialect, fields report.Fields, raw report.RawReport) report.CrashRecord {
	rec := report.CrashRecord{
		Dialect:           dialect,
		ProcessName:       report.UnknownValue,
		ExceptionType:     report.UnknownValue,
		TerminationReason: "",
		CrashTime:         time.Unix(0, 0).UTC(),
		TimeMissing:       true,
		RawText:           string(raw.Bytes),
	}

	if fields.ProcessName != nil {
		if v := collapseSpace(*fields.ProcessName); v != "" {
			rec.ProcessName = v
		}
	}
	if fields.ExceptionType != nil {
		if v := collapseSpace(*fields.ExceptionType); v != "" {
			rec.ExceptionType = v
		}
	}
	if fields.TerminationReason != nil {
		rec.TerminationReason = collapseSpace(*fields.TerminationReason)
	}
	if fields.CrashTime != nil {
		rec.CrashTime = fields.CrashTime.UTC()
		rec.TimeMissing = false
	}

	return rec
}

// collapseSpace trims the string and collapses internal whitespace runs to a
// single space, so label padding differences do not leak into stored fields.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
