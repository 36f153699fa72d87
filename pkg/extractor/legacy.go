package extractor

import (
	"strings"

	"github.com/bandicoot-project/bandicoot/pkg/report"
)

// legacyTimeLayouts are the Date/Time spellings seen in .crash reports.
var legacyTimeLayouts = []string{
	"2006-01-02 15:04:05.000 -0700",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05.000 MST",
	"2006-01-02 15:04:05 MST",
}

// ExtractLegacy pulls fields from the classic fixed-label .crash format.
// Legacy reports have no termination reason in older OS releases; its
// absence is acceptable and produces no warning.
func ExtractLegacy(raw report.RawReport) (report.Fields, []report.Warning) {
	var fields report.Fields
	var warnings []report.Warning

	lines := splitLines(raw.Bytes)

	if v, ok := labeledValue(lines, "Process", "Process Name"); ok {
		// The process label carries the pid in brackets: "Finder [345]".
		name, _, _ := strings.Cut(v, " ")
		name = strings.TrimSpace(name)
		if name != "" {
			fields.ProcessName = strPtr(name)
		} else {
			warnings = append(warnings, report.Warning{Field: "process_name", Reason: "empty Process label"})
		}
	} else {
		warnings = append(warnings, report.Warning{Field: "process_name", Reason: "no Process label found"})
	}

	if v, ok := labeledValue(lines, "Exception Type", "Termination Signal"); ok {
		fields.ExceptionType = strPtr(NormalizeException(v))
	} else {
		warnings = append(warnings, report.Warning{Field: "exception_type", Reason: "no Exception Type label found"})
	}

	if v, ok := labeledValue(lines, "Termination Reason"); ok {
		fields.TerminationReason = strPtr(v)
	}

	if v, ok := labeledValue(lines, "Date/Time", "Date-Time"); ok {
		if t, ok := parseTime(v, legacyTimeLayouts); ok {
			fields.CrashTime = timePtr(t)
		} else {
			warnings = append(warnings, report.Warning{Field: "crash_time", Reason: "unparseable Date/Time: " + v})
		}
	} else {
		warnings = append(warnings, report.Warning{Field: "crash_time", Reason: "no Date/Time label found"})
	}

	return fields, warnings
}
