package extractor

import (
	"github.com/bandicoot-project/bandicoot/pkg/report"
)

// diagTimeLayouts are the Date/Time spellings in diagnostic reports.
var diagTimeLayouts = []string{
	"2006-01-02 15:04:05.000 -0700",
	"2006-01-02 15:04:05.00 -0700",
	"2006-01-02 15:04:05 -0700",
}

// ExtractDiag pulls fields from labeled diagnostic reports (.diag, .spin).
// The event name plays the role of the exception type: a resource
// diagnostic has no crash exception, only the condition that tripped it.
func ExtractDiag(raw report.RawReport) (report.Fields, []report.Warning) {
	return extractLabeled(raw, labeledSpec{
		processLabels:     []string{"Command", "Process", "Process Name"},
		exceptionLabels:   []string{"Exception Type", "Event"},
		terminationLabels: []string{"Termination Reason", "Action taken"},
		timeLabels:        []string{"Date/Time"},
		timeLayouts:       diagTimeLayouts,
	})
}

// ExtractShutdownStall pulls fields from shutdown stall watchdog reports.
// These share the diagnostic label vocabulary but flag the stalling command
// and the watchdog's reason instead of a crashed process.
func ExtractShutdownStall(raw report.RawReport) (report.Fields, []report.Warning) {
	return extractLabeled(raw, labeledSpec{
		processLabels:     []string{"Command", "Process", "Stalled Process"},
		exceptionLabels:   []string{"Event", "Exception Type"},
		terminationLabels: []string{"Termination Reason", "Reason"},
		timeLabels:        []string{"Date/Time"},
		timeLayouts:       diagTimeLayouts,
	})
}

// labeledSpec configures extraction from a labeled-line dialect.
type labeledSpec struct {
	processLabels     []string
	exceptionLabels   []string
	terminationLabels []string
	timeLabels        []string
	timeLayouts       []string
}

func extractLabeled(raw report.RawReport, spec labeledSpec) (report.Fields, []report.Warning) {
	var fields report.Fields
	var warnings []report.Warning

	lines := splitLines(raw.Bytes)

	if v, ok := labeledValue(lines, spec.processLabels...); ok && v != "" {
		fields.ProcessName = strPtr(v)
	} else {
		warnings = append(warnings, report.Warning{Field: "process_name", Reason: "no process label found"})
	}

	if v, ok := labeledValue(lines, spec.exceptionLabels...); ok && v != "" {
		fields.ExceptionType = strPtr(NormalizeException(v))
	} else {
		warnings = append(warnings, report.Warning{Field: "exception_type", Reason: "no event or exception label found"})
	}

	if v, ok := labeledValue(lines, spec.terminationLabels...); ok && v != "" {
		fields.TerminationReason = strPtr(v)
	}

	if v, ok := labeledValue(lines, spec.timeLabels...); ok {
		if t, ok := parseTime(v, spec.timeLayouts); ok {
			fields.CrashTime = timePtr(t)
		} else {
			warnings = append(warnings, report.Warning{Field: "crash_time", Reason: "unparseable Date/Time: " + v})
		}
	} else {
		warnings = append(warnings, report.Warning{Field: "crash_time", Reason: "no Date/Time label found"})
	}

	return fields, warnings
}
