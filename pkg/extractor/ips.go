package extractor

import (
	"encoding/json"
	"strings"

	"github.com/bandicoot-project/bandicoot/pkg/report"
)

// ipsTimeLayouts cover the timestamp spellings in IPS headers and bodies.
// The fractional second width varies between the two.
var ipsTimeLayouts = []string{
	"2006-01-02 15:04:05.0000 -0700",
	"2006-01-02 15:04:05.00 -0700",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02T15:04:05Z07:00",
}

// ipsHeader is the single-line JSON summary that opens an IPS report.
type ipsHeader struct {
	AppName   string `json:"app_name"`
	Name      string `json:"name"`
	BugType   string `json:"bug_type"`
	Timestamp string `json:"timestamp"`
}

// ipsBody is the JSON document following the header line.
type ipsBody struct {
	ProcName    string `json:"procName"`
	CaptureTime string `json:"captureTime"`
	Exception   struct {
		Type   string `json:"type"`
		Signal string `json:"signal"`
	} `json:"exception"`
	Termination struct {
		Indicator string   `json:"indicator"`
		Namespace string   `json:"namespace"`
		Reasons   []string `json:"reasons"`
	} `json:"termination"`
}

// ExtractIPS pulls fields from the JSON-header .ips format. The header and
// body are decoded independently so a malformed body still yields whatever
// the header carries.
func ExtractIPS(raw report.RawReport) (report.Fields, []report.Warning) {
	var fields report.Fields
	var warnings []report.Warning

	headerLine, rest, _ := strings.Cut(string(raw.Bytes), "\n")

	var header ipsHeader
	headerOK := true
	if err := json.Unmarshal([]byte(headerLine), &header); err != nil {
		headerOK = false
		warnings = append(warnings, report.Warning{Field: "header", Reason: "malformed IPS header: " + err.Error()})
	}

	var body ipsBody
	bodyOK := true
	rest = strings.TrimSpace(rest)
	if rest == "" {
		bodyOK = false
	} else if err := json.Unmarshal([]byte(rest), &body); err != nil {
		bodyOK = false
		warnings = append(warnings, report.Warning{Field: "body", Reason: "malformed IPS body: " + err.Error()})
	}

	// Process name: body takes precedence, header is the fallback.
	switch {
	case bodyOK && body.ProcName != "":
		fields.ProcessName = strPtr(body.ProcName)
	case headerOK && header.AppName != "":
		fields.ProcessName = strPtr(header.AppName)
	case headerOK && header.Name != "":
		fields.ProcessName = strPtr(header.Name)
	default:
		warnings = append(warnings, report.Warning{Field: "process_name", Reason: "no process name in header or body"})
	}

	if bodyOK {
		if exc := composeException(body.Exception.Type, body.Exception.Signal); exc != "" {
			fields.ExceptionType = strPtr(exc)
		}
		switch {
		case body.Termination.Indicator != "":
			fields.TerminationReason = strPtr(body.Termination.Indicator)
		case len(body.Termination.Reasons) > 0:
			fields.TerminationReason = strPtr(strings.Join(body.Termination.Reasons, " "))
		}
	}
	if fields.ExceptionType == nil {
		warnings = append(warnings, report.Warning{Field: "exception_type", Reason: "no exception section recovered"})
	}

	// Timestamp: the body capture time is more precise than the header.
	tsSource := ""
	if bodyOK && body.CaptureTime != "" {
		tsSource = body.CaptureTime
	} else if headerOK && header.Timestamp != "" {
		tsSource = header.Timestamp
	}
	if tsSource != "" {
		if t, ok := parseTime(tsSource, ipsTimeLayouts); ok {
			fields.CrashTime = timePtr(t)
		} else {
			warnings = append(warnings, report.Warning{Field: "crash_time", Reason: "unparseable timestamp: " + tsSource})
		}
	} else {
		warnings = append(warnings, report.Warning{Field: "crash_time", Reason: "no timestamp in header or body"})
	}

	return fields, warnings
}
