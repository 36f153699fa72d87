package extractor

import (
	"strings"
)

// signalExceptions maps termination signals to the Mach exception that
// typically raises them, so signal-only reports and exception-code reports
// end up in the same textual form.
var signalExceptions = map[string]string{
	"SIGSEGV": "EXC_BAD_ACCESS",
	"SIGBUS":  "EXC_BAD_ACCESS",
	"SIGILL":  "EXC_BAD_INSTRUCTION",
	"SIGFPE":  "EXC_ARITHMETIC",
	"SIGTRAP": "EXC_BREAKPOINT",
	"SIGABRT": "EXC_CRASH",
	"SIGKILL": "EXC_CRASH",
	"SIGQUIT": "EXC_CRASH",
	"SIGTERM": "EXC_CRASH",
}

// machExceptionNames maps numeric Mach exception codes to their names.
var machExceptionNames = map[string]string{
	"1":  "EXC_BAD_ACCESS",
	"2":  "EXC_BAD_INSTRUCTION",
	"3":  "EXC_ARITHMETIC",
	"4":  "EXC_EMULATION",
	"5":  "EXC_SOFTWARE",
	"6":  "EXC_BREAKPOINT",
	"10": "EXC_CRASH",
	"11": "EXC_RESOURCE",
	"12": "EXC_GUARD",
}

// NormalizeException rewrites dialect-specific exception spellings into the
// single "EXC_NAME (SIGNAL)" form where possible.
//
//	"EXC_CRASH (SIGABRT)" -> unchanged
//	"SIGSEGV"             -> "EXC_BAD_ACCESS (SIGSEGV)"
//	"10"                  -> "EXC_CRASH"
//
// Unrecognized values pass through untouched.
func NormalizeException(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}

	upper := strings.ToUpper(s)

	// Already in EXC_* form, with or without a signal suffix.
	if strings.HasPrefix(upper, "EXC_") {
		return upper
	}

	// Bare signal name.
	if strings.HasPrefix(upper, "SIG") {
		if exc, ok := signalExceptions[upper]; ok {
			return exc + " (" + upper + ")"
		}
		return upper
	}

	// Numeric Mach exception code.
	if name, ok := machExceptionNames[s]; ok {
		return name
	}

	return s
}

// composeException joins a Mach exception type and a signal name into the
// canonical textual form. Either part may be empty.
func composeException(excType, signal string) string {
	excType = strings.TrimSpace(excType)
	signal = strings.TrimSpace(signal)
	switch {
	case excType == "" && signal == "":
		return ""
	case excType == "":
		return NormalizeException(signal)
	case signal == "":
		return NormalizeException(excType)
	default:
		return NormalizeException(excType + " (" + strings.ToUpper(signal) + ")")
	}
}
