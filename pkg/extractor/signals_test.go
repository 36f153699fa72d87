package extractor

import "testing"

func TestNormalizeException(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"EXC_CRASH (SIGABRT)", "EXC_CRASH (SIGABRT)"},
		{"exc_bad_access (sigsegv)", "EXC_BAD_ACCESS (SIGSEGV)"},
		{"SIGSEGV", "EXC_BAD_ACCESS (SIGSEGV)"},
		{"SIGKILL", "EXC_CRASH (SIGKILL)"},
		{"SIGTRAP", "EXC_BREAKPOINT (SIGTRAP)"},
		{"sigabrt", "EXC_CRASH (SIGABRT)"},
		{"SIGUSR1", "SIGUSR1"}, // no Mach mapping, kept as signal
		{"1", "EXC_BAD_ACCESS"},
		{"10", "EXC_CRASH"},
		{"EXC_GUARD", "EXC_GUARD"},
		{"cpu usage", "cpu usage"}, // diagnostic events pass through
		{"  EXC_CRASH  ", "EXC_CRASH"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeException(tt.in); got != tt.want {
			t.Errorf("NormalizeException(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestComposeException(t *testing.T) {
	tests := []struct {
		excType string
		signal  string
		want    string
	}{
		{"EXC_BAD_ACCESS", "SIGSEGV", "EXC_BAD_ACCESS (SIGSEGV)"},
		{"EXC_CRASH", "", "EXC_CRASH"},
		{"", "SIGABRT", "EXC_CRASH (SIGABRT)"},
		{"", "", ""},
		{"EXC_CRASH", "sigkill", "EXC_CRASH (SIGKILL)"},
	}

	for _, tt := range tests {
		if got := composeException(tt.excType, tt.signal); got != tt.want {
			t.Errorf("composeException(%q, %q) = %q, want %q", tt.excType, tt.signal, got, tt.want)
		}
	}
}
