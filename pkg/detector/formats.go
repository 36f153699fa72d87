package detector

import (
	"regexp"

	"github.com/bandicoot-project/bandicoot/pkg/report"
)

// Signature describes the content cues for one dialect.
type Signature struct {
	Dialect report.Dialect

	// Patterns must all match within the sampled head of the report.
	Patterns []*regexp.Regexp
	// AnyOf requires at least one additional match, if non-empty.
	AnyOf []*regexp.Regexp
}

// DefaultSignatures returns the built-in dialect signatures.
// Order matters: dialects share substrings, so more specific signatures come
// first and the first content match wins.
func DefaultSignatures() []*Signature {
	return []*Signature{
		// IPS reports open with a JSON summary line.
		{
			Dialect: report.DialectIPSReport,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`^\s*\{`),
			},
			AnyOf: []*regexp.Regexp{
				regexp.MustCompile(`"bug_type"`),
				regexp.MustCompile(`"app_name"`),
				regexp.MustCompile(`"procName"`),
			},
		},
		// Shutdown stalls carry the Event label too, so they must be
		// checked before the generic diagnostic signature.
		{
			Dialect: report.DialectShutdownStall,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?im)^Event:\s*Shutdown Stall`),
			},
		},
		{
			Dialect: report.DialectLegacyCrash,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?m)^Process:\s+\S`),
			},
			AnyOf: []*regexp.Regexp{
				regexp.MustCompile(`(?m)^Exception Type:`),
				regexp.MustCompile(`(?m)^Crashed Thread:`),
			},
		},
		{
			Dialect: report.DialectDiagReport,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?m)^Event:\s+\S`),
			},
			AnyOf: []*regexp.Regexp{
				regexp.MustCompile(`(?m)^Command:`),
				regexp.MustCompile(`(?m)^Action taken:`),
				regexp.MustCompile(`(?m)^Duration:`),
			},
		},
	}
}

// Matches reports whether the signature matches the sampled head.
func (s *Signature) Matches(head []byte) bool {
	for _, p := range s.Patterns {
		if !p.Match(head) {
			return false
		}
	}
	if len(s.AnyOf) == 0 {
		return true
	}
	for _, p := range s.AnyOf {
		if p.Match(head) {
			return true
		}
	}
	return false
}
