// Package detector classifies raw crash reports into dialects using ordered
// content signatures. Detection is total: anything unrecognized is
// DialectUnknown, never an error.
package detector

import (
	"path/filepath"
	"strings"

	"github.com/bandicoot-project/bandicoot/pkg/report"
)

// headSize is how much of the report the signatures are tested against.
// Every dialect declares itself in its header block.
const headSize = 4096

// Detector classifies raw reports against a signature table.
type Detector struct {
	signatures []*Signature
	headSize   int
}

// Option configures the Detector.
type Option func(*Detector)

// WithHeadSize sets how many leading bytes are sampled (default 4096).
func WithHeadSize(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.headSize = n
		}
	}
}

// New creates a Detector with the default dialect signatures.
func New(opts ...Option) *Detector {
	d := &Detector{
		signatures: DefaultSignatures(),
		headSize:   headSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect classifies a raw report. The extension hint is consulted only to
// break ties between multiple matching signatures; it is never sole
// authority, because extensions can be wrong or missing.
func (d *Detector) Detect(raw report.RawReport) report.Dialect {
	head := raw.Bytes
	if len(head) > d.headSize {
		head = head[:d.headSize]
	}

	var matches []report.Dialect
	for _, sig := range d.signatures {
		if sig.Matches(head) {
			matches = append(matches, sig.Dialect)
		}
	}

	switch len(matches) {
	case 0:
		return report.DialectUnknown
	case 1:
		return matches[0]
	}

	// Multiple signatures matched: let the hint pick, otherwise keep
	// signature order.
	for _, m := range matches {
		if m == raw.DialectHint {
			return m
		}
	}
	return matches[0]
}

// Detect classifies a raw report using the default signature table.
func Detect(raw report.RawReport) report.Dialect {
	return New().Detect(raw)
}

// HintForPath derives a dialect hint from a file extension.
// Returns DialectUnknown when the extension says nothing.
func HintForPath(path string) report.Dialect {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".crash":
		return report.DialectLegacyCrash
	case ".ips":
		return report.DialectIPSReport
	case ".diag", ".spin":
		return report.DialectDiagReport
	case ".shutdownstall":
		return report.DialectShutdownStall
	default:
		return report.DialectUnknown
	}
}
