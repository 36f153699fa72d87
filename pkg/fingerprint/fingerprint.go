// Package fingerprint derives the stable dedup key for a crash record.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/bandicoot-project/bandicoot/pkg/report"
)

// Policy selects what the fingerprint hashes.
type Policy string

const (
	// PolicyFields hashes the extracted-field tuple. Cosmetic rewrites of
	// the same crash by the OS across duplicate log copies collapse to one
	// row. This is the default.
	PolicyFields Policy = "fields"

	// PolicyRaw additionally hashes the raw content, so only byte-identical
	// reports deduplicate.
	PolicyRaw Policy = "raw"
)

// Valid reports whether p names a known policy.
func (p Policy) Valid() bool {
	return p == PolicyFields || p == PolicyRaw
}

// Fingerprinter computes dedup keys under a fixed policy.
type Fingerprinter struct {
	policy Policy
}

// New creates a Fingerprinter. An empty or unknown policy falls back to
// PolicyFields.
func New(policy Policy) *Fingerprinter {
	if !policy.Valid() {
		policy = PolicyFields
	}
	return &Fingerprinter{policy: policy}
}

// Policy returns the active policy.
func (f *Fingerprinter) Policy() Policy {
	return f.policy
}

// Fingerprint derives the identity key for a record. It is a pure function
// of the normalized fields (and, under PolicyRaw, the raw content); the
// volatile columns FirstSeenAt, LastSeenAt, and Notation never participate.
//
// Unknown-dialect records carry nothing but sentinels, so their raw content
// is always hashed in: distinct unreadable files must not collapse into one
// row.
func (f *Fingerprinter) Fingerprint(rec report.CrashRecord) string {
	h := sha256.New()

	writeField := func(s string) {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}

	writeField(string(rec.Dialect))
	writeField(rec.ProcessName)
	writeField(rec.ExceptionType)
	writeField(rec.TerminationReason)
	if rec.TimeMissing {
		writeField("")
	} else {
		writeField(rec.CrashTime.UTC().Format(time.RFC3339Nano))
	}

	if f.policy == PolicyRaw || rec.Dialect == report.DialectUnknown {
		writeField(rec.RawText)
	}

	return hex.EncodeToString(h.Sum(nil))
}
