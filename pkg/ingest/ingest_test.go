package ingest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/bandicoot-project/bandicoot/pkg/fingerprint"
	"github.com/bandicoot-project/bandicoot/pkg/report"
	"github.com/bandicoot-project/bandicoot/pkg/store"
)

const legacyFixture = `Process:               Finder [345]
Date/Time:             2024-01-15 10:30:00.123 -0800
Exception Type:        EXC_CRASH
Crashed Thread:        0
`

const ipsNoProcessFixture = `{"bug_type":"309","timestamp":"2024-01-15 10:30:00.00 -0800"}
{"exception":{"type":"EXC_CRASH","signal":"SIGABRT"}}
`

func newTestPipeline(t *testing.T) (*Pipeline, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "crash_logs.db"))
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return New(st, fingerprint.PolicyFields), st
}

func TestIngest_LegacyScenario(t *testing.T) {
	p, st := newTestPipeline(t)
	ctx := context.Background()

	out := p.Ingest(ctx, report.RawReport{Path: "Finder.crash", Bytes: []byte(legacyFixture)})
	if out.Err != nil {
		t.Fatalf("Ingest() error = %v", out.Err)
	}
	if !out.IsNew {
		t.Error("IsNew = false, want true")
	}
	if out.Dialect != report.DialectLegacyCrash {
		t.Errorf("Dialect = %v, want legacy_crash", out.Dialect)
	}

	rec, err := st.Get(ctx, out.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if rec.ProcessName != "Finder" {
		t.Errorf("ProcessName = %q, want Finder", rec.ProcessName)
	}
	if rec.ExceptionType != "EXC_CRASH" {
		t.Errorf("ExceptionType = %q, want EXC_CRASH", rec.ExceptionType)
	}
	if rec.TerminationReason != "" {
		t.Errorf("TerminationReason = %q, want empty", rec.TerminationReason)
	}
}

func TestIngest_Idempotent(t *testing.T) {
	p, st := newTestPipeline(t)
	ctx := context.Background()

	raw := report.RawReport{Path: "a.crash", Bytes: []byte(legacyFixture)}

	first := p.Ingest(ctx, raw)
	second := p.Ingest(ctx, raw)

	if first.Err != nil || second.Err != nil {
		t.Fatalf("Ingest() errors = %v, %v", first.Err, second.Err)
	}
	if !first.IsNew {
		t.Error("first ingestion IsNew = false, want true")
	}
	if second.IsNew {
		t.Error("second ingestion IsNew = true, want false")
	}
	if first.Fingerprint != second.Fingerprint {
		t.Error("fingerprints differ across identical ingestions")
	}

	count, _ := st.Count(ctx)
	if count != 1 {
		t.Errorf("Count() = %d, want 1", count)
	}
}

func TestIngest_DedupAcrossRenamedCopies(t *testing.T) {
	// Rotated copies differ in path and incidental whitespace but carry
	// the same crash; under the fields policy they are one record.
	p, st := newTestPipeline(t)
	ctx := context.Background()

	a := p.Ingest(ctx, report.RawReport{Path: "a.crash", Bytes: []byte(legacyFixture)})
	b := p.Ingest(ctx, report.RawReport{
		Path:  "rotated/a-1.crash",
		Bytes: []byte(legacyFixture + "\nBinary Images:\n  0x100000000 Finder\n"),
	})

	if a.Fingerprint != b.Fingerprint {
		t.Error("cosmetically different copies fingerprinted differently")
	}
	if b.IsNew {
		t.Error("rotated copy stored as a new row")
	}

	count, _ := st.Count(ctx)
	if count != 1 {
		t.Errorf("Count() = %d, want 1", count)
	}
}

func TestIngest_MissingProcessStillSucceeds(t *testing.T) {
	p, st := newTestPipeline(t)
	ctx := context.Background()

	out := p.Ingest(ctx, report.RawReport{Path: "x.ips", Bytes: []byte(ipsNoProcessFixture)})
	if out.Err != nil {
		t.Fatalf("Ingest() error = %v", out.Err)
	}
	if !out.IsNew {
		t.Error("IsNew = false, want true")
	}
	if len(out.Warnings) == 0 {
		t.Error("expected a warning for the missing process field")
	}

	rec, err := st.Get(ctx, out.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if rec.ProcessName != report.UnknownValue {
		t.Errorf("ProcessName = %q, want %q", rec.ProcessName, report.UnknownValue)
	}
}

func TestIngest_TotalOnGarbage(t *testing.T) {
	p, st := newTestPipeline(t)
	ctx := context.Background()

	inputs := [][]byte{nil, {}, []byte("\x00\x01\xff\xfe"), []byte("truncated Proc")}
	for _, in := range inputs {
		out := p.Ingest(ctx, report.RawReport{Path: "junk", Bytes: in})
		if out.Err != nil {
			t.Fatalf("Ingest(%q) error = %v", in, out.Err)
		}
		if out.Dialect != report.DialectUnknown {
			t.Errorf("Ingest(%q) dialect = %v, want unknown", in, out.Dialect)
		}
	}

	// Unknown reports are stored, not dropped: they are audit evidence.
	count, _ := st.Count(ctx)
	if count == 0 {
		t.Error("unclassifiable reports were dropped")
	}
}

func TestIngest_AnnotationDurability(t *testing.T) {
	p, st := newTestPipeline(t)
	ctx := context.Background()

	raw := report.RawReport{Path: "a.crash", Bytes: []byte(legacyFixture)}
	out := p.Ingest(ctx, raw)

	if err := st.Annotate(ctx, out.ID, "note"); err != nil {
		t.Fatalf("Annotate() error = %v", err)
	}

	for i := 0; i < 5; i++ {
		p.Ingest(ctx, raw)
	}

	rec, _ := st.Get(ctx, out.ID)
	if rec.Notation != "note" {
		t.Errorf("Notation = %q, want note preserved across re-ingestions", rec.Notation)
	}
}

func TestSweep(t *testing.T) {
	p, _ := newTestPipeline(t)
	ctx := context.Background()

	reports := []report.RawReport{
		{Path: "a.crash", Bytes: []byte(legacyFixture)},
		{Path: "b.ips", Bytes: []byte(ipsNoProcessFixture)},
		{Path: "c.crash", Bytes: []byte(legacyFixture)}, // duplicate of a
		{Path: "d.log", Bytes: []byte("not a crash report")},
	}

	sweep := p.Sweep(ctx, reports, 3)

	if sweep.Summary.Scanned != 4 {
		t.Errorf("Scanned = %d, want 4", sweep.Summary.Scanned)
	}
	// a, b, and d are new; c deduplicates against a.
	if sweep.Summary.New != 3 {
		t.Errorf("New = %d, want 3", sweep.Summary.New)
	}
	if sweep.Summary.Known != 1 {
		t.Errorf("Known = %d, want 1", sweep.Summary.Known)
	}
	if sweep.Summary.Failed != 0 {
		t.Errorf("Failed = %d, want 0", sweep.Summary.Failed)
	}
	if sweep.Summary.WithWarnings == 0 {
		t.Error("WithWarnings = 0, want warnings from b and d")
	}
	if !sweep.HasNew() {
		t.Error("HasNew() = false, want true")
	}

	// Outcomes are path-ordered for stable reporting.
	for i := 1; i < len(sweep.Outcomes); i++ {
		if sweep.Outcomes[i-1].Path > sweep.Outcomes[i].Path {
			t.Errorf("outcomes not sorted by path: %s before %s",
				sweep.Outcomes[i-1].Path, sweep.Outcomes[i].Path)
		}
	}

	// A second sweep over the same files finds nothing new.
	again := p.Sweep(ctx, reports, 3)
	if again.Summary.New != 0 {
		t.Errorf("second sweep New = %d, want 0", again.Summary.New)
	}
	if again.Summary.Known != 4 {
		t.Errorf("second sweep Known = %d, want 4", again.Summary.Known)
	}
	if again.HasNew() {
		t.Error("second sweep HasNew() = true, want false")
	}
}
