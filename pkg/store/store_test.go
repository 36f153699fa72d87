package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bandicoot-project/bandicoot/pkg/report"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "bandicoot", "crash_logs.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func testRecord(fp string) report.CrashRecord {
	return report.CrashRecord{
		Fingerprint:       fp,
		ProcessName:       "Finder",
		ExceptionType:     "EXC_CRASH (SIGKILL)",
		TerminationReason: "",
		CrashTime:         time.Date(2024, 1, 15, 18, 30, 0, 0, time.UTC),
		Dialect:           report.DialectLegacyCrash,
		RawText:           "Process: Finder [345]\n",
	}
}

func TestUpsert_InsertThenUpdate(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	first := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return first }

	id, isNew, err := st.Upsert(ctx, testRecord("fp-1"))
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if !isNew {
		t.Error("first Upsert() isNew = false, want true")
	}

	second := first.Add(time.Hour)
	st.now = func() time.Time { return second }

	id2, isNew2, err := st.Upsert(ctx, testRecord("fp-1"))
	if err != nil {
		t.Fatalf("repeat Upsert() error = %v", err)
	}
	if isNew2 {
		t.Error("repeat Upsert() isNew = true, want false")
	}
	if id2 != id {
		t.Errorf("repeat Upsert() id = %d, want %d", id2, id)
	}

	rec, err := st.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !rec.FirstSeenAt.Equal(first) {
		t.Errorf("FirstSeenAt = %v, want %v", rec.FirstSeenAt, first)
	}
	if !rec.LastSeenAt.Equal(second) {
		t.Errorf("LastSeenAt = %v, want %v", rec.LastSeenAt, second)
	}

	count, err := st.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 1 {
		t.Errorf("Count() = %d, want exactly one row per fingerprint", count)
	}
}

func TestUpsert_RoundTripsRecord(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	in := testRecord("fp-rt")
	in.TerminationReason = "Namespace TCC, Code 0"
	in.TimeMissing = false

	id, _, err := st.Upsert(ctx, in)
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	out, err := st.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if out.ProcessName != in.ProcessName ||
		out.ExceptionType != in.ExceptionType ||
		out.TerminationReason != in.TerminationReason ||
		out.Dialect != in.Dialect ||
		out.RawText != in.RawText ||
		out.Notation != "" ||
		!out.CrashTime.Equal(in.CrashTime) {
		t.Errorf("Get() = %+v, want fields of %+v", out, in)
	}
}

func TestAnnotate_SurvivesReingestion(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	id, _, err := st.Upsert(ctx, testRecord("fp-note"))
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	if err := st.Annotate(ctx, id, "known issue, ignore"); err != nil {
		t.Fatalf("Annotate() error = %v", err)
	}

	// Re-ingesting the same report must bump last_seen_at only.
	for i := 0; i < 3; i++ {
		if _, _, err := st.Upsert(ctx, testRecord("fp-note")); err != nil {
			t.Fatalf("re-Upsert() error = %v", err)
		}
	}

	rec, err := st.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if rec.Notation != "known issue, ignore" {
		t.Errorf("Notation = %q, want preserved annotation", rec.Notation)
	}
}

func TestAnnotate_NotFound(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	err := st.Annotate(ctx, 9999, "note")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Annotate() error = %v, want ErrNotFound", err)
	}

	// Store state unchanged.
	count, err := st.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 0 {
		t.Errorf("Count() = %d, want 0", count)
	}
}

func TestGet_NotFound(t *testing.T) {
	st := openTestStore(t)
	if _, err := st.Get(context.Background(), 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestQuery_OrderingAndTies(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	// Two rows share a last_seen_at instant, one is newer.
	st.now = func() time.Time { return base }
	idA, _, _ := st.Upsert(ctx, testRecord("fp-a"))
	idB, _, _ := st.Upsert(ctx, testRecord("fp-b"))
	st.now = func() time.Time { return base.Add(time.Minute) }
	idC, _, _ := st.Upsert(ctx, testRecord("fp-c"))

	for i := 0; i < 2; i++ { // repeated calls, no intervening writes
		records, err := st.Query(ctx, Filter{})
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("Query() returned %d records, want 3", len(records))
		}
		got := []int64{records[0].ID, records[1].ID, records[2].ID}
		want := []int64{idC, idA, idB} // newest first, ties by ascending id
		for j := range want {
			if got[j] != want[j] {
				t.Fatalf("Query() order = %v, want %v", got, want)
			}
		}
	}
}

func TestQuery_Filters(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return base }

	finder := testRecord("fp-finder")
	st.Upsert(ctx, finder)

	dock := testRecord("fp-dock")
	dock.ProcessName = "Dock"
	dock.Dialect = report.DialectIPSReport
	st.Upsert(ctx, dock)

	st.now = func() time.Time { return base.Add(2 * time.Hour) }
	stall := testRecord("fp-stall")
	stall.ProcessName = "backboardd"
	stall.Dialect = report.DialectShutdownStall
	st.Upsert(ctx, stall)

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"no filter", Filter{}, 3},
		{"by dialect", Filter{Dialect: report.DialectIPSReport}, 1},
		{"by process substring", Filter{Process: "ock"}, 1},
		{"by process no match", Filter{Process: "Safari"}, 0},
		{"since excludes old", Filter{Since: base.Add(time.Hour)}, 1},
		{"until excludes new", Filter{Until: base.Add(time.Hour)}, 2},
		{"limit", Filter{Limit: 2}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := st.Query(ctx, tt.filter)
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			if len(records) != tt.want {
				t.Errorf("Query() returned %d records, want %d", len(records), tt.want)
			}
		})
	}
}

func TestWipe(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	st.Upsert(ctx, testRecord("fp-1"))
	st.Upsert(ctx, testRecord("fp-2"))

	if err := st.Wipe(ctx); err != nil {
		t.Fatalf("Wipe() error = %v", err)
	}

	count, err := st.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 0 {
		t.Errorf("Count() after Wipe = %d, want 0", count)
	}
}

func TestUpsert_ConcurrentSameFingerprint(t *testing.T) {
	// A race on one fingerprint must never produce two rows.
	st := openTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := st.Upsert(ctx, testRecord("fp-race")); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent Upsert() error = %v", err)
	}

	count, err := st.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 1 {
		t.Errorf("Count() = %d, want 1 row for the racing fingerprint", count)
	}
}
