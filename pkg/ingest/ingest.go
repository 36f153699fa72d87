// Package ingest composes the crash-report pipeline: detect the dialect,
// extract fields, normalize, fingerprint, and upsert into the store. The
// stages up to the store are pure functions of the input bytes, so a sweep
// runs them concurrently and serializes only on the store.
package ingest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bandicoot-project/bandicoot/pkg/detector"
	"github.com/bandicoot-project/bandicoot/pkg/extractor"
	"github.com/bandicoot-project/bandicoot/pkg/fingerprint"
	"github.com/bandicoot-project/bandicoot/pkg/normalizer"
	"github.com/bandicoot-project/bandicoot/pkg/report"
	"github.com/bandicoot-project/bandicoot/pkg/store"
)

// DefaultWorkers is the sweep concurrency when the caller does not choose.
const DefaultWorkers = 4

// Pipeline runs raw reports through detection, extraction, normalization,
// fingerprinting, and storage.
type Pipeline struct {
	detector *detector.Detector
	fp       *fingerprint.Fingerprinter
	store    *store.Store
}

// New creates a Pipeline writing to st under the given fingerprint policy.
func New(st *store.Store, policy fingerprint.Policy) *Pipeline {
	return &Pipeline{
		detector: detector.New(),
		fp:       fingerprint.New(policy),
		store:    st,
	}
}

// Outcome is the per-file result of an ingestion.
type Outcome struct {
	Path        string           `json:"path"`
	Fingerprint string           `json:"fingerprint"`
	ID          int64            `json:"id"`
	Dialect     report.Dialect   `json:"dialect"`
	IsNew       bool             `json:"is_new"`
	Warnings    []report.Warning `json:"warnings,omitempty"`

	// Err is a store failure; the pure stages never fail.
	Err        error  `json:"-"`
	ErrMessage string `json:"error,omitempty"`
}

// Ingest runs one raw report through the full pipeline.
// Unclassifiable reports are stored with dialect Unknown and sentinel
// fields rather than dropped: the report's existence is still evidence.
func (p *Pipeline) Ingest(ctx context.Context, raw report.RawReport) Outcome {
	out := Outcome{Path: raw.Path}

	dialect := p.detector.Detect(raw)
	out.Dialect = dialect

	var fields report.Fields
	if dialect == report.DialectUnknown {
		out.Warnings = append(out.Warnings, report.Warning{
			Field: "dialect", Reason: "unrecognized report format",
		})
	} else {
		var warns []report.Warning
		fields, warns = extractor.Extract(dialect, raw)
		out.Warnings = append(out.Warnings, warns...)
	}

	rec := normalizer.Normalize(dialect, fields, raw)
	rec.Fingerprint = p.fp.Fingerprint(rec)
	out.Fingerprint = rec.Fingerprint

	id, isNew, err := p.store.Upsert(ctx, rec)
	if err != nil {
		out.Err = err
		out.ErrMessage = err.Error()
		return out
	}
	out.ID = id
	out.IsNew = isNew
	return out
}

// Summary aggregates sweep counts for batch reporting.
type Summary struct {
	Scanned      int `json:"scanned"`
	New          int `json:"new"`
	Known        int `json:"known"`
	WithWarnings int `json:"with_warnings"`
	Failed       int `json:"failed"`
}

// Metadata provides context about a sweep run.
type Metadata struct {
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// SweepReport is the aggregate result of a batch ingestion.
type SweepReport struct {
	Summary  Summary   `json:"summary"`
	Outcomes []Outcome `json:"outcomes"`
	Metadata Metadata  `json:"metadata"`
}

// HasNew reports whether the sweep stored any previously unseen report.
func (r *SweepReport) HasNew() bool {
	return r.Summary.New > 0
}

// Sweep ingests a batch of raw reports with the given number of workers.
// One unparseable or failing file never aborts the sweep; its outcome
// carries the warning or error instead. Outcomes are ordered by path.
func (p *Pipeline) Sweep(ctx context.Context, reports []report.RawReport, workers int) *SweepReport {
	start := time.Now()
	if workers < 1 {
		workers = DefaultWorkers
	}

	jobs := make(chan report.RawReport)
	results := make(chan Outcome)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for raw := range jobs {
				results <- p.Ingest(ctx, raw)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, raw := range reports {
			select {
			case jobs <- raw:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	sweep := &SweepReport{Metadata: Metadata{StartedAt: start}}
	for out := range results {
		sweep.Outcomes = append(sweep.Outcomes, out)
	}
	sort.Slice(sweep.Outcomes, func(i, j int) bool {
		return sweep.Outcomes[i].Path < sweep.Outcomes[j].Path
	})

	for _, out := range sweep.Outcomes {
		sweep.Summary.Scanned++
		switch {
		case out.Err != nil:
			sweep.Summary.Failed++
		case out.IsNew:
			sweep.Summary.New++
		default:
			sweep.Summary.Known++
		}
		if len(out.Warnings) > 0 {
			sweep.Summary.WithWarnings++
		}
	}

	sweep.Metadata.Duration = time.Since(start)
	return sweep
}
