// Package scan is the directory-sweeping collaborator that feeds the
// ingestion engine: it expands report-source globs and materializes files
// into RawReports. The engine itself never touches the filesystem.
package scan

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/bandicoot-project/bandicoot/pkg/detector"
	"github.com/bandicoot-project/bandicoot/pkg/report"
)

// MaxReportSize caps how much of a single report file is loaded.
// Crash reports are small; anything larger is almost certainly not one,
// but the head still gets ingested as evidence.
const MaxReportSize = 4 << 20

// ExpandGlobs expands file paths and glob patterns into a deduplicated,
// sorted list of candidate paths. Patterns that match nothing are dropped:
// the standard diagnostic directories are legitimately empty on a healthy
// system.
func ExpandGlobs(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var result []string

	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}

		if len(matches) == 0 {
			// Not a pattern at all: keep it when it names a real file so
			// explicit paths work, drop it otherwise.
			if _, err := os.Stat(pattern); err == nil && !seen[pattern] {
				seen[pattern] = true
				result = append(result, pattern)
			}
			continue
		}

		for _, match := range matches {
			if info, err := os.Stat(match); err != nil || info.IsDir() {
				continue
			}
			if !seen[match] {
				seen[match] = true
				result = append(result, match)
			}
		}
	}

	sort.Strings(result)
	return result, nil
}

// Load materializes one file into a RawReport, deriving the dialect hint
// from its extension. Content beyond MaxReportSize is truncated.
func Load(path string) (report.RawReport, error) {
	f, err := os.Open(path) // #nosec G304 -- user-provided report paths are expected
	if err != nil {
		return report.RawReport{}, fmt.Errorf("opening report %s: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxReportSize))
	if err != nil {
		return report.RawReport{}, fmt.Errorf("reading report %s: %w", path, err)
	}

	return report.RawReport{
		Path:        path,
		Bytes:       data,
		DialectHint: detector.HintForPath(path),
	}, nil
}

// LoadAll materializes every path, collecting per-file errors without
// aborting the batch.
func LoadAll(paths []string) ([]report.RawReport, []error) {
	var reports []report.RawReport
	var errs []error
	for _, path := range paths {
		raw, err := Load(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		reports = append(reports, raw)
	}
	return reports, errs
}
