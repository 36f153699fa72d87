package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Default values for configuration.
const (
	DefaultWorkers        = 4
	DefaultWebhookTimeout = 10 * time.Second
	DefaultPolicy         = "fields"
)

// Environment variable names.
const (
	EnvDatabase          = "BANDICOOT_DB"
	EnvReportSources     = "BANDICOOT_REPORT_SOURCES"
	EnvFingerprintPolicy = "BANDICOOT_FINGERPRINT_POLICY"
)

// DefaultDatabasePath returns the per-user database location,
// ~/.bandicoot/crash_logs.db. Falls back to the working directory when the
// home directory cannot be resolved.
func DefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "crash_logs.db"
	}
	return filepath.Join(home, ".bandicoot", "crash_logs.db")
}

// DefaultReportSources returns the standard diagnostic-report directories.
func DefaultReportSources() []string {
	sources := []string{"/Library/Logs/DiagnosticReports/*"}
	if home, err := os.UserHomeDir(); err == nil {
		sources = append([]string{
			filepath.Join(home, "Library", "Logs", "DiagnosticReports", "*"),
		}, sources...)
	}
	return sources
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Database:          DefaultDatabasePath(),
		ReportSources:     DefaultReportSources(),
		FingerprintPolicy: DefaultPolicy,
		Workers:           DefaultWorkers,
	}
}

// applyEnvironmentOverrides applies environment variable overrides.
// BANDICOOT_REPORT_SOURCES is a comma-separated glob list.
func (c *Config) applyEnvironmentOverrides() {
	if db := os.Getenv(EnvDatabase); db != "" {
		c.Database = db
	}
	if sources := os.Getenv(EnvReportSources); sources != "" {
		c.ReportSources = c.ReportSources[:0]
		for _, src := range strings.Split(sources, ",") {
			if src = strings.TrimSpace(src); src != "" {
				c.ReportSources = append(c.ReportSources, src)
			}
		}
	}
	if policy := os.Getenv(EnvFingerprintPolicy); policy != "" {
		c.FingerprintPolicy = policy
	}
}
