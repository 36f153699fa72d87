// Package config provides configuration loading and validation for Bandicoot.
package config

import "time"

// Config is the root configuration structure loaded from YAML.
type Config struct {
	// Database is the path to the SQLite database file.
	Database string `yaml:"database"`

	// ReportSources lists glob patterns for crash-report files.
	ReportSources []string `yaml:"report_sources"`

	// FingerprintPolicy selects what deduplication hashes: "fields"
	// (default) or "raw".
	FingerprintPolicy string `yaml:"fingerprint_policy,omitempty"`

	// Workers is the sweep concurrency. Defaults to 4.
	Workers int `yaml:"workers,omitempty"`

	// Webhooks receive the sweep report after a scan.
	Webhooks []WebhookConfig `yaml:"webhooks,omitempty"`
}

// WebhookTrigger determines when a webhook fires.
type WebhookTrigger string

const (
	// WebhookTriggerOnNew fires only when a sweep found new crash reports
	// (default).
	WebhookTriggerOnNew WebhookTrigger = "on_new"
	// WebhookTriggerAlways fires after every sweep.
	WebhookTriggerAlways WebhookTrigger = "always"
	// WebhookTriggerNever disables the webhook.
	WebhookTriggerNever WebhookTrigger = "never"
)

// WebhookConfig defines a webhook endpoint for sweep reports.
type WebhookConfig struct {
	// Name is an optional identifier for the webhook.
	Name string `yaml:"name,omitempty"`

	// URL is the webhook endpoint (required).
	URL string `yaml:"url"`

	// Token is an optional bearer token for authentication.
	// ${VAR} and $VAR forms are expanded from the environment.
	Token string `yaml:"token,omitempty"`

	// Trigger determines when the webhook fires.
	// Defaults to "on_new" if not specified.
	Trigger WebhookTrigger `yaml:"trigger,omitempty"`

	// Timeout is the HTTP request timeout. Defaults to 10s.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}
