package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bandicoot-project/bandicoot/pkg/config"
	"github.com/bandicoot-project/bandicoot/pkg/fingerprint"
	"github.com/bandicoot-project/bandicoot/pkg/ingest"
	"github.com/bandicoot-project/bandicoot/pkg/scan"
	"github.com/bandicoot-project/bandicoot/pkg/webhook"
)

// ScanOptions holds command-line options for the scan command.
type ScanOptions struct {
	commonOptions

	Sources []string
	Policy  string
	Workers int

	// Webhook options
	WebhookURL     string
	WebhookToken   string
	WebhookTrigger string
}

// NewScanCommand creates the scan command.
func NewScanCommand() *cobra.Command {
	opts := &ScanOptions{}

	cmd := &cobra.Command{
		Use:   "scan [report files or globs...]",
		Short: "Sweep crash reports into the database",
		Long: `Sweep crash-report files into the database.

Without arguments, the configured report sources are scanned (defaulting to
the standard DiagnosticReports directories). Each report is classified,
normalized, fingerprinted, and upserted; re-scanning the same reports is
idempotent.

Exit codes:
  0 - No new crash reports
  1 - New crash reports stored
  2 - Configuration or runtime error`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, args, opts)
		},
	}

	// Flags
	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to config file")
	cmd.Flags().StringVar(&opts.Database, "db", "", "Path to database file (overrides config)")
	cmd.Flags().StringSliceVar(&opts.Sources, "source", nil, "Report source glob (can be repeated, overrides config)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().StringVar(&opts.Policy, "fingerprint", "", "Fingerprint policy (fields|raw)")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "Number of concurrent ingestion workers")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show every report, not just new ones")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no details")

	// Webhook flags
	cmd.Flags().StringVar(&opts.WebhookURL, "webhook-url", "", "Webhook endpoint URL")
	cmd.Flags().StringVar(&opts.WebhookToken, "webhook-token", "", "Bearer token for webhook auth")
	cmd.Flags().StringVar(&opts.WebhookTrigger, "webhook-trigger", "on_new", "When to fire webhook (on_new|always|never)")

	return cmd
}

func runScan(cmd *cobra.Command, args []string, opts *ScanOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(ctx, &opts.commonOptions)
	if err != nil {
		return err
	}
	if opts.Policy != "" {
		cfg.FingerprintPolicy = opts.Policy
	}
	if !fingerprint.Policy(cfg.FingerprintPolicy).Valid() {
		return fmt.Errorf("invalid fingerprint policy %q (use fields or raw)", cfg.FingerprintPolicy)
	}
	if opts.Workers > 0 {
		cfg.Workers = opts.Workers
	}

	// Positional args and --source both override the configured globs.
	sources := cfg.ReportSources
	if len(opts.Sources) > 0 {
		sources = opts.Sources
	}
	if len(args) > 0 {
		sources = args
	}

	files, err := scan.ExpandGlobs(sources)
	if err != nil {
		return fmt.Errorf("expanding report sources: %w", err)
	}

	reports, loadErrs := scan.LoadAll(files)
	for _, loadErr := range loadErrs {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", loadErr)
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	pipeline := ingest.New(st, fingerprint.Policy(cfg.FingerprintPolicy))
	sweep := pipeline.Sweep(ctx, reports, cfg.Workers)

	formatter, err := createFormatter(&opts.commonOptions)
	if err != nil {
		return err
	}
	if err := formatter.FormatSweep(ctx, sweep, os.Stdout); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	// Send webhooks (errors logged but don't fail the sweep)
	sendWebhooks(ctx, cfg, opts, sweep)

	if sweep.HasNew() {
		ExitCode = 1
	}

	return nil
}

// sendWebhooks posts the sweep report to all configured webhooks.
func sendWebhooks(ctx context.Context, cfg *config.Config, opts *ScanOptions, sweep *ingest.SweepReport) {
	webhooks := collectWebhooks(cfg, opts)
	if len(webhooks) == 0 {
		return
	}

	client := webhook.NewClient()

	for _, wh := range webhooks {
		if !shouldFireWebhook(wh.Trigger, sweep.HasNew()) {
			continue
		}

		resp := client.Send(ctx, sweep, webhook.SendOptions{
			URL:     wh.URL,
			Token:   wh.Token,
			Timeout: wh.Timeout,
		})

		name := wh.Name
		if name == "" {
			name = wh.URL
		}

		if resp.Success() {
			fmt.Fprintf(os.Stderr, "Webhook %s: sent (%d, %s)\n", name, resp.StatusCode, resp.Duration)
		} else {
			fmt.Fprintf(os.Stderr, "Webhook %s: failed (%v)\n", name, resp.Error)
		}
	}
}

// collectWebhooks merges config file webhooks with the CLI webhook.
func collectWebhooks(cfg *config.Config, opts *ScanOptions) []config.WebhookConfig {
	webhooks := make([]config.WebhookConfig, 0, len(cfg.Webhooks)+1)
	webhooks = append(webhooks, cfg.Webhooks...)

	if opts.WebhookURL != "" {
		trigger := config.WebhookTrigger(opts.WebhookTrigger)
		if trigger == "" {
			trigger = config.WebhookTriggerOnNew
		}

		webhooks = append(webhooks, config.WebhookConfig{
			Name:    "cli",
			URL:     opts.WebhookURL,
			Token:   opts.WebhookToken,
			Trigger: trigger,
			Timeout: config.DefaultWebhookTimeout,
		})
	}

	return webhooks
}

// shouldFireWebhook determines if a webhook fires for this sweep.
func shouldFireWebhook(trigger config.WebhookTrigger, hasNew bool) bool {
	switch trigger {
	case config.WebhookTriggerAlways:
		return true
	case config.WebhookTriggerNever:
		return false
	case config.WebhookTriggerOnNew:
		return hasNew
	default:
		return hasNew
	}
}
