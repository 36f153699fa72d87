package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/bandicoot-project/bandicoot/pkg/report"
	"github.com/bandicoot-project/bandicoot/pkg/store"
)

// ListOptions holds command-line options for the list command.
type ListOptions struct {
	commonOptions

	Dialect string
	Process string
	Since   string
	Until   string
	Limit   int
}

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	opts := &ListOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored crash reports",
		Long: `List crash reports from the database, most recently seen first.

Time filters accept a duration looking back from now ("24h", "30m") or an
absolute time ("2024-01-15", "2024-01-15T10:30:00Z").`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to config file")
	cmd.Flags().StringVar(&opts.Database, "db", "", "Path to database file (overrides config)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().StringVar(&opts.Dialect, "dialect", "", "Filter by dialect")
	cmd.Flags().StringVar(&opts.Process, "process", "", "Filter by process name substring")
	cmd.Flags().StringVar(&opts.Since, "since", "", "Only reports last seen after this time")
	cmd.Flags().StringVar(&opts.Until, "until", "", "Only reports last seen before this time")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Maximum number of reports to show")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show fingerprints and seen times")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Count only")

	return cmd
}

func runList(cmd *cobra.Command, opts *ListOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	filter := store.Filter{
		Process: opts.Process,
		Limit:   opts.Limit,
	}

	if opts.Dialect != "" {
		dialect, ok := report.ParseDialect(opts.Dialect)
		if !ok {
			return fmt.Errorf("unknown dialect %q", opts.Dialect)
		}
		filter.Dialect = dialect
	}

	var err error
	if filter.Since, err = parseTimeFlag(opts.Since); err != nil {
		return fmt.Errorf("invalid --since: %w", err)
	}
	if filter.Until, err = parseTimeFlag(opts.Until); err != nil {
		return fmt.Errorf("invalid --until: %w", err)
	}

	cfg, err := loadConfig(ctx, &opts.commonOptions)
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	records, err := st.Query(ctx, filter)
	if err != nil {
		return fmt.Errorf("querying crash reports: %w", err)
	}

	formatter, err := createFormatter(&opts.commonOptions)
	if err != nil {
		return err
	}
	return formatter.FormatRecords(ctx, records, os.Stdout)
}

// parseTimeFlag accepts a look-back duration ("24h") or an absolute time.
func parseTimeFlag(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}

	if d, err := time.ParseDuration(s); err == nil {
		return time.Now().Add(-d), nil
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}
