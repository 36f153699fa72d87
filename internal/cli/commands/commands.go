// Package commands implements the Bandicoot subcommands.
package commands

import (
	"context"
	"fmt"

	"github.com/bandicoot-project/bandicoot/pkg/config"
	"github.com/bandicoot-project/bandicoot/pkg/output"
	"github.com/bandicoot-project/bandicoot/pkg/store"
)

// ExitCode is set by commands to indicate the result:
// 0 nothing new, 1 new crash reports found, 2 configuration or runtime error.
var ExitCode = 0

// commonOptions are flags shared by every store-touching command.
type commonOptions struct {
	ConfigPath string
	Database   string
	Output     string
	Verbose    bool
	Quiet      bool
}

// loadConfig resolves the effective configuration: defaults, then the config
// file if given, then flag overrides.
func loadConfig(ctx context.Context, opts *commonOptions) (*config.Config, error) {
	var cfg *config.Config
	if opts.ConfigPath != "" {
		loaded, err := config.Load(ctx, opts.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	} else {
		cfg = config.DefaultConfig()
	}

	if opts.Database != "" {
		cfg.Database = opts.Database
	}
	return cfg, nil
}

// openStore opens the configured database.
func openStore(cfg *config.Config) (*store.Store, error) {
	st, err := store.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return st, nil
}

// createFormatter builds the formatter selected by --output.
func createFormatter(opts *commonOptions) (output.Formatter, error) {
	formatOpts := output.FormatOptions{
		Verbose: opts.Verbose,
		Quiet:   opts.Quiet,
	}

	switch opts.Output {
	case "text":
		return output.NewTextFormatter(formatOpts), nil
	case "json":
		return output.NewJSONFormatter(formatOpts), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (use text or json)", opts.Output)
	}
}
