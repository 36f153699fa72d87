package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// WipeOptions holds command-line options for the wipe command.
type WipeOptions struct {
	commonOptions

	Force bool
}

// NewWipeCommand creates the wipe command.
func NewWipeCommand() *cobra.Command {
	opts := &WipeOptions{}

	cmd := &cobra.Command{
		Use:   "wipe",
		Short: "Delete every stored crash report",
		Long: `Delete every crash report from the database, including annotations.

This is the only deletion path and requires --force.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWipe(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to config file")
	cmd.Flags().StringVar(&opts.Database, "db", "", "Path to database file (overrides config)")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Confirm the wipe")

	return cmd
}

func runWipe(cmd *cobra.Command, opts *WipeOptions) error {
	if !opts.Force {
		return errors.New("refusing to wipe without --force")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
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

	count, err := st.Count(ctx)
	if err != nil {
		return err
	}
	if err := st.Wipe(ctx); err != nil {
		return err
	}

	fmt.Printf("Wiped %d crash reports\n", count)
	return nil
}
