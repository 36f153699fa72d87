package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// AnnotateOptions holds command-line options for the annotate command.
type AnnotateOptions struct {
	commonOptions
}

// NewAnnotateCommand creates the annotate command.
func NewAnnotateCommand() *cobra.Command {
	opts := &AnnotateOptions{}

	cmd := &cobra.Command{
		Use:   "annotate <id> <note...>",
		Short: "Attach a free-text note to a crash report",
		Long: `Attach a free-text note to a stored crash report by its id.

The note survives re-scans: re-ingesting the same report only bumps its
last-seen time and never touches the annotation. An empty note clears it.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnnotate(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to config file")
	cmd.Flags().StringVar(&opts.Database, "db", "", "Path to database file (overrides config)")

	return cmd
}

func runAnnotate(cmd *cobra.Command, args []string, opts *AnnotateOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q", args[0])
	}
	note := strings.Join(args[1:], " ")

	cfg, err := loadConfig(ctx, &opts.commonOptions)
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Annotate(ctx, id, note); err != nil {
		return err
	}

	if note == "" {
		fmt.Printf("Cleared note on crash report #%d\n", id)
	} else {
		fmt.Printf("Annotated crash report #%d\n", id)
	}
	return nil
}
