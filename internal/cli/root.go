// Package cli provides the command-line interface for Bandicoot.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bandicoot-project/bandicoot/internal/cli/commands"
)

// Execute runs the root command and returns the exit code.
func Execute() int {
	rootCmd := NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		// Print error to stderr (SilenceErrors prevents Cobra from doing this)
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2 // Configuration or runtime error
	}
	return commands.ExitCode
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bandicoot",
		Short: "Collect and browse OS crash reports",
		Long: `Bandicoot sweeps crash and diagnostic reports into a local database.

It recognizes several report dialects:
  - Legacy crash reports (.crash)
  - Diagnostic reports (.diag, .spin)
  - IPS reports (.ips)
  - Shutdown stall reports (.shutdownStall)

Each report is normalized, fingerprinted for deduplication, and stored.
Re-running a sweep over the same (or rotated) files is safe: already-known
reports only have their last-seen time bumped, and annotations survive.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add subcommands
	rootCmd.AddCommand(commands.NewScanCommand())
	rootCmd.AddCommand(commands.NewListCommand())
	rootCmd.AddCommand(commands.NewAnnotateCommand())
	rootCmd.AddCommand(commands.NewWipeCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
