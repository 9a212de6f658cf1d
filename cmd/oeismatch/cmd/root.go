// Package cmd provides the CLI commands for oeismatch.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rahidz/oeismatcher/internal/logging"
)

// Debug logging flag
var (
	debugMode      bool
	loggingCleanup func()
)

// NewRootCmd creates the root command for the oeismatch CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "oeismatch",
		Short: "Offline matcher against the OEIS sequence corpus",
		Long: `oeismatch identifies integer sequences against a local index of the
Online Encyclopedia of Integer Sequences (~400k sequences).

Given a short sequence it reports:
  - exact prefix and subsequence matches (with ? wildcards)
  - transform-chain matches (scaled, differenced, summed, ... versions)
  - similarity-ranked near matches
  - integer linear combinations of 2 or 3 known sequences

Get started:
  oeismatch sync           # download the OEIS dumps
  oeismatch build-index    # build the local index
  oeismatch analyze 1,1,2,3,5,8`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if debugMode {
				cleanup, err := logging.SetupDefault()
				if err != nil {
					return fmt.Errorf("failed to set up debug logging: %w", err)
				}
				loggingCleanup = cleanup
				slog.Debug("debug logging enabled", slog.String("dir", logging.DefaultLogDir()))
			}
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if loggingCleanup != nil {
				loggingCleanup()
				loggingCleanup = nil
			}
		},
	}

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.oeismatch/logs/")

	cmd.AddCommand(
		newAnalyzeCmd(),
		newMatchCmd(),
		newTSearchCmd(),
		newComboCmd(),
		newNamesCmd(),
		newSyncCmd(),
		newBuildIndexCmd(),
		newStatusCmd(),
		newTUICmd(),
		newServeCmd(),
		newMCPCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)

	return cmd
}

// Execute runs the root command.
func Execute() error {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
