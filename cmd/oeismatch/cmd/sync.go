package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rahidz/oeismatcher/internal/ingest"
	"github.com/rahidz/oeismatcher/internal/output"
	"github.com/rahidz/oeismatcher/internal/ui"
)

func newSyncCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Download the OEIS dump files",
		Long: `Download the stripped (terms) and names dumps from oeis.org to the
configured paths. Existing files are kept unless --force is given.

After syncing, run 'oeismatch build-index' to build the local index.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := loadConfig()
			out := output.New(cmd.OutOrStdout())

			out.Statusf("⬇️ ", "downloading dumps to %s", cfg.Paths.Stripped)
			result, err := ingest.SyncData(cmd.Context(), ingest.SyncOptions{
				StrippedPath: cfg.Paths.Stripped,
				NamesPath:    cfg.Paths.Names,
				Force:        force,
			})
			if err != nil {
				return err
			}

			out.Successf("stripped: %s (%s)", result.Stripped.Status, ui.FormatBytes(result.Stripped.Bytes))
			out.Successf("names:    %s (%s)", result.Names.Status, ui.FormatBytes(result.Names.Bytes))
			out.Status("", "next: oeismatch build-index")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Re-download even if the files exist")
	return cmd
}
