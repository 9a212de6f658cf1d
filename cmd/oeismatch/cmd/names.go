package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rahidz/oeismatcher/internal/output"
	"github.com/rahidz/oeismatcher/internal/textindex"
)

func newNamesCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "names <text>",
		Short: "Full-text search over sequence names and keywords",
		Long: `Search the name index instead of the terms: find sequences whose OEIS
name or keywords match the text. Useful when you remember what a
sequence is called but not its values.

Examples:
  oeismatch names catalan
  oeismatch names "prime gaps" --limit 5`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			queryText := strings.Join(args, " ")
			cfg := loadConfig()

			idx, err := textindex.Open(cfg.Paths.NameIndex)
			if err != nil {
				return fmt.Errorf("opening name index: %w", err)
			}
			defer func() { _ = idx.Close() }()

			count, err := idx.Count()
			if err != nil {
				return err
			}
			if count == 0 {
				return fmt.Errorf("name index is empty. Run 'oeismatch build-index' first")
			}

			hits, err := idx.Search(cmd.Context(), queryText, limit)
			if err != nil {
				return err
			}

			out := output.New(cmd.OutOrStdout())
			if len(hits) == 0 {
				out.Status("", "no sequences match "+queryText)
				return nil
			}
			for _, h := range hits {
				out.Statusf("●", "%s  score=%.3f  %s", h.ID, h.Score, h.Name)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of results")
	return cmd
}
