package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/rahidz/oeismatcher/internal/daemon"
)

func newAnalyzeCmd() *cobra.Command {
	var opts analyzeOptions
	var depth int
	var similarity int
	var combos int
	var triples int

	cmd := &cobra.Command{
		Use:   "analyze <sequence>",
		Short: "Run the full matching pipeline on a sequence",
		Long: `Run every matching stage on the query: exact match, transform-chain
search, similarity ranking, and 2-/3-sequence combination search.

Examples:
  oeismatch analyze 1,1,2,3,5,8
  oeismatch analyze "0 1 4 9 16 25" --depth 2
  oeismatch analyze 3,5,7,9,11 --combos 5 --triples 3
  oeismatch analyze 1,?,5,7 --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), cmd, daemon.AnalyzeParams{
				Query:          strings.Join(args, " "),
				MinMatchLength: opts.minLength,
				Subsequence:    opts.subsequence,
				Depth:          depth,
				Similarity:     similarity,
				Combos:         combos,
				Triples:        triples,
				Limit:          opts.limit,
				Diagnostics:    opts.diagnostics,
			}, opts)
		},
	}

	addAnalyzeFlags(cmd, &opts)
	cmd.Flags().IntVarP(&depth, "depth", "d", 1, "Transform-chain search depth (0 disables)")
	cmd.Flags().IntVar(&similarity, "similarity", 5, "Similarity-ranked results (0 disables)")
	cmd.Flags().IntVar(&combos, "combos", 5, "Maximum 2-sequence combinations (0 disables)")
	cmd.Flags().IntVar(&triples, "triples", 0, "Maximum 3-sequence combinations (0 disables)")

	return cmd
}
