package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/rahidz/oeismatcher/internal/daemon"
)

func newComboCmd() *cobra.Command {
	var opts analyzeOptions
	var combos int
	var triples int

	cmd := &cobra.Command{
		Use:   "combo <sequence>",
		Short: "Linear-combination search",
		Long: `Search for 2- and 3-sequence integer linear combinations that equal
the query exactly, allowing small index shifts and per-component
transforms. The heaviest search mode; work caps in the config bound it.

Examples:
  oeismatch combo 3,5,7,9,11
  oeismatch combo 2,1,0,-1,-2,-3 --triples 3`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), cmd, daemon.AnalyzeParams{
				Query:          strings.Join(args, " "),
				MinMatchLength: opts.minLength,
				Combos:         combos,
				Triples:        triples,
				Limit:          opts.limit,
				Diagnostics:    opts.diagnostics,
			}, opts)
		},
	}

	addAnalyzeFlags(cmd, &opts)
	cmd.Flags().IntVar(&combos, "combos", 10, "Maximum 2-sequence combinations")
	cmd.Flags().IntVar(&triples, "triples", 0, "Maximum 3-sequence combinations (0 disables)")
	return cmd
}
