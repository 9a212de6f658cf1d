package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/rahidz/oeismatcher/internal/daemon"
)

func newTSearchCmd() *cobra.Command {
	var opts analyzeOptions
	var depth int

	cmd := &cobra.Command{
		Use:   "tsearch <sequence>",
		Short: "Transform-chain search",
		Long: `Apply chains of unary transforms (scale, affine, differences, partial
sums, reversal, ...) to the query and match each result against the
index. Depth 2 composes two transforms and is substantially slower.

Examples:
  oeismatch tsearch 2,4,6,8,10
  oeismatch tsearch 1,3,6,10,15 --depth 2`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), cmd, daemon.AnalyzeParams{
				Query:          strings.Join(args, " "),
				MinMatchLength: opts.minLength,
				Depth:          depth,
				Limit:          opts.limit,
				Diagnostics:    opts.diagnostics,
			}, opts)
		},
	}

	addAnalyzeFlags(cmd, &opts)
	cmd.Flags().IntVarP(&depth, "depth", "d", 1, "Maximum transform-chain length (1 or 2)")
	return cmd
}
