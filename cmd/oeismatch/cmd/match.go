package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/rahidz/oeismatcher/internal/daemon"
)

func newMatchCmd() *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "match <sequence>",
		Short: "Exact prefix/subsequence lookup",
		Long: `Look the query up verbatim: does it appear as the prefix of a stored
sequence, or (with --subsequence) anywhere inside one? Tokens ? and *
are wildcards matching any single term.

Examples:
  oeismatch match 0,1,1,2,3,5
  oeismatch match 31,37,41 --subsequence
  oeismatch match "1 ? 5 7" --limit 5`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), cmd, daemon.AnalyzeParams{
				Query:          strings.Join(args, " "),
				MinMatchLength: opts.minLength,
				Subsequence:    opts.subsequence,
				Limit:          opts.limit,
				Diagnostics:    opts.diagnostics,
			}, opts)
		},
	}

	addAnalyzeFlags(cmd, &opts)
	return cmd
}
