package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rahidz/oeismatcher/internal/daemon"
	"github.com/rahidz/oeismatcher/internal/pipeline"
	"github.com/rahidz/oeismatcher/internal/ui"
)

func newTUICmd() *cobra.Command {
	var depth int
	var similarity int
	var combos int
	var triples int

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Interactive sequence explorer",
		Long: `Open an interactive explorer: type a sequence, press enter, and watch
the per-stage results come back. A sparkline under the input tracks the
growth curve of the typed terms.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := loadConfig()
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			handler := daemon.NewHandler(st, cfg, cfg.Paths.DB, nil)

			analyze := func(queryText string) ui.ExploreResult {
				res, err := handler.HandleAnalyze(context.Background(), daemon.AnalyzeParams{
					Query:      queryText,
					Depth:      depth,
					Similarity: similarity,
					Combos:     combos,
					Triples:    triples,
				})
				if err != nil {
					return ui.ExploreResult{Err: err}
				}
				return exploreSections(res)
			}

			return ui.RunExplorer(analyze, ui.DetectNoColor())
		},
	}

	cmd.Flags().IntVarP(&depth, "depth", "d", 1, "Transform-chain search depth")
	cmd.Flags().IntVar(&similarity, "similarity", 5, "Similarity-ranked results")
	cmd.Flags().IntVar(&combos, "combos", 5, "Maximum 2-sequence combinations")
	cmd.Flags().IntVar(&triples, "triples", 0, "Maximum 3-sequence combinations")
	return cmd
}

// exploreSections flattens a pipeline result into the explorer's view model.
func exploreSections(res *pipeline.ResultJSON) ui.ExploreResult {
	var out ui.ExploreResult

	var exact []string
	for _, m := range res.ExactMatches {
		line := fmt.Sprintf("%s  %s len=%d score=%.1f", m.ID, m.Kind, m.Length, m.Score)
		if m.Name != "" {
			line += "  " + m.Name
		}
		exact = append(exact, line)
	}
	out.Sections = append(out.Sections, ui.ExploreSection{Title: "Exact", Lines: exact})

	var transforms []string
	for _, m := range res.TransformMatches {
		line := fmt.Sprintf("%s  %s  score=%.2f", m.ID, m.Chain, m.Score)
		if m.Name != "" {
			line += "  " + m.Name
		}
		transforms = append(transforms, line)
	}
	out.Sections = append(out.Sections, ui.ExploreSection{Title: "Transforms", Lines: transforms})

	var similar []string
	for _, s := range res.Similarity {
		similar = append(similar, fmt.Sprintf("%s  corr=%+.4f mse=%.3g  %s", s.ID, s.Corr, s.MSE, s.Name))
	}
	out.Sections = append(out.Sections, ui.ExploreSection{Title: "Similar", Lines: similar})

	var combos []string
	for _, c := range res.Combinations {
		combos = append(combos, fmt.Sprintf("%s  score=%.3f", c.Expression, c.Score))
	}
	for _, c := range res.TripleCombinations {
		combos = append(combos, fmt.Sprintf("%s  score=%.3f", c.Expression, c.Score))
	}
	out.Sections = append(out.Sections, ui.ExploreSection{Title: "Combinations", Lines: combos})

	return out
}
