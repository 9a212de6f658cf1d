package output

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/rahidz/oeismatcher/internal/combination"
	"github.com/rahidz/oeismatcher/internal/matcher"
	"github.com/rahidz/oeismatcher/internal/pipeline"
	"github.com/rahidz/oeismatcher/internal/similarity"
	"github.com/rahidz/oeismatcher/internal/transform"
)

func formatSnippet(terms []*big.Int) string {
	if len(terms) == 0 {
		return ""
	}
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}

func truncateName(name string, max int) string {
	if len(name) <= max {
		return name
	}
	return name[:max-1] + "…"
}

// ExactMatches prints exact prefix/subsequence matches.
func (w *Writer) ExactMatches(matches []matcher.Match) {
	if len(matches) == 0 {
		w.Status("", "no exact matches")
		return
	}
	for _, m := range matches {
		line := fmt.Sprintf("%s  %-11s off=%-3d len=%-3d score=%.1f", m.ID, m.Kind, m.Offset, m.Length, m.Score)
		if m.Name != "" {
			line += "  " + truncateName(m.Name, 60)
		}
		w.Status(w.colorize("32", "●"), line)
		if len(m.Snippet) > 0 {
			w.Status("", "  "+formatSnippet(m.Snippet))
		}
	}
}

// TransformMatches prints transform-chain matches with their chain description.
func (w *Writer) TransformMatches(matches []transform.Match) {
	if len(matches) == 0 {
		w.Status("", "no transform matches")
		return
	}
	for _, m := range matches {
		line := fmt.Sprintf("%s  %-11s len=%-3d score=%.2f  chain=%s", m.ID, m.Kind, m.Length, m.Score, m.ChainName)
		if m.Name != "" {
			line += "  " + truncateName(m.Name, 50)
		}
		w.Status(w.colorize("36", "●"), line)
		if m.Explanation != "" {
			w.Status("", "  "+m.Explanation)
		}
	}
}

// SimilarityResults prints similarity-ranked candidates.
func (w *Writer) SimilarityResults(scored []similarity.Scored) {
	if len(scored) == 0 {
		w.Status("", "no similar sequences")
		return
	}
	for _, s := range scored {
		line := fmt.Sprintf("%s  corr=%+.4f mse=%.3g scale=%.3g offset=%.3g", s.Record.ID, s.Corr, s.MSE, s.Scale, s.Offset)
		if s.Record.Name != "" {
			line += "  " + truncateName(s.Record.Name, 50)
		}
		w.Status(w.colorize("35", "●"), line)
	}
}

// Combinations prints 2- or 3-sequence combination matches.
func (w *Writer) Combinations(matches []combination.Match) {
	if len(matches) == 0 {
		w.Status("", "no combinations")
		return
	}
	for _, m := range matches {
		w.Status(w.colorize("33", "●"), fmt.Sprintf("%s  len=%d score=%.3f", m.Expression, m.Length, m.Score))
	}
}

// AnalysisResult prints the full pipeline result, one section per stage.
func (w *Writer) AnalysisResult(res *pipeline.AnalysisResult) {
	w.Heading("Exact matches")
	w.ExactMatches(res.ExactMatches)

	w.Heading("Transform matches")
	w.TransformMatches(res.TransformMatches)

	if len(res.Similarity) > 0 {
		w.Heading("Similar sequences")
		w.SimilarityResults(res.Similarity)
	}

	if len(res.Combinations) > 0 || len(res.TripleCombinations) > 0 {
		w.Heading("Combinations")
		w.Combinations(res.Combinations)
		if len(res.TripleCombinations) > 0 {
			w.Combinations(res.TripleCombinations)
		}
	}

	if d := res.Diagnostics; d != nil {
		w.Heading("Timings")
		w.Status("", fmt.Sprintf("exact=%s transform=%s similarity=%s combination=%s",
			d.ExactDuration, d.TransformDuration, d.SimilarityDuration, d.CombinationDuration))
		if d.UsedSubsequenceFallback {
			w.Status("", "fell back to subsequence search")
		}
		if d.UsedFullScanFallback {
			w.Status("", "fell back to full corpus scan")
		}
	}
}

// ResultJSON prints a wire-shaped pipeline result, one section per stage.
// This is the text rendering used by the CLI for both daemon and local
// results, so the two paths format identically.
func (w *Writer) ResultJSON(res *pipeline.ResultJSON) {
	w.Heading("Exact matches")
	if len(res.ExactMatches) == 0 {
		w.Status("", "no exact matches")
	}
	for _, m := range res.ExactMatches {
		line := fmt.Sprintf("%s  %-11s off=%-3d len=%-3d score=%.1f", m.ID, m.Kind, m.Offset, m.Length, m.Score)
		if m.Name != "" {
			line += "  " + truncateName(m.Name, 60)
		}
		w.Status(w.colorize("32", "●"), line)
		if len(m.Snippet) > 0 {
			w.Status("", "  "+strings.Join(m.Snippet, ", "))
		}
	}

	if len(res.TransformMatches) > 0 {
		w.Heading("Transform matches")
		for _, m := range res.TransformMatches {
			line := fmt.Sprintf("%s  %-11s len=%-3d score=%.2f  chain=%s", m.ID, m.Kind, m.Length, m.Score, m.Chain)
			if m.Name != "" {
				line += "  " + truncateName(m.Name, 50)
			}
			w.Status(w.colorize("36", "●"), line)
			if m.Explain != "" {
				w.Status("", "  "+m.Explain)
			}
		}
	}

	if len(res.Similarity) > 0 {
		w.Heading("Similar sequences")
		for _, s := range res.Similarity {
			line := fmt.Sprintf("%s  corr=%+.4f mse=%.3g scale=%.3g offset=%.3g", s.ID, s.Corr, s.MSE, s.Scale, s.Offset)
			if s.Name != "" {
				line += "  " + truncateName(s.Name, 50)
			}
			w.Status(w.colorize("35", "●"), line)
		}
	}

	if len(res.Combinations) > 0 || len(res.TripleCombinations) > 0 {
		w.Heading("Combinations")
		for _, c := range res.Combinations {
			w.Status(w.colorize("33", "●"), fmt.Sprintf("%s  len=%d score=%.3f", c.Expression, c.Length, c.Score))
		}
		for _, c := range res.TripleCombinations {
			w.Status(w.colorize("33", "●"), fmt.Sprintf("%s  len=%d score=%.3f", c.Expression, c.Length, c.Score))
		}
	}

	if d := res.Diagnostics; d != nil {
		w.Heading("Timings")
		w.Status("", fmt.Sprintf("exact=%.1fms transform=%.1fms similarity=%.1fms combination=%.1fms",
			d.ExactMS, d.TransformMS, d.SimilarityMS, d.CombinationMS))
		if d.UsedSubsequenceFallback {
			w.Status("", "fell back to subsequence search")
		}
		if d.UsedFullScanFallback {
			w.Status("", "fell back to full corpus scan")
		}
	}
}
