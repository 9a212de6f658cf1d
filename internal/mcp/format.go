package mcp

import (
	"fmt"
	"strings"

	"github.com/rahidz/oeismatcher/internal/pipeline"
)

// FormatAnalysis renders a pipeline result as markdown for tool text output.
func FormatAnalysis(queryText string, res *pipeline.ResultJSON) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Matches for %s\n\n", queryText))

	total := len(res.ExactMatches) + len(res.TransformMatches) +
		len(res.Combinations) + len(res.TripleCombinations)
	if total == 0 && len(res.Similarity) == 0 {
		sb.WriteString("No matches found.\n")
		return sb.String()
	}

	if len(res.ExactMatches) > 0 {
		sb.WriteString("### Exact matches\n\n")
		for _, m := range res.ExactMatches {
			formatMatch(&sb, m)
		}
		sb.WriteString("\n")
	}

	if len(res.TransformMatches) > 0 {
		sb.WriteString("### Transform matches\n\n")
		for _, m := range res.TransformMatches {
			formatMatch(&sb, m)
		}
		sb.WriteString("\n")
	}

	if len(res.Similarity) > 0 {
		sb.WriteString("### Similar sequences\n\n")
		for _, s := range res.Similarity {
			sb.WriteString(fmt.Sprintf("- **%s** corr=%.4f mse=%.3g", s.ID, s.Corr, s.MSE))
			if s.Name != "" {
				sb.WriteString(" — " + s.Name)
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	if len(res.Combinations) > 0 || len(res.TripleCombinations) > 0 {
		sb.WriteString("### Combinations\n\n")
		for _, c := range res.Combinations {
			formatCombination(&sb, c)
		}
		for _, c := range res.TripleCombinations {
			formatCombination(&sb, c)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func formatMatch(sb *strings.Builder, m pipeline.MatchJSON) {
	sb.WriteString(fmt.Sprintf("- **%s** (%s, length %d, score %.2f)", m.ID, m.Kind, m.Length, m.Score))
	if m.Chain != "" {
		sb.WriteString(fmt.Sprintf(" via `%s`", m.Chain))
	}
	if m.Name != "" {
		sb.WriteString(" — " + m.Name)
	}
	sb.WriteString("\n")
	if m.Offset > 0 {
		sb.WriteString(fmt.Sprintf("  - offset %d\n", m.Offset))
	}
	if len(m.Snippet) > 0 {
		sb.WriteString("  - terms: " + strings.Join(m.Snippet, ", ") + "\n")
	}
}

func formatCombination(sb *strings.Builder, c pipeline.CombinationJSON) {
	sb.WriteString(fmt.Sprintf("- `%s` (length %d, score %.3f)", c.Expression, c.Length, c.Score))
	if len(c.Names) > 0 {
		var named []string
		for i, id := range c.IDs {
			if i < len(c.Names) && c.Names[i] != "" {
				named = append(named, id+": "+c.Names[i])
			}
		}
		if len(named) > 0 {
			sb.WriteString(" — " + strings.Join(named, "; "))
		}
	}
	sb.WriteString("\n")
}

// FormatStatus renders index status as markdown.
func FormatStatus(st IndexStatusOutput) string {
	if !st.Ready {
		return "Index is not ready. Run `oeismatch build-index` to build it."
	}
	return fmt.Sprintf("Index ready: %d sequences (lengths %d-%d) at %s",
		st.SequenceCount, st.MinLength, st.MaxLength, st.IndexPath)
}
