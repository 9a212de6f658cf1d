package pipeline

import (
	"math/big"

	"github.com/rahidz/oeismatcher/internal/combination"
	"github.com/rahidz/oeismatcher/internal/matcher"
	"github.com/rahidz/oeismatcher/internal/similarity"
	"github.com/rahidz/oeismatcher/internal/transform"
)

// The JSON result shape. Field names are stable: external
// consumers (daemon clients, MCP tools, tests) assert on them.

// MatchJSON is one exact or transform match.
type MatchJSON struct {
	ID      string   `json:"id"`
	Name    string   `json:"name,omitempty"`
	Kind    string   `json:"kind"`
	Offset  int      `json:"offset"`
	Length  int      `json:"length"`
	Score   float64  `json:"score"`
	Chain   string   `json:"chain,omitempty"`
	Explain string   `json:"explanation,omitempty"`
	Latex   string   `json:"latex,omitempty"`
	Snippet []string `json:"snippet,omitempty"`
}

// SimilarityJSON is one similarity-ranked candidate.
type SimilarityJSON struct {
	ID     string  `json:"id"`
	Name   string  `json:"name,omitempty"`
	Corr   float64 `json:"corr"`
	MSE    float64 `json:"mse"`
	Scale  float64 `json:"scale"`
	Offset float64 `json:"offset"`
}

// CombinationJSON is one 2- or 3-sequence combination match.
type CombinationJSON struct {
	IDs        []string `json:"ids"`
	Names      []string `json:"names,omitempty"`
	Coeffs     []string `json:"coeffs"`
	Shifts     []int    `json:"shifts"`
	Transforms []string `json:"transforms"`
	Length     int      `json:"length"`
	Score      float64  `json:"score"`
	Expression string   `json:"expression"`
	Latex      string   `json:"latex,omitempty"`
}

// DiagnosticsJSON carries per-stage timings in milliseconds plus fallback flags.
type DiagnosticsJSON struct {
	ExactMS                 float64 `json:"exact_ms"`
	TransformMS             float64 `json:"transform_ms"`
	SimilarityMS            float64 `json:"similarity_ms"`
	CombinationMS           float64 `json:"combination_ms"`
	UsedSubsequenceFallback bool    `json:"used_subsequence_fallback,omitempty"`
	UsedFullScanFallback    bool    `json:"used_full_scan_fallback,omitempty"`
}

// ResultJSON is the full pipeline result in its wire shape.
type ResultJSON struct {
	Query              []string          `json:"query"`
	ExactMatches       []MatchJSON       `json:"exact_matches"`
	TransformMatches   []MatchJSON       `json:"transform_matches"`
	Similarity         []SimilarityJSON  `json:"similarity"`
	Combinations       []CombinationJSON `json:"combinations"`
	TripleCombinations []CombinationJSON `json:"triple_combinations"`
	Diagnostics        *DiagnosticsJSON  `json:"diagnostics,omitempty"`
}

func intStrings(terms []*big.Int) []string {
	if len(terms) == 0 {
		return nil
	}
	out := make([]string, len(terms))
	for i, t := range terms {
		out[i] = t.String()
	}
	return out
}

func exactJSON(ms []matcher.Match) []MatchJSON {
	out := make([]MatchJSON, len(ms))
	for i, m := range ms {
		out[i] = MatchJSON{
			ID:      m.ID,
			Name:    m.Name,
			Kind:    string(m.Kind),
			Offset:  m.Offset,
			Length:  m.Length,
			Score:   m.Score,
			Snippet: intStrings(m.Snippet),
		}
	}
	return out
}

func transformJSON(ms []transform.Match) []MatchJSON {
	out := make([]MatchJSON, len(ms))
	for i, m := range ms {
		out[i] = MatchJSON{
			ID:      m.ID,
			Name:    m.Name,
			Kind:    string(m.Kind),
			Offset:  m.Offset,
			Length:  m.Length,
			Score:   m.Score,
			Chain:   m.ChainName,
			Explain: m.Explanation,
			Latex:   m.Latex,
			Snippet: intStrings(m.Snippet),
		}
	}
	return out
}

func similarityJSON(ss []similarity.Scored) []SimilarityJSON {
	out := make([]SimilarityJSON, len(ss))
	for i, s := range ss {
		out[i] = SimilarityJSON{
			ID:     s.Record.ID,
			Name:   s.Record.Name,
			Corr:   s.Corr,
			MSE:    s.MSE,
			Scale:  s.Scale,
			Offset: s.Offset,
		}
	}
	return out
}

func combinationJSON(ms []combination.Match) []CombinationJSON {
	out := make([]CombinationJSON, len(ms))
	for i, m := range ms {
		coeffs := make([]string, len(m.Coeffs))
		for j, c := range m.Coeffs {
			coeffs[j] = c.RatString()
		}
		out[i] = CombinationJSON{
			IDs:        m.IDs,
			Names:      m.Names,
			Coeffs:     coeffs,
			Shifts:     m.Shifts,
			Transforms: m.TransformNames,
			Length:     m.Length,
			Score:      m.Score,
			Expression: m.Expression,
			Latex:      m.Latex,
		}
	}
	return out
}

// JSON converts an AnalysisResult to its stable wire shape. Empty stages
// render as empty arrays, not null, so consumers can index unconditionally.
func (r *AnalysisResult) JSON() *ResultJSON {
	queryTerms := make([]string, len(r.Query.Terms))
	for i, t := range r.Query.Terms {
		if t.IsAny() {
			queryTerms[i] = "?"
			continue
		}
		queryTerms[i] = t.Int().String()
	}

	out := &ResultJSON{
		Query:              queryTerms,
		ExactMatches:       exactJSON(r.ExactMatches),
		TransformMatches:   transformJSON(r.TransformMatches),
		Similarity:         similarityJSON(r.Similarity),
		Combinations:       combinationJSON(r.Combinations),
		TripleCombinations: combinationJSON(r.TripleCombinations),
	}

	if d := r.Diagnostics; d != nil {
		out.Diagnostics = &DiagnosticsJSON{
			ExactMS:                 float64(d.ExactDuration.Microseconds()) / 1000,
			TransformMS:             float64(d.TransformDuration.Microseconds()) / 1000,
			SimilarityMS:            float64(d.SimilarityDuration.Microseconds()) / 1000,
			CombinationMS:           float64(d.CombinationDuration.Microseconds()) / 1000,
			UsedSubsequenceFallback: d.UsedSubsequenceFallback,
			UsedFullScanFallback:    d.UsedFullScanFallback,
		}
	}
	return out
}

// MatchCount returns the total number of matches across all stages, used
// for zero-result accounting.
func (r *AnalysisResult) MatchCount() int {
	return len(r.ExactMatches) + len(r.TransformMatches) +
		len(r.Combinations) + len(r.TripleCombinations)
}
