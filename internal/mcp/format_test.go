package mcp

import (
	"strings"
	"testing"

	"github.com/rahidz/oeismatcher/internal/pipeline"
)

func TestFormatAnalysisEmpty(t *testing.T) {
	out := FormatAnalysis("9,9,9", &pipeline.ResultJSON{Query: []string{"9", "9", "9"}})
	if !strings.Contains(out, "No matches found") {
		t.Errorf("empty result should say so: %q", out)
	}
}

func TestFormatAnalysisSections(t *testing.T) {
	res := &pipeline.ResultJSON{
		Query: []string{"0", "1", "1", "2"},
		ExactMatches: []pipeline.MatchJSON{
			{ID: "A000045", Name: "Fibonacci numbers", Kind: "prefix", Length: 4, Score: 4,
				Snippet: []string{"0", "1", "1", "2"}},
		},
		TransformMatches: []pipeline.MatchJSON{
			{ID: "A000027", Kind: "prefix", Length: 4, Score: 2.1, Chain: "psum"},
		},
		Similarity: []pipeline.SimilarityJSON{
			{ID: "A000108", Name: "Catalan numbers", Corr: 0.97, MSE: 1.5},
		},
		Combinations: []pipeline.CombinationJSON{
			{IDs: []string{"A000027", "A000012"}, Names: []string{"The positive integers", ""},
				Expression: "a(n) = 2*A000027(n) + 1*A000012(n)", Length: 4, Score: 0.8},
		},
	}

	out := FormatAnalysis("0,1,1,2", res)

	for _, want := range []string{
		"### Exact matches",
		"**A000045** (prefix, length 4",
		"Fibonacci numbers",
		"terms: 0, 1, 1, 2",
		"### Transform matches",
		"via `psum`",
		"### Similar sequences",
		"corr=0.9700",
		"### Combinations",
		"2*A000027(n) + 1*A000012(n)",
		"A000027: The positive integers",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatMatchOffset(t *testing.T) {
	res := &pipeline.ResultJSON{
		ExactMatches: []pipeline.MatchJSON{
			{ID: "A000045", Kind: "subsequence", Offset: 2, Length: 4, Score: 3.5},
		},
	}
	out := FormatAnalysis("1,2,3,5", res)
	if !strings.Contains(out, "offset 2") {
		t.Errorf("subsequence offset missing:\n%s", out)
	}
}

func TestFormatStatus(t *testing.T) {
	notReady := FormatStatus(IndexStatusOutput{})
	if !strings.Contains(notReady, "build-index") {
		t.Errorf("not-ready status should point at build-index: %q", notReady)
	}

	ready := FormatStatus(IndexStatusOutput{
		Ready: true, IndexPath: "/data/oeis.db", SequenceCount: 400000, MinLength: 1, MaxLength: 128,
	})
	if !strings.Contains(ready, "400000") || !strings.Contains(ready, "/data/oeis.db") {
		t.Errorf("ready status incomplete: %q", ready)
	}
}
