package transform

import (
	"math/big"
	"sort"
	"strings"

	"github.com/rahidz/oeismatcher/internal/matcher"
	"github.com/rahidz/oeismatcher/internal/store"
)

// Match is one transform-chain hit: the query, run through Chain, matched
// exactly (prefix or subsequence) against a corpus record. Kept distinct
// from matcher.Match because it carries the chain's description alongside
// the raw match.
type Match struct {
	ID               string
	Name             string
	Kind             matcher.Kind
	Offset           int
	Length           int
	Score            float64
	Snippet          []*big.Int
	ChainName        string
	Explanation      string
	Latex            string
	ChainComplexity  float64
	TransformedTerms []*big.Int
}

// SearchOptions controls the chain search pass.
type SearchOptions struct {
	MaxDepth         int
	AllowSubsequence bool
	MinMatchLength   int
	Limit            int
	SnippetLen       int
}

// isConstant reports whether every element of seq is equal.
func isConstant(seq []*big.Int) bool {
	if len(seq) < 2 {
		return true
	}
	for _, v := range seq[1:] {
		if v.Cmp(seq[0]) != 0 {
			return false
		}
	}
	return true
}

// passesCollapseFilter implements the constant-output filter:
// drop a transformed output that has collapsed to a constant sequence
// unless the original query was itself constant, and always drop an
// all-zero collapse.
func passesCollapseFilter(query, transformed []*big.Int) bool {
	if !isConstant(transformed) {
		return true
	}
	if len(transformed) == 0 {
		return false
	}
	if transformed[0].Sign() == 0 {
		return false
	}
	return isConstant(query)
}

// passesNoisyLengthFilter implements the noisy-chain filter: a
// chain tagged noisy must produce at least 4 distinct output values and an
// output at least as long as max(minMatchLength, 6), otherwise its matches
// are almost always coincidental.
func passesNoisyLengthFilter(chain Chain, transformed []*big.Int, minMatchLength int) bool {
	if !chain.IsNoisy() {
		return true
	}
	floor := minMatchLength
	if floor < 6 {
		floor = 6
	}
	if len(transformed) < floor {
		return false
	}
	seen := make(map[string]struct{})
	for _, v := range transformed {
		seen[v.String()] = struct{}{}
	}
	return len(seen) >= 4
}

func tupleKey(seq []*big.Int) string {
	parts := make([]string, len(seq))
	for i, v := range seq {
		parts[i] = v.String()
	}
	return strings.Join(parts, ",")
}

// Search runs every enumerated chain over query, filters noise/collapse,
// de-duplicates by exact transformed-output tuple, matches survivors
// against candidates, and returns the best match per (record ID, kind),
// scored by length / (1 + chain complexity) and sorted descending.
func Search(query []*big.Int, candidates []store.Record, pool []Transform, opts SearchOptions) []Match {
	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = 2
	}
	chains := EnumerateChains(pool, maxDepth)

	seenOutputs := make(map[string]bool)
	type candidateChain struct {
		chain       Chain
		transformed []*big.Int
	}
	var survivors []candidateChain

	for _, chain := range chains {
		out := ApplyChain(query, chain)
		if len(out) == 0 {
			continue
		}
		if !passesCollapseFilter(query, out) {
			continue
		}
		if !passesNoisyLengthFilter(chain, out, opts.MinMatchLength) {
			continue
		}
		key := tupleKey(out)
		if seenOutputs[key] {
			continue
		}
		seenOutputs[key] = true
		survivors = append(survivors, candidateChain{chain: chain, transformed: out})
	}

	best := make(map[string]Match)
	for _, sv := range survivors {
		raw := matcher.MatchConcrete(sv.transformed, candidates, opts.AllowSubsequence, opts.MinMatchLength, 0, opts.SnippetLen)
		complexity := sv.chain.Complexity()
		human, latex := sv.chain.Describe()
		for _, m := range raw {
			score := float64(m.Length) / (1 + complexity)
			key := m.ID + "|" + string(m.Kind)
			if existing, ok := best[key]; ok && existing.Score >= score {
				continue
			}
			best[key] = Match{
				ID:               m.ID,
				Name:             m.Name,
				Kind:             m.Kind,
				Offset:           m.Offset,
				Length:           m.Length,
				Score:            score,
				Snippet:          m.Snippet,
				ChainName:        sv.chain.Name(),
				Explanation:      human,
				Latex:            latex,
				ChainComplexity:  complexity,
				TransformedTerms: sv.transformed,
			}
		}
	}

	results := make([]Match, 0, len(best))
	for _, m := range best {
		results = append(results, m)
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})
	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results
}
