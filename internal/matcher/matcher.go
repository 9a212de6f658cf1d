// Package matcher implements the exact prefix/subsequence matcher:
// KMP search over wildcard-free queries, falling back to an
// O(n*m) scan with per-position wildcard equality when the query contains
// Any terms.
package matcher

import (
	"math/big"
	"sort"

	"github.com/rahidz/oeismatcher/internal/query"
	"github.com/rahidz/oeismatcher/internal/store"
	"github.com/rahidz/oeismatcher/internal/term"
)

// Kind distinguishes a prefix match from a subsequence match.
type Kind string

const (
	Prefix      Kind = "prefix"
	Subsequence Kind = "subsequence"
)

// Match is one exact hit against the corpus.
type Match struct {
	ID      string
	Name    string
	Kind    Kind
	Offset  int
	Length  int
	Score   float64
	Snippet []*big.Int
}

// isPrefix reports whether query is a (possibly wildcarded) prefix of
// seqTerms: query length <= sequence length, and every position either
// matches exactly or the query term is Any.
func isPrefix(queryTerms []term.Term, seqTerms []*big.Int) bool {
	if len(queryTerms) > len(seqTerms) {
		return false
	}
	for i, qt := range queryTerms {
		if qt.IsAny() {
			continue
		}
		if qt.Int().Cmp(seqTerms[i]) != 0 {
			return false
		}
	}
	return true
}

// kmpOffset finds the first occurrence of a wildcard-free pattern in text
// using the Knuth-Morris-Pratt algorithm, returning -1 if absent.
func kmpOffset(pattern, text []*big.Int) int {
	m, n := len(pattern), len(text)
	if m == 0 || m > n {
		return -1
	}

	lps := make([]int, m)
	k := 0
	for i := 1; i < m; i++ {
		for k > 0 && pattern[k].Cmp(pattern[i]) != 0 {
			k = lps[k-1]
		}
		if pattern[k].Cmp(pattern[i]) == 0 {
			k++
			lps[i] = k
		}
	}

	q := 0
	for i := 0; i < n; i++ {
		for q > 0 && pattern[q].Cmp(text[i]) != 0 {
			q = lps[q-1]
		}
		if pattern[q].Cmp(text[i]) == 0 {
			q++
			if q == m {
				return i - m + 1
			}
		}
	}
	return -1
}

// wildcardScan finds the first offset at which every query term either
// equals the corresponding text term or is Any, scanning every start
// offset 0..n-m in text (O(n*m)).
func wildcardScan(pattern []term.Term, text []*big.Int) int {
	m, n := len(pattern), len(text)
	if m == 0 || m > n {
		return -1
	}
	for start := 0; start+m <= n; start++ {
		ok := true
		for i, pt := range pattern {
			if pt.IsAny() {
				continue
			}
			if pt.Int().Cmp(text[start+i]) != 0 {
				ok = false
				break
			}
		}
		if ok {
			return start
		}
	}
	return -1
}

func snippet(terms []*big.Int, n int) []*big.Int {
	if n <= 0 {
		return nil
	}
	if n > len(terms) {
		n = len(terms)
	}
	out := make([]*big.Int, n)
	copy(out, terms[:n])
	return out
}

// MatchExact runs the exact prefix/subsequence search over candidates,
// stopping once limit distinct matches are found (0 = unbounded), and
// returns results ordered prefix-before-subsequence, then by descending
// length, then ascending offset.
func MatchExact(q query.Query, candidates []store.Record, limit, snippetLen int) []Match {
	var results []Match
	if q.Len() < q.MinMatchLength {
		return results
	}

	wildcardFree := !q.HasWildcards()
	var patternInts []*big.Int
	if wildcardFree {
		patternInts = term.ToBigInts(q.Terms)
	}

	for _, rec := range candidates {
		if isPrefix(q.Terms, rec.Terms) {
			results = append(results, Match{
				ID:      rec.ID,
				Name:    rec.Name,
				Kind:    Prefix,
				Offset:  0,
				Length:  q.Len(),
				Score:   float64(q.Len()),
				Snippet: snippet(rec.Terms, snippetLen),
			})
		} else if q.AllowSubsequence {
			var off int
			if wildcardFree {
				off = kmpOffset(patternInts, rec.Terms)
			} else {
				off = wildcardScan(q.Terms, rec.Terms)
			}
			if off != -1 {
				results = append(results, Match{
					ID:      rec.ID,
					Name:    rec.Name,
					Kind:    Subsequence,
					Offset:  off,
					Length:  q.Len(),
					Score:   float64(q.Len()) - 0.5,
					Snippet: snippet(rec.Terms, snippetLen),
				})
			}
		}
		if limit > 0 && len(results) >= limit {
			break
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		ri, rj := results[i], results[j]
		ki, kj := kindRank(ri.Kind), kindRank(rj.Kind)
		if ki != kj {
			return ki < kj
		}
		if ri.Length != rj.Length {
			return ri.Length > rj.Length
		}
		return ri.Offset < rj.Offset
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

func kindRank(k Kind) int {
	if k == Prefix {
		return 0
	}
	return 1
}

// isPrefixInts reports whether pattern equals the first len(pattern)
// terms of seqTerms.
func isPrefixInts(pattern, seqTerms []*big.Int) bool {
	if len(pattern) > len(seqTerms) {
		return false
	}
	for i, p := range pattern {
		if p.Cmp(seqTerms[i]) != 0 {
			return false
		}
	}
	return true
}

// MatchConcrete runs exact prefix/subsequence search for a wildcard-free
// integer pattern — used by the transform-chain search,
// which matches transformed query output against the corpus without ever
// reintroducing wildcards. Ordering and truncation match MatchExact.
func MatchConcrete(pattern []*big.Int, candidates []store.Record, allowSubsequence bool, minMatchLength, limit, snippetLen int) []Match {
	var results []Match
	if len(pattern) < minMatchLength {
		return results
	}
	for _, rec := range candidates {
		if isPrefixInts(pattern, rec.Terms) {
			results = append(results, Match{
				ID:      rec.ID,
				Name:    rec.Name,
				Kind:    Prefix,
				Offset:  0,
				Length:  len(pattern),
				Score:   float64(len(pattern)),
				Snippet: snippet(rec.Terms, snippetLen),
			})
		} else if allowSubsequence {
			if off := kmpOffset(pattern, rec.Terms); off != -1 {
				results = append(results, Match{
					ID:      rec.ID,
					Name:    rec.Name,
					Kind:    Subsequence,
					Offset:  off,
					Length:  len(pattern),
					Score:   float64(len(pattern)) - 0.5,
					Snippet: snippet(rec.Terms, snippetLen),
				})
			}
		}
		if limit > 0 && len(results) >= limit {
			break
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		ri, rj := results[i], results[j]
		ki, kj := kindRank(ri.Kind), kindRank(rj.Kind)
		if ki != kj {
			return ki < kj
		}
		if ri.Length != rj.Length {
			return ri.Length > rj.Length
		}
		return ri.Offset < rj.Offset
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}
