// Package candidate implements the candidate selector: it produces
// a bounded pool of SequenceRecords relevant to a query,
// drawn from the prefix-5 index when usable, otherwise from an
// invariant-filtered scan with a nonzero-count tolerance band.
package candidate

import (
	"math"
	"math/big"
	"sort"

	"github.com/rahidz/oeismatcher/internal/invariant"
	"github.com/rahidz/oeismatcher/internal/store"
	"github.com/rahidz/oeismatcher/internal/term"
)

// Options controls how Select chooses its strategy.
type Options struct {
	// UsePrefixIndex enables the prefix5-equality fast path.
	UsePrefixIndex bool
	// AllowSubsequence disables the prefix index (a subsequence query
	// cannot be answered by exact-prefix lookup).
	AllowSubsequence bool
	// LoosenNonzero drops the nonzero-count clause entirely. The bucket
	// builder's fill pass does not use it.
	LoosenNonzero bool
	// MinMatchLength floors the candidate length filter.
	MinMatchLength int
}

// BuildCriteria derives an invariant store.Filter from concrete query
// terms: sign_pattern and first_diff_sign computed
// on the query, nonzero count within a band of
// max(1, ceil(0.5*len)) around the query's own nonzero count.
func BuildCriteria(terms []*big.Int, minMatchLength int, loosenNonzero bool) store.Filter {
	sp := invariant.ComputeSignPattern(terms)
	fd := invariant.ComputeFirstDiffSign(terms)

	f := store.Filter{
		SignPattern:   &sp,
		FirstDiffSign: &fd,
		MinLength:     &minMatchLength,
	}
	if !loosenNonzero {
		nz := 0
		for _, t := range terms {
			if t.Sign() != 0 {
				nz++
			}
		}
		band := int(math.Ceil(0.5 * float64(len(terms))))
		if band < 1 {
			band = 1
		}
		lo := nz - band
		if lo < 0 {
			lo = 0
		}
		hi := nz + band
		f.NonzeroMin = &lo
		f.NonzeroMax = &hi
	}
	return f
}

// Select returns the candidate-pool iterator for a wildcard-free query.
// Callers must route queries containing Any terms to st.IterAll directly —
// invariant filters are unsound under wildcards — so Select
// only accepts concrete terms.
func Select(st store.IndexStore, terms []*big.Int, opts Options) (store.RecordIterator, error) {
	if opts.UsePrefixIndex && !opts.AllowSubsequence && len(terms) >= 5 {
		return st.IterByPrefix5(terms)
	}
	crit := BuildCriteria(terms, opts.MinMatchLength, opts.LoosenNonzero)
	return st.IterFiltered(crit)
}

// SelectForQuery is the Select entry point that also handles the
// wildcard case by falling back to a full scan.
func SelectForQuery(st store.IndexStore, terms []term.Term, opts Options) (store.RecordIterator, error) {
	if term.HasAny(terms) {
		return st.IterAll()
	}
	return Select(st, term.ToBigInts(terms), opts)
}

// collectAll drains an iterator into a slice, closing it afterward.
func collectAll(it store.RecordIterator) ([]store.Record, error) {
	var out []store.Record
	for it.Next() {
		out = append(out, it.Record())
	}
	err := it.Err()
	_ = it.Close()
	return out, err
}

// CollectAll is the exported form of collectAll, used by callers that want
// a materialized candidate slice rather than an iterator (bucket building,
// small corpora, tests).
func CollectAll(it store.RecordIterator) ([]store.Record, error) {
	return collectAll(it)
}

// sortByLengthDistance orders records by |length - queryLen| ascending,
// then by id.
func sortByLengthDistance(records []store.Record, queryLen int) {
	sort.SliceStable(records, func(i, j int) bool {
		di := absInt(records[i].Length - queryLen)
		dj := absInt(records[j].Length - queryLen)
		if di != dj {
			return di < dj
		}
		return records[i].ID < records[j].ID
	})
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
