package candidate

import (
	"math/big"
	"testing"

	"github.com/rahidz/oeismatcher/internal/invariant"
	"github.com/rahidz/oeismatcher/internal/store"
	"github.com/rahidz/oeismatcher/internal/term"
)

func bigs(vs ...int64) []*big.Int {
	out := make([]*big.Int, len(vs))
	for i, v := range vs {
		out[i] = big.NewInt(v)
	}
	return out
}

func newFilledStore(t *testing.T) store.IndexStore {
	t.Helper()
	s, err := store.OpenSQLiteStore("")
	if err != nil {
		t.Fatalf("OpenSQLiteStore: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	fib := bigs(0, 1, 1, 2, 3, 5, 8, 13)
	evens := bigs(0, 2, 4, 6, 8, 10)
	constant := bigs(7, 7, 7, 7, 7, 7)
	recs := []store.Record{
		{ID: "A_fib", Terms: fib, Length: len(fib), Invariants: invariant.Compute(fib)},
		{ID: "A_even", Terms: evens, Length: len(evens), Invariants: invariant.Compute(evens)},
		{ID: "A_const", Terms: constant, Length: len(constant), Invariants: invariant.Compute(constant)},
	}
	if _, err := s.WriteRecords(recs, 0); err != nil {
		t.Fatalf("WriteRecords: %v", err)
	}
	return s
}

func TestBuildCriteriaBand(t *testing.T) {
	terms := bigs(1, 2, 3, 4, 5, 6)
	f := BuildCriteria(terms, 3, false)
	if f.NonzeroMin == nil || f.NonzeroMax == nil {
		t.Fatalf("expected nonzero band to be set")
	}
	// nz=6, band=ceil(0.5*6)=3 -> [3,9]
	if *f.NonzeroMin != 3 || *f.NonzeroMax != 9 {
		t.Fatalf("got band [%d,%d], want [3,9]", *f.NonzeroMin, *f.NonzeroMax)
	}
}

func TestBuildCriteriaLoosenDropsNonzero(t *testing.T) {
	f := BuildCriteria(bigs(1, 2, 3), 3, true)
	if f.NonzeroMin != nil || f.NonzeroMax != nil {
		t.Fatalf("expected nonzero clause to be dropped when loosened")
	}
}

func TestSelectUsesPrefixIndexWhenLongEnough(t *testing.T) {
	st := newFilledStore(t)
	it, err := Select(st, bigs(0, 1, 1, 2, 3), Options{UsePrefixIndex: true, MinMatchLength: 3})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	recs, err := CollectAll(it)
	if err != nil {
		t.Fatalf("CollectAll: %v", err)
	}
	if len(recs) != 1 || recs[0].ID != "A_fib" {
		t.Fatalf("expected exactly A_fib via prefix index, got %+v", recs)
	}
}

func TestSelectForQueryFallsBackOnWildcard(t *testing.T) {
	st := newFilledStore(t)
	terms := []term.Term{term.FromInt64(0), term.Any, term.FromInt64(1)}
	it, err := SelectForQuery(st, terms, Options{UsePrefixIndex: true, MinMatchLength: 3})
	if err != nil {
		t.Fatalf("SelectForQuery: %v", err)
	}
	recs, err := CollectAll(it)
	if err != nil {
		t.Fatalf("CollectAll: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected full scan (3 records) for a wildcard query, got %d", len(recs))
	}
}

func TestBuildBucketPrioritizesSimilarityAndTruncates(t *testing.T) {
	a := store.Record{ID: "a", Length: 5}
	b := store.Record{ID: "b", Length: 100}
	c := store.Record{ID: "c", Length: 6}
	base := []store.Record{a, b, c}
	similar := []store.Record{b} // similarity prioritizes b despite its length

	bucket := BuildBucket(base, similar, 5, 2)
	if len(bucket.Records) != 2 {
		t.Fatalf("expected truncation to 2 records, got %d", len(bucket.Records))
	}
	if bucket.Records[0].ID != "b" {
		t.Fatalf("expected similarity-picked record first, got %s", bucket.Records[0].ID)
	}
}

func TestBucketFillTopsUpFromFullScan(t *testing.T) {
	st := newFilledStore(t)
	bucket := Bucket{Records: []store.Record{{ID: "A_fib", Length: 8}}}
	if err := bucket.Fill(st, 3, 3); err != nil {
		t.Fatalf("Fill: %v", err)
	}
	if len(bucket.Records) != 3 {
		t.Fatalf("expected fill to reach 3 records, got %d", len(bucket.Records))
	}
}
