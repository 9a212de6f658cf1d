package term

import (
	"math/big"
	"testing"
)

func TestMatchesWildcard(t *testing.T) {
	a := FromInt64(5)
	b := FromInt64(5)
	c := FromInt64(6)
	if !a.MatchesWildcard(b) {
		t.Fatalf("expected equal concrete terms to match")
	}
	if a.MatchesWildcard(c) {
		t.Fatalf("did not expect 5 to match 6")
	}
	if !Any.MatchesWildcard(c) {
		t.Fatalf("expected Any to match anything")
	}
}

func TestToBigIntsRoundTrip(t *testing.T) {
	want := []*big.Int{big.NewInt(1), big.NewInt(-2), big.NewInt(3)}
	terms := FromBigInts(want)
	got := ToBigInts(terms)
	for i := range want {
		if got[i].Cmp(want[i]) != 0 {
			t.Fatalf("round trip mismatch at %d: got %v want %v", i, got[i], want[i])
		}
	}
}

func TestToBigIntsPanicsOnWildcard(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic converting a wildcard term")
		}
	}()
	ToBigInts([]Term{Any})
}

func TestHasAnyCountAny(t *testing.T) {
	terms := []Term{FromInt64(1), Any, FromInt64(2), Any}
	if !HasAny(terms) {
		t.Fatalf("expected HasAny true")
	}
	if CountAny(terms) != 2 {
		t.Fatalf("expected 2 wildcards, got %d", CountAny(terms))
	}
}

func TestIsZeroAndSign(t *testing.T) {
	z := FromInt64(0)
	if !z.IsZero() {
		t.Fatalf("expected zero term to report IsZero")
	}
	if Any.IsZero() {
		t.Fatalf("wildcard should never be zero")
	}
	if FromInt64(-3).Sign() != -1 {
		t.Fatalf("expected negative sign")
	}
}
