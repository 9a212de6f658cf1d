package combination

import (
	"math/big"
	"testing"

	"github.com/rahidz/oeismatcher/internal/store"
)

func bigs(vs ...int64) []*big.Int {
	out := make([]*big.Int, len(vs))
	for i, v := range vs {
		out[i] = big.NewInt(v)
	}
	return out
}

func TestSearchTwoFindsExactIntegerCombo(t *testing.T) {
	query := bigs(3, 5, 7, 9, 11)
	a1 := store.Record{ID: "A1", Name: "ones", Terms: bigs(1, 1, 1, 1, 1)}
	a2 := store.Record{ID: "A2", Name: "odds", Terms: bigs(1, 3, 5, 7, 9)}
	opts := Options{Coeffs: []int64{1, 2}, Limit: 5}
	results := SearchTwo(query, 3, []store.Record{a1, a2}, opts)
	if len(results) == 0 {
		t.Fatalf("expected at least one combination match")
	}
	m := results[0]
	if len(m.IDs) != 2 {
		t.Fatalf("expected 2 ids, got %+v", m.IDs)
	}
}

func TestSearchTwoRespectsShift(t *testing.T) {
	query := bigs(14, 16, 18)
	a3 := store.Record{ID: "A3", Name: "ramp", Terms: bigs(10, 12, 14, 16, 18)}
	a4 := store.Record{ID: "A4", Name: "zeros", Terms: bigs(0, 0, 0, 0, 0)}
	opts := Options{Coeffs: []int64{1}, MaxShift: 3, Limit: 5}
	results := SearchTwo(query, 3, []store.Record{a3, a4}, opts)
	found := false
	for _, m := range results {
		if m.Shifts[0] == 2 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a match using shift +2 on A3, got %+v", results)
	}
}

func TestSearchTwoSkipsAllZeroCoeffs(t *testing.T) {
	query := bigs(0, 0, 0)
	a := store.Record{ID: "A", Terms: bigs(1, 2, 3)}
	b := store.Record{ID: "B", Terms: bigs(4, 5, 6)}
	opts := Options{Coeffs: []int64{0}, Limit: 5}
	results := SearchTwo(query, 3, []store.Record{a, b}, opts)
	if len(results) != 0 {
		t.Fatalf("expected no matches from the all-zero coefficient tuple, got %+v", results)
	}
}

func TestSearchTwoRationalModeSolvesFraction(t *testing.T) {
	query := bigs(1, 2, 3, 4, 5)
	a := store.Record{ID: "A", Terms: bigs(2, 4, 6, 8, 10)}
	b := store.Record{ID: "B", Terms: bigs(0, 0, 0, 0, 0)}
	opts := Options{UseRational: true, Limit: 5}
	results := SearchTwo(query, 3, []store.Record{a, b}, opts)
	if len(results) == 0 {
		t.Fatalf("expected a rational solution (1/2, 0)")
	}
}

func TestSearchThreeFindsExactIntegerCombo(t *testing.T) {
	query := bigs(2, 1, 0, -1, -2, -3)
	a1 := store.Record{ID: "A1", Terms: bigs(1, 1, 1, 1, 1, 1)}
	a2 := store.Record{ID: "A2", Terms: bigs(2, 1, 0, -1, -2, -3)}
	a3 := store.Record{ID: "A3", Terms: bigs(1, 1, 1, 1, 1, 1)}
	opts := Options{Coeffs: []int64{-1, 1}, Limit: 5}
	results := SearchThree(query, 3, []store.Record{a1, a2, a3}, opts)
	if len(results) == 0 {
		t.Fatalf("expected at least one triple combination match")
	}
}

func TestMatchIDsAreLexicographicallyOrdered(t *testing.T) {
	query := bigs(3, 5, 7, 9, 11)
	a2 := store.Record{ID: "A2", Terms: bigs(1, 3, 5, 7, 9)}
	a1 := store.Record{ID: "A1", Terms: bigs(1, 1, 1, 1, 1)}
	opts := Options{Coeffs: []int64{1, 2}, Limit: 5}
	results := SearchTwo(query, 3, []store.Record{a2, a1}, opts)
	for _, m := range results {
		if m.IDs[0] > m.IDs[1] {
			t.Fatalf("expected ids non-decreasing, got %v", m.IDs)
		}
	}
}

func TestAlignedSlicesRejectsShortOverlap(t *testing.T) {
	query := bigs(1, 2, 3, 4, 5)
	seq := bigs(1, 2)
	align := alignedSlices(query, [][]*big.Int{seq}, []int{-3}, 3)
	if align != nil {
		t.Fatalf("expected nil alignment for too-short overlap, got %+v", align)
	}
}

func TestAlignedSlicesNonNegativeRequiresFullLength(t *testing.T) {
	query := bigs(1, 2, 3)
	seq := bigs(1, 2)
	if alignedSlices(query, [][]*big.Int{seq}, []int{0}, 1) != nil {
		t.Fatalf("expected nil alignment when the sequence is shorter than the query")
	}
}

func TestSolveRational2ExactFraction(t *testing.T) {
	s1 := bigs(2, 4, 6)
	s2 := bigs(0, 0, 0)
	target := bigs(1, 2, 3)
	a, b, ok := solveRational2(s1, s2, target)
	if !ok {
		t.Fatalf("expected a rational solution")
	}
	if a.Cmp(big.NewRat(1, 2)) != 0 {
		t.Fatalf("expected a = 1/2, got %v", a)
	}
	if b.Sign() != 0 {
		t.Fatalf("expected b = 0, got %v", b)
	}
}

func TestSolveRational2NoSolution(t *testing.T) {
	s1 := bigs(1, 1, 1)
	s2 := bigs(1, 1, 1)
	target := bigs(1, 2, 3)
	if _, _, ok := solveRational2(s1, s2, target); ok {
		t.Fatalf("expected no solution for a singular system")
	}
}

func TestFormatExpressionOmitsIdentityWrapper(t *testing.T) {
	ids := []string{"A1", "A2"}
	coeffs := []*big.Rat{big.NewRat(2, 1), big.NewRat(1, 1)}
	shifts := []int{0, 2}
	names := []string{"id", "diff"}
	expr := formatExpression(ids, coeffs, shifts, names)
	want := "a(n) = 2*A1(n) + 1*diff(A2(n+2))"
	if expr != want {
		t.Fatalf("expected %q, got %q", want, expr)
	}
}

func TestComboKeyDistinguishesShiftSign(t *testing.T) {
	k1 := comboKey([]string{"A"}, []string{"id"}, []*big.Rat{big.NewRat(1, 1)}, []int{-2})
	k2 := comboKey([]string{"A"}, []string{"id"}, []*big.Rat{big.NewRat(1, 1)}, []int{2})
	if k1 == k2 {
		t.Fatalf("expected distinct keys for +2 and -2 shifts")
	}
}
