package similarity

import (
	"math"
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

func TestCorrelationPerfectLinear(t *testing.T) {
	x := bigs(1, 2, 3, 4, 5)
	y := bigs(2, 4, 6, 8, 10)
	c := Correlation(x, y)
	if math.Abs(c-1.0) > 1e-9 {
		t.Fatalf("expected correlation ~1.0, got %v", c)
	}
}

func TestCorrelationTooFewPoints(t *testing.T) {
	if c := Correlation(bigs(1), bigs(2)); c != 0 {
		t.Fatalf("expected 0 for fewer than 2 points, got %v", c)
	}
}

func TestCorrelationZeroVariance(t *testing.T) {
	c := Correlation(bigs(5, 5, 5), bigs(1, 2, 3))
	if c != 0 {
		t.Fatalf("expected 0 correlation when x has zero variance, got %v", c)
	}
}

func TestScaleOffsetFitExactScale(t *testing.T) {
	query := bigs(2, 4, 6, 8)
	target := bigs(1, 2, 3, 4)
	mse, scale, offset := ScaleOffsetFit(query, target)
	if math.Abs(mse) > 1e-9 {
		t.Fatalf("expected ~0 mse for an exact scale fit, got %v", mse)
	}
	if math.Abs(scale-2.0) > 1e-9 {
		t.Fatalf("expected scale ~2.0, got %v", scale)
	}
	if math.Abs(offset) > 1e-9 {
		t.Fatalf("expected offset ~0, got %v", offset)
	}
}

func TestScaleOffsetFitConstantTarget(t *testing.T) {
	query := bigs(1, 2, 3)
	target := bigs(5, 5, 5)
	_, scale, offset := ScaleOffsetFit(query, target)
	if scale != 0 {
		t.Fatalf("expected scale 0 for a constant target, got %v", scale)
	}
	if math.Abs(offset-2.0) > 1e-9 {
		t.Fatalf("expected offset to be the query mean (2.0), got %v", offset)
	}
}

func TestScaleOffsetFitEmpty(t *testing.T) {
	mse, _, _ := ScaleOffsetFit(nil, nil)
	if !math.IsInf(mse, 1) {
		t.Fatalf("expected +Inf mse for empty input, got %v", mse)
	}
}

func TestRankSortsByCorrThenMSE(t *testing.T) {
	query := bigs(1, 2, 3, 4, 5)
	perfect := store.Record{ID: "perfect", Terms: bigs(2, 4, 6, 8, 10)}
	noisy := store.Record{ID: "noisy", Terms: bigs(2, 5, 5, 9, 9)}
	uncorrelated := store.Record{ID: "flat", Terms: bigs(3, 3, 3, 3, 3)}

	ranked := Rank(query, []store.Record{noisy, uncorrelated, perfect}, 0)
	if len(ranked) != 3 {
		t.Fatalf("expected 3 ranked candidates, got %d", len(ranked))
	}
	if ranked[0].Record.ID != "perfect" {
		t.Fatalf("expected perfect fit to rank first, got %s", ranked[0].Record.ID)
	}
}

func TestRankRespectsTopK(t *testing.T) {
	query := bigs(1, 2, 3)
	candidates := []store.Record{
		{ID: "a", Terms: bigs(1, 2, 3)},
		{ID: "b", Terms: bigs(2, 4, 6)},
		{ID: "c", Terms: bigs(3, 6, 9)},
	}
	ranked := Rank(query, candidates, 1)
	if len(ranked) != 1 {
		t.Fatalf("expected topK=1 to yield 1 result, got %d", len(ranked))
	}
}

func TestRankSkipsOverflowingCandidate(t *testing.T) {
	huge, ok := new(big.Int).SetString("1"+stringsRepeat("0", 400), 10)
	if !ok {
		t.Fatalf("failed to build huge test integer")
	}
	query := bigs(1, 2, 3)
	candidates := []store.Record{
		{ID: "huge", Terms: []*big.Int{huge, huge, huge}},
		{ID: "normal", Terms: bigs(1, 2, 3)},
	}
	ranked := Rank(query, candidates, 0)
	for _, r := range ranked {
		if r.Record.ID == "huge" {
			t.Fatalf("expected overflowing candidate to be skipped")
		}
	}
	if len(ranked) != 1 || ranked[0].Record.ID != "normal" {
		t.Fatalf("expected only the normal candidate to survive, got %+v", ranked)
	}
}

func stringsRepeat(s string, n int) string {
	out := make([]byte, 0, len(s)*n)
	for i := 0; i < n; i++ {
		out = append(out, s...)
	}
	return string(out)
}
