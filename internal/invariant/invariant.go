// Package invariant computes the per-sequence derived summaries described in
// summaries. These are cheap, purely-derived-from-terms
// summaries computed once at index build time and consumed by the candidate
// filter (internal/candidate) as a pre-filter when the prefix index can't be
// used.
package invariant

import (
	"math"
	"math/big"
)

// SignPattern classifies the signs of a term sequence.
type SignPattern string

const (
	SignEmpty       SignPattern = "empty"
	SignNonneg      SignPattern = "nonneg"
	SignNonpos      SignPattern = "nonpos"
	SignAlternating SignPattern = "alternating"
	SignMixed       SignPattern = "mixed"
)

// FirstDiffSign classifies the signs of the first-difference sequence.
type FirstDiffSign string

const (
	DiffNA     FirstDiffSign = "na"
	DiffPos    FirstDiffSign = "pos"
	DiffNeg    FirstDiffSign = "neg"
	DiffNonneg FirstDiffSign = "nonneg"
	DiffNonpos FirstDiffSign = "nonpos"
	DiffFlat   FirstDiffSign = "flat"
	DiffMixed  FirstDiffSign = "mixed"
)

// Invariants is the full derived-summary record for a sequence.
type Invariants struct {
	Prefix5         []*big.Int
	Min             *big.Int
	Max             *big.Int
	GCD             *big.Int
	IsNondecreasing bool
	IsNonincreasing bool
	SignPattern     SignPattern
	FirstDiffSign   FirstDiffSign
	NonzeroCount    int
	GrowthRate      float64
}

// Compute derives Invariants purely from terms (no wildcards allowed —
// invariants are only meaningful for concrete sequences // which notes "invariant filters are unsound under wildcards").
func Compute(terms []*big.Int) Invariants {
	n := len(terms)
	prefixLen := n
	if prefixLen > 5 {
		prefixLen = 5
	}
	prefix5 := make([]*big.Int, prefixLen)
	copy(prefix5, terms[:prefixLen])

	return Invariants{
		Prefix5:         prefix5,
		Min:             minOf(terms),
		Max:             maxOf(terms),
		GCD:             GCD(terms),
		IsNondecreasing: isNondecreasing(terms),
		IsNonincreasing: isNonincreasing(terms),
		SignPattern:     ComputeSignPattern(terms),
		FirstDiffSign:   ComputeFirstDiffSign(terms),
		NonzeroCount:    nonzeroCount(terms),
		GrowthRate:      GrowthRate(terms),
	}
}

func minOf(terms []*big.Int) *big.Int {
	if len(terms) == 0 {
		return nil
	}
	m := terms[0]
	for _, t := range terms[1:] {
		if t.Cmp(m) < 0 {
			m = t
		}
	}
	return new(big.Int).Set(m)
}

func maxOf(terms []*big.Int) *big.Int {
	if len(terms) == 0 {
		return nil
	}
	m := terms[0]
	for _, t := range terms[1:] {
		if t.Cmp(m) > 0 {
			m = t
		}
	}
	return new(big.Int).Set(m)
}

// GCD returns the gcd of the absolute values of terms, or 0 for an empty
// slice.
func GCD(terms []*big.Int) *big.Int {
	g := big.NewInt(0)
	abs := new(big.Int)
	for _, t := range terms {
		abs.Abs(t)
		g.GCD(nil, nil, g, abs)
	}
	return g
}

func isNondecreasing(terms []*big.Int) bool {
	for i := 0; i+1 < len(terms); i++ {
		if terms[i].Cmp(terms[i+1]) > 0 {
			return false
		}
	}
	return true
}

func isNonincreasing(terms []*big.Int) bool {
	for i := 0; i+1 < len(terms); i++ {
		if terms[i].Cmp(terms[i+1]) < 0 {
			return false
		}
	}
	return true
}

func nonzeroCount(terms []*big.Int) int {
	n := 0
	for _, t := range terms {
		if t.Sign() != 0 {
			n++
		}
	}
	return n
}

// ComputeSignPattern classifies the signs of values; one definition is
// used for both the stored and the query side.
func ComputeSignPattern(values []*big.Int) SignPattern {
	if len(values) == 0 {
		return SignEmpty
	}
	allNonneg, allNonpos := true, true
	for _, v := range values {
		if v.Sign() < 0 {
			allNonneg = false
		}
		if v.Sign() > 0 {
			allNonpos = false
		}
	}
	if allNonneg {
		return SignNonneg
	}
	if allNonpos {
		return SignNonpos
	}
	alt := true
	for i := 0; i+1 < len(values); i++ {
		a, b := values[i], values[i+1]
		if a.Sign() == 0 || b.Sign() == 0 {
			continue
		}
		if (a.Sign() > 0) == (b.Sign() > 0) {
			alt = false
			break
		}
	}
	if alt {
		return SignAlternating
	}
	return SignMixed
}

// ComputeFirstDiffSign classifies the first-difference signs. The "flat"
// case (every diff exactly zero) is reported as such rather than folded
// into "nonneg", and the same definition runs at index-build time and in
// the candidate filter so the two sides can never disagree.
func ComputeFirstDiffSign(values []*big.Int) FirstDiffSign {
	if len(values) < 2 {
		return DiffNA
	}
	pos, neg, zero := 0, 0, 0
	total := len(values) - 1
	for i := 0; i < total; i++ {
		c := values[i+1].Cmp(values[i])
		switch {
		case c > 0:
			pos++
		case c < 0:
			neg++
		default:
			zero++
		}
	}
	switch {
	case pos == total:
		return DiffPos
	case neg == total:
		return DiffNeg
	case pos > 0 && neg == 0:
		return DiffNonneg
	case neg > 0 && pos == 0:
		return DiffNonpos
	case zero == total:
		return DiffFlat
	default:
		return DiffMixed
	}
}

// GrowthRate is the mean of log(|a_n|+1)/(n+1) over the nonzero terms
// (zero terms are skipped and not counted; all-zero gives 0). This is
// one of the few places in the matcher where floating point is used on
// purpose: growth rate only ever ranks or pre-filters, never decides
// equality.
func GrowthRate(values []*big.Int) float64 {
	acc := 0.0
	count := 0
	f := new(big.Float)
	for idx, v := range values {
		if v.Sign() == 0 {
			continue
		}
		f.SetInt(v)
		f.Abs(f)
		mag, _ := f.Float64()
		acc += math.Log(mag+1.0) / float64(idx+1)
		count++
	}
	if count == 0 {
		return 0.0
	}
	return acc / float64(count)
}
