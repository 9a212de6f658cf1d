// Package similarity ranks candidate sequences by how closely a
// scaled-and-shifted copy of them resembles the query, // Pearson correlation plus a least-squares scale/offset fit, both computed
// over the first min(len(query), len(candidate)) terms.
package similarity

import (
	"math"
	"math/big"
	"sort"

	"github.com/rahidz/oeismatcher/internal/store"
)

// Scored is one ranked candidate.
type Scored struct {
	Record store.Record
	Corr   float64
	MSE    float64
	Scale  float64
	Offset float64
}

// toFloats converts arbitrary-precision terms to float64 for the ranking
// heuristics. Conversion overflow (a term too large to represent, or an
// intermediate sum that overflows) surfaces as +/-Inf or NaN, which the
// caller must check for — overflow is recovered locally by
// this by skipping the candidate, not failing the whole ranking pass.
func toFloats(terms []*big.Int) []float64 {
	out := make([]float64, len(terms))
	f := new(big.Float)
	for i, t := range terms {
		f.SetInt(t)
		v, _ := f.Float64()
		out[i] = v
	}
	return out
}

func mean(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

// Correlation computes the Pearson correlation coefficient between x and y
// over their first min(len(x), len(y)) terms. Returns 0 for fewer than 2
// points or zero variance in either series.
func Correlation(x, y []*big.Int) float64 {
	n := min(len(x), len(y))
	if n < 2 {
		return 0
	}
	fx := toFloats(x[:n])
	fy := toFloats(y[:n])
	mx, my := mean(fx), mean(fy)

	var num, denX, denY float64
	for i := 0; i < n; i++ {
		dx := fx[i] - mx
		dy := fy[i] - my
		num += dx * dy
		denX += dx * dx
		denY += dy * dy
	}
	denX = math.Sqrt(denX)
	denY = math.Sqrt(denY)
	if denX == 0 || denY == 0 {
		return 0
	}
	return num / (denX * denY)
}

// ScaleOffsetFit finds scale a and offset b minimizing the mean squared
// error of a*target[i]+b against query[i] over the first n = min(lengths)
// terms, returning (mse, scale, offset). If the normal-equation
// denominator is zero (target is constant), scale is 0 and offset is the
// query's mean.
func ScaleOffsetFit(query, target []*big.Int) (mse, scale, offset float64) {
	n := min(len(query), len(target))
	if n == 0 {
		return math.Inf(1), 0, 0
	}
	x := toFloats(target[:n])
	y := toFloats(query[:n])

	var sumX, sumY, sumXX, sumXY float64
	for i := 0; i < n; i++ {
		sumX += x[i]
		sumY += y[i]
		sumXX += x[i] * x[i]
		sumXY += x[i] * y[i]
	}
	nf := float64(n)
	denom := nf*sumXX - sumX*sumX
	if denom == 0 {
		scale = 0
		offset = sumY / nf
	} else {
		scale = (nf*sumXY - sumX*sumY) / denom
		offset = (sumY - scale*sumX) / nf
	}

	var sqErr float64
	for i := 0; i < n; i++ {
		d := scale*x[i] + offset - y[i]
		sqErr += d * d
	}
	mse = sqErr / nf
	return mse, scale, offset
}

// isOverflowed reports whether any similarity-stage float is non-finite,
// the local-recovery trigger for overflowed candidates.
func isOverflowed(vs ...float64) bool {
	for _, v := range vs {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return true
		}
	}
	return false
}

// Rank scores candidates against query by correlation and least-squares
// fit, sorts by (-corr, mse), and returns the top topK (0 = no cap).
// Candidates whose float computation overflows are silently skipped
//; callers must not call Rank with a wildcard-containing
// query — similarity ranking is undefined for wildcards.
func Rank(query []*big.Int, candidates []store.Record, topK int) []Scored {
	scored := make([]Scored, 0, len(candidates))
	for _, rec := range candidates {
		mse, a, b := ScaleOffsetFit(query, rec.Terms)
		corr := Correlation(query, rec.Terms)
		if isOverflowed(mse, a, b, corr) {
			continue
		}
		scored = append(scored, Scored{Record: rec, Corr: corr, MSE: mse, Scale: a, Offset: b})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Corr != scored[j].Corr {
			return scored[i].Corr > scored[j].Corr
		}
		if scored[i].MSE != scored[j].MSE {
			return scored[i].MSE < scored[j].MSE
		}
		return scored[i].Record.ID < scored[j].Record.ID
	})

	if topK > 0 && len(scored) > topK {
		scored = scored[:topK]
	}
	return scored
}
