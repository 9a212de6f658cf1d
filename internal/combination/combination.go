// Package combination implements the bounded brute-force search
// for integer (or exact rational) linear combinations of 2 or 3 candidate
// sequences, under per-component unary transforms and small index shifts,
// that reproduce the query prefix exactly. This is the heaviest-weighted
// component of the system and the one most exposed to combinatorial
// blowup, hence the explicit work caps.
package combination

import (
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/rahidz/oeismatcher/internal/store"
	"github.com/rahidz/oeismatcher/internal/transform"
)

// CoeffBound caps the numerator and denominator magnitude accepted from
// the rational solve path.
const CoeffBound = 100

// ComponentTransform is one of the small, fixed per-component transforms
// available to the combination search — deliberately a much smaller set
// than the full internal/transform catalog.
type ComponentTransform struct {
	Name   string
	Apply  func([]*big.Int) []*big.Int
	Weight float64
}

var (
	Identity = ComponentTransform{Name: "id", Apply: func(s []*big.Int) []*big.Int { return s }, Weight: 0.0}
	DiffComp = ComponentTransform{Name: "diff", Apply: transform.Diff{}.Apply, Weight: 1.2}
	PSumComp = ComponentTransform{Name: "partial_sum", Apply: transform.PartialSum{}.Apply, Weight: 1.1}
)

// DefaultComponentTransforms returns {Id, Diff, PartialSum}, the extensible
// set.
func DefaultComponentTransforms() []ComponentTransform {
	return []ComponentTransform{Identity, DiffComp, PSumComp}
}

// Match is one combination hit.
type Match struct {
	IDs              []string
	Names            []string
	Coeffs           []*big.Rat
	Shifts           []int
	TransformNames   []string
	Length           int
	Score            float64
	Expression       string
	Latex            string
	ComponentTerms   [][]*big.Int
	CombinedTerms    []*big.Int
}

// Options configures a search pass. Zero-valued caps (Limit, MaxCandidates,
// MaxChecks, MaxCombinations, MaxTimeS) mean unbounded, and an empty
// ComponentTransforms means identity only. Coeffs has no default: callers
// set it explicitly per arity ({-3,-2,-1,1,2,3} for 2-seq, {-2,-1,1,2} for
// 3-seq), and an integer-mode search with no Coeffs returns nothing.
type Options struct {
	Coeffs              []int64
	MaxShift            int
	MaxShiftBack        int
	Limit               int
	MaxCandidates       int
	MaxChecks           int
	MaxCombinations     int
	MaxTimeS            float64
	ComponentTransforms []ComponentTransform
	SnippetLen          int
	UseRational         bool
	MinScore            float64
	HasMinScore         bool
	MaxComplexity       float64
	HasMaxComplexity    bool
}

func (o Options) componentTransforms() []ComponentTransform {
	if len(o.ComponentTransforms) > 0 {
		return o.ComponentTransforms
	}
	return []ComponentTransform{Identity}
}

func (o Options) shiftValues() []int {
	vals := make([]int, 0, o.MaxShift+o.MaxShiftBack+1)
	for s := -o.MaxShiftBack; s <= o.MaxShift; s++ {
		vals = append(vals, s)
	}
	return vals
}

// numAbs is the complexity formula's |c| term, defined for rationals via
// big.Rat and returned as float64.
func numAbs(r *big.Rat) float64 {
	v := new(big.Rat).Abs(r)
	f, _ := v.Float64()
	return f
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// complexity implements the scoring formula's denominator:
// Σ|cᵢ| + 0.5·Σ|sᵢ| + 0.5·max(0,k−2) + Σ component_transform_weight.
func complexity(coeffs []*big.Rat, shifts []int, weights []float64) float64 {
	var c float64
	for _, v := range coeffs {
		c += numAbs(v)
	}
	var shiftSum int
	for _, s := range shifts {
		shiftSum += absInt(s)
	}
	c += 0.5 * float64(shiftSum)
	extra := len(coeffs) - 2
	if extra < 0 {
		extra = 0
	}
	c += 0.5 * float64(extra)
	for _, w := range weights {
		c += w
	}
	return c
}

var keywordWeights = map[string]float64{
	"core": 1.0,
	"nice": 0.6,
	"easy": 0.3,
	"hard": 0.2,
	"nonn": 0.1,
}

func popularityBonus(records []store.Record) float64 {
	var bonus float64
	for _, rec := range records {
		for _, kw := range rec.Keywords {
			bonus += keywordWeights[kw]
		}
	}
	return bonus
}

func score(length int, coeffs []*big.Rat, shifts []int, weights []float64, popBonus float64) float64 {
	comp := complexity(coeffs, shifts, weights)
	return float64(length) / (1 + comp) * (1 + 0.1*popBonus)
}

func shiftString(k int) string {
	if k == 0 {
		return "n"
	}
	if k > 0 {
		return fmt.Sprintf("n+%d", k)
	}
	return fmt.Sprintf("n-%d", -k)
}

func fmtCoeff(c *big.Rat) string {
	if c.IsInt() {
		return c.Num().String()
	}
	return fmt.Sprintf("%s/%s", c.Num().String(), c.Denom().String())
}

func coeffLatex(c *big.Rat) string {
	if c.IsInt() {
		return c.Num().String()
	}
	return fmt.Sprintf("\\tfrac{%s}{%s}", c.Num().String(), c.Denom().String())
}

func transformExprTerm(name, id string, shift int) string {
	base := fmt.Sprintf("%s(%s)", id, shiftString(shift))
	if name == "id" {
		return base
	}
	return fmt.Sprintf("%s(%s)", name, base)
}

func transformLatexTerm(name, id string, shift int) string {
	base := fmt.Sprintf("\\mathrm{%s}(%s)", id, shiftString(shift))
	switch name {
	case "id":
		return base
	case "diff":
		return "\\Delta\\," + base
	case "partial_sum":
		return "\\mathrm{psum}\\," + base
	default:
		return fmt.Sprintf("\\mathrm{%s}\\,%s", name, base)
	}
}

// formatExpression renders the human-readable expression:
// a(n) = c1*<t1>(id1(n+s1)) + ...
func formatExpression(ids []string, coeffs []*big.Rat, shifts []int, names []string) string {
	parts := make([]string, len(ids))
	for i := range ids {
		parts[i] = fmt.Sprintf("%s*%s", fmtCoeff(coeffs[i]), transformExprTerm(names[i], ids[i], shifts[i]))
	}
	return "a(n) = " + strings.Join(parts, " + ")
}

func formatLatex(ids []string, coeffs []*big.Rat, shifts []int, names []string) string {
	parts := make([]string, len(ids))
	for i := range ids {
		parts[i] = fmt.Sprintf("%s\\,%s", coeffLatex(coeffs[i]), transformLatexTerm(names[i], ids[i], shifts[i]))
	}
	return "a_{n} = " + strings.Join(parts, " + ")
}

// alignedSlices computes the aligned query/candidate windows for a tuple
// of shifts, implementing the Alignment algorithm. Returns nil
// if no valid alignment exists.
type alignment struct {
	start     int
	length    int
	query     []*big.Int
	sequences [][]*big.Int
}

func alignedSlices(query []*big.Int, sequences [][]*big.Int, shifts []int, minMatchLength int) *alignment {
	qlen := len(query)
	if qlen == 0 {
		return nil
	}

	allNonNeg := true
	for _, s := range shifts {
		if s < 0 {
			allNonNeg = false
			break
		}
	}

	var start, length int
	if allNonNeg {
		for i, seq := range sequences {
			if len(seq)-shifts[i] < qlen {
				return nil
			}
		}
		start, length = 0, qlen
	} else {
		nMin := 0
		for _, s := range shifts {
			if s < 0 && -s > nMin {
				nMin = -s
			}
		}
		nMax := qlen
		for i, seq := range sequences {
			v := len(seq) - shifts[i]
			if v < nMax {
				nMax = v
			}
		}
		length = nMax - nMin
		if length < minMatchLength || length <= 0 {
			return nil
		}
		start = nMin
	}

	seqSlices := make([][]*big.Int, len(sequences))
	for i, seq := range sequences {
		segStart := start + shifts[i]
		segEnd := segStart + length
		if segStart < 0 || segEnd > len(seq) {
			return nil
		}
		seqSlices[i] = seq[segStart:segEnd]
	}
	return &alignment{start: start, length: length, query: query[start : start+length], sequences: seqSlices}
}

// sortAndTrim implements the final ordering: by
// (-score, complexity, latex_present descending, -length, ids), then
// truncates to limit (0 = unbounded). The complexity used for this
// ordering counts coefficients, shifts and arity only; unlike in score,
// component transform weights are not included.
func sortAndTrim(results []Match, limit int) []Match {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		ca := complexity(a.Coeffs, a.Shifts, nil)
		cb := complexity(b.Coeffs, b.Shifts, nil)
		if ca != cb {
			return ca < cb
		}
		al, bl := a.Latex != "", b.Latex != ""
		if al != bl {
			return al
		}
		if a.Length != b.Length {
			return a.Length > b.Length
		}
		return strings.Join(a.IDs, ",") < strings.Join(b.IDs, ",")
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}
