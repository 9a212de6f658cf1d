// Package transform implements the unary transform catalog, chain
// enumeration, and chain-match search. Every transform is
// its own Go type implementing the Transform interface rather than a
// closure over a name string: each variant knows its own name, weight,
// and application rule, so chain search, noise filtering, scoring, and
// de-duplication never dispatch on strings.
package transform

import (
	"fmt"
	"math"
	"math/big"
)

// Transform is one unary operation on a term sequence. Weight feeds the
// chain-complexity score; Tag drives the noisy-chain length
// filter; Describe renders a human-readable and LaTeX-ish fragment for
// result explanations.
type Transform interface {
	Name() string
	Weight() float64
	Tag() string
	Apply(seq []*big.Int) []*big.Int
	Describe() (human, latex string)
}

func copySeq(seq []*big.Int) []*big.Int {
	out := make([]*big.Int, len(seq))
	copy(out, seq)
	return out
}

// Scale multiplies every term by K.
type Scale struct{ K *big.Int }

func (t Scale) Name() string  { return fmt.Sprintf("scale(%s)", t.K.String()) }
func (t Scale) Weight() float64 { return 0.6 }
func (t Scale) Tag() string   { return "Scale" }
func (t Scale) Apply(seq []*big.Int) []*big.Int {
	out := make([]*big.Int, len(seq))
	for i, v := range seq {
		out[i] = new(big.Int).Mul(v, t.K)
	}
	return out
}
func (t Scale) Describe() (string, string) {
	return fmt.Sprintf("Multiply by %s", t.K.String()), t.K.String() + "\\,"
}

// Affine computes K*x + B for every term.
type Affine struct{ K, B *big.Int }

func (t Affine) Name() string    { return fmt.Sprintf("affine(%s,%s)", t.K.String(), t.B.String()) }
func (t Affine) Weight() float64 { return 1.0 }
func (t Affine) Tag() string     { return "Affine" }
func (t Affine) Apply(seq []*big.Int) []*big.Int {
	out := make([]*big.Int, len(seq))
	for i, v := range seq {
		out[i] = new(big.Int).Add(new(big.Int).Mul(v, t.K), t.B)
	}
	return out
}
func (t Affine) Describe() (string, string) {
	return fmt.Sprintf("Multiply by %s then add %s", t.K.String(), t.B.String()),
		fmt.Sprintf("%s\\,x + %s", t.K.String(), t.B.String())
}

// Shift drops the first K terms (K > 0) or the last |K| terms (K < 0).
type Shift struct{ K int }

func (t Shift) Name() string {
	if t.K >= 0 {
		return fmt.Sprintf("shift(+%d)", t.K)
	}
	return fmt.Sprintf("shift(%d)", t.K)
}
func (t Shift) Weight() float64 { return 0.4 }
func (t Shift) Tag() string     { return "Shift" }
func (t Shift) Apply(seq []*big.Int) []*big.Int {
	if t.K == 0 {
		return copySeq(seq)
	}
	if t.K > 0 {
		if t.K >= len(seq) {
			return nil
		}
		return copySeq(seq[t.K:])
	}
	trim := -t.K
	if trim >= len(seq) {
		return nil
	}
	return copySeq(seq[:len(seq)-trim])
}
func (t Shift) Describe() (string, string) {
	n, end := t.K, "first"
	if n < 0 {
		n, end = -n, "last"
	}
	plural := "s"
	if n == 1 {
		plural = ""
	}
	return fmt.Sprintf("Drop %s %d term%s", end, n, plural), fmt.Sprintf("\\mathrm{shift}(%d)", t.K)
}

// Diff computes first differences.
type Diff struct{}

func (Diff) Name() string    { return "diff" }
func (Diff) Weight() float64 { return 1.2 }
func (Diff) Tag() string     { return "Diff" }
func (Diff) Apply(seq []*big.Int) []*big.Int {
	if len(seq) < 2 {
		return nil
	}
	out := make([]*big.Int, len(seq)-1)
	for i := 0; i+1 < len(seq); i++ {
		out[i] = new(big.Int).Sub(seq[i+1], seq[i])
	}
	return out
}
func (Diff) Describe() (string, string) { return "First differences", "\\Delta" }

// DiffK applies first-difference K times.
type DiffK struct{ K int }

func (t DiffK) Name() string    { return fmt.Sprintf("diff^%d", t.K) }
func (t DiffK) Weight() float64 { return 1.6 }
func (t DiffK) Tag() string     { return "DiffK" }
func (t DiffK) Apply(seq []*big.Int) []*big.Int {
	out := copySeq(seq)
	for i := 0; i < t.K; i++ {
		if len(out) < 2 {
			return nil
		}
		out = Diff{}.Apply(out)
	}
	return out
}
func (t DiffK) Describe() (string, string) {
	return fmt.Sprintf("Difference order %d", t.K), "\\Delta^" + fmt.Sprintf("%d", t.K)
}

// PartialSum computes running sums.
type PartialSum struct{}

func (PartialSum) Name() string    { return "partial_sum" }
func (PartialSum) Weight() float64 { return 1.1 }
func (PartialSum) Tag() string     { return "PartialSum" }
func (PartialSum) Apply(seq []*big.Int) []*big.Int {
	out := make([]*big.Int, len(seq))
	s := big.NewInt(0)
	for i, v := range seq {
		s = new(big.Int).Add(s, v)
		out[i] = s
	}
	return out
}
func (PartialSum) Describe() (string, string) { return "Partial sums", "\\mathrm{psum}" }

// CumProd computes running products.
type CumProd struct{}

func (CumProd) Name() string    { return "cumprod" }
func (CumProd) Weight() float64 { return 1.8 }
func (CumProd) Tag() string     { return "CumProd" }
func (CumProd) Apply(seq []*big.Int) []*big.Int {
	out := make([]*big.Int, len(seq))
	p := big.NewInt(1)
	for i, v := range seq {
		p = new(big.Int).Mul(p, v)
		out[i] = p
	}
	return out
}
func (CumProd) Describe() (string, string) { return "Cumulative products", "\\mathrm{cprod}" }

// Abs takes the absolute value of every term.
type Abs struct{}

func (Abs) Name() string    { return "abs" }
func (Abs) Weight() float64 { return 0.2 }
func (Abs) Tag() string     { return "Abs" }
func (Abs) Apply(seq []*big.Int) []*big.Int {
	out := make([]*big.Int, len(seq))
	for i, v := range seq {
		out[i] = new(big.Int).Abs(v)
	}
	return out
}
func (Abs) Describe() (string, string) { return "Absolute values", "|x|" }

// GCDNorm divides every term by the gcd of the sequence, unless that gcd
// is 0 or 1.
type GCDNorm struct{}

func (GCDNorm) Name() string    { return "gcd_norm" }
func (GCDNorm) Weight() float64 { return 0.3 }
func (GCDNorm) Tag() string     { return "GcdNorm" }
func (GCDNorm) Apply(seq []*big.Int) []*big.Int {
	g := big.NewInt(0)
	abs := new(big.Int)
	for _, v := range seq {
		abs.Abs(v)
		g.GCD(nil, nil, g, abs)
	}
	if g.Sign() == 0 || g.Cmp(big.NewInt(1)) == 0 {
		return copySeq(seq)
	}
	out := make([]*big.Int, len(seq))
	for i, v := range seq {
		out[i] = new(big.Int).Div(v, g)
	}
	return out
}
func (GCDNorm) Describe() (string, string) { return "Divide by gcd", "/\\gcd" }

// Decimate keeps every C-th term starting at offset D.
type Decimate struct{ C, D int }

func (t Decimate) Name() string    { return fmt.Sprintf("decimate(%d,%d)", t.C, t.D) }
func (t Decimate) Weight() float64 { return 1.5 }
func (t Decimate) Tag() string     { return "Decimate" }
func (t Decimate) Apply(seq []*big.Int) []*big.Int {
	if t.C <= 0 {
		return nil
	}
	var out []*big.Int
	for n := 0; ; n++ {
		idx := t.C*n + t.D
		if idx >= len(seq) {
			break
		}
		if idx >= 0 {
			out = append(out, new(big.Int).Set(seq[idx]))
		}
	}
	return out
}
func (t Decimate) Describe() (string, string) {
	return fmt.Sprintf("Decimate %d,%d", t.C, t.D), "\\mathrm{decimate}"
}

// Reverse reverses the term order.
type Reverse struct{}

func (Reverse) Name() string    { return "reverse" }
func (Reverse) Weight() float64 { return 0.5 }
func (Reverse) Tag() string     { return "Reverse" }
func (Reverse) Apply(seq []*big.Int) []*big.Int {
	n := len(seq)
	out := make([]*big.Int, n)
	for i, v := range seq {
		out[n-1-i] = v
	}
	return out
}
func (Reverse) Describe() (string, string) { return "Reverse", "\\mathrm{rev}" }

// EvenTerms keeps terms at even indices (0-based).
type EvenTerms struct{}

func (EvenTerms) Name() string    { return "even_terms" }
func (EvenTerms) Weight() float64 { return 0.8 }
func (EvenTerms) Tag() string     { return "EvenTerms" }
func (EvenTerms) Apply(seq []*big.Int) []*big.Int {
	var out []*big.Int
	for i := 0; i < len(seq); i += 2 {
		out = append(out, seq[i])
	}
	return out
}
func (EvenTerms) Describe() (string, string) { return "Even-index terms", "\\mathrm{even}" }

// OddTerms keeps terms at odd indices (0-based).
type OddTerms struct{}

func (OddTerms) Name() string    { return "odd_terms" }
func (OddTerms) Weight() float64 { return 0.8 }
func (OddTerms) Tag() string     { return "OddTerms" }
func (OddTerms) Apply(seq []*big.Int) []*big.Int {
	var out []*big.Int
	for i := 1; i < len(seq); i += 2 {
		out = append(out, seq[i])
	}
	return out
}
func (OddTerms) Describe() (string, string) { return "Odd-index terms", "\\mathrm{odd}" }

// MovingSum sums each window of consecutive terms.
type MovingSum struct{ Window int }

func (t MovingSum) Name() string    { return fmt.Sprintf("movsum(%d)", t.Window) }
func (t MovingSum) Weight() float64 { return 1.0 }
func (t MovingSum) Tag() string     { return "MovSum" }
func (t MovingSum) Apply(seq []*big.Int) []*big.Int {
	if t.Window <= 0 || len(seq) < t.Window {
		return nil
	}
	out := make([]*big.Int, len(seq)-t.Window+1)
	for i := range out {
		s := big.NewInt(0)
		for j := i; j < i+t.Window; j++ {
			s.Add(s, seq[j])
		}
		out[i] = s
	}
	return out
}
func (t MovingSum) Describe() (string, string) {
	return fmt.Sprintf("Moving sum %d", t.Window), "\\mathrm{movsum}"
}

// Popcount counts set bits in the magnitude of each term.
type Popcount struct{}

func (Popcount) Name() string    { return "popcount" }
func (Popcount) Weight() float64 { return 1.2 }
func (Popcount) Tag() string     { return "Popcount" }
func (Popcount) Apply(seq []*big.Int) []*big.Int {
	out := make([]*big.Int, len(seq))
	abs := new(big.Int)
	for i, v := range seq {
		abs.Abs(v)
		count := 0
		for b := 0; b < abs.BitLen(); b++ {
			if abs.Bit(b) == 1 {
				count++
			}
		}
		out[i] = big.NewInt(int64(count))
	}
	return out
}
func (Popcount) Describe() (string, string) { return "Binary popcount", "\\mathrm{popcount}" }

// Mod reduces every term modulo M (Euclidean, matching Python's %).
type Mod struct{ M *big.Int }

func (t Mod) Name() string    { return fmt.Sprintf("mod(%s)", t.M.String()) }
func (t Mod) Weight() float64 { return 0.9 }
func (t Mod) Tag() string     { return "Mod" }
func (t Mod) Apply(seq []*big.Int) []*big.Int {
	if t.M.Sign() <= 0 {
		return nil
	}
	out := make([]*big.Int, len(seq))
	for i, v := range seq {
		out[i] = new(big.Int).Mod(v, t.M)
	}
	return out
}
func (t Mod) Describe() (string, string) {
	return fmt.Sprintf("Mod %s", t.M.String()), "\\bmod"
}

// XorIndex XORs each term with its 0-based index.
type XorIndex struct{}

func (XorIndex) Name() string    { return "xor_index" }
func (XorIndex) Weight() float64 { return 1.3 }
func (XorIndex) Tag() string     { return "XorIndex" }
func (XorIndex) Apply(seq []*big.Int) []*big.Int {
	out := make([]*big.Int, len(seq))
	for i, v := range seq {
		out[i] = new(big.Int).Xor(v, big.NewInt(int64(i)))
	}
	return out
}
func (XorIndex) Describe() (string, string) { return "Bitwise XOR with index", "\\mathrm{xor\\_i}" }

// RleEncode replaces the sequence with its run lengths (values discarded).
type RleEncode struct{}

func (RleEncode) Name() string    { return "rle_len" }
func (RleEncode) Weight() float64 { return 1.1 }
func (RleEncode) Tag() string     { return "RleEncode" }
func (RleEncode) Apply(seq []*big.Int) []*big.Int {
	if len(seq) == 0 {
		return nil
	}
	var out []*big.Int
	current := seq[0]
	count := int64(1)
	for _, v := range seq[1:] {
		if v.Cmp(current) == 0 {
			count++
		} else {
			out = append(out, big.NewInt(count))
			current = v
			count = 1
		}
	}
	out = append(out, big.NewInt(count))
	return out
}
func (RleEncode) Describe() (string, string) {
	return "Run-length encode (lengths)", "\\mathrm{rle}"
}

// RleDecode interprets (length, value) pairs and expands them.
type RleDecode struct{}

func (RleDecode) Name() string    { return "rle_dec" }
func (RleDecode) Weight() float64 { return 1.4 }
func (RleDecode) Tag() string     { return "RleDecode" }
func (RleDecode) Apply(seq []*big.Int) []*big.Int {
	if len(seq)%2 != 0 {
		return nil
	}
	var out []*big.Int
	for i := 0; i < len(seq); i += 2 {
		length := seq[i]
		value := seq[i+1]
		if length.Sign() < 0 {
			return nil
		}
		if !length.IsInt64() || length.Int64() > 1_000_000 {
			return nil
		}
		for n := int64(0); n < length.Int64(); n++ {
			out = append(out, new(big.Int).Set(value))
		}
	}
	return out
}
func (RleDecode) Describe() (string, string) {
	return "Run-length decode (len,val pairs)", "\\mathrm{rldec}"
}

// ConcatIndexValue concatenates the 1-based index with the term's
// magnitude in the given base, keeping the term's sign.
type ConcatIndexValue struct{ Base int }

func (t ConcatIndexValue) Name() string {
	return fmt.Sprintf("concat(n,a_n,base%d)", t.Base)
}
func (t ConcatIndexValue) Weight() float64 { return 1.4 }
func (t ConcatIndexValue) Tag() string     { return "Concat" }
func (t ConcatIndexValue) Apply(seq []*big.Int) []*big.Int {
	out := make([]*big.Int, len(seq))
	base := big.NewInt(int64(t.Base))
	for i, v := range seq {
		sign := 1
		mag := new(big.Int).Abs(v)
		if v.Sign() < 0 {
			sign = -1
		}
		idxDigits := toBaseDigits(big.NewInt(int64(i+1)), base)
		magDigits := toBaseDigits(mag, base)
		concatenated := new(big.Int)
		for _, d := range append(idxDigits, magDigits...) {
			concatenated.Mul(concatenated, base)
			concatenated.Add(concatenated, big.NewInt(int64(d)))
		}
		if sign < 0 {
			concatenated.Neg(concatenated)
		}
		out[i] = concatenated
	}
	return out
}
func (t ConcatIndexValue) Describe() (string, string) {
	return "Concatenate n with a_n", "\\mathrm{concat}(n,a_n)"
}

func toBaseDigits(v, base *big.Int) []int {
	if v.Sign() == 0 {
		return []int{0}
	}
	var digits []int
	rem := new(big.Int)
	quo := new(big.Int).Set(v)
	for quo.Sign() > 0 {
		quo.QuoRem(quo, base, rem)
		digits = append(digits, int(rem.Int64()))
	}
	for i, j := 0, len(digits)-1; i < j; i, j = i+1, j-1 {
		digits[i], digits[j] = digits[j], digits[i]
	}
	return digits
}

// Binomial applies the classic binomial transform b_n = sum_{k=0..n} C(n,k) a_k.
type Binomial struct{}

func (Binomial) Name() string    { return "binomial" }
func (Binomial) Weight() float64 { return 1.6 }
func (Binomial) Tag() string     { return "Binomial" }
func (Binomial) Apply(seq []*big.Int) []*big.Int {
	out := make([]*big.Int, len(seq))
	for n := range seq {
		s := big.NewInt(0)
		for k := 0; k <= n; k++ {
			comb := new(big.Int).Binomial(int64(n), int64(k))
			term := new(big.Int).Mul(comb, seq[k])
			s.Add(s, term)
		}
		out[n] = s
	}
	return out
}
func (Binomial) Describe() (string, string) { return "Binomial transform", "\\mathrm{binomial}" }

// Euler applies the non-classical transform used by the reference
// implementation: b_n = sum_{d|n} d*a_d for n>=1, b_0 = a_0. This is NOT
// the generating-function Euler transform; kept exactly as coded.
type Euler struct{}

func (Euler) Name() string    { return "euler" }
func (Euler) Weight() float64 { return 1.0 }
func (Euler) Tag() string     { return "Euler" }
func (Euler) Apply(seq []*big.Int) []*big.Int {
	out := make([]*big.Int, len(seq))
	for n := range seq {
		if n == 0 {
			out[0] = new(big.Int).Set(seq[0])
			continue
		}
		s := big.NewInt(0)
		for d := 1; d <= n; d++ {
			if n%d == 0 && d < len(seq) {
				s.Add(s, new(big.Int).Mul(big.NewInt(int64(d)), seq[d]))
			}
		}
		out[n] = s
	}
	return out
}
func (Euler) Describe() (string, string) { return "Euler-style divisor transform", "\\mathrm{euler}" }

// Mobius applies the Dirichlet-inverse-of-1 Möbius transform under a
// 1-based n with seq[d-1] addressing; the corpus was indexed with this
// convention, so the off-by-one must stay as is.
type Mobius struct{}

func (Mobius) Name() string    { return "mobius" }
func (Mobius) Weight() float64 { return 1.7 }
func (Mobius) Tag() string     { return "Mobius" }
func (Mobius) Apply(seq []*big.Int) []*big.Int {
	if len(seq) == 0 {
		return nil
	}
	out := make([]*big.Int, len(seq))
	out[0] = new(big.Int).Set(seq[0])
	for i := 1; i < len(seq); i++ {
		n := i + 1
		s := big.NewInt(0)
		for d := 1; d <= n; d++ {
			if n%d == 0 && d-1 < len(seq) {
				mu := mobiusFunc(n / d)
				s.Add(s, new(big.Int).Mul(big.NewInt(int64(mu)), seq[d-1]))
			}
		}
		out[i] = s
	}
	return out
}
func (Mobius) Describe() (string, string) { return "Möbius transform", "\\mathrm{Mobius}" }

func mobiusFunc(n int) int {
	nAbs := n
	if nAbs < 0 {
		nAbs = -nAbs
	}
	if nAbs == 1 {
		return 1
	}
	p := 0
	d := 2
	for d*d <= nAbs {
		if nAbs%d == 0 {
			nAbs /= d
			if nAbs%d == 0 {
				return 0
			}
			p++
		}
		d++
	}
	if nAbs > 1 {
		p++
	}
	if p%2 == 1 {
		return -1
	}
	return 1
}

// DigitSum sums the base-B digits of the magnitude of every term.
type DigitSum struct{ Base int }

func (t DigitSum) Name() string    { return fmt.Sprintf("digitsum(%d)", t.Base) }
func (t DigitSum) Weight() float64 { return 1.0 }
func (t DigitSum) Tag() string     { return "DigitSum" }
func (t DigitSum) Apply(seq []*big.Int) []*big.Int {
	out := make([]*big.Int, len(seq))
	base := big.NewInt(int64(t.Base))
	for i, v := range seq {
		mag := new(big.Int).Abs(v)
		if mag.Sign() == 0 {
			out[i] = big.NewInt(0)
			continue
		}
		s := int64(0)
		rem := new(big.Int)
		q := new(big.Int).Set(mag)
		for q.Sign() > 0 {
			q.QuoRem(q, base, rem)
			s += rem.Int64()
		}
		out[i] = big.NewInt(s)
	}
	return out
}
func (t DigitSum) Describe() (string, string) { return "Digit sum", "\\mathrm{digitsum}" }

// Log applies a rounded integer logarithm in the given base; drops the
// whole chain (returns nil) if any term is non-positive or base <= 1.
type Log struct{ Base float64 }

func (t Log) Name() string {
	switch {
	case math.Abs(t.Base-math.E) < 1e-9:
		return "loge"
	case t.Base == math.Trunc(t.Base):
		return fmt.Sprintf("log%d", int64(t.Base))
	default:
		return fmt.Sprintf("log%g", t.Base)
	}
}
func (Log) Weight() float64 { return 1.5 }
func (Log) Tag() string     { return "Log" }
func (t Log) Apply(seq []*big.Int) []*big.Int {
	if t.Base <= 1 {
		return nil
	}
	out := make([]*big.Int, len(seq))
	f := new(big.Float)
	for i, v := range seq {
		if v.Sign() <= 0 {
			return nil
		}
		f.SetInt(v)
		fv, _ := f.Float64()
		val := math.Log(fv) / math.Log(t.Base)
		out[i] = big.NewInt(int64(math.Round(val)))
	}
	return out
}
func (t Log) Describe() (string, string) {
	return fmt.Sprintf("Integer log base %g", t.Base), "\\log"
}

// Exp exponentiates (rounded), dropping the whole chain if the result
// overflows past MaxMag or isn't finite.
type Exp struct {
	Base   float64
	MaxMag float64
}

func (t Exp) Name() string {
	if t.Base == math.Trunc(t.Base) {
		return fmt.Sprintf("exp%d", int64(t.Base))
	}
	return fmt.Sprintf("exp%g", t.Base)
}
func (Exp) Weight() float64 { return 1.8 }
func (Exp) Tag() string     { return "Exp" }
func (t Exp) Apply(seq []*big.Int) []*big.Int {
	if t.Base <= 1 {
		return nil
	}
	maxMag := t.MaxMag
	if maxMag == 0 {
		maxMag = 1e12
	}
	out := make([]*big.Int, len(seq))
	f := new(big.Float)
	for i, v := range seq {
		f.SetInt(v)
		exponent, _ := f.Float64()
		val := math.Pow(t.Base, exponent)
		if !math.IsInf(val, 0) && !math.IsNaN(val) && math.Abs(val) <= maxMag {
			out[i] = big.NewInt(int64(math.Round(val)))
			continue
		}
		return nil
	}
	return out
}
func (t Exp) Describe() (string, string) {
	return fmt.Sprintf("Exponentiate base %g", t.Base), "\\exp"
}
