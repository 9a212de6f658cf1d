package transform

import "math/big"

// Options controls which transform families DefaultCatalog includes,
// via keyword-style toggles. The always-on core
// (scale, affine, shift, diff, diff^k, partial_sum, cumprod, abs, gcd_norm,
// reverse, even/odd terms, moving sum, binomial) is always included;
// the noisier families are opt-in because they flood results on short
// queries.
type Options struct {
	IncludeDecimate    bool
	IncludeMod         []int64
	IncludePopcount    bool
	IncludeXorIndex    bool
	IncludeRle         bool
	IncludeConcat      bool
	IncludeDigitSum    []int
	IncludeLog         []float64
	IncludeExp         []float64
	IncludeEuler       bool
	IncludeMobius      bool
	ScaleFactors       []int64
	ShiftAmounts       []int
	DiffOrders         []int
	MovingSumWindows   []int
	DecimateParams     [][2]int
}

// DefaultOptions returns the out-of-the-box catalog parameters.
func DefaultOptions() Options {
	return Options{
		ScaleFactors:     []int64{-2, -1, 2, 3},
		ShiftAmounts:     []int{1, 2, -1, -2},
		DiffOrders:       []int{1, 2},
		MovingSumWindows: []int{2, 3},
	}
}

// DefaultCatalog builds the transform pool used for chain enumeration,
// with every numeric parameter sourced from Options.
func DefaultCatalog(opts Options) []Transform {
	var pool []Transform

	for _, k := range opts.ScaleFactors {
		pool = append(pool, Scale{K: big.NewInt(k)})
	}
	for _, k := range opts.ScaleFactors {
		pool = append(pool, Affine{K: big.NewInt(k), B: big.NewInt(1)})
		pool = append(pool, Affine{K: big.NewInt(k), B: big.NewInt(-1)})
	}
	for _, s := range opts.ShiftAmounts {
		pool = append(pool, Shift{K: s})
	}
	for _, d := range opts.DiffOrders {
		if d == 1 {
			pool = append(pool, Diff{})
		} else {
			pool = append(pool, DiffK{K: d})
		}
	}
	pool = append(pool, PartialSum{}, CumProd{}, Abs{}, GCDNorm{}, Reverse{}, EvenTerms{}, OddTerms{}, Binomial{})

	for _, w := range opts.MovingSumWindows {
		pool = append(pool, MovingSum{Window: w})
	}
	if opts.IncludeDecimate {
		params := opts.DecimateParams
		if len(params) == 0 {
			params = [][2]int{{2, 0}, {2, 1}, {3, 0}}
		}
		for _, p := range params {
			pool = append(pool, Decimate{C: p[0], D: p[1]})
		}
	}
	for _, m := range opts.IncludeMod {
		pool = append(pool, Mod{M: big.NewInt(m)})
	}
	if opts.IncludePopcount {
		pool = append(pool, Popcount{})
	}
	if opts.IncludeXorIndex {
		pool = append(pool, XorIndex{})
	}
	if opts.IncludeRle {
		pool = append(pool, RleEncode{}, RleDecode{})
	}
	if opts.IncludeConcat {
		pool = append(pool, ConcatIndexValue{Base: 10})
	}
	for _, b := range opts.IncludeDigitSum {
		pool = append(pool, DigitSum{Base: b})
	}
	for _, b := range opts.IncludeLog {
		pool = append(pool, Log{Base: b})
	}
	for _, b := range opts.IncludeExp {
		pool = append(pool, Exp{Base: b})
	}
	if opts.IncludeEuler {
		pool = append(pool, Euler{})
	}
	if opts.IncludeMobius {
		pool = append(pool, Mobius{})
	}
	return pool
}
