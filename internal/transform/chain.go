package transform

import "math/big"

// Chain is an ordered sequence of transforms applied left to right.
type Chain []Transform

// EnumerateChains returns every chain of length 1..maxDepth built from the
// given transform pool, in the same order as Python's
// every ordered tuple of length 1..maxDepth over the pool. Exhaustive
// Cartesian enumeration rather than BFS:
// depth is bounded low enough (<=2 in practice) that this is fine.
func EnumerateChains(pool []Transform, maxDepth int) []Chain {
	var chains []Chain
	t := len(pool)
	if t == 0 || maxDepth <= 0 {
		return chains
	}
	for depth := 1; depth <= maxDepth; depth++ {
		idx := make([]int, depth)
		for {
			chain := make(Chain, depth)
			for i, ix := range idx {
				chain[i] = pool[ix]
			}
			chains = append(chains, chain)

			pos := depth - 1
			for pos >= 0 {
				idx[pos]++
				if idx[pos] < t {
					break
				}
				idx[pos] = 0
				pos--
			}
			if pos < 0 {
				break
			}
		}
	}
	return chains
}

// ApplyChain runs seq through every transform in the chain in order,
// stopping (and returning nil) as soon as any stage produces an empty
// result.
func ApplyChain(seq []*big.Int, chain Chain) []*big.Int {
	out := seq
	for _, t := range chain {
		if len(out) == 0 {
			return nil
		}
		out = t.Apply(out)
		if out == nil {
			return nil
		}
	}
	return out
}

// Name joins each transform's Name with the chain-composition operator.
func (c Chain) Name() string {
	if len(c) == 0 {
		return ""
	}
	s := c[0].Name()
	for _, t := range c[1:] {
		s += " ∘ " + t.Name()
	}
	return s
}

// Complexity sums each transform's Weight, the denominator of the
// chain-result score.
func (c Chain) Complexity() float64 {
	var w float64
	for _, t := range c {
		w += t.Weight()
	}
	return w
}

// Describe renders a human-readable and LaTeX description of the whole
// chain, joining each transform's own Describe().
func (c Chain) Describe() (human, latex string) {
	for i, t := range c {
		h, l := t.Describe()
		if i > 0 {
			human += ", then "
			latex += " "
		}
		human += h
		latex += l
	}
	if latex != "" {
		latex += "\\,a_n"
	}
	return human, latex
}

// noisyTagPrefixes is the set of transform tags that, on their own, flag a chain
// as "noisy": likely to produce spurious incidental matches rather than a
// meaningful structural relationship.
var noisyTagPrefixes = []string{"Popcount", "XorIndex", "RleEncode", "RleDecode", "DigitSum", "Decimate", "Mod", "Concat", "Log", "Exp"}

// IsNoisy reports whether the chain contains any transform whose Tag
// matches the noisy set.
func (c Chain) IsNoisy() bool {
	for _, t := range c {
		tag := t.Tag()
		for _, p := range noisyTagPrefixes {
			if tag == p {
				return true
			}
		}
	}
	return false
}
