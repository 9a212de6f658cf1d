// Package term implements the arbitrary-precision integer model that
// underlies every sequence and query in the matcher. OEIS terms routinely
// exceed 64 bits, so every term is a *big.Int; a Term additionally carries
// the wildcard sentinel used in queries.
package term

import "math/big"

// Term is either a concrete arbitrary-precision integer or the wildcard Any.
// Any is only legal inside a Query; SequenceRecord terms are always concrete.
type Term struct {
	val  *big.Int
	wild bool
}

// Any is the wildcard term, matching any single concrete value.
var Any = Term{wild: true}

// FromInt64 builds a concrete Term from a native integer.
func FromInt64(v int64) Term {
	return Term{val: big.NewInt(v)}
}

// FromBigInt builds a concrete Term from a *big.Int. The value is copied.
func FromBigInt(v *big.Int) Term {
	return Term{val: new(big.Int).Set(v)}
}

// IsAny reports whether t is the wildcard term.
func (t Term) IsAny() bool {
	return t.wild
}

// Int returns the underlying *big.Int. Callers must not mutate it. Calling
// Int on a wildcard Term returns nil.
func (t Term) Int() *big.Int {
	return t.val
}

// Equal reports whether two concrete terms carry the same value. Any never
// equals anything, including another Any, except through MatchesWildcard.
func (t Term) Equal(other Term) bool {
	if t.wild || other.wild {
		return false
	}
	return t.val.Cmp(other.val) == 0
}

// MatchesWildcard reports whether a query term matches a concrete record
// term: equal values, or the query term is Any.
func (t Term) MatchesWildcard(recordTerm Term) bool {
	if t.wild {
		return true
	}
	return t.Equal(recordTerm)
}

// Sign returns -1, 0, or 1 for a concrete term; wildcards return 0.
func (t Term) Sign() int {
	if t.wild {
		return 0
	}
	return t.val.Sign()
}

// IsZero reports whether a concrete term is exactly zero.
func (t Term) IsZero() bool {
	return !t.wild && t.val.Sign() == 0
}

// String renders the term: its decimal value, or "?" for Any.
func (t Term) String() string {
	if t.wild {
		return "?"
	}
	return t.val.String()
}

// ToBigInts converts a concrete term slice to plain *big.Int slice. Panics
// if any element is a wildcard — callers must only use this on sequences
// known to be wildcard-free (record terms, or queries already validated).
func ToBigInts(terms []Term) []*big.Int {
	out := make([]*big.Int, len(terms))
	for i, t := range terms {
		if t.wild {
			panic("term: ToBigInts called on a wildcard term")
		}
		out[i] = t.val
	}
	return out
}

// FromBigInts wraps a slice of *big.Int as concrete Terms.
func FromBigInts(vals []*big.Int) []Term {
	out := make([]Term, len(vals))
	for i, v := range vals {
		out[i] = FromBigInt(v)
	}
	return out
}

// HasAny reports whether any element of terms is the wildcard.
func HasAny(terms []Term) bool {
	for _, t := range terms {
		if t.wild {
			return true
		}
	}
	return false
}

// CountAny counts wildcard terms.
func CountAny(terms []Term) int {
	n := 0
	for _, t := range terms {
		if t.wild {
			n++
		}
	}
	return n
}
