// Package query parses raw sequence text into a normalized Query and
// enforces the wildcard caps: at most 3 wildcard terms, and wildcards at
// most half the query length.
package query

import (
	"math/big"
	"regexp"
	"strings"

	matcherrors "github.com/rahidz/oeismatcher/internal/errors"
	"github.com/rahidz/oeismatcher/internal/term"
)

const (
	// MaxWildcards is the absolute cap on Any tokens in a query.
	MaxWildcards = 3
	// MaxWildcardFraction is the cap on wildcards as a fraction of length.
	MaxWildcardFraction = 0.5
)

var splitPattern = regexp.MustCompile(`[,\s]+`)

// Query is an ordered sequence of Terms plus the matching options that
// control how an exact match against it is attempted.
type Query struct {
	Terms            []term.Term
	MinMatchLength   int
	AllowSubsequence bool
}

// Len returns the number of terms in the query.
func (q Query) Len() int {
	return len(q.Terms)
}

// HasWildcards reports whether the query contains any Any term.
func (q Query) HasWildcards() bool {
	return term.HasAny(q.Terms)
}

// Options controls parsing behavior; zero value uses spec defaults.
type Options struct {
	MinMatchLength   int
	AllowSubsequence bool
}

// defaultOptions fills in the zero-value parsing defaults.
func defaultOptions(opts Options) Options {
	if opts.MinMatchLength <= 0 {
		opts.MinMatchLength = 3
	}
	return opts
}

// Parse tokenizes text on commas/whitespace, maps "?" and "*" to the
// wildcard term, parses the rest as arbitrary-precision integers, and
// silently drops anything else. Returns a *errors.MatchError
// (CodeQueryParse) if the wildcard caps are violated.
func Parse(text string, opts Options) (Query, error) {
	opts = defaultOptions(opts)
	trimmed := strings.TrimSpace(text)
	var terms []term.Term
	if trimmed != "" {
		for _, tok := range splitPattern.Split(trimmed, -1) {
			if tok == "" {
				continue
			}
			if tok == "?" || tok == "*" {
				terms = append(terms, term.Any)
				continue
			}
			v, ok := new(big.Int).SetString(tok, 10)
			if !ok {
				continue
			}
			terms = append(terms, term.FromBigInt(v))
		}
	}

	if err := validateWildcards(terms); err != nil {
		return Query{}, err
	}

	return Query{
		Terms:            terms,
		MinMatchLength:   opts.MinMatchLength,
		AllowSubsequence: opts.AllowSubsequence,
	}, nil
}

func validateWildcards(terms []term.Term) error {
	n := term.CountAny(terms)
	if n > MaxWildcards {
		return matcherrors.QueryParseError("too many wildcard terms: at most 3 allowed")
	}
	if len(terms) > 0 && float64(n) > MaxWildcardFraction*float64(len(terms)) {
		return matcherrors.QueryParseError("wildcard fraction exceeds 50% of query length")
	}
	return nil
}
