// Package store implements the IndexStore boundary:
// a read-only, streaming view over the persisted sequence corpus, with
// filtered and prefix-keyed iteration to back internal/candidate.
package store

import (
	"math/big"

	"github.com/rahidz/oeismatcher/internal/invariant"
)

// Record is one persisted sequence plus its
// derived invariants, embedded rather than duplicated as separate fields.
type Record struct {
	ID         string
	Terms      []*big.Int
	Length     int
	Name       string
	Keywords   []string
	Invariants invariant.Invariants
}

// Filter narrows IterFiltered to records matching every non-nil field
//.
type Filter struct {
	SignPattern   *invariant.SignPattern
	FirstDiffSign *invariant.FirstDiffSign
	NonzeroMin    *int
	NonzeroMax    *int
	MinLength     *int
	MaxLength     *int
}

// Stats summarizes the corpus for diagnostics/status reporting.
type Stats struct {
	Count     int
	MinLength int
	MaxLength int
}

// RecordIterator is a pull-based cursor over Records. Malformed rows are
// skipped internally; Err reports only iteration
// failures that aborted the stream early, not per-row skips.
type RecordIterator interface {
	Next() bool
	Record() Record
	Err() error
	Close() error
}

// IndexStore is the external boundary the matching pipeline depends on.
// Implementations are read-only from the pipeline's perspective: records
// are written once at index-build time and never mutated in place.
type IndexStore interface {
	IterAll() (RecordIterator, error)
	IterByPrefix5(prefix []*big.Int) (RecordIterator, error)
	IterFiltered(filter Filter) (RecordIterator, error)
	Stats() (Stats, error)
	Close() error
}
