// Package pipeline implements the top-level analysis orchestrator:
// Analyze(query, options) runs exact match (with the subsequence and
// full-scan fallbacks), transform-chain search, similarity ranking, and
// combination search in sequence over one shared candidate bucket,
// recording per-stage timings.
package pipeline

import (
	"math/big"
	"strconv"
	"time"

	"github.com/rahidz/oeismatcher/internal/cache"
	"github.com/rahidz/oeismatcher/internal/candidate"
	"github.com/rahidz/oeismatcher/internal/combination"
	matcherrors "github.com/rahidz/oeismatcher/internal/errors"
	"github.com/rahidz/oeismatcher/internal/invariant"
	"github.com/rahidz/oeismatcher/internal/matcher"
	"github.com/rahidz/oeismatcher/internal/query"
	"github.com/rahidz/oeismatcher/internal/similarity"
	"github.com/rahidz/oeismatcher/internal/store"
	"github.com/rahidz/oeismatcher/internal/term"
	"github.com/rahidz/oeismatcher/internal/transform"
)

// Diagnostics carries per-stage wall-clock timings and flags recording
// whether the subsequence and full-scan fallbacks ran.
type Diagnostics struct {
	ExactDuration       time.Duration
	TransformDuration   time.Duration
	SimilarityDuration  time.Duration
	CombinationDuration time.Duration
	UsedSubsequenceFallback bool
	UsedFullScanFallback    bool
}

// AnalysisResult is the top-level return value of Analyze.
type AnalysisResult struct {
	Query              query.Query
	ExactMatches       []matcher.Match
	TransformMatches   []transform.Match
	Similarity         []similarity.Scored
	Combinations       []combination.Match
	TripleCombinations []combination.Match
	Diagnostics        *Diagnostics
}

// Options configures one Analyze call.
type Options struct {
	AllowSubsequence    bool
	FallbackSubsequence bool
	FallbackFullScan    bool
	MinMatchLength      int
	SnippetLen          int
	ExactLimit          int

	TransformMaxDepth int
	TransformPool     []transform.Transform
	TransformLimit    int

	SimilarityTopK int

	Combos           int
	Triples          int
	CombinationOpts  combination.Options
	TripleOpts       combination.Options

	MaxBucketRecords int
	WithDiagnostics  bool
}

// Orchestrator holds a read-only IndexStore handle and runs Analyze
// against it; safe for concurrent use across requests. Buckets, when
// non-nil, caches the shared candidate bucket per query fingerprint; the
// cache is itself concurrency-safe and nil-safe.
type Orchestrator struct {
	Store   store.IndexStore
	Buckets *cache.BucketCache
}

func New(st store.IndexStore) *Orchestrator {
	return &Orchestrator{Store: st}
}

// NewWithCache builds an Orchestrator that reuses candidate buckets
// across identical queries (the daemon's warm path).
func NewWithCache(st store.IndexStore, buckets *cache.BucketCache) *Orchestrator {
	return &Orchestrator{Store: st, Buckets: buckets}
}

// Analyze runs the full pipeline
func (o *Orchestrator) Analyze(q query.Query, opts Options) (*AnalysisResult, error) {
	if o.Store == nil {
		return nil, matcherrors.IndexMissingError("pipeline: IndexStore is nil")
	}

	result := &AnalysisResult{Query: q}
	var diag *Diagnostics
	if opts.WithDiagnostics {
		diag = &Diagnostics{}
		result.Diagnostics = diag
	}

	candOpts := candidate.Options{
		UsePrefixIndex:   true,
		AllowSubsequence: opts.AllowSubsequence,
		MinMatchLength:   opts.MinMatchLength,
	}

	exactStart := time.Now()
	exactMatches, usedSub, usedScan, err := o.runExactWithFallback(q, opts, candOpts)
	if err != nil {
		return nil, err
	}
	result.ExactMatches = exactMatches
	if diag != nil {
		diag.ExactDuration = time.Since(exactStart)
		diag.UsedSubsequenceFallback = usedSub
		diag.UsedFullScanFallback = usedScan
	}

	bucketRecords, err := o.collectBucket(q, candOpts, opts)
	if err != nil {
		return nil, err
	}

	if opts.TransformMaxDepth > 0 && len(opts.TransformPool) > 0 {
		start := time.Now()
		result.TransformMatches = transform.Search(term.ToBigInts(q.Terms), bucketRecords, opts.TransformPool, transform.SearchOptions{
			MaxDepth:         opts.TransformMaxDepth,
			AllowSubsequence: opts.AllowSubsequence || opts.FallbackSubsequence,
			MinMatchLength:   opts.MinMatchLength,
			Limit:            opts.TransformLimit,
			SnippetLen:       opts.SnippetLen,
		})
		if diag != nil {
			diag.TransformDuration = time.Since(start)
		}
	}

	if opts.SimilarityTopK != 0 && !q.HasWildcards() {
		start := time.Now()
		result.Similarity = similarity.Rank(term.ToBigInts(q.Terms), bucketRecords, opts.SimilarityTopK)
		if diag != nil {
			diag.SimilarityDuration = time.Since(start)
		}
	}

	if (opts.Combos > 0 || opts.Triples > 0) && !q.HasWildcards() {
		start := time.Now()
		queryInts := term.ToBigInts(q.Terms)
		if opts.Combos > 0 {
			result.Combinations = combination.SearchTwo(queryInts, opts.MinMatchLength, bucketRecords, opts.CombinationOpts)
		}
		if opts.Triples > 0 {
			result.TripleCombinations = combination.SearchThree(queryInts, opts.MinMatchLength, bucketRecords, opts.TripleOpts)
		}
		if diag != nil {
			diag.CombinationDuration = time.Since(start)
		}
	}

	return result, nil
}

// runExactWithFallback runs the exact stage: try exact match
// with the query as given; if empty and subsequence mode wasn't already
// on, retry with AllowSubsequence; if still empty, retry against a full
// scan of the corpus.
func (o *Orchestrator) runExactWithFallback(q query.Query, opts Options, candOpts candidate.Options) ([]matcher.Match, bool, bool, error) {
	it, err := candidate.SelectForQuery(o.Store, q.Terms, candOpts)
	if err != nil {
		return nil, false, false, matcherrors.Wrap(matcherrors.CodeInternal, err)
	}
	records, err := candidate.CollectAll(it)
	if err != nil {
		return nil, false, false, matcherrors.Wrap(matcherrors.CodeInternal, err)
	}

	matches := matcher.MatchExact(q, records, opts.ExactLimit, opts.SnippetLen)
	if len(matches) > 0 || !opts.FallbackSubsequence || opts.AllowSubsequence {
		return matches, false, false, nil
	}

	subQ := q
	subQ.AllowSubsequence = true
	matches = matcher.MatchExact(subQ, records, opts.ExactLimit, opts.SnippetLen)
	if len(matches) > 0 || !opts.FallbackFullScan {
		return matches, true, false, nil
	}

	allIt, err := o.Store.IterAll()
	if err != nil {
		return nil, true, false, matcherrors.Wrap(matcherrors.CodeInternal, err)
	}
	allRecords, err := candidate.CollectAll(allIt)
	if err != nil {
		return nil, true, false, matcherrors.Wrap(matcherrors.CodeInternal, err)
	}
	matches = matcher.MatchExact(subQ, allRecords, opts.ExactLimit, opts.SnippetLen)
	return matches, true, true, nil
}

// collectBucket builds the shared candidate bucket used by the transform,
// similarity, and combination stages.
func (o *Orchestrator) collectBucket(q query.Query, candOpts candidate.Options, opts Options) ([]store.Record, error) {
	if q.HasWildcards() {
		it, err := candidate.SelectForQuery(o.Store, q.Terms, candOpts)
		if err != nil {
			return nil, matcherrors.Wrap(matcherrors.CodeInternal, err)
		}
		return candidate.CollectAll(it)
	}

	queryInts := term.ToBigInts(q.Terms)

	fp := bucketFingerprint(queryInts, opts)
	if records, ok := o.Buckets.Get(fp); ok {
		return records, nil
	}

	baseIt, err := candidate.Select(o.Store, queryInts, candOpts)
	if err != nil {
		return nil, matcherrors.Wrap(matcherrors.CodeInternal, err)
	}
	base, err := candidate.CollectAll(baseIt)
	if err != nil {
		return nil, matcherrors.Wrap(matcherrors.CodeInternal, err)
	}

	maxRecords := opts.MaxBucketRecords
	if maxRecords <= 0 {
		maxRecords = 200
	}
	similar := similarity.Rank(queryInts, base, maxRecords)
	similarRecords := make([]store.Record, len(similar))
	for i, s := range similar {
		similarRecords[i] = s.Record
	}

	bucket := candidate.BuildBucket(base, similarRecords, q.Len(), maxRecords)
	if err := bucket.Fill(o.Store, opts.MinMatchLength, maxRecords); err != nil {
		return nil, matcherrors.Wrap(matcherrors.CodeInternal, err)
	}
	o.Buckets.Put(fp, bucket.Records)
	return bucket.Records, nil
}

// bucketFingerprint keys the bucket cache by the concrete query terms,
// its sign pattern, and the bucket-shaping options.
func bucketFingerprint(queryInts []*big.Int, opts Options) cache.Fingerprint {
	terms := make([]string, len(queryInts)+1)
	for i, v := range queryInts {
		terms[i] = v.String()
	}
	terms[len(queryInts)] = "cap=" + strconv.Itoa(opts.MaxBucketRecords)
	return cache.BuildFingerprint(invariant.ComputeSignPattern(queryInts), terms, opts.MinMatchLength)
}
