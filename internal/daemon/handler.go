package daemon

import (
	"context"
	"math/big"
	"sync/atomic"
	"time"

	"github.com/rahidz/oeismatcher/internal/cache"
	"github.com/rahidz/oeismatcher/internal/combination"
	"github.com/rahidz/oeismatcher/internal/config"
	"github.com/rahidz/oeismatcher/internal/pipeline"
	"github.com/rahidz/oeismatcher/internal/query"
	"github.com/rahidz/oeismatcher/internal/store"
	"github.com/rahidz/oeismatcher/internal/telemetry"
	"github.com/rahidz/oeismatcher/internal/transform"
)

// Handler serves analyze requests against a warm Orchestrator. It is the
// daemon-side glue between the wire protocol and the pipeline; one Handler
// serves all connections (the pipeline is safe for concurrent use).
type Handler struct {
	orch          *pipeline.Orchestrator
	cfg           *config.Config
	indexPath     string
	metrics       *telemetry.Metrics
	queriesServed atomic.Uint64
}

// NewHandler builds a Handler over an open store. metrics may be nil.
// When the config enables caching, identical queries reuse their candidate
// bucket instead of re-scanning the invariant indices.
func NewHandler(st store.IndexStore, cfg *config.Config, indexPath string, metrics *telemetry.Metrics) *Handler {
	var buckets *cache.BucketCache
	if cfg.Cache.Enabled {
		buckets, _ = cache.NewBucketCache(cfg.Cache.Size)
	}
	return &Handler{
		orch:      pipeline.NewWithCache(st, buckets),
		cfg:       cfg,
		indexPath: indexPath,
		metrics:   metrics,
	}
}

// BuildOptions maps daemon params plus config limits onto pipeline options.
func BuildOptions(cfg *config.Config, params AnalyzeParams) pipeline.Options {
	limit := params.Limit
	if limit == 0 {
		limit = cfg.Limits.MaxResults
	}

	comboOpts := combination.Options{
		Coeffs:          cfg.Combination.CoeffRange(),
		MaxShift:        cfg.Combination.MaxShift,
		MaxShiftBack:    cfg.Combination.MaxShiftBack,
		Limit:           params.Combos,
		MaxCandidates:   cfg.Combination.MaxCandidates,
		MaxChecks:       cfg.Combination.MaxChecks,
		MaxCombinations: cfg.Combination.MaxCombinations,
		MaxTimeS:        cfg.Combination.MaxTimeS,
		UseRational:     cfg.Combination.UseRational,
		SnippetLen:      cfg.Transform.SnippetLen,
	}
	tripleOpts := comboOpts
	tripleOpts.Coeffs = []int64{-2, -1, 1, 2} // default triple coefficient set
	tripleOpts.Limit = params.Triples

	var pool []transform.Transform
	if params.Depth > 0 {
		pool = transform.DefaultCatalog(transform.DefaultOptions())
	}

	return pipeline.Options{
		AllowSubsequence:    params.Subsequence,
		FallbackSubsequence: !params.Subsequence,
		FallbackFullScan:    true,
		MinMatchLength:      params.MinMatchLength,
		SnippetLen:          cfg.Transform.SnippetLen,
		ExactLimit:          limit,
		TransformMaxDepth:   params.Depth,
		TransformPool:       pool,
		TransformLimit:      limit,
		SimilarityTopK:      params.Similarity,
		Combos:              params.Combos,
		Triples:             params.Triples,
		CombinationOpts:     comboOpts,
		TripleOpts:          tripleOpts,
		MaxBucketRecords:    cfg.Limits.MaxBucketRecords,
		WithDiagnostics:     params.Diagnostics,
	}
}

// HandleAnalyze parses the query text, runs the pipeline, and returns the
// wire-shaped result.
func (h *Handler) HandleAnalyze(ctx context.Context, params AnalyzeParams) (*AnalyzeResult, error) {
	minLen := params.MinMatchLength
	if minLen <= 0 {
		minLen = h.cfg.Limits.MinMatchLength
	}
	q, err := query.Parse(params.Query, query.Options{
		MinMatchLength:   minLen,
		AllowSubsequence: params.Subsequence,
	})
	if err != nil {
		return nil, err
	}

	params.MinMatchLength = minLen
	opts := BuildOptions(h.cfg, params)

	start := time.Now()
	res, err := h.orch.Analyze(q, opts)
	if err != nil {
		return nil, err
	}
	h.queriesServed.Add(1)
	h.record(q, res, time.Since(start))

	return res.JSON(), nil
}

// record feeds one analyzed query into the telemetry collector.
func (h *Handler) record(q query.Query, res *pipeline.AnalysisResult, total time.Duration) {
	if h.metrics == nil {
		return
	}

	class := telemetry.QueryClassConcrete
	switch {
	case q.HasWildcards():
		class = telemetry.QueryClassWildcard
	case q.AllowSubsequence:
		class = telemetry.QueryClassSubsequence
	}

	latency := map[telemetry.Stage]time.Duration{telemetry.StageTotal: total}
	if d := res.Diagnostics; d != nil {
		latency[telemetry.StageExact] = d.ExactDuration
		latency[telemetry.StageTransform] = d.TransformDuration
		latency[telemetry.StageSimilarity] = d.SimilarityDuration
		latency[telemetry.StageCombination] = d.CombinationDuration
	}

	// Wildcards surface as nil terms, rendered "?" by the telemetry keys.
	terms := make([]*big.Int, len(q.Terms))
	for i, t := range q.Terms {
		if !t.IsAny() {
			terms[i] = t.Int()
		}
	}

	h.metrics.Record(telemetry.QueryEvent{
		Terms:        terms,
		Class:        class,
		ResultCount:  res.MatchCount(),
		StageLatency: latency,
		Timestamp:    time.Now(),
	})
}

// GetStatus reports index stats for the status method.
func (h *Handler) GetStatus() StatusResult {
	status := StatusResult{
		IndexPath:     h.indexPath,
		QueriesServed: h.queriesServed.Load(),
	}
	if stats, err := h.orch.Store.Stats(); err == nil {
		status.SequenceCount = stats.Count
	}
	return status
}
