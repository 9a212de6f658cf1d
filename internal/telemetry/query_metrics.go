// Package telemetry collects query-pattern metrics for tuning the matcher.
// All data stays local - nothing is reported externally.
package telemetry

import (
	"crypto/sha256"
	"encoding/hex"
	"math/big"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// QueryClass classifies a sequence query for aggregate counting.
type QueryClass string

const (
	// QueryClassConcrete is a wildcard-free prefix query.
	QueryClassConcrete QueryClass = "concrete"
	// QueryClassWildcard contains at least one Any term.
	QueryClassWildcard QueryClass = "wildcard"
	// QueryClassSubsequence was run in subsequence mode.
	QueryClassSubsequence QueryClass = "subsequence"
)

// Stage names one pipeline stage for latency accounting.
type Stage string

const (
	StageExact       Stage = "exact"
	StageTransform   Stage = "transform"
	StageSimilarity  Stage = "similarity"
	StageCombination Stage = "combination"
	StageTotal       Stage = "total"
)

// LatencyBucket represents a latency histogram bucket.
type LatencyBucket string

const (
	BucketP10   LatencyBucket = "p10"   // <10ms
	BucketP50   LatencyBucket = "p50"   // 10-50ms
	BucketP100  LatencyBucket = "p100"  // 50-100ms
	BucketP500  LatencyBucket = "p500"  // 100-500ms
	BucketP1000 LatencyBucket = "p1000" // >=500ms
)

// LatencyToBucket converts a duration to its histogram bucket.
func LatencyToBucket(d time.Duration) LatencyBucket {
	ms := d.Milliseconds()
	switch {
	case ms < 10:
		return BucketP10
	case ms < 50:
		return BucketP50
	case ms < 100:
		return BucketP100
	case ms < 500:
		return BucketP500
	default:
		return BucketP1000
	}
}

// QueryEvent represents one analyzed query for telemetry recording.
type QueryEvent struct {
	Terms         []*big.Int
	Class         QueryClass
	ResultCount   int
	StageLatency  map[Stage]time.Duration
	BudgetTripped bool
	Timestamp     time.Time
}

// IsZeroResult returns true if this query produced no matches of any kind.
func (e QueryEvent) IsZeroResult() bool {
	return e.ResultCount == 0
}

// QueryKey renders the query terms as a stable comma-joined key.
func (e QueryEvent) QueryKey() string {
	parts := make([]string, len(e.Terms))
	for i, t := range e.Terms {
		if t == nil {
			parts[i] = "?"
			continue
		}
		parts[i] = t.String()
	}
	return strings.Join(parts, ",")
}

// PrefixKey returns the leading terms of the query (up to 3) as a key for
// the hot-prefix table. Short queries use all their terms.
func (e QueryEvent) PrefixKey() string {
	n := len(e.Terms)
	if n > 3 {
		n = 3
	}
	short := QueryEvent{Terms: e.Terms[:n]}
	return short.QueryKey()
}

// CircularBuffer is a fixed-capacity FIFO buffer.
type CircularBuffer[T any] struct {
	items    []T
	head     int // next write position
	size     int
	capacity int
	mu       sync.RWMutex
}

// NewCircularBuffer creates a new circular buffer with the given capacity.
func NewCircularBuffer[T any](capacity int) *CircularBuffer[T] {
	if capacity <= 0 {
		capacity = 100
	}
	return &CircularBuffer[T]{
		items:    make([]T, capacity),
		capacity: capacity,
	}
}

// Add adds an item to the buffer. If full, the oldest item is evicted.
func (b *CircularBuffer[T]) Add(item T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.items[b.head] = item
	b.head = (b.head + 1) % b.capacity

	if b.size < b.capacity {
		b.size++
	}
}

// Items returns all items in the buffer in FIFO order (oldest first).
func (b *CircularBuffer[T]) Items() []T {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.size == 0 {
		return []T{}
	}

	result := make([]T, b.size)
	if b.size < b.capacity {
		copy(result, b.items[:b.size])
	} else {
		// Buffer full - oldest item is at head
		copy(result, b.items[b.head:])
		copy(result[b.capacity-b.head:], b.items[:b.head])
	}
	return result
}

// Size returns the current number of items in the buffer.
func (b *CircularBuffer[T]) Size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.size
}

// Clear removes all items from the buffer.
func (b *CircularBuffer[T]) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.head = 0
	b.size = 0
}

// PrefixCount is one hot query prefix and its frequency.
type PrefixCount struct {
	Prefix string `json:"prefix"`
	Count  int64  `json:"count"`
}

// Snapshot is an immutable view of collected metrics.
type Snapshot struct {
	ClassCounts       map[QueryClass]int64              `json:"class_counts"`
	TopPrefixes       []PrefixCount                     `json:"top_prefixes"`
	ZeroResultQueries []string                          `json:"zero_result_queries"`
	StageLatencies    map[Stage]map[LatencyBucket]int64 `json:"stage_latencies"`
	TotalQueries      int64                             `json:"total_queries"`
	ZeroResultCount   int64                             `json:"zero_result_count"`
	BudgetTripCount   int64                             `json:"budget_trip_count"`
	RepeatCount       int64                             `json:"repeat_count"`
	Since             time.Time                         `json:"since"`
}

// ZeroResultPercentage returns the percentage of zero-result queries.
func (s *Snapshot) ZeroResultPercentage() float64 {
	if s.TotalQueries == 0 {
		return 0
	}
	return float64(s.ZeroResultCount) / float64(s.TotalQueries) * 100
}

// BudgetTripPercentage returns the percentage of queries that hit a work cap.
func (s *Snapshot) BudgetTripPercentage() float64 {
	if s.TotalQueries == 0 {
		return 0
	}
	return float64(s.BudgetTripCount) / float64(s.TotalQueries) * 100
}

// MetricsStore defines persistence for aggregated metrics.
type MetricsStore interface {
	// SaveClassCounts upserts daily query class counts.
	SaveClassCounts(date string, counts map[QueryClass]int64) error

	// GetClassCounts retrieves counts for a date range.
	GetClassCounts(from, to string) (map[QueryClass]int64, error)

	// UpsertPrefixCounts updates hot-prefix frequency counts.
	UpsertPrefixCounts(prefixes map[string]int64) error

	// GetTopPrefixes retrieves the top N prefixes by frequency.
	GetTopPrefixes(limit int) ([]PrefixCount, error)

	// AddZeroResultQuery records a query that matched nothing.
	AddZeroResultQuery(query string, timestamp time.Time) error

	// GetZeroResultQueries retrieves recent zero-result queries.
	GetZeroResultQueries(limit int) ([]string, error)

	// SaveLatencyCounts upserts daily per-stage latency histogram counts.
	SaveLatencyCounts(date string, stage Stage, counts map[LatencyBucket]int64) error

	// GetLatencyCounts retrieves a stage's latency distribution for a date range.
	GetLatencyCounts(from, to string, stage Stage) (map[LatencyBucket]int64, error)

	// Close releases resources.
	Close() error
}

// Config configures the metrics collector.
type Config struct {
	TopPrefixCapacity   int           // max hot prefixes tracked (default 100)
	ZeroResultsCapacity int           // max zero-result queries tracked (default 100)
	RecentCapacity      int           // max query hashes tracked for repeat detection (default 500)
	FlushInterval       time.Duration // flush-to-store cadence (default 60s, 0 disables)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		TopPrefixCapacity:   100,
		ZeroResultsCapacity: 100,
		RecentCapacity:      500,
		FlushInterval:       60 * time.Second,
	}
}

// Metrics collects query telemetry. Thread-safe for concurrent access.
type Metrics struct {
	mu sync.RWMutex

	classCounts     map[QueryClass]int64
	topPrefixes     *lru.Cache[string, int64]
	zeroResults     *CircularBuffer[string]
	stageLatencies  map[Stage]map[LatencyBucket]int64
	totalQueries    int64
	zeroResultCount int64
	budgetTripCount int64
	startTime       time.Time

	// Repeat detection: LRU of query hashes seen recently.
	recentQueries *lru.Cache[string, struct{}]
	repeatCount   int64

	store       MetricsStore
	config      Config
	flushTicker *time.Ticker
	stopCh      chan struct{}
	closed      bool
}

// NewMetrics creates a collector with default configuration.
// If store is nil, metrics are only kept in memory.
func NewMetrics(store MetricsStore) *Metrics {
	return NewMetricsWithConfig(store, DefaultConfig())
}

// NewMetricsWithConfig creates a collector with custom configuration.
func NewMetricsWithConfig(store MetricsStore, cfg Config) *Metrics {
	if cfg.TopPrefixCapacity <= 0 {
		cfg.TopPrefixCapacity = 100
	}
	if cfg.ZeroResultsCapacity <= 0 {
		cfg.ZeroResultsCapacity = 100
	}
	if cfg.RecentCapacity <= 0 {
		cfg.RecentCapacity = 500
	}

	topPrefixes, _ := lru.New[string, int64](cfg.TopPrefixCapacity)
	recentQueries, _ := lru.New[string, struct{}](cfg.RecentCapacity)

	m := &Metrics{
		classCounts:    make(map[QueryClass]int64),
		topPrefixes:    topPrefixes,
		zeroResults:    NewCircularBuffer[string](cfg.ZeroResultsCapacity),
		stageLatencies: make(map[Stage]map[LatencyBucket]int64),
		startTime:      time.Now(),
		recentQueries:  recentQueries,
		store:          store,
		config:         cfg,
		stopCh:         make(chan struct{}),
	}

	if cfg.FlushInterval > 0 && store != nil {
		m.flushTicker = time.NewTicker(cfg.FlushInterval)
		go m.flushLoop()
	}

	return m
}

func (m *Metrics) flushLoop() {
	for {
		select {
		case <-m.flushTicker.C:
			_ = m.Flush()
		case <-m.stopCh:
			return
		}
	}
}

func hashQuery(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}

// Record adds one query event to the in-memory aggregates.
func (m *Metrics) Record(event QueryEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}

	m.totalQueries++
	m.classCounts[event.Class]++

	key := event.QueryKey()
	if prefix := event.PrefixKey(); prefix != "" {
		count, _ := m.topPrefixes.Get(prefix)
		m.topPrefixes.Add(prefix, count+1)
	}

	if event.IsZeroResult() {
		m.zeroResultCount++
		m.zeroResults.Add(key)
	}
	if event.BudgetTripped {
		m.budgetTripCount++
	}

	for stage, d := range event.StageLatency {
		hist := m.stageLatencies[stage]
		if hist == nil {
			hist = make(map[LatencyBucket]int64)
			m.stageLatencies[stage] = hist
		}
		hist[LatencyToBucket(d)]++
	}

	h := hashQuery(key)
	if _, seen := m.recentQueries.Get(h); seen {
		m.repeatCount++
	}
	m.recentQueries.Add(h, struct{}{})
}

// Snapshot returns an immutable copy of the current aggregates.
func (m *Metrics) Snapshot() *Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	classCounts := make(map[QueryClass]int64, len(m.classCounts))
	for k, v := range m.classCounts {
		classCounts[k] = v
	}

	latencies := make(map[Stage]map[LatencyBucket]int64, len(m.stageLatencies))
	for stage, hist := range m.stageLatencies {
		copied := make(map[LatencyBucket]int64, len(hist))
		for b, c := range hist {
			copied[b] = c
		}
		latencies[stage] = copied
	}

	var prefixes []PrefixCount
	for _, key := range m.topPrefixes.Keys() {
		if count, ok := m.topPrefixes.Get(key); ok {
			prefixes = append(prefixes, PrefixCount{Prefix: key, Count: count})
		}
	}

	return &Snapshot{
		ClassCounts:       classCounts,
		TopPrefixes:       prefixes,
		ZeroResultQueries: m.zeroResults.Items(),
		StageLatencies:    latencies,
		TotalQueries:      m.totalQueries,
		ZeroResultCount:   m.zeroResultCount,
		BudgetTripCount:   m.budgetTripCount,
		RepeatCount:       m.repeatCount,
		Since:             m.startTime,
	}
}

// Flush persists current aggregates to the store and resets the daily maps.
// No-op when no store is configured.
func (m *Metrics) Flush() error {
	if m.store == nil {
		return nil
	}

	m.mu.Lock()
	date := time.Now().Format("2006-01-02")
	classCounts := m.classCounts
	m.classCounts = make(map[QueryClass]int64)
	latencies := m.stageLatencies
	m.stageLatencies = make(map[Stage]map[LatencyBucket]int64)

	prefixes := make(map[string]int64)
	for _, key := range m.topPrefixes.Keys() {
		if count, ok := m.topPrefixes.Get(key); ok {
			prefixes[key] = count
		}
	}
	m.topPrefixes.Purge()

	zeroResults := m.zeroResults.Items()
	m.zeroResults.Clear()
	m.mu.Unlock()

	if len(classCounts) > 0 {
		if err := m.store.SaveClassCounts(date, classCounts); err != nil {
			return err
		}
	}
	if len(prefixes) > 0 {
		if err := m.store.UpsertPrefixCounts(prefixes); err != nil {
			return err
		}
	}
	for _, q := range zeroResults {
		if err := m.store.AddZeroResultQuery(q, time.Now()); err != nil {
			return err
		}
	}
	for stage, hist := range latencies {
		if len(hist) == 0 {
			continue
		}
		if err := m.store.SaveLatencyCounts(date, stage, hist); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes pending aggregates and stops the background flusher.
func (m *Metrics) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	if m.flushTicker != nil {
		m.flushTicker.Stop()
		close(m.stopCh)
	}
	return m.Flush()
}
