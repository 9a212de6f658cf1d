package telemetry

import (
	"database/sql"
	"fmt"
	"time"
)

// SQLiteMetricsStore implements MetricsStore over a SQLite handle.
type SQLiteMetricsStore struct {
	db *sql.DB
}

// NewSQLiteMetricsStore creates a SQLite-backed metrics store over the
// given handle, which the caller owns; InitTelemetrySchema creates its
// tables.
func NewSQLiteMetricsStore(db *sql.DB) (*SQLiteMetricsStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	return &SQLiteMetricsStore{db: db}, nil
}

// InitTelemetrySchema creates the telemetry tables if they don't exist.
func InitTelemetrySchema(db *sql.DB) error {
	schema := `
	-- Query class frequency (aggregated daily)
	CREATE TABLE IF NOT EXISTS query_class_stats (
		date TEXT NOT NULL,
		query_class TEXT NOT NULL,
		count INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (date, query_class)
	);

	-- Hot query prefixes (first few terms, with frequency count)
	CREATE TABLE IF NOT EXISTS query_prefixes (
		prefix TEXT PRIMARY KEY,
		count INTEGER NOT NULL DEFAULT 1,
		last_seen TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_query_prefixes_count ON query_prefixes(count DESC);

	-- Zero-result queries (bounded - max 100 kept)
	CREATE TABLE IF NOT EXISTS zero_result_queries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		query TEXT NOT NULL,
		timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	-- Per-stage latency histogram (aggregated daily)
	CREATE TABLE IF NOT EXISTS stage_latency_stats (
		date TEXT NOT NULL,
		stage TEXT NOT NULL,
		bucket TEXT NOT NULL,
		count INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (date, stage, bucket)
	);
	`
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating telemetry schema: %w", err)
	}
	return nil
}

// SaveClassCounts upserts daily query class counts.
func (s *SQLiteMetricsStore) SaveClassCounts(date string, counts map[QueryClass]int64) error {
	for class, count := range counts {
		_, err := s.db.Exec(`
			INSERT INTO query_class_stats (date, query_class, count) VALUES (?, ?, ?)
			ON CONFLICT(date, query_class) DO UPDATE SET count = count + excluded.count`,
			date, string(class), count)
		if err != nil {
			return fmt.Errorf("saving class counts: %w", err)
		}
	}
	return nil
}

// GetClassCounts retrieves class counts summed over a date range (inclusive).
func (s *SQLiteMetricsStore) GetClassCounts(from, to string) (map[QueryClass]int64, error) {
	rows, err := s.db.Query(`
		SELECT query_class, SUM(count) FROM query_class_stats
		WHERE date >= ? AND date <= ? GROUP BY query_class`, from, to)
	if err != nil {
		return nil, fmt.Errorf("reading class counts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[QueryClass]int64)
	for rows.Next() {
		var class string
		var count int64
		if err := rows.Scan(&class, &count); err != nil {
			return nil, err
		}
		counts[QueryClass(class)] = count
	}
	return counts, rows.Err()
}

// UpsertPrefixCounts updates hot-prefix frequency counts.
func (s *SQLiteMetricsStore) UpsertPrefixCounts(prefixes map[string]int64) error {
	for prefix, count := range prefixes {
		_, err := s.db.Exec(`
			INSERT INTO query_prefixes (prefix, count, last_seen) VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(prefix) DO UPDATE SET count = count + excluded.count, last_seen = CURRENT_TIMESTAMP`,
			prefix, count)
		if err != nil {
			return fmt.Errorf("upserting prefix counts: %w", err)
		}
	}
	return nil
}

// GetTopPrefixes retrieves the top N prefixes by frequency.
func (s *SQLiteMetricsStore) GetTopPrefixes(limit int) ([]PrefixCount, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(`
		SELECT prefix, count FROM query_prefixes ORDER BY count DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("reading top prefixes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []PrefixCount
	for rows.Next() {
		var pc PrefixCount
		if err := rows.Scan(&pc.Prefix, &pc.Count); err != nil {
			return nil, err
		}
		result = append(result, pc)
	}
	return result, rows.Err()
}

// AddZeroResultQuery records a query that matched nothing, keeping only the
// most recent 100.
func (s *SQLiteMetricsStore) AddZeroResultQuery(query string, timestamp time.Time) error {
	_, err := s.db.Exec(`INSERT INTO zero_result_queries (query, timestamp) VALUES (?, ?)`,
		query, timestamp)
	if err != nil {
		return fmt.Errorf("recording zero-result query: %w", err)
	}
	_, err = s.db.Exec(`
		DELETE FROM zero_result_queries WHERE id NOT IN (
			SELECT id FROM zero_result_queries ORDER BY id DESC LIMIT 100)`)
	return err
}

// GetZeroResultQueries retrieves recent zero-result queries, newest first.
func (s *SQLiteMetricsStore) GetZeroResultQueries(limit int) ([]string, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT query FROM zero_result_queries ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("reading zero-result queries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var queries []string
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, err
		}
		queries = append(queries, q)
	}
	return queries, rows.Err()
}

// SaveLatencyCounts upserts daily per-stage latency histogram counts.
func (s *SQLiteMetricsStore) SaveLatencyCounts(date string, stage Stage, counts map[LatencyBucket]int64) error {
	for bucket, count := range counts {
		_, err := s.db.Exec(`
			INSERT INTO stage_latency_stats (date, stage, bucket, count) VALUES (?, ?, ?, ?)
			ON CONFLICT(date, stage, bucket) DO UPDATE SET count = count + excluded.count`,
			date, string(stage), string(bucket), count)
		if err != nil {
			return fmt.Errorf("saving latency counts: %w", err)
		}
	}
	return nil
}

// GetLatencyCounts retrieves a stage's latency distribution over a date range.
func (s *SQLiteMetricsStore) GetLatencyCounts(from, to string, stage Stage) (map[LatencyBucket]int64, error) {
	rows, err := s.db.Query(`
		SELECT bucket, SUM(count) FROM stage_latency_stats
		WHERE date >= ? AND date <= ? AND stage = ? GROUP BY bucket`, from, to, string(stage))
	if err != nil {
		return nil, fmt.Errorf("reading latency counts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[LatencyBucket]int64)
	for rows.Next() {
		var bucket string
		var count int64
		if err := rows.Scan(&bucket, &count); err != nil {
			return nil, err
		}
		counts[LatencyBucket(bucket)] = count
	}
	return counts, rows.Err()
}

// Close is a no-op: the database handle is owned by the caller.
func (s *SQLiteMetricsStore) Close() error {
	return nil
}
