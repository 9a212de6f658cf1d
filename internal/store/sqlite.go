package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite" // pure-Go SQLite driver, no CGO

	"github.com/rahidz/oeismatcher/internal/invariant"
)

// SQLiteStore is the default IndexStore, a single SQLite file holding one
// "sequences" table. Terms, prefix5, min, max, and gcd are stored as
// decimal text to carry arbitrary precision. WAL mode is applied via
// PRAGMA rather than DSN params, with a single-writer pool, busy_timeout,
// and a pre-open integrity check.
type SQLiteStore struct {
	mu     sync.RWMutex
	db     *sql.DB
	path   string
	closed bool
}

var _ IndexStore = (*SQLiteStore)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS sequences (
	id                TEXT PRIMARY KEY,
	length            INTEGER NOT NULL,
	terms             TEXT NOT NULL,
	name              TEXT,
	keywords          TEXT,
	prefix5           TEXT,
	min_val           TEXT,
	max_val           TEXT,
	gcd_val           TEXT,
	is_nondecreasing  INTEGER,
	is_nonincreasing  INTEGER,
	sign_pattern      TEXT,
	nonzero_count     INTEGER,
	first_diff_sign   TEXT,
	growth_rate       REAL
);
CREATE INDEX IF NOT EXISTS idx_prefix5      ON sequences(prefix5);
CREATE INDEX IF NOT EXISTS idx_length       ON sequences(length);
CREATE INDEX IF NOT EXISTS idx_gcd          ON sequences(gcd_val);
CREATE INDEX IF NOT EXISTS idx_sign         ON sequences(sign_pattern);
CREATE INDEX IF NOT EXISTS idx_first_diff   ON sequences(first_diff_sign);
CREATE INDEX IF NOT EXISTS idx_nonzero      ON sequences(nonzero_count);
CREATE INDEX IF NOT EXISTS idx_growth       ON sequences(growth_rate);
`

const selectColumns = `id, terms, length, name, keywords, prefix5, min_val, max_val, gcd_val,
	is_nondecreasing, is_nonincreasing, sign_pattern, nonzero_count, first_diff_sign, growth_rate`

// validateIntegrity checks an existing database file before opening it for
// real use: a missing
// file is fine (it will be created), a corrupt one is reported so the
// caller can decide whether to rebuild.
func validateIntegrity(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return fmt.Errorf("cannot open for validation: %w", err)
	}
	defer db.Close()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check failed: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("database corrupted: %s", result)
	}
	return nil
}

// OpenSQLiteStore opens (creating if absent) a SQLite-backed IndexStore.
// An empty path opens an in-memory database, used by tests.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	var dsn string
	if path == "" {
		dsn = ":memory:"
	} else {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		if err := validateIntegrity(path); err != nil {
			slog.Warn("oeis_index_corrupted", slog.String("path", path), slog.String("error", err.Error()))
			return nil, fmt.Errorf("index at %s failed integrity check: %w (run build-index to rebuild)", path, err)
		}
		dsn = path
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single writer avoids lock contention on the pure-Go driver.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA cache_size = -65536",
		"PRAGMA temp_store = MEMORY",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to set pragma %q: %w", p, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// WriteRecords upserts records in batches.
func (s *SQLiteStore) WriteRecords(records []Record, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 5000
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, fmt.Errorf("store is closed")
	}

	total := 0
	for start := 0; start < len(records); start += batchSize {
		end := min(start+batchSize, len(records))
		n, err := s.insertBatch(records[start:end])
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (s *SQLiteStore) insertBatch(batch []Record) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
		INSERT INTO sequences (id, length, terms, name, keywords, prefix5, min_val, max_val, gcd_val,
			is_nondecreasing, is_nonincreasing, sign_pattern, nonzero_count, first_diff_sign, growth_rate)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			length=excluded.length, terms=excluded.terms, name=excluded.name,
			keywords=excluded.keywords, prefix5=excluded.prefix5, min_val=excluded.min_val,
			max_val=excluded.max_val, gcd_val=excluded.gcd_val,
			is_nondecreasing=excluded.is_nondecreasing, is_nonincreasing=excluded.is_nonincreasing,
			sign_pattern=excluded.sign_pattern, nonzero_count=excluded.nonzero_count,
			first_diff_sign=excluded.first_diff_sign, growth_rate=excluded.growth_rate
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range batch {
		inv := rec.Invariants
		if _, err := stmt.Exec(
			rec.ID, rec.Length, encodeInts(rec.Terms), nullableString(rec.Name), encodeKeywords(rec.Keywords),
			encodeInts(inv.Prefix5), nullableBigInt(inv.Min), nullableBigInt(inv.Max), nullableBigInt(inv.GCD),
			boolToInt(inv.IsNondecreasing), boolToInt(inv.IsNonincreasing), string(inv.SignPattern),
			inv.NonzeroCount, string(inv.FirstDiffSign), inv.GrowthRate,
		); err != nil {
			return 0, fmt.Errorf("failed to upsert record %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit batch: %w", err)
	}
	return len(batch), nil
}

// IterAll streams every record in id order.
func (s *SQLiteStore) IterAll() (RecordIterator, error) {
	return s.query("SELECT "+selectColumns+" FROM sequences ORDER BY id")
}

// IterByPrefix5 streams records whose first five terms match prefix exactly
// A prefix shorter than 5 terms falls back to a full scan.
func (s *SQLiteStore) IterByPrefix5(prefix []*big.Int) (RecordIterator, error) {
	if len(prefix) < 5 {
		return s.IterAll()
	}
	return s.query("SELECT "+selectColumns+" FROM sequences WHERE prefix5 = ?", encodeInts(prefix[:5]))
}

// IterFiltered streams records matching every non-nil Filter field
//.
func (s *SQLiteStore) IterFiltered(f Filter) (RecordIterator, error) {
	var clauses []string
	var args []any

	if f.SignPattern != nil {
		clauses = append(clauses, "sign_pattern = ?")
		args = append(args, string(*f.SignPattern))
	}
	if f.FirstDiffSign != nil {
		clauses = append(clauses, "first_diff_sign = ?")
		args = append(args, string(*f.FirstDiffSign))
	}
	if f.NonzeroMin != nil {
		clauses = append(clauses, "nonzero_count >= ?")
		args = append(args, *f.NonzeroMin)
	}
	if f.NonzeroMax != nil {
		clauses = append(clauses, "nonzero_count <= ?")
		args = append(args, *f.NonzeroMax)
	}
	if f.MinLength != nil {
		clauses = append(clauses, "length >= ?")
		args = append(args, *f.MinLength)
	}
	if f.MaxLength != nil {
		clauses = append(clauses, "length <= ?")
		args = append(args, *f.MaxLength)
	}

	query := "SELECT " + selectColumns + " FROM sequences"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	return s.query(query, args...)
}

func (s *SQLiteStore) query(q string, args ...any) (RecordIterator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return &sqliteIterator{rows: rows}, nil
}

// Stats reports corpus size/length bounds for status/diagnostics use.
func (s *SQLiteStore) Stats() (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return Stats{}, fmt.Errorf("store is closed")
	}
	var st Stats
	var minLen, maxLen sql.NullInt64
	err := s.db.QueryRow("SELECT COUNT(*), MIN(length), MAX(length) FROM sequences").Scan(&st.Count, &minLen, &maxLen)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to query stats: %w", err)
	}
	st.MinLength = int(minLen.Int64)
	st.MaxLength = int(maxLen.Int64)
	return st, nil
}

// Close checkpoints the WAL and closes the underlying connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return s.db.Close()
}

// sqliteIterator adapts *sql.Rows to RecordIterator, skipping malformed
// rows ("unparseable terms: skipped at iter_* level; not
// fatal") rather than aborting the whole stream.
type sqliteIterator struct {
	rows    *sql.Rows
	current Record
	err     error
}

func (it *sqliteIterator) Next() bool {
	for it.rows.Next() {
		rec, ok := it.scan()
		if !ok {
			continue
		}
		it.current = rec
		return true
	}
	it.err = it.rows.Err()
	return false
}

func (it *sqliteIterator) scan() (Record, bool) {
	var (
		id, termsText                                 string
		name, keywords, prefix5Text, minText, maxText string
		gcdText, signPattern, firstDiffSign            string
		length, nonzeroCount                           int
		isNondecr, isNonincr                            int
		growthRate                                     float64
		nameNull, keywordsNull                          sql.NullString
	)
	if err := it.rows.Scan(
		&id, &termsText, &length, &nameNull, &keywordsNull, &prefix5Text, &minText, &maxText, &gcdText,
		&isNondecr, &isNonincr, &signPattern, &nonzeroCount, &firstDiffSign, &growthRate,
	); err != nil {
		slog.Warn("oeis_row_scan_failed", slog.String("error", err.Error()))
		return Record{}, false
	}
	name = nameNull.String
	keywords = keywordsNull.String

	terms, ok := decodeInts(termsText)
	if !ok {
		slog.Warn("oeis_malformed_terms", slog.String("id", id))
		return Record{}, false
	}
	prefix5, _ := decodeInts(prefix5Text)

	return Record{
		ID:       id,
		Terms:    terms,
		Length:   length,
		Name:     name,
		Keywords: decodeKeywords(keywords),
		Invariants: invariant.Invariants{
			Prefix5:         prefix5,
			Min:             parseBigIntOrNil(minText),
			Max:             parseBigIntOrNil(maxText),
			GCD:             parseBigIntOrNil(gcdText),
			IsNondecreasing: isNondecr != 0,
			IsNonincreasing: isNonincr != 0,
			SignPattern:     invariant.SignPattern(signPattern),
			FirstDiffSign:   invariant.FirstDiffSign(firstDiffSign),
			NonzeroCount:    nonzeroCount,
			GrowthRate:      growthRate,
		},
	}, true
}

func (it *sqliteIterator) Record() Record { return it.current }
func (it *sqliteIterator) Err() error      { return it.err }
func (it *sqliteIterator) Close() error    { return it.rows.Close() }

func encodeInts(vals []*big.Int) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = v.String()
	}
	return strings.Join(parts, ",")
}

func decodeInts(text string) ([]*big.Int, bool) {
	if text == "" {
		return nil, true
	}
	parts := strings.Split(text, ",")
	out := make([]*big.Int, len(parts))
	for i, p := range parts {
		v, ok := new(big.Int).SetString(strings.TrimSpace(p), 10)
		if !ok {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

func encodeKeywords(kw []string) sql.NullString {
	if len(kw) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: strings.Join(kw, ","), Valid: true}
}

func decodeKeywords(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(text, ",")
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullableBigInt(v *big.Int) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: v.String(), Valid: true}
}

func parseBigIntOrNil(text string) *big.Int {
	if text == "" {
		return nil
	}
	v, ok := new(big.Int).SetString(text, 10)
	if !ok {
		return nil
	}
	return v
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Optimize runs SQLite maintenance (statistics refresh plus incremental
// query-planner optimization). Called by the daemon's idle maintainer;
// cheap enough to run repeatedly.
func (s *SQLiteStore) Optimize(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return fmt.Errorf("store is closed")
	}
	if _, err := s.db.ExecContext(ctx, "ANALYZE"); err != nil {
		return fmt.Errorf("analyze failed: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA optimize"); err != nil {
		return fmt.Errorf("optimize failed: %w", err)
	}
	return nil
}
