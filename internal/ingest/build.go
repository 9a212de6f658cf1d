package ingest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/rahidz/oeismatcher/internal/store"
)

// BuildOptions configures BuildIndex.
type BuildOptions struct {
	StrippedPath string
	NamesPath    string // optional; "" skips title attachment
	KeywordsPath string // optional; "" skips keyword attachment
	DBPath       string
	MaxTerms     int
	BatchSize    int
}

// BuildStats reports what BuildIndex did.
type BuildStats struct {
	Inserted        int
	TitlesApplied   int
	KeywordsApplied int
}

// BuildIndex parses the stripped dump (and optional names/keywords dumps),
// attaches titles/keywords to each record, and writes the result into a
// freshly-opened SQLite IndexStore at opts.DBPath, writing in streaming
// batches so the full corpus is never materialized in memory.
//
// A cross-process file lock guards the DB path so two concurrent
// `build-index` invocations can't corrupt each other's writes.
func BuildIndex(opts BuildOptions) (BuildStats, error) {
	if opts.StrippedPath == "" {
		return BuildStats{}, fmt.Errorf("ingest: stripped path is required")
	}
	if opts.DBPath == "" {
		return BuildStats{}, fmt.Errorf("ingest: db path is required")
	}
	maxTerms := opts.MaxTerms
	if maxTerms <= 0 {
		maxTerms = DefaultMaxTerms
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = 1000
	}

	lockPath := opts.DBPath + ".build.lock"
	if err := os.MkdirAll(filepath.Dir(opts.DBPath), 0o755); err != nil {
		return BuildStats{}, fmt.Errorf("ingest: create db directory: %w", err)
	}
	lock := flock.New(lockPath)
	if err := lock.Lock(); err != nil {
		return BuildStats{}, fmt.Errorf("ingest: acquire build lock: %w", err)
	}
	defer lock.Unlock()

	var titles map[string]string
	if opts.NamesPath != "" {
		var err error
		titles, err = LoadNames(opts.NamesPath)
		if err != nil {
			return BuildStats{}, fmt.Errorf("ingest: load names: %w", err)
		}
	}
	var keywords map[string][]string
	if opts.KeywordsPath != "" {
		var err error
		keywords, err = LoadKeywords(opts.KeywordsPath)
		if err != nil {
			return BuildStats{}, fmt.Errorf("ingest: load keywords: %w", err)
		}
	}

	st, err := store.OpenSQLiteStore(opts.DBPath)
	if err != nil {
		return BuildStats{}, fmt.Errorf("ingest: open index store: %w", err)
	}
	defer st.Close()

	stats := BuildStats{}
	batch := make([]store.Record, 0, batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := st.WriteRecords(batch, batchSize)
		if err != nil {
			return err
		}
		stats.Inserted += n
		batch = batch[:0]
		return nil
	}

	err = LoadStripped(opts.StrippedPath, maxTerms, func(rec store.Record) error {
		if title, ok := titles[rec.ID]; ok {
			rec.Name = title
			stats.TitlesApplied++
		}
		if kws, ok := keywords[rec.ID]; ok {
			rec.Keywords = kws
			stats.KeywordsApplied++
		}
		batch = append(batch, rec)
		if len(batch) >= batchSize {
			return flush()
		}
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("ingest: load stripped dump: %w", err)
	}
	if err := flush(); err != nil {
		return stats, fmt.Errorf("ingest: write records: %w", err)
	}

	return stats, nil
}
