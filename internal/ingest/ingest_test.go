package ingest

import (
	"compress/gzip"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/rahidz/oeismatcher/internal/store"
)

func bigs(vals ...int64) []*big.Int {
	out := make([]*big.Int, len(vals))
	for i, v := range vals {
		out[i] = big.NewInt(v)
	}
	return out
}

func TestParseStrippedLine(t *testing.T) {
	rec, ok := ParseStrippedLine("A000045 0,1,1,2,3,5,8,13,", 0)
	if !ok {
		t.Fatalf("expected ok")
	}
	if rec.ID != "A000045" {
		t.Fatalf("id = %q", rec.ID)
	}
	if rec.Length != 8 {
		t.Fatalf("length = %d", rec.Length)
	}
	for i, want := range bigs(0, 1, 1, 2, 3, 5, 8, 13) {
		if rec.Terms[i].Cmp(want) != 0 {
			t.Fatalf("term %d = %s, want %s", i, rec.Terms[i], want)
		}
	}
}

func TestParseStrippedLine_RespectsMaxTerms(t *testing.T) {
	rec, ok := ParseStrippedLine("A000045 0,1,1,2,3,5,8,13", 3)
	if !ok {
		t.Fatalf("expected ok")
	}
	if rec.Length != 3 {
		t.Fatalf("length = %d, want 3", rec.Length)
	}
}

func TestParseStrippedLine_RejectsMalformed(t *testing.T) {
	cases := []string{"", "not an id 1,2,3", "A000045", "B000045 1,2,3"}
	for _, c := range cases {
		if _, ok := ParseStrippedLine(c, 0); ok {
			t.Fatalf("expected rejection for %q", c)
		}
	}
}

func TestParseStrippedLine_SkipsNonIntegerTokens(t *testing.T) {
	rec, ok := ParseStrippedLine("A000001 1,x,2,,3", 0)
	if !ok {
		t.Fatalf("expected ok")
	}
	if rec.Length != 3 {
		t.Fatalf("length = %d, want 3 (non-integer/empty tokens skipped)", rec.Length)
	}
}

func TestParseNamesLine(t *testing.T) {
	id, title, ok := ParseNamesLine("A000045 Fibonacci numbers.")
	if !ok || id != "A000045" || title != "Fibonacci numbers." {
		t.Fatalf("got %q %q %v", id, title, ok)
	}
}

func TestParseKeywordsLine(t *testing.T) {
	id, kws, ok := ParseKeywordsLine("A000045 core,nice,easy")
	if !ok || id != "A000045" {
		t.Fatalf("got %q %v", id, ok)
	}
	if len(kws) != 3 || kws[0] != "core" || kws[2] != "easy" {
		t.Fatalf("keywords = %v", kws)
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func writeGzFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	gz := gzip.NewWriter(f)
	if _, err := gz.Write([]byte(content)); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return path
}

func TestLoadStripped_PlainFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "stripped", "# comment-ish header line, not matched\nA000045 0,1,1,2,3,\nA000040 2,3,5,7,11,\n")

	var recs []store.Record
	if err := LoadStripped(path, 0, func(r store.Record) error {
		recs = append(recs, r)
		return nil
	}); err != nil {
		t.Fatalf("LoadStripped: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if recs[0].ID != "A000045" || recs[1].ID != "A000040" {
		t.Fatalf("unexpected ids: %v %v", recs[0].ID, recs[1].ID)
	}
}

func TestLoadStripped_GzipFile(t *testing.T) {
	dir := t.TempDir()
	path := writeGzFile(t, dir, "stripped.gz", "A000045 0,1,1,2,3,\n")

	var recs []store.Record
	if err := LoadStripped(path, 0, func(r store.Record) error {
		recs = append(recs, r)
		return nil
	}); err != nil {
		t.Fatalf("LoadStripped: %v", err)
	}
	if len(recs) != 1 || recs[0].ID != "A000045" {
		t.Fatalf("got %+v", recs)
	}
}

func TestLoadNames(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "names", "A000045 Fibonacci numbers.\nA000040 The prime numbers.\n")

	titles, err := LoadNames(path)
	if err != nil {
		t.Fatalf("LoadNames: %v", err)
	}
	if titles["A000045"] != "Fibonacci numbers." {
		t.Fatalf("titles[A000045] = %q", titles["A000045"])
	}
	if titles["A000040"] != "The prime numbers." {
		t.Fatalf("titles[A000040] = %q", titles["A000040"])
	}
}

func TestLoadKeywords(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "keywords", "A000045 core,nice\nA000040 core,nonn\n")

	kws, err := LoadKeywords(path)
	if err != nil {
		t.Fatalf("LoadKeywords: %v", err)
	}
	if len(kws["A000045"]) != 2 || kws["A000045"][0] != "core" {
		t.Fatalf("keywords[A000045] = %v", kws["A000045"])
	}
}

func TestBuildIndex(t *testing.T) {
	dir := t.TempDir()
	strippedPath := writeFile(t, dir, "stripped", "A000045 0,1,1,2,3,5,8,\nA000040 2,3,5,7,11,\nA000027 1,2,3,4,5,\n")
	namesPath := writeFile(t, dir, "names", "A000045 Fibonacci numbers.\n")
	keywordsPath := writeFile(t, dir, "keywords", "A000040 core,nonn\n")
	dbPath := filepath.Join(dir, "index.db")

	stats, err := BuildIndex(BuildOptions{
		StrippedPath: strippedPath,
		NamesPath:    namesPath,
		KeywordsPath: keywordsPath,
		DBPath:       dbPath,
		BatchSize:    2,
	})
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	if stats.Inserted != 3 {
		t.Fatalf("inserted = %d, want 3", stats.Inserted)
	}
	if stats.TitlesApplied != 1 {
		t.Fatalf("titles applied = %d, want 1", stats.TitlesApplied)
	}
	if stats.KeywordsApplied != 1 {
		t.Fatalf("keywords applied = %d, want 1", stats.KeywordsApplied)
	}

	st, err := store.OpenSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("OpenSQLiteStore: %v", err)
	}
	defer st.Close()

	iter, err := st.IterAll()
	if err != nil {
		t.Fatalf("IterAll: %v", err)
	}
	defer iter.Close()

	found := map[string]store.Record{}
	for iter.Next() {
		r := iter.Record()
		found[r.ID] = r
	}
	if err := iter.Err(); err != nil {
		t.Fatalf("iterate: %v", err)
	}
	if len(found) != 3 {
		t.Fatalf("found %d records, want 3", len(found))
	}
	if found["A000045"].Name != "Fibonacci numbers." {
		t.Fatalf("A000045 name = %q", found["A000045"].Name)
	}
	if len(found["A000040"].Keywords) != 2 {
		t.Fatalf("A000040 keywords = %v", found["A000040"].Keywords)
	}
}

func TestBuildIndex_RequiresStrippedAndDBPaths(t *testing.T) {
	if _, err := BuildIndex(BuildOptions{DBPath: "x"}); err == nil {
		t.Fatalf("expected error for missing stripped path")
	}
	if _, err := BuildIndex(BuildOptions{StrippedPath: "x"}); err == nil {
		t.Fatalf("expected error for missing db path")
	}
}
