// Package ingest parses the raw OEIS "stripped"/"names" dump files and
// builds the SQLite-backed IndexStore the rest of the matcher reads from.
package ingest

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"

	"github.com/rahidz/oeismatcher/internal/invariant"
	"github.com/rahidz/oeismatcher/internal/store"
)

// DefaultMaxTerms caps how many terms are kept per sequence during ingest.
const DefaultMaxTerms = 128

// openMaybeGzip opens path as plain text, or transparently through gzip if
// it ends in ".gz".
func openMaybeGzip(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &gzipReadCloser{gz: gz, f: f}, nil
	}
	return f, nil
}

type gzipReadCloser struct {
	gz *gzip.Reader
	f  *os.File
}

func (g *gzipReadCloser) Read(p []byte) (int, error) { return g.gz.Read(p) }
func (g *gzipReadCloser) Close() error {
	gzErr := g.gz.Close()
	fErr := g.f.Close()
	if gzErr != nil {
		return gzErr
	}
	return fErr
}

func isSeqID(s string) bool {
	if len(s) < 2 || s[0] != 'A' {
		return false
	}
	for _, c := range s[1:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// ParseStrippedLine parses one "A123456 0,1,1,2,3,5,..." line. Returns
// false if the line is malformed, has no id, or yields no terms.
func ParseStrippedLine(line string, maxTerms int) (store.Record, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return store.Record{}, false
	}
	idPart, rest, found := strings.Cut(line, " ")
	if !found {
		idPart, rest, found = strings.Cut(line, "\t")
		if !found {
			return store.Record{}, false
		}
	}
	if !isSeqID(idPart) {
		return store.Record{}, false
	}

	var terms []*big.Int
	for _, tok := range strings.Split(rest, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		v, ok := new(big.Int).SetString(tok, 10)
		if !ok {
			continue
		}
		terms = append(terms, v)
		if maxTerms > 0 && len(terms) >= maxTerms {
			break
		}
	}
	if len(terms) == 0 {
		return store.Record{}, false
	}

	return store.Record{
		ID:         idPart,
		Terms:      terms,
		Length:     len(terms),
		Invariants: invariant.Compute(terms),
	}, true
}

// ParseNamesLine parses one "A123456 Fibonacci numbers" line into (id, title).
func ParseNamesLine(line string) (id, title string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", "", false
	}
	idPart, rest, found := strings.Cut(line, " ")
	if !found {
		return "", "", false
	}
	if !isSeqID(idPart) {
		return "", "", false
	}
	return idPart, strings.TrimSpace(rest), true
}

// ParseKeywordsLine parses one "A123456 nonn,easy,more" line into
// (id, keywords).
func ParseKeywordsLine(line string) (id string, keywords []string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", nil, false
	}
	idPart, rest, found := strings.Cut(line, " ")
	if !found {
		return "", nil, false
	}
	if !isSeqID(idPart) {
		return "", nil, false
	}
	var kws []string
	for _, k := range strings.Split(rest, ",") {
		k = strings.TrimSpace(k)
		if k != "" {
			kws = append(kws, k)
		}
	}
	return idPart, kws, true
}

// LoadStripped streams store.Records from a stripped file (plain or .gz),
// invoking fn for each successfully parsed record. The callback form lets
// the caller control batching and memory.
func LoadStripped(path string, maxTerms int, fn func(store.Record) error) error {
	f, err := openMaybeGzip(path)
	if err != nil {
		return fmt.Errorf("ingest: open stripped file %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	for scanner.Scan() {
		rec, ok := ParseStrippedLine(scanner.Text(), maxTerms)
		if !ok {
			continue
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// LoadNames loads an id -> title mapping from a names file (plain or .gz).
func LoadNames(path string) (map[string]string, error) {
	f, err := openMaybeGzip(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: open names file %s: %w", path, err)
	}
	defer f.Close()

	titles := make(map[string]string)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	for scanner.Scan() {
		if id, title, ok := ParseNamesLine(scanner.Text()); ok {
			titles[id] = title
		}
	}
	return titles, scanner.Err()
}

// LoadKeywords loads an id -> keywords mapping from a keywords file (plain
// or .gz).
func LoadKeywords(path string) (map[string][]string, error) {
	f, err := openMaybeGzip(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: open keywords file %s: %w", path, err)
	}
	defer f.Close()

	keywords := make(map[string][]string)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	for scanner.Scan() {
		if id, kws, ok := ParseKeywordsLine(scanner.Text()); ok {
			keywords[id] = kws
		}
	}
	return keywords, scanner.Err()
}
