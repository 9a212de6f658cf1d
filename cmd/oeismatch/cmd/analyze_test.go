package cmd

import (
	"encoding/json"
	"math/big"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rahidz/oeismatcher/internal/invariant"
	"github.com/rahidz/oeismatcher/internal/store"
)

// seedIndex writes a tiny corpus to a temp SQLite index and points the
// config at it via the OEISMATCH_DB_PATH override.
func seedIndex(t *testing.T) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "oeis.db")

	st, err := store.OpenSQLiteStore(path)
	if err != nil {
		t.Fatalf("OpenSQLiteStore: %v", err)
	}

	defs := []struct {
		id    string
		name  string
		terms []int64
	}{
		{"A000012", "The all 1's sequence", []int64{1, 1, 1, 1, 1, 1, 1}},
		{"A000027", "The positive integers", []int64{1, 2, 3, 4, 5, 6, 7}},
		{"A000045", "Fibonacci numbers", []int64{0, 1, 1, 2, 3, 5, 8, 13}},
	}
	var recs []store.Record
	for _, d := range defs {
		terms := make([]*big.Int, len(d.terms))
		for i, v := range d.terms {
			terms[i] = big.NewInt(v)
		}
		recs = append(recs, store.Record{
			ID:         d.id,
			Name:       d.name,
			Terms:      terms,
			Length:     len(terms),
			Invariants: invariant.Compute(terms),
		})
	}
	if _, err := st.WriteRecords(recs, 0); err != nil {
		t.Fatalf("WriteRecords: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatal(err)
	}

	t.Setenv("OEISMATCH_DB_PATH", path)
}

func TestAnalyzeCommandEndToEnd(t *testing.T) {
	seedIndex(t)

	out, err := runCommand(t, "analyze", "0,1,1,2,3,5", "--local", "--format", "json")
	if err != nil {
		t.Fatalf("analyze: %v\n%s", err, out)
	}

	var res map[string]any
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}

	exact, ok := res["exact_matches"].([]any)
	if !ok || len(exact) != 1 {
		t.Fatalf("exact_matches = %v", res["exact_matches"])
	}
	first := exact[0].(map[string]any)
	if first["id"] != "A000045" || first["kind"] != "prefix" {
		t.Errorf("match = %v", first)
	}
}

func TestMatchCommandText(t *testing.T) {
	seedIndex(t)

	out, err := runCommand(t, "match", "1,2,3,4,5", "--local")
	if err != nil {
		t.Fatalf("match: %v\n%s", err, out)
	}
	if !strings.Contains(out, "A000027") {
		t.Errorf("output missing A000027:\n%s", out)
	}
}

func TestComboCommandFindsCombination(t *testing.T) {
	seedIndex(t)

	out, err := runCommand(t, "combo", "3,5,7,9,11", "--local", "--format", "json")
	if err != nil {
		t.Fatalf("combo: %v\n%s", err, out)
	}

	var res map[string]any
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatal(err)
	}
	combos, ok := res["combinations"].([]any)
	if !ok || len(combos) == 0 {
		t.Fatalf("combinations = %v", res["combinations"])
	}
	expr := combos[0].(map[string]any)["expression"].(string)
	if !strings.Contains(expr, "A000027") || !strings.Contains(expr, "A000012") {
		t.Errorf("expression = %q", expr)
	}
}

func TestAnalyzeMissingIndex(t *testing.T) {
	t.Setenv("OEISMATCH_DB_PATH", filepath.Join(t.TempDir(), "missing.db"))

	_, err := runCommand(t, "analyze", "1,2,3,4", "--local")
	if err == nil {
		t.Fatal("missing index should error")
	}
	if !strings.Contains(err.Error(), "build-index") {
		t.Errorf("error should hint at build-index: %v", err)
	}
}
