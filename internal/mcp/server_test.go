package mcp

import (
	"context"
	"math/big"
	"testing"

	"github.com/rahidz/oeismatcher/internal/config"
	"github.com/rahidz/oeismatcher/internal/invariant"
	"github.com/rahidz/oeismatcher/internal/store"
	"github.com/rahidz/oeismatcher/internal/telemetry"
)

func bigs(vs ...int64) []*big.Int {
	out := make([]*big.Int, len(vs))
	for i, v := range vs {
		out[i] = big.NewInt(v)
	}
	return out
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	st, err := store.OpenSQLiteStore("")
	if err != nil {
		t.Fatalf("OpenSQLiteStore: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	defs := []struct {
		id    string
		name  string
		terms []*big.Int
	}{
		{"A000012", "The all 1's sequence", bigs(1, 1, 1, 1, 1, 1, 1, 1)},
		{"A000027", "The positive integers", bigs(1, 2, 3, 4, 5, 6, 7, 8)},
		{"A000045", "Fibonacci numbers", bigs(0, 1, 1, 2, 3, 5, 8, 13)},
		{"A005843", "The even numbers", bigs(0, 2, 4, 6, 8, 10, 12, 14)},
	}
	var recs []store.Record
	for _, d := range defs {
		recs = append(recs, store.Record{
			ID:         d.id,
			Name:       d.name,
			Terms:      d.terms,
			Length:     len(d.terms),
			Invariants: invariant.Compute(d.terms),
		})
	}
	if _, err := st.WriteRecords(recs, 0); err != nil {
		t.Fatalf("WriteRecords: %v", err)
	}

	s, err := NewServer(st, config.NewConfig(), "/tmp/oeis.db")
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return s
}

func TestNewServerRequiresStore(t *testing.T) {
	if _, err := NewServer(nil, nil, ""); err == nil {
		t.Error("nil store should be rejected")
	}
}

func TestListTools(t *testing.T) {
	s := newTestServer(t)
	tools := s.ListTools()
	if len(tools) != 5 {
		t.Fatalf("expected 5 tools, got %d", len(tools))
	}
	want := map[string]bool{
		"analyze_sequence": false, "match_exact": false, "search_transforms": false,
		"search_combinations": false, "index_status": false,
	}
	for _, tool := range tools {
		if _, ok := want[tool.Name]; !ok {
			t.Errorf("unexpected tool %q", tool.Name)
		}
		want[tool.Name] = true
		if tool.Description == "" {
			t.Errorf("tool %q has no description", tool.Name)
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("tool %q not registered", name)
		}
	}
}

func TestAnalyzeHandlerFindsFibonacci(t *testing.T) {
	s := newTestServer(t)

	_, out, err := s.mcpAnalyzeHandler(context.Background(), nil, AnalyzeInput{Query: "0,1,1,2,3,5"})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if out.Exact != 1 {
		t.Errorf("exact count = %d", out.Exact)
	}
	if !containsStr(out.Summary, "A000045") || !containsStr(out.Summary, "Fibonacci") {
		t.Errorf("summary missing match: %q", out.Summary)
	}
}

func TestAnalyzeHandlerRejectsEmptyQuery(t *testing.T) {
	s := newTestServer(t)
	if _, _, err := s.mcpAnalyzeHandler(context.Background(), nil, AnalyzeInput{}); err == nil {
		t.Error("empty query should be rejected")
	}
}

func TestMatchExactWildcard(t *testing.T) {
	s := newTestServer(t)

	_, out, err := s.mcpMatchExactHandler(context.Background(), nil, MatchExactInput{Query: "1,?,3,4"})
	if err != nil {
		t.Fatalf("match_exact: %v", err)
	}
	if out.Exact == 0 {
		t.Error("wildcard prefix should match A000027")
	}
}

func TestSearchTransformsScaleByTwo(t *testing.T) {
	s := newTestServer(t)

	// 2*A000027 shifted: scale(2) of the naturals gives the positive evens.
	_, out, err := s.mcpSearchTransformsHandler(context.Background(), nil, SearchTransformsInput{Query: "2,4,6,8,10", Depth: 1})
	if err != nil {
		t.Fatalf("search_transforms: %v", err)
	}
	if out.Transform == 0 {
		t.Error("expected at least one transform match")
	}
}

func TestSearchCombinationsFindsLinearCombination(t *testing.T) {
	s := newTestServer(t)

	_, out, err := s.mcpSearchCombinationsHandler(context.Background(), nil, SearchCombinationsInput{Query: "3,5,7,9,11"})
	if err != nil {
		t.Fatalf("search_combinations: %v", err)
	}
	if out.Combinations == 0 {
		t.Error("3,5,7,9,11 should decompose as 2*A000027 + A000012")
	}
}

func TestIndexStatusHandler(t *testing.T) {
	s := newTestServer(t)

	_, out, err := s.mcpIndexStatusHandler(context.Background(), nil, IndexStatusInput{})
	if err != nil {
		t.Fatalf("index_status: %v", err)
	}
	if !out.Ready || out.SequenceCount != 4 {
		t.Errorf("status = %+v", out)
	}
	if out.Summary == "" {
		t.Error("summary should be populated")
	}
}

func TestSetMetricsWiresTelemetry(t *testing.T) {
	s := newTestServer(t)
	m := telemetry.NewMetricsWithConfig(nil, telemetry.Config{FlushInterval: 0})
	s.SetMetrics(m)

	if _, _, err := s.mcpAnalyzeHandler(context.Background(), nil, AnalyzeInput{Query: "0,1,1,2,3,5"}); err != nil {
		t.Fatal(err)
	}
	if m.Snapshot().TotalQueries != 1 {
		t.Error("analyze should be recorded in telemetry")
	}
}

func containsStr(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
