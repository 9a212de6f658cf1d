package daemon

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	matcherrors "github.com/rahidz/oeismatcher/internal/errors"
	"github.com/rahidz/oeismatcher/internal/pipeline"
)

// stubHandler returns canned results for protocol-level tests.
type stubHandler struct {
	result *AnalyzeResult
	err    error
	status StatusResult
}

func (s *stubHandler) HandleAnalyze(_ context.Context, _ AnalyzeParams) (*AnalyzeResult, error) {
	return s.result, s.err
}

func (s *stubHandler) GetStatus() StatusResult { return s.status }

// startServer runs a server on a temp socket and returns a connected client.
func startServer(t *testing.T, handler RequestHandler) *Client {
	t.Helper()

	socketPath := filepath.Join(t.TempDir(), "daemon.sock")
	srv, err := NewServer(socketPath)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if handler != nil {
		srv.SetHandler(handler)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = srv.ListenAndServe(ctx) }()
	t.Cleanup(func() { _ = srv.Close() })

	client := NewClient(Config{SocketPath: socketPath, Timeout: 5 * time.Second})

	// Wait for the socket to come up.
	deadline := time.Now().Add(3 * time.Second)
	for !client.IsRunning() {
		if time.Now().After(deadline) {
			t.Fatal("server did not start listening")
		}
		time.Sleep(10 * time.Millisecond)
	}
	return client
}

func TestPingRoundTrip(t *testing.T) {
	client := startServer(t, nil)
	if err := client.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestAnalyzeRoundTrip(t *testing.T) {
	handler := &stubHandler{
		result: &AnalyzeResult{
			Query: []string{"1", "2", "3"},
			ExactMatches: []pipeline.MatchJSON{
				{ID: "A000027", Kind: "prefix", Length: 3, Score: 3},
			},
		},
	}
	client := startServer(t, handler)

	res, err := client.Analyze(context.Background(), AnalyzeParams{Query: "1,2,3"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(res.ExactMatches) != 1 || res.ExactMatches[0].ID != "A000027" {
		t.Errorf("result = %+v", res)
	}
}

func TestAnalyzeWithoutHandler(t *testing.T) {
	client := startServer(t, nil)

	_, err := client.Analyze(context.Background(), AnalyzeParams{Query: "1,2,3"})
	if err == nil {
		t.Error("analyze without a handler should fail")
	}
}

func TestAnalyzeEmptyQueryRejected(t *testing.T) {
	client := startServer(t, &stubHandler{result: &AnalyzeResult{}})

	if _, err := client.Analyze(context.Background(), AnalyzeParams{}); err == nil {
		t.Error("empty query should be rejected client-side")
	}
}

func TestAnalyzeErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"query parse", matcherrors.QueryParseError("too many wildcards"), ErrCodeQueryParse},
		{"index missing", matcherrors.IndexMissingError("no index"), ErrCodeIndexMissing},
		{"other", fmt.Errorf("boom"), ErrCodeAnalyzeFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := startServer(t, &stubHandler{err: tt.err})
			_, err := client.Analyze(context.Background(), AnalyzeParams{Query: "1,2,3"})
			if err == nil {
				t.Fatal("expected error")
			}
			wantFragment := fmt.Sprintf("code: %d", tt.want)
			if got := err.Error(); !contains(got, wantFragment) {
				t.Errorf("error %q should carry %q", got, wantFragment)
			}
		})
	}
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}

func TestStatusRoundTrip(t *testing.T) {
	handler := &stubHandler{
		status: StatusResult{IndexPath: "/tmp/oeis.db", SequenceCount: 42, QueriesServed: 7},
	}
	client := startServer(t, handler)

	status, err := client.Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !status.Running || status.SequenceCount != 42 || status.QueriesServed != 7 {
		t.Errorf("status = %+v", status)
	}
	if status.PID == 0 {
		t.Error("status should carry the server PID")
	}
}

func TestMethodNotFound(t *testing.T) {
	client := startServer(t, nil)

	conn, err := client.Connect()
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if _, err := fmt.Fprintln(conn, `{"jsonrpc":"2.0","method":"bogus","id":"x"}`); err != nil {
		t.Fatal(err)
	}

	buf := make([]byte, 4096)
	n, err := conn.Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	if !contains(string(buf[:n]), "method not found") {
		t.Errorf("response = %s", buf[:n])
	}
}

func TestClientIsRunningWhenDown(t *testing.T) {
	client := NewClient(Config{
		SocketPath: filepath.Join(t.TempDir(), "missing.sock"),
		Timeout:    time.Second,
	})
	if client.IsRunning() {
		t.Error("IsRunning should be false with no server")
	}
}
