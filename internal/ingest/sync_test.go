package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestDownloadFile_DownloadsContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("A000045 0,1,1,2,3,5\n"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	dest := filepath.Join(dir, "nested", "stripped")

	result, err := DownloadFile(context.Background(), srv.URL, dest, false)
	if err != nil {
		t.Fatalf("DownloadFile: %v", err)
	}
	if result.Status != StatusDownloaded {
		t.Fatalf("status = %v, want downloaded", result.Status)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read dest: %v", err)
	}
	if string(data) != "A000045 0,1,1,2,3,5\n" {
		t.Fatalf("content = %q", data)
	}
}

func TestDownloadFile_SkipsExistingUnlessForced(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte("fresh"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	dest := filepath.Join(dir, "stripped")
	if err := os.WriteFile(dest, []byte("stale"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	result, err := DownloadFile(context.Background(), srv.URL, dest, false)
	if err != nil {
		t.Fatalf("DownloadFile: %v", err)
	}
	if result.Status != StatusSkipped {
		t.Fatalf("status = %v, want skipped", result.Status)
	}
	if calls != 0 {
		t.Fatalf("expected no HTTP call, got %d", calls)
	}

	result, err = DownloadFile(context.Background(), srv.URL, dest, true)
	if err != nil {
		t.Fatalf("DownloadFile force: %v", err)
	}
	if result.Status != StatusDownloaded {
		t.Fatalf("status = %v, want downloaded", result.Status)
	}
	data, _ := os.ReadFile(dest)
	if string(data) != "fresh" {
		t.Fatalf("content = %q, want fresh", data)
	}
}

func TestDownloadFile_RetriesOnFailureThenSucceeds(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	dest := filepath.Join(dir, "stripped")

	result, err := DownloadFile(context.Background(), srv.URL, dest, false)
	if err != nil {
		t.Fatalf("DownloadFile: %v", err)
	}
	if attempts < 2 {
		t.Fatalf("expected retry, attempts = %d", attempts)
	}
	if result.Status != StatusDownloaded {
		t.Fatalf("status = %v", result.Status)
	}
}

func TestDownloadFile_FailsAfterMaxRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	dir := t.TempDir()
	dest := filepath.Join(dir, "stripped")

	_, err := DownloadFile(context.Background(), srv.URL, dest, false)
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestDownloadFile_RespectsContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dir := t.TempDir()
	dest := filepath.Join(dir, "stripped")

	_, err := DownloadFile(ctx, srv.URL, dest, false)
	if err == nil {
		t.Fatalf("expected error from cancelled context")
	}
}

func TestSyncData_DownloadsBothArtifacts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/stripped.gz":
			w.Write([]byte("stripped-data"))
		case "/names.gz":
			w.Write([]byte("names-data"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	result, err := SyncData(context.Background(), SyncOptions{
		StrippedURL:  srv.URL + "/stripped.gz",
		NamesURL:     srv.URL + "/names.gz",
		StrippedPath: filepath.Join(dir, "stripped.gz"),
		NamesPath:    filepath.Join(dir, "names.gz"),
	})
	if err != nil {
		t.Fatalf("SyncData: %v", err)
	}
	if result.Stripped.Status != StatusDownloaded || result.Names.Status != StatusDownloaded {
		t.Fatalf("unexpected result: %+v", result)
	}
}
