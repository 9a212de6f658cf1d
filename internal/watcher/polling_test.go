package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func startPolling(t *testing.T, dir string, interval time.Duration) *PollingWatcher {
	t.Helper()
	p := NewPollingWatcher(interval)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = p.Start(ctx, dir) }()
	t.Cleanup(func() { _ = p.Stop() })
	time.Sleep(50 * time.Millisecond) // let the baseline scan run
	return p
}

func waitForEvent(t *testing.T, p *PollingWatcher, timeout time.Duration) (FileEvent, bool) {
	t.Helper()
	select {
	case ev := <-p.Events():
		return ev, true
	case <-time.After(timeout):
		return FileEvent{}, false
	}
}

func TestPollingWatcherDetectsFileCreation(t *testing.T) {
	dir := t.TempDir()
	p := startPolling(t, dir, 50*time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "names.gz"), []byte("A000001 x\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ev, ok := waitForEvent(t, p, 3*time.Second)
	if !ok {
		t.Fatal("no event for created file")
	}
	if ev.Path != "names.gz" || ev.Operation != OpCreate {
		t.Errorf("event = %+v", ev)
	}
}

func TestPollingWatcherDetectsFileModification(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stripped")
	if err := os.WriteFile(path, []byte("v1"), 0o644); err != nil {
		t.Fatal(err)
	}

	p := startPolling(t, dir, 50*time.Millisecond)

	if err := os.WriteFile(path, []byte("v2 longer"), 0o644); err != nil {
		t.Fatal(err)
	}

	ev, ok := waitForEvent(t, p, 3*time.Second)
	if !ok {
		t.Fatal("no event for modified file")
	}
	if ev.Path != "stripped" || ev.Operation != OpModify {
		t.Errorf("event = %+v", ev)
	}
}

func TestPollingWatcherDetectsFileDeletion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keywords")
	if err := os.WriteFile(path, []byte("A000001 core\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	p := startPolling(t, dir, 50*time.Millisecond)

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	ev, ok := waitForEvent(t, p, 3*time.Second)
	if !ok {
		t.Fatal("no event for deleted file")
	}
	if ev.Path != "keywords" || ev.Operation != OpDelete {
		t.Errorf("event = %+v", ev)
	}
}

func TestPollingWatcherStopHaltsPolling(t *testing.T) {
	p := NewPollingWatcher(50 * time.Millisecond)
	if err := p.Stop(); err != nil {
		t.Errorf("Stop: %v", err)
	}
	// Double stop is safe.
	if err := p.Stop(); err != nil {
		t.Errorf("second Stop: %v", err)
	}
	if _, ok := <-p.Events(); ok {
		t.Error("events channel should be closed after Stop")
	}
}

func TestPollingWatcherStartInvalidPath(t *testing.T) {
	p := NewPollingWatcher(50 * time.Millisecond)
	defer func() { _ = p.Stop() }()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := p.Start(ctx, filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("Start should fail for a missing directory")
	}
}
