// Package watcher provides file system watching over the raw OEIS dump
// directory, with automatic debouncing and dump-file filtering.
//
// The package implements a hybrid watching strategy:
//   - Primary: fsnotify for efficient event-based watching
//   - Fallback: Polling for environments where fsnotify fails (network mounts, Docker volumes)
//
// Events are debounced to coalesce the write bursts produced by downloads
// and atomic-rename replacements, and filtered down to the dump files the
// index is built from (stripped, names, keywords, gzipped or not). A fresh
// dump landing in the directory is the trigger for a reindex.
//
// Usage:
//
//	opts := watcher.DefaultOptions()
//	w, err := watcher.NewHybridWatcher(opts)
//	if err != nil {
//	    return err
//	}
//	defer w.Stop()
//
//	if err := w.Start(ctx, "/path/to/dumps"); err != nil {
//	    return err
//	}
//
//	for batch := range w.Events() {
//	    // A changed dump file arrived; rebuild the index.
//	    _ = batch
//	}
package watcher
