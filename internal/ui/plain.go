package ui

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

// PlainRenderer outputs plain text progress (for CI/pipes).
type PlainRenderer struct {
	mu      sync.Mutex
	out     io.Writer
	noColor bool
	stage   Stage
	errors  []ErrorEvent
}

// NewPlainRenderer creates a plain text renderer.
func NewPlainRenderer(cfg Config) *PlainRenderer {
	return &PlainRenderer{
		out:     cfg.Output,
		noColor: cfg.NoColor,
	}
}

// Start implements Renderer.
func (r *PlainRenderer) Start(ctx context.Context) error {
	return nil
}

// UpdateProgress implements Renderer.
func (r *PlainRenderer) UpdateProgress(event ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stage = event.Stage

	// Format: [STAGE] current/total - message or item
	var msg string
	if event.Message != "" {
		msg = event.Message
	} else if event.CurrentItem != "" {
		msg = event.CurrentItem
	}

	if event.Total > 0 {
		_, _ = fmt.Fprintf(r.out, "[%s] %d/%d - %s\n", event.Stage.Icon(), event.Current, event.Total, msg)
	} else if msg != "" {
		_, _ = fmt.Fprintf(r.out, "[%s] %s\n", event.Stage.Icon(), msg)
	}
}

// AddError implements Renderer.
func (r *PlainRenderer) AddError(event ErrorEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.errors = append(r.errors, event)

	prefix := "ERROR"
	if event.IsWarn {
		prefix = "WARN"
	}

	if event.Item != "" {
		_, _ = fmt.Fprintf(r.out, "%s: %s: %v\n", prefix, event.Item, event.Err)
	} else {
		_, _ = fmt.Fprintf(r.out, "%s: %v\n", prefix, event.Err)
	}
}

// Complete implements Renderer.
func (r *PlainRenderer) Complete(stats CompletionStats) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, _ = fmt.Fprintf(r.out, "Complete: %d sequences (%d named) indexed in %s",
		stats.Sequences, stats.Named, stats.Duration.Round(100*time.Millisecond))

	if stats.Skipped > 0 {
		_, _ = fmt.Fprintf(r.out, ", %d skipped", stats.Skipped)
	}
	if stats.Errors > 0 || stats.Warnings > 0 {
		_, _ = fmt.Fprintf(r.out, " (%d errors, %d warnings)", stats.Errors, stats.Warnings)
	}

	_, _ = fmt.Fprintln(r.out)

	// Show detailed stage breakdown if available
	if stats.Stages.Parse > 0 || stats.Stages.Write > 0 {
		_, _ = fmt.Fprintln(r.out)
		_, _ = fmt.Fprintln(r.out, "Stage Breakdown:")
		if stats.Stages.Download > 0 {
			_, _ = fmt.Fprintf(r.out, "  Download: %s\n", stats.Stages.Download.Round(100*time.Millisecond))
		}
		_, _ = fmt.Fprintf(r.out, "  Parse:    %s", stats.Stages.Parse.Round(100*time.Millisecond))
		if stats.Stages.Parse > 0 && stats.Sequences > 0 {
			seqPerSec := float64(stats.Sequences) / stats.Stages.Parse.Seconds()
			_, _ = fmt.Fprintf(r.out, " (%d sequences @ %.0f/sec)", stats.Sequences, seqPerSec)
		}
		_, _ = fmt.Fprintln(r.out)
		_, _ = fmt.Fprintf(r.out, "  Names:    %s\n", stats.Stages.Names.Round(100*time.Millisecond))
		_, _ = fmt.Fprintf(r.out, "  Write:    %s\n", stats.Stages.Write.Round(100*time.Millisecond))
		if stats.Stages.TextIndex > 0 {
			_, _ = fmt.Fprintf(r.out, "  Text:     %s\n", stats.Stages.TextIndex.Round(100*time.Millisecond))
		}
	}

	if stats.DBPath != "" {
		_, _ = fmt.Fprintln(r.out)
		_, _ = fmt.Fprintf(r.out, "Index: %s (%s)\n", stats.DBPath, FormatBytes(stats.DBSize))
	}
}

// Stop implements Renderer.
func (r *PlainRenderer) Stop() error {
	return nil
}
