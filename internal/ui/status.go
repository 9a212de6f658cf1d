package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// StatusInfo contains index health information.
type StatusInfo struct {
	// Index stats
	IndexPath      string    `json:"index_path"`
	TotalSequences int       `json:"total_sequences"`
	MinLength      int       `json:"min_length"`
	MaxLength      int       `json:"max_length"`
	LastBuilt      time.Time `json:"last_built"`

	// Storage sizes (in bytes)
	IndexSize     int64 `json:"index_size"`
	TextIndexSize int64 `json:"text_index_size,omitempty"`

	// Component status
	DaemonStatus  string `json:"daemon_status"`  // "running", "stopped"
	WatcherStatus string `json:"watcher_status"` // "running", "stopped", "n/a"
	DumpDir       string `json:"dump_dir,omitempty"`
}

// StatusRenderer displays index status.
type StatusRenderer struct {
	out     io.Writer
	styles  Styles
	noColor bool
}

// NewStatusRenderer creates a status renderer.
func NewStatusRenderer(out io.Writer, noColor bool) *StatusRenderer {
	return &StatusRenderer{
		out:     out,
		styles:  GetStyles(noColor),
		noColor: noColor,
	}
}

// Render displays status info to terminal.
func (r *StatusRenderer) Render(info StatusInfo) error {
	// Header
	_, _ = fmt.Fprintf(r.out, "%s\n\n", r.styles.Header.Render("Index Status"))

	// Index stats
	_, _ = fmt.Fprintf(r.out, "  Sequences:  %d\n", info.TotalSequences)
	if info.TotalSequences > 0 {
		_, _ = fmt.Fprintf(r.out, "  Lengths:    %d-%d terms\n", info.MinLength, info.MaxLength)
	}
	if !info.LastBuilt.IsZero() {
		_, _ = fmt.Fprintf(r.out, "  Last built: %s\n", formatTime(info.LastBuilt))
	}
	_, _ = fmt.Fprintln(r.out)

	// Storage sizes
	_, _ = fmt.Fprintln(r.out, "  Storage:")
	_, _ = fmt.Fprintf(r.out, "    Index:      %s (%s)\n", info.IndexPath, FormatBytes(info.IndexSize))
	if info.TextIndexSize > 0 {
		_, _ = fmt.Fprintf(r.out, "    Name index: %s\n", FormatBytes(info.TextIndexSize))
	}
	_, _ = fmt.Fprintln(r.out)

	// Daemon status
	_, _ = fmt.Fprintf(r.out, "  Daemon:  %s\n", r.renderStatus(info.DaemonStatus))

	// Watcher status
	if info.WatcherStatus != "" && info.WatcherStatus != "n/a" {
		_, _ = fmt.Fprintf(r.out, "  Watcher: %s\n", r.renderStatus(info.WatcherStatus))
	}
	if info.DumpDir != "" {
		_, _ = fmt.Fprintf(r.out, "  Dumps:   %s\n", info.DumpDir)
	}

	return nil
}

// RenderJSON outputs status as JSON.
func (r *StatusRenderer) RenderJSON(info StatusInfo) error {
	encoder := json.NewEncoder(r.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(info)
}

// renderStatus formats a status string with color.
func (r *StatusRenderer) renderStatus(status string) string {
	switch status {
	case "ready", "running":
		return r.styles.Success.Render(status)
	case "offline", "stopped":
		return r.styles.Warning.Render(status)
	case "error":
		return r.styles.Error.Render(status)
	default:
		return status
	}
}

// formatTime formats a time for display.
func formatTime(t time.Time) string {
	now := time.Now()
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	default:
		return t.Format("2006-01-02 15:04")
	}
}

// FormatBytes formats bytes to human-readable format.
func FormatBytes(bytes int64) string {
	const (
		KB = 1024
		MB = 1024 * KB
		GB = 1024 * MB
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
