package ui

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleStatus() StatusInfo {
	return StatusInfo{
		IndexPath:      "/data/oeis.db",
		TotalSequences: 384321,
		MinLength:      1,
		MaxLength:      128,
		LastBuilt:      time.Now().Add(-2 * time.Hour),
		IndexSize:      419430400,
		DaemonStatus:   "running",
		WatcherStatus:  "stopped",
		DumpDir:        "/data/dumps",
	}
}

func TestStatusRender(t *testing.T) {
	var buf bytes.Buffer
	r := NewStatusRenderer(&buf, true)

	require.NoError(t, r.Render(sampleStatus()))
	out := buf.String()

	assert.Contains(t, out, "384321")
	assert.Contains(t, out, "1-128 terms")
	assert.Contains(t, out, "2 hours ago")
	assert.Contains(t, out, "/data/oeis.db")
	assert.Contains(t, out, "400.0 MB")
	assert.Contains(t, out, "running")
	assert.Contains(t, out, "/data/dumps")
}

func TestStatusRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	r := NewStatusRenderer(&buf, true)

	require.NoError(t, r.RenderJSON(sampleStatus()))

	var decoded StatusInfo
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 384321, decoded.TotalSequences)
	assert.Equal(t, "/data/oeis.db", decoded.IndexPath)
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "just now", formatTime(time.Now()))
	assert.Equal(t, "1 minute ago", formatTime(time.Now().Add(-90*time.Second)))
	assert.Equal(t, "3 hours ago", formatTime(time.Now().Add(-3*time.Hour)))
	assert.Equal(t, "2 days ago", formatTime(time.Now().Add(-48*time.Hour)))
	old := time.Date(2020, 1, 2, 3, 4, 0, 0, time.UTC)
	assert.Contains(t, formatTime(old), "2020-01-02")
}
