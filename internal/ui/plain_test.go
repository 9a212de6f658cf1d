package ui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPlain(t *testing.T) (*PlainRenderer, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	r := NewPlainRenderer(NewConfig(&buf))
	require.NoError(t, r.Start(context.Background()))
	t.Cleanup(func() { _ = r.Stop() })
	return r, &buf
}

func TestPlainProgressLine(t *testing.T) {
	r, buf := newPlain(t)

	r.UpdateProgress(ProgressEvent{
		Stage:       StageParse,
		Current:     100,
		Total:       400000,
		CurrentItem: "A000045",
	})

	assert.Contains(t, buf.String(), "[PARSE] 100/400000 - A000045")
}

func TestPlainProgressMessageOnly(t *testing.T) {
	r, buf := newPlain(t)

	r.UpdateProgress(ProgressEvent{Stage: StageDownload, Message: "fetching stripped.gz"})
	assert.Contains(t, buf.String(), "[SYNC] fetching stripped.gz")
}

func TestPlainErrors(t *testing.T) {
	r, buf := newPlain(t)

	r.AddError(ErrorEvent{Item: "A999999", Err: errors.New("unparseable terms")})
	r.AddError(ErrorEvent{Err: errors.New("names file missing"), IsWarn: true})

	out := buf.String()
	assert.Contains(t, out, "ERROR: A999999: unparseable terms")
	assert.Contains(t, out, "WARN: names file missing")
}

func TestPlainComplete(t *testing.T) {
	r, buf := newPlain(t)

	r.Complete(CompletionStats{
		Sequences: 384321,
		Named:     380000,
		Skipped:   12,
		Duration:  95 * time.Second,
		Stages: StageTimings{
			Parse: 30 * time.Second,
			Names: 5 * time.Second,
			Write: 60 * time.Second,
		},
		DBPath: "/data/oeis.db",
		DBSize: 400 * 1024 * 1024,
	})

	out := buf.String()
	assert.Contains(t, out, "384321 sequences")
	assert.Contains(t, out, "12 skipped")
	assert.Contains(t, out, "Stage Breakdown")
	assert.Contains(t, out, "/data/oeis.db")
	assert.Contains(t, out, "400.0 MB")
}

func TestPlainCompleteMinimal(t *testing.T) {
	r, buf := newPlain(t)

	r.Complete(CompletionStats{Sequences: 7, Duration: time.Second})
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Complete: 7 sequences"))
	assert.NotContains(t, out, "Stage Breakdown")
}
