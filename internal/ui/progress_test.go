package ui

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProgressTrackerStages(t *testing.T) {
	p := NewProgressTracker()

	p.SetStage(StageParse, 1000)
	p.Update(250, "A000250")

	stats := p.Stats()
	assert.Equal(t, StageParse, stats.Stage)
	assert.Equal(t, 250, stats.Current)
	assert.Equal(t, 1000, stats.Total)
	assert.Equal(t, "A000250", stats.CurrentItem)
	assert.InDelta(t, 0.25, p.Progress(), 0.001)
}

func TestProgressTrackerStageResetsItem(t *testing.T) {
	p := NewProgressTracker()
	p.SetStage(StageParse, 10)
	p.Update(5, "A000005")

	p.SetStage(StageWrite, 10)
	assert.Equal(t, "", p.Stats().CurrentItem)
}

func TestProgressTrackerErrorsAndWarnings(t *testing.T) {
	p := NewProgressTracker()

	p.AddError(ErrorEvent{Item: "A1", Err: errors.New("bad terms")})
	p.AddError(ErrorEvent{Item: "A2", Err: errors.New("short"), IsWarn: true})

	assert.Len(t, p.Errors(), 1)
	assert.Len(t, p.Warnings(), 1)
}

func TestProgressTrackerElapsed(t *testing.T) {
	p := NewProgressTracker()
	time.Sleep(10 * time.Millisecond)
	assert.Greater(t, p.Elapsed(), time.Duration(0))
}

func TestProgressZeroTotal(t *testing.T) {
	p := NewProgressTracker()
	p.SetStage(StageDownload, 0)
	assert.Equal(t, 0.0, p.Progress())
}
