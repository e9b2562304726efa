package worker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ybyllc/transcoder-cluster/internal/models"
)

func TestNewSlotStartsIdle(t *testing.T) {
	s := NewSlot("test")
	snap := s.Snapshot()
	assert.Equal(t, models.SlotIdle, snap.Status)
	assert.False(t, s.Busy(), "fresh slot must not be busy")
}

func TestTryBeginReceivingRejectsWhenBusy(t *testing.T) {
	s := NewSlot("test")
	require.True(t, s.TryBeginReceiving("a.mp4"), "first TryBeginReceiving should succeed")
	assert.False(t, s.TryBeginReceiving("b.mp4"), "second TryBeginReceiving must be rejected while busy")
	assert.Equal(t, "a.mp4", s.Snapshot().CurrentTask)
}

func TestFullLifecycle(t *testing.T) {
	s := NewSlot("test")
	require.True(t, s.TryBeginReceiving("job.mp4"), "expected receiving to start")

	s.BeginProcessing()
	assert.Equal(t, models.SlotProcessing, s.Snapshot().Status)

	s.UpdateProgress(42)
	assert.Equal(t, 42, s.Snapshot().Progress)
	assert.Equal(t, "job.mp4", s.Snapshot().CurrentTask, "current task lost across progress update")

	s.Complete()
	snap := s.Snapshot()
	assert.Equal(t, models.SlotCompleted, snap.Status)
	assert.Equal(t, 100, snap.Progress)
	assert.False(t, s.Busy(), "completed slot must not report busy")

	s.ReturnToIdle()
	assert.Equal(t, models.SlotIdle, s.Snapshot().Status)
}

func TestFailTransition(t *testing.T) {
	s := NewSlot("test")
	s.TryBeginReceiving("job.mp4")
	s.BeginProcessing()
	s.Fail("ffmpeg exited 1")

	snap := s.Snapshot()
	assert.Equal(t, models.SlotError, snap.Status)
	assert.Equal(t, "ffmpeg exited 1", snap.Error)
	assert.False(t, s.Busy(), "error slot must not report busy")
}

func TestStopTransition(t *testing.T) {
	s := NewSlot("test")
	s.TryBeginReceiving("job.mp4")
	s.BeginProcessing()
	s.Stop()

	assert.Equal(t, models.SlotStopped, s.Snapshot().Status)
	// A new /task after stopped must be accepted (idle-equivalent for
	// acceptance purposes, matching the "stopped --new /task--> idle" edge).
	assert.True(t, s.TryBeginReceiving("next.mp4"), "slot must accept a new task after stopped")
}
