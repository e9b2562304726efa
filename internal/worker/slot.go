// Package worker implements the Worker process: a single-slot ffmpeg
// execution engine behind an HTTP task protocol (spec §4.2).
package worker

import (
	"sync/atomic"
	"time"

	"github.com/ybyllc/transcoder-cluster/internal/metrics"
	"github.com/ybyllc/transcoder-cluster/internal/models"
)

// Slot holds the Worker's execution state as an atomic pointer to an
// immutable snapshot, so /status reads never block on (or race with) the
// ffmpeg progress writer (spec §9: "atomic pointer to an immutable
// snapshot struct" option, chosen over a mutex-guarded record since
// updates here are simple whole-struct replacements, not partial edits).
type Slot struct {
	current atomic.Pointer[models.ExecutionSlot]
	label   string // identifies this Worker in exported metrics
}

// NewSlot creates a Slot starting idle. label identifies this Worker
// instance in the exported tcx_worker_slot_state metric.
func NewSlot(label string) *Slot {
	s := &Slot{label: label}
	idle := models.IdleSlot()
	s.current.Store(&idle)
	metrics.ObserveSlotState(label, models.SlotIdle)
	return s
}

// Snapshot returns a copy of the current execution state.
func (s *Slot) Snapshot() models.ExecutionSlot {
	return *s.current.Load()
}

// Busy reports whether the slot is receiving or processing a task.
func (s *Slot) Busy() bool {
	return s.Snapshot().Status.Busy()
}

// TryBeginReceiving transitions idle -> receiving, failing if the slot is
// already busy (spec §4.2 state machine; the §9 "/task when busy" open
// question resolved as an explicit rejection here).
func (s *Slot) TryBeginReceiving(currentTask string) bool {
	for {
		old := s.current.Load()
		if old.Status.Busy() {
			return false
		}
		now := time.Now()
		next := &models.ExecutionSlot{
			Status:      models.SlotReceiving,
			CurrentTask: currentTask,
			Progress:    0,
			StartTime:   &now,
		}
		if s.current.CompareAndSwap(old, next) {
			metrics.ObserveSlotState(s.label, models.SlotReceiving)
			return true
		}
	}
}

// BeginProcessing transitions receiving -> processing.
func (s *Slot) BeginProcessing() {
	old := s.current.Load()
	next := &models.ExecutionSlot{
		Status:      models.SlotProcessing,
		CurrentTask: old.CurrentTask,
		Progress:    0,
		StartTime:   old.StartTime,
	}
	s.current.Store(next)
	metrics.ObserveSlotState(s.label, models.SlotProcessing)
}

// UpdateProgress records a new percent-complete while processing.
func (s *Slot) UpdateProgress(percent int) {
	old := s.current.Load()
	next := &models.ExecutionSlot{
		Status:      old.Status,
		CurrentTask: old.CurrentTask,
		Progress:    percent,
		StartTime:   old.StartTime,
	}
	s.current.Store(next)
}

// Complete transitions processing -> completed.
func (s *Slot) Complete() {
	now := time.Now()
	s.current.Store(&models.ExecutionSlot{
		Status:   models.SlotCompleted,
		Progress: 100,
		EndTime:  &now,
	})
	metrics.ObserveSlotState(s.label, models.SlotCompleted)
}

// Fail transitions processing -> error, recording msg.
func (s *Slot) Fail(msg string) {
	now := time.Now()
	s.current.Store(&models.ExecutionSlot{
		Status:   models.SlotError,
		Progress: 0,
		EndTime:  &now,
		Error:    msg,
	})
	metrics.ObserveSlotState(s.label, models.SlotError)
}

// Stop transitions to stopped, used when an external shutdown signal
// interrupts an in-flight execution.
func (s *Slot) Stop() {
	now := time.Now()
	s.current.Store(&models.ExecutionSlot{
		Status:  models.SlotStopped,
		EndTime: &now,
	})
	metrics.ObserveSlotState(s.label, models.SlotStopped)
}

// ReturnToIdle transitions any terminal state back to idle, as happens on
// the next /status read or /task request per the spec's state diagram.
func (s *Slot) ReturnToIdle() {
	idle := models.IdleSlot()
	s.current.Store(&idle)
	metrics.ObserveSlotState(s.label, models.SlotIdle)
}
