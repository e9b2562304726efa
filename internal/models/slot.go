package models

import "time"

// SlotStatus is the state of a Worker's single execution slot.
type SlotStatus string

// Execution slot states.
const (
	SlotIdle       SlotStatus = "idle"
	SlotReceiving  SlotStatus = "receiving"
	SlotProcessing SlotStatus = "processing"
	SlotCompleted  SlotStatus = "completed"
	SlotError      SlotStatus = "error"
	SlotStopped    SlotStatus = "stopped"
)

// Busy reports whether a new /task submission must be refused in this
// state.
func (s SlotStatus) Busy() bool {
	return s == SlotReceiving || s == SlotProcessing
}

// ExecutionSlot is an immutable snapshot of a Worker's single-task
// concurrency unit. A Worker publishes a new snapshot on every state
// change; handlers read the current snapshot without blocking on the
// transcode goroutine (see internal/worker for the atomic-pointer
// implementation).
type ExecutionSlot struct {
	Status      SlotStatus `json:"status"`
	CurrentTask string     `json:"current_task,omitempty"`
	Progress    int        `json:"progress"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// IdleSlot returns the slot in its resting state.
func IdleSlot() ExecutionSlot {
	return ExecutionSlot{Status: SlotIdle}
}
