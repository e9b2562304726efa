package scheduler

import (
	"sync"

	"github.com/ybyllc/transcoder-cluster/internal/models"
)

// TaskGuard serializes every mutation of a Task's scheduler-owned fields,
// since the status-poll goroutine and the dispatch loop both write to the
// same Task concurrently during a single attempt (spec §5 "tasks list
// mutated under a Controller-owned mutex").
type TaskGuard struct {
	mu sync.Mutex
}

func (g *TaskGuard) withLock(fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn()
}

// Snapshot takes a consistent copy of task under the guard.
func (g *TaskGuard) Snapshot(task *models.Task) models.Task {
	var cp models.Task
	g.withLock(func() { cp = task.Snapshot() })
	return cp
}

// SetUploading mirrors in-flight upload progress from a Worker poll.
func (g *TaskGuard) SetUploading(task *models.Task, progress int) {
	g.withLock(func() {
		task.Status = models.TaskUploading
		task.Progress = progress
	})
}

// SetProcessing mirrors in-flight transcode progress from a Worker poll.
func (g *TaskGuard) SetProcessing(task *models.Task, progress int) {
	g.withLock(func() {
		task.Status = models.TaskProcessing
		task.Progress = progress
	})
}
