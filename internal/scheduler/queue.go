// Package scheduler implements the Controller's batch dispatch loop: a
// pending task queue with node-affinity-avoidance retry, one serial
// dispatch goroutine per Worker, and progress aggregation (spec §4.3).
package scheduler

import (
	"sync"

	"github.com/ybyllc/transcoder-cluster/internal/models"
)

// Queue is the shared FIFO pending-task list guarded by a single mutex, as
// the dispatch loops across every Worker pop from and push retries to it
// concurrently.
type Queue struct {
	mu      sync.Mutex
	pending []*models.Task
}

// NewQueue creates a Queue seeded with tasks, in order.
func NewQueue(tasks []*models.Task) *Queue {
	return &Queue{pending: append([]*models.Task(nil), tasks...)}
}

// PopNext removes and returns the next task for workerIP to attempt,
// preferring (when more than one Worker is in play) a task whose
// last_worker differs from workerIP, falling back to the queue head so a
// single-Worker cluster never starves (spec §4.3 pop_next_task).
func (q *Queue) PopNext(workerIP string, multiWorker bool) *models.Task {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == 0 {
		return nil
	}

	if multiWorker {
		for i, t := range q.pending {
			if t.LastWorker != workerIP {
				q.pending = append(q.pending[:i], q.pending[i+1:]...)
				return t
			}
		}
	}

	t := q.pending[0]
	q.pending = q.pending[1:]
	return t
}

// PushRetry appends task to the tail for a future dispatch attempt.
func (q *Queue) PushRetry(task *models.Task) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, task)
}

// Len reports the number of tasks still waiting.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
