package scheduler

import "github.com/ybyllc/transcoder-cluster/internal/models"

// UpdateBus fans out task-update events to subscribers without blocking
// the dispatch loop that posts them (spec §9 "never let a slow consumer
// stall the scheduler"). Each Subscribe gets its own buffered channel; a
// full channel drops the update rather than applying backpressure.
type UpdateBus struct {
	subscribers []chan models.Task
}

// Subscribe returns a channel receiving a copy of every task update from
// this point on. bufSize bounds how many updates can queue before newer
// ones are dropped for that subscriber.
func (b *UpdateBus) Subscribe(bufSize int) <-chan models.Task {
	ch := make(chan models.Task, bufSize)
	b.subscribers = append(b.subscribers, ch)
	return ch
}

// Publish fans task out to every subscriber, non-blocking.
func (b *UpdateBus) Publish(task models.Task) {
	for _, ch := range b.subscribers {
		select {
		case ch <- task:
		default:
		}
	}
}

// Close closes every subscriber channel; call once after the scheduler run
// completes so consumers can observe end-of-stream.
func (b *UpdateBus) Close() {
	for _, ch := range b.subscribers {
		close(ch)
	}
}
