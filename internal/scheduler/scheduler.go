package scheduler

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ybyllc/transcoder-cluster/internal/metrics"
	"github.com/ybyllc/transcoder-cluster/internal/models"
)

// Result is the completion report a Run returns (spec §4.3).
type Result struct {
	Total     int
	Completed int
	Failed    int
}

// Scheduler drives one batch: a fixed task list dispatched over a fixed
// Worker set, one serial loop per Worker, with node-affinity-avoidance
// retry (spec §4.3).
type Scheduler struct {
	clientFor   ClientFactory
	bus         *UpdateBus
	guard       TaskGuard
	log         *slog.Logger
	auditRecord func(models.Task)
}

// New creates a Scheduler. auditRecord, if non-nil, is called once per
// task on terminal status (completed or failed).
func New(clientFor ClientFactory, bus *UpdateBus, auditRecord func(models.Task), log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{clientFor: clientFor, bus: bus, log: log, auditRecord: auditRecord}
}

// Run dispatches tasks over workers until the queue drains or ctx is
// canceled, returning the final completion counts (spec §8 P2: completed +
// failed == total on return, for any subset of tasks that actually ran —
// a canceled run may return before every task reaches a terminal state).
func (s *Scheduler) Run(ctx context.Context, tasks []*models.Task, workers []string) (Result, error) {
	if len(tasks) == 0 {
		return Result{Total: 0}, nil
	}
	if len(workers) == 0 {
		return Result{}, models.ErrNoWorkers
	}

	workers = filterByCapability(ctx, s.clientFor, workers, tasks, s.log)
	if len(workers) == 0 {
		return Result{}, models.ErrNoWorkers
	}

	queue := NewQueue(tasks)
	multiWorker := len(workers) > 1

	var completed, failed counter
	g, gctx := errgroup.WithContext(ctx)
	for _, ip := range workers {
		ip := ip
		g.Go(func() error {
			return s.dispatchLoop(gctx, ip, multiWorker, queue, &completed, &failed)
		})
	}
	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return Result{Total: len(tasks), Completed: completed.value(), Failed: failed.value()}, err
	}

	return Result{Total: len(tasks), Completed: completed.value(), Failed: failed.value()}, nil
}

// dispatchLoop is the per-Worker serial execution loop (spec §4.3).
func (s *Scheduler) dispatchLoop(ctx context.Context, workerIP string, multiWorker bool, queue *Queue, completed, failed *counter) error {
	client := s.clientFor(workerIP)

	for {
		if ctx.Err() != nil {
			return nil
		}
		task := queue.PopNext(workerIP, multiWorker)
		if task == nil {
			return nil
		}
		metrics.QueueDepth.Set(float64(queue.Len()))

		s.guard.withLock(func() {
			task.Worker = workerIP
			task.LastWorker = workerIP
			task.Attempts++
			task.Status = models.TaskUploading
			task.StartTime = time.Now()
		})
		s.publish(task)

		err := submitWithProgress(ctx, client, &s.guard, task, func() { s.publish(task) })

		if err == nil {
			s.guard.withLock(func() {
				task.Status = models.TaskCompleted
				task.Progress = 100
				task.EndTime = time.Now()
			})
			completed.inc()
		} else {
			s.log.Warn("task attempt failed",
				slog.String("task_id", task.ID),
				slog.String("worker", workerIP),
				slog.String("error", err.Error()),
			)
			retry := false
			s.guard.withLock(func() {
				if task.Attempts < task.MaxAttempts && ctx.Err() == nil {
					task.Status = models.TaskPending
					task.Worker = ""
					task.Progress = 0
					task.Error = err.Error()
					retry = true
				} else {
					task.Status = models.TaskFailed
					task.Error = err.Error()
					task.EndTime = time.Now()
				}
			})
			if retry {
				queue.PushRetry(task)
				metrics.TaskAttemptsTotal.WithLabelValues(workerIP, "retry").Inc()
			} else {
				failed.inc()
			}
		}

		s.publish(task)
		if task.Status.IsTerminal() {
			metrics.RecordTaskTerminal(workerIP, task.Status)
			if s.auditRecord != nil {
				s.auditRecord(s.guard.Snapshot(task))
			}
		}
	}
}

func (s *Scheduler) publish(task *models.Task) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(s.guard.Snapshot(task))
}

// filterByCapability restricts workers to those advertising nvenc support
// when any task's ffmpeg args select an nvenc codec (spec §4.3
// capability-aware pre-filter). Workers whose capability probe errors are
// excluded at once; the probe is neither retried nor waited on.
func filterByCapability(ctx context.Context, clientFor ClientFactory, workers []string, tasks []*models.Task, log *slog.Logger) []string {
	needsNvenc := false
	for _, t := range tasks {
		for _, a := range t.FFmpegArgs {
			if strings.Contains(a, "_nvenc") {
				needsNvenc = true
			}
		}
	}
	if !needsNvenc {
		return workers
	}

	filtered := make([]string, 0, len(workers))
	for _, ip := range workers {
		desc, err := clientFor(ip).Capabilities(ctx)
		if err != nil {
			log.Warn("capability probe failed, excluding worker from nvenc batch", slog.String("worker", ip), slog.String("error", err.Error()))
			continue
		}
		if desc.NvencSupported {
			filtered = append(filtered, ip)
		}
	}
	return filtered
}

// counter is a tiny mutex-guarded int shared across per-Worker loops.
type counter struct {
	mu  sync.Mutex
	val int
}

func (c *counter) inc() {
	c.mu.Lock()
	c.val++
	c.mu.Unlock()
}

func (c *counter) value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.val
}
