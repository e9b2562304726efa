// Package metrics exposes Prometheus collectors for the Controller and
// Worker processes. Neither side of the cluster otherwise depends on
// Prometheus; this package is additive instrumentation wired across the
// whole module (spec's ambient stack).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ybyllc/transcoder-cluster/internal/models"
)

var (
	// TasksTotal counts tasks reaching a terminal state, by outcome.
	TasksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tcx_scheduler_tasks_total",
			Help: "Total tasks reaching a terminal state, by result.",
		},
		[]string{"result"}, // completed, failed
	)

	// TaskAttemptsTotal counts every submit-with-progress attempt, success
	// or failure, broken out by worker.
	TaskAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tcx_scheduler_task_attempts_total",
			Help: "Total task dispatch attempts, by worker and outcome.",
		},
		[]string{"worker", "outcome"}, // outcome: success, retry, failed
	)

	// QueueDepth is the current pending-task queue length.
	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tcx_scheduler_queue_depth",
			Help: "Number of tasks currently waiting for a Worker.",
		},
	)

	// WorkerSlotState is a 0/1 gauge per (worker, state) pair mirroring the
	// Worker's execution-slot state machine, set on every slot transition.
	WorkerSlotState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tcx_worker_slot_state",
			Help: "1 for the Worker's current execution-slot state, 0 otherwise.",
		},
		[]string{"worker", "state"},
	)

	// DiscoveredNodes is the Controller's live discovery-registry size.
	DiscoveredNodes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tcx_discovery_nodes",
			Help: "Number of Workers currently present in the discovery registry.",
		},
	)

	// TranscodeDuration buckets a Worker's own ffmpeg wall-clock time.
	TranscodeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tcx_worker_transcode_duration_seconds",
			Help:    "Wall-clock duration of completed ffmpeg transcodes.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800, 3600},
		},
	)
)

// ObserveSlotState sets the gauge for every known slot state to 0 except
// current, which is set to 1, so Prometheus always has a clean series set
// per worker regardless of which states have been observed.
func ObserveSlotState(worker string, current models.SlotStatus) {
	for _, s := range []models.SlotStatus{
		models.SlotIdle, models.SlotReceiving, models.SlotProcessing,
		models.SlotCompleted, models.SlotError, models.SlotStopped,
	} {
		v := 0.0
		if s == current {
			v = 1.0
		}
		WorkerSlotState.WithLabelValues(worker, string(s)).Set(v)
	}
}

// RecordTaskTerminal increments TasksTotal and TaskAttemptsTotal for a
// task that just reached a terminal outcome on worker.
func RecordTaskTerminal(worker string, status models.TaskStatus) {
	switch status {
	case models.TaskCompleted:
		TasksTotal.WithLabelValues("completed").Inc()
		TaskAttemptsTotal.WithLabelValues(worker, "success").Inc()
	case models.TaskFailed:
		TasksTotal.WithLabelValues("failed").Inc()
		TaskAttemptsTotal.WithLabelValues(worker, "failed").Inc()
	}
}
