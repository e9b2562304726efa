package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ybyllc/transcoder-cluster/internal/models"
)

func newTask(id, lastWorker string) *models.Task {
	t := models.NewTask(id, id+".mp4", id+"_transcoded.mp4", nil, 3)
	t.LastWorker = lastWorker
	return t
}

func TestPopNextSingleWorkerFallsBackToHead(t *testing.T) {
	q := NewQueue([]*models.Task{newTask("task_1", "10.0.0.2"), newTask("task_2", "")})
	got := q.PopNext("10.0.0.2", false)
	require.NotNil(t, got)
	assert.Equal(t, "task_1", got.ID, "expected head task_1 in single-worker mode even though last_worker matches")
}

func TestPopNextMultiWorkerAvoidsLastWorker(t *testing.T) {
	q := NewQueue([]*models.Task{newTask("task_1", "10.0.0.2"), newTask("task_2", "")})
	got := q.PopNext("10.0.0.2", true)
	require.NotNil(t, got)
	assert.Equal(t, "task_2", got.ID, "expected node-affinity avoidance to skip task_1")
	assert.Equal(t, 1, q.Len())
}

func TestPopNextMultiWorkerFallsBackWhenAllMatch(t *testing.T) {
	q := NewQueue([]*models.Task{newTask("task_1", "10.0.0.2")})
	got := q.PopNext("10.0.0.2", true)
	require.NotNil(t, got, "expected fallback to head when every task matches last_worker")
	assert.Equal(t, "task_1", got.ID)
}

func TestPopNextEmptyReturnsNil(t *testing.T) {
	q := NewQueue(nil)
	assert.Nil(t, q.PopNext("10.0.0.2", true))
}

func TestPushRetryAppendsToTail(t *testing.T) {
	q := NewQueue([]*models.Task{newTask("task_1", "")})
	t1 := q.PopNext("10.0.0.2", false)
	q.PushRetry(t1)
	assert.Equal(t, 1, q.Len())

	got := q.PopNext("10.0.0.3", false)
	require.NotNil(t, got)
	assert.Equal(t, "task_1", got.ID, "expected retried task back at the queue")
}
