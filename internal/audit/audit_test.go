package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ybyllc/transcoder-cluster/internal/models"
)

func TestRecordAndHistory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "audit.db")
	store, err := Open(dbPath)
	require.NoError(t, err)
	defer store.Close()

	task := models.Task{
		ID:         "task_1",
		InputFile:  "in.mp4",
		OutputFile: "in_transcoded.mp4",
		LastWorker: "10.0.0.2",
		Status:     models.TaskCompleted,
		Attempts:   1,
		CreateTime: time.Now(),
		StartTime:  time.Now(),
		EndTime:    time.Now(),
	}

	require.NoError(t, store.Record(context.Background(), task))

	entries, total, err := store.History(context.Background(), 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, entries, 1)
	assert.Equal(t, "task_1", entries[0].TaskID)
}

func TestRecordFuncSwallowsErrorsViaCallback(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "audit.db")
	store, err := Open(dbPath)
	require.NoError(t, err)
	defer store.Close()
	store.Close() // force subsequent writes to fail

	var captured error
	record := store.RecordFunc(func(e error) { captured = e })
	record(models.Task{ID: "task_2", Status: models.TaskFailed})

	assert.Error(t, captured, "expected the error callback to fire after closing the database")
}
