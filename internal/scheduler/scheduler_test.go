package scheduler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ybyllc/transcoder-cluster/internal/httpclient"
	"github.com/ybyllc/transcoder-cluster/internal/models"
)

// fakeClient is a scriptable WorkerClient standing in for a real Worker's
// HTTP endpoints.
type fakeClient struct {
	mu         sync.Mutex
	submitFn   func(req httpclient.TaskRequest) (httpclient.TaskResponse, error)
	capsFn     func() (models.CapabilityDescriptor, error)
	downloadFn func(file string) ([]byte, error)
	submits    int
}

func (f *fakeClient) SubmitTask(_ context.Context, req httpclient.TaskRequest) (httpclient.TaskResponse, error) {
	f.mu.Lock()
	f.submits++
	f.mu.Unlock()
	if f.submitFn != nil {
		return f.submitFn(req)
	}
	return httpclient.TaskResponse{Status: "success", OutputFile: "output_" + req.VideoFile.Name}, nil
}

func (f *fakeClient) Status(_ context.Context) (httpclient.StatusResponse, error) {
	return httpclient.StatusResponse{Status: "processing", Progress: 50}, nil
}

func (f *fakeClient) Capabilities(_ context.Context) (models.CapabilityDescriptor, error) {
	if f.capsFn != nil {
		return f.capsFn()
	}
	return models.CapabilityDescriptor{}, nil
}

func (f *fakeClient) Download(_ context.Context, file string) ([]byte, error) {
	if f.downloadFn != nil {
		return f.downloadFn(file)
	}
	return []byte("transcoded-bytes"), nil
}

func writeInputFixture(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("fake video bytes"), 0o644))
	return path
}

func TestRunEmptyTaskList(t *testing.T) {
	s := New(func(string) WorkerClient { return &fakeClient{} }, nil, nil, nil)
	result, err := s.Run(context.Background(), nil, []string{"10.0.0.2"})
	require.NoError(t, err)
	assert.Equal(t, Result{Total: 0}, result)
}

func TestRunNoWorkersRejected(t *testing.T) {
	dir := t.TempDir()
	input := writeInputFixture(t, dir, "in.mp4")
	tasks := CreateTasksForFiles([]string{input}, nil, 1, DefaultSuffix, 1)

	s := New(func(string) WorkerClient { return &fakeClient{} }, nil, nil, nil)
	_, err := s.Run(context.Background(), tasks, nil)
	assert.ErrorIs(t, err, models.ErrNoWorkers)
}

func TestRunSingleFileSingleWorkerSuccess(t *testing.T) {
	dir := t.TempDir()
	input := writeInputFixture(t, dir, "in.mp4")
	tasks := CreateTasksForFiles([]string{input}, []string{"-c:v", "libx265", "-crf", "28"}, 1, DefaultSuffix, 1)

	s := New(func(string) WorkerClient { return &fakeClient{} }, nil, nil, nil)
	result, err := s.Run(context.Background(), tasks, []string{"10.0.0.2"})
	require.NoError(t, err)
	assert.Equal(t, Result{Total: 1, Completed: 1, Failed: 0}, result)
	assert.Equal(t, "10.0.0.2", tasks[0].Worker)
	assert.Equal(t, 1, tasks[0].Attempts)

	info, err := os.Stat(tasks[0].OutputFile)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())
}

func TestRunRetryExhaustionMarksFailed(t *testing.T) {
	dir := t.TempDir()
	input := writeInputFixture(t, dir, "in.mp4")
	tasks := CreateTasksForFiles([]string{input}, nil, 2, DefaultSuffix, 1)

	failing := &fakeClient{submitFn: func(req httpclient.TaskRequest) (httpclient.TaskResponse, error) {
		return httpclient.TaskResponse{Status: "fail", Error: "ffmpeg exited 1"}, nil
	}}

	s := New(func(string) WorkerClient { return failing }, nil, nil, nil)
	result, err := s.Run(context.Background(), tasks, []string{"10.0.0.2"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 0, result.Completed)
	assert.Equal(t, 2, tasks[0].Attempts, "expected 2 attempts (max_attempts)")
	assert.Equal(t, models.TaskFailed, tasks[0].Status)
}

func TestRunCapabilityGatingRestrictsToNvencWorkers(t *testing.T) {
	dir := t.TempDir()
	input := writeInputFixture(t, dir, "in.mp4")
	tasks := CreateTasksForFiles([]string{input}, []string{"-c:v", "hevc_nvenc"}, 1, DefaultSuffix, 1)

	var usedA, usedB bool
	var mu sync.Mutex

	clientFor := func(ip string) WorkerClient {
		return &fakeClient{
			capsFn: func() (models.CapabilityDescriptor, error) {
				return models.CapabilityDescriptor{NvencSupported: ip == "B"}, nil
			},
			submitFn: func(req httpclient.TaskRequest) (httpclient.TaskResponse, error) {
				mu.Lock()
				if ip == "A" {
					usedA = true
				} else {
					usedB = true
				}
				mu.Unlock()
				return httpclient.TaskResponse{Status: "success", OutputFile: "output_" + req.VideoFile.Name}, nil
			},
		}
	}

	s := New(clientFor, nil, nil, nil)
	result, err := s.Run(context.Background(), tasks, []string{"A", "B"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Completed)
	assert.False(t, usedA, "worker A lacks nvenc support and must not have been dispatched to")
	assert.True(t, usedB, "expected worker B (nvenc-capable) to run the task")
}

func TestRunOutputValidationFailureRetries(t *testing.T) {
	dir := t.TempDir()
	input := writeInputFixture(t, dir, "in.mp4")
	tasks := CreateTasksForFiles([]string{input}, nil, 2, DefaultSuffix, 1)

	client := &fakeClient{downloadFn: func(file string) ([]byte, error) {
		return []byte{}, nil // empty output triggers validation failure
	}}

	s := New(func(string) WorkerClient { return client }, nil, nil, nil)
	result, err := s.Run(context.Background(), tasks, []string{"10.0.0.2"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed, "expected empty output to exhaust retries and fail")
}

func TestRunPublishesUpdatesToSubscribers(t *testing.T) {
	dir := t.TempDir()
	input := writeInputFixture(t, dir, "in.mp4")
	tasks := CreateTasksForFiles([]string{input}, nil, 1, DefaultSuffix, 1)

	bus := &UpdateBus{}
	updates := bus.Subscribe(16)

	s := New(func(string) WorkerClient { return &fakeClient{} }, bus, nil, nil)
	_, err := s.Run(context.Background(), tasks, []string{"10.0.0.2"})
	require.NoError(t, err)
	bus.Close()

	sawCompleted := false
	for {
		select {
		case u, ok := <-updates:
			if !ok {
				assert.True(t, sawCompleted, "expected at least one completed update before channel closed")
				return
			}
			if u.Status == models.TaskCompleted {
				sawCompleted = true
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for update bus to drain")
		}
	}
}
