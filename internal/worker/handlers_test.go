package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ybyllc/transcoder-cluster/internal/ffmpeg"
	"github.com/ybyllc/transcoder-cluster/internal/httpclient"
	"github.com/ybyllc/transcoder-cluster/internal/models"
)

func newTestHandlers(t *testing.T) (*Handlers, *Slot) {
	t.Helper()
	dir := t.TempDir()
	slot := NewSlot("test")
	detector := ffmpeg.NewDetector("ffmpeg", "ffprobe", 0)
	return NewHandlers(slot, detector, dir, 0, nil), slot
}

func TestServeTaskRejectsWhenBusy(t *testing.T) {
	h, slot := newTestHandlers(t)
	require.True(t, slot.TryBeginReceiving("inflight.mp4"), "setup: expected slot to accept first task")

	body, _ := json.Marshal(taskPayload{TaskID: "t1", VideoFile: videoFilePayload{Name: "b.mp4"}})
	req := httptest.NewRequest(http.MethodPost, "/task", bytes.NewReader(body))
	w := httptest.NewRecorder()

	h.ServeTask(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	var resp httpclient.TaskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
}

func TestServeTaskRejectsDuringShutdown(t *testing.T) {
	h, _ := newTestHandlers(t)
	h.RejectNewTasks()

	body, _ := json.Marshal(taskPayload{TaskID: "t1", VideoFile: videoFilePayload{Name: "a.mp4"}})
	req := httptest.NewRequest(http.MethodPost, "/task", bytes.NewReader(body))
	w := httptest.NewRecorder()

	h.ServeTask(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestServeTaskMalformedBase64(t *testing.T) {
	h, slot := newTestHandlers(t)

	body, _ := json.Marshal(taskPayload{TaskID: "t1", VideoFile: videoFilePayload{Name: "a.mp4", Data: "not-valid-base64!!"}})
	req := httptest.NewRequest(http.MethodPost, "/task", bytes.NewReader(body))
	w := httptest.NewRecorder()

	h.ServeTask(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, models.SlotError, slot.Snapshot().Status)
}

func TestServeDownloadMissingFile(t *testing.T) {
	h, _ := newTestHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/download?file=nope.mp4", nil)
	w := httptest.NewRecorder()

	h.ServeDownload(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServeDownloadRejectsPathTraversal(t *testing.T) {
	h, _ := newTestHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/download?file=../../etc/passwd", nil)
	w := httptest.NewRecorder()

	h.ServeDownload(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code, "expected traversal attempt to 404")
}

func TestServeDownloadServesExistingFile(t *testing.T) {
	h, _ := newTestHandlers(t)
	require.NoError(t, os.WriteFile(filepath.Join(h.workDir, "output_a.mp4"), []byte("binary-ish"), 0o644))

	req := httptest.NewRequest(http.MethodGet, "/download?file=output_a.mp4", nil)
	w := httptest.NewRecorder()

	h.ServeDownload(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "binary-ish", w.Body.String())
	assert.NotEmpty(t, w.Header().Get("Content-Disposition"))
}

func TestStatusReturnsSlotToIdleAfterTerminalRead(t *testing.T) {
	h, slot := newTestHandlers(t)
	slot.TryBeginReceiving("job.mp4")
	slot.BeginProcessing()
	slot.Complete()

	out, err := h.Status(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, string(models.SlotCompleted), out.Body.Status, "expected first read to report completed")
	assert.Equal(t, models.SlotIdle, slot.Snapshot().Status, "expected slot to drop back to idle after the read")
}

func TestPingReturnsPong(t *testing.T) {
	h, _ := newTestHandlers(t)
	out, err := h.Ping(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "pong", string(out.Body))
}
