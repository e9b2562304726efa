package worker

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/go-chi/chi/v5"

	"github.com/ybyllc/transcoder-cluster/internal/discovery"
	"github.com/ybyllc/transcoder-cluster/internal/ffmpeg"
	"github.com/ybyllc/transcoder-cluster/internal/httpclient"
	"github.com/ybyllc/transcoder-cluster/internal/models"
)

// Handlers implements the Worker's HTTP task protocol (spec §4.2).
type Handlers struct {
	slot     *Slot
	detector *ffmpeg.Detector
	workDir  string
	log      *slog.Logger

	discoveryPort int // 0 disables task_complete broadcast

	shuttingDown atomic.Bool

	// shutdownCtx is canceled when the server begins shutting down, so an
	// in-flight ServeTask can cut its ffmpeg subprocess short instead of
	// running to completion (spec §4.2 shutdown (b)).
	shutdownCtx    context.Context
	shutdownCancel context.CancelFunc
}

// NewHandlers creates Handlers serving out of workDir.
func NewHandlers(slot *Slot, detector *ffmpeg.Detector, workDir string, discoveryPort int, log *slog.Logger) *Handlers {
	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())
	return &Handlers{
		slot:           slot,
		detector:       detector,
		workDir:        workDir,
		discoveryPort:  discoveryPort,
		log:            log,
		shutdownCtx:    shutdownCtx,
		shutdownCancel: shutdownCancel,
	}
}

// RejectNewTasks marks the Worker as shutting down; subsequent /task
// requests are refused regardless of slot state (spec §4.2 shutdown (a)).
func (h *Handlers) RejectNewTasks() {
	h.shuttingDown.Store(true)
}

// CancelInFlight cuts short any transcode currently running under
// ServeTask (spec §4.2 shutdown (b)); Transcode's exec.Cmd signals the
// process and kills it after a short grace period once its context ends.
func (h *Handlers) CancelInFlight() {
	h.shutdownCancel()
}

// --- Huma-registered read-only endpoints ---

// PingOutput is the liveness probe response.
type PingOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

// Ping handles GET /ping, returning the literal body "pong" (spec §4.2,
// relied on by the Controller's subnet-scan fallback).
func (h *Handlers) Ping(ctx context.Context, _ *struct{}) (*PingOutput, error) {
	return &PingOutput{ContentType: "text/plain", Body: []byte("pong")}, nil
}

// StatusOutput is the execution-slot snapshot response body.
type StatusOutput struct {
	Body statusBody
}

type statusBody struct {
	Status      string `json:"status"`
	CurrentTask string `json:"current_task,omitempty"`
	Progress    int    `json:"progress"`
	StartTime   string `json:"start_time,omitempty"`
	EndTime     string `json:"end_time,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Status handles GET /status. A read of a terminal snapshot (completed,
// error, stopped) drives the slot back to idle per the state diagram's
// "completed/error/stopped --(/status read OR new /task)--> idle" edge.
func (h *Handlers) Status(ctx context.Context, _ *struct{}) (*StatusOutput, error) {
	snap := h.slot.Snapshot()
	out := &StatusOutput{Body: statusBody{
		Status:      string(snap.Status),
		CurrentTask: snap.CurrentTask,
		Progress:    snap.Progress,
		Error:       snap.Error,
	}}
	if snap.StartTime != nil {
		out.Body.StartTime = snap.StartTime.Format("2006-01-02 15:04:05")
	}
	if snap.EndTime != nil {
		out.Body.EndTime = snap.EndTime.Format("2006-01-02 15:04:05")
	}
	if snap.Status == models.SlotCompleted || snap.Status == models.SlotError || snap.Status == models.SlotStopped {
		h.slot.ReturnToIdle()
	}
	return out, nil
}

// CapabilitiesOutput is the capability-descriptor response body.
type CapabilitiesOutput struct {
	Body models.CapabilityDescriptor
}

// Capabilities handles GET /capabilities.
func (h *Handlers) Capabilities(ctx context.Context, _ *struct{}) (*CapabilitiesOutput, error) {
	cap, err := h.detector.Capabilities(ctx)
	if err != nil {
		return &CapabilitiesOutput{Body: models.CapabilityDescriptor{}}, nil
	}
	return &CapabilitiesOutput{Body: cap}, nil
}

// --- Raw Chi handlers for the streaming /task and /download endpoints ---
//
// These are registered outside Huma, the way tvarr's relay_stream.go
// registers its streaming proxy endpoints as raw Chi routes: Huma commits
// response headers before the handler body runs, which is incompatible
// with the large base64 body reads and octet-stream writes here.

// videoFilePayload mirrors httpclient.VideoFile on the wire.
type videoFilePayload struct {
	Name string `json:"name"`
	Data string `json:"data"`
}

// taskPayload mirrors httpclient.TaskRequest on the wire.
type taskPayload struct {
	TaskID     string           `json:"task_id"`
	VideoFile  videoFilePayload `json:"video_file"`
	FFmpegArgs []string         `json:"ffmpeg_args"`
}

// ServeTask handles POST /task: accept, decode, transcode, respond.
func (h *Handlers) ServeTask(w http.ResponseWriter, r *http.Request) {
	if h.shuttingDown.Load() {
		writeJSONStatus(w, http.StatusServiceUnavailable, httpclient.TaskResponse{Status: "error", Error: "worker shutting down"})
		return
	}

	var payload taskPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONStatus(w, http.StatusBadRequest, httpclient.TaskResponse{Status: "error", Error: fmt.Sprintf("malformed task payload: %v", err)})
		return
	}

	if !h.slot.TryBeginReceiving(payload.VideoFile.Name) {
		writeJSONStatus(w, http.StatusConflict, httpclient.TaskResponse{Status: "error", Error: models.ErrWorkerBusy.Error()})
		return
	}

	inputPath := filepath.Join(h.workDir, payload.VideoFile.Name)
	outputName := "output_" + payload.VideoFile.Name
	outputPath := filepath.Join(h.workDir, outputName)

	data, err := base64.StdEncoding.DecodeString(payload.VideoFile.Data)
	if err != nil {
		h.slot.Fail(fmt.Sprintf("decoding upload: %v", err))
		writeJSONStatus(w, http.StatusBadRequest, httpclient.TaskResponse{Status: "error", Error: "malformed base64 payload"})
		return
	}
	if err := os.WriteFile(inputPath, data, 0o644); err != nil {
		h.slot.Fail(fmt.Sprintf("writing input file: %v", err))
		writeJSONStatus(w, http.StatusInternalServerError, httpclient.TaskResponse{Status: "error", Error: err.Error()})
		return
	}

	h.slot.BeginProcessing()

	taskCtx, cancelTask := context.WithCancel(context.Background())
	go func() {
		select {
		case <-r.Context().Done():
		case <-h.shutdownCtx.Done():
		}
		cancelTask()
	}()
	defer cancelTask()

	err = h.detector.Transcode(taskCtx, inputPath, outputPath, payload.FFmpegArgs, h.slot.UpdateProgress)
	if err != nil {
		if h.shutdownCtx.Err() != nil {
			h.slot.Stop()
		} else {
			h.slot.Fail(err.Error())
		}
		writeJSONStatus(w, http.StatusOK, httpclient.TaskResponse{Status: "fail", Error: err.Error()})
		return
	}

	h.slot.Complete()
	if h.discoveryPort > 0 {
		if err := discovery.AnnounceTaskComplete(h.discoveryPort, payload.TaskID); err != nil {
			h.log.Warn("announcing task completion", slog.String("error", err.Error()))
		}
	}
	writeJSONOutputFile(w, outputName)
}

func writeJSONStatus(w http.ResponseWriter, code int, resp httpclient.TaskResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}

func writeJSONOutputFile(w http.ResponseWriter, outputFile string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(struct {
		Status     string `json:"status"`
		OutputFile string `json:"output_file"`
	}{Status: "success", OutputFile: outputFile})
}

// ServeDownload handles GET /download?file=NAME.
func (h *Handlers) ServeDownload(w http.ResponseWriter, r *http.Request) {
	filename := r.URL.Query().Get("file")
	if filename == "" || filepath.Base(filename) != filename {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(h.workDir, filename)
	f, err := os.Open(path)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, f)
}

// RegisterChiRoutes wires the raw streaming endpoints onto router.
func (h *Handlers) RegisterChiRoutes(router chi.Router) {
	router.Post("/task", h.ServeTask)
	router.Get("/download", h.ServeDownload)
}
