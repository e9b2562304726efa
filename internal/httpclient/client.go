// Package httpclient is the Controller's client for talking to Workers
// over the task HTTP protocol (spec §5). It deliberately carries no
// circuit breaker: the scheduler's own node-affinity-avoidance retry
// (spec §4.3) is the specified resilience mechanism for a misbehaving
// Worker, and a second independent breaker would change those retry
// semantics without spec grounding.
package httpclient

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ybyllc/transcoder-cluster/internal/models"
	"github.com/ybyllc/transcoder-cluster/internal/version"
)

// Per-endpoint timeouts (spec §5).
const (
	PingTimeout   = 100 * time.Millisecond
	StatusTimeout = 5 * time.Second
	TaskTimeout   = time.Hour
	// Downloads are open-ended: Download applies no timeout of its own,
	// neither an overall cap nor an idle-read limit.
)

// Client talks to a single Worker's HTTP endpoints.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client for the Worker reachable at baseURL (e.g.
// "http://192.168.1.20:9000").
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{},
	}
}

// Ping checks Worker liveness via GET /ping, expecting the literal body
// "pong" within PingTimeout.
func (c *Client) Ping(ctx context.Context) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, PingTimeout)
	defer cancel()

	resp, err := c.get(ctx, "/ping")
	if err != nil {
		return false, &models.TransportError{Op: "ping", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16))
	if err != nil {
		return false, &models.TransportError{Op: "ping", Err: err}
	}
	return string(body) == "pong", nil
}

// StatusResponse is the Worker's execution-slot snapshot (spec §5 GET /status).
type StatusResponse struct {
	Status      string  `json:"status"`
	CurrentTask string  `json:"current_task,omitempty"`
	Progress    int     `json:"progress"`
	Error       string  `json:"error,omitempty"`
}

// Status fetches the Worker's current execution slot.
func (c *Client) Status(ctx context.Context) (StatusResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, StatusTimeout)
	defer cancel()

	resp, err := c.get(ctx, "/status")
	if err != nil {
		return StatusResponse{}, &models.TransportError{Op: "status", Err: err}
	}
	defer resp.Body.Close()

	var out StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return StatusResponse{}, &models.TransportError{Op: "status", Err: err}
	}
	return out, nil
}

// Capabilities fetches the Worker's advertised FFmpeg capabilities.
func (c *Client) Capabilities(ctx context.Context) (models.CapabilityDescriptor, error) {
	ctx, cancel := context.WithTimeout(ctx, StatusTimeout)
	defer cancel()

	resp, err := c.get(ctx, "/capabilities")
	if err != nil {
		return models.CapabilityDescriptor{}, &models.TransportError{Op: "capabilities", Err: err}
	}
	defer resp.Body.Close()

	var out models.CapabilityDescriptor
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return models.CapabilityDescriptor{}, &models.TransportError{Op: "capabilities", Err: err}
	}
	return out, nil
}

// VideoFile names the uploaded input and carries its entire content as
// base64, matching the §4.2 task submission payload's video_file envelope.
type VideoFile struct {
	Name string `json:"name"`
	Data string `json:"data"`
}

// TaskRequest is the JSON envelope POSTed to /task: one self-contained
// request carrying the whole input file, no separate upload phase.
type TaskRequest struct {
	TaskID     string    `json:"task_id"`
	VideoFile  VideoFile `json:"video_file"`
	FFmpegArgs []string  `json:"ffmpeg_args"`
}

// TaskResponse acknowledges task completion (or failure); OutputFile names
// the staged result file on the Worker, to be fetched via Download.
type TaskResponse struct {
	Status     string `json:"status"`
	OutputFile string `json:"output_file,omitempty"`
	Error      string `json:"error,omitempty"`
}

// SubmitTask POSTs a task for execution. ErrWorkerBusy is returned when the
// Worker's execution slot was not idle (spec §5, HTTP 409).
func (c *Client) SubmitTask(ctx context.Context, req TaskRequest) (TaskResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, TaskTimeout)
	defer cancel()

	body, err := json.Marshal(req)
	if err != nil {
		return TaskResponse{}, &models.TransportError{Op: "task", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/task", bytes.NewReader(body))
	if err != nil {
		return TaskResponse{}, &models.TransportError{Op: "task", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return TaskResponse{}, &models.TransportError{Op: "task", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		return TaskResponse{}, models.ErrWorkerBusy
	}

	var out TaskResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return TaskResponse{}, &models.TransportError{Op: "task", Err: err}
	}
	if resp.StatusCode >= 400 {
		return out, &models.ProtocolError{Message: out.Error}
	}
	return out, nil
}

// Download fetches the named output file's bytes via GET /download?file=NAME.
// No overall timeout is applied; callers should bound ctx themselves for
// very large outputs.
func (c *Client) Download(ctx context.Context, file string) ([]byte, error) {
	resp, err := c.get(ctx, fmt.Sprintf("/download?file=%s", file))
	if err != nil {
		return nil, &models.TransportError{Op: "download", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &models.TransportError{Op: "download", Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", version.UserAgent())
	return c.http.Do(req)
}

// EncodeFile base64-encodes raw bytes for the TaskRequest.VideoFile.Data field.
func EncodeFile(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}
