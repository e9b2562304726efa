package discovery

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"time"
)

// Heartbeater periodically broadcasts this Worker's status so the
// Controller's Registry entry stays fresh without a round-trip discovery
// exchange (spec §4.1).
type Heartbeater struct {
	port     int
	interval time.Duration
	status   StatusFunc
	log      *slog.Logger
}

// NewHeartbeater creates a Heartbeater that broadcasts every interval.
func NewHeartbeater(port int, interval time.Duration, status StatusFunc, log *slog.Logger) *Heartbeater {
	return &Heartbeater{port: port, interval: interval, status: status, log: log}
}

// Run broadcasts on a ticker until ctx is canceled.
func (h *Heartbeater) Run(ctx context.Context) error {
	hostname, _ := os.Hostname()
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	send := func() {
		localIP, err := LocalIP()
		if err != nil {
			h.log.Error("resolving local IP for heartbeat", slog.String("error", err.Error()))
			return
		}
		statusJSON, err := json.Marshal(h.status())
		if err != nil {
			h.log.Error("marshaling heartbeat status", slog.String("error", err.Error()))
			return
		}
		msg := Message{Type: TypeHeartbeat, Hostname: hostname, IP: localIP, Status: statusJSON}
		payload, err := msg.Encode()
		if err != nil {
			return
		}
		if err := broadcastUDP(h.port, payload); err != nil {
			h.log.Error("broadcasting heartbeat", slog.String("error", err.Error()))
			return
		}
		h.log.Debug("sent heartbeat", slog.String("hostname", hostname), slog.String("ip", localIP))
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			send()
		}
	}
}

// AnnounceTaskComplete broadcasts a task_complete notification, giving the
// Controller an early signal ahead of (or independent from) HTTP status
// polling.
func AnnounceTaskComplete(port int, taskID string) error {
	hostname, _ := os.Hostname()
	msg := Message{Type: TypeTaskComplete, Hostname: hostname, TaskID: taskID}
	payload, err := msg.Encode()
	if err != nil {
		return err
	}
	return broadcastUDP(port, payload)
}
