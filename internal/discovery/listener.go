package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/ybyllc/transcoder-cluster/internal/models"
)

// Listener is the Controller-side half of the discovery fabric: it binds
// the shared discovery port and dispatches incoming discovery_response,
// heartbeat, and task_complete packets into a Registry.
type Listener struct {
	port     int
	registry *Registry
	log      *slog.Logger

	onTaskComplete func(hostname, ip, taskID string)
}

// NewListener creates a Listener bound to port, feeding discovered/refreshed
// nodes into registry.
func NewListener(port int, registry *Registry, log *slog.Logger) *Listener {
	return &Listener{port: port, registry: registry, log: log}
}

// OnTaskComplete sets the callback invoked when a task_complete broadcast
// arrives, ahead of (and independent from) the Controller's own HTTP-based
// status polling.
func (l *Listener) OnTaskComplete(fn func(hostname, ip, taskID string)) {
	l.onTaskComplete = fn
}

// Run binds the UDP socket and processes packets until ctx is canceled.
func (l *Listener) Run(ctx context.Context) error {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: l.port})
	if err != nil {
		return &models.ConfigurationError{Message: "binding discovery listener port", Err: err}
	}
	defer conn.Close()

	l.log.Info("discovery listener started", slog.Int("port", l.port))

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	buf := make([]byte, 4096)
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		_ = conn.SetReadDeadline(time.Now().Add(time.Second))
		n, addr, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			l.log.Error("discovery listener read error", slog.String("error", err.Error()))
			continue
		}
		msg, err := Decode(buf[:n])
		if err != nil {
			l.log.Debug("discarding malformed discovery packet", slog.String("error", err.Error()))
			continue
		}
		l.handle(msg, addr.IP.String())
	}
}

func (l *Listener) handle(msg Message, senderIP string) {
	switch msg.Type {
	case TypeDiscoveryResponse, TypeHeartbeat:
		rec := models.NodeRecord{
			Hostname: msg.Hostname,
			IP:       senderIP,
			LastSeen: time.Now(),
		}
		if len(msg.Status) > 0 {
			var status map[string]any
			if err := json.Unmarshal(msg.Status, &status); err == nil {
				rec.Status = status
			}
		}
		if rec.Hostname == "" {
			rec.Hostname = "unknown"
		}
		_, existed := l.registry.Get(rec.Key())
		l.registry.Upsert(rec)
		if !existed {
			l.log.Info("discovered node", slog.String("node", rec.Key()))
		}
	case TypeTaskComplete:
		l.log.Info("node reported task completion",
			slog.String("hostname", msg.Hostname),
			slog.String("ip", senderIP),
			slog.String("task_id", msg.TaskID),
		)
		if l.onTaskComplete != nil {
			l.onTaskComplete(msg.Hostname, senderIP, msg.TaskID)
		}
	}
}
