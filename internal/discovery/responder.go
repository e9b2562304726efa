package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/ybyllc/transcoder-cluster/internal/models"
)

// StatusFunc returns the current status blob a Worker attaches to
// discovery_response and heartbeat packets (its execution slot snapshot).
type StatusFunc func() any

// Responder is the Worker-side half of the discovery fabric: it listens
// for "discovery" broadcasts from the Controller and answers directly
// (unicast) with a discovery_response carrying its hostname, IP, and
// current status.
type Responder struct {
	port   int
	status StatusFunc
	log    *slog.Logger
}

// NewResponder creates a Responder bound to port.
func NewResponder(port int, status StatusFunc, log *slog.Logger) *Responder {
	return &Responder{port: port, status: status, log: log}
}

// Run binds the UDP socket and answers discovery packets until ctx is
// canceled.
func (r *Responder) Run(ctx context.Context) error {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: r.port})
	if err != nil {
		return &models.ConfigurationError{Message: "binding discovery responder port", Err: err}
	}
	defer conn.Close()

	r.log.Info("discovery responder started", slog.Int("port", r.port))

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	hostname, _ := os.Hostname()
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
			r.log.Error("discovery responder read error", slog.String("error", err.Error()))
			continue
		}

		msg, err := Decode(buf[:n])
		if err != nil || msg.Type != TypeDiscovery {
			continue
		}

		localIP, ipErr := LocalIP()
		if ipErr != nil {
			localIP = addr.IP.String()
		}
		statusJSON, jsonErr := json.Marshal(r.status())
		if jsonErr != nil {
			r.log.Error("marshaling responder status", slog.String("error", jsonErr.Error()))
			continue
		}
		response := Message{
			Type:     TypeDiscoveryResponse,
			Hostname: hostname,
			IP:       localIP,
			Status:   statusJSON,
		}
		payload, err := response.Encode()
		if err != nil {
			continue
		}
		if _, err := conn.WriteToUDP(payload, addr); err != nil {
			r.log.Error("sending discovery response", slog.String("error", err.Error()))
		}
	}
}
