package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Broadcaster periodically emits a "discovery" packet on the Controller
// side, so Workers can answer back without the Controller needing to know
// their addresses up front (spec §4.1). It runs as a cron job rather than
// a hand-rolled ticker: the Controller broadcasts once immediately at
// start and then on every tick of a fixed interval.
type Broadcaster struct {
	port     int
	interval time.Duration
	log      *slog.Logger
	cron     *cron.Cron
}

// NewBroadcaster creates a Broadcaster that fires every interval.
func NewBroadcaster(port int, interval time.Duration, log *slog.Logger) *Broadcaster {
	return &Broadcaster{port: port, interval: interval, log: log}
}

// Start begins periodic broadcasting in the background and sends one
// discovery packet immediately. Stop via ctx cancellation.
func (b *Broadcaster) Start(ctx context.Context) error {
	b.broadcastOnce()

	b.cron = cron.New(cron.WithParser(cron.NewParser(
		cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
	)))
	spec := fmt.Sprintf("@every %s", b.interval)
	if _, err := b.cron.AddFunc(spec, b.broadcastOnce); err != nil {
		return err
	}
	b.cron.Start()

	go func() {
		<-ctx.Done()
		stopCtx := b.cron.Stop()
		<-stopCtx.Done()
	}()
	return nil
}

func (b *Broadcaster) broadcastOnce() {
	msg := Message{Type: TypeDiscovery}
	payload, err := msg.Encode()
	if err != nil {
		b.log.Error("encoding discovery broadcast", slog.String("error", err.Error()))
		return
	}
	if err := broadcastUDP(b.port, payload); err != nil {
		b.log.Error("broadcasting discovery", slog.String("error", err.Error()))
		return
	}
	b.log.Debug("sent discovery broadcast", slog.Int("port", b.port))
}
