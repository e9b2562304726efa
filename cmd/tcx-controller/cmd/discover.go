package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ybyllc/transcoder-cluster/internal/discovery"
	"github.com/ybyllc/transcoder-cluster/internal/httpclient"
)

// discoverWorkers tries UDP broadcast discovery first, briefly, then falls
// back to a direct subnet ping-scan (spec §4.1).
func discoverWorkers(ctx context.Context, discoveryPort, workerPort int, log *slog.Logger) []string {
	registry := discovery.NewRegistry(30*time.Second, log, nil)
	listenCtx, cancel := context.WithTimeout(ctx, 1500*time.Millisecond)
	defer cancel()

	listener := discovery.NewListener(discoveryPort, registry, log)
	go func() { _ = listener.Run(listenCtx) }()

	broadcaster := discovery.NewBroadcaster(discoveryPort, time.Second, log)
	_ = broadcaster.Start(listenCtx)

	<-listenCtx.Done()

	var workers []string
	for _, rec := range registry.Snapshot() {
		workers = append(workers, rec.IP)
	}
	if len(workers) > 0 {
		return workers
	}

	return discovery.ScanSubnet(ctx, discovery.LocalSubnetPrefix(), workerPort, 100, log)
}

func probeWorkerStatus(ctx context.Context, workerIP string, workerPort int) string {
	client := httpclient.New(fmt.Sprintf("http://%s:%d", workerIP, workerPort))
	statusCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	status, err := client.Status(statusCtx)
	if err != nil {
		return "unreachable"
	}
	return status.Status
}
