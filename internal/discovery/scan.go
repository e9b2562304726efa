package discovery

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// ScanSubnet probes hosts 1-254 of subnetPrefix (e.g. "192.168.1.") for a
// Worker's /ping endpoint, as a fallback when UDP broadcast discovery is
// unavailable (firewalled, VPN interposed). Bounded to maxConcurrency
// in-flight probes, mirroring the original's ThreadPoolExecutor(max_workers=100)
// but via an errgroup rather than an unbounded goroutine-per-IP fan-out.
func ScanSubnet(ctx context.Context, subnetPrefix string, port int, maxConcurrency int, log *slog.Logger) []string {
	if maxConcurrency <= 0 {
		maxConcurrency = 100
	}
	client := &http.Client{Timeout: 100 * time.Millisecond}

	var mu sync.Mutex
	var found []string

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrency)

	for i := 1; i < 255; i++ {
		ip := fmt.Sprintf("%s%d", subnetPrefix, i)
		g.Go(func() error {
			if pingWorker(gctx, client, ip, port) {
				mu.Lock()
				found = append(found, ip)
				mu.Unlock()
				log.Info("discovered worker via subnet scan", slog.String("ip", ip))
			}
			return nil
		})
	}
	_ = g.Wait()

	return found
}

func pingWorker(ctx context.Context, client *http.Client, ip string, port int) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("http://%s:%d/ping", ip, port), nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 16))
	if err != nil {
		return false
	}
	return string(body) == "pong"
}
