package discovery

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ybyllc/transcoder-cluster/internal/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRegistryUpsertAndSnapshot(t *testing.T) {
	r := NewRegistry(time.Hour, discardLogger(), nil)

	r.Upsert(models.NodeRecord{Hostname: "worker-1", IP: "192.168.1.10", LastSeen: time.Now()})
	r.Upsert(models.NodeRecord{Hostname: "worker-2", IP: "192.168.1.11", LastSeen: time.Now()})

	assert.Equal(t, 2, r.Count())

	rec, ok := r.Get("worker-1@192.168.1.10")
	require.True(t, ok, "expected worker-1 to be present")
	assert.Equal(t, "192.168.1.10", rec.IP)

	snap := r.Snapshot()
	assert.Len(t, snap, 2)
}

func TestRegistryEvictionFiresOnLost(t *testing.T) {
	var mu sync.Mutex
	var lost []string

	r := NewRegistry(50*time.Millisecond, discardLogger(), func(rec models.NodeRecord) {
		mu.Lock()
		lost = append(lost, rec.Key())
		mu.Unlock()
	})

	r.Upsert(models.NodeRecord{Hostname: "worker-1", IP: "192.168.1.10", LastSeen: time.Now()})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := len(lost)
		mu.Unlock()
		if n > 0 {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"worker-1@192.168.1.10"}, lost)
}
