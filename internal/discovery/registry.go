package discovery

import (
	"log/slog"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/ybyllc/transcoder-cluster/internal/metrics"
	"github.com/ybyllc/transcoder-cluster/internal/models"
)

// Registry tracks discovered nodes with a TTL per entry, evicting ones
// that go stale without a fresh discovery_response or heartbeat. Resolves
// the "Discovery TTL" open question (spec §9): an entry expires after ttl
// (recommended 3x the heartbeat interval) with no refresh.
type Registry struct {
	cache *gocache.Cache
	log   *slog.Logger
}

// NewRegistry creates a Registry whose entries expire after ttl. onLost is
// invoked (on the cache's janitor goroutine) whenever a node's entry
// expires without being refreshed first.
func NewRegistry(ttl time.Duration, log *slog.Logger, onLost func(models.NodeRecord)) *Registry {
	c := gocache.New(ttl, ttl/2)
	r := &Registry{cache: c, log: log}
	if onLost != nil {
		c.OnEvicted(func(key string, value interface{}) {
			if rec, ok := value.(models.NodeRecord); ok {
				onLost(rec)
			}
			metrics.DiscoveredNodes.Set(float64(r.Count()))
		})
	}
	return r
}

// Upsert records or refreshes a node's entry, resetting its TTL.
func (r *Registry) Upsert(rec models.NodeRecord) {
	r.cache.SetDefault(rec.Key(), rec)
	metrics.DiscoveredNodes.Set(float64(r.Count()))
}

// Get returns the node record for key, if still present.
func (r *Registry) Get(key string) (models.NodeRecord, bool) {
	v, ok := r.cache.Get(key)
	if !ok {
		return models.NodeRecord{}, false
	}
	rec, ok := v.(models.NodeRecord)
	return rec, ok
}

// Snapshot returns all currently-known node records.
func (r *Registry) Snapshot() []models.NodeRecord {
	items := r.cache.Items()
	out := make([]models.NodeRecord, 0, len(items))
	for _, item := range items {
		if rec, ok := item.Object.(models.NodeRecord); ok {
			out = append(out, rec)
		}
	}
	return out
}

// Count returns the number of currently-known nodes.
func (r *Registry) Count() int {
	return r.cache.ItemCount()
}
