package models

import "time"

// NodeRecord describes one Worker discovered over the UDP discovery
// fabric, keyed by "hostname@ip".
type NodeRecord struct {
	Hostname string
	IP       string
	// Status is the Worker-reported status blob (its execution-slot
	// snapshot, typically). The Controller treats it as opaque — it is
	// only displayed/logged, never parsed structurally, per spec.
	Status   map[string]any
	LastSeen time.Time
}

// Key returns the node-table key "hostname@ip" for this record.
func (n NodeRecord) Key() string {
	h := n.Hostname
	if h == "" {
		h = "unknown"
	}
	return h + "@" + n.IP
}
