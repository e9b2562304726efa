// Package discovery implements the UDP broadcast discovery fabric: the
// Controller locates Workers, and Workers announce themselves, without any
// central registry (spec §4.1).
package discovery

import "encoding/json"

// Message types carried on the discovery wire (spec §4.1).
const (
	TypeDiscovery         = "discovery"
	TypeDiscoveryResponse = "discovery_response"
	TypeHeartbeat         = "heartbeat"
	TypeTaskComplete      = "task_complete"
)

// Message is the envelope for every UDP discovery packet. Fields not used
// by a given Type are left zero; status is carried as a raw JSON blob so
// Workers can attach arbitrary state (execution slot, capabilities) without
// the Controller needing to know their shape up front.
type Message struct {
	Type     string          `json:"type"`
	Hostname string          `json:"hostname,omitempty"`
	IP       string          `json:"ip,omitempty"`
	Status   json.RawMessage `json:"status,omitempty"`
	TaskID   string          `json:"task_id,omitempty"`
}

// Encode serializes m for transmission.
func (m Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Decode parses a received packet into a Message.
func Decode(data []byte) (Message, error) {
	var m Message
	err := json.Unmarshal(data, &m)
	return m, err
}
