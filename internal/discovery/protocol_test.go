package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageRoundTrip(t *testing.T) {
	msg := Message{Type: TypeDiscoveryResponse, Hostname: "worker-1", IP: "192.168.1.10", Status: []byte(`{"status":"idle"}`)}

	payload, err := msg.Encode()
	require.NoError(t, err)

	decoded, err := Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, msg.Type, decoded.Type)
	assert.Equal(t, msg.Hostname, decoded.Hostname)
	assert.Equal(t, msg.IP, decoded.IP)
}

func TestDecodeMalformed(t *testing.T) {
	_, err := Decode([]byte("not json"))
	assert.Error(t, err)
}
