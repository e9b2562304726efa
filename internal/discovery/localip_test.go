package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsVPNOrLoopback(t *testing.T) {
	cases := []struct {
		ip   string
		want bool
	}{
		{"198.18.0.5", true},
		{"198.18.255.255", true},
		{"127.0.0.1", true},
		{"192.168.1.5", false},
		{"10.0.0.5", false},
	}
	for _, c := range cases {
		t.Run(c.ip, func(t *testing.T) {
			octets, err := parseOctets(c.ip)
			require.NoError(t, err)
			assert.Equal(t, c.want, isVPNOrLoopback(octets))
		})
	}
}

func TestIsRFC1918(t *testing.T) {
	cases := []struct {
		ip   string
		want bool
	}{
		{"192.168.1.5", true},
		{"10.1.2.3", true},
		{"172.16.0.1", true},
		{"172.31.255.255", true},
		{"172.32.0.1", false},
		{"8.8.8.8", false},
	}
	for _, c := range cases {
		t.Run(c.ip, func(t *testing.T) {
			octets, err := parseOctets(c.ip)
			require.NoError(t, err)
			assert.Equal(t, c.want, isRFC1918(octets))
		})
	}
}

func TestSubnetPrefix(t *testing.T) {
	prefix, ok := subnetPrefix("192.168.1.42")
	assert.True(t, ok)
	assert.Equal(t, "192.168.1.", prefix)

	_, ok = subnetPrefix("not-an-ip")
	assert.False(t, ok)
}
