package discovery

import (
	"fmt"
	"net"
)

// broadcastUDP sends a single UDP datagram to the LAN broadcast address on
// port. Go has no portable "<broadcast>" pseudo-address like Python's
// socket API, so 255.255.255.255 is used directly; this reaches hosts on
// the local link the way the original implementation's socket-level
// broadcast flag does.
func broadcastUDP(port int, payload []byte) error {
	conn, err := net.Dial("udp", fmt.Sprintf("255.255.255.255:%d", port))
	if err != nil {
		return err
	}
	defer conn.Close()
	_, err = conn.Write(payload)
	return err
}
