package discovery

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
)

// LocalIP returns this host's outbound LAN address by connecting a UDP
// socket to a well-known external address and reading back the local
// endpoint chosen by the kernel routing table. No packets are actually
// sent (UDP connect only resolves a route). A route that resolves through
// a VPN/virtual adapter (198.18.0.0/15) or loopback is rejected in favor
// of scanning interface addresses for an RFC1918 match, the same
// advertised-address rule spec §4.1 applies when picking the IP a
// discovery_response/heartbeat packet carries. Falls back to resolving
// the hostname when neither source yields a usable address.
func LocalIP() (string, error) {
	if ip, ok := outboundRouteIP(); ok {
		if octets, err := parseOctets(ip); err == nil && !isVPNOrLoopback(octets) {
			return ip, nil
		}
	}

	if ip, ok := firstRFC1918InterfaceIP(); ok {
		return ip, nil
	}

	hostname, herr := os.Hostname()
	if herr != nil {
		return "", fmt.Errorf("resolving local IP: no usable route, hostname lookup failed (%v)", herr)
	}
	addrs, herr := net.LookupHost(hostname)
	if herr != nil || len(addrs) == 0 {
		return "", fmt.Errorf("resolving local IP: no usable route, hostname lookup failed (%v)", herr)
	}
	return addrs[0], nil
}

// outboundRouteIP reads back the local endpoint the kernel routing table
// would choose for an outbound UDP packet, without sending one.
func outboundRouteIP() (string, bool) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "", false
	}
	defer conn.Close()
	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return "", false
	}
	return addr.IP.String(), true
}

// firstRFC1918InterfaceIP scans local interface addresses for the first
// private-range IPv4 address.
func firstRFC1918InterfaceIP() (string, bool) {
	ifaces, err := net.InterfaceAddrs()
	if err != nil {
		return "", false
	}
	for _, a := range ifaces {
		ipNet, ok := a.(*net.IPNet)
		if !ok || ipNet.IP.To4() == nil {
			continue
		}
		ip := ipNet.IP.String()
		octets, perr := parseOctets(ip)
		if perr != nil {
			continue
		}
		if isRFC1918(octets) {
			return ip, true
		}
	}
	return "", false
}

// isVPNOrLoopback reports whether ip falls in a range the original
// implementation excludes when guessing a real LAN subnet: 198.18.0.0/15
// (common VPN/virtual-adapter range) and 127.0.0.0/8 (loopback).
func isVPNOrLoopback(octets [4]int) bool {
	return (octets[0] == 198 && (octets[1] == 18 || octets[1] == 19)) || octets[0] == 127
}

// isRFC1918 reports whether ip is in one of the three private ranges, in
// the preference order the original scanner checks them: 192.168/16,
// 10/8, then 172.16/12.
func isRFC1918(octets [4]int) bool {
	if octets[0] == 192 && octets[1] == 168 {
		return true
	}
	if octets[0] == 10 {
		return true
	}
	if octets[0] == 172 && octets[1] >= 16 && octets[1] <= 31 {
		return true
	}
	return false
}

// LocalSubnetPrefix derives the "a.b.c." prefix of the local LAN subnet,
// for use by the fallback subnet scan (spec §4.1 scan_workers), falling
// back to a hard default of "192.168.1." matching the Python original when
// LocalIP can't resolve a usable address at all.
func LocalSubnetPrefix() string {
	if ip, err := LocalIP(); err == nil {
		if prefix, ok := subnetPrefix(ip); ok {
			return prefix
		}
	}
	return "192.168.1."
}

func parseOctets(ip string) ([4]int, error) {
	var out [4]int
	parts := strings.Split(ip, ".")
	if len(parts) != 4 {
		return out, fmt.Errorf("not an IPv4 address: %s", ip)
	}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return out, err
		}
		out[i] = n
	}
	return out, nil
}

func subnetPrefix(ip string) (string, bool) {
	parts := strings.Split(ip, ".")
	if len(parts) != 4 {
		return "", false
	}
	return strings.Join(parts[:3], ".") + ".", true
}
