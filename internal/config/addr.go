package config

import (
	"net"
	"strconv"
)

// OutboundIP returns the local address the kernel would use to reach the
// public internet. No packet is sent; a UDP "connect" only selects a route.
// Falls back to the loopback address when no route exists.
func OutboundIP(port int) string {
	conn, err := net.Dial("udp", net.JoinHostPort("8.8.8.8", strconv.Itoa(port)))
	if err != nil {
		return "127.0.0.1"
	}
	defer conn.Close()
	if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok {
		return addr.IP.String()
	}
	return "127.0.0.1"
}
