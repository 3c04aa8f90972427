// Package server holds the two UDP roles that publish a simulation, the
// multiplayer hub and the spectator broadcast, plus a websocket feed of
// the same snapshots.
package server

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/asteroids-lan/internal/loop/config"
)

// readPoll bounds each blocking read so cancellation is noticed.
const readPoll = 500 * time.Millisecond

// handlerFunc turns one inbound datagram into an optional reply.
type handlerFunc func(from netip.AddrPort, payload []byte) (reply []byte, ok bool)

// Listen opens the UDP socket a role serves on.
func Listen(host string, port int) (*net.UDPConn, error) {
	addr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return nil, err
	}
	return net.ListenUDP("udp", addr)
}

// serve reads datagrams one at a time and writes each reply back to the
// sender. Send failures only affect that peer. It returns when ctx is
// done or the socket fails.
func serve(ctx context.Context, conn *net.UDPConn, logger *log.Logger, handle handlerFunc) error {
	buf := make([]byte, config.ControlBufferSize)
	for {
		if ctx.Err() != nil {
			return nil
		}

		if err := conn.SetReadDeadline(time.Now().Add(readPoll)); err != nil {
			return err
		}
		n, from, err := conn.ReadFromUDPAddrPort(buf)
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				continue
			}
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			// A previous reply bounced (ICMP unreachable); keep serving.
			logger.Debug("read failed", "err", err)
			continue
		}

		reply, ok := handle(from, buf[:n])
		if !ok {
			continue
		}
		if _, err := conn.WriteToUDPAddrPort(reply, from); err != nil {
			logger.Debug("reply failed", "addr", from, "bytes", len(reply), "err", err)
		}
	}
}
