// Package client holds the two roles that mirror a remote game: the
// joiner, which plays in a hub's game, and the spectator, which watches a
// broadcast. Both keep a local engine that only ever adopts what the
// remote side sends.
package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/asteroids-lan/internal/loop/config"
)

var (
	// ErrTimeout means the remote side stopped answering. The role is over.
	ErrTimeout = errors.New("no reply from host")
	// ErrBadIndex means the hub's reply does not contain this joiner.
	ErrBadIndex = errors.New("hub reply does not include this player")
)

// drainWait is how long to look for further queued replies.
const drainWait = time.Millisecond

// Dial opens a UDP socket connected to a remote role.
func Dial(host string, port int) (*net.UDPConn, error) {
	raddr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", host, err)
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", raddr, err)
	}
	return conn, nil
}

// peer is the request/reply plumbing shared by both roles.
type peer struct {
	conn    *net.UDPConn
	timeout time.Duration
	period  time.Duration
	logger  *log.Logger
	stop    atomic.Bool
	buf     []byte
}

func newPeer(conn *net.UDPConn, timeout, period time.Duration, logger *log.Logger) peer {
	return peer{
		conn:    conn,
		timeout: timeout,
		period:  period,
		logger:  logger,
		buf:     make([]byte, config.MaxDatagramSize),
	}
}

// stopping reports whether the loop should end before its next send.
func (p *peer) stopping(ctx context.Context) bool {
	return p.stop.Load() || ctx.Err() != nil
}

// send writes one datagram to the remote role.
func (p *peer) send(payload []byte) error {
	if _, err := p.conn.Write(payload); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	return nil
}

// receive waits up to the timeout for the next datagram and returns the
// newest one queued. The returned slice is only valid until the next call.
func (p *peer) receive() ([]byte, error) {
	deadline := time.Now().Add(p.timeout)
	for {
		if err := p.conn.SetReadDeadline(deadline); err != nil {
			return nil, err
		}
		n, err := p.conn.Read(p.buf)
		if err == nil {
			return p.buf[:p.drain(n)], nil
		}
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrTimeout, p.timeout)
		}
		if errors.Is(err, net.ErrClosed) {
			return nil, err
		}
		// Connection refused from an earlier datagram; the deadline
		// still bounds the wait.
		p.logger.Debug("read failed", "err", err)
	}
}

// drain skips replies that queued up behind the one just read, such as
// the hub's answers to control messages, and returns the newest length.
func (p *peer) drain(n int) int {
	for {
		if err := p.conn.SetReadDeadline(time.Now().Add(drainWait)); err != nil {
			return n
		}
		m, err := p.conn.Read(p.buf)
		if err != nil {
			return n
		}
		n = m
	}
}

// pause waits one poll period or until ctx ends.
func (p *peer) pause(ctx context.Context) {
	if p.period <= 0 {
		return
	}
	t := time.NewTimer(p.period)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
