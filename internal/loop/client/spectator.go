package client

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/asteroids-lan/internal/loop"
	"github.com/tomz197/asteroids-lan/internal/loop/config"
	"github.com/tomz197/asteroids-lan/internal/protocol"
)

// Spectator watches a broadcast server. Every reply replaces the local
// mirror wholesale.
type Spectator struct {
	peer
	engine *loop.Engine
}

// SpectatorOption configures a Spectator.
type SpectatorOption func(*Spectator)

// WithSpectatorTimeout sets how long to wait for a broadcast reply.
func WithSpectatorTimeout(d time.Duration) SpectatorOption {
	return func(s *Spectator) { s.timeout = d }
}

// WithSpectatorPeriod sets the pause between requests.
func WithSpectatorPeriod(d time.Duration) SpectatorOption {
	return func(s *Spectator) { s.period = d }
}

// WithSpectatorLogger sets the spectator's logger.
func WithSpectatorLogger(l *log.Logger) SpectatorOption {
	return func(s *Spectator) { s.logger = l }
}

// NewSpectator creates a spectator probing the server conn is connected
// to and mirroring into engine.
func NewSpectator(engine *loop.Engine, conn *net.UDPConn, opts ...SpectatorOption) *Spectator {
	s := &Spectator{
		peer:   newPeer(conn, config.SpectatorTimeout, config.SpectatorPeriod, log.Default().WithPrefix("spectator")),
		engine: engine,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run polls the host until stopped. A missing reply means the host is gone and
// ends the spectator with ErrTimeout.
func (s *Spectator) Run(ctx context.Context) error {
	defer s.conn.Close()

	s.logger.Info("spectating", "addr", s.conn.RemoteAddr())
	for {
		if s.stopping(ctx) {
			return nil
		}

		if err := s.send([]byte(protocol.Watch)); err != nil {
			return err
		}
		reply, err := s.receive()
		if err != nil {
			return err
		}
		if err := s.engine.AdoptSnapshot(reply); err != nil {
			if errors.Is(err, loop.ErrStopped) {
				return err
			}
			s.logger.Debug("adopted empty state", "bytes", len(reply), "err", err)
		}
		s.pause(ctx)
	}
}

// Stop asks Run to end before its next request.
func (s *Spectator) Stop() {
	s.stop.Store(true)
}
