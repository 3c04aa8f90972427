package server

import (
	"context"
	"net"
	"net/netip"

	"github.com/charmbracelet/log"

	"github.com/tomz197/asteroids-lan/internal/loop"
	"github.com/tomz197/asteroids-lan/internal/snapshot"
)

// Broadcast republishes a locally running game to spectators. Any
// datagram is answered with the latest published snapshot; the payload is
// ignored and the simulation is never touched.
type Broadcast struct {
	engine *loop.Engine
	conn   *net.UDPConn
	logger *log.Logger
}

// NewBroadcast creates a broadcast server for engine on conn.
func NewBroadcast(engine *loop.Engine, conn *net.UDPConn, logger *log.Logger) *Broadcast {
	if logger == nil {
		logger = log.Default().WithPrefix("broadcast")
	}
	return &Broadcast{engine: engine, conn: conn, logger: logger}
}

// Addr returns the address the server listens on.
func (b *Broadcast) Addr() net.Addr {
	return b.conn.LocalAddr()
}

// Run serves spectator requests until ctx is cancelled.
func (b *Broadcast) Run(ctx context.Context) error {
	b.logger.Info("broadcast listening", "addr", b.Addr())
	return serve(ctx, b.conn, b.logger, b.Handle)
}

// Handle answers one spectator request.
func (b *Broadcast) Handle(from netip.AddrPort, _ []byte) ([]byte, bool) {
	reply, err := snapshot.Encode(b.engine.View())
	if err != nil {
		b.logger.Error("snapshot not sent", "addr", from, "err", err)
		return nil, false
	}
	return reply, true
}
