package server

import (
	"context"
	"net"
	"net/netip"

	"github.com/charmbracelet/log"
	"github.com/segmentio/ksuid"

	"github.com/tomz197/asteroids-lan/internal/loop"
	"github.com/tomz197/asteroids-lan/internal/protocol"
	"github.com/tomz197/asteroids-lan/internal/snapshot"
	"github.com/tomz197/asteroids-lan/internal/world"
)

// Hub is the authoritative multiplayer server. Each datagram is folded
// into the host's simulation, the simulation is ticked once, and the
// sender gets the new snapshot back. Datagrams are handled one at a time.
type Hub struct {
	engine        *loop.Engine
	conn          *net.UDPConn
	logger        *log.Logger
	tickPerPacket bool
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithHubLogger sets the hub's logger.
func WithHubLogger(l *log.Logger) HubOption {
	return func(h *Hub) { h.logger = l }
}

// WithTickPerPacket controls whether each datagram advances the
// simulation. On by default; with it off the hub only replies and the
// engine clock alone drives the game.
func WithTickPerPacket(on bool) HubOption {
	return func(h *Hub) { h.tickPerPacket = on }
}

// NewHub creates a hub serving engine's simulation on conn.
func NewHub(engine *loop.Engine, conn *net.UDPConn, opts ...HubOption) *Hub {
	h := &Hub{
		engine:        engine,
		conn:          conn,
		logger:        log.Default().WithPrefix("hub"),
		tickPerPacket: true,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Addr returns the address the hub listens on.
func (h *Hub) Addr() net.Addr {
	return h.conn.LocalAddr()
}

// Run serves datagrams until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) error {
	h.logger.Info("hub listening", "addr", h.Addr())
	return serve(ctx, h.conn, h.logger, h.Handle)
}

// Handle applies one datagram from a joiner and returns the reply. A
// DISCONNECT gets no reply.
func (h *Hub) Handle(from netip.AddrPort, payload []byte) ([]byte, bool) {
	msg := protocol.Parse(payload)

	var (
		reply  []byte
		encErr error
	)
	err := h.engine.Do(func(s *world.State) {
		if msg.Token == protocol.Disconnect {
			h.disconnect(s, from)
			return
		}

		if msg.Token == protocol.Connect {
			h.connect(s, from, msg.Nickname)
		}

		me := s.IndexOf(from.Addr())
		switch {
		case msg.Token.IsControl() && me != world.NoParticipant:
			msg.Token.Apply(&s.Participants[me].Ship)
		case !msg.Token.Known():
			h.logger.Debug("ignoring unknown token", "addr", from, "bytes", len(payload))
		}

		s.Me = me
		if h.tickPerPacket {
			s.Tick()
		}
		reply, encErr = snapshot.Encode(s)
	})
	if err != nil {
		h.logger.Debug("engine unavailable", "err", err)
		return nil, false
	}
	if msg.Token == protocol.Disconnect {
		return nil, false
	}
	if encErr != nil {
		h.logger.Error("snapshot not sent", "addr", from, "err", encErr)
		return nil, false
	}
	return reply, true
}

func (h *Hub) connect(s *world.State, from netip.AddrPort, nickname string) {
	if !protocol.ValidNickname(world.ClipNickname(nickname)) {
		h.logger.Debug("connect without a usable nickname", "addr", from)
		return
	}
	if i := s.IndexOf(from.Addr()); i != world.NoParticipant {
		h.logger.Debug("already connected", "addr", from, "index", i)
		return
	}
	session := ksuid.New().String()
	i, _ := s.Connect(from, nickname, session)
	h.logger.Info("participant joined", "addr", from, "nick", s.Participants[i].Ship.Nickname, "session", session, "index", i)
}

// disconnect swaps in a copy of the state without the sender.
func (h *Hub) disconnect(s *world.State, from netip.AddrPort) {
	i := s.IndexOf(from.Addr())
	if i == world.NoParticipant {
		return
	}
	p := s.Participants[i]
	*s = *s.Without(from.Addr())
	h.logger.Info("participant left", "addr", from, "nick", p.Ship.Nickname, "session", p.Session)
}
