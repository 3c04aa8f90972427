package client

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/asteroids-lan/internal/loop"
	"github.com/tomz197/asteroids-lan/internal/loop/config"
	"github.com/tomz197/asteroids-lan/internal/object"
	"github.com/tomz197/asteroids-lan/internal/protocol"
	"github.com/tomz197/asteroids-lan/internal/snapshot"
	"github.com/tomz197/asteroids-lan/internal/world"
)

// Joiner plays in a hub's game. It polls the hub for snapshots and
// mirrors them into a local engine, with its own ship as the local ship
// and the hub's host ship shown as one more participant.
type Joiner struct {
	peer
	engine   *loop.Engine
	nickname string
	hub      netip.AddrPort
}

// JoinerOption configures a Joiner.
type JoinerOption func(*Joiner)

// WithJoinerTimeout sets how long to wait for a hub reply.
func WithJoinerTimeout(d time.Duration) JoinerOption {
	return func(j *Joiner) { j.timeout = d }
}

// WithJoinerPollPeriod sets the pause between polls.
func WithJoinerPollPeriod(d time.Duration) JoinerOption {
	return func(j *Joiner) { j.period = d }
}

// WithJoinerLogger sets the joiner's logger.
func WithJoinerLogger(l *log.Logger) JoinerOption {
	return func(j *Joiner) { j.logger = l }
}

// NewJoiner creates a joiner talking to the hub conn is connected to and
// mirroring into engine.
func NewJoiner(engine *loop.Engine, conn *net.UDPConn, nickname string, opts ...JoinerOption) *Joiner {
	j := &Joiner{
		peer:     newPeer(conn, config.JoinerTimeout, config.JoinerPollPeriod, log.Default().WithPrefix("joiner")),
		engine:   engine,
		nickname: nickname,
	}
	if raddr, ok := conn.RemoteAddr().(*net.UDPAddr); ok {
		j.hub = raddr.AddrPort()
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Run connects and polls until stopped. Losing the hub, or the hub no
// longer listing this player, ends the joiner with an error.
func (j *Joiner) Run(ctx context.Context) error {
	defer j.conn.Close()

	j.logger.Info("joining", "addr", j.hub, "nick", j.nickname)
	if err := j.send(protocol.ConnectMessage(j.nickname)); err != nil {
		return err
	}

	for {
		if j.stopping(ctx) {
			j.logger.Info("leaving", "addr", j.hub)
			if err := j.send(protocol.Disconnect.Bytes()); err != nil {
				j.logger.Debug("disconnect not sent", "addr", j.hub, "err", err)
			}
			return nil
		}

		if err := j.send(protocol.Poll.Bytes()); err != nil {
			return err
		}
		reply, err := j.receive()
		if err != nil {
			return err
		}
		if err := j.adopt(reply); err != nil {
			return err
		}
		j.pause(ctx)
	}
}

// SendControl forwards a key transition to the hub immediately.
func (j *Joiner) SendControl(tok protocol.Token) error {
	if !tok.IsControl() {
		return fmt.Errorf("not a control token: %q", tok)
	}
	return j.send(tok.Bytes())
}

// Stop asks Run to disconnect before its next poll.
func (j *Joiner) Stop() {
	j.stop.Store(true)
}

func (j *Joiner) adopt(reply []byte) error {
	remote, err := snapshot.Decode(reply)
	if err != nil {
		j.logger.Debug("skipping reply", "bytes", len(reply), "err", err)
		return nil
	}
	view, err := JoinerView(remote, j.hub)
	if err != nil {
		return err
	}
	return j.engine.Do(func(s *world.State) { s.Mirror(view) })
}

// JoinerView rebuilds a hub reply from the joiner's point of view: the
// participant named by reply.Me becomes the local ship, every other
// participant is kept, and the hub's own ship is added as a participant
// at the hub's address unless the hub runs without a ship of its own.
func JoinerView(reply *world.State, hub netip.AddrPort) (*world.State, error) {
	if reply.Me < 0 || reply.Me >= len(reply.Participants) {
		return nil, fmt.Errorf("%w: index %d of %d", ErrBadIndex, reply.Me, len(reply.Participants))
	}

	view := reply.Clone()
	me := view.Participants[reply.Me]
	view.Ship = me.Ship
	view.Bullets = me.Bullets

	others := make([]object.Participant, 0, len(view.Participants))
	for i, p := range view.Participants {
		if i != reply.Me {
			others = append(others, p)
		}
	}
	if !reply.Ship.IsPlaceholder() {
		others = append(others, object.Participant{
			Addr:    hub.Addr(),
			Port:    hub.Port(),
			Ship:    reply.Ship,
			Bullets: object.CloneBullets(reply.Bullets),
		})
	}
	view.Participants = others
	view.Me = world.NoParticipant
	return view, nil
}
