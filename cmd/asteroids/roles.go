package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/tomz197/asteroids-lan/internal/config"
	"github.com/tomz197/asteroids-lan/internal/loop"
	"github.com/tomz197/asteroids-lan/internal/loop/client"
	gamecfg "github.com/tomz197/asteroids-lan/internal/loop/config"
	"github.com/tomz197/asteroids-lan/internal/loop/server"
	"github.com/tomz197/asteroids-lan/internal/protocol"
)

const rolesUsage = "single|host|join|spectate|broadcast"

var errUsage = errors.New("invalid arguments")

type app struct {
	cfg        config.File
	role       string
	remote     string
	port       int
	headless   bool
	engineOpts []loop.Option
	logger     *log.Logger
}

func (a *app) run(ctx context.Context) error {
	switch a.role {
	case "single":
		return a.single(ctx)
	case "host":
		return a.host(ctx)
	case "broadcast":
		return a.broadcast(ctx)
	case "join":
		return a.join(ctx)
	case "spectate":
		return a.spectate(ctx)
	default:
		return fmt.Errorf("%w: unknown role %q, want %s", errUsage, a.role, rolesUsage)
	}
}

// nickname returns the configured nickname, requiring one unless a
// headless host may run with a placeholder ship.
func (a *app) nickname(optional bool) (string, error) {
	nick := a.cfg.Game.Nickname
	if protocol.ValidNickname(nick) || (optional && a.headless) {
		return nick, nil
	}
	return "", fmt.Errorf("%w: %s needs a nickname (-nick)", errUsage, a.role)
}

func (a *app) portOr(fallback int) int {
	if a.port > 0 {
		return a.port
	}
	return fallback
}

func (a *app) newEngine(nick string) *loop.Engine {
	opts := append([]loop.Option{loop.WithLogger(a.logger.WithPrefix("engine"))}, a.engineOpts...)
	return loop.New(nick, opts...)
}

// newMirror creates an engine that only changes by adopting snapshots.
func (a *app) newMirror() *loop.Engine {
	return loop.New("", loop.WithManualClock(), loop.WithLogger(a.logger.WithPrefix("mirror")))
}

// single plays alone.
func (a *app) single(ctx context.Context) error {
	nick, err := a.nickname(false)
	if err != nil {
		return err
	}
	e := a.newEngine(nick)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return e.Run(ctx) })
	restore, err := a.interact(ctx, g, e, applyTo(e))
	if err != nil {
		return err
	}
	defer restore()
	return g.Wait()
}

// host plays and lets joiners in through a hub.
func (a *app) host(ctx context.Context) error {
	nick, err := a.nickname(true)
	if err != nil {
		return err
	}
	port := a.portOr(a.cfg.Network.HubPort)
	conn, err := server.Listen(a.cfg.Network.Host, port)
	if err != nil {
		return err
	}
	defer conn.Close()

	e := a.newEngine(nick)
	hub := server.NewHub(e, conn,
		server.WithHubLogger(a.logger.WithPrefix("hub")),
		server.WithTickPerPacket(a.cfg.Game.TickPerPacket))
	a.advertise("join", port)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return e.Run(ctx) })
	g.Go(func() error { return hub.Run(ctx) })
	restore, err := a.interact(ctx, g, e, applyTo(e))
	if err != nil {
		return err
	}
	defer restore()
	return g.Wait()
}

// broadcast plays while spectators watch.
func (a *app) broadcast(ctx context.Context) error {
	nick, err := a.nickname(true)
	if err != nil {
		return err
	}
	port := a.portOr(a.cfg.Network.BroadcastPort)
	conn, err := server.Listen(a.cfg.Network.Host, port)
	if err != nil {
		return err
	}
	defer conn.Close()

	e := a.newEngine(nick)
	b := server.NewBroadcast(e, conn, a.logger.WithPrefix("broadcast"))
	a.advertise("spectate", port)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return e.Run(ctx) })
	g.Go(func() error { return b.Run(ctx) })
	restore, err := a.interact(ctx, g, e, applyTo(e))
	if err != nil {
		return err
	}
	defer restore()
	return g.Wait()
}

// join plays in a hub's game.
func (a *app) join(ctx context.Context) error {
	nick, err := a.nickname(false)
	if err != nil {
		return err
	}
	conn, err := client.Dial(a.remote, a.portOr(a.cfg.Network.HubPort))
	if err != nil {
		return err
	}

	mirror := a.newMirror()
	j := client.NewJoiner(mirror, conn, nick,
		client.WithJoinerTimeout(a.cfg.Network.JoinerTimeout()),
		client.WithJoinerPollPeriod(a.cfg.Network.PollPeriod()),
		client.WithJoinerLogger(a.logger.WithPrefix("joiner")))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return mirror.Run(ctx) })
	g.Go(func() error { return j.Run(ctx) })
	restore, err := a.interact(ctx, g, mirror, j.SendControl)
	if err != nil {
		j.Stop()
		return err
	}
	defer restore()
	return g.Wait()
}

// spectate watches a broadcast.
func (a *app) spectate(ctx context.Context) error {
	conn, err := client.Dial(a.remote, a.portOr(a.cfg.Network.BroadcastPort))
	if err != nil {
		return err
	}

	mirror := a.newMirror()
	s := client.NewSpectator(mirror, conn,
		client.WithSpectatorTimeout(a.cfg.Network.SpectatorTimeout()),
		client.WithSpectatorPeriod(a.cfg.Network.PollPeriod()),
		client.WithSpectatorLogger(a.logger.WithPrefix("spectator")))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return mirror.Run(ctx) })
	g.Go(func() error { return s.Run(ctx) })
	restore, err := a.interact(ctx, g, mirror, nil)
	if err != nil {
		s.Stop()
		return err
	}
	defer restore()
	return g.Wait()
}

// advertise logs the address others should use to reach this host.
func (a *app) advertise(role string, port int) {
	host := a.cfg.Network.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = config.OutboundIP(port)
	}
	a.logger.Info("waiting for players", "role", role, "addr", net.JoinHostPort(host, strconv.Itoa(port)),
		"tick", gamecfg.TickTime)
}

// applyTo feeds control tokens straight into a local engine.
func applyTo(e *loop.Engine) func(protocol.Token) error {
	return func(tok protocol.Token) error {
		_, err := e.ApplyControl(tok)
		return err
	}
}
