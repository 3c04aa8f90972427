// Command ssh serves a broadcast game to SSH terminals. It spectates one
// broadcast host and shows its arena and scoreboard to every session.
package main

import (
	"context"
	"errors"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"golang.org/x/sync/errgroup"

	"github.com/tomz197/asteroids-lan/internal/config"
	"github.com/tomz197/asteroids-lan/internal/console"
	"github.com/tomz197/asteroids-lan/internal/loop"
	"github.com/tomz197/asteroids-lan/internal/loop/client"
	gamecfg "github.com/tomz197/asteroids-lan/internal/loop/config"
)

const (
	defaultHost        = "::"
	defaultPort        = "2222"
	defaultHostKeyPath = "/app/keys/host_key"
	defaultGameHost    = "127.0.0.1"
)

func main() {
	host := config.GetEnv("SSH_HOST", defaultHost)
	port := config.GetEnv("SSH_PORT", defaultPort)
	hostKeyPath := config.GetEnv("SSH_HOST_KEY", defaultHostKeyPath)
	gameHost := config.GetEnv("ASTEROIDS_HOST", defaultGameHost)
	gamePort := config.GetEnvInt("ASTEROIDS_BROADCAST_PORT", gamecfg.BroadcastPort)

	logger := log.Default()
	if level, err := log.ParseLevel(config.GetEnv("ASTEROIDS_LOG_LEVEL", "info")); err == nil {
		logger.SetLevel(level)
	}
	logger.Info("SSH config", "host", host, "port", port, "hostKeyPath", hostKeyPath,
		"game", net.JoinHostPort(gameHost, strconv.Itoa(gamePort)))

	conn, err := client.Dial(gameHost, gamePort)
	if err != nil {
		logger.Fatal("failed to reach game", "err", err)
	}
	mirror := loop.New("", loop.WithManualClock())
	spectator := client.NewSpectator(mirror, conn)

	s, err := console.NewServer(net.JoinHostPort(host, port), hostKeyPath, mirror, logger.WithPrefix("ssh"))
	if err != nil {
		logger.Fatal("failed to create server", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return mirror.Run(ctx) })
	g.Go(func() error { return spectator.Run(ctx) })
	g.Go(func() error {
		logger.Info("Starting SSH server", "addr", s.Addr)
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("gateway stopped", "err", err)
	}
}
