// Command web serves a browser view of a broadcast game. It spectates one
// broadcast host and streams every snapshot over a WebSocket.
package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/tomz197/asteroids-lan/internal/config"
	"github.com/tomz197/asteroids-lan/internal/loop"
	"github.com/tomz197/asteroids-lan/internal/loop/client"
	gamecfg "github.com/tomz197/asteroids-lan/internal/loop/config"
	"github.com/tomz197/asteroids-lan/internal/loop/server"
)

const (
	defaultHost     = "0.0.0.0"
	defaultPort     = "8080"
	defaultGameHost = "127.0.0.1"
)

//go:embed index.html
var htmlPage string

func main() {
	host := config.GetEnv("WEB_HOST", defaultHost)
	port := config.GetEnv("WEB_PORT", defaultPort)
	sshHost := config.GetEnv("SSH_DISPLAY_HOST", "your-server.com")
	gameHost := config.GetEnv("ASTEROIDS_HOST", defaultGameHost)
	gamePort := config.GetEnvInt("ASTEROIDS_BROADCAST_PORT", gamecfg.BroadcastPort)

	logger := log.Default()
	conn, err := client.Dial(gameHost, gamePort)
	if err != nil {
		logger.Fatal("failed to reach game", "err", err)
	}
	mirror := loop.New("", loop.WithManualClock())
	spectator := client.NewSpectator(mirror, conn)

	page := strings.ReplaceAll(htmlPage, "{{.SSHHost}}", sshHost)
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, page)
	})
	mux.Handle("/ws", server.FeedHandler(mirror, logger.WithPrefix("feed")))

	srv := &http.Server{Addr: net.JoinHostPort(host, port), Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return mirror.Run(ctx) })
	g.Go(func() error { return spectator.Run(ctx) })
	g.Go(func() error {
		logger.Info("Starting web server", "url", "http://"+srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("server error", "err", err)
	}
}
