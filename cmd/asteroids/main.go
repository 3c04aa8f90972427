// Command asteroids plays, hosts, joins or watches a LAN Asteroids game.
//
// Usage:
//
//	asteroids [flags] single|host|join|spectate|broadcast
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/tomz197/asteroids-lan/internal/config"
	"github.com/tomz197/asteroids-lan/internal/loop"
)

const defaultConfigPath = "asteroids.toml"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("asteroids", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: asteroids [flags] %s\n", rolesUsage)
		fs.PrintDefaults()
	}
	var (
		configPath = fs.String("config", defaultConfigPath, "TOML configuration file")
		nickname   = fs.String("nick", "", "nickname of your ship")
		remote     = fs.String("connect", "127.0.0.1", "host to join or spectate")
		bind       = fs.String("bind", "", "address to listen on when hosting or broadcasting")
		port       = fs.Int("port", 0, "UDP port (default depends on the role)")
		seed       = fs.Int64("seed", 0, "random seed, 0 picks one")
		logLevel   = fs.String("log-level", "", "debug, info, warn or error")
		logFile    = fs.String("log-file", "", "write logs here while the terminal is in use")
		headless   = fs.Bool("headless", false, "no terminal display or keyboard")
	)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "nick":
			cfg.Game.Nickname = *nickname
		case "bind":
			cfg.Network.Host = *bind
		case "seed":
			cfg.Game.Seed = *seed
		case "log-level":
			cfg.Log.Level = *logLevel
		}
	})

	a := &app{
		cfg:      cfg,
		role:     fs.Arg(0),
		remote:   *remote,
		port:     *port,
		headless: *headless || !term.IsTerminal(int(os.Stdin.Fd())),
	}
	if cfg.Game.Seed != 0 {
		a.engineOpts = append(a.engineOpts, loop.WithRand(rand.New(rand.NewSource(cfg.Game.Seed))))
	}

	out, closeLog, err := logOutput(a.headless, *logFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "log: %v\n", err)
		return 1
	}
	defer closeLog()
	a.logger, err = newLogger(out, cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "log: %v\n", err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = a.run(ctx)
	switch {
	case err == nil, errors.Is(err, errQuit):
		return 0
	case errors.Is(err, errUsage):
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		return 2
	default:
		a.logger.Error("game ended", "role", a.role, "err", err)
		if !a.headless && *logFile == "" {
			fmt.Fprintf(os.Stderr, "asteroids %s: %v\n", a.role, err)
		}
		return 1
	}
}

// logOutput picks where logs go: stderr when the terminal is free, else
// the log file or nowhere.
func logOutput(headless bool, path string) (io.Writer, func(), error) {
	switch {
	case path != "":
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		return f, func() { f.Close() }, nil
	case headless:
		return os.Stderr, func() {}, nil
	default:
		return io.Discard, func() {}, nil
	}
}

func newLogger(w io.Writer, c config.LogConfig) (*log.Logger, error) {
	level, err := log.ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", c.Level, err)
	}
	logger := log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: c.Timestamps,
	})
	log.SetDefault(logger)
	return logger, nil
}
