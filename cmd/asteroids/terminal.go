package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/tomz197/asteroids-lan/internal/console"
	"github.com/tomz197/asteroids-lan/internal/draw"
	"github.com/tomz197/asteroids-lan/internal/input"
	"github.com/tomz197/asteroids-lan/internal/loop"
	"github.com/tomz197/asteroids-lan/internal/loop/config"
	"github.com/tomz197/asteroids-lan/internal/protocol"
)

// errQuit ends the game at the player's request.
var errQuit = errors.New("quit")

// interact puts the terminal in raw mode, draws e's game and forwards key
// transitions to send. A nil send only watches for quit. The returned
// func restores the terminal.
func (a *app) interact(ctx context.Context, g *errgroup.Group, e *loop.Engine, send func(protocol.Token) error) (func(), error) {
	if a.headless {
		return func() {}, nil
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("failed to enable raw mode: %w", err)
	}
	restore := func() {
		draw.ClearScreen(os.Stdout)
		_ = term.Restore(fd, oldState)
	}

	keys := input.StartStream(os.Stdin)
	v := console.NewViewer(e, os.Stdout, draw.DefaultTermSizeFunc, console.WithViewerLogger(a.logger))
	g.Go(func() error { return v.Run(ctx) })
	g.Go(func() error { return pumpControls(ctx, keys, send) })
	return restore, nil
}

// pumpControls samples the keyboard once per tick and sends every press
// and release.
func pumpControls(ctx context.Context, keys *input.Stream, send func(protocol.Token) error) error {
	ticker := time.NewTicker(config.TickTime)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			toks, held := keys.Transitions(now)
			if held.Quit {
				return errQuit
			}
			if send == nil {
				continue
			}
			for _, tok := range toks {
				if err := send(tok); err != nil {
					return err
				}
			}
		}
	}
}
