// Package loop runs a simulation on its own goroutine. The Engine is the
// only writer of its world.State; everything else talks to it through
// commands and reads published copies.
package loop

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/asteroids-lan/internal/loop/config"
	"github.com/tomz197/asteroids-lan/internal/object"
	"github.com/tomz197/asteroids-lan/internal/protocol"
	"github.com/tomz197/asteroids-lan/internal/snapshot"
	"github.com/tomz197/asteroids-lan/internal/world"
)

// ErrStopped is returned by commands sent to an engine that is not running.
var ErrStopped = errors.New("engine stopped")

// Engine owns one simulation. Run must be running for any command to
// complete.
type Engine struct {
	state *world.State
	cmds  chan func(*world.State)
	done  chan struct{}
	once  sync.Once

	view atomic.Pointer[world.State]

	subsMu sync.Mutex
	subs   map[chan struct{}]struct{}

	clock  bool
	logger *log.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithManualClock disables the internal tick timer. The simulation only
// advances through Tick or Do. Used by the hub tests and by mirrors that
// only ever adopt remote snapshots.
func WithManualClock() Option {
	return func(e *Engine) { e.clock = false }
}

// WithLogger sets the engine's logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithRand sets the random source for asteroid spawns.
func WithRand(rng object.Rand) Option {
	return func(e *Engine) { e.state.SetRand(rng) }
}

// New creates an engine for a game whose local ship has the given
// nickname. A blank nickname makes a spectator-only simulation.
func New(nickname string, opts ...Option) *Engine {
	e := &Engine{
		state:  world.New(nickname, nil),
		cmds:   make(chan func(*world.State)),
		done:   make(chan struct{}),
		subs:   make(map[chan struct{}]struct{}),
		clock:  true,
		logger: log.Default().WithPrefix("engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.view.Store(e.state.Clone())
	return e
}

// Run owns the simulation until ctx is cancelled. With the clock enabled
// it ticks every config.TickTime, falling back to config.IdleTickTime
// while the game is aborted or over.
func (e *Engine) Run(ctx context.Context) error {
	defer e.once.Do(func() { close(e.done) })

	e.logger.Debug("engine started", "nick", e.state.Ship.Nickname, "clock", e.clock)

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	if e.clock {
		timer = time.NewTimer(config.TickTime)
		defer timer.Stop()
		timerC = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			e.logger.Debug("engine stopped")
			return nil

		case fn := <-e.cmds:
			fn(e.state)
			e.publish()

		case <-timerC:
			start := time.Now()
			wait := config.IdleTickTime
			if e.state.Tick() {
				e.publish()
				wait = max(config.TickTime-time.Since(start), 0)
			}
			timer.Reset(wait)
		}
	}
}

// Do runs fn on the engine goroutine and waits for it to return. fn may
// replace *s entirely. Do returns ErrStopped once Run has returned.
func (e *Engine) Do(fn func(s *world.State)) error {
	finished := make(chan struct{})
	cmd := func(s *world.State) {
		defer close(finished)
		fn(s)
	}

	select {
	case e.cmds <- cmd:
	case <-e.done:
		return ErrStopped
	}
	<-finished
	return nil
}

// Tick advances the simulation once and reports whether it stepped.
func (e *Engine) Tick() (stepped bool, err error) {
	err = e.Do(func(s *world.State) { stepped = s.Tick() })
	return stepped, err
}

// Snapshot encodes the current state.
func (e *Engine) Snapshot() (b []byte, err error) {
	if doErr := e.Do(func(s *world.State) { b, err = snapshot.Encode(s) }); doErr != nil {
		return nil, doErr
	}
	return b, err
}

// ApplyControl applies a control token to the local ship. It reports
// whether the token was a control.
func (e *Engine) ApplyControl(tok protocol.Token) (applied bool, err error) {
	err = e.Do(func(s *world.State) { applied = tok.Apply(&s.Ship) })
	return applied, err
}

// AdoptSnapshot replaces the displayed content with a decoded snapshot.
// An undecodable buffer empties the mirror and returns the decode error.
func (e *Engine) AdoptSnapshot(b []byte) error {
	remote, decodeErr := snapshot.Decode(b)
	if err := e.Do(func(s *world.State) { s.Mirror(remote) }); err != nil {
		return err
	}
	if decodeErr != nil {
		return fmt.Errorf("adopt snapshot: %w", decodeErr)
	}
	return nil
}

// IsGameOver reports whether every ship in the game is destroyed.
func (e *Engine) IsGameOver() bool {
	return e.View().GameOver()
}

// Abort pauses the simulation until Reset.
func (e *Engine) Abort() error {
	return e.Do(func(s *world.State) { s.Abort() })
}

// Reset starts a new game with the same local nickname.
func (e *Engine) Reset() error {
	return e.Do(func(s *world.State) { s.Reset() })
}

// View returns the most recently published copy of the state. Callers
// may keep and modify it freely.
func (e *Engine) View() *world.State {
	return e.view.Load().Clone()
}

// Subscribe returns a channel that receives a value whenever a new state
// is published, and a function to stop the subscription. Signals are
// coalesced: a slow reader sees one pending signal, not a backlog.
func (e *Engine) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	e.subsMu.Lock()
	e.subs[ch] = struct{}{}
	e.subsMu.Unlock()

	return ch, func() {
		e.subsMu.Lock()
		delete(e.subs, ch)
		e.subsMu.Unlock()
	}
}

// Done is closed when Run returns.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

func (e *Engine) publish() {
	e.view.Store(e.state.Clone())

	e.subsMu.Lock()
	defer e.subsMu.Unlock()
	for ch := range e.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
