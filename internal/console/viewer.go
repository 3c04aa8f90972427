package console

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/asteroids-lan/internal/draw"
	"github.com/tomz197/asteroids-lan/internal/loop"
	"github.com/tomz197/asteroids-lan/internal/loop/config"
	"github.com/tomz197/asteroids-lan/internal/world"
)

// Viewer redraws an engine's game on a terminal whenever a new snapshot is
// published, and at least every refresh period.
type Viewer struct {
	engine  *loop.Engine
	out     *draw.ChunkWriter
	raw     io.Writer
	size    draw.TermSizeFunc
	board   *Board
	radar   *Radar
	refresh time.Duration
	logger  *log.Logger

	lastW, lastH int
}

// ViewerOption configures a Viewer.
type ViewerOption func(*Viewer)

// WithBoard sets the scoreboard styles.
func WithBoard(b *Board) ViewerOption {
	return func(v *Viewer) { v.board = b }
}

// WithRefresh sets the longest time between two frames.
func WithRefresh(d time.Duration) ViewerOption {
	return func(v *Viewer) { v.refresh = d }
}

// WithViewerLogger sets the viewer's logger.
func WithViewerLogger(l *log.Logger) ViewerOption {
	return func(v *Viewer) { v.logger = l }
}

// NewViewer creates a viewer drawing engine's game to out, sized by size.
func NewViewer(engine *loop.Engine, out io.Writer, size draw.TermSizeFunc, opts ...ViewerOption) *Viewer {
	v := &Viewer{
		engine:  engine,
		out:     draw.NewChunkWriter(out),
		raw:     out,
		size:    size,
		radar:   NewRadar(0, 0),
		refresh: config.ConsoleRefresh,
		logger:  log.Default().WithPrefix("console"),
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.board == nil {
		v.board = NewBoard(nil)
	}
	return v
}

// Run draws until ctx ends or the engine stops.
func (v *Viewer) Run(ctx context.Context) error {
	draw.HideCursor(v.raw)
	draw.ClearScreen(v.raw)
	defer draw.ShowCursor(v.raw)

	updates, unsubscribe := v.engine.Subscribe()
	defer unsubscribe()

	ticker := time.NewTicker(v.refresh)
	defer ticker.Stop()

	for {
		if err := v.Frame(v.engine.View()); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-v.engine.Done():
			return nil
		case <-updates:
		case <-ticker.C:
		}
	}
}

// Frame draws one frame of s: the radar on top, the scoreboard below.
func (v *Viewer) Frame(s *world.State) error {
	w, h, err := v.size()
	if err != nil {
		return err
	}
	if w != v.lastW || h != v.lastH {
		draw.ClearScreen(v.out)
		v.lastW, v.lastH = w, h
	}

	lines := v.board.Lines(s)
	cols, rows := radarSize(w, h-len(lines)-1)
	v.radar.Resize(cols, rows)
	v.radar.Draw(s)
	if err := v.radar.Canvas().Render(v.out, 1, 1); err != nil {
		return err
	}

	for i, line := range lines {
		v.out.WriteAt(1, rows+2+i, line)
	}
	return v.out.Flush()
}

// radarSize fits a square arena into cols by rows terminal cells. A cell
// holds two square sub-pixels stacked, so the radar is twice as wide as high.
func radarSize(cols, rows int) (int, int) {
	if rows < 1 || cols < 2 {
		return 0, 0
	}
	rows = min(rows, cols/2)
	return rows * 2, rows
}
