package console

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"

	"github.com/tomz197/asteroids-lan/internal/draw"
	"github.com/tomz197/asteroids-lan/internal/input"
	"github.com/tomz197/asteroids-lan/internal/loop"
)

// quitPoll is how often a session's keyboard is checked for quit.
const quitPoll = 50 * time.Millisecond

// NewServer creates an SSH server that shows engine's game to every
// session. An empty hostKeyPath uses an in-memory key.
func NewServer(addr, hostKeyPath string, engine *loop.Engine, logger *log.Logger) (*ssh.Server, error) {
	if logger == nil {
		logger = log.Default().WithPrefix("ssh")
	}
	opts := []ssh.Option{
		wish.WithAddress(addr),
		wish.WithMiddleware(
			Middleware(engine, logger),
			activeterm.Middleware(),
			logging.MiddlewareWithLogger(logger),
		),
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}
	if hostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(hostKeyPath))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		return nil, fmt.Errorf("create ssh server: %w", err)
	}
	return s, nil
}

// Middleware runs a Viewer for each session until the user presses q or
// disconnects.
func Middleware(engine *loop.Engine, logger *log.Logger) wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(sess ssh.Session) {
			pty, winCh, ok := sess.Pty()
			if !ok {
				fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
				next(sess)
				return
			}
			logger.Info("session started", "user", sess.User(), "addr", sess.RemoteAddr(),
				"term", pty.Term, "width", pty.Window.Width, "height", pty.Window.Height)

			size := newSizeTracker(pty.Window.Width, pty.Window.Height)
			go func() {
				for win := range winCh {
					size.update(win.Width, win.Height)
				}
			}()

			ctx, cancel := context.WithCancel(sess.Context())
			defer cancel()
			go watchQuit(ctx, input.StartStream(sess), cancel)

			v := NewViewer(engine, sess, size.getSize,
				WithBoard(NewBoard(bubbletea.MakeRenderer(sess))),
				WithViewerLogger(logger))
			if err := v.Run(ctx); err != nil {
				logger.Warn("session failed", "user", sess.User(), "err", err)
			}
			draw.ClearScreen(sess)

			logger.Info("session ended", "user", sess.User())
			next(sess)
		}
	}
}

// watchQuit cancels when the keyboard asks to quit or its input ends.
func watchQuit(ctx context.Context, keys *input.Stream, cancel context.CancelFunc) {
	ticker := time.NewTicker(quitPoll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if keys.Poll(now).Quit {
				cancel()
				return
			}
		}
	}
}

// sizeTracker tracks terminal size from SSH window change events.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}

var _ draw.TermSizeFunc = (*sizeTracker)(nil).getSize
