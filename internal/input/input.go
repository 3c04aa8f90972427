// Package input turns raw terminal bytes into ship control transitions.
//
// A terminal only reports key presses (and auto-repeats), never releases,
// so a key counts as held for keyHoldDuration after its last byte.
package input

import (
	"io"
	"time"

	"github.com/tomz197/asteroids-lan/internal/protocol"
)

// keyHoldDuration is how long a key is considered "held" after its last
// press. Long enough to bridge the terminal's auto-repeat interval.
const keyHoldDuration = 150 * time.Millisecond

// Keys is the set of game keys held at one instant.
type Keys struct {
	Up    bool
	Left  bool
	Right bool
	Space bool
	Quit  bool
}

// keyState tracks the last time each key was pressed.
type keyState struct {
	up    time.Time
	left  time.Time
	right time.Time
	space time.Time
	quit  time.Time
}

// Stream delivers input bytes via a channel and tracks key state.
type Stream struct {
	ch    chan byte
	state keyState
	prev  Keys
}

// StartStream spawns a goroutine that reads from r and sends bytes to the
// stream. The goroutine ends when r does.
func StartStream(r io.Reader) *Stream {
	s := &Stream{ch: make(chan byte, 128)}
	go func() {
		buf := make([]byte, 64)
		for {
			n, err := r.Read(buf)
			for _, b := range buf[:n] {
				s.ch <- b
			}
			if err != nil {
				close(s.ch)
				return
			}
		}
	}()
	return s
}

// Poll drains all available bytes (non-blocking) and returns the keys held
// at now. Quit is also reported once the input has ended.
func (s *Stream) Poll(now time.Time) Keys {
	var buf []byte
	closed := false

drain:
	for {
		select {
		case b, ok := <-s.ch:
			if !ok {
				closed = true
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}

	parse(&s.state, buf, now)

	keys := s.state.held(now)
	if closed {
		keys.Quit = true
	}
	return keys
}

// Transitions polls the stream and returns the control tokens for every
// key pressed or released since the previous call, plus the held keys.
func (s *Stream) Transitions(now time.Time) ([]protocol.Token, Keys) {
	keys := s.Poll(now)
	toks := Diff(s.prev, keys)
	s.prev = keys
	return toks, keys
}

// Diff returns the press and release tokens that take prev to cur.
func Diff(prev, cur Keys) []protocol.Token {
	var toks []protocol.Token
	edge := func(was, is bool, press, release protocol.Token) {
		switch {
		case is && !was:
			toks = append(toks, press)
		case was && !is:
			toks = append(toks, release)
		}
	}
	edge(prev.Up, cur.Up, protocol.Up, protocol.StopUp)
	edge(prev.Left, cur.Left, protocol.Left, protocol.StopLeft)
	edge(prev.Right, cur.Right, protocol.Right, protocol.StopRight)
	edge(prev.Space, cur.Space, protocol.Space, protocol.StopSpace)
	return toks
}

// parse updates key timestamps from a chunk of terminal bytes, handling
// arrow-key escape sequences.
func parse(state *keyState, buf []byte, now time.Time) {
	for i := 0; i < len(buf); i++ {
		b := buf[i]

		// CSI sequence: ESC [ <code>
		if b == '\x1b' && i+2 < len(buf) && buf[i+1] == '[' {
			switch buf[i+2] {
			case 'A':
				state.up = now
				i += 2
				continue
			case 'C':
				state.right = now
				i += 2
				continue
			case 'D':
				state.left = now
				i += 2
				continue
			}
		}

		applyByteToState(state, b, now)
	}
}

// applyByteToState updates the key state timestamps based on the pressed byte.
func applyByteToState(state *keyState, b byte, now time.Time) {
	switch b {
	case 'q', 'Q', '\x03':
		state.quit = now
	case 'a', 'A', 'j', 'J':
		state.left = now
	case 'd', 'D', 'l', 'L':
		state.right = now
	case 'w', 'W', 'i', 'I':
		state.up = now
	case ' ':
		state.space = now
	}
}

func (k *keyState) held(now time.Time) Keys {
	return Keys{
		Up:    now.Sub(k.up) < keyHoldDuration,
		Left:  now.Sub(k.left) < keyHoldDuration,
		Right: now.Sub(k.right) < keyHoldDuration,
		Space: now.Sub(k.space) < keyHoldDuration,
		Quit:  now.Sub(k.quit) < keyHoldDuration,
	}
}
