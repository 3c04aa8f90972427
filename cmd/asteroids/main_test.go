package main

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/asteroids-lan/internal/config"
	"github.com/tomz197/asteroids-lan/internal/input"
	"github.com/tomz197/asteroids-lan/internal/protocol"
)

func TestRunRejectsBadArguments(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "none.toml")
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"no role", []string{"-config", cfg}, 2},
		{"unknown role", []string{"-config", cfg, "-headless", "dance"}, 2},
		{"single without nick", []string{"-config", cfg, "-headless", "single"}, 2},
		{"bad log level", []string{"-config", cfg, "-headless", "-log-level", "loud", "single"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := run(tt.args); got != tt.want {
				t.Errorf("run(%v) = %d, want %d", tt.args, got, tt.want)
			}
		})
	}
}

func TestNickname(t *testing.T) {
	a := &app{cfg: config.Default(), role: "host", headless: true}
	if _, err := a.nickname(true); err != nil {
		t.Errorf("headless host without nick: %v", err)
	}
	if _, err := a.nickname(false); !errors.Is(err, errUsage) {
		t.Errorf("join without nick: err = %v, want errUsage", err)
	}
	a.headless = false
	if _, err := a.nickname(true); !errors.Is(err, errUsage) {
		t.Errorf("interactive host without nick: err = %v, want errUsage", err)
	}
	a.cfg.Game.Nickname = "alice"
	if nick, err := a.nickname(false); err != nil || nick != "alice" {
		t.Errorf("nickname() = %q, %v", nick, err)
	}
}

func TestPortOr(t *testing.T) {
	a := &app{}
	if got := a.portOr(8888); got != 8888 {
		t.Errorf("portOr() = %d, want default", got)
	}
	a.port = 9000
	if got := a.portOr(8888); got != 9000 {
		t.Errorf("portOr() = %d, want flag", got)
	}
}

func TestPumpControls(t *testing.T) {
	pr, pw := io.Pipe()
	keys := input.StartStream(pr)

	var (
		mu   sync.Mutex
		sent []protocol.Token
	)
	send := func(tok protocol.Token) error {
		mu.Lock()
		defer mu.Unlock()
		sent = append(sent, tok)
		return nil
	}

	errc := make(chan error, 1)
	go func() { errc <- pumpControls(context.Background(), keys, send) }()

	if _, err := pw.Write([]byte("w")); err != nil {
		t.Fatal(err)
	}
	time.Sleep(400 * time.Millisecond)
	if _, err := pw.Write([]byte("q")); err != nil {
		t.Fatal(err)
	}

	select {
	case err := <-errc:
		if !errors.Is(err, errQuit) {
			t.Fatalf("pumpControls() = %v, want errQuit", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("quit key ignored")
	}

	mu.Lock()
	defer mu.Unlock()
	if want := []protocol.Token{protocol.Up, protocol.StopUp}; !reflect.DeepEqual(sent, want) {
		t.Errorf("sent %v, want %v", sent, want)
	}
}

func TestPumpControlsStopsWithContext(t *testing.T) {
	pr, _ := io.Pipe()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := pumpControls(ctx, input.StartStream(pr), nil); err != nil {
		t.Errorf("pumpControls() = %v, want nil", err)
	}
}

func TestRunUnknownRole(t *testing.T) {
	a := &app{role: "nope", logger: log.New(io.Discard)}
	if err := a.run(context.Background()); !errors.Is(err, errUsage) {
		t.Errorf("run() = %v, want errUsage", err)
	}
}
