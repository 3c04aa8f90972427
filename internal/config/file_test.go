package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Network.HubPort != 8888 || cfg.Network.BroadcastPort != 8889 {
		t.Fatalf("ports = %d/%d, want 8888/8889", cfg.Network.HubPort, cfg.Network.BroadcastPort)
	}
	if got := cfg.Network.JoinerTimeout(); got != 5*time.Second {
		t.Fatalf("joiner timeout = %v, want 5s", got)
	}
	if got := cfg.Network.SpectatorTimeout(); got != 4*time.Second {
		t.Fatalf("spectator timeout = %v, want 4s", got)
	}
	if !cfg.Game.TickPerPacket {
		t.Fatal("tick_per_packet should default to true")
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "asteroids.toml")
	data := []byte(`
[network]
host = "10.0.0.2"
hub_port = 9000
spectator_timeout_ms = 1500

[game]
nickname = "alice"

[log]
level = "debug"
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ASTEROIDS_HUB_PORT", "9100")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Network.Host != "10.0.0.2" {
		t.Errorf("host = %q", cfg.Network.Host)
	}
	if cfg.Network.HubPort != 9100 {
		t.Errorf("hub port = %d, want env override 9100", cfg.Network.HubPort)
	}
	if cfg.Network.BroadcastPort != 8889 {
		t.Errorf("broadcast port = %d, want default", cfg.Network.BroadcastPort)
	}
	if got := cfg.Network.SpectatorTimeout(); got != 1500*time.Millisecond {
		t.Errorf("spectator timeout = %v", got)
	}
	if cfg.Game.Nickname != "alice" || cfg.Log.Level != "debug" {
		t.Errorf("game/log = %+v %+v", cfg.Game, cfg.Log)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[network\nhub_port = "), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("ASTEROIDS_TEST_INT", "42")
	if got := GetEnvInt("ASTEROIDS_TEST_INT", 1); got != 42 {
		t.Fatalf("got %d", got)
	}
	t.Setenv("ASTEROIDS_TEST_INT", "nope")
	if got := GetEnvInt("ASTEROIDS_TEST_INT", 1); got != 1 {
		t.Fatalf("got %d, want fallback", got)
	}
}
