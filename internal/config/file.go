package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	gamecfg "github.com/tomz197/asteroids-lan/internal/loop/config"
)

// NetworkConfig controls where the network roles bind and how long they wait.
type NetworkConfig struct {
	Host               string `toml:"host"`
	HubPort            int    `toml:"hub_port"`
	BroadcastPort      int    `toml:"broadcast_port"`
	JoinerTimeoutMS    int    `toml:"joiner_timeout_ms"`
	SpectatorTimeoutMS int    `toml:"spectator_timeout_ms"`
	PollPeriodMS       int    `toml:"poll_period_ms"`
}

// GameConfig holds launcher-level game settings.
type GameConfig struct {
	Nickname      string `toml:"nickname"`
	TickPerPacket bool   `toml:"tick_per_packet"`
	Seed          int64  `toml:"seed"`
}

// LogConfig selects the log level and whether timestamps are printed.
type LogConfig struct {
	Level      string `toml:"level"`
	Timestamps bool   `toml:"timestamps"`
}

// File is the on-disk configuration. Every field is optional.
type File struct {
	Network NetworkConfig `toml:"network"`
	Game    GameConfig    `toml:"game"`
	Log     LogConfig     `toml:"log"`
}

// Default returns the configuration used when no file is present.
func Default() File {
	return File{
		Network: NetworkConfig{
			Host:               "",
			HubPort:            gamecfg.HubPort,
			BroadcastPort:      gamecfg.BroadcastPort,
			JoinerTimeoutMS:    int(gamecfg.JoinerTimeout / time.Millisecond),
			SpectatorTimeoutMS: int(gamecfg.SpectatorTimeout / time.Millisecond),
			PollPeriodMS:       int(gamecfg.JoinerPollPeriod / time.Millisecond),
		},
		Game: GameConfig{
			TickPerPacket: true,
		},
		Log: LogConfig{
			Level:      "info",
			Timestamps: true,
		},
	}
}

// Load reads the TOML file at path on top of Default and then applies
// environment overrides. An empty path or a missing file is not an error.
func Load(path string) (File, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse %s: %w", path, err)
			}
		case os.IsNotExist(err):
		default:
			return cfg, fmt.Errorf("read %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (f *File) applyEnv() {
	f.Network.Host = GetEnv("ASTEROIDS_HOST", f.Network.Host)
	f.Network.HubPort = GetEnvInt("ASTEROIDS_HUB_PORT", f.Network.HubPort)
	f.Network.BroadcastPort = GetEnvInt("ASTEROIDS_BROADCAST_PORT", f.Network.BroadcastPort)
	f.Game.Nickname = GetEnv("ASTEROIDS_NICKNAME", f.Game.Nickname)
	f.Log.Level = GetEnv("ASTEROIDS_LOG_LEVEL", f.Log.Level)
}

// JoinerTimeout is the receive timeout of the player proxy.
func (n NetworkConfig) JoinerTimeout() time.Duration {
	return millis(n.JoinerTimeoutMS, gamecfg.JoinerTimeout)
}

// SpectatorTimeout is the receive timeout of the spectator proxy.
func (n NetworkConfig) SpectatorTimeout() time.Duration {
	return millis(n.SpectatorTimeoutMS, gamecfg.SpectatorTimeout)
}

// PollPeriod is the pause between two polls of a proxy.
func (n NetworkConfig) PollPeriod() time.Duration {
	if n.PollPeriodMS < 0 {
		return 0
	}
	return time.Duration(n.PollPeriodMS) * time.Millisecond
}

func millis(ms int, fallback time.Duration) time.Duration {
	if ms <= 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}
