// Package config centralizes all tunable game parameters.
package config

import (
	"math"
	"time"
)

// Arena dimensions. Every entity wraps around these edges.
const (
	ArenaWidth  = 800
	ArenaHeight = 800
)

// Tick timing
const (
	TickRate     = 25
	TickTime     = time.Second / TickRate
	IdleTickTime = 100 * time.Millisecond // Sleep while aborted or game over
)

// Asteroid population
const (
	InitialAsteroidLimit = 7
	SpawnPeriod          = 200  // Ticks between timed spawns
	SpawnClearance       = 50.0 // Minimum distance from the local ship
	SpawnMaxSpeed        = 3.0  // Per-axis velocity range is [-3, 3)
	AsteroidsPerLevel    = 5    // Destroyed asteroids per limit increase
)

// Ship handling
const (
	ShipRadius    = 15.0
	ShipThrust    = 0.4
	ShipTurnRate  = 0.04 * math.Pi // Radians per tick
	ShipDrag      = 0.99
	ShipMaxSpeed  = 12.0
	BulletSpeed   = 15.0
	BulletSteps   = 60 // Lifetime in ticks
	NoseClearance = ShipRadius + 1
)

// Player
const (
	MaxUsernameLength = 16 // Maximum display length for nicknames
)

// Network ports and timeouts
const (
	HubPort           = 8888
	BroadcastPort     = 8889
	JoinerTimeout     = 5 * time.Second
	SpectatorTimeout  = 4 * time.Second
	JoinerPollPeriod  = TickTime
	SpectatorPeriod   = TickTime
	MaxDatagramSize   = 64 * 1024
	MaxSnapshotSize   = 16 * 1024 // Encoding fails above this
	ControlBufferSize = 512
)

// Console
const (
	ConsoleRefresh = 200 * time.Millisecond
)
