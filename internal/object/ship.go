package object

import (
	"math"
	"strings"

	"github.com/tomz197/asteroids-lan/internal/loop/config"
	"github.com/tomz197/asteroids-lan/internal/physics"
)

// Controls are the input flags driven by UP/LEFT/RIGHT/SPACE.
type Controls struct {
	Thrust bool
	Left   bool
	Right  bool
	Fire   bool
}

// Ship is a player-controlled spaceship.
//
// Heading is in radians, 0 pointing up, growing clockwise. A ship with a
// blank nickname is a placeholder: it never moves, fires or scores, and
// exists only so spectator-only simulations have a local ship.
type Ship struct {
	X, Y    float64
	VX, VY  float64
	Heading float64
	Controls
	Fired     bool // Fire edge already consumed while Fire is held
	Nickname  string
	Score     int
	Destroyed bool
	Color     Color
}

// NewShip creates a ship at the arena center.
func NewShip(nickname string) Ship {
	s := Ship{Nickname: nickname, Color: PaletteColor(0)}
	s.Reset()
	return s
}

// Reset puts the ship back at the arena center with no motion, no score
// and no input. Nickname and color are kept.
func (s *Ship) Reset() {
	s.X = config.ArenaWidth / 2
	s.Y = config.ArenaHeight / 2
	s.VX, s.VY = 0, 0
	s.Heading = 0
	s.Controls = Controls{}
	s.Fired = false
	s.Score = 0
	s.Destroyed = false
}

// IsPlaceholder reports whether the ship has no identity.
func (s *Ship) IsPlaceholder() bool {
	return strings.TrimSpace(s.Nickname) == ""
}

// SetFire sets the fire flag. Releasing fire re-arms the fire edge.
func (s *Ship) SetFire(on bool) {
	s.Fire = on
	if !on {
		s.Fired = false
	}
}

// Step applies turn and thrust input, drag, and moves the ship one tick.
// Destroyed and placeholder ships do not move.
func (s *Ship) Step() {
	if s.Destroyed || s.IsPlaceholder() {
		return
	}

	if s.Left {
		s.Heading -= config.ShipTurnRate
	}
	if s.Right {
		s.Heading += config.ShipTurnRate
	}
	s.Heading = normalizeAngle(s.Heading)

	sin, cos := math.Sincos(s.Heading)
	if s.Thrust {
		s.VX += sin * config.ShipThrust
		s.VY -= cos * config.ShipThrust
	}

	s.VX *= config.ShipDrag
	s.VY *= config.ShipDrag

	if speed := physics.Length(s.VX, s.VY); speed > config.ShipMaxSpeed {
		scale := config.ShipMaxSpeed / speed
		s.VX *= scale
		s.VY *= scale
	}

	s.X += s.VX
	s.Y += s.VY
	wrapPosition(&s.X, &s.Y)
}

// TryFire consumes the fire edge and returns the bullet to spawn, if any.
// At most one bullet is produced per press of the fire control.
func (s *Ship) TryFire() (Bullet, bool) {
	if !s.Fire || s.Fired || s.Destroyed || s.IsPlaceholder() {
		return Bullet{}, false
	}
	s.Fired = true

	sin, cos := math.Sincos(s.Heading)
	noseX := s.X + sin*config.NoseClearance
	noseY := s.Y - cos*config.NoseClearance
	wrapPosition(&noseX, &noseY)
	return NewBullet(noseX, noseY, s.VX+sin*config.BulletSpeed, s.VY-cos*config.BulletSpeed), true
}

// Radius returns the ship's collision radius.
func (s *Ship) Radius() float64 {
	return config.ShipRadius
}

// Destroy marks the ship as destroyed.
func (s *Ship) Destroy() {
	s.Destroyed = true
}

// normalizeAngle wraps an angle to [-π, π].
func normalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
