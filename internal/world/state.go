// Package world holds the simulation state and the rules that advance it.
//
// A State is owned by exactly one goroutine at a time. Consumers that need
// to look at a running simulation get a Clone, never the live value.
package world

import (
	"math/rand"
	"time"

	"github.com/tomz197/asteroids-lan/internal/loop/config"
	"github.com/tomz197/asteroids-lan/internal/object"
	"github.com/tomz197/asteroids-lan/internal/physics"
)

// NoParticipant is the Me value of a state that is not a hub reply.
const NoParticipant = -1

// collisionGridCellSize must be >= the largest bullet/asteroid interaction
// distance (a point against a large asteroid: 40).
const collisionGridCellSize = 50.0

// State is the full simulation: the local ship and its bullets, the shared
// asteroids and every networked participant.
type State struct {
	Ship         object.Ship
	Bullets      []object.Bullet
	Asteroids    []object.Asteroid
	Participants []object.Participant

	Cycle     int // Tick counter modulo config.SpawnPeriod
	Limit     int // Asteroid count above which timed spawns stop
	Destroyed int // Asteroids destroyed since the game started
	Aborted   bool
	Me        int // Index of the requesting participant in a hub reply

	rng  object.Rand
	grid *physics.SpatialGrid
}

// New creates a fresh game for a local ship with the given nickname. A nil
// rng seeds one from the clock.
func New(nickname string, rng object.Rand) *State {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s := &State{
		Ship: object.NewShip(ClipNickname(nickname)),
		rng:  rng,
	}
	s.Reset()
	return s
}

// Empty returns the default state used when a snapshot cannot be decoded:
// a placeholder ship, nothing else.
func Empty() *State {
	return &State{
		Ship:  object.NewShip(""),
		Limit: config.InitialAsteroidLimit,
		Me:    NoParticipant,
	}
}

// Reset starts a new game: the local ship is re-initialized and every
// collection is emptied. The nickname survives.
func (s *State) Reset() {
	s.Aborted = false
	s.Cycle = 0
	s.Limit = config.InitialAsteroidLimit
	s.Destroyed = 0
	s.Me = NoParticipant
	s.Bullets = nil
	s.Asteroids = nil
	s.Participants = nil
	s.Ship.Reset()
}

// Abort stops the simulation until the next Reset.
func (s *State) Abort() {
	s.Aborted = true
}

// GameOver reports whether the local ship and every participant's ship
// are destroyed.
func (s *State) GameOver() bool {
	if !s.Ship.Destroyed {
		return false
	}
	for i := range s.Participants {
		if !s.Participants[i].Ship.Destroyed {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the state. The copy shares the random
// source so it can keep ticking in place of the original.
func (s *State) Clone() *State {
	c := *s
	c.Bullets = object.CloneBullets(s.Bullets)
	c.Asteroids = object.CloneAsteroids(s.Asteroids)
	c.Participants = object.CloneParticipants(s.Participants)
	c.grid = nil
	return &c
}

// SetRand replaces the random source used for spawning.
func (s *State) SetRand(rng object.Rand) {
	s.rng = rng
}

// Mirror adopts the displayable content of src wholesale: ship, bullets,
// asteroids, participants and counters. The random source is kept.
func (s *State) Mirror(src *State) {
	rng := s.rng
	*s = *src.Clone()
	s.rng = rng
	s.grid = nil
}

func (s *State) random() object.Rand {
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return s.rng
}

func (s *State) spatialGrid() *physics.SpatialGrid {
	if s.grid == nil {
		s.grid = physics.NewSpatialGrid(config.ArenaWidth, config.ArenaHeight, collisionGridCellSize)
	}
	return s.grid
}
