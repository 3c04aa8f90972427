package world

import (
	"github.com/tomz197/asteroids-lan/internal/loop/config"
	"github.com/tomz197/asteroids-lan/internal/object"
)

// Tick advances the simulation by one step and reports whether anything
// was simulated. Aborted and finished games are left untouched.
//
// The local ship is processed first: motion, firing, collisions, cleanup
// and the spawn timer. Then every participant gets the same motion,
// firing, collision and cleanup pass against the shared asteroids.
func (s *State) Tick() bool {
	if s.Aborted || s.GameOver() {
		return false
	}

	for i := range s.Asteroids {
		s.Asteroids[i].Step()
	}
	for i := range s.Bullets {
		s.Bullets[i].Step()
	}

	if !s.Ship.IsPlaceholder() {
		s.Ship.Step()
		if b, ok := s.Ship.TryFire(); ok {
			s.Bullets = append(s.Bullets, b)
		}
	} else {
		s.topUp()
	}

	s.collideLocal()
	s.Bullets = s.cleanup(&s.Ship, s.Bullets)

	if s.Cycle == 0 && len(s.Asteroids) < s.Limit {
		s.spawnAsteroid()
	}
	s.Cycle = (s.Cycle + 1) % config.SpawnPeriod

	for i := range s.Participants {
		s.tickParticipant(i)
	}
	return true
}

func (s *State) tickParticipant(i int) {
	p := &s.Participants[i]
	for j := range p.Bullets {
		p.Bullets[j].Step()
	}
	p.Ship.Step()
	if b, ok := p.Ship.TryFire(); ok {
		p.Bullets = append(p.Bullets, b)
	}

	s.collideParticipant(i)
	p.Bullets = s.cleanup(&p.Ship, p.Bullets)
}

// topUp fills the arena up to the limit. Used when there is no local
// player, so spectator-only games never show an empty arena.
func (s *State) topUp() {
	for len(s.Asteroids) < s.Limit {
		s.spawnAsteroid()
	}
}

func (s *State) spawnAsteroid() {
	s.Asteroids = append(s.Asteroids, object.RandomAsteroid(s.random(), s.Ship.X, s.Ship.Y))
}

// cleanup replaces destroyed asteroids with their successors, credits the
// owner's ship with one point per removed asteroid and drops destroyed
// bullets. It returns the surviving bullets.
func (s *State) cleanup(owner *object.Ship, bullets []object.Bullet) []object.Bullet {
	kept := make([]object.Asteroid, 0, len(s.Asteroids))
	for i := range s.Asteroids {
		a := &s.Asteroids[i]
		if !a.Destroyed {
			kept = append(kept, *a)
			continue
		}
		kept = append(kept, a.Successors()...)
		owner.Score++
		s.Destroyed++
		if s.Destroyed%config.AsteroidsPerLevel == 0 {
			s.Limit++
		}
	}
	s.Asteroids = kept

	alive := bullets[:0]
	for _, b := range bullets {
		if !b.Destroyed {
			alive = append(alive, b)
		}
	}
	return alive
}
