package world

import (
	"github.com/tomz197/asteroids-lan/internal/loop/config"
	"github.com/tomz197/asteroids-lan/internal/object"
	"github.com/tomz197/asteroids-lan/internal/physics"
)

// Collisions only happen between different kinds of entity. Every
// colliding pair is destroyed together; already-destroyed entities still
// collide so the outcome does not depend on iteration order. Destroyed and
// placeholder ships are skipped, and so are bullets whose lifetime ran out.
// Distances are measured across the arena edges, matching the wrapping
// broad-phase grid.

// populateAsteroidGrid re-inserts every asteroid into the broad-phase grid.
func (s *State) populateAsteroidGrid() *physics.SpatialGrid {
	grid := s.spatialGrid()
	grid.Clear()
	for i := range s.Asteroids {
		grid.Insert(s.Asteroids[i].X, s.Asteroids[i].Y, i)
	}
	return grid
}

// overlap tests two circles on the wrapping arena.
func overlap(x1, y1, r1, x2, y2, r2 float64) bool {
	return physics.WrappedCirclesOverlap(x1, y1, r1, x2, y2, r2, config.ArenaWidth, config.ArenaHeight)
}

// collidable reports whether a ship takes part in collisions.
func collidable(ship *object.Ship) bool {
	return !ship.Destroyed && !ship.IsPlaceholder()
}

// bulletHitsShip destroys both on contact. Bullets are points.
func bulletHitsShip(b *object.Bullet, ship *object.Ship) {
	if !collidable(ship) || b.Expired() {
		return
	}
	if overlap(b.X, b.Y, 0, ship.X, ship.Y, ship.Radius()) {
		b.Destroy()
		ship.Destroy()
	}
}

// bulletsHitAsteroids checks each bullet against nearby asteroids.
func (s *State) bulletsHitAsteroids(bullets []object.Bullet, grid *physics.SpatialGrid) {
	for i := range bullets {
		b := &bullets[i]
		if b.Expired() {
			continue
		}
		grid.QueryAround(b.X, b.Y, func(j int) {
			a := &s.Asteroids[j]
			if overlap(b.X, b.Y, 0, a.X, a.Y, a.Radius()) {
				b.Destroy()
				a.Destroy()
			}
		})
	}
}

// asteroidsHitShip destroys the ship and every asteroid touching it.
func (s *State) asteroidsHitShip(ship *object.Ship) {
	if !collidable(ship) {
		return
	}
	for i := range s.Asteroids {
		a := &s.Asteroids[i]
		if overlap(a.X, a.Y, a.Radius(), ship.X, ship.Y, ship.Radius()) {
			a.Destroy()
			ship.Destroy()
		}
	}
}

// collideLocal runs the local ship's collision pass: its bullets against
// asteroids, every participant's ship and the local ship itself, then the
// asteroids against the local ship.
func (s *State) collideLocal() {
	grid := s.populateAsteroidGrid()
	s.bulletsHitAsteroids(s.Bullets, grid)

	for i := range s.Bullets {
		b := &s.Bullets[i]
		for j := range s.Participants {
			bulletHitsShip(b, &s.Participants[j].Ship)
		}
		bulletHitsShip(b, &s.Ship)
	}

	s.asteroidsHitShip(&s.Ship)
}

// collideParticipant runs the pass for participant i: its bullets against
// asteroids, every other participant's ship and the local ship, then the
// asteroids against its own ship.
func (s *State) collideParticipant(i int) {
	p := &s.Participants[i]
	grid := s.populateAsteroidGrid()
	s.bulletsHitAsteroids(p.Bullets, grid)

	for k := range p.Bullets {
		b := &p.Bullets[k]
		for j := range s.Participants {
			if j == i {
				continue
			}
			bulletHitsShip(b, &s.Participants[j].Ship)
		}
		bulletHitsShip(b, &s.Ship)
	}

	s.asteroidsHitShip(&p.Ship)
}
