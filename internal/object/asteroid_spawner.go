package object

import (
	"github.com/tomz197/asteroids-lan/internal/loop/config"
	"github.com/tomz197/asteroids-lan/internal/physics"
)

// Rand is the random source used for spawning. *rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
	Float64() float64
}

// spawnRoulette is the weight range for the size roulette; each size
// owns one third of it.
const spawnRoulette = 3000

// RandomAsteroid creates an asteroid of random size at a uniformly random
// arena position at least config.SpawnClearance away from (avoidX, avoidY).
// Positions that are too close are resampled.
func RandomAsteroid(rng Rand, avoidX, avoidY float64) Asteroid {
	var x, y float64
	for {
		x = float64(rng.Intn(config.ArenaWidth))
		y = float64(rng.Intn(config.ArenaHeight))
		if physics.Distance(x, y, avoidX, avoidY) >= config.SpawnClearance {
			break
		}
	}

	size := AsteroidSmall
	switch prob := rng.Intn(spawnRoulette); {
	case prob < spawnRoulette/3:
		size = AsteroidLarge
	case prob < 2*spawnRoulette/3:
		size = AsteroidMedium
	}

	vx := rng.Float64()*2*config.SpawnMaxSpeed - config.SpawnMaxSpeed
	vy := rng.Float64()*2*config.SpawnMaxSpeed - config.SpawnMaxSpeed
	return NewAsteroid(x, y, vx, vy, size)
}
