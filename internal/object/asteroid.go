package object

import (
	"math"

	"github.com/tomz197/asteroids-lan/internal/physics"
)

// AsteroidSize represents the size category of an asteroid.
type AsteroidSize uint8

const (
	AsteroidSmall  AsteroidSize = 1
	AsteroidMedium AsteroidSize = 2
	AsteroidLarge  AsteroidSize = 3
)

// sizeInfo maps a size class to its radius and the class its successors
// have. A zero successor means the asteroid leaves nothing behind.
type sizeInfo struct {
	radius    float64
	successor AsteroidSize
	name      string
}

var asteroidSizes = map[AsteroidSize]sizeInfo{
	AsteroidSmall:  {radius: 10, name: "small"},
	AsteroidMedium: {radius: 20, successor: AsteroidSmall, name: "medium"},
	AsteroidLarge:  {radius: 40, successor: AsteroidMedium, name: "large"},
}

// Successor split parameters.
const (
	SuccessorCount      = 2
	SuccessorSpeedScale = 1.5
	successorTurn       = math.Pi / 2
)

// Valid reports whether s is a known size class.
func (s AsteroidSize) Valid() bool {
	_, ok := asteroidSizes[s]
	return ok
}

// Radius returns the collision radius for the size class.
func (s AsteroidSize) Radius() float64 {
	return asteroidSizes[s].radius
}

// Successor returns the size class of the fragments, if any.
func (s AsteroidSize) Successor() (AsteroidSize, bool) {
	next := asteroidSizes[s].successor
	return next, next != 0
}

func (s AsteroidSize) String() string {
	if info, ok := asteroidSizes[s]; ok {
		return info.name
	}
	return "unknown"
}

// Asteroid is a destructible space rock.
type Asteroid struct {
	X, Y      float64
	VX, VY    float64
	Size      AsteroidSize
	Destroyed bool
}

// NewAsteroid creates an asteroid of the given size.
func NewAsteroid(x, y, vx, vy float64, size AsteroidSize) Asteroid {
	return Asteroid{X: x, Y: y, VX: vx, VY: vy, Size: size}
}

// Radius returns the asteroid's collision radius.
func (a *Asteroid) Radius() float64 {
	return a.Size.Radius()
}

// Step moves the asteroid one tick.
func (a *Asteroid) Step() {
	a.X += a.VX
	a.Y += a.VY
	wrapPosition(&a.X, &a.Y)
}

// Destroy marks the asteroid for removal and splitting.
func (a *Asteroid) Destroy() {
	a.Destroyed = true
}

// Successors returns the fragments left by destroying the asteroid: two
// asteroids of the next smaller size at the same position, with velocity
// rotated by +90° and -90° and scaled by 1.5. Small asteroids leave none.
func (a *Asteroid) Successors() []Asteroid {
	next, ok := a.Size.Successor()
	if !ok {
		return nil
	}
	out := make([]Asteroid, 0, SuccessorCount)
	for _, turn := range [SuccessorCount]float64{successorTurn, -successorTurn} {
		vx, vy := physics.Rotate(a.VX, a.VY, turn)
		out = append(out, NewAsteroid(a.X, a.Y, vx*SuccessorSpeedScale, vy*SuccessorSpeedScale, next))
	}
	return out
}
