package object

import "github.com/tomz197/asteroids-lan/internal/loop/config"

// Bullet is a projectile fired from a ship's nose. Bullets are points for
// collision purposes and expire after a fixed number of ticks.
type Bullet struct {
	X, Y      float64
	VX, VY    float64
	StepsLeft int
	Destroyed bool
}

// NewBullet creates a bullet with a full lifetime.
func NewBullet(x, y, vx, vy float64) Bullet {
	return Bullet{
		X:         x,
		Y:         y,
		VX:        vx,
		VY:        vy,
		StepsLeft: config.BulletSteps,
	}
}

// Step moves the bullet and burns one tick of lifetime. A bullet whose
// lifetime runs out is marked destroyed.
func (b *Bullet) Step() {
	if b.Destroyed {
		return
	}
	b.X += b.VX
	b.Y += b.VY
	wrapPosition(&b.X, &b.Y)

	b.StepsLeft--
	if b.StepsLeft <= 0 {
		b.Destroyed = true
	}
}

// Expired reports whether the bullet's lifetime ran out. An expired bullet
// no longer hits anything, even on the tick it expires.
func (b *Bullet) Expired() bool {
	return b.StepsLeft <= 0
}

// Destroy marks the bullet for removal.
func (b *Bullet) Destroy() {
	b.Destroyed = true
}
