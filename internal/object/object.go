// Package object defines the simulated entities: ships, bullets, asteroids
// and the participants that own a ship in a multiplayer game.
package object

import (
	"github.com/tomz197/asteroids-lan/internal/loop/config"
	"github.com/tomz197/asteroids-lan/internal/physics"
)

// Color is a 24-bit RGB display color.
type Color uint32

// Palette holds the ship colors handed out to participants in join order.
var Palette = []Color{
	0xFFFFFF, // host
	0xFF5555,
	0x55FF55,
	0x5599FF,
	0xFFFF55,
	0xFF55FF,
	0x55FFFF,
	0xFF9933,
}

// PaletteColor returns the palette entry for index i, cycling.
func PaletteColor(i int) Color {
	if i < 0 {
		i = -i
	}
	return Palette[i%len(Palette)]
}

// RGB splits the color into its channels.
func (c Color) RGB() (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// wrapPosition wraps x and y around the arena edges.
func wrapPosition(x, y *float64) {
	*x = physics.Wrap(*x, config.ArenaWidth)
	*y = physics.Wrap(*y, config.ArenaHeight)
}
