package console

import (
	"math"

	"github.com/tomz197/asteroids-lan/internal/draw"
	"github.com/tomz197/asteroids-lan/internal/loop/config"
	"github.com/tomz197/asteroids-lan/internal/object"
	"github.com/tomz197/asteroids-lan/internal/world"
)

// asteroidSides is the number of sides of the polygon drawn for an asteroid.
const asteroidSides = 10

// Radar draws the arena onto a canvas.
type Radar struct {
	canvas *draw.Canvas
	points []draw.Point
}

// NewRadar creates a radar cols wide and rows high.
func NewRadar(cols, rows int) *Radar {
	return &Radar{
		canvas: draw.NewScaledCanvas(cols, rows, config.ArenaWidth, config.ArenaHeight),
	}
}

// Resize changes the radar's terminal dimensions.
func (r *Radar) Resize(cols, rows int) {
	r.canvas.Resize(cols, rows)
}

// Canvas returns the canvas last drawn into.
func (r *Radar) Canvas() *draw.Canvas {
	return r.canvas
}

// Draw clears the canvas and draws every live entity of s.
func (r *Radar) Draw(s *world.State) {
	r.canvas.Clear()

	for i := range s.Asteroids {
		a := &s.Asteroids[i]
		if a.Destroyed {
			continue
		}
		r.canvas.DrawPolygon(r.circle(a.X, a.Y, a.Radius()), false)
	}

	r.ship(&s.Ship)
	r.bullets(s.Bullets)
	for i := range s.Participants {
		r.ship(&s.Participants[i].Ship)
		r.bullets(s.Participants[i].Bullets)
	}
}

func (r *Radar) bullets(bullets []object.Bullet) {
	for i := range bullets {
		if !bullets[i].Destroyed {
			r.canvas.SetFloat(bullets[i].X, bullets[i].Y)
		}
	}
}

func (r *Radar) ship(s *object.Ship) {
	if s.Destroyed || s.IsPlaceholder() {
		return
	}
	sin, cos := math.Sincos(s.Heading)
	rad := s.Radius()
	nose := draw.Point{X: s.X + sin*rad, Y: s.Y - cos*rad}
	left := draw.Point{X: s.X - sin*rad*0.6 - cos*rad*0.6, Y: s.Y + cos*rad*0.6 - sin*rad*0.6}
	right := draw.Point{X: s.X - sin*rad*0.6 + cos*rad*0.6, Y: s.Y + cos*rad*0.6 + sin*rad*0.6}
	r.canvas.DrawPolygon([]draw.Point{nose, left, right}, true)
}

func (r *Radar) circle(x, y, radius float64) []draw.Point {
	if cap(r.points) < asteroidSides {
		r.points = make([]draw.Point, asteroidSides)
	}
	pts := r.points[:asteroidSides]
	for i := range pts {
		angle := 2 * math.Pi * float64(i) / asteroidSides
		pts[i] = draw.Point{X: x + math.Cos(angle)*radius, Y: y + math.Sin(angle)*radius}
	}
	return pts
}
