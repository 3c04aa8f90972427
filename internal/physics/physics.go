// Package physics provides the vector math shared by the simulation:
// distances, circle overlap, rotation and arena wrapping.
package physics

import "math"

// Distance calculates the Euclidean distance between two points.
func Distance(x1, y1, x2, y2 float64) float64 {
	return math.Sqrt(DistanceSquared(x1, y1, x2, y2))
}

// DistanceSquared calculates the squared distance between two points.
func DistanceSquared(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return dx*dx + dy*dy
}

// WrappedCirclesOverlap checks if two circles overlap on a torus of the
// given size: each axis uses the shorter of the direct and the
// wrapped-around distance. A radius of zero is a point.
func WrappedCirclesOverlap(x1, y1, r1, x2, y2, r2, width, height float64) bool {
	dx := wrappedDelta(x2-x1, width)
	dy := wrappedDelta(y2-y1, height)
	minDist := r1 + r2
	return dx*dx+dy*dy < minDist*minDist
}

func wrappedDelta(d, size float64) float64 {
	d = math.Abs(d)
	if size > 0 {
		d = math.Mod(d, size)
		d = math.Min(d, size-d)
	}
	return d
}

// Rotate rotates the vector (x, y) by angle radians.
func Rotate(x, y, angle float64) (float64, float64) {
	sin, cos := math.Sincos(angle)
	return x*cos - y*sin, x*sin + y*cos
}

// Length returns the magnitude of the vector (x, y).
func Length(x, y float64) float64 {
	return math.Hypot(x, y)
}

// Wrap maps v into [0, size).
func Wrap(v, size float64) float64 {
	if size <= 0 {
		return v
	}
	v = math.Mod(v, size)
	if v < 0 {
		v += size
	}
	return v
}
