package physics

import (
	"math"
	"sort"
	"testing"
)

func TestWrappedCirclesOverlap(t *testing.T) {
	tests := []struct {
		name                   string
		x1, y1, r1, x2, y2, r2 float64
		want                   bool
	}{
		{"overlapping", 0, 0, 10, 15, 0, 10, true},
		{"touching", 100, 100, 10, 120, 100, 10, false},
		{"apart", 100, 100, 10, 125, 100, 10, false},
		{"point inside", 5, 5, 0, 5, 8, 10, true},
		{"same position", 5, 5, 0, 5, 5, 10, true},
		{"across right edge", 5, 400, 15, 790, 400, 40, true},
		{"across bottom edge", 400, 795, 0, 400, 5, 20, true},
		{"across corner", 2, 2, 0, 798, 798, 10, true},
		{"far across edge", 5, 400, 15, 700, 400, 40, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WrappedCirclesOverlap(tt.x1, tt.y1, tt.r1, tt.x2, tt.y2, tt.r2, 800, 800); got != tt.want {
				t.Errorf("WrappedCirclesOverlap = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRotateQuarterTurn(t *testing.T) {
	x, y := Rotate(2, 0, math.Pi/2)
	if math.Abs(x) > 1e-9 || math.Abs(y-2) > 1e-9 {
		t.Fatalf("Rotate = (%f, %f), want (0, 2)", x, y)
	}
}

func TestWrap(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{0, 0},
		{799.5, 799.5},
		{800, 0},
		{801, 1},
		{-1, 799},
		{-1601, 799},
	}
	for _, tt := range tests {
		if got := Wrap(tt.in, 800); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Wrap(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSpatialGridQueryAroundWraps(t *testing.T) {
	g := NewSpatialGrid(800, 800, 50)
	g.Insert(10, 10, 0)
	g.Insert(790, 790, 1)
	g.Insert(400, 400, 2)

	var got []int
	g.QueryAround(5, 5, func(i int) { got = append(got, i) })
	sort.Ints(got)
	if len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Fatalf("QueryAround near origin = %v, want [0 1]", got)
	}

	g.Clear()
	got = got[:0]
	g.QueryAround(5, 5, func(i int) { got = append(got, i) })
	if len(got) != 0 {
		t.Fatalf("after Clear got %v", got)
	}
}

func TestSpatialGridSmallGridVisitsOnce(t *testing.T) {
	g := NewSpatialGrid(100, 100, 60)
	g.Insert(10, 10, 7)
	count := 0
	g.QueryAround(90, 90, func(int) { count++ })
	if count != 1 {
		t.Fatalf("visited %d times, want 1", count)
	}
}
