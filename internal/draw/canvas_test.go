package draw

import (
	"bytes"
	"strings"
	"testing"
)

func TestSetFloatScales(t *testing.T) {
	c := NewScaledCanvas(10, 5, 100, 100)
	c.SetFloat(0, 0)
	c.SetFloat(95, 95)

	rows := c.Rows()
	if len(rows) != 5 {
		t.Fatalf("rows = %d, want 5", len(rows))
	}
	if got := []rune(rows[0])[0]; got != BlockUpperHalf {
		t.Errorf("top-left cell = %q, want upper half", got)
	}
	if got := []rune(rows[4])[9]; got != BlockLowerHalf {
		t.Errorf("bottom-right cell = %q, want lower half", got)
	}
}

func TestDrawLineAndClear(t *testing.T) {
	c := NewScaledCanvas(10, 5, 10, 10)
	c.DrawLine(Point{0, 0}, Point{9, 0})
	for x := 0; x < 10; x++ {
		if !c.Pixel(x, 0) {
			t.Fatalf("pixel %d not set", x)
		}
	}
	c.Clear()
	if c.Pixel(3, 0) {
		t.Error("Clear left pixels set")
	}
}

func TestFilledPolygon(t *testing.T) {
	c := NewScaledCanvas(10, 5, 10, 10)
	c.DrawPolygon([]Point{{1, 1}, {8, 1}, {8, 8}, {1, 8}}, true)
	if !c.Pixel(4, 4) {
		t.Error("interior not filled")
	}
	if c.Pixel(0, 0) {
		t.Error("exterior filled")
	}
}

func TestOutOfRangeIgnored(t *testing.T) {
	c := NewScaledCanvas(4, 2, 4, 4)
	c.SetFloat(-1, 2)
	c.SetFloat(10, 2)
	for _, row := range c.Rows() {
		if strings.TrimSpace(row) != "" {
			t.Fatalf("row %q drawn from out of range points", row)
		}
	}
}

func TestRenderPositionsRows(t *testing.T) {
	c := NewScaledCanvas(3, 2, 3, 4)
	var buf bytes.Buffer
	if err := c.Render(&buf, 5, 7); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "\033[7;5H") || !strings.Contains(out, "\033[8;5H") {
		t.Errorf("Render() = %q, want rows at 7 and 8", out)
	}
}

func TestChunkWriterFlush(t *testing.T) {
	var buf bytes.Buffer
	cw := NewChunkWriter(&buf)
	cw.WriteAt(2, 3, strings.Repeat("x", 3000))
	if buf.Len() != 0 {
		t.Fatal("wrote before Flush")
	}
	if err := cw.Flush(); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "\033[3;2H") || strings.Count(buf.String(), "x") != 3000 {
		t.Errorf("flushed %d bytes, unexpected content", buf.Len())
	}
}
