package geometry

import (
	"math"
	"testing"
)

const tol = 1e-6

func near(a, b float64) bool { return math.Abs(a-b) < tol }

func TestRectOverlaps(t *testing.T) {
	base := Rect{X: 10, Y: 10, Width: 20, Height: 10}
	tests := []struct {
		name  string
		other Rect
		want  bool
	}{
		{name: "identical", other: base, want: true},
		{name: "partial", other: Rect{X: 25, Y: 15, Width: 20, Height: 10}, want: true},
		{name: "contained", other: Rect{X: 12, Y: 12, Width: 2, Height: 2}, want: true},
		{name: "touching right edge", other: Rect{X: 30, Y: 10, Width: 5, Height: 5}, want: false},
		{name: "touching bottom edge", other: Rect{X: 10, Y: 20, Width: 5, Height: 5}, want: false},
		{name: "disjoint", other: Rect{X: 100, Y: 100, Width: 5, Height: 5}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Overlaps(tt.other); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
			if got := tt.other.Overlaps(base); got != tt.want {
				t.Errorf("Overlaps() is not symmetric: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRectAt(t *testing.T) {
	p := Point{X: 100, Y: 100}
	tests := []struct {
		clock int
		want  Rect
	}{
		{clock: 12, want: Rect{X: 80, Y: 100, Width: 40, Height: 10}},
		{clock: 3, want: Rect{X: 60, Y: 95, Width: 40, Height: 10}},
		{clock: 6, want: Rect{X: 80, Y: 90, Width: 40, Height: 10}},
		{clock: 9, want: Rect{X: 100, Y: 95, Width: 40, Height: 10}},
		{clock: 1, want: Rect{X: 60, Y: 100, Width: 40, Height: 10}},
		{clock: 7, want: Rect{X: 100, Y: 90, Width: 40, Height: 10}},
	}

	for _, tt := range tests {
		got := RectAt(p, tt.clock, 40, 10)
		if got != tt.want {
			t.Errorf("RectAt(clock %d) = %+v, want %+v", tt.clock, got, tt.want)
		}
		if ap := AttachPoint(got, tt.clock); !near(ap.X, p.X) || !near(ap.Y, p.Y) {
			t.Errorf("AttachPoint(clock %d) = %+v, want %+v", tt.clock, ap, p)
		}
	}
}

func TestNormalizeClock(t *testing.T) {
	for in, want := range map[int]int{0: 12, 12: 12, 13: 1, 18: 6, -1: 11, 6: 6} {
		if got := NormalizeClock(in); got != want {
			t.Errorf("NormalizeClock(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestCircularPoints(t *testing.T) {
	c := NewCircular(Point{}, 1000)

	top := c.PointForBp(1, 100)
	if !near(top.X, 0) || !near(top.Y, -100) {
		t.Errorf("PointForBp(1) = %+v, want (0,-100)", top)
	}
	right := c.PointForBp(251, 100)
	if !near(right.X, 100) || !near(right.Y, 0) {
		t.Errorf("PointForBp(251) = %+v, want (100,0)", right)
	}

	for _, bp := range []float64{1, 42.5, 251, 500, 999} {
		if got := c.BpForPoint(c.PointForBp(bp, 80)); !near(got, bp) {
			t.Errorf("BpForPoint(PointForBp(%v)) = %v", bp, got)
		}
	}

	if got := c.PixelsPerBp(1000 / (2 * math.Pi)); !near(got, 1) {
		t.Errorf("PixelsPerBp() = %v, want 1", got)
	}
}

func TestCircularClockPosition(t *testing.T) {
	c := NewCircular(Point{}, 1200)
	tests := []struct {
		bp      float64
		inverse bool
		want    int
	}{
		{bp: 1, want: 12},
		{bp: 1, inverse: true, want: 6},
		{bp: 301, want: 3},
		{bp: 301, inverse: true, want: 9},
		{bp: 601, want: 6},
		{bp: 901, want: 9},
		{bp: 1190, want: 12},
	}
	for _, tt := range tests {
		if got := c.ClockPositionForBp(tt.bp, tt.inverse); got != tt.want {
			t.Errorf("ClockPositionForBp(%v, %v) = %d, want %d", tt.bp, tt.inverse, got, tt.want)
		}
	}
}

func TestCircularSolveTrack(t *testing.T) {
	c := NewCircular(Point{X: 10, Y: 10}, 1000)

	p, ok := c.SolveTrack(100, AxisY, 10, Point{X: 50, Y: 10})
	if !ok || !near(p.X, 110) || !near(p.Y, 10) {
		t.Errorf("SolveTrack(AxisY, right) = %+v, %v", p, ok)
	}
	p, ok = c.SolveTrack(100, AxisY, 10, Point{X: -50, Y: 10})
	if !ok || !near(p.X, -90) {
		t.Errorf("SolveTrack(AxisY, left) = %+v, %v", p, ok)
	}
	p, ok = c.SolveTrack(100, AxisX, 10, Point{X: 10, Y: -50})
	if !ok || !near(p.Y, -90) {
		t.Errorf("SolveTrack(AxisX, top) = %+v, %v", p, ok)
	}
	if _, ok := c.SolveTrack(100, AxisY, 200, Point{}); ok {
		t.Error("SolveTrack outside the circle should fail")
	}
	if _, ok := c.SolveTrack(100, AxisX, math.NaN(), Point{}); ok {
		t.Error("SolveTrack with NaN should fail")
	}
}

func TestLinear(t *testing.T) {
	l := NewLinear(Point{X: 0, Y: 500}, 1000, 100)

	p := l.PointForBp(51, 20)
	if !near(p.X, 500) || !near(p.Y, 480) {
		t.Errorf("PointForBp(51, 20) = %+v, want (500,480)", p)
	}
	if got := l.BpForPoint(p); !near(got, 51) {
		t.Errorf("BpForPoint() = %v, want 51", got)
	}
	if got := l.PixelsPerBp(0); !near(got, 10) {
		t.Errorf("PixelsPerBp() = %v, want 10", got)
	}
	if l.ClockPositionForBp(10, false) != 12 || l.ClockPositionForBp(10, true) != 6 {
		t.Error("linear clock positions should be 12 and 6")
	}
	if _, ok := l.SolveTrack(20, AxisY, 100, Point{}); ok {
		t.Error("SolveTrack(AxisY) off the track should fail")
	}
	if p, ok := l.SolveTrack(20, AxisX, 123, Point{}); !ok || !near(p.Y, 480) {
		t.Errorf("SolveTrack(AxisX) = %+v, %v", p, ok)
	}
	if l.Circular() || l.Length() != 100 {
		t.Error("unexpected Circular/Length")
	}
}
