package geometry

import "math"

// Point is a position on the canvas. The y axis grows downward.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned box anchored at its top-left corner.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Center returns the center point of the box.
func (r Rect) Center() Point { return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2} }

// Overlaps reports whether r and o share any interior area.
// Boxes that only touch along an edge do not overlap.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.Right() && r.Right() > o.X && r.Y < o.Bottom() && r.Bottom() > o.Y
}

// Contains reports whether p lies inside r or on its edge.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.Right() && p.Y >= r.Y && p.Y <= r.Bottom()
}

// Valid reports whether every coordinate of r is a real number.
func (r Rect) Valid() bool {
	for _, v := range [...]float64{r.X, r.Y, r.Width, r.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// AttachOffsetY returns the distance from the top of a box of height h to
// the point where a leader line attaches for the given clock position.
func AttachOffsetY(clock int, h float64) float64 {
	switch clock {
	case 11, 12, 1:
		return 0
	case 2, 10:
		return h / 4
	case 3, 9:
		return h / 2
	case 4, 8:
		return h * 3 / 4
	default: // 5, 6, 7
		return h
	}
}

// AttachOffsetX returns the distance from the left of a box of width w to
// the point where a leader line attaches for the given clock position.
func AttachOffsetX(clock int, w float64) float64 {
	switch clock {
	case 12, 6:
		return w / 2
	case 1, 2, 3, 4, 5:
		return w
	default: // 7..11
		return 0
	}
}

// RectAt returns the w×h box whose attachment point, on the side named by
// clock, sits at p. Clock 12 attaches at the top middle, 3 at the right
// middle, 6 at the bottom middle and 9 at the left middle; the remaining
// positions are the corners and quarter points in between.
func RectAt(p Point, clock int, w, h float64) Rect {
	return Rect{
		X:      p.X - AttachOffsetX(clock, w),
		Y:      p.Y - AttachOffsetY(clock, h),
		Width:  w,
		Height: h,
	}
}

// AttachPoint returns the point on r where a leader line attaches for clock.
func AttachPoint(r Rect, clock int) Point {
	return Point{X: r.X + AttachOffsetX(clock, r.Width), Y: r.Y + AttachOffsetY(clock, r.Height)}
}

// NormalizeClock maps any integer onto the 1..12 clock face.
func NormalizeClock(c int) int {
	c %= 12
	if c <= 0 {
		c += 12
	}
	return c
}
