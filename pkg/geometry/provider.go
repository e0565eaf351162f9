package geometry

import "math"

// Axis selects the canvas coordinate that is held fixed by [Provider.SolveTrack].
type Axis int

const (
	// AxisX fixes the x coordinate and solves for y.
	AxisX Axis = iota
	// AxisY fixes the y coordinate and solves for x.
	AxisY
)

// Provider translates between genome positions and canvas points.
//
// The offset argument is the distance from the map itself: the radius for a
// circular map and the height above the axis for a linear one. Positions are
// 1-based and fractional positions are allowed.
type Provider interface {
	// PointForBp returns the canvas point for bp at the given offset.
	PointForBp(bp, offset float64) Point
	// BpForPoint returns the genome position closest to p.
	BpForPoint(p Point) float64
	// PixelsPerBp returns how many pixels one base pair spans at offset.
	PixelsPerBp(offset float64) float64
	// ClockPositionForBp returns the clock-face position (1..12) of bp on the
	// map. When inverse is true the opposite position is returned, which is
	// the side of a label box that faces the map.
	ClockPositionForBp(bp float64, inverse bool) int
	// SolveTrack returns the point at offset whose coordinate on axis equals
	// v, choosing the solution on the same side as near. It returns false
	// when no real solution exists.
	SolveTrack(offset float64, axis Axis, v float64, near Point) (Point, bool)
	// Length returns the sequence length in base pairs.
	Length() int
	// Circular reports whether position Length()+1 wraps to 1.
	Circular() bool
}

// =============================================================================
// Circular
// =============================================================================

// Circular lays a sequence around a circle centred on Center. Position 1 sits
// at twelve o'clock and positions increase clockwise.
type Circular struct {
	Center Point
	Len    int
}

// NewCircular returns a circular provider for a sequence of length bp.
func NewCircular(center Point, length int) *Circular {
	return &Circular{Center: center, Len: max(1, length)}
}

func (c *Circular) angle(bp float64) float64 {
	return -math.Pi/2 + 2*math.Pi*(bp-1)/float64(c.Len)
}

// PointForBp implements [Provider].
func (c *Circular) PointForBp(bp, offset float64) Point {
	a := c.angle(bp)
	return Point{X: c.Center.X + offset*math.Cos(a), Y: c.Center.Y + offset*math.Sin(a)}
}

// BpForPoint implements [Provider].
func (c *Circular) BpForPoint(p Point) float64 {
	a := math.Atan2(p.Y-c.Center.Y, p.X-c.Center.X)
	frac := (a + math.Pi/2) / (2 * math.Pi)
	frac -= math.Floor(frac)
	return 1 + frac*float64(c.Len)
}

// PixelsPerBp implements [Provider].
func (c *Circular) PixelsPerBp(offset float64) float64 {
	return 2 * math.Pi * offset / float64(c.Len)
}

// ClockPositionForBp implements [Provider].
func (c *Circular) ClockPositionForBp(bp float64, inverse bool) int {
	deg := 360 * (bp - 1) / float64(c.Len)
	clock := int(math.Round(deg / 30))
	if inverse {
		clock += 6
	}
	return NormalizeClock(clock)
}

// SolveTrack implements [Provider].
func (c *Circular) SolveTrack(offset float64, axis Axis, v float64, near Point) (Point, bool) {
	if axis == AxisY {
		dy := v - c.Center.Y
		if math.Abs(dy) > offset || math.IsNaN(dy) {
			return Point{}, false
		}
		dx := math.Sqrt(offset*offset - dy*dy)
		if near.X < c.Center.X {
			dx = -dx
		}
		return Point{X: c.Center.X + dx, Y: v}, true
	}
	dx := v - c.Center.X
	if math.Abs(dx) > offset || math.IsNaN(dx) {
		return Point{}, false
	}
	dy := math.Sqrt(offset*offset - dx*dx)
	if near.Y < c.Center.Y {
		dy = -dy
	}
	return Point{X: v, Y: c.Center.Y + dy}, true
}

// Length implements [Provider].
func (c *Circular) Length() int { return c.Len }

// Circular implements [Provider].
func (c *Circular) Circular() bool { return true }

// =============================================================================
// Linear
// =============================================================================

// Linear lays a sequence along a horizontal axis starting at Origin and
// spanning Width pixels. Labels sit above the axis.
type Linear struct {
	Origin Point
	Width  float64
	Len    int
}

// NewLinear returns a linear provider for a sequence of length bp.
func NewLinear(origin Point, width float64, length int) *Linear {
	return &Linear{Origin: origin, Width: width, Len: max(1, length)}
}

func (l *Linear) scale() float64 { return l.Width / float64(l.Len) }

// PointForBp implements [Provider].
func (l *Linear) PointForBp(bp, offset float64) Point {
	return Point{X: l.Origin.X + (bp-1)*l.scale(), Y: l.Origin.Y - offset}
}

// BpForPoint implements [Provider].
func (l *Linear) BpForPoint(p Point) float64 {
	s := l.scale()
	if s == 0 {
		return 1
	}
	return 1 + (p.X-l.Origin.X)/s
}

// PixelsPerBp implements [Provider].
func (l *Linear) PixelsPerBp(float64) float64 { return l.scale() }

// ClockPositionForBp implements [Provider].
func (l *Linear) ClockPositionForBp(_ float64, inverse bool) int {
	if inverse {
		return 6
	}
	return 12
}

// SolveTrack implements [Provider].
func (l *Linear) SolveTrack(offset float64, axis Axis, v float64, near Point) (Point, bool) {
	y := l.Origin.Y - offset
	if axis == AxisX {
		if math.IsNaN(v) {
			return Point{}, false
		}
		return Point{X: v, Y: y}, true
	}
	if math.Abs(v-y) > 1e-9 {
		return Point{}, false
	}
	return Point{X: near.X, Y: y}, true
}

// Length implements [Provider].
func (l *Linear) Length() int { return l.Len }

// Circular implements [Provider].
func (l *Linear) Circular() bool { return false }

// Ensure the built-in providers implement Provider.
var (
	_ Provider = (*Circular)(nil)
	_ Provider = (*Linear)(nil)
)
