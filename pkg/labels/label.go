package labels

import (
	"math"

	"github.com/matzehuels/genomap/pkg/geometry"
)

// Direction values record which way a label was pushed from its home position.
const (
	Back    = -1
	None    = 0
	Forward = 1
)

// Label is the per-pass placement state of one feature label.
//
// Callers set Name, HomeBp, Width and Height. A [Strategy] writes the
// remaining fields; they are recomputed from HomeBp on every pass.
type Label struct {
	Name   string
	HomeBp float64
	Width  float64
	Height float64

	// AttachBp is where the leader line meets the label track.
	AttachBp float64
	// ClockAttachment is the side of Rect the leader line attaches to.
	ClockAttachment int
	// Direction is Back or Forward when the label was pushed away from
	// HomeBp, None otherwise.
	Direction int
	// Popped is set when the label could not be fit within its island's
	// angle budget and was relocated outward.
	Popped bool
	// Offset is the distance of AttachPoint from the map.
	Offset float64

	Rect        geometry.Rect
	AttachPoint geometry.Point
	// LinePoint is the map-side end of the leader line.
	LinePoint geometry.Point

	maxBpAdjustment float64
	homeRect        geometry.Rect
}

// New returns a label of the given size anchored at homeBp.
func New(name string, homeBp, width, height float64) *Label {
	return &Label{Name: name, HomeBp: homeBp, Width: width, Height: height}
}

// LineLength returns the length of the leader line measured radially from
// baseOffset.
func (l *Label) LineLength(baseOffset float64) float64 { return l.Offset - baseOffset }

// step is how far a colliding label moves outward per retry.
func (l *Label) step() float64 { return max(l.Height, 1) }

// =============================================================================
// Shared placement helpers
// =============================================================================

// track bundles the provider with the offsets of one pass and the circular
// position arithmetic both strategies need.
type track struct {
	p      geometry.Provider
	base   float64
	length float64
	circ   bool
}

func newTrack(p geometry.Provider, base float64) track {
	return track{p: p, base: base, length: float64(p.Length()), circ: p.Circular()}
}

// norm folds bp onto [1, length+1) on circular maps.
func (t track) norm(bp float64) float64 {
	if !t.circ {
		return bp
	}
	bp = math.Mod(bp-1, t.length)
	if bp < 0 {
		bp += t.length
	}
	return bp + 1
}

// forward returns the distance travelled going forward from a to b.
func (t track) forward(a, b float64) float64 {
	if !t.circ {
		return b - a
	}
	d := math.Mod(b-a, t.length)
	if d < 0 {
		d += t.length
	}
	return d
}

// delta returns the signed shortest distance from a to b.
func (t track) delta(a, b float64) float64 {
	if !t.circ {
		return b - a
	}
	d := t.forward(a, b)
	if d > t.length/2 {
		d -= t.length
	}
	return d
}

// placeAt anchors l at bp with its attach point at offset from the map.
func (t track) placeAt(l *Label, bp, offset float64) {
	pt := t.p.PointForBp(bp, offset)
	t.set(l, t.norm(bp), offset, pt)
}

// placeAtPoint anchors l at a point already solved on the track at offset.
func (t track) placeAtPoint(l *Label, pt geometry.Point, offset float64) {
	t.set(l, t.norm(t.p.BpForPoint(pt)), offset, pt)
}

func (t track) set(l *Label, bp, offset float64, pt geometry.Point) {
	l.AttachBp = bp
	l.Offset = offset
	l.AttachPoint = pt
	l.Rect = geometry.RectAt(pt, l.ClockAttachment, l.Width, l.Height)
	l.LinePoint = t.p.PointForBp(l.HomeBp, t.base)

	const eps = 1e-6
	switch d := t.delta(l.HomeBp, bp); {
	case d > eps:
		l.Direction = Forward
	case d < -eps:
		l.Direction = Back
	default:
		l.Direction = None
	}
}

// extend places l at bp starting at offset and moves it outward one label
// height at a time until it clears every rect in placed. It terminates
// because placed is finite and each retry moves the box strictly away from
// the map.
func (t track) extend(l *Label, bp, offset float64, placed []geometry.Rect) {
	for {
		t.placeAt(l, bp, offset)
		if !overlapsAny(l.Rect, placed) {
			return
		}
		offset += l.step()
	}
}

func overlapsAny(r geometry.Rect, placed []geometry.Rect) bool {
	for _, o := range placed {
		if r.Overlaps(o) {
			return true
		}
	}
	return false
}
