package labels

import (
	"math"
	"slices"
	"sort"

	"github.com/matzehuels/genomap/pkg/geometry"
)

// Angled fans colliding labels out around their home positions so that
// crowded regions stay readable without very long leader lines.
//
// Labels whose home boxes collide are grouped into islands. Each island is
// placed outward from its middle label; an island that does not fit within
// the maximum line angle is squeezed between its angle limits and the labels
// that still do not fit are popped outward. Neighbouring islands that clash
// are merged, or separated by a boundary when merging would exceed their
// combined angle budget. A final pass lengthens any leader line whose box
// still overlaps an earlier one.
type Angled struct {
	Provider geometry.Provider
	Config   Config
}

// NewAngled returns the island-based strategy.
func NewAngled(p geometry.Provider, cfg Config) *Angled {
	return &Angled{Provider: p, Config: cfg}
}

// island is a run of labels, by index into the position-sorted slice, that
// are placed as a unit. The optional start and stop bounds are set when a
// merge with a neighbour failed.
type island struct {
	members  []int
	startBp  float64
	stopBp   float64
	hasStart bool
	hasStop  bool
}

func (isl *island) first() int { return isl.members[0] }
func (isl *island) last() int  { return isl.members[len(isl.members)-1] }

// pass is the state of one call to Place. Nothing in it survives the call.
type pass struct {
	cfg      Config
	t        track
	outer    float64
	labels   []*Label // sorted by HomeBp
	islandOf []*island
}

// Place implements [Strategy].
func (a *Angled) Place(labels []*Label, baseOffset float64) Report {
	rep := Report{Labels: len(labels)}
	if len(labels) == 0 {
		return rep
	}
	s := a.newPass(baseOffset)
	s.prepare(labels)

	islands := s.findIslands()
	rep.InitialIslands = len(islands)
	for i, isl := range islands {
		s.placeIsland(isl, s.previous(islands, i))
	}

	islands = s.merge(islands, &rep)
	for _, isl := range islands {
		rep.IslandSizes = append(rep.IslandSizes, len(isl.members))
	}

	s.finalize()
	for _, l := range s.labels {
		if l.Popped {
			rep.Popped++
		}
	}
	return rep
}

// =============================================================================
// Pre-pass
// =============================================================================

func (a *Angled) newPass(baseOffset float64) *pass {
	cfg := a.Config.withDefaults()
	return &pass{
		cfg:   cfg,
		t:     newTrack(a.Provider, baseOffset),
		outer: baseOffset + cfg.LineLength,
	}
}

// prepare sorts the labels by home position and resets their per-pass state.
func (s *pass) prepare(labels []*Label) {
	s.labels = slices.Clone(labels)
	for _, l := range s.labels {
		l.HomeBp = s.t.norm(l.HomeBp)
	}
	sort.SliceStable(s.labels, func(i, j int) bool { return s.labels[i].HomeBp < s.labels[j].HomeBp })

	tan := math.Tan(s.cfg.MaxLineAngle * math.Pi / 180)
	ppb := s.t.p.PixelsPerBp(s.outer)
	for _, l := range s.labels {
		l.Popped = false
		l.ClockAttachment = s.t.p.ClockPositionForBp(l.HomeBp, true)

		l.maxBpAdjustment = s.t.length
		if ppb > 0 {
			l.maxBpAdjustment = s.cfg.LineLength * tan / ppb
		}
		if l.ClockAttachment == 6 || l.ClockAttachment == 12 {
			l.maxBpAdjustment /= 2
		}

		s.t.placeAt(l, l.HomeBp, s.outer)
		l.homeRect = l.Rect
	}
}

// findIslands groups consecutive labels whose home boxes overlap.
func (s *pass) findIslands() []*island {
	var islands []*island
	cur := &island{members: []int{0}}
	for i := 1; i < len(s.labels); i++ {
		if s.labels[i].homeRect.Overlaps(s.labels[i-1].homeRect) {
			cur.members = append(cur.members, i)
			continue
		}
		islands = append(islands, cur)
		cur = &island{members: []int{i}}
	}
	islands = append(islands, cur)

	n := len(s.labels)
	if s.cfg.WrapIslands && s.t.circ && len(islands) > 1 &&
		s.labels[n-1].homeRect.Overlaps(s.labels[0].homeRect) {
		last := islands[len(islands)-1]
		islands[0].members = append(slices.Clone(last.members), islands[0].members...)
		islands = islands[:len(islands)-1]
	}

	s.islandOf = make([]*island, n)
	for _, isl := range islands {
		s.own(isl)
	}
	return islands
}

func (s *pass) own(isl *island) {
	for _, m := range isl.members {
		s.islandOf[m] = isl
	}
}

// next returns the label after i in position order, wrapping on circular maps.
func (s *pass) next(i int) (int, bool) {
	if i+1 < len(s.labels) {
		return i + 1, true
	}
	if s.t.circ && len(s.labels) > 1 {
		return 0, true
	}
	return 0, false
}

// prev returns the label before i in position order, wrapping on circular maps.
func (s *pass) prev(i int) (int, bool) {
	if i > 0 {
		return i - 1, true
	}
	if s.t.circ && len(s.labels) > 1 {
		return len(s.labels) - 1, true
	}
	return 0, false
}

// previous returns the island placed before islands[i], if any.
func (s *pass) previous(islands []*island, i int) *island {
	if i > 0 {
		return islands[i-1]
	}
	if s.t.circ && len(islands) > 1 {
		return islands[len(islands)-1]
	}
	return nil
}

// =============================================================================
// Island placement
// =============================================================================

// placeIsland lays out one island. It spreads the members from the middle
// and falls back to the max-angle layout when a limit is hit, popping the
// members that still do not fit.
func (s *pass) placeIsland(isl, prev *island) {
	for _, m := range isl.members {
		s.labels[m].Popped = false
	}
	if len(isl.members) == 1 {
		l := s.labels[isl.first()]
		s.t.placeAt(l, l.HomeBp, s.outer)
		return
	}
	if s.adjust(isl) {
		return
	}
	if f, b, popped := s.maxAngle(isl); popped {
		s.placePopped(isl, f, b, prev)
	}
}

// adjust places the middle member at home and walks outward in both
// directions, stacking each member next to the one before it. It returns
// false when a member would move past its angle budget or an island bound.
func (s *pass) adjust(isl *island) bool {
	m := isl.members
	mid := len(m) / 2
	l := s.labels[m[mid]]
	s.t.placeAt(l, l.HomeBp, s.outer)

	for i := mid + 1; i < len(m); i++ {
		if !s.stack(isl, s.labels[m[i]], s.labels[m[i-1]], Forward) {
			return false
		}
	}
	for i := mid - 1; i >= 0; i-- {
		if !s.stack(isl, s.labels[m[i]], s.labels[m[i+1]], Back) {
			return false
		}
	}
	return true
}

// stack places l next to its placed neighbour nb, going in dir. A label
// whose home position is already clear of nb stays at home.
func (s *pass) stack(isl *island, l, nb *Label, dir int) bool {
	pt, ok := s.adjacent(l, nb, dir)
	if !ok {
		return false
	}
	bp := s.t.norm(s.t.p.BpForPoint(pt))
	shift := float64(dir) * s.t.delta(l.HomeBp, bp)
	if shift <= 0 {
		s.t.placeAt(l, l.HomeBp, s.outer)
		return true
	}
	if shift > l.maxBpAdjustment {
		return false
	}
	if dir == Forward && isl.hasStop && s.t.delta(isl.stopBp, bp) > 0 {
		return false
	}
	if dir == Back && isl.hasStart && s.t.delta(isl.startBp, bp) < 0 {
		return false
	}
	s.t.placeAtPoint(l, pt, s.outer)
	return true
}

// adjacent returns the attach point on the label track that puts l directly
// beside nb in direction dir. Labels attached at the top or bottom are
// stacked sideways; all others are stacked vertically. The free coordinate
// is solved from the track equation, which fails near the extremes of a
// circle.
func (s *pass) adjacent(l, nb *Label, dir int) (geometry.Point, bool) {
	nudge := max(s.t.length*1e-6, 1e-3) * float64(dir)
	p0 := s.t.p.PointForBp(nb.AttachBp, s.outer)
	p1 := s.t.p.PointForBp(nb.AttachBp+nudge, s.outer)
	r := nb.Rect
	gap := s.cfg.Margin

	if l.ClockAttachment == 12 || l.ClockAttachment == 6 {
		left := r.Right() + gap
		if p1.X < p0.X {
			left = r.X - gap - l.Width
		}
		x := left + geometry.AttachOffsetX(l.ClockAttachment, l.Width)
		return s.t.p.SolveTrack(s.outer, geometry.AxisX, x, nb.AttachPoint)
	}

	top := r.Bottom() + gap
	if p1.Y < p0.Y {
		top = r.Y - gap - l.Height
	}
	y := top + geometry.AttachOffsetY(l.ClockAttachment, l.Height)
	return s.t.p.SolveTrack(s.outer, geometry.AxisY, y, nb.AttachPoint)
}

// maxAngle pins the first and last members at their furthest allowed
// positions and walks inward from both ends. It returns the index range
// [f, b] of members that could not be placed, with popped set, when the two
// fronts collide before meeting. A two-member island whose pinned ends still
// overlap pops its last member.
func (s *pass) maxAngle(isl *island) (f, b int, popped bool) {
	m := isl.members
	n := len(m)
	last, first := s.labels[m[n-1]], s.labels[m[0]]

	fwd := last.maxBpAdjustment
	if isl.hasStop {
		fwd = min(fwd, s.t.forward(last.HomeBp, isl.stopBp))
	} else if j, ok := s.next(m[n-1]); ok && s.islandOf[j] != isl {
		fwd = min(fwd, s.t.forward(last.HomeBp, s.labels[j].HomeBp))
	}
	back := first.maxBpAdjustment
	if isl.hasStart {
		back = min(back, s.t.forward(isl.startBp, first.HomeBp))
	} else if j, ok := s.prev(m[0]); ok && s.islandOf[j] != isl {
		back = min(back, s.t.forward(s.labels[j].HomeBp, first.HomeBp))
	}
	s.t.placeAt(last, last.HomeBp+max(0, fwd), s.outer)
	s.t.placeAt(first, first.HomeBp-max(0, back), s.outer)

	if n == 2 {
		if first.Rect.Overlaps(last.Rect) {
			return 1, 1, true
		}
		return 0, 0, false
	}

	f, b = 1, n-2
	for f <= b {
		if !s.snap(s.labels[m[f]], s.labels[m[f-1]], s.labels[m[b+1]], Forward) {
			return f, b, true
		}
		f++
		if f > b {
			break
		}
		if !s.snap(s.labels[m[b]], s.labels[m[b+1]], s.labels[m[f-1]], Back) {
			return f, b, true
		}
		b--
	}
	return 0, 0, false
}

// snap places l next to nb in direction dir unless doing so would collide
// with the opposite front: overlap its box, pass its attach position, or
// leave the track.
func (s *pass) snap(l, nb, front *Label, dir int) bool {
	pt, ok := s.adjacent(l, nb, dir)
	if !ok {
		return false
	}
	r := geometry.RectAt(pt, l.ClockAttachment, l.Width, l.Height)
	if r.Overlaps(front.Rect) {
		return false
	}
	bp := s.t.norm(s.t.p.BpForPoint(pt))
	if float64(dir)*s.t.delta(bp, front.AttachBp) < 0 {
		return false
	}
	s.t.placeAtPoint(l, pt, s.outer)
	return true
}

// placePopped spreads the members f..b evenly between their placed
// neighbours and lengthens each leader line until the box is clear of the
// rest of the island, the labels popped before it and the previous island.
// When b is the last member its own pinned position stands in for the
// neighbour after it.
func (s *pass) placePopped(isl *island, f, b int, prev *island) {
	m := isl.members
	lo := s.labels[m[f-1]].AttachBp
	hi := s.labels[m[min(b+1, len(m)-1)]].AttachBp
	span := max(0, s.t.delta(lo, hi))
	if s.t.circ {
		span = s.t.forward(lo, hi)
	}

	var obstacles []geometry.Rect
	for k, idx := range m {
		if k < f || k > b {
			obstacles = append(obstacles, s.labels[idx].Rect)
		}
	}
	if prev != nil && prev != isl {
		for _, idx := range prev.members {
			obstacles = append(obstacles, s.labels[idx].Rect)
		}
	}

	count := float64(b - f + 1)
	for k := f; k <= b; k++ {
		l := s.labels[m[k]]
		bp := s.t.norm(lo + span*float64(k-f+1)/(count+1))
		l.ClockAttachment = s.t.p.ClockPositionForBp(bp, true)
		s.t.extend(l, bp, s.outer, obstacles)
		l.Popped = true
		obstacles = append(obstacles, l.Rect)
	}
}

// =============================================================================
// Merging
// =============================================================================

// merge resolves clashes between neighbouring islands. Each iteration
// handles the first clashing pair in position order, either merging it or
// bounding both sides. The loop runs at most once per initial island.
func (s *pass) merge(islands []*island, rep *Report) []*island {
	budget := len(islands)
	for iter := 0; iter < budget && len(islands) > 1; iter++ {
		i, ok := s.firstClash(islands)
		if !ok {
			break
		}
		rep.MergeIterations++
		j := (i + 1) % len(islands)
		a, b := islands[i], islands[j]

		if s.canMerge(a, b) {
			merged := &island{
				members:  append(slices.Clone(a.members), b.members...),
				startBp:  a.startBp,
				hasStart: a.hasStart,
				stopBp:   b.stopBp,
				hasStop:  b.hasStop,
			}
			s.own(merged)
			if j == 0 {
				// The pair wraps the origin: the merged island becomes the first.
				islands = append([]*island{merged}, islands[1:i]...)
				i = 0
			} else {
				islands[i] = merged
				islands = slices.Delete(islands, j, j+1)
			}
			s.placeIsland(merged, s.previous(islands, i))
			rep.Merges++
			continue
		}

		s.bound(a, b)
		s.placeIsland(a, s.previous(islands, i))
		s.placeIsland(b, a)
		rep.Boundaries++
	}
	return islands
}

// firstClash returns the index of the first island whose last member
// clashes with the next island's first member. Pairs already separated by a
// boundary are skipped.
func (s *pass) firstClash(islands []*island) (int, bool) {
	pairs := len(islands) - 1
	if s.t.circ {
		pairs = len(islands)
	}
	for i := 0; i < pairs; i++ {
		a, b := islands[i], islands[(i+1)%len(islands)]
		if a.hasStop && b.hasStart {
			continue
		}
		if s.clash(s.labels[a.last()], s.labels[b.first()]) {
			return i, true
		}
	}
	return 0, false
}

// clash reports whether x, ending one island, and y, starting the next,
// overlap or have crossing leader lines. Lines cross when the order of the
// attach positions differs from the order of the home positions, compared on
// which side of half the sequence each forward distance falls so the test
// holds across the origin.
func (s *pass) clash(x, y *Label) bool {
	if x.Rect.Overlaps(y.Rect) {
		return true
	}
	if !s.t.circ {
		return (y.HomeBp-x.HomeBp)*(y.AttachBp-x.AttachBp) < 0
	}
	half := s.t.length / 2
	return (s.t.forward(x.HomeBp, y.HomeBp) < half) != (s.t.forward(x.AttachBp, y.AttachBp) < half)
}

// canMerge reports whether the island formed by a followed by b, measured
// between the attach positions of its outermost members, fits within the
// two islands' combined angle budget.
func (s *pass) canMerge(a, b *island) bool {
	x, y := s.labels[a.first()], s.labels[b.last()]
	return s.t.forward(x.AttachBp, y.AttachBp) <= s.budget(a)+s.budget(b)
}

func (s *pass) budget(isl *island) float64 {
	var out float64
	for _, m := range isl.members {
		out = max(out, s.labels[m].maxBpAdjustment)
	}
	return out
}

// bound splits the gap between the home positions of a's last and b's first
// member, less the boundary margin, and records it as the limit of each
// island.
func (s *pass) bound(a, b *island) {
	x, y := s.labels[a.last()], s.labels[b.first()]
	gap := s.t.forward(x.HomeBp, y.HomeBp)
	if !s.t.circ {
		gap = max(0, y.HomeBp-x.HomeBp)
	}
	margin := 0.0
	if ppb := s.t.p.PixelsPerBp(s.outer); ppb > 0 {
		margin = s.cfg.BoundaryMargin / ppb
	}
	half := max(0, gap/2-margin)

	a.stopBp, a.hasStop = s.t.norm(x.HomeBp+half), true
	b.startBp, b.hasStart = s.t.norm(y.HomeBp-half), true
}

// =============================================================================
// Final pass
// =============================================================================

// finalize re-places every label at its attach position in position order,
// lengthening leader lines until no box overlaps an earlier one.
func (s *pass) finalize() {
	placed := make([]geometry.Rect, 0, len(s.labels))
	for _, l := range s.labels {
		s.t.extend(l, l.AttachBp, l.Offset, placed)
		placed = append(placed, l.Rect)
	}
}
