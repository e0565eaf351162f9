package labels

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/genomap/pkg/geometry"
)

const testBase = 200.0

func circle() geometry.Provider {
	return geometry.NewCircular(geometry.Point{}, 10_000)
}

func makeLabels(bps ...float64) []*Label {
	out := make([]*Label, len(bps))
	for i, bp := range bps {
		out[i] = New(fmt.Sprintf("f%d", i), bp, 40, 12)
	}
	return out
}

func assertNoOverlap(t *testing.T, ls []*Label) {
	t.Helper()
	for i := range ls {
		require.True(t, ls[i].Rect.Valid(), "label %s has an invalid box", ls[i].Name)
		for j := i + 1; j < len(ls); j++ {
			if ls[i].Rect.Overlaps(ls[j].Rect) {
				t.Fatalf("labels %s and %s overlap: %+v %+v", ls[i].Name, ls[j].Name, ls[i].Rect, ls[j].Rect)
			}
		}
	}
}

func rects(ls []*Label) []geometry.Rect {
	out := make([]geometry.Rect, len(ls))
	for i, l := range ls {
		out[i] = l.Rect
	}
	return out
}

func randomLabels(rng *rand.Rand, n, length int) []*Label {
	out := make([]*Label, n)
	for i := range out {
		out[i] = New(fmt.Sprintf("r%d", i), float64(1+rng.Intn(length)), float64(20+rng.Intn(60)), float64(10+rng.Intn(5)))
	}
	return out
}

// =============================================================================
// Angled
// =============================================================================

func TestAngledSingleIslandSpreadsFromMiddle(t *testing.T) {
	ls := makeLabels(100, 102, 104)
	rep := NewAngled(circle(), DefaultConfig()).Place(ls, testBase)

	assert.Equal(t, 1, rep.InitialIslands)
	assert.Equal(t, []int{3}, rep.IslandSizes)
	assert.Equal(t, 0, rep.Popped)
	assert.Equal(t, []int{Back, None, Forward}, []int{ls[0].Direction, ls[1].Direction, ls[2].Direction})
	assertNoOverlap(t, ls)

	for _, l := range ls {
		assert.Equal(t, 6, l.ClockAttachment, "labels near the top attach at the bottom of their box")
		assert.InDelta(t, DefaultLineLength, l.LineLength(testBase), 1e-6)
	}
}

func TestAngledMergesClashingIslands(t *testing.T) {
	ls := makeLabels(2500, 2502, 2600, 2602)
	rep := NewAngled(circle(), DefaultConfig()).Place(ls, testBase)

	assert.Equal(t, 2, rep.InitialIslands)
	assert.Equal(t, 1, rep.MergeIterations)
	assert.Equal(t, 1, rep.Merges)
	assert.Equal(t, 0, rep.Boundaries)
	assert.Equal(t, []int{4}, rep.IslandSizes)
	assertNoOverlap(t, ls)
}

func TestAngledPopsOverfullIsland(t *testing.T) {
	bps := make([]float64, 60)
	for i := range bps {
		bps[i] = float64(2500 + i)
	}
	ls := makeLabels(bps...)
	rep := NewAngled(circle(), DefaultConfig()).Place(ls, testBase)

	assert.Equal(t, 1, rep.InitialIslands)
	assert.Positive(t, rep.Popped)

	popped := 0
	for _, l := range ls {
		if l.Popped {
			popped++
		}
	}
	assert.Equal(t, rep.Popped, popped)
	assertNoOverlap(t, ls)
}

func TestAngledPoppedLabelsClearIslandBeforeFinalPass(t *testing.T) {
	bps := make([]float64, 60)
	for i := range bps {
		bps[i] = float64(2500 + i)
	}
	s := NewAngled(circle(), DefaultConfig()).newPass(testBase)
	s.prepare(makeLabels(bps...))
	islands := s.findIslands()
	require.Len(t, islands, 1)
	s.placeIsland(islands[0], nil)

	members := make([]*Label, len(islands[0].members))
	for k, m := range islands[0].members {
		members[k] = s.labels[m]
	}
	assertNoOverlap(t, members)

	f, b := -1, -1
	for k, l := range members {
		if l.Popped {
			if f < 0 {
				f = k
			}
			b = k
		}
	}
	require.Positive(t, f, "an overfull island must pop labels")
	require.Less(t, b, len(members)-1)

	lo, hi := members[f-1].AttachBp, members[b+1].AttachBp
	for k := f; k <= b; k++ {
		l := members[k]
		assert.True(t, l.Popped, "popped labels form one run")
		assert.GreaterOrEqual(t, l.AttachBp, lo, l.Name)
		assert.LessOrEqual(t, l.AttachBp, hi, l.Name)
	}
}

func TestAngledTwoMemberIslandPopsWhenPinnedEndsOverlap(t *testing.T) {
	s := NewAngled(circle(), DefaultConfig()).newPass(testBase)
	s.prepare(makeLabels(2500, 2501))
	islands := s.findIslands()
	require.Len(t, islands, 1)

	isl := islands[0]
	isl.stopBp, isl.hasStop = 2501, true
	isl.startBp, isl.hasStart = 2500, true
	s.placeIsland(isl, nil)

	first, last := s.labels[0], s.labels[1]
	assert.False(t, first.Popped)
	assert.True(t, last.Popped)
	assert.False(t, first.Rect.Overlaps(last.Rect))
}

// Two dense islands whose combined spread exceeds both angle budgets are
// kept apart by a boundary instead of being merged.
func TestAngledBoundsIslandsThatCannotMerge(t *testing.T) {
	var bps []float64
	for i := 0; i < 12; i++ {
		bps = append(bps, float64(2000+i))
	}
	for i := 0; i < 12; i++ {
		bps = append(bps, float64(2800+i))
	}

	s := NewAngled(circle(), DefaultConfig()).newPass(testBase)
	s.prepare(makeLabels(bps...))
	islands := s.findIslands()
	require.Len(t, islands, 2)
	for i, isl := range islands {
		s.placeIsland(isl, s.previous(islands, i))
	}

	var rep Report
	islands = s.merge(islands, &rep)
	assert.Equal(t, 1, rep.Boundaries)
	assert.Equal(t, 0, rep.Merges)
	assert.LessOrEqual(t, rep.MergeIterations, 2)
	require.Len(t, islands, 2)

	a, b := islands[0], islands[1]
	require.True(t, a.hasStop)
	require.True(t, b.hasStart)
	assert.Less(t, a.stopBp, b.startBp)
	assert.Greater(t, a.stopBp, 2011.0)
	assert.Less(t, b.startBp, 2800.0)
	for _, m := range a.members {
		assert.LessOrEqual(t, s.labels[m].AttachBp, a.stopBp+1e-6, s.labels[m].Name)
	}
	for _, m := range b.members {
		assert.GreaterOrEqual(t, s.labels[m].AttachBp, b.startBp-1e-6, s.labels[m].Name)
	}

	ls := makeLabels(bps...)
	placed := NewAngled(circle(), DefaultConfig()).Place(ls, testBase)
	assert.Equal(t, 1, placed.Boundaries)
	assert.Equal(t, []int{12, 12}, placed.IslandSizes)
	assertNoOverlap(t, ls)
}

func TestAngledWrapIslands(t *testing.T) {
	bps := []float64{1, 3, 5000, 9998, 10_000}

	rep := NewAngled(circle(), DefaultConfig()).Place(makeLabels(bps...), testBase)
	assert.Equal(t, 3, rep.InitialIslands)

	cfg := DefaultConfig()
	cfg.WrapIslands = true
	ls := makeLabels(bps...)
	rep = NewAngled(circle(), cfg).Place(ls, testBase)
	assert.Equal(t, 2, rep.InitialIslands)
	assertNoOverlap(t, ls)
}

func TestAngledRandomLabels(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		t.Run(fmt.Sprintf("seed%d", seed), func(t *testing.T) {
			rng := rand.New(rand.NewSource(seed))
			ls := randomLabels(rng, 500, 10_000)
			s := NewAngled(circle(), DefaultConfig())

			rep := s.Place(ls, testBase)
			assertNoOverlap(t, ls)
			assert.LessOrEqual(t, rep.MergeIterations, rep.InitialIslands)
			assert.Equal(t, 500, rep.Labels)

			first := rects(ls)
			again := s.Place(ls, testBase)
			assert.Equal(t, first, rects(ls), "placing twice must not drift")
			assert.Equal(t, rep, again)
		})
	}
}

func TestAngledLinear(t *testing.T) {
	p := geometry.NewLinear(geometry.Point{X: 0, Y: 600}, 800, 50_000)
	rng := rand.New(rand.NewSource(3))
	ls := randomLabels(rng, 200, 50_000)

	rep := NewAngled(p, DefaultConfig()).Place(ls, 10)
	assertNoOverlap(t, ls)
	assert.LessOrEqual(t, rep.MergeIterations, rep.InitialIslands)
	for _, l := range ls {
		assert.Equal(t, 6, l.ClockAttachment)
		assert.GreaterOrEqual(t, l.LineLength(10), DefaultLineLength-1e-9)
	}
}

func TestAngledEmptyAndSingle(t *testing.T) {
	s := NewAngled(circle(), DefaultConfig())
	assert.Equal(t, Report{}, s.Place(nil, testBase))

	ls := makeLabels(2500)
	rep := s.Place(ls, testBase)
	assert.Equal(t, []int{1}, rep.IslandSizes)
	assert.Equal(t, None, ls[0].Direction)
	assert.Equal(t, 2500.0, ls[0].AttachBp)
	assert.InDelta(t, 220.0, ls[0].AttachPoint.X, 1e-3)
	assert.InDelta(t, DefaultLineLength, ls[0].LineLength(testBase), 1e-9)
}

func TestAngledKeepsInputOrder(t *testing.T) {
	ls := makeLabels(5000, 100, 2500)
	NewAngled(circle(), DefaultConfig()).Place(ls, testBase)
	assert.Equal(t, []string{"f0", "f1", "f2"}, []string{ls[0].Name, ls[1].Name, ls[2].Name})
}

// =============================================================================
// Default
// =============================================================================

func TestDefaultRandomLabels(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	ls := randomLabels(rng, 500, 10_000)
	s := NewDefault(circle(), DefaultConfig())

	rep := s.Place(ls, testBase)
	assert.Equal(t, Report{Labels: 500}, rep)
	assertNoOverlap(t, ls)
	for _, l := range ls {
		assert.Equal(t, None, l.Direction)
		assert.Equal(t, l.HomeBp, l.AttachBp)
		assert.GreaterOrEqual(t, l.LineLength(testBase), DefaultLineLength-1e-9)
	}

	first := rects(ls)
	s.Place(ls, testBase)
	assert.Equal(t, first, rects(ls))
}

func TestDefaultExtendsOnCollision(t *testing.T) {
	ls := makeLabels(1, 1)
	NewDefault(circle(), DefaultConfig()).Place(ls, testBase)

	assert.InDelta(t, DefaultLineLength, ls[0].LineLength(testBase), 1e-9)
	assert.InDelta(t, DefaultLineLength+12, ls[1].LineLength(testBase), 1e-9)
	assertNoOverlap(t, ls)
}

func TestDefaultNormalizesHome(t *testing.T) {
	ls := makeLabels(10_001)
	NewDefault(circle(), DefaultConfig()).Place(ls, testBase)
	assert.InDelta(t, 1.0, ls[0].HomeBp, 1e-9)
	assert.InDelta(t, 0.0, ls[0].AttachPoint.X, 1e-9)
	assert.InDelta(t, -220.0, ls[0].AttachPoint.Y, 1e-9)
}

// =============================================================================
// Config and text
// =============================================================================

func TestConfigDefaults(t *testing.T) {
	cfg := Config{MaxLineAngle: 95, Margin: -1}.withDefaults()
	assert.Equal(t, DefaultLineLength, cfg.LineLength)
	assert.Less(t, cfg.MaxLineAngle, 90.0)
	assert.Equal(t, 0.0, cfg.Margin)
}

func TestMeasureText(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		size  float64
		wantW float64
		wantH float64
	}{
		{"Basic", "abcd", 10, 22, 10},
		{"DefaultSize", "ab", 0, 13.2, 12},
		{"Runes", "αβγ", 10, 16.5, 10},
		{"Empty", "", 10, 0, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := MeasureText(tt.text, tt.size)
			assert.InDelta(t, tt.wantW, w, 1e-9)
			assert.Equal(t, tt.wantH, h)
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "dnaA..", Truncate("dnaA-promoter", 6))
	assert.Equal(t, "a..", Truncate("abcdef", 1))
}
