package pipeline

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/genomap/pkg/errors"
	"github.com/matzehuels/genomap/pkg/genome"
	"github.com/matzehuels/genomap/pkg/geometry"
	"github.com/matzehuels/genomap/pkg/labels"
	"github.com/matzehuels/genomap/pkg/observability"
)

// memCache is an in-memory cache.Cache for tests.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.data[key]
	return d, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	c.sets++
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Close() error { return nil }

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func plasmid() *genome.Map {
	return &genome.Map{
		Name:     "pDemo",
		Length:   10_000,
		Circular: true,
		Features: []genome.Feature{
			{Name: "oriC", Start: 9_900, Stop: 150},
			{Name: "bla", Start: 100, Stop: 104},
			{Name: "lacZ", Start: 2_500, Stop: 2_510},
			{Name: "lacI", Start: 2_505, Stop: 2_600},
			{Name: "rop", Start: 2_602, Stop: 2_700},
			{Name: "", Start: 4_000, Stop: 4_100},
			{Name: "cat", Start: 7_000, Stop: 7_500},
		},
	}
}

func denseMap(n int, circular bool) *genome.Map {
	m := &genome.Map{Name: "dense", Length: 10_000, Circular: circular}
	for i := 0; i < n; i++ {
		start := 2_500 + i*2
		m.Features = append(m.Features, genome.Feature{
			Name:  fmt.Sprintf("gene%03d", i),
			Start: start,
			Stop:  start + 1,
		})
	}
	return m
}

func assertDisjoint(t *testing.T, placements []Placement) {
	t.Helper()
	for i := range placements {
		for j := i + 1; j < len(placements); j++ {
			a, b := placements[i].BoundingBox, placements[j].BoundingBox
			if a.Overlaps(b) {
				t.Fatalf("labels %s and %s overlap: %+v %+v", placements[i].Name, placements[j].Name, a, b)
			}
		}
	}
}

func TestValidateStrategy(t *testing.T) {
	tests := []struct {
		strategy string
		wantErr  bool
	}{
		{"angled", false},
		{"default", false},
		{"invalid", true},
		{"Angled", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateStrategy(tt.strategy)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateStrategy(%q) error = %v, wantErr %v", tt.strategy, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidStrategy) {
			t.Errorf("ValidateStrategy(%q) code = %s", tt.strategy, errors.GetCode(err))
		}
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	var opts Options
	require.NoError(t, opts.ValidateAndSetDefaults())

	assert.Equal(t, DefaultWidth, opts.Width)
	assert.Equal(t, DefaultHeight, opts.Height)
	assert.Equal(t, DefaultStrategy, opts.Strategy)
	assert.Equal(t, labels.DefaultLineLength, opts.LineLength)
	assert.Equal(t, labels.DefaultMaxLineAngle, opts.MaxLineAngle)
	assert.Equal(t, DefaultFontSize, opts.FontSize)
	assert.Equal(t, DefaultZoom, opts.Zoom)
	assert.NotNil(t, opts.Logger)

	// Idempotent.
	require.NoError(t, opts.ValidateAndSetDefaults())
	assert.Equal(t, DefaultWidth, opts.Width)
}

func TestValidateAndSetDefaultsRejects(t *testing.T) {
	tests := map[string]struct {
		opts Options
		code errors.Code
	}{
		"NegativeWidth":   {Options{Width: -1}, errors.ErrCodeInvalidInput},
		"NegativeZoom":    {Options{Zoom: -2}, errors.ErrCodeInvalidInput},
		"RightAngle":      {Options{MaxLineAngle: 90}, errors.ErrCodeInvalidInput},
		"NegativeLabels":  {Options{MaxLabels: -1}, errors.ErrCodeInvalidInput},
		"NegativeCenter":  {Options{CenterBp: -5}, errors.ErrCodeInvalidInput},
		"UnknownStrategy": {Options{Strategy: "spiral"}, errors.ErrCodeInvalidStrategy},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			err := tc.opts.ValidateAndSetDefaults()
			require.Error(t, err)
			assert.Equal(t, tc.code, errors.GetCode(err))
		})
	}
}

func TestLayoutKeyOptsTracksOutputFields(t *testing.T) {
	a := Options{Strategy: "angled"}
	b := Options{Strategy: "angled", Refresh: true, Logger: quietLogger()}
	require.NoError(t, a.ValidateAndSetDefaults())
	require.NoError(t, b.ValidateAndSetDefaults())
	assert.Equal(t, a.LayoutKeyOpts(), b.LayoutKeyOpts())

	c := Options{Strategy: "angled", Zoom: 2}
	require.NoError(t, c.ValidateAndSetDefaults())
	assert.NotEqual(t, a.LayoutKeyOpts(), c.LayoutKeyOpts())
}

func TestVisibleWindow(t *testing.T) {
	tests := map[string]struct {
		circular bool
		zoom     float64
		center   int
		want     Window
	}{
		"WholeMap":            {circular: true, zoom: 1, want: Window{Start: 1, Stop: 1_000, Step: 1}},
		"ZoomedOutIsWholeMap": {circular: false, zoom: 0.5, want: Window{Start: 1, Stop: 1_000, Step: 1}},
		"DefaultCenter":       {circular: false, zoom: 4, want: Window{Start: 375, Stop: 624, Step: 1}},
		"WrapsOrigin":         {circular: true, zoom: 10, center: 1, want: Window{Start: 951, Stop: 50, Step: 1}},
		"LinearClampedStart":  {circular: false, zoom: 10, center: 10, want: Window{Start: 1, Stop: 100, Step: 1}},
		"LinearClampedStop":   {circular: false, zoom: 10, center: 990, want: Window{Start: 901, Stop: 1_000, Step: 1}},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			m := &genome.Map{Name: "w", Length: 1_000, Circular: tc.circular}
			got := VisibleWindow(m, Options{Zoom: tc.zoom, CenterBp: tc.center})
			assert.Equal(t, tc.want, got)
		})
	}

	assert.Equal(t, 100, Window{Start: 951, Stop: 50}.Span(1_000))
	assert.InDelta(t, 1.0, Window{Start: 951, Stop: 50}.Middle(1_000), 0.5)
}

func TestLayoutCircular(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	defer r.Close()

	m := plasmid()
	result, hit, err := r.Layout(context.Background(), m, Options{})
	require.NoError(t, err)
	assert.False(t, hit)

	assert.NotEmpty(t, result.ID)
	assert.Equal(t, "pDemo", result.Map)
	assert.Equal(t, StrategyAngled, result.Strategy)
	assert.Equal(t, 6, result.Stats.Features, "unnamed features are not indexed")
	require.Len(t, result.Labels, 6)
	assertDisjoint(t, result.Labels)

	for _, p := range result.Labels {
		assert.True(t, p.BoundingBox.Valid(), p.Name)
		assert.GreaterOrEqual(t, p.LineLength, 0.0, p.Name)
	}
	// oriC crosses the origin; its midpoint does too.
	for _, p := range result.Labels {
		if p.Name == "oriC" {
			assert.InDelta(t, 25.0, p.HomeBp, 1e-9)
		}
	}
}

func TestLayoutDenseIsDisjoint(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())

	for _, strategy := range []string{StrategyAngled, StrategyDefault} {
		for _, circular := range []bool{true, false} {
			name := fmt.Sprintf("%s/circular=%v", strategy, circular)
			t.Run(name, func(t *testing.T) {
				result, _, err := r.Layout(context.Background(), denseMap(60, circular), Options{Strategy: strategy})
				require.NoError(t, err)
				assert.Len(t, result.Labels, 60)
				assertDisjoint(t, result.Labels)
			})
		}
	}
}

func TestLayoutLinearLabelsAboveAxis(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	m := plasmid()
	m.Circular = false
	m.Features[0] = genome.Feature{Name: "oriC", Start: 9_900, Stop: 9_990}

	result, _, err := r.Layout(context.Background(), m, Options{Strategy: StrategyDefault})
	require.NoError(t, err)
	axis := DefaultHeight * linearAxisRatio
	for _, p := range result.Labels {
		assert.LessOrEqual(t, p.BoundingBox.Bottom(), axis+1e-9, p.Name)
	}
}

func TestLayoutMaxLabelsThinsByStride(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	m := denseMap(100, true)

	result, _, err := r.Layout(context.Background(), m, Options{MaxLabels: 10})
	require.NoError(t, err)
	assert.Equal(t, 10, result.Window.Step)
	assert.Equal(t, 100, result.Stats.Visible)
	assert.Len(t, result.Labels, 10)
}

func TestLayoutZoomedWindow(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	m := plasmid()

	result, _, err := r.Layout(context.Background(), m, Options{Zoom: 10, CenterBp: 2_550})
	require.NoError(t, err)
	assert.Equal(t, Window{Start: 2_050, Stop: 3_049, Step: 1}, result.Window)

	names := make([]string, len(result.Labels))
	for i, p := range result.Labels {
		names[i] = p.Name
	}
	assert.ElementsMatch(t, []string{"lacZ", "lacI", "rop"}, names)
	assertDisjoint(t, result.Labels)
}

func TestLayoutWindowAcrossOriginListsEachFeatureOnce(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	m := plasmid()
	m.Features = append(m.Features, genome.Feature{Name: "backbone", Start: 120, Stop: 9_950})

	result, _, err := r.Layout(context.Background(), m, Options{Zoom: 10, CenterBp: 1})
	require.NoError(t, err)
	require.Greater(t, result.Window.Start, result.Window.Stop, "window must wrap the origin")

	names := make([]string, len(result.Labels))
	for i, p := range result.Labels {
		names[i] = p.Name
	}
	assert.ElementsMatch(t, []string{"oriC", "bla", "backbone"}, names)
	assert.Equal(t, 3, result.Stats.Visible)
	assertDisjoint(t, result.Labels)
}

func TestLayoutCache(t *testing.T) {
	c := newMemCache()
	r := NewRunner(c, nil, quietLogger())
	ctx := context.Background()

	first, hit, err := r.Layout(ctx, plasmid(), Options{})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 1, c.sets)

	second, hit, err := r.Layout(ctx, plasmid(), Options{})
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Labels, second.Labels)

	// Different options miss.
	_, hit, err = r.Layout(ctx, plasmid(), Options{Strategy: StrategyDefault})
	require.NoError(t, err)
	assert.False(t, hit)

	// Refresh recomputes and replaces the entry.
	third, hit, err := r.Layout(ctx, plasmid(), Options{Refresh: true})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NotEqual(t, first.ID, third.ID)
	assert.Equal(t, first.Labels, third.Labels)
}

func TestLayoutRejectsInvalidMap(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	_, _, err := r.Layout(context.Background(), &genome.Map{Name: "empty"}, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidMap))
}

func TestLayoutRejectsInvalidOptions(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	_, _, err := r.Layout(context.Background(), plasmid(), Options{Strategy: "spiral"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidStrategy))
}

func TestIndexIsReused(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	ctx := context.Background()

	a, err := r.Index(ctx, plasmid())
	require.NoError(t, err)
	b, err := r.Index(ctx, plasmid())
	require.NoError(t, err)
	assert.Same(t, a, b)

	other := plasmid()
	other.Name = "pOther"
	c, err := r.Index(ctx, other)
	require.NoError(t, err)
	assert.NotSame(t, a, c)
}

type buildCounter struct {
	observability.NoopLayoutHooks
	builds atomic.Int32
}

func (b *buildCounter) OnIndexBuild(context.Context, int, time.Duration) { b.builds.Add(1) }

func TestIndexBuiltOnceForConcurrentCallers(t *testing.T) {
	hooks := &buildCounter{}
	observability.SetLayoutHooks(hooks)
	defer observability.Reset()

	r := NewRunner(nil, nil, quietLogger())
	const callers = 16
	got := make([]any, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			idx, err := r.Index(context.Background(), plasmid())
			assert.NoError(t, err)
			got[i] = idx
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), hooks.builds.Load())
	for i := 1; i < callers; i++ {
		assert.Same(t, got[0], got[i])
	}
}

func TestIndexEvictsOldest(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	ctx := context.Background()

	for i := 0; i <= maxIndexes; i++ {
		m := plasmid()
		m.Name = fmt.Sprintf("p%d", i)
		_, err := r.Index(ctx, m)
		require.NoError(t, err)
	}
	assert.Len(t, r.indexes, maxIndexes)
	assert.Len(t, r.order, maxIndexes)
}

func TestQueryWrapsOrigin(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())

	got, err := r.Query(context.Background(), plasmid(), 9_950, 120, 1)
	require.NoError(t, err)
	names := make([]string, len(got))
	for i, f := range got {
		names[i] = f.Name
	}
	assert.ElementsMatch(t, []string{"oriC", "bla"}, names)
}

type nopStrategy struct{}

func (nopStrategy) Place(ls []*labels.Label, _ float64) labels.Report {
	for i, l := range ls {
		l.Rect = geometry.Rect{X: float64(i) * 100, Width: 10, Height: 10}
	}
	return labels.Report{Labels: len(ls)}
}

func TestRegisterStrategy(t *testing.T) {
	RegisterStrategy("test-grid", func(geometry.Provider, labels.Config) labels.Strategy {
		return nopStrategy{}
	})
	require.NoError(t, ValidateStrategy("test-grid"))

	r := NewRunner(nil, nil, quietLogger())
	result, _, err := r.Layout(context.Background(), plasmid(), Options{Strategy: "test-grid"})
	require.NoError(t, err)
	assert.Equal(t, "test-grid", result.Strategy)
	assertDisjoint(t, result.Labels)
}

func TestResultRoundTrip(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	result, _, err := r.Layout(context.Background(), plasmid(), Options{})
	require.NoError(t, err)

	data, err := MarshalResult(result)
	require.NoError(t, err)
	back, err := UnmarshalResult(data)
	require.NoError(t, err)
	assert.Equal(t, result, back)

	_, err = UnmarshalResult([]byte("{"))
	assert.Error(t, err)
}
