package pipeline

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/genomap/pkg/cache"
	"github.com/matzehuels/genomap/pkg/genome"
	"github.com/matzehuels/genomap/pkg/geometry"
	"github.com/matzehuels/genomap/pkg/labels"
	"github.com/matzehuels/genomap/pkg/observability"
)

// linearPadding is the horizontal canvas margin around a linear map.
const linearPadding = 20.0

// linearAxisRatio places the axis of a linear map this far down the canvas.
const linearAxisRatio = 0.75

// =============================================================================
// Window
// =============================================================================

// Window is the visible range of a map. On a circular map Start > Stop means
// the window wraps the origin.
type Window struct {
	Start int `json:"start"`
	Stop  int `json:"stop"`
	// Step is the stride used to thin the visible features.
	Step int `json:"step"`
}

// Span returns the number of bases in the window.
func (w Window) Span(length int) int {
	if w.Start > w.Stop {
		return length - w.Start + w.Stop + 1
	}
	return w.Stop - w.Start + 1
}

// Middle returns the centre position of the window.
func (w Window) Middle(length int) float64 {
	mid := float64(w.Start) + float64(w.Span(length)-1)/2
	if mid > float64(length) {
		mid -= float64(length)
	}
	return mid
}

// VisibleWindow returns the range of m shown at the zoom and centre in opts.
// At zoom 1 or below the whole map is visible. Otherwise Length/Zoom bases
// centred on CenterBp (the map middle when zero) are shown; a circular
// window wraps the origin and a linear one is shifted to stay on the map.
// opts must already be validated.
func VisibleWindow(m *genome.Map, opts Options) Window {
	length := m.Length
	if opts.Zoom <= 1 {
		return Window{Start: 1, Stop: length, Step: 1}
	}
	span := max(1, min(length, int(math.Ceil(float64(length)/opts.Zoom))))
	center := opts.CenterBp
	if center <= 0 {
		center = (length + 1) / 2
	}

	start := center - span/2
	if m.Circular {
		center = (center-1)%length + 1
		start = center - span/2
		start = ((start-1)%length+length)%length + 1
		stop := (start+span-2)%length + 1
		return Window{Start: start, Stop: stop, Step: 1}
	}
	start = min(max(start, 1), length-span+1)
	return Window{Start: start, Stop: start + span - 1, Step: 1}
}

// =============================================================================
// Layout
// =============================================================================

// Layout places the labels of the features of m visible under opts.
//
// The result is looked up in the cache first (unless opts.Refresh is set) and
// stored after a fresh computation. The boolean reports a cache hit.
func (r *Runner) Layout(ctx context.Context, m *genome.Map, opts Options) (*Result, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)
	if err := m.Validate(); err != nil {
		return nil, false, err
	}

	hash, err := MapHash(m)
	if err != nil {
		return nil, false, err
	}
	cacheKey := r.Keyer.LayoutKey(hash, opts.LayoutKeyOpts())
	hooks := observability.Cache()

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if cached, err := UnmarshalResult(data); err == nil {
				hooks.OnCacheHit(ctx, "layout")
				opts.Logger.Debug("layout cache hit", "map", m.Name, "key", cacheKey)
				return cached, true, nil
			}
			// If deserialization fails, fall through to recompute
		} else if err != nil {
			opts.Logger.Warn("cache lookup failed", "error", err)
		}
		hooks.OnCacheMiss(ctx, "layout")
	}

	result, err := r.place(ctx, m, opts)
	if err != nil {
		return nil, false, err
	}
	result.MapHash = hash

	if data, err := MarshalResult(result); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout); err != nil {
			opts.Logger.Warn("cache store failed", "error", err)
		} else {
			hooks.OnCacheSet(ctx, "layout", len(data))
		}
	}
	return result, false, nil
}

// place runs the index → window → placement stages without caching.
func (r *Runner) place(ctx context.Context, m *genome.Map, opts Options) (*Result, error) {
	started := time.Now()

	lh := observability.Layout()
	idx, err := r.Index(ctx, m)
	if err != nil {
		lh.OnLayoutComplete(ctx, opts.Strategy, time.Since(started), err)
		return nil, fmt.Errorf("index: %w", err)
	}

	win := VisibleWindow(m, opts)
	visible := idx.Count(win.Start, win.Stop, 1)
	if opts.MaxLabels > 0 && visible > opts.MaxLabels {
		win.Step = (visible + opts.MaxLabels - 1) / opts.MaxLabels
	}
	features := idx.Query(win.Start, win.Stop, win.Step)

	ls := make([]*labels.Label, len(features))
	for i, f := range features {
		w, h := labels.MeasureText(f.Name, opts.FontSize)
		ls[i] = labels.New(f.Name, f.MidBp(m.Length, m.Circular), w, h)
	}

	provider, base := newProvider(m, win, opts)
	factory, _ := lookupStrategy(opts.Strategy)
	strategy := factory(provider, opts.LabelConfig())

	lh.OnLayoutStart(ctx, opts.Strategy, len(ls))
	rep := strategy.Place(ls, base)
	elapsed := time.Since(started)
	lh.OnIslandsResolved(ctx, rep.InitialIslands, len(rep.IslandSizes), rep.Popped)
	lh.OnLayoutComplete(ctx, opts.Strategy, elapsed, nil)

	opts.Logger.Info("placed labels",
		"map", m.Name,
		"strategy", opts.Strategy,
		"labels", len(ls),
		"islands", rep.InitialIslands,
		"popped", rep.Popped,
		"duration", elapsed)

	result := &Result{
		ID:       uuid.NewString(),
		Map:      m.Name,
		Length:   m.Length,
		Circular: m.Circular,
		Window:   win,
		Strategy: opts.Strategy,
		Labels:   make([]Placement, len(ls)),
		Stats: Stats{
			Features:        idx.Len(),
			Visible:         visible,
			Labels:          len(ls),
			InitialIslands:  rep.InitialIslands,
			MergeIterations: rep.MergeIterations,
			FinalIslands:    len(rep.IslandSizes),
			Popped:          rep.Popped,
			Duration:        elapsed,
		},
	}
	for i, l := range ls {
		result.Labels[i] = newPlacement(l, base)
	}
	return result, nil
}

// newProvider returns the geometry for the window and the offset of the
// label track base from the map.
func newProvider(m *genome.Map, win Window, opts Options) (geometry.Provider, float64) {
	if m.Circular {
		radius := opts.Radius
		if radius == 0 {
			radius = DefaultRadiusRatio * min(opts.Width, opts.Height)
		}
		center := geometry.Point{X: opts.Width / 2, Y: opts.Height / 2}
		if opts.Zoom > 1 {
			radius *= opts.Zoom
			// Shift the circle so the middle of the window sits at the
			// canvas centre.
			p := geometry.NewCircular(geometry.Point{}, m.Length).PointForBp(win.Middle(m.Length), radius)
			center = geometry.Point{X: center.X - p.X, Y: center.Y - p.Y}
		}
		return geometry.NewCircular(center, m.Length), radius
	}

	usable := max(1, opts.Width-2*linearPadding)
	scale := usable / float64(win.Span(m.Length))
	origin := geometry.Point{
		X: linearPadding - float64(win.Start-1)*scale,
		Y: opts.Height * linearAxisRatio,
	}
	return geometry.NewLinear(origin, scale*float64(m.Length), m.Length), DefaultTrackOffset
}
