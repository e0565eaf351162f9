package observability

import (
	"context"
	"io"
	"time"

	"github.com/rcrowley/go-metrics"
)

// MetricsHooks implements every hook interface on a go-metrics registry.
type MetricsHooks struct {
	registry metrics.Registry

	IndexBuilds    metrics.Timer
	Layouts        metrics.Timer
	LayoutErrors   metrics.Counter
	LabelsPlaced   metrics.Counter
	InitialIslands metrics.Histogram
	FinalIslands   metrics.Histogram
	Popped         metrics.Histogram
	CacheHits      metrics.Counter
	CacheMisses    metrics.Counter
	CacheBytes     metrics.Counter
	Requests       metrics.Timer
	ClientErrors   metrics.Counter
	ServerErrors   metrics.Counter
}

// NewMetricsHooks creates hooks backed by a fresh registry.
func NewMetricsHooks() *MetricsHooks {
	r := metrics.NewRegistry()
	sample := func() metrics.Sample { return metrics.NewExpDecaySample(1028, 0.015) }
	return &MetricsHooks{
		registry:       r,
		IndexBuilds:    metrics.NewRegisteredTimer("index.build", r),
		Layouts:        metrics.NewRegisteredTimer("layout.duration", r),
		LayoutErrors:   metrics.NewRegisteredCounter("layout.errors", r),
		LabelsPlaced:   metrics.NewRegisteredCounter("labels.placed", r),
		InitialIslands: metrics.NewRegisteredHistogram("islands.initial", r, sample()),
		FinalIslands:   metrics.NewRegisteredHistogram("islands.final", r, sample()),
		Popped:         metrics.NewRegisteredHistogram("labels.popped", r, sample()),
		CacheHits:      metrics.NewRegisteredCounter("cache.hits", r),
		CacheMisses:    metrics.NewRegisteredCounter("cache.misses", r),
		CacheBytes:     metrics.NewRegisteredCounter("cache.bytes_written", r),
		Requests:       metrics.NewRegisteredTimer("http.requests", r),
		ClientErrors:   metrics.NewRegisteredCounter("http.4xx", r),
		ServerErrors:   metrics.NewRegisteredCounter("http.5xx", r),
	}
}

// Registry returns the underlying registry.
func (m *MetricsHooks) Registry() metrics.Registry { return m.registry }

// OnIndexBuild implements [LayoutHooks].
func (m *MetricsHooks) OnIndexBuild(_ context.Context, _ int, d time.Duration) {
	m.IndexBuilds.Update(d)
}

// OnLayoutStart implements [LayoutHooks].
func (m *MetricsHooks) OnLayoutStart(_ context.Context, _ string, labels int) {
	m.LabelsPlaced.Inc(int64(labels))
}

// OnLayoutComplete implements [LayoutHooks].
func (m *MetricsHooks) OnLayoutComplete(_ context.Context, _ string, d time.Duration, err error) {
	m.Layouts.Update(d)
	if err != nil {
		m.LayoutErrors.Inc(1)
	}
}

// OnIslandsResolved implements [LayoutHooks].
func (m *MetricsHooks) OnIslandsResolved(_ context.Context, initial, final, popped int) {
	m.InitialIslands.Update(int64(initial))
	m.FinalIslands.Update(int64(final))
	m.Popped.Update(int64(popped))
}

// OnCacheHit implements [CacheHooks].
func (m *MetricsHooks) OnCacheHit(context.Context, string) { m.CacheHits.Inc(1) }

// OnCacheMiss implements [CacheHooks].
func (m *MetricsHooks) OnCacheMiss(context.Context, string) { m.CacheMisses.Inc(1) }

// OnCacheSet implements [CacheHooks].
func (m *MetricsHooks) OnCacheSet(_ context.Context, _ string, size int) {
	m.CacheBytes.Inc(int64(size))
}

// OnRequest implements [HTTPHooks].
func (m *MetricsHooks) OnRequest(context.Context, string, string) {}

// OnResponse implements [HTTPHooks].
func (m *MetricsHooks) OnResponse(_ context.Context, _, _ string, status int, d time.Duration) {
	m.Requests.Update(d)
	switch {
	case status >= 500:
		m.ServerErrors.Inc(1)
	case status >= 400:
		m.ClientErrors.Inc(1)
	}
}

// WriteText writes a human-readable snapshot of every metric to w.
func (m *MetricsHooks) WriteText(w io.Writer) {
	metrics.WriteOnce(m.registry, w)
}

// WriteJSON writes a JSON snapshot of every metric to w.
func (m *MetricsHooks) WriteJSON(w io.Writer) {
	metrics.WriteJSONOnce(m.registry, w)
}

// Close stops the background goroutines of the registry's meters.
func (m *MetricsHooks) Close() {
	m.registry.UnregisterAll()
}

// Ensure MetricsHooks implements every hook interface.
var (
	_ LayoutHooks = (*MetricsHooks)(nil)
	_ CacheHooks  = (*MetricsHooks)(nil)
	_ HTTPHooks   = (*MetricsHooks)(nil)
)
