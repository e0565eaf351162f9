package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/genomap/pkg/cache"
	"github.com/matzehuels/genomap/pkg/genome"
	"github.com/matzehuels/genomap/pkg/ncl"
	"github.com/matzehuels/genomap/pkg/observability"
)

// maxIndexes bounds the number of feature indexes a Runner keeps in memory.
const maxIndexes = 64

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// Layout results go through Cache. Feature indexes are kept in memory per
// map hash and published through an [ncl.Handle], so concurrent layouts of
// the same map share one index. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	mu      sync.Mutex
	indexes map[string]*mapIndex
	order   []string
}

// mapIndex is the index slot of one map. once ensures concurrent first
// callers build the index a single time.
type mapIndex struct {
	once   sync.Once
	handle ncl.Handle[genome.Feature]
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:   c,
		Keyer:   keyer,
		Logger:  logger,
		indexes: make(map[string]*mapIndex),
	}
}

// MapHash returns the content hash of m used in cache keys.
func MapHash(m *genome.Map) (string, error) {
	h, err := cache.HashJSON(m)
	if err != nil {
		return "", fmt.Errorf("hash map: %w", err)
	}
	return h, nil
}

// Index returns the interval index over the named features of m, building
// it on first use.
func (r *Runner) Index(ctx context.Context, m *genome.Map) (*ncl.Index[genome.Feature], error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	hash, err := MapHash(m)
	if err != nil {
		return nil, err
	}
	key := r.Keyer.IndexKey(hash)

	r.mu.Lock()
	mi, ok := r.indexes[key]
	if !ok {
		mi = &mapIndex{}
		r.remember(key, mi)
	}
	r.mu.Unlock()

	mi.once.Do(func() {
		start := time.Now()
		idx := mi.handle.Rebuild(m.Named(), indexOptions(m))
		d := time.Since(start)
		observability.Layout().OnIndexBuild(ctx, idx.Len(), d)
		r.Logger.Debug("built feature index", "map", m.Name, "features", idx.Len(), "duration", d)
	})
	return mi.handle.Load(), nil
}

// remember stores mi under key, evicting the oldest index when full.
// The caller must hold r.mu.
func (r *Runner) remember(key string, mi *mapIndex) {
	if r.indexes == nil {
		r.indexes = make(map[string]*mapIndex)
	}
	if len(r.order) >= maxIndexes {
		delete(r.indexes, r.order[0])
		r.order = r.order[1:]
	}
	r.indexes[key] = mi
	r.order = append(r.order, key)
}

func indexOptions(m *genome.Map) ncl.Options[genome.Feature] {
	opts := ncl.Options[genome.Feature]{
		Start: func(f genome.Feature) int { return f.Start },
		Stop:  func(f genome.Feature) int { return f.Stop },
	}
	if m.Circular {
		opts.CircularLength = m.Length
	}
	return opts
}

// Query returns the named features of m overlapping [start, stop], keeping
// every step-th feature by position.
func (r *Runner) Query(ctx context.Context, m *genome.Map, start, stop, step int) ([]genome.Feature, error) {
	idx, err := r.Index(ctx, m)
	if err != nil {
		return nil, err
	}
	return idx.Query(start, stop, step), nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
