package ncl

import (
	"slices"
	"sort"
	"sync/atomic"
)

// Options configures how [Build] reads ranges from items.
type Options[T any] struct {
	// Start and Stop return the 1-based inclusive bounds of an item. Using
	// accessors lets the same index type cover contig-local and whole-map
	// coordinates of the same items.
	Start func(T) int
	Stop  func(T) int

	// CircularLength is the sequence length of a circular coordinate. Zero
	// means the coordinate is linear and unbounded.
	CircularLength int
}

// entry is one node of the containment list. Ranges crossing the origin of
// a circular coordinate are stored as two entries sharing the same item.
type entry struct {
	start, stop int
	item        int
	crosses     bool
	sublist     []*entry
}

// Index is a nested containment list over a fixed set of items.
// It is immutable after [Build] and safe for concurrent queries.
type Index[T any] struct {
	items    []T
	ranks    []int // ranks[item] = position of item in (start asc, stop desc) order
	top      []*entry
	length   int
	crossing int
}

// Build indexes items. Ranges are normalised first: with a circular length
// both bounds are clamped to [1, length] and a range whose start is past its
// stop is split at the origin; without one a reversed range is swapped.
// Building from no items yields an index that answers every query with an
// empty result.
func Build[T any](items []T, opts Options[T]) *Index[T] {
	idx := &Index[T]{
		items:  slices.Clone(items),
		ranks:  make([]int, len(items)),
		length: max(0, opts.CircularLength),
	}

	entries := make([]*entry, 0, len(items))
	for i, it := range idx.items {
		start, stop := opts.Start(it), opts.Stop(it)
		entries = append(entries, idx.normalize(i, start, stop)...)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].start != entries[j].start {
			return entries[i].start < entries[j].start
		}
		return entries[i].stop > entries[j].stop
	})

	idx.rank(entries)
	idx.top = nest(entries)
	return idx
}

// normalize clamps a range and splits it when it wraps the origin.
func (idx *Index[T]) normalize(item, start, stop int) []*entry {
	if idx.length == 0 {
		if start > stop {
			start, stop = stop, start
		}
		return []*entry{{start: start, stop: stop, item: item}}
	}

	start = clamp(start, 1, idx.length)
	stop = clamp(stop, 1, idx.length)
	if start <= stop {
		return []*entry{{start: start, stop: stop, item: item}}
	}
	idx.crossing++
	return []*entry{
		{start: start, stop: idx.length, item: item, crosses: true},
		{start: 1, stop: stop, item: item, crosses: true},
	}
}

// rank assigns every original item a stable position used for strided
// queries. An item split at the origin is ranked by its first half, which
// is its true start.
func (idx *Index[T]) rank(sorted []*entry) {
	type key struct{ start, stop, item int }
	keys := make([]key, 0, len(idx.items))
	for _, e := range sorted {
		if e.crosses && e.start == 1 {
			continue
		}
		stop := e.stop
		if e.crosses {
			stop += idx.length
		}
		keys = append(keys, key{e.start, stop, e.item})
	}
	sort.SliceStable(keys, func(i, j int) bool {
		if keys[i].start != keys[j].start {
			return keys[i].start < keys[j].start
		}
		return keys[i].stop > keys[j].stop
	})
	for r, k := range keys {
		idx.ranks[k.item] = r
	}
}

// nest builds the containment hierarchy from entries sorted by
// (start asc, stop desc) in a single pass over a stack of open parents.
func nest(sorted []*entry) []*entry {
	var top []*entry
	var stack []*entry
	for _, e := range sorted {
		for len(stack) > 0 && e.stop > stack[len(stack)-1].stop {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			top = append(top, e)
		} else {
			parent := stack[len(stack)-1]
			parent.sublist = append(parent.sublist, e)
		}
		stack = append(stack, e)
	}
	return top
}

// Len returns the number of indexed items.
func (idx *Index[T]) Len() int { return len(idx.items) }

// CircularLength returns the circular sequence length, or 0 for a linear index.
func (idx *Index[T]) CircularLength() int { return idx.length }

// Each calls fn for every item whose range overlaps [start, stop], in order
// of start position. With step > 1 only every step-th item (by stable rank)
// is reported, so the items reported for a step of 2k are always a subset of
// those reported for k. On a circular index a window whose stop is before
// its start wraps the origin; on a linear index such a window is empty.
// Iteration stops early when fn returns false.
func (idx *Index[T]) Each(start, stop, step int, fn func(T) bool) {
	if len(idx.top) == 0 {
		return
	}
	step = max(1, step)

	q := &query[T]{idx: idx, step: step, fn: fn}
	if idx.length == 0 {
		if start <= stop {
			q.level(idx.top, start, stop)
		}
		return
	}

	start = clamp(start, 1, idx.length)
	stop = clamp(stop, 1, idx.length)
	if start <= stop {
		if idx.crossing > 0 {
			q.seen = make(map[int]struct{})
		}
		q.level(idx.top, start, stop)
		return
	}

	// Both halves of a split window may overlap the same range, crossing the
	// origin or not, so every item is checked against seen.
	q.seen = make(map[int]struct{})
	q.split = true
	if q.level(idx.top, start, idx.length) {
		q.level(idx.top, 1, stop)
	}
}

// Query returns the items overlapping [start, stop] using the given step.
func (idx *Index[T]) Query(start, stop, step int) []T {
	var out []T
	idx.Each(start, stop, step, func(it T) bool {
		out = append(out, it)
		return true
	})
	return out
}

// Find returns every item overlapping [start, stop].
func (idx *Index[T]) Find(start, stop int) []T {
	return idx.Query(start, stop, 1)
}

// Count returns the number of items overlapping [start, stop] using the
// given step.
func (idx *Index[T]) Count(start, stop, step int) int {
	n := 0
	idx.Each(start, stop, step, func(T) bool {
		n++
		return true
	})
	return n
}

// query carries per-call state so an Index can be shared across goroutines.
type query[T any] struct {
	idx  *Index[T]
	step int
	seen map[int]struct{}
	// split is set when the window wraps the origin.
	split bool
	fn    func(T) bool
}

// level reports overlaps within one sorted sibling list and recurses into
// sublists. Siblings never contain each other, so both their starts and
// their stops increase; the first candidate is found by binary search on
// stop. It returns false once fn asks to stop.
func (q *query[T]) level(list []*entry, start, stop int) bool {
	i := sort.Search(len(list), func(i int) bool { return list[i].stop >= start })
	for ; i < len(list) && list[i].start <= stop; i++ {
		e := list[i]
		if !q.emit(e) {
			return false
		}
		if len(e.sublist) > 0 && !q.level(e.sublist, start, stop) {
			return false
		}
	}
	return true
}

func (q *query[T]) emit(e *entry) bool {
	if q.idx.ranks[e.item]%q.step != 0 {
		return true
	}
	if e.crosses || q.split {
		if _, dup := q.seen[e.item]; dup {
			return true
		}
		q.seen[e.item] = struct{}{}
	}
	return q.fn(q.idx.items[e.item])
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

// =============================================================================
// Handle
// =============================================================================

// Handle publishes an index for concurrent readers. Rebuilding never races
// an in-flight query: readers keep the index they loaded while a new one is
// swapped in atomically.
type Handle[T any] struct {
	p atomic.Pointer[Index[T]]
}

// Load returns the current index, or nil if none has been stored.
func (h *Handle[T]) Load() *Index[T] { return h.p.Load() }

// Store publishes idx to subsequent readers.
func (h *Handle[T]) Store(idx *Index[T]) { h.p.Store(idx) }

// Rebuild builds a new index from items and publishes it.
func (h *Handle[T]) Rebuild(items []T, opts Options[T]) *Index[T] {
	idx := Build(items, opts)
	h.Store(idx)
	return idx
}
