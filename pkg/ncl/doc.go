// Package ncl implements a nested containment list: a static interval index
// over 1-based inclusive ranges on a linear or circular coordinate.
//
// # Overview
//
// Ranges are sorted by (start ascending, stop descending) and every range that
// lies entirely inside another is moved into that range's sublist. Within one
// list no range contains another, so both starts and stops are increasing and
// the first overlapping range can be found by binary search:
//
//	idx := ncl.Build(features, ncl.Options[Feature]{
//	    Start:          func(f Feature) int { return f.Start },
//	    Stop:           func(f Feature) int { return f.Stop },
//	    CircularLength: 10_000,
//	})
//	visible := idx.Find(9_500, 200) // wraps the origin
//
// Building is O(n log n) and a query is O(log n + k) for k results.
//
// # Circular coordinates
//
// With a circular length, a range whose start is past its stop crosses the
// origin. It is split into [start, length] and [1, stop] when the index is
// built; both halves refer back to the original item, which is reported at
// most once per query. Windows are split the same way at query time.
//
// # Strided queries
//
// Each item has a stable rank in sorted order. A query with step > 1 reports
// only items whose rank is a multiple of step, so zooming out by doubling the
// step thins the visible set without reshuffling it.
//
// # Mutation
//
// An [Index] is read-only. To change the backing data build a new index and
// publish it through a [Handle], which swaps it in atomically.
package ncl
