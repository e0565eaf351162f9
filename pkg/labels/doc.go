// Package labels places feature labels around a circular or linear genome
// map so that no two label boxes overlap.
//
// # Overview
//
// Each [Label] has a home position (usually the midpoint of its feature), a
// precomputed pixel size, and receives a bounding box plus the point where its
// leader line attaches. Two strategies implement [Strategy]:
//
//   - [Default] places every label radially at its home position and
//     lengthens the leader line on collision.
//   - [Angled] fans crowded labels out sideways within a maximum line angle,
//     popping labels outward only when a region is too dense.
//
// Both take a [geometry.Provider] and a [Config]:
//
//	p := geometry.NewCircular(geometry.Point{X: 400, Y: 400}, 10_000)
//	s := labels.NewAngled(p, labels.DefaultConfig())
//	report := s.Place(ls, 250)
//
// # Islands
//
// The angled strategy groups labels whose home boxes collide into islands.
// An island is laid out from its middle member outward; when a member would
// exceed the line angle budget the island is pinned at its angle limits and
// filled inward from both ends, and the members that remain are popped. Two
// neighbouring islands that clash are merged, or given a boundary when the
// merged span would be too wide. The merge loop runs at most once per initial
// island, which [Report.MergeIterations] exposes.
//
// By default an island touching the end of a circular map is not joined with
// the island at its start. Set [Config.WrapIslands] to fold them together.
//
// # Determinism
//
// All placement state is recomputed from each label's home position, so
// placing the same labels twice yields the same boxes.
package labels
