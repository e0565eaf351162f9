// Package geometry provides the canvas value types and the position ↔ point
// translation used by label placement.
//
// # Coordinates
//
// All coordinates are canvas pixels with the y axis growing downward. A
// [Rect] is anchored at its top-left corner.
//
// # Providers
//
// A [Provider] maps 1-based genome positions to canvas points at a given
// offset from the map and back again. Two implementations are included:
//
//   - [Circular]: position 1 at twelve o'clock, increasing clockwise
//   - [Linear]: a horizontal axis with labels drawn above it
//
// Label boxes attach to their leader line on the side named by a clock
// position (see [RectAt]). For a label drawn outside a circular map the
// attachment is the inverse of the label's own clock position, so a label at
// three o'clock attaches on its left (nine o'clock) side.
package geometry
