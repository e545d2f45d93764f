// Package registry tracks which physical slots are visible for one button
// family and resolves each slot to a logical index.
//
// Two assignment policies exist and are never mixed within one registry:
//
//   - AppearanceOrder: the logical index is the slot's offset in the
//     sequence of currently visible slots, in the order they appeared.
//     Hiding a slot shifts every later slot down by one; earlier slots keep
//     their index.
//   - Grid: the logical index is a pure function of the slot's position,
//     row*ColumnsPerRow + (column-1). Column 0 is reserved and never
//     resolves.
//
// A Registry is not safe for concurrent use; it is owned by the event loop.
package registry
