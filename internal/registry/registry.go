package registry

import (
	"maps"
	"slices"

	"github.com/nerrad567/ulc-deck/internal/surface"
)

// DefaultColumnsPerRow is the grid width used by the folder layout.
const DefaultColumnsPerRow = 4

// Policy assigns logical indices to visible slots.
type Policy interface {
	// index returns the logical index for slot at pos, given the current
	// appearance order. ok is false when the slot has no logical index.
	index(order []surface.SlotID, slot surface.SlotID, pos surface.Position) (idx int, ok bool)
	String() string
}

// AppearanceOrder indexes slots by their offset in the appearance sequence.
type AppearanceOrder struct{}

func (AppearanceOrder) index(order []surface.SlotID, slot surface.SlotID, _ surface.Position) (int, bool) {
	i := slices.Index(order, slot)
	return i, i >= 0
}

func (AppearanceOrder) String() string { return "appearance-order" }

// Grid indexes slots by row and column. Column 0 is reserved.
type Grid struct {
	ColumnsPerRow int
}

// Index computes the logical index for pos. ok is false for column 0 and
// for positions that would produce a negative index.
func (g Grid) Index(pos surface.Position) (int, bool) {
	if pos.Column <= 0 || pos.Row < 0 {
		return -1, false
	}
	cols := g.ColumnsPerRow
	if cols <= 0 {
		cols = DefaultColumnsPerRow
	}
	return pos.Row*cols + (pos.Column - 1), true
}

func (g Grid) index(_ []surface.SlotID, _ surface.SlotID, pos surface.Position) (int, bool) {
	return g.Index(pos)
}

func (g Grid) String() string { return "grid" }

// Registry maps visible slots to logical indices under one policy.
type Registry struct {
	policy    Policy
	order     []surface.SlotID
	positions map[surface.SlotID]surface.Position
	bound     map[surface.SlotID]string
}

// New creates an empty registry using policy.
func New(policy Policy) *Registry {
	if policy == nil {
		policy = AppearanceOrder{}
	}
	return &Registry{
		policy:    policy,
		positions: make(map[surface.SlotID]surface.Position),
		bound:     make(map[surface.SlotID]string),
	}
}

// Policy returns the registry's assignment policy.
func (r *Registry) Policy() Policy {
	return r.policy
}

// OnVisible records slot as visible at pos and returns its logical index.
// A slot already visible keeps its place in the appearance order; only its
// position is refreshed, and a move drops its bound id.
func (r *Registry) OnVisible(slot surface.SlotID, pos surface.Position) (int, bool) {
	prev, exists := r.positions[slot]
	if !exists {
		r.order = append(r.order, slot)
	} else if prev != pos {
		delete(r.bound, slot)
	}
	r.positions[slot] = pos
	return r.Resolve(slot)
}

// OnHidden forgets slot. It reports whether the slot was visible.
func (r *Registry) OnHidden(slot surface.SlotID) bool {
	if _, exists := r.positions[slot]; !exists {
		return false
	}
	delete(r.positions, slot)
	delete(r.bound, slot)
	if i := slices.Index(r.order, slot); i >= 0 {
		r.order = slices.Delete(r.order, i, i+1)
	}
	return true
}

// Resolve returns the slot's current logical index. The index is computed
// on every call and never cached.
func (r *Registry) Resolve(slot surface.SlotID) (int, bool) {
	pos, exists := r.positions[slot]
	if !exists {
		return -1, false
	}
	return r.policy.index(r.order, slot, pos)
}

// Position returns the last known position of a visible slot.
func (r *Registry) Position(slot surface.SlotID) (surface.Position, bool) {
	pos, ok := r.positions[slot]
	return pos, ok
}

// Contains reports whether slot is visible.
func (r *Registry) Contains(slot surface.SlotID) bool {
	_, ok := r.positions[slot]
	return ok
}

// Slots returns a copy of the visible slots in appearance order.
func (r *Registry) Slots() []surface.SlotID {
	return slices.Clone(r.order)
}

// Len returns the number of visible slots.
func (r *Registry) Len() int {
	return len(r.order)
}

// Bind records the logical button id last rendered onto slot. Slots
// without a logical index are never bound and lose any earlier binding;
// Bind reports whether it stored the id.
func (r *Registry) Bind(slot surface.SlotID, id string) bool {
	if _, ok := r.Resolve(slot); !ok {
		delete(r.bound, slot)
		return false
	}
	r.bound[slot] = id
	return true
}

// Unbind clears any id bound to slot.
func (r *Registry) Unbind(slot surface.SlotID) {
	delete(r.bound, slot)
}

// BoundID returns the id bound to slot, if any.
func (r *Registry) BoundID(slot surface.SlotID) (string, bool) {
	id, ok := r.bound[slot]
	return id, ok
}

// Bindings returns a copy of the bound ids keyed by slot.
func (r *Registry) Bindings() map[surface.SlotID]string {
	return maps.Clone(r.bound)
}
