// Package mirror holds the last snapshot pushed by an external controller
// and re-projects it onto every visible slot whenever it changes.
package mirror

import "time"

// Projector re-renders its slots from a snapshot. ok is false when no
// snapshot is held and slots must show their placeholder.
type Projector[S any] interface {
	Project(snapshot S, ok bool)
}

// ProjectorFunc adapts a function to Projector.
type ProjectorFunc[S any] func(snapshot S, ok bool)

// Project calls f.
func (f ProjectorFunc[S]) Project(snapshot S, ok bool) { f(snapshot, ok) }

// Mirror is a wholesale-replaced snapshot holder. It is not safe for
// concurrent use; it is owned by the event loop.
type Mirror[S any] struct {
	current    S
	has        bool
	version    uint64
	updatedAt  time.Time
	projectors []Projector[S]
	now        func() time.Time
}

// New creates an empty mirror. now stamps each update; nil uses time.Now.
func New[S any](now func() time.Time) *Mirror[S] {
	if now == nil {
		now = time.Now
	}
	return &Mirror[S]{now: now}
}

// Attach adds a projector. Projectors run in attach order.
func (m *Mirror[S]) Attach(p Projector[S]) {
	m.projectors = append(m.projectors, p)
}

// Apply replaces the held snapshot and runs a full projection pass.
func (m *Mirror[S]) Apply(snapshot S) {
	m.current = snapshot
	m.has = true
	m.version++
	m.updatedAt = m.now()
	m.Refresh()
}

// Clear drops the held snapshot and projects placeholders.
func (m *Mirror[S]) Clear() {
	var zero S
	m.current = zero
	m.has = false
	m.version++
	m.updatedAt = m.now()
	m.Refresh()
}

// Refresh re-projects the current snapshot without changing it. Used when
// the set of visible slots changes.
func (m *Mirror[S]) Refresh() {
	for _, p := range m.projectors {
		p.Project(m.current, m.has)
	}
}

// Current returns the held snapshot. Callers must treat it as read-only.
func (m *Mirror[S]) Current() (S, bool) {
	return m.current, m.has
}

// Version counts Apply and Clear calls.
func (m *Mirror[S]) Version() uint64 {
	return m.version
}

// UpdatedAt returns the time of the last Apply or Clear.
func (m *Mirror[S]) UpdatedAt() time.Time {
	return m.updatedAt
}
