package gesture

import (
	"time"

	"github.com/nerrad567/ulc-deck/internal/clock"
	"github.com/nerrad567/ulc-deck/internal/surface"
)

// Default thresholds.
const (
	DefaultHoldThreshold        = 300 * time.Millisecond
	DefaultDoubleClickThreshold = 300 * time.Millisecond
)

// Kind identifies a semantic intent.
type Kind int

// Intent kinds.
const (
	Tap Kind = iota + 1
	HoldStart
	HoldEnd
	Single
	Double
)

func (k Kind) String() string {
	switch k {
	case Tap:
		return "tap"
	case HoldStart:
		return "hold_start"
	case HoldEnd:
		return "hold_end"
	case Single:
		return "single"
	case Double:
		return "double"
	default:
		return "unknown"
	}
}

// Intent is a gesture recognised on a slot. Arg is the value captured when
// the originating press happened (click machine only).
type Intent struct {
	Kind Kind
	Slot surface.SlotID
	Arg  any
}

// Config holds the gesture thresholds.
type Config struct {
	HoldThreshold        time.Duration
	DoubleClickThreshold time.Duration
}

type holdPhase int

const (
	holdPressed holdPhase = iota + 1
	holdHeld
)

// holdState exists only between press and release.
type holdState struct {
	phase holdPhase
	timer clock.Timer
}

type clickState struct {
	lastPress  time.Time
	hasLast    bool
	pending    clock.Timer
	pendingArg any
}

// Disambiguator runs the gesture machines for every slot of one button
// family.
type Disambiguator struct {
	clock  clock.Clock
	cfg    Config
	emit   func(Intent)
	holds  map[surface.SlotID]*holdState
	clicks map[surface.SlotID]*clickState
}

// New creates a Disambiguator. Zero thresholds fall back to the defaults.
// emit is called synchronously for every recognised intent.
func New(clk clock.Clock, cfg Config, emit func(Intent)) *Disambiguator {
	if cfg.HoldThreshold <= 0 {
		cfg.HoldThreshold = DefaultHoldThreshold
	}
	if cfg.DoubleClickThreshold <= 0 {
		cfg.DoubleClickThreshold = DefaultDoubleClickThreshold
	}
	if emit == nil {
		emit = func(Intent) {}
	}
	return &Disambiguator{
		clock:  clk,
		cfg:    cfg,
		emit:   emit,
		holds:  make(map[surface.SlotID]*holdState),
		clicks: make(map[surface.SlotID]*clickState),
	}
}

// PressHold starts the tap-vs-hold machine for slot. A press while the slot
// is already pressed or held is ignored.
func (d *Disambiguator) PressHold(slot surface.SlotID) {
	if _, busy := d.holds[slot]; busy {
		return
	}

	st := &holdState{phase: holdPressed}
	d.holds[slot] = st
	st.timer = d.clock.AfterFunc(d.cfg.HoldThreshold, func() {
		if d.holds[slot] != st || st.phase != holdPressed {
			return
		}
		st.phase = holdHeld
		st.timer = nil
		d.emit(Intent{Kind: HoldStart, Slot: slot})
	})
}

// ReleaseHold ends the tap-vs-hold machine for slot, emitting Tap or
// HoldEnd. A release without a press is ignored.
func (d *Disambiguator) ReleaseHold(slot surface.SlotID) {
	st, ok := d.holds[slot]
	if !ok {
		return
	}
	delete(d.holds, slot)

	switch st.phase {
	case holdPressed:
		st.timer.Stop()
		d.emit(Intent{Kind: Tap, Slot: slot})
	case holdHeld:
		d.emit(Intent{Kind: HoldEnd, Slot: slot})
	}
}

// Held reports whether slot is currently in the Held state.
func (d *Disambiguator) Held(slot surface.SlotID) bool {
	st, ok := d.holds[slot]
	return ok && st.phase == holdHeld
}

// PressClick feeds a press into the single/double machine. arg is carried
// on the resulting intent.
//
// A press within DoubleClickThreshold of the previous press emits Double at
// once and resets tracking, so a third quick press starts a new sequence.
func (d *Disambiguator) PressClick(slot surface.SlotID, arg any) {
	st, ok := d.clicks[slot]
	if !ok {
		st = &clickState{}
		d.clicks[slot] = st
	}

	now := d.clock.Now()
	prev, hadPrev := st.lastPress, st.hasLast
	st.lastPress, st.hasLast = now, true

	if hadPrev && now.Sub(prev) < d.cfg.DoubleClickThreshold {
		d.cancelPending(st)
		st.hasLast = false
		d.emit(Intent{Kind: Double, Slot: slot, Arg: arg})
		return
	}

	// A pending single that is already due but not yet delivered belongs to
	// the previous press.
	if st.pending != nil {
		pendingArg := st.pendingArg
		d.cancelPending(st)
		d.emit(Intent{Kind: Single, Slot: slot, Arg: pendingArg})
	}

	var t clock.Timer
	t = d.clock.AfterFunc(d.cfg.DoubleClickThreshold, func() {
		if d.clicks[slot] != st || st.pending != t {
			return
		}
		a := st.pendingArg
		st.pending, st.pendingArg = nil, nil
		d.emit(Intent{Kind: Single, Slot: slot, Arg: a})
	})
	st.pending, st.pendingArg = t, arg
}

// Armed reports whether slot has a deferred single pending.
func (d *Disambiguator) Armed(slot surface.SlotID) bool {
	st, ok := d.clicks[slot]
	return ok && st.pending != nil
}

func (d *Disambiguator) cancelPending(st *clickState) {
	if st.pending != nil {
		st.pending.Stop()
	}
	st.pending, st.pendingArg = nil, nil
}

// Forget tears down all gesture state for a slot that has disappeared.
// Pending timers are cancelled and a held slot emits a synthetic HoldEnd so
// the remote side is not left latched.
func (d *Disambiguator) Forget(slot surface.SlotID) {
	if st, ok := d.holds[slot]; ok {
		delete(d.holds, slot)
		switch st.phase {
		case holdPressed:
			st.timer.Stop()
		case holdHeld:
			d.emit(Intent{Kind: HoldEnd, Slot: slot})
		}
	}

	if st, ok := d.clicks[slot]; ok {
		d.cancelPending(st)
		delete(d.clicks, slot)
	}
}

// Reset forgets every slot.
func (d *Disambiguator) Reset() {
	for slot := range d.holds {
		d.Forget(slot)
	}
	for slot := range d.clicks {
		d.Forget(slot)
	}
}
