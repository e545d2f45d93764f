package telemetry

import "time"

// Kind classifies an Event.
type Kind string

// Event kinds.
const (
	KindSnapshot Kind = "snapshot"
	KindIntent   Kind = "intent"
	KindEdge     Kind = "edge"
	KindProfile  Kind = "profile"
)

// Event is one observation from the core. Fields not relevant to Kind are
// left zero.
type Event struct {
	Kind    Kind
	Channel string
	Time    time.Time

	// Intents.
	Family string
	Slot   string

	// Name is the intent kind, the edge ("connect", "disconnect"), the new
	// profile state, or "applied"/"cleared" for snapshots.
	Name string

	// Detail is the outbound action for intents, the device for profile
	// transitions, or a one-line summary for snapshots.
	Detail string

	// Connected is set on edges.
	Connected bool

	// Snapshot is the JSON-encodable controller state (nil when cleared).
	Snapshot any

	// Fields are numeric or boolean snapshot values for time series.
	Fields map[string]any
}

// Intent builds a dispatched-intent event.
func Intent(channel, family, slot, kind, action string, at time.Time) Event {
	return Event{Kind: KindIntent, Channel: channel, Family: family, Slot: slot, Name: kind, Detail: action, Time: at}
}

// Edge builds a relay connection edge event.
func Edge(channel string, connected bool, at time.Time) Event {
	name := "disconnect"
	if connected {
		name = "connect"
	}
	return Event{Kind: KindEdge, Channel: channel, Name: name, Connected: connected, Time: at}
}

// Profile builds a profile transition event.
func Profile(channel, state, device string, at time.Time) Event {
	return Event{Kind: KindProfile, Channel: channel, Name: state, Detail: device, Time: at}
}

// Snapshot builds a snapshot-applied event. A nil snapshot means the mirror
// was cleared.
func Snapshot(channel string, snapshot any, summary string, fields map[string]any, at time.Time) Event {
	name := "applied"
	if snapshot == nil {
		name = "cleared"
	}
	return Event{
		Kind:     KindSnapshot,
		Channel:  channel,
		Name:     name,
		Detail:   summary,
		Snapshot: snapshot,
		Fields:   fields,
		Time:     at,
	}
}
