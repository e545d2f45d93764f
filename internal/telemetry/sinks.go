package telemetry

import (
	"context"
	"time"

	"github.com/nerrad567/ulc-deck/internal/infrastructure/mqtt"
	"github.com/nerrad567/ulc-deck/internal/journal"
)

// Publisher is the MQTT capability used by MQTTSink. *mqtt.Client
// satisfies it.
type Publisher interface {
	PublishJSON(topic string, v any, retained bool) error
}

// MQTTSink mirrors events onto the broker: snapshots and edges as retained
// state, intents and profile transitions as events.
type MQTTSink struct {
	pub    Publisher
	topics mqtt.Topics
}

// NewMQTTSink returns a sink publishing under topics.
func NewMQTTSink(pub Publisher, topics mqtt.Topics) *MQTTSink {
	return &MQTTSink{pub: pub, topics: topics}
}

// Name implements Sink.
func (*MQTTSink) Name() string { return "mqtt" }

type statePayload struct {
	Channel   string `json:"channel"`
	Available bool   `json:"available"`
	State     any    `json:"state,omitempty"`
	Timestamp string `json:"timestamp"`
}

type healthPayload struct {
	Channel   string `json:"channel"`
	Connected bool   `json:"connected"`
	Timestamp string `json:"timestamp"`
}

type eventPayload struct {
	Kind      string `json:"kind"`
	Channel   string `json:"channel"`
	Family    string `json:"family,omitempty"`
	Slot      string `json:"slot,omitempty"`
	Name      string `json:"name"`
	Detail    string `json:"detail,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Write implements Sink.
func (s *MQTTSink) Write(_ context.Context, ev Event) error {
	ts := ev.Time.UTC().Format(time.RFC3339Nano)
	switch ev.Kind {
	case KindSnapshot:
		return s.pub.PublishJSON(s.topics.State(ev.Channel), statePayload{
			Channel:   ev.Channel,
			Available: ev.Snapshot != nil,
			State:     ev.Snapshot,
			Timestamp: ts,
		}, true)
	case KindEdge:
		return s.pub.PublishJSON(s.topics.Health(ev.Channel), healthPayload{
			Channel:   ev.Channel,
			Connected: ev.Connected,
			Timestamp: ts,
		}, true)
	default:
		return s.pub.PublishJSON(s.topics.Event(string(ev.Kind)), eventPayload{
			Kind:      string(ev.Kind),
			Channel:   ev.Channel,
			Family:    ev.Family,
			Slot:      ev.Slot,
			Name:      ev.Name,
			Detail:    ev.Detail,
			Timestamp: ts,
		}, false)
	}
}

// JournalSink appends every event to the deck journal.
type JournalSink struct {
	repo journal.Repository
}

// NewJournalSink returns a sink writing to repo.
func NewJournalSink(repo journal.Repository) *JournalSink {
	return &JournalSink{repo: repo}
}

// Name implements Sink.
func (*JournalSink) Name() string { return "journal" }

// Write implements Sink.
func (s *JournalSink) Write(ctx context.Context, ev Event) error {
	return s.repo.Create(ctx, &journal.Entry{
		Kind:      string(ev.Kind),
		Channel:   ev.Channel,
		Slot:      ev.Slot,
		Name:      ev.Name,
		Detail:    ev.Detail,
		CreatedAt: ev.Time,
	})
}

// PointWriter is the time-series capability used by InfluxSink.
// *influxdb.Client satisfies it.
type PointWriter interface {
	WriteGesture(channel, family, kind string, at time.Time)
	WriteConnection(channel string, connected bool, at time.Time)
	WriteSnapshot(channel string, fields map[string]any, at time.Time)
	WriteProfileSwitch(channel, state, device string, at time.Time)
}

// InfluxSink turns events into points. Writes are batched by the client,
// so Write never fails.
type InfluxSink struct {
	w PointWriter
}

// NewInfluxSink returns a sink writing through w.
func NewInfluxSink(w PointWriter) *InfluxSink {
	return &InfluxSink{w: w}
}

// Name implements Sink.
func (*InfluxSink) Name() string { return "influxdb" }

// Write implements Sink.
func (s *InfluxSink) Write(_ context.Context, ev Event) error {
	switch ev.Kind {
	case KindIntent:
		s.w.WriteGesture(ev.Channel, ev.Family, ev.Name, ev.Time)
	case KindEdge:
		s.w.WriteConnection(ev.Channel, ev.Connected, ev.Time)
	case KindSnapshot:
		s.w.WriteSnapshot(ev.Channel, ev.Fields, ev.Time)
	case KindProfile:
		s.w.WriteProfileSwitch(ev.Channel, ev.Name, ev.Detail, ev.Time)
	}
	return nil
}
