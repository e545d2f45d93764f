package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names.
const (
	MeasurementGesture    = "deck_gestures"
	MeasurementConnection = "relay_connections"
	MeasurementSnapshot   = "controller_snapshots"
	MeasurementProfile    = "profile_switches"
)

// WriteGesture records one dispatched intent.
//
//	deck_gestures,channel=lvc,family=lvcsiren,kind=hold_start count=1i
func (c *Client) WriteGesture(channel, family, kind string, at time.Time) {
	c.WritePointWithTime(MeasurementGesture,
		map[string]string{"channel": channel, "family": family, "kind": kind},
		map[string]any{"count": 1},
		at,
	)
}

// WriteConnection records a relay connect or disconnect edge.
func (c *Client) WriteConnection(channel string, connected bool, at time.Time) {
	c.WritePointWithTime(MeasurementConnection,
		map[string]string{"channel": channel},
		map[string]any{"connected": connected},
		at,
	)
}

// WriteSnapshot records numeric and boolean fields of a controller
// snapshot. Empty field sets are skipped.
func (c *Client) WriteSnapshot(channel string, fields map[string]any, at time.Time) {
	if len(fields) == 0 {
		return
	}
	c.WritePointWithTime(MeasurementSnapshot, map[string]string{"channel": channel}, fields, at)
}

// WriteProfileSwitch records a profile machine transition.
func (c *Client) WriteProfileSwitch(channel, state, device string, at time.Time) {
	c.WritePointWithTime(MeasurementProfile,
		map[string]string{"channel": channel, "state": state},
		map[string]any{"device": device},
		at,
	)
}

// WritePointWithTime writes an arbitrary point. Dropped when not connected.
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]any, at time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(write.NewPoint(measurement, tags, fields, at))
}
