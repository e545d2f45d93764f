package deck

import (
	"github.com/nerrad567/ulc-deck/internal/streamdeck"
	"github.com/nerrad567/ulc-deck/internal/surface"
)

// HandleEvent routes one Stream Deck event to its button family or to the
// device tracker.
func (d *Deck) HandleEvent(ev streamdeck.Event) {
	switch ev.Event {
	case streamdeck.EventDeviceDidConnect:
		d.logger.Info("device connected", "device", ev.Device)
		d.DeviceConnected(ev.Device)
		return
	case streamdeck.EventDeviceDidDisconnect:
		d.logger.Info("device disconnected", "device", ev.Device)
		d.DeviceDisconnected(ev.Device)
		return
	}

	action, ok := d.actions[ev.Action]
	if !ok {
		d.logger.Debug("event for unknown action", "action", ev.Action, "event", ev.Event)
		return
	}

	slot := surface.SlotID(ev.Context)

	// Keys inside multi-actions carry no coordinates and are not managed.
	if ev.Payload.Coordinates == nil && ev.Event != streamdeck.EventWillDisappear {
		d.logger.Debug("event without coordinates ignored", "action", ev.Action, "event", ev.Event)
		return
	}

	switch ev.Event {
	case streamdeck.EventWillAppear:
		action.OnVisible(slot, position(ev))
	case streamdeck.EventWillDisappear:
		action.OnHidden(slot)
	case streamdeck.EventKeyDown:
		action.OnPress(slot, position(ev))
	case streamdeck.EventKeyUp:
		action.OnRelease(slot, position(ev))
	default:
		d.logger.Debug("unhandled event", "event", ev.Event, "action", ev.Action)
	}
}

func position(ev streamdeck.Event) surface.Position {
	c := ev.Payload.Coordinates
	if c == nil {
		return surface.Position{Row: -1, Column: -1}
	}
	return surface.Position{Row: c.Row, Column: c.Column}
}
