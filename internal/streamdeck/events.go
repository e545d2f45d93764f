package streamdeck

import (
	"encoding/json"
	"fmt"
)

// Inbound event names.
const (
	EventWillAppear          = "willAppear"
	EventWillDisappear       = "willDisappear"
	EventKeyDown             = "keyDown"
	EventKeyUp               = "keyUp"
	EventDeviceDidConnect    = "deviceDidConnect"
	EventDeviceDidDisconnect = "deviceDidDisconnect"
)

// Outbound event names.
const (
	eventSetTitle        = "setTitle"
	eventSetImage        = "setImage"
	eventSwitchToProfile = "switchToProfile"
)

// Target selects hardware, software, or both when setting titles/images.
const targetBoth = 0

// Coordinates is a key position on the current page.
type Coordinates struct {
	Column int `json:"column"`
	Row    int `json:"row"`
}

// Payload is the action payload of key and visibility events.
type Payload struct {
	Coordinates     *Coordinates    `json:"coordinates,omitempty"`
	Settings        json.RawMessage `json:"settings,omitempty"`
	State           int             `json:"state"`
	IsInMultiAction bool            `json:"isInMultiAction"`
}

// DeviceInfo describes a connected device.
type DeviceInfo struct {
	Name string `json:"name"`
	Type int    `json:"type"`
	Size struct {
		Columns int `json:"columns"`
		Rows    int `json:"rows"`
	} `json:"size"`
}

// Event is one inbound message from the Stream Deck application.
type Event struct {
	Action     string      `json:"action"`
	Event      string      `json:"event"`
	Context    string      `json:"context"`
	Device     string      `json:"device"`
	Payload    Payload     `json:"payload"`
	DeviceInfo *DeviceInfo `json:"deviceInfo,omitempty"`
}

// DecodeEvent parses one inbound frame.
func DecodeEvent(data []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return Event{}, fmt.Errorf("decoding event: %w", err)
	}
	if ev.Event == "" {
		return Event{}, fmt.Errorf("decoding event: missing event name")
	}
	return ev, nil
}

// Info is the -info launch argument.
type Info struct {
	Application struct {
		Language string `json:"language"`
		Platform string `json:"platform"`
		Version  string `json:"version"`
	} `json:"application"`
	Plugin struct {
		UUID    string `json:"uuid"`
		Version string `json:"version"`
	} `json:"plugin"`
	Devices []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Type int    `json:"type"`
	} `json:"devices"`
}

// ParseInfo parses the -info launch argument. An empty string yields an
// empty Info.
func ParseInfo(raw string) (Info, error) {
	var info Info
	if raw == "" {
		return info, nil
	}
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		return Info{}, fmt.Errorf("%w: %w", ErrInvalidInfo, err)
	}
	return info, nil
}

// FirstDevice returns the first listed device id, or "".
func (i Info) FirstDevice() string {
	if len(i.Devices) == 0 {
		return ""
	}
	return i.Devices[0].ID
}

type registration struct {
	Event string `json:"event"`
	UUID  string `json:"uuid"`
}

type titlePayload struct {
	Title  string `json:"title"`
	Target int    `json:"target"`
}

type imagePayload struct {
	Image  string `json:"image,omitempty"`
	Target int    `json:"target"`
}

type profilePayload struct {
	Profile string `json:"profile,omitempty"`
}

type command struct {
	Event   string `json:"event"`
	Context string `json:"context"`
	Device  string `json:"device,omitempty"`
	Payload any    `json:"payload"`
}
