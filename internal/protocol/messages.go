package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Message type tags.
const (
	TypeVisibleButtons = "visible_buttons"
	TypePress          = "press"
	TypeLVCState       = "lvc_state"
	TypeAction         = "action"
)

// LVC action names.
const (
	ActionToggleLights = "toggle_lights"
	ActionManuOn       = "manu_on"
	ActionManuOff      = "manu_off"
	ActionToggleAux    = "toggle_aux"
	ActionSetTone      = "set_tone"
)

// Message is the closed set of decoded inbound messages.
type Message interface {
	// Type returns the message's wire tag.
	Type() string
	isMessage()
}

// ButtonDescriptor is one ULC button as pushed by the controller.
type ButtonDescriptor struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	NumKey int    `json:"numKey"`
	Color  string `json:"color"`
	Active bool   `json:"active"`
	Extra  int    `json:"extra"`
}

// SirenTone is one LVC siren tone. IsMain and IsAux are independent.
type SirenTone struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
	IsMain   bool   `json:"isMain"`
	IsAux    bool   `json:"isAux"`
}

// LVCState is a complete LVC snapshot.
type LVCState struct {
	Connected bool        `json:"connected"`
	SirenOn   bool        `json:"sirenOn"`
	MainSiren int         `json:"mainSiren"`
	AuxSiren  int         `json:"auxSiren"`
	Horn      int         `json:"horn"`
	Locked    bool        `json:"locked"`
	Tones     []SirenTone `json:"tones"`
}

// Clone returns a deep copy so a held snapshot cannot be mutated through
// the decoded message.
func (s LVCState) Clone() LVCState {
	c := s
	if s.Tones != nil {
		c.Tones = append([]SirenTone(nil), s.Tones...)
	}
	return c
}

// VisibleButtons replaces the ULC button set wholesale.
type VisibleButtons struct {
	Buttons []ButtonDescriptor `json:"buttons"`
}

// Type implements Message.
func (VisibleButtons) Type() string { return TypeVisibleButtons }
func (VisibleButtons) isMessage()   {}

// LVCStateMessage carries an LVC snapshot.
type LVCStateMessage struct {
	State LVCState
}

// Type implements Message.
func (LVCStateMessage) Type() string { return TypeLVCState }
func (LVCStateMessage) isMessage()   {}

// Press asks the ULC controller to press a button.
type Press struct {
	ID string `json:"id"`
}

// MarshalJSON adds the type tag.
func (p Press) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		ID   string `json:"id"`
	}{TypePress, p.ID})
}

// Action asks the LVC controller to perform an action. Value is omitted
// when nil.
type Action struct {
	Action string
	Value  any
}

// MarshalJSON adds the type tag.
func (a Action) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type   string `json:"type"`
		Action string `json:"action"`
		Value  any    `json:"value,omitempty"`
	}{TypeAction, a.Action, a.Value})
}

// Decoder turns one frame into a Message.
type Decoder func(data []byte) (Message, error)

// envelope is the first decoding step: just the tag.
type envelope struct {
	Type *string `json:"type"`
}

// readTag validates that data is a JSON object carrying a string type tag.
func readTag(data []byte) (string, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return "", fmt.Errorf("%w: not a JSON object", ErrMalformed)
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if env.Type == nil || *env.Type == "" {
		return "", fmt.Errorf("%w: missing type", ErrUnknownType)
	}
	return *env.Type, nil
}

// DecodeULC decodes a frame received on the ULC channel.
func DecodeULC(data []byte) (Message, error) {
	tag, err := readTag(data)
	if err != nil {
		return nil, err
	}

	switch tag {
	case TypeVisibleButtons:
		var raw struct {
			Buttons *[]ButtonDescriptor `json:"buttons"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrMalformed, tag, err)
		}
		msg := VisibleButtons{Buttons: []ButtonDescriptor{}}
		if raw.Buttons != nil {
			msg.Buttons = *raw.Buttons
		}
		return msg, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, tag)
	}
}

// DecodeLVC decodes a frame received on the LVC channel.
func DecodeLVC(data []byte) (Message, error) {
	tag, err := readTag(data)
	if err != nil {
		return nil, err
	}

	switch tag {
	case TypeLVCState:
		var state LVCState
		if err := json.Unmarshal(data, &state); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrMalformed, tag, err)
		}
		if state.Tones == nil {
			state.Tones = []SirenTone{}
		}
		return LVCStateMessage{State: state}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, tag)
	}
}
