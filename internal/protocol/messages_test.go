package protocol

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDecodeULC_VisibleButtons(t *testing.T) {
	data := []byte(`{"type":"visible_buttons","buttons":[
		{"id":"b1","label":"STAGE 1","numKey":1,"color":"red","active":true,"extra":0},
		{"id":"b2","label":"TA","numKey":2,"color":"amber","active":false,"extra":3}]}`)

	msg, err := DecodeULC(data)
	if err != nil {
		t.Fatalf("DecodeULC() error = %v", err)
	}
	vb, ok := msg.(VisibleButtons)
	if !ok {
		t.Fatalf("DecodeULC() = %T, want VisibleButtons", msg)
	}
	if len(vb.Buttons) != 2 {
		t.Fatalf("len(Buttons) = %d, want 2", len(vb.Buttons))
	}
	if vb.Buttons[0].ID != "b1" || !vb.Buttons[0].Active || vb.Buttons[0].Color != "red" {
		t.Errorf("Buttons[0] = %+v", vb.Buttons[0])
	}
	if vb.Buttons[1].Extra != 3 {
		t.Errorf("Buttons[1].Extra = %d, want 3", vb.Buttons[1].Extra)
	}
}

func TestDecodeULC_MissingButtonsIsEmpty(t *testing.T) {
	msg, err := DecodeULC([]byte(`{"type":"visible_buttons"}`))
	if err != nil {
		t.Fatalf("DecodeULC() error = %v", err)
	}
	vb := msg.(VisibleButtons)
	if vb.Buttons == nil || len(vb.Buttons) != 0 {
		t.Errorf("Buttons = %#v, want empty non-nil", vb.Buttons)
	}
}

func TestDecodeULC_Rejects(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"not json", `hello`, ErrMalformed},
		{"array", `[1,2]`, ErrMalformed},
		{"truncated", `{"type":"visible_buttons"`, ErrMalformed},
		{"missing type", `{"buttons":[]}`, ErrUnknownType},
		{"empty type", `{"type":""}`, ErrUnknownType},
		{"unknown type", `{"type":"bogus"}`, ErrUnknownType},
		{"lvc on ulc channel", `{"type":"lvc_state","tones":[]}`, ErrUnknownType},
		{"bad buttons", `{"type":"visible_buttons","buttons":"nope"}`, ErrMalformed},
		{"non-string type", `{"type":7}`, ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeULC([]byte(tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("DecodeULC(%s) error = %v, want %v", tt.data, err, tt.want)
			}
		})
	}
}

func TestDecodeLVC_State(t *testing.T) {
	data := []byte(`{"type":"lvc_state","connected":true,"sirenOn":true,"mainSiren":2,
		"auxSiren":0,"horn":1,"locked":false,"tones":[
		{"id":1,"name":"WAIL","position":1,"isMain":false,"isAux":false},
		{"id":2,"name":"YELP","position":2,"isMain":true,"isAux":true}]}`)

	msg, err := DecodeLVC(data)
	if err != nil {
		t.Fatalf("DecodeLVC() error = %v", err)
	}
	sm, ok := msg.(LVCStateMessage)
	if !ok {
		t.Fatalf("DecodeLVC() = %T, want LVCStateMessage", msg)
	}
	if !sm.State.SirenOn || sm.State.MainSiren != 2 || sm.State.Horn != 1 {
		t.Errorf("State = %+v", sm.State)
	}
	if len(sm.State.Tones) != 2 || !sm.State.Tones[1].IsMain || !sm.State.Tones[1].IsAux {
		t.Errorf("Tones = %+v", sm.State.Tones)
	}
}

func TestDecodeLVC_Rejects(t *testing.T) {
	for _, data := range []string{`{"type":"visible_buttons"}`, `{"type":"press","id":"x"}`} {
		if _, err := DecodeLVC([]byte(data)); !errors.Is(err, ErrUnknownType) {
			t.Errorf("DecodeLVC(%s) error = %v, want ErrUnknownType", data, err)
		}
	}
	if _, err := DecodeLVC([]byte(`{"type":"lvc_state","tones":{}}`)); !errors.Is(err, ErrMalformed) {
		t.Errorf("DecodeLVC(bad tones) error = %v, want ErrMalformed", err)
	}
}

func TestLVCState_CloneIsIndependent(t *testing.T) {
	orig := LVCState{Tones: []SirenTone{{ID: 1, Name: "WAIL"}}}
	c := orig.Clone()
	c.Tones[0].Name = "changed"
	if orig.Tones[0].Name != "WAIL" {
		t.Errorf("Clone shares tone storage")
	}
}

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		msg  any
		want string
	}{
		{"press", Press{ID: "b1"}, `{"type":"press","id":"b1"}`},
		{"action no value", Action{Action: ActionToggleLights}, `{"type":"action","action":"toggle_lights"}`},
		{"action int value", Action{Action: ActionSetTone, Value: 2}, `{"type":"action","action":"set_tone","value":2}`},
		{"action string value", Action{Action: ActionToggleAux, Value: "x"}, `{"type":"action","action":"toggle_aux","value":"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.msg)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Marshal() = %s, want %s", got, tt.want)
			}
		})
	}
}
