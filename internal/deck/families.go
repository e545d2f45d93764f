package deck

import (
	"github.com/nerrad567/ulc-deck/internal/gesture"
	"github.com/nerrad567/ulc-deck/internal/protocol"
	"github.com/nerrad567/ulc-deck/internal/registry"
	"github.com/nerrad567/ulc-deck/internal/render"
	"github.com/nerrad567/ulc-deck/internal/surface"
	"github.com/nerrad567/ulc-deck/internal/telemetry"
)

// folderFamily is the ULC folder action. It renders nothing.
type folderFamily struct {
	d       *Deck
	uuid    string
	visible map[surface.SlotID]struct{}
}

func (f *folderFamily) UUID() string { return f.uuid }

func (f *folderFamily) OnVisible(slot surface.SlotID, _ surface.Position) {
	f.visible[slot] = struct{}{}
	f.d.logger.Info("ULC folder appeared", "slot", string(slot))
}

func (f *folderFamily) OnHidden(slot surface.SlotID) {
	delete(f.visible, slot)
	f.d.logger.Info("ULC folder disappeared", "slot", string(slot))
}

func (*folderFamily) OnPress(surface.SlotID, surface.Position)   {}
func (*folderFamily) OnRelease(surface.SlotID, surface.Position) {}

// gridFamily maps keys to ULC buttons by grid position.
type gridFamily struct {
	d    *Deck
	uuid string
	reg  *registry.Registry
}

func (f *gridFamily) UUID() string { return f.uuid }

func (f *gridFamily) OnVisible(slot surface.SlotID, pos surface.Position) {
	f.reg.OnVisible(slot, pos)
	buttons, ok := f.d.ulc.Current()
	f.render(slot, buttons, ok)
}

func (f *gridFamily) OnHidden(slot surface.SlotID) {
	f.reg.OnHidden(slot)
}

// OnPress sends the button at the slot's index as of this press.
func (f *gridFamily) OnPress(slot surface.SlotID, _ surface.Position) {
	btn, ok := f.button(slot)
	if !ok {
		f.d.logger.Debug("grid key has no ULC button", "slot", string(slot))
		return
	}
	f.d.logger.Info("ULC button pressed", "id", btn.ID, "label", btn.Label)
	f.d.sendULC(protocol.Press{ID: btn.ID})
	f.d.recorder.Record(telemetry.Intent(ChannelULC, "ulcbutton", string(slot), gesture.Tap.String(), btn.ID, f.d.clock.Now()))
}

func (*gridFamily) OnRelease(surface.SlotID, surface.Position) {}

func (f *gridFamily) button(slot surface.SlotID) (protocol.ButtonDescriptor, bool) {
	idx, ok := f.reg.Resolve(slot)
	if !ok {
		return protocol.ButtonDescriptor{}, false
	}
	buttons, has := f.d.ulc.Current()
	if !has || idx >= len(buttons) {
		return protocol.ButtonDescriptor{}, false
	}
	return buttons[idx], true
}

func (f *gridFamily) project(buttons []protocol.ButtonDescriptor, ok bool) {
	for _, slot := range f.reg.Slots() {
		f.render(slot, buttons, ok)
	}
}

// render draws the image for the button's color and state with the label
// as title, or a dotted title when the image is unavailable. Reserved and
// unassigned keys are blanked.
func (f *gridFamily) render(slot surface.SlotID, buttons []protocol.ButtonDescriptor, ok bool) {
	idx, resolved := f.reg.Resolve(slot)
	if !resolved || !ok || idx >= len(buttons) {
		f.reg.Unbind(slot)
		f.d.setImage(slot, surface.NoImage)
		f.d.setTitle(slot, render.Blank)
		return
	}

	btn := buttons[idx]
	f.reg.Bind(slot, btn.ID)

	image, err := f.d.images.ULCButton(btn.Color, btn.Active)
	if err != nil {
		f.d.setImage(slot, surface.NoImage)
		f.d.setTitle(slot, render.ActiveTitle(btn.Label, btn.Active))
		return
	}
	f.d.setImage(slot, image)
	f.d.setTitle(slot, btn.Label)
}

// dynamicFamily maps keys to ULC buttons by appearance order.
type dynamicFamily struct {
	d    *Deck
	uuid string
	reg  *registry.Registry
}

func (f *dynamicFamily) UUID() string { return f.uuid }

func (f *dynamicFamily) OnVisible(slot surface.SlotID, pos surface.Position) {
	f.reg.OnVisible(slot, pos)
	buttons, ok := f.d.ulc.Current()
	f.render(slot, buttons, ok)
}

// OnHidden re-renders the remaining keys because later indices shift down.
func (f *dynamicFamily) OnHidden(slot surface.SlotID) {
	if !f.reg.OnHidden(slot) {
		return
	}
	buttons, ok := f.d.ulc.Current()
	f.project(buttons, ok)
}

func (f *dynamicFamily) OnPress(slot surface.SlotID, _ surface.Position) {
	idx, ok := f.reg.Resolve(slot)
	buttons, has := f.d.ulc.Current()
	if !ok || !has || idx >= len(buttons) {
		f.d.logger.Debug("dynamic key has no ULC button", "slot", string(slot))
		return
	}
	btn := buttons[idx]
	f.d.logger.Info("ULC button pressed", "id", btn.ID, "label", btn.Label)
	f.d.sendULC(protocol.Press{ID: btn.ID})
	f.d.recorder.Record(telemetry.Intent(ChannelULC, "ulcdynamic", string(slot), gesture.Tap.String(), btn.ID, f.d.clock.Now()))
}

func (*dynamicFamily) OnRelease(surface.SlotID, surface.Position) {}

func (f *dynamicFamily) project(buttons []protocol.ButtonDescriptor, ok bool) {
	for _, slot := range f.reg.Slots() {
		f.render(slot, buttons, ok)
	}
}

func (f *dynamicFamily) render(slot surface.SlotID, buttons []protocol.ButtonDescriptor, ok bool) {
	idx, resolved := f.reg.Resolve(slot)
	if !resolved || !ok || idx >= len(buttons) {
		f.reg.Unbind(slot)
		f.d.setTitle(slot, render.Placeholder)
		return
	}
	btn := buttons[idx]
	f.reg.Bind(slot, btn.ID)
	f.d.setTitle(slot, render.ActiveTitle(btn.Label, btn.Active))
}

// sirenFamily is the LVC lights toggle: tap toggles lights, hold engages
// MANU until release.
type sirenFamily struct {
	d        *Deck
	uuid     string
	reg      *registry.Registry
	gestures *gesture.Disambiguator
}

func (f *sirenFamily) UUID() string { return f.uuid }

func (f *sirenFamily) OnVisible(slot surface.SlotID, pos surface.Position) {
	f.reg.OnVisible(slot, pos)
	state, ok := f.d.lvc.Current()
	f.render(slot, state, ok)
}

// OnHidden releases a held key first so MANU is not left latched.
func (f *sirenFamily) OnHidden(slot surface.SlotID) {
	f.gestures.Forget(slot)
	f.reg.OnHidden(slot)
}

func (f *sirenFamily) OnPress(slot surface.SlotID, _ surface.Position) {
	if !f.reg.Contains(slot) {
		return
	}
	f.gestures.PressHold(slot)
}

func (f *sirenFamily) OnRelease(slot surface.SlotID, _ surface.Position) {
	f.gestures.ReleaseHold(slot)
}

func (f *sirenFamily) onIntent(in gesture.Intent) {
	var action string
	switch in.Kind {
	case gesture.Tap:
		action = protocol.ActionToggleLights
	case gesture.HoldStart:
		action = protocol.ActionManuOn
	case gesture.HoldEnd:
		action = protocol.ActionManuOff
	default:
		return
	}
	f.d.logger.Info("LVC siren gesture", "gesture", in.Kind.String(), "action", action)
	f.d.sendLVC(action, nil)
	f.d.recorder.Record(telemetry.Intent(ChannelLVC, "lvcsiren", string(in.Slot), in.Kind.String(), action, f.d.clock.Now()))
}

func (f *sirenFamily) project(state protocol.LVCState, ok bool) {
	for _, slot := range f.reg.Slots() {
		f.render(slot, state, ok)
	}
}

func (f *sirenFamily) render(slot surface.SlotID, state protocol.LVCState, ok bool) {
	image, err := f.d.images.Siren(ok && state.SirenOn)
	if err != nil {
		image = surface.NoImage
	}
	f.d.setImage(slot, image)
	f.d.setTitle(slot, render.Blank)
}

// toneFamily maps keys to LVC siren tones by appearance order.
type toneFamily struct {
	d        *Deck
	uuid     string
	reg      *registry.Registry
	gestures *gesture.Disambiguator
}

func (f *toneFamily) UUID() string { return f.uuid }

func (f *toneFamily) OnVisible(slot surface.SlotID, pos surface.Position) {
	f.reg.OnVisible(slot, pos)
	state, ok := f.d.lvc.Current()
	f.render(slot, state, ok)
}

// OnHidden drops a pending single and re-renders the remaining keys.
func (f *toneFamily) OnHidden(slot surface.SlotID) {
	f.gestures.Forget(slot)
	if !f.reg.OnHidden(slot) {
		return
	}
	state, ok := f.d.lvc.Current()
	f.project(state, ok)
}

// OnPress captures the tone id now; the deferred single or the double
// sends that id even if the tone list changes meanwhile.
func (f *toneFamily) OnPress(slot surface.SlotID, _ surface.Position) {
	tone, ok := f.tone(slot)
	if !ok {
		return
	}
	f.gestures.PressClick(slot, tone.ID)
}

func (*toneFamily) OnRelease(surface.SlotID, surface.Position) {}

func (f *toneFamily) tone(slot surface.SlotID) (protocol.SirenTone, bool) {
	idx, ok := f.reg.Resolve(slot)
	if !ok {
		return protocol.SirenTone{}, false
	}
	state, has := f.d.lvc.Current()
	if !has || idx >= len(state.Tones) {
		return protocol.SirenTone{}, false
	}
	return state.Tones[idx], true
}

func (f *toneFamily) onIntent(in gesture.Intent) {
	var action string
	switch in.Kind {
	case gesture.Single:
		action = protocol.ActionSetTone
	case gesture.Double:
		action = protocol.ActionToggleAux
	default:
		return
	}
	f.d.logger.Info("LVC tone gesture", "gesture", in.Kind.String(), "action", action, "tone", in.Arg)
	f.d.sendLVC(action, in.Arg)
	f.d.recorder.Record(telemetry.Intent(ChannelLVC, "lvctone", string(in.Slot), in.Kind.String(), action, f.d.clock.Now()))
}

func (f *toneFamily) project(state protocol.LVCState, ok bool) {
	for _, slot := range f.reg.Slots() {
		f.render(slot, state, ok)
	}
}

func (f *toneFamily) render(slot surface.SlotID, state protocol.LVCState, ok bool) {
	if !ok {
		f.d.setTitle(slot, render.WaitingLVC)
		return
	}
	idx, resolved := f.reg.Resolve(slot)
	if !resolved || idx >= len(state.Tones) {
		f.d.setTitle(slot, render.Placeholder)
		return
	}
	f.d.setTitle(slot, render.ToneTitle(state.Tones[idx]))
}
