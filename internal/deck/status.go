package deck

import (
	"time"

	"github.com/nerrad567/ulc-deck/internal/profile"
	"github.com/nerrad567/ulc-deck/internal/registry"
)

// Status is a read-only view of the deck for the status API.
type Status struct {
	Families []FamilyStatus  `json:"families"`
	Profiles []ProfileStatus `json:"profiles"`
	ULC      SnapshotStatus  `json:"ulc"`
	LVC      SnapshotStatus  `json:"lvc"`
}

// FamilyStatus describes one button family.
type FamilyStatus struct {
	Action  string `json:"action"`
	Policy  string `json:"policy,omitempty"`
	Visible int    `json:"visible"`
	Armed   int    `json:"armed,omitempty"`
	Held    int    `json:"held,omitempty"`

	// Bound maps each visible key to the ULC button id it last rendered.
	Bound map[string]string `json:"bound,omitempty"`
}

// ProfileStatus describes one profile machine.
type ProfileStatus struct {
	Channel string `json:"channel"`
	Profile string `json:"profile"`
	State   string `json:"state"`
	Device  string `json:"device,omitempty"`
}

// SnapshotStatus summarises a controller mirror.
type SnapshotStatus struct {
	Available bool       `json:"available"`
	Version   uint64     `json:"version"`
	Items     int        `json:"items"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Status builds the current view. It must run on the event loop.
func (d *Deck) Status() Status {
	st := Status{
		Families: []FamilyStatus{
			{Action: d.folder.uuid, Visible: len(d.folder.visible)},
			boundStatus(d.grid.uuid, d.grid.reg),
			boundStatus(d.dynamic.uuid, d.dynamic.reg),
			familyStatus(d.siren.uuid, d.siren.reg),
			familyStatus(d.tone.uuid, d.tone.reg),
		},
		Profiles: []ProfileStatus{profileStatus(ChannelULC, d.ulcProfile)},
	}
	for _, slot := range d.siren.reg.Slots() {
		if d.siren.gestures.Held(slot) {
			st.Families[3].Held++
		}
	}
	for _, slot := range d.tone.reg.Slots() {
		if d.tone.gestures.Armed(slot) {
			st.Families[4].Armed++
		}
	}
	if d.lvcProfile != nil {
		st.Profiles = append(st.Profiles, profileStatus(ChannelLVC, d.lvcProfile))
	}

	buttons, ok := d.ulc.Current()
	st.ULC = snapshotStatus(ok, d.ulc.Version(), len(buttons), d.ulc.UpdatedAt())
	state, ok := d.lvc.Current()
	st.LVC = snapshotStatus(ok, d.lvc.Version(), len(state.Tones), d.lvc.UpdatedAt())
	return st
}

func familyStatus(uuid string, reg *registry.Registry) FamilyStatus {
	return FamilyStatus{Action: uuid, Policy: reg.Policy().String(), Visible: reg.Len()}
}

func boundStatus(uuid string, reg *registry.Registry) FamilyStatus {
	fs := familyStatus(uuid, reg)
	bindings := reg.Bindings()
	if len(bindings) == 0 {
		return fs
	}
	fs.Bound = make(map[string]string, len(bindings))
	for slot, id := range bindings {
		fs.Bound[string(slot)] = id
	}
	return fs
}

func profileStatus(channel string, m *profile.Machine) ProfileStatus {
	return ProfileStatus{Channel: channel, Profile: m.Profile(), State: m.State().String(), Device: m.Device()}
}

func snapshotStatus(ok bool, version uint64, items int, updated time.Time) SnapshotStatus {
	s := SnapshotStatus{Available: ok, Version: version, Items: items}
	if !updated.IsZero() {
		s.UpdatedAt = &updated
	}
	return s
}
