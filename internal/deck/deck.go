package deck

import (
	"context"
	"fmt"

	"github.com/nerrad567/ulc-deck/internal/clock"
	"github.com/nerrad567/ulc-deck/internal/gesture"
	"github.com/nerrad567/ulc-deck/internal/infrastructure/logging"
	"github.com/nerrad567/ulc-deck/internal/mirror"
	"github.com/nerrad567/ulc-deck/internal/profile"
	"github.com/nerrad567/ulc-deck/internal/protocol"
	"github.com/nerrad567/ulc-deck/internal/registry"
	"github.com/nerrad567/ulc-deck/internal/relay"
	"github.com/nerrad567/ulc-deck/internal/render"
	"github.com/nerrad567/ulc-deck/internal/surface"
	"github.com/nerrad567/ulc-deck/internal/telemetry"
)

// Channel names.
const (
	ChannelULC = "ulc"
	ChannelLVC = "lvc"
)

// DefaultActionPrefix is the manifest namespace of the plugin's actions.
const DefaultActionPrefix = "dev.sratzel.ulc-streamdeck-plugin"

// Sender delivers an outbound message to every client of a channel.
// *relay.Channel satisfies it.
type Sender interface {
	Broadcast(msg any) (int, error)
}

// Recorder observes deck events. *telemetry.Recorder satisfies it.
type Recorder interface {
	Record(ev telemetry.Event)
}

type noopRecorder struct{}

func (noopRecorder) Record(telemetry.Event) {}

// Options configures a Deck.
type Options struct {
	// Clock schedules gesture timers; normally the event loop.
	Clock clock.Clock

	Renderer surface.Renderer

	// Images supplies key images. Nil renders titles only.
	Images *render.Images

	ULC Sender
	LVC Sender

	// ULCProfile switches the device profile on ULC connection edges.
	ULCProfile *profile.Machine

	// LVCProfile is optional; nil disables LVC-driven profile switching.
	LVCProfile *profile.Machine

	Gestures      gesture.Config
	ColumnsPerRow int
	ActionPrefix  string

	// Recorder is optional.
	Recorder Recorder

	// Context bounds profile activations. Nil uses context.Background().
	Context context.Context

	Logger *logging.Logger
}

// Deck is the orchestrator. It is not safe for concurrent use.
type Deck struct {
	clock    clock.Clock
	renderer surface.Renderer
	images   *render.Images
	ulcOut   Sender
	lvcOut   Sender
	recorder Recorder
	ctx      context.Context
	logger   *logging.Logger

	ulcProfile *profile.Machine
	lvcProfile *profile.Machine

	ulc *mirror.Mirror[[]protocol.ButtonDescriptor]
	lvc *mirror.Mirror[protocol.LVCState]

	folder  *folderFamily
	grid    *gridFamily
	dynamic *dynamicFamily
	siren   *sirenFamily
	tone    *toneFamily

	actions map[string]surface.Action
	order   []surface.Action
}

// New builds a Deck and its button families.
func New(opts Options) (*Deck, error) {
	if opts.Clock == nil {
		return nil, fmt.Errorf("%w: clock is required", ErrInvalidOptions)
	}
	if opts.Renderer == nil {
		return nil, fmt.Errorf("%w: renderer is required", ErrInvalidOptions)
	}
	if opts.ULC == nil || opts.LVC == nil {
		return nil, fmt.Errorf("%w: both channel senders are required", ErrInvalidOptions)
	}
	if opts.ULCProfile == nil {
		return nil, fmt.Errorf("%w: ULC profile machine is required", ErrInvalidOptions)
	}
	if opts.Images == nil {
		opts.Images = render.NewImages(nil)
	}
	if opts.Recorder == nil {
		opts.Recorder = noopRecorder{}
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	if opts.ActionPrefix == "" {
		opts.ActionPrefix = DefaultActionPrefix
	}
	if opts.ColumnsPerRow <= 0 {
		opts.ColumnsPerRow = registry.DefaultColumnsPerRow
	}

	d := &Deck{
		clock:      opts.Clock,
		renderer:   opts.Renderer,
		images:     opts.Images,
		ulcOut:     opts.ULC,
		lvcOut:     opts.LVC,
		recorder:   opts.Recorder,
		ctx:        opts.Context,
		logger:     opts.Logger.With("component", "deck"),
		ulcProfile: opts.ULCProfile,
		lvcProfile: opts.LVCProfile,
		ulc:        mirror.New[[]protocol.ButtonDescriptor](opts.Clock.Now),
		lvc:        mirror.New[protocol.LVCState](opts.Clock.Now),
		actions:    make(map[string]surface.Action),
	}

	d.folder = &folderFamily{d: d, uuid: opts.ActionPrefix + ".ulcfolder", visible: make(map[surface.SlotID]struct{})}
	d.grid = &gridFamily{
		d:    d,
		uuid: opts.ActionPrefix + ".ulcbutton",
		reg:  registry.New(registry.Grid{ColumnsPerRow: opts.ColumnsPerRow}),
	}
	d.dynamic = &dynamicFamily{d: d, uuid: opts.ActionPrefix + ".ulcdynamic", reg: registry.New(registry.AppearanceOrder{})}
	d.siren = &sirenFamily{d: d, uuid: opts.ActionPrefix + ".lvcsiren", reg: registry.New(registry.AppearanceOrder{})}
	d.siren.gestures = gesture.New(opts.Clock, opts.Gestures, d.siren.onIntent)
	d.tone = &toneFamily{d: d, uuid: opts.ActionPrefix + ".lvctone", reg: registry.New(registry.AppearanceOrder{})}
	d.tone.gestures = gesture.New(opts.Clock, opts.Gestures, d.tone.onIntent)

	for _, a := range []surface.Action{d.folder, d.grid, d.dynamic, d.siren, d.tone} {
		d.actions[a.UUID()] = a
		d.order = append(d.order, a)
	}

	d.ulc.Attach(mirror.ProjectorFunc[[]protocol.ButtonDescriptor](d.grid.project))
	d.ulc.Attach(mirror.ProjectorFunc[[]protocol.ButtonDescriptor](d.dynamic.project))
	d.lvc.Attach(mirror.ProjectorFunc[protocol.LVCState](d.siren.project))
	d.lvc.Attach(mirror.ProjectorFunc[protocol.LVCState](d.tone.project))

	d.observeProfile(ChannelULC, d.ulcProfile)
	d.observeProfile(ChannelLVC, d.lvcProfile)

	return d, nil
}

func (d *Deck) observeProfile(channel string, m *profile.Machine) {
	if m == nil {
		return
	}
	m.OnTransition(func(_, to profile.State, device string) {
		d.recorder.Record(telemetry.Profile(channel, to.String(), device, d.clock.Now()))
	})
}

// Action returns the family registered for an action UUID.
func (d *Deck) Action(uuid string) (surface.Action, bool) {
	a, ok := d.actions[uuid]
	return a, ok
}

// Actions returns every family in registration order.
func (d *Deck) Actions() []surface.Action {
	return append([]surface.Action(nil), d.order...)
}

// ULCHandlers returns relay callbacks for the ULC channel.
func (d *Deck) ULCHandlers() relay.Handlers {
	return relay.Handlers{
		OnMessage:        d.OnULCMessage,
		OnConnectEdge:    d.OnULCConnect,
		OnDisconnectEdge: d.OnULCDisconnect,
	}
}

// LVCHandlers returns relay callbacks for the LVC channel.
func (d *Deck) LVCHandlers() relay.Handlers {
	return relay.Handlers{
		OnMessage:        d.OnLVCMessage,
		OnConnectEdge:    d.OnLVCConnect,
		OnDisconnectEdge: d.OnLVCDisconnect,
	}
}

// OnULCMessage applies a ULC button set.
func (d *Deck) OnULCMessage(msg protocol.Message) {
	m, ok := msg.(protocol.VisibleButtons)
	if !ok {
		d.logger.Debug("ignoring unexpected ULC message", "type", msg.Type())
		return
	}

	buttons := append([]protocol.ButtonDescriptor{}, m.Buttons...)
	d.ulc.Apply(buttons)

	active := 0
	for _, b := range buttons {
		if b.Active {
			active++
		}
	}
	d.logger.Debug("ULC buttons applied", "buttons", len(buttons), "active", active)
	d.recorder.Record(telemetry.Snapshot(ChannelULC, buttons,
		fmt.Sprintf("buttons=%d active=%d", len(buttons), active),
		map[string]any{"buttons": len(buttons), "active": active},
		d.clock.Now()))
}

// OnULCConnect handles the first ULC client arriving.
func (d *Deck) OnULCConnect() {
	d.logger.Info("ULC controller connected")
	d.recorder.Record(telemetry.Edge(ChannelULC, true, d.clock.Now()))
	d.switchProfile(d.ulcProfile, true)
}

// OnULCDisconnect handles the last ULC client leaving. The button set is
// kept; the profile switch away hides its keys.
func (d *Deck) OnULCDisconnect() {
	d.logger.Info("ULC controller disconnected")
	d.recorder.Record(telemetry.Edge(ChannelULC, false, d.clock.Now()))
	d.switchProfile(d.ulcProfile, false)
}

// OnLVCMessage applies an LVC state snapshot.
func (d *Deck) OnLVCMessage(msg protocol.Message) {
	m, ok := msg.(protocol.LVCStateMessage)
	if !ok {
		d.logger.Debug("ignoring unexpected LVC message", "type", msg.Type())
		return
	}

	state := m.State.Clone()
	d.lvc.Apply(state)

	d.logger.Debug("LVC state applied",
		"siren_on", state.SirenOn,
		"main_siren", state.MainSiren,
		"aux_siren", state.AuxSiren,
		"tones", len(state.Tones),
	)
	d.recorder.Record(telemetry.Snapshot(ChannelLVC, state,
		fmt.Sprintf("siren_on=%t main=%d aux=%d tones=%d", state.SirenOn, state.MainSiren, state.AuxSiren, len(state.Tones)),
		map[string]any{
			"siren_on":   state.SirenOn,
			"main_siren": state.MainSiren,
			"aux_siren":  state.AuxSiren,
			"horn":       state.Horn,
			"locked":     state.Locked,
			"tones":      len(state.Tones),
		},
		d.clock.Now()))
}

// OnLVCConnect handles the first LVC client arriving.
func (d *Deck) OnLVCConnect() {
	d.logger.Info("LVC controller connected")
	d.recorder.Record(telemetry.Edge(ChannelLVC, true, d.clock.Now()))
	d.switchProfile(d.lvcProfile, true)
}

// OnLVCDisconnect handles the last LVC client leaving: the snapshot is
// dropped, pending tone clicks are discarded and tone keys fall back to the
// waiting placeholder.
func (d *Deck) OnLVCDisconnect() {
	d.logger.Info("LVC controller disconnected")
	d.recorder.Record(telemetry.Edge(ChannelLVC, false, d.clock.Now()))
	d.tone.gestures.Reset()
	d.lvc.Clear()
	d.recorder.Record(telemetry.Snapshot(ChannelLVC, nil, "", nil, d.clock.Now()))
	d.switchProfile(d.lvcProfile, false)
}

func (d *Deck) switchProfile(m *profile.Machine, connected bool) {
	if m == nil {
		return
	}
	var err error
	if connected {
		err = m.OnConnectEdge(d.ctx)
	} else {
		err = m.OnDisconnectEdge(d.ctx)
	}
	if err != nil {
		// The machine has already logged the refusal or failure.
		d.logger.Debug("profile switch not applied", "profile", m.Profile(), "error", err)
	}
}

// DeviceConnected records the Stream Deck device used for profile switches.
func (d *Deck) DeviceConnected(device string) {
	if device == "" {
		return
	}
	d.ulcProfile.SetDevice(device)
	if d.lvcProfile != nil {
		d.lvcProfile.SetDevice(device)
	}
}

// DeviceDisconnected forgets device if it is the tracked one.
func (d *Deck) DeviceDisconnected(device string) {
	d.ulcProfile.ForgetDevice(device)
	if d.lvcProfile != nil {
		d.lvcProfile.ForgetDevice(device)
	}
}

// sendULC forwards a press to the ULC controller.
func (d *Deck) sendULC(msg any) {
	d.send(ChannelULC, d.ulcOut, msg)
}

// sendLVC forwards an action to the LVC controller.
func (d *Deck) sendLVC(action string, value any) {
	d.send(ChannelLVC, d.lvcOut, protocol.Action{Action: action, Value: value})
}

func (d *Deck) send(channel string, out Sender, msg any) {
	n, err := out.Broadcast(msg)
	if err != nil {
		d.logger.Warn("relay send failed", "channel", channel, "error", err)
		return
	}
	if n == 0 {
		d.logger.Debug("no controller connected, message dropped", "channel", channel)
	}
}

func (d *Deck) setTitle(slot surface.SlotID, text string) {
	if err := d.renderer.SetTitle(slot, text); err != nil {
		d.logger.Debug("set title failed", "slot", string(slot), "error", err)
	}
}

func (d *Deck) setImage(slot surface.SlotID, image string) {
	if err := d.renderer.SetImage(slot, image); err != nil {
		d.logger.Debug("set image failed", "slot", string(slot), "error", err)
	}
}
