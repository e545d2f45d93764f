// Package profile implements the two-state profile switch driven by relay
// connection edges.
//
// A controller connecting flips the device to the controller's profile;
// the last client leaving flips it back to the default. Failed activations
// leave the machine where it was and are never retried.
package profile

import (
	"context"
	"fmt"
)

// State is the profile machine state.
type State int

// Machine states.
const (
	Default State = iota
	Active
)

func (s State) String() string {
	if s == Active {
		return "active"
	}
	return "default"
}

// Activator performs the external profile switch.
type Activator interface {
	ActivateProfile(ctx context.Context, device, profile string) error
	ActivateDefaultProfile(ctx context.Context, device string) error
}

// Logger defines the logging interface used by the Machine.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// TransitionFunc observes successful transitions.
type TransitionFunc func(from, to State, device string)

// Machine is the per-channel profile switch. It is not safe for concurrent
// use; it is owned by the event loop.
type Machine struct {
	channel      string
	profile      string
	activator    Activator
	device       string
	state        State
	logger       Logger
	onTransition TransitionFunc
}

// New creates a machine that activates profileName on connect.
func New(channel, profileName string, activator Activator) *Machine {
	return &Machine{
		channel:   channel,
		profile:   profileName,
		activator: activator,
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger for the machine.
func (m *Machine) SetLogger(logger Logger) {
	m.logger = logger
}

// OnTransition registers an observer for successful transitions.
func (m *Machine) OnTransition(fn TransitionFunc) {
	m.onTransition = fn
}

// SetDevice records the target device identity.
func (m *Machine) SetDevice(device string) {
	m.device = device
	m.logger.Info("profile device set", "channel", m.channel, "device", device)
}

// ForgetDevice clears the device identity if it matches. The device is gone,
// so the machine returns to Default without calling the collaborator.
func (m *Machine) ForgetDevice(device string) {
	if m.device == "" || m.device != device {
		return
	}
	prev := m.state
	m.device = ""
	m.state = Default
	m.logger.Info("profile device removed", "channel", m.channel, "device", device)
	if prev != Default {
		m.notify(prev, Default, device)
	}
}

// OnConnectEdge moves Default to Active. It is a no-op when already Active,
// refuses with ErrNoDevice when no device is known, and returns
// ErrActivationFailed leaving the state unchanged when the collaborator
// fails.
func (m *Machine) OnConnectEdge(ctx context.Context) error {
	if m.state == Active {
		return nil
	}
	if m.device == "" {
		m.logger.Warn("profile switch refused: no device", "channel", m.channel, "profile", m.profile)
		return ErrNoDevice
	}

	if err := m.activator.ActivateProfile(ctx, m.device, m.profile); err != nil {
		m.logger.Error("profile switch failed",
			"channel", m.channel,
			"profile", m.profile,
			"device", m.device,
			"error", err,
		)
		return fmt.Errorf("%w: %s: %w", ErrActivationFailed, m.profile, err)
	}

	m.state = Active
	m.logger.Info("profile switched", "channel", m.channel, "profile", m.profile, "device", m.device)
	m.notify(Default, Active, m.device)
	return nil
}

// OnDisconnectEdge moves Active to Default. It is a no-op when already
// Default.
func (m *Machine) OnDisconnectEdge(ctx context.Context) error {
	if m.state == Default {
		return nil
	}
	if m.device == "" {
		m.logger.Warn("default profile switch refused: no device", "channel", m.channel)
		return ErrNoDevice
	}

	if err := m.activator.ActivateDefaultProfile(ctx, m.device); err != nil {
		m.logger.Error("default profile switch failed",
			"channel", m.channel,
			"device", m.device,
			"error", err,
		)
		return fmt.Errorf("%w: default: %w", ErrActivationFailed, err)
	}

	m.state = Default
	m.logger.Info("profile switched to default", "channel", m.channel, "device", m.device)
	m.notify(Active, Default, m.device)
	return nil
}

// State returns the current state.
func (m *Machine) State() State {
	return m.state
}

// Device returns the known device identity, or "".
func (m *Machine) Device() string {
	return m.device
}

// Profile returns the profile name activated on connect.
func (m *Machine) Profile() string {
	return m.profile
}

func (m *Machine) notify(from, to State, device string) {
	if m.onTransition != nil {
		m.onTransition(from, to, device)
	}
}
