package profile

import (
	"context"
	"errors"
	"testing"
)

// mockActivator records profile calls and fails on demand.
type mockActivator struct {
	calls []string
	err   error
}

func (m *mockActivator) ActivateProfile(_ context.Context, device, profile string) error {
	m.calls = append(m.calls, "activate:"+device+":"+profile)
	return m.err
}

func (m *mockActivator) ActivateDefaultProfile(_ context.Context, device string) error {
	m.calls = append(m.calls, "default:"+device)
	return m.err
}

func TestMachine_RefusedWithoutDeviceThenSucceeds(t *testing.T) {
	act := &mockActivator{}
	m := New("ulc", "ULC", act)
	ctx := context.Background()

	if err := m.OnConnectEdge(ctx); !errors.Is(err, ErrNoDevice) {
		t.Fatalf("OnConnectEdge() error = %v, want ErrNoDevice", err)
	}
	if m.State() != Default {
		t.Fatalf("State() = %v, want default", m.State())
	}
	if len(act.calls) != 0 {
		t.Fatalf("activator called without device: %v", act.calls)
	}

	m.SetDevice("dev-1")
	if err := m.OnConnectEdge(ctx); err != nil {
		t.Fatalf("OnConnectEdge() error = %v", err)
	}
	if m.State() != Active {
		t.Errorf("State() = %v, want active", m.State())
	}
	if len(act.calls) != 1 || act.calls[0] != "activate:dev-1:ULC" {
		t.Errorf("calls = %v", act.calls)
	}
}

func TestMachine_Idempotent(t *testing.T) {
	act := &mockActivator{}
	m := New("ulc", "ULC", act)
	m.SetDevice("dev-1")
	ctx := context.Background()

	if err := m.OnDisconnectEdge(ctx); err != nil {
		t.Fatalf("OnDisconnectEdge() in Default error = %v", err)
	}
	_ = m.OnConnectEdge(ctx)
	_ = m.OnConnectEdge(ctx)
	_ = m.OnDisconnectEdge(ctx)
	_ = m.OnDisconnectEdge(ctx)

	want := []string{"activate:dev-1:ULC", "default:dev-1"}
	if len(act.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", act.calls, want)
	}
	for i := range want {
		if act.calls[i] != want[i] {
			t.Errorf("calls[%d] = %s, want %s", i, act.calls[i], want[i])
		}
	}
}

func TestMachine_FailureKeepsState(t *testing.T) {
	act := &mockActivator{err: errors.New("sdk closed")}
	m := New("ulc", "ULC", act)
	m.SetDevice("dev-1")
	ctx := context.Background()

	err := m.OnConnectEdge(ctx)
	if !errors.Is(err, ErrActivationFailed) {
		t.Fatalf("OnConnectEdge() error = %v, want ErrActivationFailed", err)
	}
	if m.State() != Default {
		t.Errorf("State() = %v after failure, want default", m.State())
	}

	act.err = nil
	if err := m.OnConnectEdge(ctx); err != nil {
		t.Fatalf("OnConnectEdge() error = %v", err)
	}

	act.err = errors.New("sdk closed")
	if err := m.OnDisconnectEdge(ctx); !errors.Is(err, ErrActivationFailed) {
		t.Fatalf("OnDisconnectEdge() error = %v, want ErrActivationFailed", err)
	}
	if m.State() != Active {
		t.Errorf("State() = %v after failed disconnect, want active", m.State())
	}
}

func TestMachine_TransitionsObserved(t *testing.T) {
	m := New("ulc", "ULC", &mockActivator{})
	var got []string
	m.OnTransition(func(from, to State, device string) {
		got = append(got, from.String()+"->"+to.String()+"@"+device)
	})
	m.SetDevice("dev-1")
	ctx := context.Background()

	_ = m.OnConnectEdge(ctx)
	m.ForgetDevice("other")
	m.ForgetDevice("dev-1")

	want := []string{"default->active@dev-1", "active->default@dev-1"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("transitions = %v, want %v", got, want)
	}
	if m.Device() != "" {
		t.Errorf("Device() = %q after ForgetDevice", m.Device())
	}
	if m.Profile() != "ULC" {
		t.Errorf("Profile() = %q", m.Profile())
	}
}
