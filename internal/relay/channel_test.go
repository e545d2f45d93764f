package relay

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/ulc-deck/internal/infrastructure/config"
	"github.com/nerrad567/ulc-deck/internal/infrastructure/logging"
	"github.com/nerrad567/ulc-deck/internal/protocol"
)

// inlineDispatcher runs posted callbacks immediately, one at a time.
type inlineDispatcher struct {
	mu sync.Mutex
}

func (d *inlineDispatcher) Post(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn()
}

type harness struct {
	ch       *Channel
	events   chan string
	messages chan protocol.Message
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		events:   make(chan string, 32),
		messages: make(chan protocol.Message, 32),
	}
	h.ch = New(Options{
		Name: "ulc",
		Config: config.ChannelConfig{
			Enabled:        true,
			Host:           "127.0.0.1",
			Port:           0,
			MaxMessageSize: 65536,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Decode:     protocol.DecodeULC,
		Dispatcher: &inlineDispatcher{},
		Logger:     logging.Discard(),
	}, Handlers{
		OnMessage:        func(m protocol.Message) { h.messages <- m },
		OnConnectEdge:    func() { h.events <- "connect" },
		OnDisconnectEdge: func() { h.events <- "disconnect" },
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := h.ch.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() { h.ch.Close() })
	return h
}

func (h *harness) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+h.ch.Addr()+"/", nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	return conn
}

func (h *harness) expectEvent(t *testing.T, want string) {
	t.Helper()
	select {
	case got := <-h.events:
		if got != want {
			t.Fatalf("event = %q, want %q", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %q", want)
	}
}

func (h *harness) expectNoEvent(t *testing.T) {
	t.Helper()
	select {
	case got := <-h.events:
		t.Fatalf("unexpected event %q", got)
	case <-time.After(100 * time.Millisecond):
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestChannel_ConnectionEdges(t *testing.T) {
	h := newHarness(t)

	a := h.dial(t)
	h.expectEvent(t, "connect")

	b := h.dial(t)
	waitFor(t, func() bool { return h.ch.ClientCount() == 2 })
	h.expectNoEvent(t)

	a.Close()
	waitFor(t, func() bool { return h.ch.ClientCount() == 1 })
	h.expectNoEvent(t)

	c := h.dial(t)
	waitFor(t, func() bool { return h.ch.ClientCount() == 2 })
	h.expectNoEvent(t)

	b.Close()
	c.Close()
	h.expectEvent(t, "disconnect")
	h.expectNoEvent(t)

	d := h.dial(t)
	defer d.Close()
	h.expectEvent(t, "connect")
}

func TestChannel_DecodesAndDropsMalformed(t *testing.T) {
	h := newHarness(t)
	conn := h.dial(t)
	defer conn.Close()
	h.expectEvent(t, "connect")

	frames := []string{
		`not json`,
		`{"type":"bogus"}`,
		`{"type":"visible_buttons","buttons":[{"id":"b1","label":"ONE"}]}`,
	}
	for _, f := range frames {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
			t.Fatalf("WriteMessage() error = %v", err)
		}
	}

	select {
	case msg := <-h.messages:
		vb, ok := msg.(protocol.VisibleButtons)
		if !ok || len(vb.Buttons) != 1 || vb.Buttons[0].ID != "b1" {
			t.Fatalf("message = %#v", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
	}

	st := h.ch.Status()
	if st.Received != 3 || st.Dropped != 2 {
		t.Errorf("Status() received=%d dropped=%d, want 3/2", st.Received, st.Dropped)
	}
	if st.Clients != 1 {
		t.Errorf("malformed frames closed the connection: clients=%d", st.Clients)
	}
	h.expectNoEvent(t)
}

func TestChannel_BroadcastReachesEveryClient(t *testing.T) {
	h := newHarness(t)
	a := h.dial(t)
	defer a.Close()
	b := h.dial(t)
	defer b.Close()
	waitFor(t, func() bool { return h.ch.ClientCount() == 2 })

	n, err := h.ch.Broadcast(protocol.Press{ID: "b7"})
	if err != nil {
		t.Fatalf("Broadcast() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Broadcast() = %d, want 2", n)
	}

	for _, conn := range []*websocket.Conn{a, b} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("ReadMessage() error = %v", err)
		}
		var got map[string]any
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("Unmarshal() error = %v", err)
		}
		if got["type"] != "press" || got["id"] != "b7" {
			t.Errorf("frame = %s", data)
		}
	}
}

func TestChannel_BroadcastWithoutClients(t *testing.T) {
	h := newHarness(t)
	n, err := h.ch.Broadcast(protocol.Action{Action: protocol.ActionToggleLights})
	if err != nil || n != 0 {
		t.Errorf("Broadcast() = (%d, %v), want (0, nil)", n, err)
	}
}

func TestChannel_BroadcastEncodeError(t *testing.T) {
	h := newHarness(t)
	_, err := h.ch.Broadcast(map[string]any{"bad": make(chan int)})
	if !errors.Is(err, ErrEncode) {
		t.Errorf("Broadcast() error = %v, want ErrEncode", err)
	}
}

func TestChannel_ListenErrorIsReported(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	defer busy.Close()
	port := busy.Addr().(*net.TCPAddr).Port

	ch := New(Options{
		Name:   "lvc",
		Config: config.ChannelConfig{Host: "127.0.0.1", Port: port},
		Decode: protocol.DecodeLVC,
		Logger: logging.Discard(),
	}, Handlers{})

	err = ch.Start(context.Background())
	if !errors.Is(err, ErrListen) {
		t.Fatalf("Start() error = %v, want ErrListen", err)
	}
	st := ch.Status()
	if st.Listening || st.LastError == "" {
		t.Errorf("Status() = %+v, want not listening with error", st)
	}
}

func TestChannel_CloseFiresDisconnectEdge(t *testing.T) {
	h := newHarness(t)
	conn := h.dial(t)
	defer conn.Close()
	h.expectEvent(t, "connect")

	if err := h.ch.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	h.expectEvent(t, "disconnect")
	if h.ch.Status().Listening {
		t.Error("Status().Listening = true after Close")
	}
}

func TestChannel_StartTwice(t *testing.T) {
	h := newHarness(t)
	if err := h.ch.Start(context.Background()); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start() error = %v, want ErrAlreadyStarted", err)
	}
}
