package streamdeck

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/ulc-deck/internal/infrastructure/logging"
	"github.com/nerrad567/ulc-deck/internal/surface"
)

const (
	defaultSendBuffer   = 256
	defaultWriteTimeout = 5 * time.Second
	dialTimeout         = 10 * time.Second
)

// Dispatcher runs event callbacks on the event loop. Post must not block.
type Dispatcher interface {
	Post(fn func())
}

// Options configures a Client. Port, PluginUUID and RegisterEvent come
// from the launch flags.
type Options struct {
	Host          string
	Port          int
	PluginUUID    string
	RegisterEvent string

	SendBufferSize int
	WriteTimeout   time.Duration

	// Dispatcher receives every inbound event.
	Dispatcher Dispatcher

	// Logger is the client's logger. Nil uses logging.Default().
	Logger *logging.Logger
}

// Client is a connection to the Stream Deck application.
type Client struct {
	opts    Options
	logger  *logging.Logger
	handler func(Event)

	mu     sync.RWMutex
	conn   *websocket.Conn
	send   chan []byte
	closed bool
	done   chan struct{}
}

// New creates a Client. handler receives every decoded event through the
// Dispatcher.
func New(opts Options, handler func(Event)) *Client {
	if opts.Host == "" {
		opts.Host = "127.0.0.1"
	}
	if opts.SendBufferSize <= 0 {
		opts.SendBufferSize = defaultSendBuffer
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = defaultWriteTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		opts:    opts,
		logger:  logger.With("component", "streamdeck"),
		handler: handler,
		done:    make(chan struct{}),
	}
}

// Connect dials the Stream Deck application, registers the plugin and
// starts the read and write pumps.
func (c *Client) Connect(ctx context.Context) error {
	u := url.URL{Scheme: "ws", Host: c.opts.Host + ":" + strconv.Itoa(c.opts.Port)}

	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	conn, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("dialing stream deck at %s: %w", u.String(), err)
	}

	reg, err := json.Marshal(registration{Event: c.opts.RegisterEvent, UUID: c.opts.PluginUUID})
	if err != nil {
		conn.Close() //nolint:errcheck // Error path cleanup
		return fmt.Errorf("encoding registration: %w", err)
	}
	//nolint:errcheck // Best-effort deadline; write error caught below
	conn.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, reg); err != nil {
		conn.Close() //nolint:errcheck // Error path cleanup
		return fmt.Errorf("registering plugin: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.send = make(chan []byte, c.opts.SendBufferSize)
	send := c.send
	c.mu.Unlock()

	c.logger.Info("registered with stream deck", "port", c.opts.Port, "plugin", c.opts.PluginUUID)

	go c.writePump(conn, send)
	go c.readPump(conn)

	return nil
}

// Done is closed when the Stream Deck socket closes. The application closes
// it to stop the plugin.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Close closes the socket.
func (c *Client) Close() error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()
	if conn == nil {
		return nil
	}
	return conn.Close()
}

// Connected reports whether the socket is open.
func (c *Client) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn != nil && !c.closed
}

// SetTitle implements surface.Renderer.
func (c *Client) SetTitle(slot surface.SlotID, text string) error {
	return c.enqueue(command{
		Event:   eventSetTitle,
		Context: string(slot),
		Payload: titlePayload{Title: text, Target: targetBoth},
	})
}

// SetImage implements surface.Renderer. surface.NoImage restores the
// action's manifest image.
func (c *Client) SetImage(slot surface.SlotID, image string) error {
	return c.enqueue(command{
		Event:   eventSetImage,
		Context: string(slot),
		Payload: imagePayload{Image: image, Target: targetBoth},
	})
}

// ActivateProfile implements profile.Activator.
func (c *Client) ActivateProfile(_ context.Context, device, name string) error {
	return c.enqueue(command{
		Event:   eventSwitchToProfile,
		Context: c.opts.PluginUUID,
		Device:  device,
		Payload: profilePayload{Profile: name},
	})
}

// ActivateDefaultProfile implements profile.Activator. An empty profile
// name returns the device to its previous profile.
func (c *Client) ActivateDefaultProfile(_ context.Context, device string) error {
	return c.enqueue(command{
		Event:   eventSwitchToProfile,
		Context: c.opts.PluginUUID,
		Device:  device,
		Payload: profilePayload{},
	})
}

// enqueue serialises cmd and queues it without blocking.
func (c *Client) enqueue(cmd command) error {
	data, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", cmd.Event, err)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.send == nil || c.closed {
		return ErrNotConnected
	}

	select {
	case c.send <- data:
		return nil
	default:
		c.logger.Warn("stream deck send buffer full", "event", cmd.Event, "context", cmd.Context)
		return ErrSendBufferFull
	}
}

// shutdown marks the client closed and releases the writer. Only the first
// call closes the send channel.
func (c *Client) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.send != nil {
		close(c.send)
	}
	close(c.done)
}

func (c *Client) readPump(conn *websocket.Conn) {
	defer func() {
		c.shutdown()
		conn.Close() //nolint:errcheck // Socket already failed or closing
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("stream deck read error", "error", err)
			} else {
				c.logger.Info("stream deck connection closed")
			}
			return
		}

		ev, err := DecodeEvent(data)
		if err != nil {
			c.logger.Warn("stream deck event dropped", "error", err)
			continue
		}
		c.logger.Debug("stream deck event", "event", ev.Event, "action", ev.Action, "context", ev.Context)

		if c.handler == nil || c.opts.Dispatcher == nil {
			continue
		}
		c.opts.Dispatcher.Post(func() { c.handler(ev) })
	}
}

func (c *Client) writePump(conn *websocket.Conn, send <-chan []byte) {
	defer conn.Close() //nolint:errcheck // Unblocks readPump on write failure

	for message := range send {
		//nolint:errcheck // Best-effort deadline; write error caught below
		conn.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			c.logger.Warn("stream deck write failed", "error", err)
			return
		}
	}
	//nolint:errcheck // Best-effort close message
	conn.WriteMessage(websocket.CloseMessage, nil)
}
