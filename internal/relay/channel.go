package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/nerrad567/ulc-deck/internal/infrastructure/config"
	"github.com/nerrad567/ulc-deck/internal/infrastructure/logging"
	"github.com/nerrad567/ulc-deck/internal/protocol"
)

const (
	// sendBufferSize is the per-client outbound message buffer size.
	sendBufferSize = 256

	// readHeaderTimeout bounds the HTTP upgrade handshake.
	readHeaderTimeout = 10 * time.Second
)

// Dispatcher runs handler callbacks on the event loop. Post must not block.
type Dispatcher interface {
	Post(fn func())
}

// Handlers are invoked through the Dispatcher. Nil handlers are skipped.
type Handlers struct {
	OnMessage        func(msg protocol.Message)
	OnConnectEdge    func()
	OnDisconnectEdge func()
}

// Options configures a Channel.
type Options struct {
	// Name identifies the channel in logs and status ("ulc", "lvc").
	Name string

	// Config holds the listen address and keepalive settings.
	Config config.ChannelConfig

	// Decode parses inbound frames.
	Decode protocol.Decoder

	// Dispatcher receives every handler call.
	Dispatcher Dispatcher

	// Logger is the channel's logger. Nil uses logging.Default().
	Logger *logging.Logger
}

// Status is a point-in-time view of a channel.
type Status struct {
	Name      string `json:"name"`
	Address   string `json:"address"`
	Listening bool   `json:"listening"`
	Clients   int    `json:"clients"`
	Received  uint64 `json:"received"`
	Dropped   uint64 `json:"dropped"`
	Sent      uint64 `json:"sent"`
	LastError string `json:"last_error,omitempty"`
}

// Channel is one relay listener and its connection set.
type Channel struct {
	name     string
	cfg      config.ChannelConfig
	decode   protocol.Decoder
	dispatch Dispatcher
	handlers Handlers
	logger   *logging.Logger
	upgrader websocket.Upgrader

	mu        sync.RWMutex
	clients   map[*client]struct{}
	listener  net.Listener
	server    *http.Server
	started   bool
	listening bool
	lastErr   error

	received atomic.Uint64
	dropped  atomic.Uint64
	sent     atomic.Uint64
}

// client is one accepted socket.
type client struct {
	id     string
	remote string
	conn   *websocket.Conn
	send   chan []byte
}

// New creates a Channel. It does not listen until Start is called.
func New(opts Options, handlers Handlers) *Channel {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Channel{
		name:     opts.Name,
		cfg:      opts.Config,
		decode:   opts.Decode,
		dispatch: opts.Dispatcher,
		handlers: handlers,
		logger:   logger.With("component", "relay", "channel", opts.Name),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(_ *http.Request) bool {
				// Controllers run in embedded browsers with arbitrary origins.
				return true
			},
		},
		clients: make(map[*client]struct{}),
	}
}

// Name returns the channel name.
func (c *Channel) Name() string {
	return c.name
}

// Start binds the listener and serves in the background until ctx is
// cancelled or Close is called.
//
// A bind failure is logged and returned; the caller decides whether to
// continue without this channel.
func (c *Channel) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}

	addr := c.cfg.Address()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		c.lastErr = err
		c.mu.Unlock()
		c.logger.Error("relay listen failed", "addr", addr, "error", err)
		return fmt.Errorf("%w: %s: %w", ErrListen, addr, err)
	}

	router := chi.NewRouter()
	router.HandleFunc("/*", c.handleUpgrade)

	c.listener = ln
	c.server = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	c.started = true
	c.listening = true
	server := c.server
	c.mu.Unlock()

	c.logger.Info("relay listening", "addr", ln.Addr().String())

	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.logger.Error("relay listener stopped", "error", err)
			c.mu.Lock()
			c.lastErr = err
			c.listening = false
			c.mu.Unlock()
		}
	}()

	go func() {
		<-ctx.Done()
		c.Close() //nolint:errcheck // Shutdown path; errors logged in Close
	}()

	return nil
}

// Addr returns the bound listen address, or "" before Start.
func (c *Channel) Addr() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.listener == nil {
		return ""
	}
	return c.listener.Addr().String()
}

// Close stops the listener and closes every client socket. Each closed
// socket unregisters through its read pump, so the disconnect edge still
// fires once.
func (c *Channel) Close() error {
	c.mu.Lock()
	server := c.server
	c.server = nil
	c.started = false
	c.listening = false
	conns := make([]*websocket.Conn, 0, len(c.clients))
	for cl := range c.clients {
		conns = append(conns, cl.conn)
	}
	c.mu.Unlock()

	if server == nil {
		return nil
	}

	err := server.Close()
	for _, conn := range conns {
		conn.Close() //nolint:errcheck // Best-effort close during shutdown
	}
	c.logger.Info("relay closed", "clients", len(conns))
	return err
}

// Broadcast serialises msg once and queues it to every open connection.
// Connections whose buffer is full are skipped. It returns the number of
// connections the message was queued to.
func (c *Channel) Broadcast(msg any) (int, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrEncode, err)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	n := 0
	for cl := range c.clients {
		if c.trySend(cl, data) {
			n++
		}
	}
	if n == 0 {
		c.logger.Debug("broadcast with no connected clients")
	}
	return n, nil
}

// trySend queues data without blocking. Caller holds c.mu (read).
func (c *Channel) trySend(cl *client, data []byte) bool {
	select {
	case cl.send <- data:
		c.sent.Add(1)
		return true
	default:
		c.logger.Warn("client send buffer full, message dropped", "client", cl.id)
		return false
	}
}

// ClientCount returns the number of open connections.
func (c *Channel) ClientCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.clients)
}

// Status returns a snapshot of the channel.
func (c *Channel) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	st := Status{
		Name:      c.name,
		Address:   c.cfg.Address(),
		Listening: c.listening,
		Clients:   len(c.clients),
		Received:  c.received.Load(),
		Dropped:   c.dropped.Load(),
		Sent:      c.sent.Load(),
	}
	if c.listener != nil {
		st.Address = c.listener.Addr().String()
	}
	if c.lastErr != nil {
		st.LastError = c.lastErr.Error()
	}
	return st
}

// handleUpgrade accepts a controller connection.
func (c *Channel) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	cl := &client{
		id:     uuid.NewString()[:8],
		remote: r.RemoteAddr,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
	}

	c.register(cl)

	go c.writePump(cl)
	go c.readPump(cl)
}

// register adds a client and posts the connect edge when the set was empty.
// The edge is posted under the lock so edges reach the loop in set order.
func (c *Channel) register(cl *client) {
	c.mu.Lock()
	wasEmpty := len(c.clients) == 0
	c.clients[cl] = struct{}{}
	count := len(c.clients)
	if wasEmpty {
		c.post(c.handlers.OnConnectEdge)
	}
	c.mu.Unlock()

	c.logger.Info("controller connected", "client", cl.id, "remote", cl.remote, "clients", count)
}

// unregister removes a client and posts the disconnect edge when the set
// becomes empty. Only the call that removes the client closes its send
// channel.
func (c *Channel) unregister(cl *client) {
	c.mu.Lock()
	_, existed := c.clients[cl]
	delete(c.clients, cl)
	count := len(c.clients)
	if existed {
		close(cl.send)
		if count == 0 {
			c.post(c.handlers.OnDisconnectEdge)
		}
	}
	c.mu.Unlock()

	if existed {
		c.logger.Info("controller disconnected", "client", cl.id, "clients", count)
	}
}

func (c *Channel) post(fn func()) {
	if fn == nil || c.dispatch == nil {
		return
	}
	c.dispatch.Post(fn)
}

// readPump reads frames until the socket fails, then unregisters.
func (c *Channel) readPump(cl *client) {
	defer func() {
		c.unregister(cl)
		cl.conn.Close() //nolint:errcheck // Socket already failed or closing
	}()

	pingInterval := time.Duration(c.cfg.PingInterval) * time.Second
	pongWait := time.Duration(c.cfg.PongTimeout) * time.Second
	if c.cfg.MaxMessageSize > 0 {
		cl.conn.SetReadLimit(int64(c.cfg.MaxMessageSize))
	}
	if pingInterval > 0 {
		//nolint:errcheck // Best-effort deadline on connection setup
		cl.conn.SetReadDeadline(time.Now().Add(pingInterval + pongWait))
		cl.conn.SetPongHandler(func(string) error {
			return cl.conn.SetReadDeadline(time.Now().Add(pingInterval + pongWait))
		})
	}

	for {
		_, data, err := cl.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("controller read error", "client", cl.id, "error", err)
			} else {
				c.logger.Debug("controller socket closed", "client", cl.id, "error", err)
			}
			return
		}
		if pingInterval > 0 {
			//nolint:errcheck // Best-effort deadline reset
			cl.conn.SetReadDeadline(time.Now().Add(pingInterval + pongWait))
		}

		c.received.Add(1)
		c.handleFrame(cl, data)
	}
}

// handleFrame decodes one frame and posts it to the loop. Bad frames are
// logged and dropped; the connection stays open.
func (c *Channel) handleFrame(cl *client, data []byte) {
	if c.decode == nil {
		return
	}
	msg, err := c.decode(data)
	if err != nil {
		c.dropped.Add(1)
		c.logger.Warn("controller message dropped", "client", cl.id, "bytes", len(data), "error", err)
		return
	}
	if c.handlers.OnMessage == nil {
		return
	}
	c.post(func() { c.handlers.OnMessage(msg) })
}

// writePump writes queued frames and keepalive pings.
func (c *Channel) writePump(cl *client) {
	pingInterval := time.Duration(c.cfg.PingInterval) * time.Second
	writeWait := time.Duration(c.cfg.PongTimeout) * time.Second
	if writeWait <= 0 {
		writeWait = 10 * time.Second
	}

	var tick <-chan time.Time
	if pingInterval > 0 {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		tick = ticker.C
	}
	defer cl.conn.Close() //nolint:errcheck // Unblocks readPump on write failure

	for {
		select {
		case message, ok := <-cl.send:
			if !ok {
				//nolint:errcheck // Best-effort close message
				cl.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			//nolint:errcheck // Best-effort deadline; write error caught below
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Debug("controller write failed", "client", cl.id, "error", err)
				return
			}
		case <-tick:
			//nolint:errcheck // Best-effort deadline; ping error caught below
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
