package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/nerrad567/ulc-deck/internal/deck"
	"github.com/nerrad567/ulc-deck/internal/infrastructure/config"
	"github.com/nerrad567/ulc-deck/internal/infrastructure/logging"
	"github.com/nerrad567/ulc-deck/internal/journal"
	"github.com/nerrad567/ulc-deck/internal/relay"
	"github.com/nerrad567/ulc-deck/internal/telemetry"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 5 * time.Second

// loopCallTimeout bounds how long a status read waits for the event loop.
const loopCallTimeout = 2 * time.Second

// Caller runs a function on the event loop and waits for it.
// *loop.Loop satisfies it.
type Caller interface {
	Call(ctx context.Context, fn func()) error
}

// DeckSource exposes the orchestrator's status. It is only called through
// Caller.
type DeckSource interface {
	Status() deck.Status
}

// RelaySource reports one relay channel. *relay.Channel satisfies it.
type RelaySource interface {
	Status() relay.Status
}

// TelemetrySource reports fan-out counters. *telemetry.Recorder satisfies it.
type TelemetrySource interface {
	Stats() telemetry.Stats
}

// SurfaceSource reports the Stream Deck connection. *streamdeck.Client
// satisfies it.
type SurfaceSource interface {
	Connected() bool
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config  config.APIConfig
	Logger  *logging.Logger
	Loop    Caller
	Deck    DeckSource
	Relays  []RelaySource
	Surface SurfaceSource // optional

	Telemetry TelemetrySource    // optional
	Journal   journal.Repository // optional; nil serves empty event lists
	Version   string
}

// Server is the HTTP status API.
//
// It is created with New() and started with Start().
type Server struct {
	cfg       config.APIConfig
	logger    *logging.Logger
	loop      Caller
	deck      DeckSource
	relays    []RelaySource
	surface   SurfaceSource
	telemetry TelemetrySource
	journal   journal.Repository
	version   string
	started   time.Time

	server   *http.Server
	listener net.Listener
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Loop == nil || deps.Deck == nil {
		return nil, fmt.Errorf("event loop and deck are required")
	}

	return &Server{
		cfg:       deps.Config,
		logger:    deps.Logger.With("component", "api"),
		loop:      deps.Loop,
		deck:      deps.Deck,
		relays:    deps.Relays,
		surface:   deps.Surface,
		telemetry: deps.Telemetry,
		journal:   deps.Journal,
		version:   deps.Version,
		started:   time.Now(),
	}, nil
}

// Start binds the listener and serves in a background goroutine. Binding
// happens before Start returns so a port conflict is reported to the caller.
func (s *Server) Start(_ context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	s.listener = ln

	s.server = &http.Server{
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	s.logger.Info("status API listening", "address", ln.Addr().String())
	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()
	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Close gracefully shuts down the API server.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}
	return nil
}
