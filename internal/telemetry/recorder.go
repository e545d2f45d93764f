package telemetry

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nerrad567/ulc-deck/internal/infrastructure/logging"
)

const (
	// DefaultBufferSize is used for non-positive buffer sizes.
	DefaultBufferSize = 512

	// sinkTimeout bounds a single sink write.
	sinkTimeout = 5 * time.Second
)

// Sink receives every recorded event on the worker goroutine.
type Sink interface {
	Name() string
	Write(ctx context.Context, ev Event) error
}

// Recorder buffers events and delivers them to its sinks.
type Recorder struct {
	events chan Event
	sinks  []Sink
	logger *logging.Logger

	dropped   atomic.Uint64
	delivered atomic.Uint64
	failed    atomic.Uint64

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	wg      sync.WaitGroup
}

// NewRecorder returns a Recorder. With no sinks Record is a no-op.
func NewRecorder(bufferSize int, logger *logging.Logger, sinks ...Sink) *Recorder {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Recorder{
		events: make(chan Event, bufferSize),
		sinks:  sinks,
		logger: logger.With("component", "telemetry"),
	}
}

// Enabled reports whether any sink is configured.
func (r *Recorder) Enabled() bool {
	return r != nil && len(r.sinks) > 0
}

// Record enqueues ev without blocking. Safe on a nil Recorder.
func (r *Recorder) Record(ev Event) {
	if !r.Enabled() {
		return
	}
	select {
	case r.events <- ev:
	default:
		if n := r.dropped.Add(1); n == 1 || n%100 == 0 {
			r.logger.Warn("telemetry buffer full, dropping event",
				"kind", string(ev.Kind), "channel", ev.Channel, "dropped_total", n)
		}
	}
}

// Start launches the worker. It stops when ctx is cancelled or Stop is
// called, after draining what is already buffered.
func (r *Recorder) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running || !r.Enabled() {
		return
	}
	r.running = true
	r.stop = make(chan struct{})

	r.wg.Add(1)
	go r.run(ctx, r.stop)
}

// Stop halts the worker and waits for it to drain.
func (r *Recorder) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	close(r.stop)
	r.mu.Unlock()

	r.wg.Wait()
}

func (r *Recorder) run(ctx context.Context, stop <-chan struct{}) {
	defer r.wg.Done()
	for {
		select {
		case ev := <-r.events:
			r.deliver(ev)
		case <-ctx.Done():
			r.drain()
			return
		case <-stop:
			r.drain()
			return
		}
	}
}

func (r *Recorder) drain() {
	for {
		select {
		case ev := <-r.events:
			r.deliver(ev)
		default:
			return
		}
	}
}

func (r *Recorder) deliver(ev Event) {
	for _, sink := range r.sinks {
		ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
		err := sink.Write(ctx, ev)
		cancel()
		if err != nil {
			r.failed.Add(1)
			r.logger.Warn("telemetry sink write failed",
				"sink", sink.Name(), "kind", string(ev.Kind), "error", err)
			continue
		}
	}
	r.delivered.Add(1)
}

// Stats is a snapshot of the recorder counters.
type Stats struct {
	Sinks     []string `json:"sinks"`
	Buffered  int      `json:"buffered"`
	Delivered uint64   `json:"delivered"`
	Dropped   uint64   `json:"dropped"`
	Failed    uint64   `json:"failed"`
}

// Stats returns the current counters. Safe on a nil Recorder.
func (r *Recorder) Stats() Stats {
	if r == nil {
		return Stats{Sinks: []string{}}
	}
	names := make([]string, 0, len(r.sinks))
	for _, s := range r.sinks {
		names = append(names, s.Name())
	}
	return Stats{
		Sinks:     names,
		Buffered:  len(r.events),
		Delivered: r.delivered.Load(),
		Dropped:   r.dropped.Load(),
		Failed:    r.failed.Load(),
	}
}
