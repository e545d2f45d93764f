package loop

import (
	"context"
	"sync"
	"time"

	"github.com/nerrad567/ulc-deck/internal/clock"
)

// Logger is the subset of logging.Logger used by the loop.
type Logger interface {
	Error(msg string, args ...any)
}

// Loop serialises closures onto a single goroutine.
//
// Thread Safety:
//   - Post, Call and AfterFunc are safe from any goroutine.
//   - Closures run strictly one at a time on the Run goroutine.
type Loop struct {
	clock clock.Clock

	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	stopped bool
	done    chan struct{}

	logger Logger
}

// New creates a loop whose timers are driven by clk.
func New(clk clock.Clock) *Loop {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Loop{
		clock: clk,
		wake:  make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
}

// SetLogger sets a logger for recovered panics.
func (l *Loop) SetLogger(logger Logger) {
	l.mu.Lock()
	l.logger = logger
	l.mu.Unlock()
}

// Post enqueues fn for execution on the loop. It never blocks, so it is safe
// to call while holding locks that loop closures may also need.
// Closures posted after the loop has stopped are discarded.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Call runs fn on the loop and waits for it to finish.
// It must not be called from the loop goroutine itself.
//
// Returns:
//   - error: ctx.Err() if ctx ends first, ErrStopped if the loop exited
func (l *Loop) Call(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	l.Post(func() {
		defer close(finished)
		fn()
	})

	select {
	case <-finished:
		return nil
	case <-l.done:
		select {
		case <-finished:
			return nil
		default:
			return ErrStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes posted closures until ctx is cancelled.
// Closures still queued at cancellation are dropped.
func (l *Loop) Run(ctx context.Context) {
	defer func() {
		l.mu.Lock()
		l.stopped = true
		l.queue = nil
		l.mu.Unlock()
		close(l.done)
	}()

	for {
		l.mu.Lock()
		batch := l.queue
		l.queue = nil
		l.mu.Unlock()

		for _, fn := range batch {
			if ctx.Err() != nil {
				return
			}
			l.run(fn)
		}

		if len(batch) > 0 {
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-l.wake:
		}
	}
}

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// run executes a single closure, isolating panics so one bad handler
// cannot take the surface down.
func (l *Loop) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.mu.Lock()
			logger := l.logger
			l.mu.Unlock()
			if logger != nil {
				logger.Error("panic recovered in event loop", "error", r)
			}
		}
	}()
	fn()
}

// Now returns the loop clock's current time.
func (l *Loop) Now() time.Time {
	return l.clock.Now()
}

// AfterFunc schedules fn to run on the loop after d.
// The returned handle must only be stopped from the loop goroutine.
func (l *Loop) AfterFunc(d time.Duration, fn func()) clock.Timer {
	t := &timer{}
	t.inner = l.clock.AfterFunc(d, func() {
		l.Post(func() {
			if t.cancelled || t.fired {
				return
			}
			t.fired = true
			fn()
		})
	})
	return t
}

// timer is a loop-owned handle. Its flags are only read and written on the
// loop goroutine.
type timer struct {
	inner     clock.Timer
	cancelled bool
	fired     bool
}

// Stop cancels the callback, including one already queued on the loop.
func (t *timer) Stop() bool {
	if t.cancelled || t.fired {
		return false
	}
	t.cancelled = true
	t.inner.Stop()
	return true
}
