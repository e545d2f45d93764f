package loop

import "errors"

// Domain errors for the event loop.
var (
	// ErrStopped is returned by Call when the loop has exited.
	ErrStopped = errors.New("loop: stopped")
)
