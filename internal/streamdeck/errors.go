package streamdeck

import "errors"

// Domain errors for the SDK client.
var (
	// ErrNotConnected is returned by outbound calls before Connect or after
	// the socket has closed.
	ErrNotConnected = errors.New("streamdeck: not connected")

	// ErrSendBufferFull is returned when the outbound queue is full.
	ErrSendBufferFull = errors.New("streamdeck: send buffer full")

	// ErrInvalidInfo is returned when the -info launch argument is not
	// valid JSON.
	ErrInvalidInfo = errors.New("streamdeck: invalid info")
)
