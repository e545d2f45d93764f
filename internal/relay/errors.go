package relay

import "errors"

// Domain errors for relay channels.
var (
	// ErrListen is returned when the channel cannot bind its listener.
	ErrListen = errors.New("relay: listen failed")

	// ErrAlreadyStarted is returned by a second call to Start.
	ErrAlreadyStarted = errors.New("relay: already started")

	// ErrEncode is returned when an outbound message cannot be serialised.
	ErrEncode = errors.New("relay: encode failed")
)
