package protocol

import "errors"

// Domain errors for message decoding.
var (
	// ErrMalformed is returned when a frame is not a JSON object or a known
	// message fails to decode into its variant.
	ErrMalformed = errors.New("protocol: malformed message")

	// ErrUnknownType is returned when the type tag is missing or not part of
	// the channel's message set.
	ErrUnknownType = errors.New("protocol: unknown message type")
)
