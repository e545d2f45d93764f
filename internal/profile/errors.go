package profile

import "errors"

// Domain errors for profile switching.
var (
	// ErrNoDevice is returned when a connect-edge arrives before any
	// Stream Deck device identity is known. The transition is refused.
	ErrNoDevice = errors.New("profile: no device identity")

	// ErrActivationFailed wraps a failed call to the profile collaborator.
	ErrActivationFailed = errors.New("profile: activation failed")
)
