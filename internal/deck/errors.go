package deck

import "errors"

// ErrInvalidOptions is returned by New when a required collaborator is missing.
var ErrInvalidOptions = errors.New("deck: invalid options")
