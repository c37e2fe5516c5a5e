package subscription

import "errors"

// ErrInvalidLadder is returned when a ladder configuration fails to parse or validate.
var ErrInvalidLadder = errors.New("subscription: invalid interval ladder")
