package apperr

import "errors"

// ErrInvalid is returned when the input fails domain validation.
var ErrInvalid = errors.New("invalid input")

// ErrConflict indicates a uniqueness or state conflict (HTTP 409).
var ErrConflict = errors.New("conflict")

// ErrNotFound indicates that the requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrTooLate is returned for an acceptance that arrives when no wait is pending
// for the (order, partner) pair, e.g. after timeout or after another partner won.
var ErrTooLate = errors.New("too late")
