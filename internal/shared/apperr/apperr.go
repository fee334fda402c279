package apperr

import (
	"errors"
	"fmt"
)

// Sentinel kinds for the service-layer error taxonomy. Services wrap
// them with context via %w; handlers match with errors.Is.
var (
	ErrInvalidTarget = errors.New("invalid target")
	ErrConflict      = errors.New("conflict")
	ErrNotFound      = errors.New("not found")
	ErrUnauthorized  = errors.New("unauthorized")
)

func InvalidTarget(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidTarget, msg)
}

func Conflict(msg string) error {
	return fmt.Errorf("%w: %s", ErrConflict, msg)
}

func NotFound(msg string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, msg)
}

func Unauthorized(msg string) error {
	return fmt.Errorf("%w: %s", ErrUnauthorized, msg)
}
