package placement

import (
	"errors"
	"fmt"
)

// ErrInvalidPlacement is wrapped by every placement configuration error.
var ErrInvalidPlacement = errors.New("invalid placement")

// Error describes a placement that could not be resolved.
type Error struct {
	Input  string
	Reason string
}

func invalid(input, reason string) *Error {
	return &Error{Input: input, Reason: reason}
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid placement %q: %s", e.Input, e.Reason)
}

func (e *Error) Unwrap() error {
	return ErrInvalidPlacement
}
