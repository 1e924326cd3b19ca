package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalid marks a validation failure. Wrap it with the reason:
	// fmt.Errorf("%w: title is required", ErrInvalid).
	ErrInvalid = errors.New("invalid request")

	// ErrNotFound marks a missing record.
	ErrNotFound = errors.New("not found")
)

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalid}, args...)...)
}
