package logic

import (
	"errors"
	"fmt"
)

var (
	// ErrBadRequest marks input the caller has to fix.
	ErrBadRequest = errors.New("bad request")
	ErrNotFound   = errors.New("not found")
)

// BadRequest wraps err so the error handler answers 400.
func BadRequest(err error) error {
	return fmt.Errorf("%w: %v", ErrBadRequest, err)
}

func badRequestf(format string, args ...any) error {
	return BadRequest(fmt.Errorf(format, args...))
}
