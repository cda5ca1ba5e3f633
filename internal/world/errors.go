package world

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrDisposed    = errors.New("world disposed")
	ErrOutOfBounds = errors.New("chunk position out of bounds")
)

// safeCall runs fn and converts a panic into an error so one bad chunk cannot
// take down sibling tasks.
func safeCall(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, ErrDisposed)
}
