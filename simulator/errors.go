package simulator

import (
	"errors"
	"fmt"
)

// ErrorKind decides whether the run loop keeps going after a failed cycle
type ErrorKind int

const (
	// Recoverable errors are logged and the cycle is retried after the error delay
	Recoverable ErrorKind = iota
	// Fatal errors stop the run loop and are returned to the caller
	Fatal
)

func (k ErrorKind) String() string {
	switch k {
	case Recoverable:
		return "recoverable"
	case Fatal:
		return "fatal"
	}
	return "unknown"
}

// CycleError wraps a failure in one generation cycle
type CycleError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CycleError) Unwrap() error {
	return e.Err
}

// classify wraps err as recoverable unless it already carries the fatal kind
func classify(op string, err error) error {
	if IsFatal(err) {
		return err
	}
	return &CycleError{Kind: Recoverable, Op: op, Err: err}
}

// IsFatal reports whether err should stop the run loop. Errors that are not
// a CycleError are treated as recoverable.
func IsFatal(err error) bool {
	var cycleErr *CycleError
	if errors.As(err, &cycleErr) {
		return cycleErr.Kind == Fatal
	}
	return false
}
