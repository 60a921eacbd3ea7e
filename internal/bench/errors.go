package bench

import (
	"errors"
	"fmt"
)

// Failure kinds. Every kind aborts the whole run.
var (
	ErrSetup     = errors.New("setup failure")     // socket, connect, I/O or result file
	ErrSync      = errors.New("sync failure")      // barrier broken
	ErrIntegrity = errors.New("integrity failure") // echo differs from the probe
	ErrSpawn     = errors.New("spawn failure")     // worker could not be started
)

// WorkerError is the failure of a single worker. It matches both its kind
// and its cause with errors.Is.
type WorkerError struct {
	WorkerID uint64
	Round    uint
	Kind     error
	Err      error
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("worker %d (round %d): %v: %v", e.WorkerID, e.Round, e.Kind, e.Err)
}

func (e *WorkerError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// Reason returns a short label for the failure kind of err.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrIntegrity):
		return "integrity"
	case errors.Is(err, ErrSync):
		return "sync"
	case errors.Is(err, ErrSpawn):
		return "spawn"
	case errors.Is(err, ErrSetup):
		return "setup"
	default:
		return "unknown"
	}
}
