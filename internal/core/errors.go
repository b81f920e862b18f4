package core

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidImage is returned when the captured image cannot be decoded
	ErrInvalidImage = errors.New("image could not be decoded")

	// ErrNoResult is returned when the vision provider yields zero candidate labels
	ErrNoResult = errors.New("vision provider returned no candidate labels")

	// ErrClassificationInFlight is returned when a session already has a
	// classification running
	ErrClassificationInFlight = errors.New("classification already in flight")

	// ErrNoPendingResult is returned when Save is called without a cached
	// classification result
	ErrNoPendingResult = errors.New("no classification result to save")
)

// StoreError wraps a failure from the persistence backing. Callers can
// unwrap it to reach the underlying driver error.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError wraps err as a StoreError for the named operation
func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}
