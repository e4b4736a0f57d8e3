package models

import (
	"errors"
	"fmt"
)

// Custom errors
var (
	ErrNotFound       = errors.New("record not found")
	ErrMissingStats   = errors.New("no historical stats for competitor")
	ErrInvalidRequest = errors.New("invalid simulation request")
	ErrComputation    = errors.New("simulation computation failed")
)

// InvalidRequestError is returned when a simulation request is rejected before
// any run is executed.
type InvalidRequestError struct {
	Field  string
	Reason string
}

// NewInvalidRequestError creates a new invalid request error
func NewInvalidRequestError(field, reason string) *InvalidRequestError {
	return &InvalidRequestError{Field: field, Reason: reason}
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid request: %s: %s", e.Field, e.Reason)
}

// Unwrap allows errors.Is(err, ErrInvalidRequest)
func (e *InvalidRequestError) Unwrap() error {
	return ErrInvalidRequest
}

// ComputationError reports a non-finite strength or score produced during a run.
type ComputationError struct {
	CompetitorID string
	Run          int
	Stage        string
	Value        float64
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("computation error in run %d (%s): competitor %q produced non-finite value %v",
		e.Run, e.Stage, e.CompetitorID, e.Value)
}

// Unwrap allows errors.Is(err, ErrComputation)
func (e *ComputationError) Unwrap() error {
	return ErrComputation
}
