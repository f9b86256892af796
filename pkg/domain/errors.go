package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session key cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrInvalidForm is returned when a form definition is malformed.
var ErrInvalidForm = errors.New("invalid form")

// ErrSinkUnavailable is returned when a sink was never initialized.
var ErrSinkUnavailable = errors.New("sink unavailable")

// SinkFailure wraps a per-call delivery error of a sink.
type SinkFailure struct {
	Sink  string
	Cause error
}

func (e *SinkFailure) Error() string {
	return fmt.Sprintf("%s delivery failed: %v", e.Sink, e.Cause)
}

func (e *SinkFailure) Unwrap() error {
	return e.Cause
}
