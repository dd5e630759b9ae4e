package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned when a mutation or transition violates a session invariant,
// for example setting a wheel position when the problem is not a flat tire.
var ErrInvalidTransition = errors.New("invalid transition")

// ErrUnexpectedAnswerForStep is returned when the submitted answer does not match the shape
// expected by the current step.
var ErrUnexpectedAnswerForStep = errors.New("unexpected answer for step")

// ErrInvalidAnswer is returned when an answer has the right shape but an unusable value
// (unknown enum member, empty free text, coordinates out of range).
var ErrInvalidAnswer = errors.New("invalid answer")

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// LocationErrorKind classifies a failed position request.
type LocationErrorKind string

const (
	LocationPermissionDenied LocationErrorKind = "permission_denied"
	LocationUnavailable      LocationErrorKind = "unavailable"
	LocationTimeout          LocationErrorKind = "timeout"
	LocationUnknown          LocationErrorKind = "unknown"
)

// LocationError is returned by a Locator when the current position cannot be obtained.
// It is recoverable: the session falls back to manual address entry.
type LocationError struct {
	Kind LocationErrorKind
	Err  error
}

func (e *LocationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("location %s: %v", e.Kind, e.Err)
	}
	return "location " + string(e.Kind)
}

func (e *LocationError) Unwrap() error { return e.Err }

// NewLocationError builds a LocationError, normalising unknown kinds.
func NewLocationError(kind LocationErrorKind, err error) *LocationError {
	switch kind {
	case LocationPermissionDenied, LocationUnavailable, LocationTimeout:
	default:
		kind = LocationUnknown
	}
	return &LocationError{Kind: kind, Err: err}
}

func invalidTransition(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidTransition, fmt.Sprintf(format, args...))
}

func invalidAnswer(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidAnswer, fmt.Sprintf(format, args...))
}
