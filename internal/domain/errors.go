package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every domain failure matches exactly one of them via errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
)

// Error is a domain failure with a caller-facing message.
type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string { return e.msg }

// Unwrap exposes the kind so errors.Is(err, ErrConflict) and friends work.
func (e *Error) Unwrap() error { return e.kind }

func newError(kind error, msg string) error {
	return &Error{kind: kind, msg: msg}
}

// Validationf builds an ad-hoc validation error.
func Validationf(format string, args ...any) error {
	return newError(ErrValidation, fmt.Sprintf(format, args...))
}

var (
	ErrFutureStart      = newError(ErrValidation, "You can't create future date fast.")
	ErrFutureEnd        = newError(ErrValidation, "You can't end fast with future date.")
	ErrEndBeforeStart   = newError(ErrValidation, "End time can't be before start time.")
	ErrNegativeDuration = newError(ErrValidation, "Planned duration can't be negative.")
	ErrDurationTooLong  = newError(ErrValidation, "Planned duration can't exceed 10000 hours.")
	ErrInvalidUnit      = newError(ErrValidation, "Unit must be \"metric\" or \"imperial\".")
	ErrInvalidWeight    = newError(ErrValidation, "Weight must be greater than 0.")
	ErrFutureWeight     = newError(ErrValidation, "You can't record weight with future date.")

	ErrFastInProgress   = newError(ErrConflict, "Already a fast is in progress")
	ErrNoFastInProgress = newError(ErrConflict, "There is no fast in progress")
	ErrDeleteActiveFast = newError(ErrConflict, "End the fast before deleting it")
	ErrFastChanged      = newError(ErrConflict, "The fast changed while editing it, try again")
	ErrEmailRegistered  = newError(ErrConflict, "Email already registered")

	ErrUserNotFound = newError(ErrNotFound, "User not found")
	ErrFastNotFound = newError(ErrNotFound, "Fast not found")
)
