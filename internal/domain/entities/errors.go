package entities

import (
	"errors"
)

// The five failure classes every operation can surface. Validation and
// scheduling checks run synchronously before any store call; a StoreError is
// the only class that can carry a network failure, and it never clears local
// state so the caller may retry.

// ValidationError reports a missing or malformed required field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return e.Field + " required"
	}
	return e.Field + ": " + e.Reason
}

// SchedulingConflict reports an operation that would violate the lock
// invariant: the proposed slot is already past or started, or the task's
// original slot has locked since editing began.
type SchedulingConflict struct {
	Reason string
}

func (e *SchedulingConflict) Error() string { return e.Reason }

// StateError reports an operation that requires an editing session which does
// not exist or does not match the targeted task.
type StateError struct {
	Reason string
}

func (e *StateError) Error() string { return e.Reason }

// AuthRequiredError reports that no authenticated owner is available.
type AuthRequiredError struct{}

func (e *AuthRequiredError) Error() string { return "not signed in" }

// StoreError wraps a failed call to the persistence layer.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *StoreError) Unwrap() error { return e.Err }

var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrLoginCodeNotFound  = errors.New("login code not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotConfirmed  = errors.New("email not confirmed")
	ErrAccountInactive    = errors.New("account is inactive")
)

// Conflict constructors carry the user-visible text for each lock rejection
// path.
func ErrSlotLocked() error {
	return &SchedulingConflict{Reason: "this time is in the past or already started"}
}

func ErrOriginalLocked() error {
	return &SchedulingConflict{Reason: "this task has already started (or is in the past) and cannot be modified"}
}

func ErrNoTaskSelected() error {
	return &StateError{Reason: "no task selected"}
}

func ErrConfirmationRequired() error {
	return &StateError{Reason: "delete requires confirmation"}
}

// IsConflict reports whether err is any SchedulingConflict.
func IsConflict(err error) bool {
	var sc *SchedulingConflict
	return errors.As(err, &sc)
}

// Storef wraps err as a StoreError with a short operation tag.
func Storef(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}
