package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure surfaced by a service wraps exactly one of these,
// so callers branch with errors.Is instead of matching messages.
var (
	// ErrNotFound is returned when a requested resource is not found
	ErrNotFound = errors.New("resource not found")
	// ErrAlreadyExists is returned when trying to create a resource that already exists
	ErrAlreadyExists = errors.New("resource already exists")
	// ErrValidation is returned when input validation fails
	ErrValidation = errors.New("validation error")
	// ErrUnauthorized is returned when a user is not authorized to perform an action
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is returned when a user is not allowed to perform an action
	ErrForbidden = errors.New("forbidden")
	// ErrInsufficientFunds is returned when a balance cannot cover a debit
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrLimitExceeded is returned when a transfer would break a rolling transfer cap
	ErrLimitExceeded = errors.New("transfer limit exceeded")
	// ErrInvalidStateTransition is returned when a state machine refuses a move
	ErrInvalidStateTransition = errors.New("invalid state transition")
	// ErrInconsistentState marks data that should exist but does not
	ErrInconsistentState = errors.New("inconsistent state")
)

var kinds = []error{
	ErrNotFound,
	ErrAlreadyExists,
	ErrValidation,
	ErrUnauthorized,
	ErrForbidden,
	ErrInsufficientFunds,
	ErrLimitExceeded,
	ErrInvalidStateTransition,
	ErrInconsistentState,
}

// Error carries a human readable message together with its kind.
type Error struct {
	Kind error
	Msg  string
}

// NewError creates an error of the given kind.
func NewError(kind error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Errorf creates an error of the given kind with a formatted message.
func Errorf(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	if e.Msg == "" && e.Kind != nil {
		return e.Kind.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Kind }

// KindOf returns the kind wrapped by err, or nil when err carries none.
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// WhenNotFound swaps a NotFound err for replacement and passes anything else through.
func WhenNotFound(err, replacement error) error {
	if errors.Is(err, ErrNotFound) {
		return replacement
	}
	return err
}

// WhenAlreadyExists swaps an AlreadyExists err for replacement and passes anything else through.
func WhenAlreadyExists(err, replacement error) error {
	if errors.Is(err, ErrAlreadyExists) {
		return replacement
	}
	return err
}
