package account

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeAccountNotFound    = "ACCOUNT_NOT_FOUND"
	textCodeAccountPersistence = "ACCOUNT_PERSISTENCE"
	textCodeInvalidTransition  = "INVALID_ACCOUNT_STATE_TRANSITION"
	textCodeTerminalState      = "TERMINAL_ACCOUNT_STATE"
)

// ErrNoEmptyString is returned when a required string input is empty
var ErrNoEmptyString = errors.New("empty string not allowed")

// ErrMismatchedHashAndPassword is returned when a password does not match its hash
var ErrMismatchedHashAndPassword = errors.New("mismatched password and hash")

// ErrAccountNotFound is returned when no account matches a lookup with the
// expected status. Expired reset tokens surface as this same error.
var ErrAccountNotFound = goerrors.New("account not found", goerrors.CategoryNotFound).
	WithTextCode(textCodeAccountNotFound)

// ErrInvalidTransition is returned when a requested status change is not allowed.
var ErrInvalidTransition = goerrors.New("invalid account state transition", goerrors.CategoryValidation).
	WithTextCode(textCodeInvalidTransition).
	WithCode(goerrors.CodeBadRequest)

// ErrTerminalState is returned when attempting to move a deleted account.
var ErrTerminalState = goerrors.New("account state is terminal", goerrors.CategoryConflict).
	WithTextCode(textCodeTerminalState).
	WithCode(goerrors.CodeConflict)

// NewPersistenceError wraps a store write failure. In-memory mutations are
// not rolled back; callers must re-fetch before retrying.
func NewPersistenceError(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist account").
		WithTextCode(textCodeAccountPersistence)
}

// IsNotFound reports whether err represents a missing account.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrAccountNotFound) {
		return true
	}
	return goerrors.IsNotFound(err)
}

// IsPersistenceError reports whether err came from a failed store write.
func IsPersistenceError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == textCodeAccountPersistence
	}
	return false
}
