package services

import (
	"errors"
	"fmt"

	"blogd/store"
)

// Error kinds surfaced to callers. Concrete errors wrap one of these, so
// callers classify with errors.Is.
var (
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrAuth         = errors.New("invalid email or password")
	ErrNotFound     = errors.New("not found")
	ErrInvalidID    = errors.New("invalid id format")
	ErrUpdateFailed = errors.New("operation failed")
)

// Error pairs a kind with the message shown to the client.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// translate maps store sentinels onto the service error kinds. Errors it
// does not recognize pass through unchanged.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrInvalidID):
		return newError(ErrInvalidID, "Invalid user ID format")
	case errors.Is(err, store.ErrUserNotFound):
		return newError(ErrNotFound, "User not found")
	case errors.Is(err, store.ErrPostNotFound):
		return newError(ErrNotFound, "Post not found")
	case errors.Is(err, store.ErrCommentNotFound):
		return newError(ErrNotFound, "Comment not found")
	case errors.Is(err, store.ErrDuplicateEmail):
		return newError(ErrConflict, "User already exists")
	case errors.Is(err, store.ErrNotModified):
		return newError(ErrUpdateFailed, "Operation failed")
	default:
		return err
	}
}
