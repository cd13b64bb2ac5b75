package session

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrNoSession          = errors.New("no stored session")
)

// ValidationError reports a missing or malformed login field.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("session: missing or invalid field %q", e.Field)
}

// CorruptSessionError reports a stored session record that could not be
// decoded. The record is removed before this error is returned, so a
// retry starts from a clean state.
type CorruptSessionError struct {
	UserKey string
	Err     error
}

func (e *CorruptSessionError) Error() string {
	return fmt.Sprintf("session: corrupt stored record for %q: %v", e.UserKey, e.Err)
}

func (e *CorruptSessionError) Unwrap() error { return e.Err }
