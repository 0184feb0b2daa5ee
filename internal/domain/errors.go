package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotSignedIn     = errors.New("not signed in")
	ErrInvalidSession  = errors.New("invalid session")
	ErrStorageConflict = errors.New("storage conflict")
	ErrUpstream        = errors.New("upstream failure")
	ErrNotFound        = errors.New("not found")
)

// ValidationError reports missing or malformed input. Msg is safe to show to clients.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
