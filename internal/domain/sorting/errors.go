package sorting

import "errors"

// ErrSubmissionInFlight is returned by Form.Submit while an earlier submit is still running.
var ErrSubmissionInFlight = errors.New("sorting: submission already in flight")

// ValidationError is a field-scoped input problem found before anything is persisted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Message: msg}
}

// PersistenceError wraps a repository failure. The message is the repository's own.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string { return e.Err.Error() }

func (e *PersistenceError) Unwrap() error { return e.Err }
