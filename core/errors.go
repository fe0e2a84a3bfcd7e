package core

import (
	"errors"
)

var (
	// ErrDuplicateParameter is returned when a parameter name is added twice
	// to the same executor.
	ErrDuplicateParameter = errors.New("duplicate parameter")
	// ErrExecution wraps an underlying execution or connection-open fault
	// when no error handlers are registered.
	ErrExecution = errors.New("command execution failed")
	// ErrNoReturnValue is returned when reading a return value and no stored
	// procedure return-value parameter was ever created.
	ErrNoReturnValue = errors.New("no return value parameter")
	// ErrMissingOutputParameter is returned when reading an output parameter
	// that was never declared.
	ErrMissingOutputParameter = errors.New("output parameter not declared")
	// ErrDuplicateKey is returned by vertical dictionary materialization when
	// a key column value repeats.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrNoCommand is returned when executing before any command was created.
	ErrNoCommand = errors.New("no command created")
	// ErrNoRows is returned when a single-row read finds no rows.
	ErrNoRows = errors.New("no rows in result set")
)

// bypassError marks errors that must surface to the caller even when error
// handlers are registered: materialization and conversion failures are caller
// bugs or data-shape violations, not database faults, and are never subject
// to the suppress policy.
type bypassError struct {
	err error
}

func (b bypassError) Error() string {
	return b.err.Error()
}

func (b bypassError) Unwrap() error {
	return b.err
}

func bypass(err error) error {
	return bypassError{err: err}
}
