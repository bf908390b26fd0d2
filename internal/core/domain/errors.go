package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates the backend does not support the operation
	// for this record (e.g. history of an unsupported account type).
	ErrNotImplemented = errors.New("not implemented")

	// ErrUnsupportedType indicates an unknown driver type.
	ErrUnsupportedType = errors.New("unsupported type")

	// Module Errors.

	// ErrUnknownModule indicates the source module cannot be resolved or installed.
	ErrUnknownModule = errors.New("unknown module")

	// ErrRepositoryUnavailable indicates the module repository could not be read.
	ErrRepositoryUnavailable = errors.New("module repository unavailable")

	// Authentication Errors.

	// ErrIncorrectPassword indicates the source rejected the credentials.
	ErrIncorrectPassword = errors.New("incorrect password")

	// ErrPasswordExpired indicates the source rejected the credentials because they expired.
	ErrPasswordExpired = errors.New("password expired")

	// Data Errors.

	// ErrNoAccounts indicates no account exists for these credentials.
	ErrNoAccounts = errors.New("no accounts")
)

// ConfigError reports an invalid session configuration, such as a missing
// or malformed custom field. Detail is shown to the user as is.
type ConfigError struct {
	Field  string
	Detail string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return "invalid configuration: " + e.Detail
	}
	return fmt.Sprintf("invalid configuration for %q: %s", e.Field, e.Detail)
}

// NewConfigError creates a ConfigError for the given field.
func NewConfigError(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Detail: fmt.Sprintf(format, args...)}
}

// IsConfigError reports whether err carries a ConfigError and returns it.
func IsConfigError(err error) (*ConfigError, bool) {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// BackendPanic is produced when a backend panics while being driven.
// The stack is the one of the panicking goroutine.
type BackendPanic struct {
	Module string
	Value  any
	Stack  []byte
}

func (e *BackendPanic) Error() string {
	return fmt.Sprintf("backend %s panicked: %v", e.Module, e.Value)
}
