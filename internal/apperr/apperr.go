// Package apperr defines the error taxonomy shared by the pricing configuration stores and the engine.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches any *ValidationError via errors.Is.
	ErrValidation = errors.New("validation failed")
	// ErrConfiguration matches any *ConfigurationError via errors.Is.
	ErrConfiguration = errors.New("pricing configuration invalid")
)

// ValidationError is returned when an admin edit would break a store invariant.
// The store the edit targeted is left unchanged.
type ValidationError struct {
	Store  string
	Field  string
	Reason string
}

// Validation builds a ValidationError for the given store field.
func Validation(store, field, format string, args ...any) *ValidationError {
	return &ValidationError{Store: store, Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Store, e.Reason)
	}
	return fmt.Sprintf("%s: %s %s", e.Store, e.Field, e.Reason)
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ConfigurationError signals a store that cannot be used for quoting at all.
// It must be surfaced to an administrator.
type ConfigurationError struct {
	Reason string
}

// Configuration builds a ConfigurationError.
func Configuration(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return "pricing configuration: " + e.Reason
}

// Is reports whether target is ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }
