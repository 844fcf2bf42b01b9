// SPDX-License-Identifier: MIT

// Package validate provides the startup validation error taxonomy for snippets.
package validate

import (
	"errors"
	"fmt"
	"strings"
)

// Reason classifies why a configuration key was rejected.
type Reason string

const (
	ReasonMissingRequired  Reason = "missing-required"
	ReasonFailedValidation Reason = "failed-predicate"
)

var (
	// ErrMissingRequiredKey matches any Error with ReasonMissingRequired.
	ErrMissingRequiredKey = errors.New("missing required key")
	// ErrFailedValidation matches any Error with ReasonFailedValidation.
	ErrFailedValidation = errors.New("failed validation")
)

// Error is a single rejected configuration key.
type Error struct {
	Key     string // Environment key (e.g. "DB_HOST")
	Reason  Reason
	Message string // optional predicate detail, never contains secret values
}

// Error implements the error interface
func (e Error) Error() string {
	switch e.Reason {
	case ReasonMissingRequired:
		return fmt.Sprintf("Environment variable %s is required", e.Key)
	default:
		if e.Message == "" {
			return fmt.Sprintf("Environment variable %s failed validation", e.Key)
		}
		return fmt.Sprintf("Environment variable %s failed validation: %s", e.Key, e.Message)
	}
}

// Unwrap exposes the reason sentinel so errors.Is works on single errors.
func (e Error) Unwrap() error {
	if e.Reason == ReasonMissingRequired {
		return ErrMissingRequiredKey
	}
	return ErrFailedValidation
}

// Validator accumulates validation errors in the order they are reported.
type Validator struct {
	errors []Error
}

// ValidationError bundles multiple validation errors into a single error value.
type ValidationError struct {
	errors []Error
}

// New creates a new validator
func New() *Validator {
	return &Validator{
		errors: make([]Error, 0),
	}
}

// Missing records a required key that is absent.
func (v *Validator) Missing(key string) {
	v.errors = append(v.errors, Error{Key: key, Reason: ReasonMissingRequired})
}

// Failed records a present value rejected by its predicate.
func (v *Validator) Failed(key, message string) {
	v.errors = append(v.errors, Error{Key: key, Reason: ReasonFailedValidation, Message: message})
}

// IsValid returns true if no errors have been accumulated
func (v *Validator) IsValid() bool {
	return len(v.errors) == 0
}

// Errors returns all accumulated validation errors
func (v *Validator) Errors() []Error {
	return v.errors
}

// Err converts the accumulated validation errors into an error value.
func (v *Validator) Err() error {
	if len(v.errors) == 0 {
		return nil
	}

	copied := make([]Error, len(v.errors))
	copy(copied, v.errors)

	return ValidationError{errors: copied}
}

// Errors returns the individual validation errors making up the validation failure.
func (e ValidationError) Errors() []Error {
	out := make([]Error, len(e.errors))
	copy(out, e.errors)
	return out
}

// Keys returns the rejected keys in report order.
func (e ValidationError) Keys() []string {
	keys := make([]string, len(e.errors))
	for i, err := range e.errors {
		keys[i] = err.Key
	}
	return keys
}

// Error implements the error interface for ValidationError.
func (e ValidationError) Error() string {
	if len(e.errors) == 0 {
		return ""
	}

	if len(e.errors) == 1 {
		return e.errors[0].Error()
	}

	msgs := make([]string, len(e.errors))
	for i, err := range e.errors {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Unwrap lets errors.Is and errors.As see every key error.
func (e ValidationError) Unwrap() []error {
	out := make([]error, len(e.errors))
	for i, err := range e.errors {
		out[i] = err
	}
	return out
}
