// Package errors classifies failures so callers can decide between failing a
// request, skipping one unit of work, or reporting an upstream outage.
package errors

import (
	"errors"
	"fmt"
)

// ErrorType is the failure class carried by an AppError
type ErrorType string

const (
	// ErrorTypeNotFound: a hospital, coordinate or profile does not exist.
	// Usually soft; the affected candidate is dropped.
	ErrorTypeNotFound ErrorType = "NOT_FOUND"

	// ErrorTypeValidation: caller input is malformed or out of range
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeConfiguration: the request names configuration that does not
	// exist, such as an unregistered city. Fatal to the request.
	ErrorTypeConfiguration ErrorType = "CONFIGURATION"

	// ErrorTypeInternal: a local store or encoding failure
	ErrorTypeInternal ErrorType = "INTERNAL"

	// ErrorTypeExternal: a collaborator (data API, geocoder, classifier, Vault) failed
	ErrorTypeExternal ErrorType = "EXTERNAL"
)

// AppError pairs a failure class with a message and optional cause
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Type, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func newError(t ErrorType, message string, cause error) *AppError {
	return &AppError{Type: t, Message: message, Err: cause}
}

func NewNotFoundError(message string) *AppError {
	return newError(ErrorTypeNotFound, message, nil)
}

// NewNotFoundErrorWithCause keeps the reason a lookup came back empty, e.g. a
// caller deadline, while still classifying it as NOT_FOUND.
func NewNotFoundErrorWithCause(message string, cause error) *AppError {
	return newError(ErrorTypeNotFound, message, cause)
}

func NewValidationError(message string) *AppError {
	return newError(ErrorTypeValidation, message, nil)
}

// NewConfigurationError wraps a sentinel so errors.Is still matches it
func NewConfigurationError(message string, sentinel error) *AppError {
	return newError(ErrorTypeConfiguration, message, sentinel)
}

func NewInternalError(message string, cause error) *AppError {
	return newError(ErrorTypeInternal, message, cause)
}

func NewExternalError(message string, cause error) *AppError {
	return newError(ErrorTypeExternal, message, cause)
}

// IsType checks the outermost AppError in the chain only, so a NOT_FOUND that
// wraps an EXTERNAL cause reports as NOT_FOUND.
func IsType(err error, t ErrorType) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == t
}

func IsNotFound(err error) bool {
	return IsType(err, ErrorTypeNotFound)
}
