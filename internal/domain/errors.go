package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotConnected means no database pool is available.
	ErrNotConnected = errors.New("database is not connected")
	// ErrUnsupportedReport is returned for report keys outside the registry.
	ErrUnsupportedReport = errors.New("unsupported report")
	// ErrUnauthorized is returned for failed logins and missing or bad tokens.
	ErrUnauthorized = errors.New("unauthorized")
)

// ConfigurationMissingError lists required settings that were not provided.
type ConfigurationMissingError struct {
	Keys []string
}

func (e *ConfigurationMissingError) Error() string {
	return "missing configuration: " + strings.Join(e.Keys, ", ")
}

// ConnectionFailureError wraps a failure to open or ping the pool.
type ConnectionFailureError struct {
	Err error
}

func (e *ConnectionFailureError) Error() string {
	return fmt.Sprintf("database connection failed: %v", e.Err)
}

func (e *ConnectionFailureError) Unwrap() error { return e.Err }

// ValidationError is a bad or missing request field.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error { return e.Err }

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ProcedureExecutionError is raised when the database rejects a call.
// Details carries the driver message.
type ProcedureExecutionError struct {
	Message string
	Details string
	Err     error
}

func (e *ProcedureExecutionError) Error() string {
	if e.Details == "" {
		return e.Message
	}
	return e.Message + ": " + e.Details
}

func (e *ProcedureExecutionError) Unwrap() error { return e.Err }

// ExportError is reported when an export cannot be produced.
type ExportError struct {
	Message string
	Err     error
}

func (e *ExportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExportError) Unwrap() error { return e.Err }
