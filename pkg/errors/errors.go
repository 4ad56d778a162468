package errors

import (
	"errors"
	"fmt"
)

// ErrorType defines different categories of errors
type ErrorType string

const (
	ErrorTypeValidation      ErrorType = "VALIDATION"
	ErrorTypeNotFound        ErrorType = "NOT_FOUND"
	ErrorTypeConflict        ErrorType = "CONFLICT"
	ErrorTypeWorkflowExpired ErrorType = "WORKFLOW_EXPIRED"
	ErrorTypeUnknownWorkflow ErrorType = "UNKNOWN_WORKFLOW"
	ErrorTypeExecutionFailed ErrorType = "EXECUTION_FAILED"
	ErrorTypeInternal        ErrorType = "INTERNAL"
)

// AppError is the custom error type for the application
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work
func (e *AppError) Unwrap() error {
	return e.Err
}

// Constructor functions for different error types

// NewValidation creates a validation error
func NewValidation(message string) error {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
	}
}

// NewNotFound creates a not found error
func NewNotFound(message string) error {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

// NewConflict creates a conflict error
func NewConflict(message string) error {
	return &AppError{
		Type:    ErrorTypeConflict,
		Message: message,
	}
}

// NewWorkflowExpired creates a workflow expiry error
func NewWorkflowExpired(workflowID string) error {
	return &AppError{
		Type:    ErrorTypeWorkflowExpired,
		Message: fmt.Sprintf("workflow %s has expired", workflowID),
	}
}

// NewUnknownWorkflow creates an unknown workflow error
func NewUnknownWorkflow(workflowID string) error {
	return &AppError{
		Type:    ErrorTypeUnknownWorkflow,
		Message: fmt.Sprintf("workflow %s does not exist", workflowID),
	}
}

// NewExecutionFailed creates a command execution error
func NewExecutionFailed(message string, err error) error {
	return &AppError{
		Type:    ErrorTypeExecutionFailed,
		Message: message,
		Err:     err,
	}
}

// NewInternal creates an internal error
func NewInternal(message string, err error) error {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	// If it's already an AppError, preserve the type
	var appErr *AppError
	if errors.As(err, &appErr) {
		return &AppError{
			Type:    appErr.Type,
			Message: fmt.Sprintf("%s: %s", message, appErr.Message),
			Err:     appErr.Err,
		}
	}

	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}

// Type checking functions

func isType(err error, t ErrorType) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == t
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return isType(err, ErrorTypeValidation)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return isType(err, ErrorTypeNotFound)
}

// IsConflict checks if an error is a conflict error
func IsConflict(err error) bool {
	return isType(err, ErrorTypeConflict)
}

// IsWorkflowExpired checks if an error is a workflow expiry error
func IsWorkflowExpired(err error) bool {
	return isType(err, ErrorTypeWorkflowExpired)
}

// IsUnknownWorkflow checks if an error is an unknown workflow error
func IsUnknownWorkflow(err error) bool {
	return isType(err, ErrorTypeUnknownWorkflow)
}

// IsExecutionFailed checks if an error is a command execution error
func IsExecutionFailed(err error) bool {
	return isType(err, ErrorTypeExecutionFailed)
}

// IsInternal checks if an error is an internal error
func IsInternal(err error) bool {
	return isType(err, ErrorTypeInternal)
}
