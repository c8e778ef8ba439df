// Package errors provides typed errors for the application
package errors

import stderrors "errors"

// ErrorType represents the type of error
type ErrorType int

const (
	ErrorTypeValidation ErrorType = iota
	ErrorTypeNotFound
	ErrorTypeConflict
	ErrorTypePermission
	ErrorTypeInternal
)

func (t ErrorType) String() string {
	switch t {
	case ErrorTypeValidation:
		return "validation"
	case ErrorTypeNotFound:
		return "not_found"
	case ErrorTypeConflict:
		return "conflict"
	case ErrorTypePermission:
		return "permission"
	default:
		return "internal"
	}
}

// TypedError is implemented by every error in this package
type TypedError interface {
	error
	Type() ErrorType
}

type baseError struct {
	msg string
	typ ErrorType
}

func (e *baseError) Error() string {
	return e.msg
}

func (e *baseError) Type() ErrorType {
	return e.typ
}

// ValidationError represents malformed user input
type ValidationError struct {
	baseError
}

// NewValidationError creates a new ValidationError
func NewValidationError(msg string) *ValidationError {
	return &ValidationError{baseError{msg: msg, typ: ErrorTypeValidation}}
}

// NotFoundError represents a missing entity
type NotFoundError struct {
	baseError
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(msg string) *NotFoundError {
	return &NotFoundError{baseError{msg: msg, typ: ErrorTypeNotFound}}
}

// ConflictError represents a state conflict
type ConflictError struct {
	baseError
}

// NewConflictError creates a new ConflictError
func NewConflictError(msg string) *ConflictError {
	return &ConflictError{baseError{msg: msg, typ: ErrorTypeConflict}}
}

// PermissionError represents a missing privilege
type PermissionError struct {
	baseError
}

// NewPermissionError creates a new PermissionError
func NewPermissionError(msg string) *PermissionError {
	return &PermissionError{baseError{msg: msg, typ: ErrorTypePermission}}
}

// InternalError represents a failure of an external dependency or a bug
type InternalError struct {
	baseError
}

// NewInternalError creates a new InternalError
func NewInternalError(msg string) *InternalError {
	return &InternalError{baseError{msg: msg, typ: ErrorTypeInternal}}
}

// TypeOf returns the type of the first typed error in the chain, ErrorTypeInternal otherwise
func TypeOf(err error) ErrorType {
	var typed TypedError
	if stderrors.As(err, &typed) {
		return typed.Type()
	}
	return ErrorTypeInternal
}

// IsValidationError checks if error is a ValidationError
func IsValidationError(err error) bool {
	return err != nil && TypeOf(err) == ErrorTypeValidation
}

// IsNotFoundError checks if error is a NotFoundError
func IsNotFoundError(err error) bool {
	return err != nil && TypeOf(err) == ErrorTypeNotFound
}

// IsConflictError checks if error is a ConflictError
func IsConflictError(err error) bool {
	return err != nil && TypeOf(err) == ErrorTypeConflict
}

// IsPermissionError checks if error is a PermissionError
func IsPermissionError(err error) bool {
	return err != nil && TypeOf(err) == ErrorTypePermission
}

// IsInternalError checks if error is an InternalError
func IsInternalError(err error) bool {
	return err != nil && TypeOf(err) == ErrorTypeInternal
}
