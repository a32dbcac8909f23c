package apperrors

import (
	"errors"
	"fmt"
)

// Stable machine-readable error codes the frontend switches on
const (
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeNotFound        = "NOT_FOUND"
	CodeValidation      = "VALIDATION_ERROR"
	CodeDuplicate       = "DUPLICATE"
	CodeOperationFailed = "OPERATION_FAILED"
)

// Error carries a stable code, a human-readable message and an optional
// field-level detail map
type Error struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Unauthenticated means no verified identity is attached to the request
func Unauthenticated() *Error {
	return &Error{Code: CodeUnauthenticated, Message: "Not authenticated"}
}

// Unauthorized means the identity lacks the required role
func Unauthorized(message string) *Error {
	if message == "" {
		message = "Not authorized"
	}
	return &Error{Code: CodeUnauthorized, Message: message}
}

// NotFound reports a missing referenced entity
func NotFound(entity, id string) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf("%s %q not found", entity, id)}
}

// Validation reports malformed input with per-field detail
func Validation(message string, fields map[string]string) *Error {
	return &Error{Code: CodeValidation, Message: message, Fields: fields}
}

// Duplicate reports a unique-constraint violation on field
func Duplicate(field, value string) *Error {
	return &Error{
		Code:    CodeDuplicate,
		Message: fmt.Sprintf("%s %q already exists", field, value),
		Fields:  map[string]string{field: "Must be unique"},
	}
}

// OperationFailed wraps an unrecognized storage or infra error
func OperationFailed(message string, cause error) *Error {
	return &Error{Code: CodeOperationFailed, Message: message, cause: cause}
}

// CodeOf extracts the stable code from err, defaulting to OPERATION_FAILED
// for errors outside the taxonomy
func CodeOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeOperationFailed
}

// As unwraps err into a taxonomy Error, wrapping foreign errors as
// OPERATION_FAILED so callers always get a stable code
func As(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return OperationFailed("Internal error", err)
}
