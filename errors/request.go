package errors

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
)

// ValidationErrorName identifies request validation failures.
const ValidationErrorName = "ValidateError"

// BodyParseErrorType identifies request bodies that could not be decoded.
const BodyParseErrorType = "entity.parse.failed"

// FieldViolation describes why a single input field was rejected.
type FieldViolation struct {
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// ValidationError reports rejected input fields. The error middleware turns
// it into an invalid-parameters response that keeps the field details.
type ValidationError struct {
	fields map[string]FieldViolation
}

// NewValidationError builds a validation failure from per-field violations.
func NewValidationError(fields map[string]FieldViolation) *ValidationError {
	cp := make(map[string]FieldViolation, len(fields))
	for k, v := range fields {
		cp[k] = v
	}
	return &ValidationError{fields: cp}
}

// Name returns ValidationErrorName.
func (e *ValidationError) Name() string { return ValidationErrorName }

// Fields returns a copy of the violations keyed by field name.
func (e *ValidationError) Fields() map[string]FieldViolation {
	cp := make(map[string]FieldViolation, len(e.fields))
	for k, v := range e.fields {
		cp[k] = v
	}
	return cp
}

// FieldsObject returns the violations in the generic shape used on the wire.
func (e *ValidationError) FieldsObject() map[string]any {
	out := make(map[string]any, len(e.fields))
	for k, v := range e.fields {
		out[k] = v
	}
	return out
}

// Error lists the violations in field order.
func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.fields))
	for k := range e.fields {
		names = append(names, k)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = n + ": " + e.fields[n].Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// BodyParseError reports a request body that is not valid JSON.
type BodyParseError struct {
	// Status is the response status to use. Zero means 400.
	Status int
	// Msg is the decoder's description of the failure.
	Msg string
	// Err is the underlying decode error.
	Err error
}

// NewBodyParseError wraps a JSON decode failure.
func NewBodyParseError(err error) *BodyParseError {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return &BodyParseError{Status: http.StatusBadRequest, Msg: msg, Err: err}
}

// Type returns BodyParseErrorType.
func (e *BodyParseError) Type() string { return BodyParseErrorType }

func (e *BodyParseError) Error() string {
	if e.Msg == "" {
		return BodyParseErrorType
	}
	return e.Msg
}

func (e *BodyParseError) Unwrap() error { return e.Err }

// StatusError is a structured error defined by an HTTP status alone. Its code
// is the numeric status.
type StatusError struct {
	status  int
	message string
}

// NewStatusError builds a StatusError. An empty message uses the status text.
func NewStatusError(status int, message string) *StatusError {
	if message == "" {
		message = http.StatusText(status)
	}
	return &StatusError{status: status, message: message}
}

// MethodNotAllowed is returned for requests using a blocked HTTP method.
func MethodNotAllowed() *StatusError {
	return NewStatusError(http.StatusMethodNotAllowed, "Method Not Allowed")
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%d: %s", e.status, e.message)
}

func (e *StatusError) Code() string            { return strconv.Itoa(e.status) }
func (e *StatusError) Context() map[string]any { return map[string]any{} }
func (e *StatusError) Message() string         { return e.message }
func (e *StatusError) HTTPStatusCode() int     { return e.status }
