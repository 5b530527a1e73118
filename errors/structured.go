package errors

import (
	stderrors "errors"
)

// StructuredError is any error carrying a code, context, message and HTTP
// status. Both OperationError and APIOperationError implement it, so callers
// can treat local and remote failures alike without inspecting concrete types.
type StructuredError interface {
	error
	Code() string
	Context() map[string]any
	Message() string
	HTTPStatusCode() int
}

var (
	_ StructuredError = (*OperationError)(nil)
	_ StructuredError = (*APIOperationError)(nil)
	_ StructuredError = (*StatusError)(nil)
)

// AsStructured finds the first StructuredError in err's chain.
func AsStructured(err error) (StructuredError, bool) {
	var se StructuredError
	if stderrors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsStructured reports whether err's chain contains a StructuredError.
func IsStructured(err error) bool {
	_, ok := AsStructured(err)
	return ok
}

// AsOperationError finds the first *OperationError in err's chain.
func AsOperationError(err error) (*OperationError, bool) {
	var oe *OperationError
	if stderrors.As(err, &oe) {
		return oe, true
	}
	return nil, false
}

// AsAPIOperationError finds the first *APIOperationError in err's chain.
func AsAPIOperationError(err error) (*APIOperationError, bool) {
	var ae *APIOperationError
	if stderrors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// CodeOf returns the code of the first structured error in err's chain, or
// CodeUnhandled when there is none.
func CodeOf(err error) string {
	if se, ok := AsStructured(err); ok && se.Code() != "" {
		return se.Code()
	}
	return CodeUnhandled
}
