package errors

import (
	"encoding/json"
	"net/http"
)

// APIOperationErrorType is the classification reported for remote failures.
const APIOperationErrorType = "ApiOperationError"

// APIOperationError is a structured failure reported by a remote service and
// rebuilt locally from its response body.
type APIOperationError struct {
	code    string
	context map[string]any
	status  int
	message string
}

// NewAPIOperationError builds a remote error from the envelope fields.
func NewAPIOperationError(code string, ctx map[string]any, status int, message string) *APIOperationError {
	return &APIOperationError{
		code:    code,
		context: cloneContext(ctx),
		status:  status,
		message: message,
	}
}

// Error returns the remote message, or the code when the remote sent none.
func (e *APIOperationError) Error() string {
	if e.message == "" {
		return e.code
	}
	return e.message
}

// Code returns the remote code.
func (e *APIOperationError) Code() string { return e.code }

// Context returns a copy of the remote context.
func (e *APIOperationError) Context() map[string]any { return cloneContext(e.context) }

// Message returns the remote message.
func (e *APIOperationError) Message() string { return e.message }

// HTTPStatusCode returns the status of the remote response.
func (e *APIOperationError) HTTPStatusCode() int { return e.status }

// Status is an alias of HTTPStatusCode.
func (e *APIOperationError) Status() int { return e.status }

// Serialize returns the wire representation, compatible with ErrorObject so
// the error can be forwarded to the next caller unchanged.
func (e *APIOperationError) Serialize() ErrorObject {
	return ErrorObject{
		Type:           APIOperationErrorType,
		Code:           e.code,
		Message:        e.Error(),
		Context:        e.Context(),
		HTTPStatus:     http.StatusText(e.status),
		HTTPStatusCode: e.status,
	}
}

// MarshalJSON encodes the serialized form.
func (e *APIOperationError) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Serialize())
}
