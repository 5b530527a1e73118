package errors

import (
	stderrors "errors"
	"reflect"
)

// ErrorObject is the canonical wire representation of a structured error.
// OperationError.Serialize fills the first block; the error middleware adds
// the request-derived fields.
type ErrorObject struct {
	Type           string         `json:"type"`
	Code           string         `json:"code"`
	Message        string         `json:"message"`
	Context        map[string]any `json:"context"`
	HTTPStatus     string         `json:"httpStatus"`
	HTTPStatusCode int            `json:"httpStatusCode"`
	Stack          string         `json:"stack,omitempty"`
	OriginalError  any            `json:"originalError,omitempty"`

	ServiceName string         `json:"serviceName,omitempty"`
	EndpointURL string         `json:"endpointUrl,omitempty"`
	InputParams any            `json:"inputParams,omitempty"`
	Fields      map[string]any `json:"fields,omitempty"`
}

// OriginalErrorInfo is the reduced form of a generic error: only its name,
// stack and message cross the wire.
type OriginalErrorInfo struct {
	Name    string `json:"name"`
	Stack   string `json:"stack,omitempty"`
	Message string `json:"message"`
}

// DescribeOriginal returns the wire form of an original error value.
// Structured errors and plain data pass through unchanged, generic errors are
// reduced to OriginalErrorInfo and a nil value becomes an empty object.
func DescribeOriginal(original any) any {
	switch v := original.(type) {
	case nil:
		return map[string]any{}
	case StructuredError:
		return v
	case error:
		return OriginalErrorInfo{
			Name:    errorName(v),
			Stack:   stackOf(v),
			Message: v.Error(),
		}
	default:
		return v
	}
}

// errorName returns the dynamic type name of err without package or pointer decoration.
func errorName(err error) string {
	t := reflect.TypeOf(err)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return "Error"
	}
	return t.Name()
}

func stackOf(err error) string {
	var st interface{ Stack() string }
	if stderrors.As(err, &st) {
		return st.Stack()
	}
	return ""
}

// SerializeOption customizes Serialize.
type SerializeOption func(*serializeOptions)

type serializeOptions struct {
	production bool
}

// WithProductionMode drops the stack and the original error from the output
// when enabled.
func WithProductionMode(enabled bool) SerializeOption {
	return func(o *serializeOptions) { o.production = enabled }
}

func resolveSerializeOptions(opts []SerializeOption) serializeOptions {
	var o serializeOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
