package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

// OperationError is a known failure built from a catalog entry. It is
// immutable once constructed: the message is rendered against the context at
// construction time and every getter returns copies.
type OperationError struct {
	code           string
	typ            string
	message        string
	context        map[string]any
	httpStatusCode int
	original       any
	stack          string
}

// FromEntry builds an OperationError from a pre-resolved catalog entry.
func FromEntry(entry Entry, ctx map[string]any, original any) *OperationError {
	return newOperationError(entry.withDefaults(), ctx, original, 2)
}

// newOperationError renders the entry's template and captures the caller stack.
// skip is the number of frames between the public constructor's caller and here.
func newOperationError(entry Entry, ctx map[string]any, original any, skip int) *OperationError {
	ctx = cloneContext(ctx)
	message := RenderMessage(entry.Message, ctx)
	return &OperationError{
		code:           entry.Code,
		typ:            entry.Type,
		message:        message,
		context:        ctx,
		httpStatusCode: entry.HTTPStatusCode,
		original:       original,
		stack:          captureStack(entry.Type, message, skip+1),
	}
}

// Error returns the rendered message prefixed by the code.
func (e *OperationError) Error() string {
	if cause, ok := e.original.(error); ok {
		return fmt.Sprintf("%s: %s (cause: %v)", e.code, e.message, cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

// Unwrap returns the original error when it is an error value.
func (e *OperationError) Unwrap() error {
	if cause, ok := e.original.(error); ok {
		return cause
	}
	return nil
}

// Code returns the catalog code.
func (e *OperationError) Code() string { return e.code }

// Type returns the classification label.
func (e *OperationError) Type() string { return e.typ }

// Message returns the rendered message.
func (e *OperationError) Message() string { return e.message }

// Context returns a copy of the context map.
func (e *OperationError) Context() map[string]any { return cloneContext(e.context) }

// HTTPStatusCode returns the HTTP status code for this error.
func (e *OperationError) HTTPStatusCode() int { return e.httpStatusCode }

// HTTPStatus returns the standard status text for the status code.
func (e *OperationError) HTTPStatus() string { return http.StatusText(e.httpStatusCode) }

// IsInternalServerError reports whether the status code is 500.
func (e *OperationError) IsInternalServerError() bool {
	return e.httpStatusCode == http.StatusInternalServerError
}

// OriginalError returns the value passed as original at construction.
func (e *OperationError) OriginalError() any { return e.original }

// Stack returns the stack captured at construction.
func (e *OperationError) Stack() string { return e.stack }

// Is matches another *OperationError with the same code.
func (e *OperationError) Is(target error) bool {
	t, ok := target.(*OperationError)
	return ok && t.code == e.code
}

// Serialize returns the wire representation of the error.
func (e *OperationError) Serialize(opts ...SerializeOption) ErrorObject {
	o := resolveSerializeOptions(opts)

	obj := ErrorObject{
		Type:           e.typ,
		Code:           e.code,
		Message:        e.message,
		Context:        e.Context(),
		HTTPStatus:     e.HTTPStatus(),
		HTTPStatusCode: e.httpStatusCode,
	}
	if e.IsInternalServerError() {
		obj.Stack = e.stack
	}
	obj.OriginalError = DescribeOriginal(e.original)

	if o.production {
		obj.Stack = ""
		obj.OriginalError = nil
	}
	return obj
}

// MarshalJSON encodes the default serialization.
func (e *OperationError) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Serialize())
}

func cloneContext(ctx map[string]any) map[string]any {
	out := make(map[string]any, len(ctx))
	for k, v := range ctx {
		out[k] = v
	}
	return out
}

const maxStackDepth = 32

// captureStack formats the caller stack in a "<type>: <message>" header
// followed by one "    at function (file:line)" line per frame.
func captureStack(typ, message string, skip int) string {
	pcs := make([]uintptr, maxStackDepth)
	n := runtime.Callers(skip+1, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var b strings.Builder
	b.WriteString(typ)
	b.WriteString(": ")
	b.WriteString(message)
	for {
		frame, more := frames.Next()
		if frame.Function != "" {
			fmt.Fprintf(&b, "\n    at %s (%s:%d)", frame.Function, frame.File, frame.Line)
		}
		if !more {
			break
		}
	}
	return b.String()
}
