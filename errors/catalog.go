package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"sort"
)

// Base catalog codes.
const (
	// CodeUnhandled is used for any failure that carries no code of its own.
	CodeUnhandled = "COM-0"
	// CodeInternalRequestFailed indicates an internal request failed.
	CodeInternalRequestFailed = "COM-1"
	// CodeDocumentNotFound indicates the requested document was not found.
	CodeDocumentNotFound = "COM-2"
	// CodeInvalidParameters indicates request validation failed.
	CodeInvalidParameters = "COM-3"
	// CodeUnreadableBody indicates the request body could not be read.
	CodeUnreadableBody = "COM-4"
	// CodeMalformedJSON indicates the request body is not valid JSON.
	CodeMalformedJSON = "COM-5"
	// CodeAPIKeyMissing indicates the Api-Key header was not sent.
	CodeAPIKeyMissing = "COM-6"
	// CodeAPIKeyNotFound indicates the Api-Key header did not match a known key.
	CodeAPIKeyNotFound = "COM-7"
	// CodeMockNotFound is reserved for test doubles.
	CodeMockNotFound = "TST-0"
)

const (
	// DefaultType is the classification used when an entry declares none.
	DefaultType = "OperationError"
	// DefaultHTTPStatusCode is the status used when an entry declares none.
	DefaultHTTPStatusCode = http.StatusInternalServerError
)

// ErrUnknownCode is returned when a code is not present in any catalog consulted.
var ErrUnknownCode = stderrors.New("invalid operation error code")

// Entry is a single catalog definition.
type Entry struct {
	Code           string `json:"-"`
	Type           string `json:"type,omitempty"`
	Message        string `json:"message"`
	HTTPStatusCode int    `json:"httpStatusCode,omitempty"`
}

// withDefaults returns a copy of the entry with the classification and status filled in.
func (e Entry) withDefaults() Entry {
	if e.Type == "" {
		e.Type = DefaultType
	}
	if e.HTTPStatusCode == 0 {
		e.HTTPStatusCode = DefaultHTTPStatusCode
	}
	return e
}

// Catalog is an immutable code → Entry registry.
type Catalog struct {
	entries map[string]Entry
}

// NewCatalog builds a catalog from the given entries. The map is copied, each
// entry receives its key as code, and missing type/status fall back to defaults.
func NewCatalog(entries map[string]Entry) *Catalog {
	c := &Catalog{entries: make(map[string]Entry, len(entries))}
	for code, e := range entries {
		e.Code = code
		c.entries[code] = e.withDefaults()
	}
	return c
}

// Lookup returns the entry registered for code.
func (c *Catalog) Lookup(code string) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	e, ok := c.entries[code]
	return e, ok
}

// Has reports whether code is registered.
func (c *Catalog) Has(code string) bool {
	_, ok := c.Lookup(code)
	return ok
}

// Codes returns the registered codes in sorted order.
func (c *Catalog) Codes() []string {
	if c == nil {
		return nil
	}
	codes := make([]string, 0, len(c.entries))
	for code := range c.entries {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Entries returns a copy of all entries keyed by code.
func (c *Catalog) Entries() map[string]Entry {
	out := make(map[string]Entry)
	if c == nil {
		return out
	}
	for code, e := range c.entries {
		out[code] = e
	}
	return out
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// New builds an OperationError for code. It fails with ErrUnknownCode when the
// code is not registered.
func (c *Catalog) New(code string, ctx map[string]any, original any) (*OperationError, error) {
	e, ok := c.Lookup(code)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCode, code)
	}
	return newOperationError(e, ctx, original, 2), nil
}

// MustNew is like New but panics on an unknown code. Use it at throw sites
// whose codes are compile-time constants.
func (c *Catalog) MustNew(code string, ctx map[string]any, original any) *OperationError {
	e, ok := c.Lookup(code)
	if !ok {
		panic(fmt.Errorf("%w: %s", ErrUnknownCode, code))
	}
	return newOperationError(e, ctx, original, 2)
}

var baseCatalog = NewCatalog(map[string]Entry{
	CodeUnhandled: {
		Type:           "ApplicationError",
		Message:        "There was an unhandled operation error.",
		HTTPStatusCode: http.StatusInternalServerError,
	},
	CodeInternalRequestFailed: {
		Type:           "ApplicationError",
		Message:        "An internal request failed.",
		HTTPStatusCode: http.StatusInternalServerError,
	},
	CodeDocumentNotFound: {
		Message:        "Requested document not found.",
		HTTPStatusCode: http.StatusNotFound,
	},
	CodeInvalidParameters: {
		Type:           "InvalidParametersError",
		Message:        "Invalid operation parameters.",
		HTTPStatusCode: http.StatusBadRequest,
	},
	CodeUnreadableBody: {
		Type:           "InvalidRequestError",
		Message:        "Can't read request body.",
		HTTPStatusCode: http.StatusBadRequest,
	},
	CodeMalformedJSON: {
		Type:           "InvalidRequestError",
		Message:        "Request body is not a valid JSON.",
		HTTPStatusCode: http.StatusBadRequest,
	},
	CodeAPIKeyMissing: {
		Type:           "InvalidRequestError",
		Message:        "API KEY must be provided.",
		HTTPStatusCode: http.StatusUnauthorized,
	},
	CodeAPIKeyNotFound: {
		Type:           "InvalidRequestError",
		Message:        "API KEY not found.",
		HTTPStatusCode: http.StatusUnauthorized,
	},
	CodeMockNotFound: {
		Type:           "TestError",
		Message:        "Operation request mock was not found or has already been resolved.",
		HTTPStatusCode: http.StatusInternalServerError,
	},
})

// Base returns the shared base catalog.
func Base() *Catalog { return baseCatalog }

// New builds an OperationError from the base catalog.
func New(code string, ctx map[string]any, original any) (*OperationError, error) {
	e, ok := baseCatalog.Lookup(code)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCode, code)
	}
	return newOperationError(e, ctx, original, 2), nil
}

// MustNew builds an OperationError from the base catalog and panics on an unknown code.
func MustNew(code string, ctx map[string]any, original any) *OperationError {
	e, ok := baseCatalog.Lookup(code)
	if !ok {
		panic(fmt.Errorf("%w: %s", ErrUnknownCode, code))
	}
	return newOperationError(e, ctx, original, 2)
}

// --- Common constructors over the base catalog ---

// Unhandled wraps an arbitrary failure as COM-0.
func Unhandled(cause error) *OperationError {
	return newOperationError(baseCatalog.entries[CodeUnhandled], nil, cause, 2)
}

// InternalRequestFailed reports a failed call to another service as COM-1.
func InternalRequestFailed(ctx map[string]any, cause error) *OperationError {
	return newOperationError(baseCatalog.entries[CodeInternalRequestFailed], ctx, cause, 2)
}

// DocumentNotFound reports a missing document as COM-2.
func DocumentNotFound(ctx map[string]any) *OperationError {
	return newOperationError(baseCatalog.entries[CodeDocumentNotFound], ctx, nil, 2)
}

// InvalidParameters reports invalid operation parameters as COM-3.
func InvalidParameters(ctx map[string]any) *OperationError {
	return newOperationError(baseCatalog.entries[CodeInvalidParameters], ctx, nil, 2)
}
