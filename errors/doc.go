// Package errors provides the structured error model shared by opkit services.
//
// Errors are declared in a Catalog (code → message template, type, HTTP
// status). An OperationError is built from a catalog code plus a context map;
// its message template is rendered against the context at construction and
// the error serializes to the ErrorObject wire shape returned to API clients.
//
// Services layer their own codes over the base catalog with a Resolver, and
// failures reported by remote services are rebuilt as APIOperationError.
// Both kinds satisfy StructuredError.
//
// # Usage
//
//	err := errors.MustNew(errors.CodeDocumentNotFound, map[string]any{"id": id}, nil)
//	c.Error(err)
package errors
