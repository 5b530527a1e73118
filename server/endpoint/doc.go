// Package endpoint provides the system HTTP endpoints: health, readiness and
// API documentation.
package endpoint
