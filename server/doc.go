// Package server provides the Gin-based HTTP server of an opkit service,
// served over HTTP/1.1 and h2c.
//
// ApplyMiddleware installs the standard chain from server/middleware:
// request id, request logger, security headers, CORS, the error handler with
// panic recovery, method blocking, body limits and capture, and the optional
// Api-Key check. Unknown routes fail with a structured 404.
//
// Endpoints (server/endpoint):
//
//   - /health: liveness with service name and version
//   - /ready: component health, when a checker is given
//   - /api-docs, /api/swagger: the API description, with and without the
//     error catalog
package server
