// Package component defines the lifecycle contract shared by the
// infrastructure pieces of an opkit service (HTTP server, Redis, telemetry)
// and the registry that starts and stops them in order.
package component
