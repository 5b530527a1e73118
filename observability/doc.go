// Package observability wires OpenTelemetry tracing and metrics for opkit
// services.
//
//	shutdown, err := observability.Setup(ctx, cfg.Observability, observability.Resource{
//	    ServiceName: cfg.Name,
//	    ServiceVersion: cfg.Version,
//	})
//	defer shutdown(ctx)
//
// The dispatcher opens an apiservice.execute span per call and records
// opkit.dispatch.* instruments; the error middleware counts error responses
// by code and status.
package observability
