// Package logger provides structured logging for opkit services using
// zerolog.
//
// A process-wide logger is configured once with Init. Request handling code
// carries a request-scoped logger in the context (IntoContext, FromContext)
// so error responses and outbound calls log with the request and trace ids.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("apiservice")
//	log.Info("operation dispatched", logger.Fields("operation", "auth.Login"))
package logger
