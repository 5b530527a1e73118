// Package middleware provides the gin middleware of an opkit service.
//
// Handlers report failures with c.Error (or Fail); ErrorHandler turns the last
// one into the canonical JSON error through a Normalizer:
//
//	engine.Use(middleware.RequestID(), middleware.Context(log))
//	engine.Use(middleware.ErrorHandler(normalizer, metrics), middleware.Recovery())
//	engine.Use(middleware.BodyCapture())
//
// Header-only middleware is written against net/http and adapted with GinWrap.
package middleware
