// Package apiservice dispatches named operations ("service.operation") to
// remote services described by OpenAPI-style documents.
//
// Registration indexes each document's paths by operationId, prefixing every
// path with the document's servers[0].url. Execute resolves the name, sends a
// single JSON request through httpclient and maps the response:
//
//	204              -> Result{Body: {}, Status: 204}
//	2xx              -> Result{Body: <decoded JSON>, Status: status}
//	failed with code -> *errors.APIOperationError
//	anything else    -> *UnknownResponseError (wraps ErrUnknownResponse)
//
// Every call runs in an "apiservice.execute" span and the trace context is
// propagated in the request headers.
package apiservice
