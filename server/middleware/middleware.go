package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Gin context keys set by this package.
const (
	KeyRequestID = "request_id"
	KeyInputBody = "opkit.input_body"
	KeyAPIKey    = "opkit.api_key"
)

// Middleware wraps an http.Handler. Header-only middleware (CORS, security
// headers, body limits) is written in this form and adapted with GinWrap.
type Middleware func(http.Handler) http.Handler

// Chain composes middleware; the first one is the outermost.
func Chain(middlewares ...Middleware) Middleware {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

// GinWrap adapts a Middleware to the gin chain. When the wrapped middleware
// does not call its next handler, the gin chain is aborted.
func GinWrap(mw Middleware) gin.HandlerFunc {
	return func(c *gin.Context) {
		called := false
		next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			called = true
			c.Request = r
			c.Next()
		})
		mw(next).ServeHTTP(c.Writer, c.Request)
		if !called {
			c.Abort()
		}
	}
}

// Fail records err on the gin context and stops the chain. ErrorHandler
// writes the response.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
