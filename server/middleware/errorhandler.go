package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/kbukum/opkit/logger"
	"github.com/kbukum/opkit/observability"
)

// ErrorHandler normalizes the last error recorded on the gin context into the
// JSON error response. When the handler already wrote a response, the error
// is only logged.
func ErrorHandler(n *Normalizer, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil {
			return
		}

		ctx := c.Request.Context()
		obj, status := n.Normalize(last.Err, RequestInfoFrom(c), logger.FromContext(ctx))
		metrics.RecordErrorResponse(ctx, obj.Code, status)

		if c.Writer.Written() {
			return
		}
		c.AbortWithStatusJSON(status, obj)
	}
}

// RequestInfoFrom collects the request URL and the captured input body.
func RequestInfoFrom(c *gin.Context) RequestInfo {
	body, _ := c.Get(KeyInputBody)
	return RequestInfo{URL: c.Request.URL.RequestURI(), Body: body}
}
