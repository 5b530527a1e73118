package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/opkit/logger"
)

var quietPaths = map[string]bool{
	"/health": true,
	"/ready":  true,
}

// RequestLogger logs every completed request through the request logger, at
// error level for 5xx, warn for 4xx and debug otherwise. Health probes are
// skipped.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		if quietPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		status := c.Writer.Status()
		fields := logger.Fields(
			logger.FieldMethod, c.Request.Method,
			logger.FieldPath, c.Request.URL.RequestURI(),
			logger.FieldStatus, status,
			logger.FieldDuration, elapsed.Milliseconds(),
			"client_ip", c.ClientIP(),
		)

		log := logger.FromContext(c.Request.Context())
		switch {
		case status >= 500:
			log.Error("Request completed", fields)
		case status >= 400:
			log.Warn("Request completed", fields)
		default:
			log.Debug("Request completed", fields)
		}
	}
}
