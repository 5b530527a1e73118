package endpoint

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/opkit/component"
)

// Readiness reports 200 when every component is healthy and 503 otherwise.
func Readiness(checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "ready"
		httpStatus := http.StatusOK

		components := checker(c.Request.Context())
		for _, ch := range components {
			if ch.Status == component.StatusUnhealthy {
				status = "not_ready"
				httpStatus = http.StatusServiceUnavailable
				break
			}
		}

		c.JSON(httpStatus, gin.H{
			"status":     status,
			"components": components,
		})
	}
}
