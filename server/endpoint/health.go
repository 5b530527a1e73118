package endpoint

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/opkit/component"
)

// System endpoint paths.
const (
	HealthPath = "/health"
	ReadyPath  = "/ready"
)

// HealthResponse is the /health body.
type HealthResponse struct {
	Status  string `json:"status"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

// HealthChecker returns health status for registered components.
type HealthChecker func(ctx context.Context) []component.Health

// Health reports that the process is serving.
func Health(name, version string) gin.HandlerFunc {
	body := HealthResponse{Status: "Ok", Name: name, Version: version}
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, body)
	}
}
