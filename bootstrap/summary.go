package bootstrap

import (
	"context"
	"time"

	"github.com/kbukum/opkit/component"
	"github.com/kbukum/opkit/logger"
)

// logSummary reports component health and the registered routes once the
// application is ready.
func (a *App[C]) logSummary(ctx context.Context, startup time.Duration) {
	healthy := 0
	health := a.Components.HealthAll(ctx)
	for _, h := range health {
		if h.Status == component.StatusHealthy {
			healthy++
			continue
		}
		a.Logger.Warn("Component unhealthy", logger.Fields("name", h.Name, "message", h.Message))
	}

	for _, r := range a.Server.Routes() {
		a.Logger.Debug("Route", logger.Fields(
			logger.FieldMethod, r.Method,
			logger.FieldPath, r.Path,
			"handler", r.Handler,
			"system", r.System,
		))
	}

	a.Logger.Info("Application ready", logger.Fields(
		"name", a.Name,
		"version", a.Version,
		"addr", a.Server.Addr(),
		"components", len(health),
		"healthy", healthy,
		"api_services", len(a.Dispatcher.Services()),
		logger.FieldDuration, startup.Milliseconds(),
	))
}
