package bootstrap

import (
	"context"
	"fmt"

	"github.com/kbukum/opkit/component"
	"github.com/kbukum/opkit/observability"
)

// telemetry installs the OpenTelemetry providers on Start and flushes them
// on Stop.
type telemetry struct {
	cfg      observability.Config
	res      observability.Resource
	shutdown observability.ShutdownFunc
}

func (t *telemetry) Name() string { return "telemetry" }

func (t *telemetry) Start(ctx context.Context) error {
	shutdown, err := observability.Setup(ctx, t.cfg, t.res)
	if err != nil {
		return err
	}
	t.shutdown = shutdown
	return nil
}

func (t *telemetry) Stop(ctx context.Context) error {
	if t.shutdown == nil {
		return nil
	}
	return t.shutdown(ctx)
}

func (t *telemetry) Health(context.Context) component.Health {
	return component.Healthy(t.Name())
}

func (t *telemetry) Describe() component.Description {
	if !t.cfg.Enabled {
		return component.Description{Type: "otel", Details: "export disabled"}
	}
	return component.Description{
		Type:    "otel",
		Details: fmt.Sprintf("%s sample_rate=%v", t.cfg.Endpoint, t.cfg.SampleRate),
	}
}
