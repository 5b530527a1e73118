package server

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/kbukum/opkit/component"
)

const componentName = "http-server"

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// Component adapts a Server to the component lifecycle.
type Component struct {
	server  *Server
	started atomic.Bool
}

// NewComponent returns a component backed by s.
func NewComponent(s *Server) *Component {
	return &Component{server: s}
}

// Name returns the component name used for registration.
func (c *Component) Name() string { return componentName }

// Start binds and starts serving.
func (c *Component) Start(ctx context.Context) error {
	if err := c.server.Start(ctx); err != nil {
		return err
	}
	c.started.Store(true)
	return nil
}

// Stop gracefully shuts down the server.
func (c *Component) Stop(ctx context.Context) error {
	c.started.Store(false)
	return c.server.Stop(ctx)
}

// Health reports whether the server is serving.
func (c *Component) Health(context.Context) component.Health {
	if !c.started.Load() {
		return component.Unhealthy(componentName, "HTTP server not started")
	}
	return component.Healthy(componentName)
}

// Describe returns the listen address for the startup log.
func (c *Component) Describe() component.Description {
	return component.Description{
		Type:    "server",
		Details: fmt.Sprintf("%s (%d routes)", c.server.Addr(), len(c.server.engine.Routes())),
	}
}
