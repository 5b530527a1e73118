package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/opkit/apikey"
	"github.com/kbukum/opkit/apiservice"
	"github.com/kbukum/opkit/component"
	opkiterrors "github.com/kbukum/opkit/errors"
	"github.com/kbukum/opkit/logger"
	"github.com/kbukum/opkit/observability"
	"github.com/kbukum/opkit/redis"
	"github.com/kbukum/opkit/server"
	"github.com/kbukum/opkit/server/endpoint"
	"github.com/kbukum/opkit/version"
)

// App is an opkit HTTP service with uniform lifecycle management.
// The type parameter C is the config type; any struct embedding AppConfig
// satisfies Config.
//
// Example:
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*AuthConfig]) error {
//	    a.Server.Engine().POST("/users/login", handler.Login(a.Dispatcher))
//	    return nil
//	})
//	app.Run(context.Background())
type App[C Config] struct {
	Name    string
	Version string
	Cfg     C
	Logger  *logger.Logger

	// Resolver holds the service catalog layered over the base catalog.
	Resolver   *opkiterrors.Resolver
	Components *component.Registry
	Server     *server.Server
	Metrics    *observability.Metrics

	// Available once Run has started the infrastructure components.
	Dispatcher *apiservice.Service
	APIKeys    apikey.Store

	redis       *redis.Component
	exitTimeout time.Duration
	apiKeys     apikey.Store
	onConfigure []func(ctx context.Context, app *App[C]) error

	onStart []Hook
	onReady []Hook
	onStop  []Hook
}

// NewApp creates the application from a typed config. It applies defaults,
// validates the config, initializes the logger and loads the error catalog.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	base := cfg.GetAppConfig()
	o := resolveOptions(opts)

	app := &App[C]{
		Name:        base.Name,
		Version:     version.Resolve(base.Version),
		Cfg:         cfg,
		exitTimeout: base.ExitTimeout,
		apiKeys:     o.apiKeys,
	}
	if o.exitTimeout != nil {
		app.exitTimeout = *o.exitTimeout
	}

	if o.logger != nil {
		app.Logger = o.logger
	} else {
		logger.Init(base.Logging, base.Name)
		app.Logger = logger.GetGlobalLogger()
	}

	app.Resolver = opkiterrors.NewResolver(nil, nil)
	if base.ErrorsFile != "" {
		resolver, err := opkiterrors.LoadResolver(base.ErrorsFile)
		if err != nil {
			return nil, fmt.Errorf("load error catalog: %w", err)
		}
		app.Resolver = resolver
	}

	app.Components = component.NewRegistry(app.Logger)
	_ = app.Components.Register(&telemetry{
		cfg: base.Observability,
		res: observability.Resource{
			ServiceName:    base.Name,
			ServiceVersion: app.Version,
			Environment:    base.Environment,
		},
	})
	if base.Redis.Enabled && app.apiKeys == nil {
		app.redis = redis.NewComponent(base.Redis, app.Logger)
		_ = app.Components.Register(app.redis)
	}

	app.Server = server.New(base.Server, app.Logger)
	return app, nil
}

// RegisterComponent adds a component to the application's registry. Register
// before Run.
func (a *App[C]) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// OnConfigure registers a callback that runs once the middleware and system
// endpoints are installed. Register routes here.
func (a *App[C]) OnConfigure(fn func(ctx context.Context, app *App[C]) error) {
	a.onConfigure = append(a.onConfigure, fn)
}

// ReadyCheck verifies that all registered components are healthy.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	var unhealthy []string
	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status != component.StatusHealthy {
			detail := h.Name
			if h.Message != "" {
				detail += "(" + h.Message + ")"
			}
			unhealthy = append(unhealthy, detail)
		}
	}
	if len(unhealthy) > 0 {
		return fmt.Errorf("unhealthy components: %v", unhealthy)
	}
	return nil
}

// Run starts the application, blocks until SIGINT, SIGTERM or ctx is done,
// then shuts down within the exit timeout.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.Start(ctx); err != nil {
		_ = a.stop()
		return err
	}
	a.WaitForSignal(ctx)
	return a.stop()
}

// Start runs the startup sequence without blocking:
// infrastructure components → wiring → OnStart → OnConfigure → server →
// ReadyCheck → OnReady.
func (a *App[C]) Start(ctx context.Context) error {
	start := time.Now()
	a.Logger.Info("Starting application", logger.Fields("name", a.Name, "version", a.Version))

	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	if err := a.wire(); err != nil {
		return fmt.Errorf("wiring failed: %w", err)
	}
	if err := runHooks(ctx, a.onStart); err != nil {
		return fmt.Errorf("onStart hook failed: %w", err)
	}
	for _, fn := range a.onConfigure {
		if err := fn(ctx, a); err != nil {
			return fmt.Errorf("configuration failed: %w", err)
		}
	}

	if err := a.Components.Register(server.NewComponent(a.Server)); err != nil {
		return err
	}
	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("server start failed: %w", err)
	}

	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("Ready check reported issues", logger.Fields(logger.FieldError, err.Error()))
	}
	if err := runHooks(ctx, a.onReady); err != nil {
		return fmt.Errorf("onReady hook failed: %w", err)
	}

	a.logSummary(ctx, time.Since(start))
	return nil
}

// wire builds the collaborators that depend on started infrastructure and
// installs the middleware and system endpoints.
func (a *App[C]) wire() error {
	base := a.Cfg.GetAppConfig()
	a.Metrics = observability.DefaultMetrics()

	switch {
	case a.apiKeys != nil:
		a.APIKeys = a.apiKeys
	case a.redis != nil:
		a.APIKeys = apikey.NewRedisStore(a.redis.Client(), apikey.DefaultPrefix)
	default:
		a.APIKeys = apikey.NewMemoryStore(base.Server.APIKey.Keys...)
	}

	dispatcher, err := apiservice.NewFromConfig(base.APIServices,
		apiservice.WithLogger(a.Logger),
		apiservice.WithMetrics(a.Metrics),
	)
	if err != nil {
		return err
	}
	a.Dispatcher = dispatcher

	a.Server.ApplyMiddleware(server.Stack{
		ServiceName:    a.Name,
		Resolver:       a.Resolver,
		Production:     base.ProductionErrors,
		Metrics:        a.Metrics,
		APIKeys:        a.APIKeys,
		RequestLogging: base.RequestLogging,
	})
	a.Server.RegisterDefaultEndpoints(a.Name, a.Version, a.Components.HealthAll)

	if base.Server.DocsFile != "" {
		docs, err := endpoint.LoadDocs(base.Server.DocsFile, a.Resolver.Entries())
		if err != nil {
			return err
		}
		a.Server.RegisterDocs(docs)
	}
	return nil
}

// WaitForSignal blocks until an OS interrupt/term signal or context cancellation.
func (a *App[C]) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("Received shutdown signal", logger.Fields("signal", sig.String()))
		return sig
	case <-ctx.Done():
		a.Logger.Info("Context canceled, shutting down")
		return nil
	}
}

// Shutdown performs graceful shutdown. Use when managing your own lifecycle
// with Start.
func (a *App[C]) Shutdown() error {
	return a.stop()
}

// stop runs the OnStop hooks and stops all components within the exit timeout.
func (a *App[C]) stop() error {
	a.Logger.Info("Shutting down application", logger.Fields("timeout", a.exitTimeout.String()))

	ctx, cancel := context.WithTimeout(context.Background(), a.exitTimeout)
	defer cancel()

	var shutdownErr error
	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("OnStop hook error", logger.Fields(logger.FieldError, err.Error()))
		shutdownErr = err
	}
	if err := a.Components.StopAll(ctx); err != nil {
		a.Logger.Error("Shutdown completed with errors", logger.Fields(logger.FieldError, err.Error()))
		if shutdownErr == nil {
			shutdownErr = err
		}
	}

	a.Logger.Info("Application shutdown complete")
	return shutdownErr
}
