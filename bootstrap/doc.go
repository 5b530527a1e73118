// Package bootstrap runs an opkit HTTP service.
//
// NewApp validates the configuration, initializes the logger and loads the
// error catalog. Run then starts the telemetry and Redis components, builds
// the Api-Key store and the operation dispatcher, installs the middleware
// chain and system endpoints, lets OnConfigure callbacks register routes,
// starts the HTTP server and blocks until SIGINT, SIGTERM or context
// cancellation. Shutdown stops components in reverse order within
// exit_timeout.
//
//	cfg, err := config.Load[bootstrap.AppConfig]("auth-service")
//	app, err := bootstrap.NewApp(cfg)
//	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*bootstrap.AppConfig]) error {
//	    a.Server.Engine().GET("/users/:id", getUser)
//	    return nil
//	})
//	if err := app.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package bootstrap
