package bootstrap

import (
	"time"

	"github.com/kbukum/opkit/apikey"
	"github.com/kbukum/opkit/logger"
)

// Option configures the App during creation.
// Options are non-generic so they can be used with any config type.
type Option func(*appOptions)

type appOptions struct {
	logger      *logger.Logger
	exitTimeout *time.Duration
	apiKeys     apikey.Store
}

func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets a custom logger for the application.
// If not set, the logger is initialized from the config's Logging field.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) {
		o.logger = l
	}
}

// WithExitTimeout overrides the configured exit_timeout.
func WithExitTimeout(d time.Duration) Option {
	return func(o *appOptions) {
		o.exitTimeout = &d
	}
}

// WithAPIKeyStore replaces the Redis or in-memory Api-Key store chosen from
// the configuration.
func WithAPIKeyStore(s apikey.Store) Option {
	return func(o *appOptions) {
		o.apiKeys = s
	}
}
