package config

import (
	"fmt"
	"slices"
	"time"

	"github.com/kbukum/opkit/logger"
)

// Supported environments.
const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"
)

// DefaultExitTimeout bounds the graceful shutdown of a service.
const DefaultExitTimeout = 10 * time.Second

// ServiceConfig contains the fields every opkit service needs. Projects
// extend it by embedding it in their own config structs:
//
//	type AuthConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Server server.Config `yaml:"server" mapstructure:"server"`
//	}
type ServiceConfig struct {
	Name        string        `yaml:"name" mapstructure:"name"`
	Environment string        `yaml:"environment" mapstructure:"environment"`
	Version     string        `yaml:"version" mapstructure:"version"`
	Debug       bool          `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`

	// RequestLogging logs every inbound request when enabled.
	RequestLogging bool `yaml:"request_logging" mapstructure:"request_logging"`
	// ProductionErrors strips stacks and original errors from error responses.
	// It is forced on in the production environment.
	ProductionErrors bool `yaml:"production_errors" mapstructure:"production_errors"`
	// ErrorsFile is the path of the service error catalog document.
	ErrorsFile string `yaml:"errors_file" mapstructure:"errors_file"`
	// ExitTimeout bounds graceful shutdown.
	ExitTimeout time.Duration `yaml:"exit_timeout" mapstructure:"exit_timeout"`
}

// GetServiceConfig returns the base ServiceConfig. When embedded in a larger
// config struct the method is promoted, so the embedding struct can be
// handed to code that only needs the base fields.
func (c *ServiceConfig) GetServiceConfig() *ServiceConfig {
	return c
}

// IsProduction reports whether the service runs in the production environment.
func (c *ServiceConfig) IsProduction() bool {
	return c.Environment == EnvProduction
}

// ApplyDefaults applies default values to the base configuration. Embedding
// structs that override it must call c.ServiceConfig.ApplyDefaults() first.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = EnvDevelopment
	}
	if c.Environment == EnvDevelopment {
		c.Debug = true
	}
	if c.IsProduction() {
		c.ProductionErrors = true
	}
	if c.ExitTimeout == 0 {
		c.ExitTimeout = DefaultExitTimeout
	}
	c.Logging.ApplyDefaults()
}

// Validate validates the base configuration fields.
func (c *ServiceConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config.name is required")
	}
	validEnvs := []string{EnvDevelopment, EnvTest, EnvProduction}
	if !slices.Contains(validEnvs, c.Environment) {
		return fmt.Errorf("config.environment must be one of %v (got: %s)", validEnvs, c.Environment)
	}
	if c.ExitTimeout < 0 {
		return fmt.Errorf("config.exit_timeout must not be negative")
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return nil
}
