package bootstrap

import (
	"fmt"

	"github.com/kbukum/opkit/apiservice"
	"github.com/kbukum/opkit/config"
	"github.com/kbukum/opkit/observability"
	"github.com/kbukum/opkit/redis"
	"github.com/kbukum/opkit/server"
)

// Config is the interface constraint for application configuration types.
// Any struct that embeds AppConfig (value embedding) satisfies it through
// promoted methods.
//
// Example:
//
//	type AuthConfig struct {
//	    bootstrap.AppConfig `yaml:",inline" mapstructure:",squash"`
//	    TokenTTL time.Duration `yaml:"token_ttl" mapstructure:"token_ttl"`
//	}
//
//	app, err := bootstrap.NewApp(&cfg)
type Config interface {
	GetAppConfig() *AppConfig
	ApplyDefaults()
	Validate() error
}

// AppConfig is the configuration of an opkit HTTP service.
type AppConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Redis         redis.Config         `yaml:"redis" mapstructure:"redis"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
	APIServices   apiservice.Config    `yaml:"api_services" mapstructure:"api_services"`
}

// GetAppConfig returns c. Embedding structs inherit it.
func (c *AppConfig) GetAppConfig() *AppConfig {
	return c
}

// ApplyDefaults applies the defaults of every section.
func (c *AppConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Redis.ApplyDefaults()
	c.Observability.ApplyDefaults()
	c.APIServices.ApplyDefaults()
}

// Validate validates every section.
func (c *AppConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Redis.Validate(); err != nil {
		return fmt.Errorf("config.redis: %w", err)
	}
	if err := c.Observability.Validate(); err != nil {
		return err
	}
	if err := c.APIServices.Validate(); err != nil {
		return fmt.Errorf("config.api_services: %w", err)
	}
	return nil
}
