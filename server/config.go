package server

import (
	"fmt"
	"time"

	"github.com/kbukum/opkit/server/endpoint"
	"github.com/kbukum/opkit/server/middleware"
)

// Config holds HTTP server configuration.
type Config struct {
	Host         string        `yaml:"host" mapstructure:"host"`
	Port         int           `yaml:"port" mapstructure:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
	MaxBodySize  string        `yaml:"max_body_size" mapstructure:"max_body_size"` // e.g. "10MB"
	// Tracing wraps the handler so every inbound request starts a server span.
	Tracing bool `yaml:"tracing" mapstructure:"tracing"`

	CORS           middleware.CORSConfig      `yaml:"cors" mapstructure:"cors"`
	AllowedMethods []string                   `yaml:"allowed_methods" mapstructure:"allowed_methods"`
	Redaction      middleware.RedactionConfig `yaml:"redaction" mapstructure:"redaction"`
	APIKey         middleware.APIKeyConfig    `yaml:"api_key" mapstructure:"api_key"`
	// DocsFile is the API description served by the docs endpoints. Empty
	// disables them.
	DocsFile string `yaml:"docs_file" mapstructure:"docs_file"`
}

// ApplyDefaults sets sensible default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 15 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 15 * time.Second
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60 * time.Second
	}
	if c.MaxBodySize == "" {
		c.MaxBodySize = "10MB"
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"*"}
	}
	if len(c.CORS.AllowedMethods) == 0 {
		c.CORS.AllowedMethods = append([]string(nil), middleware.DefaultAllowedMethods...)
	}
	if len(c.CORS.AllowedHeaders) == 0 {
		c.CORS.AllowedHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "Api-Key", middleware.RequestIDHeader}
	}
	if len(c.AllowedMethods) == 0 {
		c.AllowedMethods = append([]string(nil), middleware.DefaultAllowedMethods...)
	}
	if c.APIKey.PublicPaths == nil {
		c.APIKey.PublicPaths = []string{endpoint.HealthPath, endpoint.ReadyPath, endpoint.DocsPath, endpoint.RawDocsPath}
	}
	c.Redaction.ApplyDefaults()
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535 (got: %d)", c.Port)
	}
	if c.ReadTimeout < 0 {
		return fmt.Errorf("server.read_timeout must be non-negative (got: %s)", c.ReadTimeout)
	}
	if c.WriteTimeout < 0 {
		return fmt.Errorf("server.write_timeout must be non-negative (got: %s)", c.WriteTimeout)
	}
	if c.IdleTimeout < 0 {
		return fmt.Errorf("server.idle_timeout must be non-negative (got: %s)", c.IdleTimeout)
	}
	if c.APIKey.Enabled {
		for _, p := range c.APIKey.PublicPaths {
			if p == "" || p[0] != '/' {
				return fmt.Errorf("server.api_key.public_paths entries must start with '/' (got: %q)", p)
			}
		}
	}
	return nil
}
