package apiservice

import (
	"fmt"
	"os"

	"github.com/kbukum/opkit/httpclient"
)

// ServiceConfig points at one remote service and its API description.
type ServiceConfig struct {
	URL      string `yaml:"url" mapstructure:"url"`
	SpecFile string `yaml:"spec_file" mapstructure:"spec_file"`
}

// Config holds the dispatcher configuration.
type Config struct {
	Client   httpclient.Config        `yaml:"client" mapstructure:"client"`
	Services map[string]ServiceConfig `yaml:"services" mapstructure:"services"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	c.Client.ApplyDefaults()
}

// Validate checks that every service has a URL and a description file.
func (c *Config) Validate() error {
	for name, svc := range c.Services {
		if svc.URL == "" {
			return fmt.Errorf("apiservice: services.%s.url is required", name)
		}
		if svc.SpecFile == "" {
			return fmt.Errorf("apiservice: services.%s.spec_file is required", name)
		}
	}
	return c.Client.Validate()
}

// Sources reads every configured description file.
func (c *Config) Sources() (map[string]SpecSource, error) {
	sources := make(map[string]SpecSource, len(c.Services))
	for name, svc := range c.Services {
		raw, err := os.ReadFile(svc.SpecFile)
		if err != nil {
			return nil, fmt.Errorf("apiservice: read %s description: %w", name, err)
		}
		sources[name] = SpecSource{URL: svc.URL, RawSpec: raw}
	}
	return sources, nil
}

// NewFromConfig builds the HTTP client, creates the dispatcher and registers
// every configured service.
func NewFromConfig(cfg Config, opts ...Option) (*Service, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client, err := httpclient.New(cfg.Client)
	if err != nil {
		return nil, err
	}
	sources, err := cfg.Sources()
	if err != nil {
		return nil, err
	}
	svc := New(client, opts...)
	if err := svc.RegisterSpecs(sources); err != nil {
		return nil, err
	}
	return svc, nil
}
