// Package config loads service configuration with Viper.
//
// Values are read from a YAML or JSON config file, then from a .env file
// loaded with godotenv, then from environment variables carrying the
// OPKIT_ prefix. A double underscore separates nested keys:
//
//	OPKIT_ENVIRONMENT=production
//	OPKIT_SERVER__PORT=9090
//
// # Usage
//
//	cfg, err := config.Load[AuthConfig]("auth-service")
package config
