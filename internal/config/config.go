// Package config loads server and tool settings from config.yaml, .env and
// the environment.
package config

import (
	"errors"
	"fmt"
	"time"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Database DatabaseConfig `mapstructure:"database"`
	Quiz     QuizConfig     `mapstructure:"quiz"`
}

type ServerConfig struct {
	Port        int      `mapstructure:"port"`
	CORSOrigins []string `mapstructure:"cors_origins"`
	AdminSecret string   `mapstructure:"admin_secret"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "text" or "json"
}

type CatalogConfig struct {
	Source     string `mapstructure:"source"`      // "embedded" or "postgres"
	DomainFile string `mapstructure:"domain_file"` // optional override of the embedded domains.yaml
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type QuizConfig struct {
	TokenSecret string        `mapstructure:"token_secret"`
	TokenTTL    time.Duration `mapstructure:"token_ttl"`
}

const (
	SourceEmbedded = "embedded"
	SourcePostgres = "postgres"
)

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format %q must be text or json", c.Log.Format))
	}
	switch c.Catalog.Source {
	case SourceEmbedded:
	case SourcePostgres:
		if c.Database.URL == "" {
			errs = append(errs, errors.New("database.url is required when catalog.source is postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("catalog.source %q must be embedded or postgres", c.Catalog.Source))
	}
	if c.Quiz.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("quiz.token_ttl %s must be positive", c.Quiz.TokenTTL))
	}
	return errors.Join(errs...)
}
