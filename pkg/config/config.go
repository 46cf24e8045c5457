package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration values
type Config struct {
	CRMBaseURL        string `env:"CRM_BASE_URL"`
	CRMAPIKey         string `env:"CRM_API_KEY"`
	Debug             bool   `env:"RELAY_DEBUG" envDefault:"false"`
	StrictValidation  bool   `env:"RELAY_STRICT_VALIDATION" envDefault:"true"`
	StatusPassthrough bool   `env:"RELAY_STATUS_PASSTHROUGH" envDefault:"false"`
	Port              string `env:"PORT" envDefault:"8080"`
}

// LoadConfig reads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Missing returns the names of required variables that are unset.
// A misconfigured deployment answers every caller with an actionable
// 500 naming these, rather than crashing at startup.
func (c *Config) Missing() []string {
	var missing []string
	if c.CRMBaseURL == "" {
		missing = append(missing, "CRM_BASE_URL")
	}
	if c.CRMAPIKey == "" {
		missing = append(missing, "CRM_API_KEY")
	}
	return missing
}
