package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// ErrMissingAPIKey is a configuration error, not a pipeline error: it must
// be detected before the first generation stage runs.
var ErrMissingAPIKey = errors.New("OPENAI_API_KEY is not set")

const DefaultModel = "gpt-4.1-nano-2025-04-14"

// Config holds the generation configuration, environment-first.
type Config struct {
	OpenAIAPIKey string  `env:"OPENAI_API_KEY"`
	Model        string  `env:"AIROGUE_MODEL"`
	Temperature  float64 `env:"AIROGUE_TEMPERATURE" envDefault:"1.0"`
	Concurrency  int     `env:"AIROGUE_CONCURRENCY" envDefault:"1"`
	TimeoutSecs  int     `env:"AIROGUE_TIMEOUT_SECS" envDefault:"120"`
	Debug        bool    `env:"DEBUG"`
}

// Load parses configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks value ranges. Credential presence is checked separately
// with RequireAPIKey so flag overrides can apply first.
func (c *Config) Validate() error {
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature %.2f out of range [0.0, 2.0]", c.Temperature)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("model identifier is empty")
	}
	return nil
}

// RequireAPIKey returns ErrMissingAPIKey when no credential is configured.
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.OpenAIAPIKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// Settings is an optional YAML file overriding generation knobs, so a run
// can be reproduced without re-exporting environment variables.
type Settings struct {
	Model       string   `yaml:"model"`
	Temperature *float64 `yaml:"temperature"`
	Concurrency int      `yaml:"concurrency"`
}

// LoadSettings reads a YAML settings file.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings file: %w", err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse settings file: %w", err)
	}

	return &s, nil
}

// Apply overlays non-zero settings onto the config.
func (c *Config) Apply(s *Settings) {
	if s == nil {
		return
	}
	if s.Model != "" {
		c.Model = s.Model
	}
	if s.Temperature != nil {
		c.Temperature = *s.Temperature
	}
	if s.Concurrency > 0 {
		c.Concurrency = s.Concurrency
	}
}
