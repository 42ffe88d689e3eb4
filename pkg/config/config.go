// Package config loads the engine configuration from a YAML file, applying
// defaults for everything the file leaves out.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Browser holds browser/session settings.
type Browser struct {
	Headless       bool    `yaml:"headless"`
	ViewportWidth  int     `yaml:"viewport_width"`
	ViewportHeight int     `yaml:"viewport_height"`
	TimeoutMs      float64 `yaml:"timeout_ms"`
}

// Planner holds AI planning settings. The API key is never read from the
// file; it comes from the OPENAI_API_KEY environment variable.
type Planner struct {
	Model       string `yaml:"model"`
	BaseURL     string `yaml:"base_url"`
	TokenBudget int    `yaml:"token_budget"`
}

// Config is the full engine configuration.
type Config struct {
	// TargetURL is the base URL scenarios run against.
	TargetURL string `yaml:"target_url"`

	// AllowedHosts are glob patterns for hosts navigation may reach. Empty
	// leaves navigation unrestricted.
	AllowedHosts []string `yaml:"allowed_hosts"`

	// GoldenSetPath points to a YAML file of curated scenario overrides.
	GoldenSetPath string `yaml:"golden_set_path"`

	// MaxStepRetries is how many times a failed step is retried.
	MaxStepRetries int `yaml:"max_step_retries"`

	Browser Browser `yaml:"browser"`
	Planner Planner `yaml:"planner"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		MaxStepRetries: 1,
		Browser: Browser{
			Headless:       true,
			ViewportWidth:  1280,
			ViewportHeight: 720,
			TimeoutMs:      10000,
		},
		Planner: Planner{
			Model:       "gpt-4o",
			TokenBudget: 6000,
		},
	}
}

// Load reads a YAML config file over the defaults. A missing field keeps its
// default; a missing file is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.TargetURL == "" {
		return fmt.Errorf("config: target_url is required")
	}
	if c.MaxStepRetries < 0 {
		return fmt.Errorf("config: max_step_retries must not be negative")
	}
	if c.Browser.ViewportWidth <= 0 || c.Browser.ViewportHeight <= 0 {
		return fmt.Errorf("config: viewport dimensions must be positive")
	}
	return nil
}
