// ABOUTME: Publisher configuration loading and parsing for sigil
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete publisher configuration: which hub to talk to, which
// agent to publish, and where its blueprint and listing files live.
type Config struct {
	Hub     HubConfig     `yaml:"hub"`
	Agent   AgentConfig   `yaml:"agent"`
	Listing ListingConfig `yaml:"listing"`
	Logging LoggingConfig `yaml:"logging"`
}

// HubConfig holds the hub endpoint and per-request timing.
type HubConfig struct {
	Endpoint string `yaml:"endpoint"`

	RequestTimeout time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	RequestTimeoutRaw string `yaml:"request_timeout"`
}

// AgentConfig identifies the agent being published and points at its blueprint.
type AgentConfig struct {
	ID          string `yaml:"id"`
	DisplayName string `yaml:"display_name"`
	Description string `yaml:"description"`
	Blueprint   string `yaml:"blueprint"`
}

// ListingConfig points at the optional marketplace listing file.
type ListingConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a publisher configuration file and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded, and duration
// strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding
// environment variable values. Unset variables expand to the empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// parseDurations converts the raw duration strings into time.Duration values.
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Hub.RequestTimeoutRaw != "" {
		cfg.Hub.RequestTimeout, err = time.ParseDuration(cfg.Hub.RequestTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing request_timeout %q: %w", cfg.Hub.RequestTimeoutRaw, err)
		}
	}

	return nil
}

// Validate checks that all required configuration fields are present.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Hub.Endpoint == "" {
		return fmt.Errorf("hub.endpoint is required")
	}

	if c.Agent.ID == "" {
		return fmt.Errorf("agent.id is required")
	}

	if c.Agent.Blueprint == "" {
		return fmt.Errorf("agent.blueprint is required")
	}

	if c.Hub.RequestTimeout < 0 {
		return fmt.Errorf("hub.request_timeout must not be negative")
	}

	return nil
}
