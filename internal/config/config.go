package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables consulted when the config file leaves a field empty.
const (
	EnvAPIKey  = "API_KEY"
	EnvBaseURL = "BASE_URL"
)

// Config holds settings for the docindex CLI and the stub server.
type Config struct {
	Client  ClientConfig  `yaml:"client"`
	Stub    StubConfig    `yaml:"stub"`
	Logging LoggingConfig `yaml:"logging"`
}

// ClientConfig holds API client settings.
type ClientConfig struct {
	BaseURL    string `yaml:"base_url"`
	APIKey     string `yaml:"api_key"`
	TimeoutSec int    `yaml:"timeout_sec"` // 0 = no timeout
}

// Timeout returns the HTTP client timeout.
func (c ClientConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// StubConfig holds settings for the local stub server.
type StubConfig struct {
	Port            int      `yaml:"port"`
	APIKeys         []string `yaml:"api_keys"`
	ReadTimeoutSec  int      `yaml:"read_timeout_sec"`
	WriteTimeoutSec int      `yaml:"write_timeout_sec"`
	ShutdownSec     int      `yaml:"shutdown_timeout_sec"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// Load reads configuration from a YAML file. An empty path skips the file.
// Either way, API_KEY and BASE_URL fill empty client fields and defaults are applied.
func Load(path string) (Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}

		// Substitute env variables of the form ${VAR}
		data = expandEnvVars(data)

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.ApplyDefaults()
	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// DefaultPath returns config/<env>.yaml if it exists, otherwise "".
func DefaultPath(env string) string {
	path := filepath.Join("config", env+".yaml")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

func (c *Config) applyEnv() {
	if c.Client.APIKey == "" {
		c.Client.APIKey = os.Getenv(EnvAPIKey)
	}
	if c.Client.BaseURL == "" {
		c.Client.BaseURL = os.Getenv(EnvBaseURL)
	}
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Stub.Port <= 0 {
		c.Stub.Port = 8080
	}
	if c.Stub.ReadTimeoutSec <= 0 {
		c.Stub.ReadTimeoutSec = 10
	}
	if c.Stub.WriteTimeoutSec <= 0 {
		c.Stub.WriteTimeoutSec = 10
	}
	if c.Stub.ShutdownSec <= 0 {
		c.Stub.ShutdownSec = 10
	}
}

// ValidateClient checks the settings the CLI needs.
func (c *Config) ValidateClient() error {
	var errs []error
	if c.Client.APIKey == "" {
		errs = append(errs, fmt.Errorf("client.api_key is required (or set %s)", EnvAPIKey))
	}
	if c.Client.BaseURL == "" {
		errs = append(errs, fmt.Errorf("client.base_url is required (or set %s)", EnvBaseURL))
	}
	if c.Client.TimeoutSec < 0 {
		errs = append(errs, fmt.Errorf("client.timeout_sec must not be negative, got %d", c.Client.TimeoutSec))
	}
	return errors.Join(errs...)
}

// ValidateStub checks the settings the stub server needs.
func (c *Config) ValidateStub() error {
	if c.Stub.Port <= 0 || c.Stub.Port > 65535 {
		return fmt.Errorf("stub.port must be between 1 and 65535, got %d", c.Stub.Port)
	}
	return nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
