// Package config loads the driver core configuration from YAML, with environment variable
// overrides applied on top of the file.
package config

import (
	"errors"
	"fmt"
	"gopkg.in/yaml.v3"
	"os"
	"strconv"
	"time"
)

var ErrInvalidConfig = errors.New("invalid configuration")

const envPrefix = "ZWCORE_"

type Config struct {
	Registry    RegistryConfig    `yaml:"registry"`
	Liveness    LivenessConfig    `yaml:"liveness"`
	Persistence PersistenceConfig `yaml:"persistence"`
}

// RegistryConfig selects the source of the device configuration registry. Index takes
// precedence over Path, Bundled is used when neither is set.
type RegistryConfig struct {
	// Path is a directory of YAML device configuration files.
	Path string `yaml:"path"`
	// Index is a CBOR index snapshot written from a previously loaded registry.
	Index           string `yaml:"index"`
	Bundled         bool   `yaml:"bundled"`
	LoadConcurrency int    `yaml:"load_concurrency"`
}

type LivenessConfig struct {
	ProbeTimeout time.Duration `yaml:"probe_timeout"`
	ProbeRetries int           `yaml:"probe_retries"`
	// ProbeInterval enables periodic probing of listening nodes, zero disables it.
	ProbeInterval time.Duration `yaml:"probe_interval"`
}

type PersistenceConfig struct {
	Enabled bool `yaml:"enabled"`
}

func Default() *Config {
	return &Config{
		Registry: RegistryConfig{
			Bundled:         true,
			LoadConcurrency: 4,
		},
		Liveness: LivenessConfig{
			ProbeTimeout: 3 * time.Second,
			ProbeRetries: 3,
		},
		Persistence: PersistenceConfig{
			Enabled: true,
		},
	}
}

// Load reads defaults, then the YAML file at path, then environment overrides, and
// validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	cfg := Default()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv(envPrefix + "REGISTRY_PATH"); v != "" {
		cfg.Registry.Path = v
	}

	if v := os.Getenv(envPrefix + "REGISTRY_INDEX"); v != "" {
		cfg.Registry.Index = v
	}

	if v := os.Getenv(envPrefix + "PROBE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %sPROBE_TIMEOUT: %w", ErrInvalidConfig, envPrefix, err)
		}
		cfg.Liveness.ProbeTimeout = d
	}

	if v := os.Getenv(envPrefix + "PROBE_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %sPROBE_INTERVAL: %w", ErrInvalidConfig, envPrefix, err)
		}
		cfg.Liveness.ProbeInterval = d
	}

	if v := os.Getenv(envPrefix + "PROBE_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %sPROBE_RETRIES: %w", ErrInvalidConfig, envPrefix, err)
		}
		cfg.Liveness.ProbeRetries = n
	}

	return nil
}

func (c *Config) Validate() error {
	if c.Registry.Path == "" && c.Registry.Index == "" && !c.Registry.Bundled {
		return fmt.Errorf("%w: registry: no source, set path, index or bundled", ErrInvalidConfig)
	}

	if c.Registry.LoadConcurrency < 0 {
		return fmt.Errorf("%w: registry.load_concurrency must not be negative", ErrInvalidConfig)
	}

	if c.Liveness.ProbeTimeout <= 0 {
		return fmt.Errorf("%w: liveness.probe_timeout must be positive", ErrInvalidConfig)
	}

	if c.Liveness.ProbeRetries < 1 {
		return fmt.Errorf("%w: liveness.probe_retries must be at least 1", ErrInvalidConfig)
	}

	if c.Liveness.ProbeInterval < 0 {
		return fmt.Errorf("%w: liveness.probe_interval must not be negative", ErrInvalidConfig)
	}

	return nil
}
