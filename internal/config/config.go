// Package config loads the tool configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/virtadm/vms/internal/output"
)

// Config holds the settings read from the configuration file. Everything is
// optional; flags and environment variables take precedence over it.
type Config struct {
	// Connect is the libvirt connection URI.
	Connect string `yaml:"connect,omitempty"`
	// Format is the default output format (table or json).
	Format string `yaml:"format,omitempty"`
}

// Path returns the configuration file location, config.yaml under the
// user's vms config directory ($XDG_CONFIG_HOME/vms or ~/.config/vms).
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(dir, "vms", "config.yaml"), nil
}

// Load reads the configuration from path. A missing file is not an error,
// it yields an empty configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Format != "" {
		if err := output.ValidateFormat(c.Format); err != nil {
			return err
		}
	}
	return nil
}
