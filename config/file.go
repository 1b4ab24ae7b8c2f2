package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadConfigFile loads configuration from a YAML file. Returns nil if the
// file doesn't exist (not an error). Returns error if the file exists but
// cannot be parsed.
func LoadConfigFile(path string) (*Config, error) {
	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil // File doesn't exist -- not an error
	}

	// Read file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}
