package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds the application configuration
type Config struct {
	Resize Resize `json:"resize"`
	Output Output `json:"output"`
}

// Resize holds the defaults for the resize pipeline
type Resize struct {
	Method                string `json:"method"`
	MaxWidth              int    `json:"max_width"`
	MaxHeight             int    `json:"max_height"`
	Quality               int    `json:"quality"`
	TransparencyThreshold uint32 `json:"transparency_threshold"`
}

// Output holds configuration for output generation
type Output struct {
	DefaultFormat string `json:"default_format"`
	OutputDir     string `json:"output_dir"`
	Prefix        string `json:"prefix"`
	Suffix        string `json:"suffix"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Resize: Resize{
			Method:                "proportionate",
			MaxWidth:              510,
			MaxHeight:             580,
			Quality:               75,
			TransparencyThreshold: 1279,
		},
		Output: Output{
			DefaultFormat: "",
			OutputDir:     "./output",
			Prefix:        "",
			Suffix:        "_resized",
		},
	}
}

// LoadFromFile loads configuration from a JSON file
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Resize.Quality < 1 || c.Resize.Quality > 100 {
		return fmt.Errorf("resize.quality must be between 1 and 100")
	}

	if c.Resize.MaxWidth < 1 && c.Resize.MaxHeight < 1 {
		return fmt.Errorf("resize needs a max_width or max_height")
	}

	if c.Resize.Method == "" {
		return fmt.Errorf("resize.method cannot be empty")
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "imagefit", "config.json")
}
