package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/natefinch/atomic"
)

// Config holds the defaults a user does not want to repeat on every
// invocation. Flags always win over config values.
type Config struct {
	LogLevel   string `json:"log_level"`
	Order      int    `json:"default_order"`
	Sentences  int    `json:"default_sentences"`
	Paragraphs int    `json:"default_paragraphs"`
	ModelName  string `json:"model_name"`
}

// DefaultConfig creates a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:   "info",
		Order:      1,
		Sentences:  3,
		Paragraphs: 1,
		ModelName:  "default",
	}
}

// loadConfig reads the configuration from a JSON file at the given path.
// If the file doesn't exist, it creates one with default values. An empty
// path just yields the defaults.
func loadConfig(path string) (*Config, error) {
	config := DefaultConfig()
	if path == "" {
		return config, nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			var data []byte
			data, err = json.MarshalIndent(config, "", "  ")
			if err != nil {
				return nil, fmt.Errorf("failed to marshal default config: %w", err)
			}
			if err = atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
				// Keep going with defaults; the config file is a convenience.
				fmt.Fprintf(os.Stderr, "warning: failed to write default config file: %v\n", err)
			}
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err = json.Unmarshal(file, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return config, nil
}

// loadConfigOrExit is the command-path wrapper around loadConfig.
func loadConfigOrExit(path string) *Config {
	config, err := loadConfig(path)
	if err != nil {
		exitErrf("could not load configuration: %v", err)
	}
	return config
}
