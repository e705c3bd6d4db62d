// Package config defines the client configuration and its file loader.
//
// Configuration is a small YAML document:
//
//	serverAddress: broker:55555
//	debug: true
//	signalPaths:
//	  - Vehicle.Speed
//	  - Vehicle.Cabin.Temperature
//
// A Config is immutable after loading; the client takes it by value.
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the client configuration.
type Config struct {
	// ServerAddress is the broker endpoint (host:port).
	ServerAddress string `yaml:"serverAddress"`

	// Debug enables verbose protocol logging in the bundled tools.
	Debug bool `yaml:"debug"`

	// SignalPaths lists the entry paths SubscribeAll subscribes to,
	// in order. Duplicates are subscribed at most once.
	SignalPaths []string `yaml:"signalPaths"`
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.ServerAddress == "" {
		return fmt.Errorf("serverAddress is required")
	}
	for i, p := range c.SignalPaths {
		if p == "" {
			return fmt.Errorf("signalPaths[%d] is empty", i)
		}
	}
	return nil
}

// Load reads and validates a configuration file.
// Malformed or invalid files return an error and no partial Config.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates configuration bytes.
// Unknown fields are rejected so typos fail loudly.
func Parse(data []byte) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
