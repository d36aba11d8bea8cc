// Package config loads and validates SDK channel configuration from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/logpack/logpack-go/event"
)

// Transport kinds a channel can be configured with.
const (
	TransportMemory = "memory"
	TransportHTTP   = "http"
)

// Config describes one log channel.
type Config struct {
	// Scope is the channel name stamped on every event.
	Scope string `yaml:"scope"`

	// MinLevel is the least severe level the channel forwards. Defaults
	// to DEBUG.
	MinLevel string `yaml:"min_level"`

	// Filter is an optional JMESPath expression; events it does not
	// match are dropped.
	Filter string `yaml:"filter"`

	// Transport selects the delivery mechanism, TransportMemory or
	// TransportHTTP.
	Transport string `yaml:"transport"`

	// Endpoint is the URL events are posted to. Required for the HTTP
	// transport.
	Endpoint string `yaml:"endpoint"`
}

// Load parses a YAML document into a validated Config.
func Load(p []byte) (Config, error) {
	var c Config
	if err := yaml.Unmarshal(p, &c); err != nil {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}
	if c.MinLevel == "" {
		c.MinLevel = event.LevelDebug.String()
	}
	if c.Transport == "" {
		c.Transport = TransportMemory
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// LoadFile reads and parses a YAML config file.
func LoadFile(path string) (Config, error) {
	p, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Load(p)
}

// Validate checks field consistency.
func (c Config) Validate() error {
	if _, err := event.ParseLevel(c.MinLevel); err != nil {
		return fmt.Errorf("config: min_level: %w", err)
	}
	switch c.Transport {
	case TransportMemory:
	case TransportHTTP:
		if c.Endpoint == "" {
			return fmt.Errorf("config: http transport requires an endpoint")
		}
	default:
		return fmt.Errorf("config: unknown transport %q", c.Transport)
	}
	return nil
}

// Level returns the parsed MinLevel. Validate must have passed.
func (c Config) Level() event.Level {
	l, _ := event.ParseLevel(c.MinLevel)
	return l
}
