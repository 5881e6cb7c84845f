// Package config holds the run settings shared by every package and the
// optional YAML file that supplies their defaults.
package config

import (
	"os"
	"runtime"
)

// Config is what the logger and the colouriser need to know about a run.
type Config struct {
	debug    bool
	noColors bool
}

// NewConfig creates a Config. A nil noColors picks the platform default.
func NewConfig(debug bool, noColors *bool) *Config {
	return &Config{debug: debug, noColors: plainOutput(noColors)}
}

// plainOutput honours an explicit choice, then NO_COLOR, then turns colours
// off on Windows consoles that would print escape codes literally.
func plainOutput(explicit *bool) bool {
	if explicit != nil {
		return *explicit
	}
	if v, ok := os.LookupEnv("NO_COLOR"); ok && v != "" {
		return true
	}
	return runtime.GOOS == "windows" && !virtualTerminal()
}

// Debug reports whether debug messages are printed.
func (c *Config) Debug() bool { return c.debug }

// NoColors reports whether output is plain text.
func (c *Config) NoColors() bool { return c.noColors }
