package cache

import (
	"fmt"
	"os"
)

// Config holds cache storage parameters.
type Config struct {
	Path string `toml:"path"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Path string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Path != "" {
		c.Path = overlay.Path
	}
}

func (c *Config) loadDefaults() {
	if c.Path == "" {
		c.Path = "data/cache"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Path != "" {
		if v := os.Getenv(env.Path); v != "" {
			c.Path = v
		}
	}
}

func (c *Config) validate() error {
	if c.Path == "" {
		return fmt.Errorf("path required")
	}
	return nil
}
