package llm

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds provider connection and model selection parameters.
type Config struct {
	BaseURL         string `toml:"base_url"`
	Token           string `toml:"token"`
	CompletionModel string `toml:"completion_model"`
	AggregateModel  string `toml:"aggregate_model"`
	EmbeddingModel  string `toml:"embedding_model"`
	BatchSize       int    `toml:"batch_size"`
	RequestTimeout  string `toml:"request_timeout"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	BaseURL         string
	Token           string
	CompletionModel string
	AggregateModel  string
	EmbeddingModel  string
	BatchSize       string
	RequestTimeout  string
}

// RequestTimeoutDuration returns RequestTimeout as a time.Duration.
func (c *Config) RequestTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.RequestTimeout)
	return d
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
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.Token != "" {
		c.Token = overlay.Token
	}
	if overlay.CompletionModel != "" {
		c.CompletionModel = overlay.CompletionModel
	}
	if overlay.AggregateModel != "" {
		c.AggregateModel = overlay.AggregateModel
	}
	if overlay.EmbeddingModel != "" {
		c.EmbeddingModel = overlay.EmbeddingModel
	}
	if overlay.BatchSize != 0 {
		c.BatchSize = overlay.BatchSize
	}
	if overlay.RequestTimeout != "" {
		c.RequestTimeout = overlay.RequestTimeout
	}
}

func (c *Config) loadDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.openai.com/v1"
	}
	if c.CompletionModel == "" {
		c.CompletionModel = "gpt-4.1"
	}
	if c.AggregateModel == "" {
		c.AggregateModel = "deepseek-reasoner"
	}
	if c.EmbeddingModel == "" {
		c.EmbeddingModel = "text-embedding-3-large"
	}
	if c.BatchSize == 0 {
		c.BatchSize = 20
	}
	if c.RequestTimeout == "" {
		c.RequestTimeout = "5m"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.BaseURL != "" {
		if v := os.Getenv(env.BaseURL); v != "" {
			c.BaseURL = v
		}
	}
	if env.Token != "" {
		if v := os.Getenv(env.Token); v != "" {
			c.Token = v
		}
	}
	if env.CompletionModel != "" {
		if v := os.Getenv(env.CompletionModel); v != "" {
			c.CompletionModel = v
		}
	}
	if env.AggregateModel != "" {
		if v := os.Getenv(env.AggregateModel); v != "" {
			c.AggregateModel = v
		}
	}
	if env.EmbeddingModel != "" {
		if v := os.Getenv(env.EmbeddingModel); v != "" {
			c.EmbeddingModel = v
		}
	}
	if env.BatchSize != "" {
		if v := os.Getenv(env.BatchSize); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.BatchSize = n
			}
		}
	}
	if env.RequestTimeout != "" {
		if v := os.Getenv(env.RequestTimeout); v != "" {
			c.RequestTimeout = v
		}
	}
}

func (c *Config) validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url required")
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("invalid batch_size: %d", c.BatchSize)
	}
	if _, err := time.ParseDuration(c.RequestTimeout); err != nil {
		return fmt.Errorf("invalid request_timeout: %w", err)
	}
	return nil
}
