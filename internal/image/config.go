package image

import "time"

// Config controls generation, retries and validation
type Config struct {
	Endpoint      string        // Base URL of the image endpoint
	Model         string        // Endpoint model name
	Width         int           // Image width in pixels
	Height        int           // Image height in pixels
	Timeout       time.Duration // Per-request timeout
	MaxRetries    int           // Attempts before falling back
	RetryDelay    time.Duration // Delay unit; attempt n waits n*RetryDelay
	MaxRetryDelay time.Duration // Upper bound for a single wait
	MinSizeBytes  int64         // Smaller payloads are treated as placeholders
	MaxSizeBytes  int64         // Larger payloads are rejected
}

// DefaultConfig returns the settings used for child-friendly 256px cards
func DefaultConfig() *Config {
	return &Config{
		Endpoint:      "https://image.pollinations.ai",
		Model:         "flux",
		Width:         256,
		Height:        256,
		Timeout:       15 * time.Second,
		MaxRetries:    3,
		RetryDelay:    time.Second,
		MaxRetryDelay: 5 * time.Second,
		MinSizeBytes:  100,
		MaxSizeBytes:  500000,
	}
}

// backoff returns the wait before the next attempt after attempt n (1-based)
func (c *Config) backoff(attempt int) time.Duration {
	d := c.RetryDelay * time.Duration(attempt)
	if c.MaxRetryDelay > 0 && d > c.MaxRetryDelay {
		d = c.MaxRetryDelay
	}
	return d
}

func (c *Config) withDefaults() *Config {
	def := DefaultConfig()
	if c == nil {
		return def
	}
	cfg := *c
	if cfg.Endpoint == "" {
		cfg.Endpoint = def.Endpoint
	}
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.Width <= 0 {
		cfg.Width = def.Width
	}
	if cfg.Height <= 0 {
		cfg.Height = def.Height
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = def.MaxRetries
	}
	if cfg.MaxSizeBytes <= 0 {
		cfg.MaxSizeBytes = def.MaxSizeBytes
	}
	return &cfg
}
