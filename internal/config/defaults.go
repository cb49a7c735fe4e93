package config

import (
	"path/filepath"
	"time"
)

// FileName is the default configuration file.
const FileName = ".ecoform.yml"

// DefaultSession names the session used when none is given.
const DefaultSession = "default"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BackendURL:    "http://localhost:5000",
		DataDir:       ".ecoform",
		Session:       DefaultSession,
		ReloadDelayMS: 1000,
		MaxDraws:      1000,
		Server: ServerConfig{
			Port:               8080,
			SessionIdleMinutes: 30,
		},
		Images: ImagesConfig{
			BaseURL: "/static/images",
		},
	}
}

// DBPath returns the SQLite database location inside DataDir.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "ecoform.db")
}

// ReloadDelay returns the post-submit reload delay.
func (c *Config) ReloadDelay() time.Duration {
	return time.Duration(c.ReloadDelayMS) * time.Millisecond
}

// ComputeTimeout returns the backend request timeout; zero means none.
func (c *Config) ComputeTimeout() time.Duration {
	return time.Duration(c.Compute.TimeoutSeconds) * time.Second
}

// SessionIdle returns how long an unused HTTP session stays in memory.
func (c *Config) SessionIdle() time.Duration {
	return time.Duration(c.Server.SessionIdleMinutes) * time.Minute
}
