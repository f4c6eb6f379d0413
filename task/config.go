package task

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config holds runtime-wide defaults applied to every task spawned under a
// Runtime built with it, mirroring kernel/config.go's
// Config/DefaultConfig/Merge/LoadConfig shape.
type Config struct {
	// DefaultBlockParent seeds Options.BlockParent for tasks spawned
	// without an explicit WithBlockParent.
	DefaultBlockParent bool `json:"default_block_parent,omitempty"`

	// DefaultIgnoreChildErrors seeds Options.IgnoreChildErrors.
	DefaultIgnoreChildErrors bool `json:"default_ignore_child_errors,omitempty"`

	// ObserverName names an observer ("noop" or "slog"). It is loaded and
	// merged like the other fields, but NewRuntime/WithConfig do not read
	// it: a Runtime's observer is set with WithObserver.
	ObserverName string `json:"observer,omitempty"`
}

// DefaultConfig returns a Config with every task left to its own defaults
// and a no-op observer.
func DefaultConfig() Config {
	return Config{ObserverName: "noop"}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.DefaultBlockParent {
		c.DefaultBlockParent = true
	}
	if source.DefaultIgnoreChildErrors {
		c.DefaultIgnoreChildErrors = true
	}
	if source.ObserverName != "" {
		c.ObserverName = source.ObserverName
	}
}

// LoadConfig reads a JSON config file, merges it with defaults, and returns
// the resulting Config.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}

// baseOptions returns the Options a newly spawned task starts from before
// any per-spawn Option is applied.
func (c Config) baseOptions() Options {
	return Options{
		BlockParent:       c.DefaultBlockParent,
		IgnoreChildErrors: c.DefaultIgnoreChildErrors,
	}
}
