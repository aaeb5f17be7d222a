// Package config loads and validates the optional .runpane YAML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/deixis/runpane/internal/runner"
)

// Default values for runner and surface configuration.
const (
	DefaultTimeout     = 5 * time.Minute
	DefaultMaxOutput   = 1 << 20 // 1 MB
	DefaultSurfaceName = "output"
	DefaultHistorySize = 5
)

// Config holds the parsed .runpane configuration.
// All fields are optional; zero values represent defaults.
type Config struct {
	Version      int           `yaml:"version"`
	RawCommand   string        `yaml:"command"`    // executable name or absolute path
	Args         []string      `yaml:"args"`       // argv prefix inserted before the target file
	RawTimeout   string        `yaml:"timeout"`    // e.g. "5m", "30s"
	RawMaxOutput int           `yaml:"max_output"` // bytes
	RawSurface   string        `yaml:"surface"`    // surface name
	History      HistoryConfig `yaml:"history"`
}

// HistoryConfig controls the in-memory run history.
type HistoryConfig struct {
	Size int `yaml:"size"` // LRU capacity
}

// Command returns the configured command name or the built-in default.
func (c *Config) Command() string {
	if c.RawCommand != "" {
		return c.RawCommand
	}
	return runner.DefaultCommand
}

// Spec builds the command spec from the configuration. A non-empty override
// replaces the configured command name; extraArgs are appended after the
// configured args.
func (c *Config) Spec(override string, extraArgs []string) runner.CommandSpec {
	path := c.Command()
	if override != "" {
		path = override
	}
	args := make([]string, 0, len(c.Args)+len(extraArgs))
	args = append(args, c.Args...)
	args = append(args, extraArgs...)
	return runner.CommandSpec{Path: path, Args: args}
}

// Timeout returns the configured timeout or the default.
func (c *Config) Timeout() time.Duration {
	if c.RawTimeout != "" {
		d, err := time.ParseDuration(c.RawTimeout)
		if err == nil && d > 0 {
			return d
		}
	}
	return DefaultTimeout
}

// MaxOutputBytes returns the configured max output size or the default.
func (c *Config) MaxOutputBytes() int {
	if c.RawMaxOutput > 0 {
		return c.RawMaxOutput
	}
	return DefaultMaxOutput
}

// SurfaceName returns the configured surface name or the default.
func (c *Config) SurfaceName() string {
	if c.RawSurface != "" {
		return c.RawSurface
	}
	return DefaultSurfaceName
}

// HistorySize returns the configured history capacity or the default.
func (c *Config) HistorySize() int {
	if c.History.Size > 0 {
		return c.History.Size
	}
	return DefaultHistorySize
}

// LoadResult holds the parsed config and the discovered project root.
type LoadResult struct {
	Config *Config
	Root   string // directory containing .runpane; falls back to workspace
}

// Load reads the .runpane file from the project root. The root is discovered
// by walking upward from workspace looking for a .runpane file. If none
// exists, a default Config is returned with workspace as the root.
func Load(workspace string) (*LoadResult, error) {
	root, err := findProjectRoot(workspace)
	if err != nil {
		// No .runpane anywhere above; use workspace with defaults.
		return &LoadResult{Config: &Config{}, Root: workspace}, nil
	}

	path := filepath.Join(root, ".runpane")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading .runpane: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing .runpane: %w", err)
	}
	return &LoadResult{Config: cfg, Root: root}, nil
}

// findProjectRoot walks upward from dir looking for a directory containing
// a .runpane file.
func findProjectRoot(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, ".runpane")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf(".runpane not found")
		}
		dir = parent
	}
}
