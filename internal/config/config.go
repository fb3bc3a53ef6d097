// Package config loads the shell's persistent settings (~/.aisha-shell/) and
// its startup rc file (~/.aisharc), the way the teacher's config package
// loads a single YAML file, extended with the rc-file sourcing spec.md's
// external-interfaces section calls for.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the persistent, YAML-backed shell configuration.
type Config struct {
	Theme             string `yaml:"theme"`
	HistorySize       int    `yaml:"history_size"`
	MaxMemoryBufferMB int    `yaml:"max_memory_buffer_mb"`
}

// DefaultMaxMemoryBufferMB bounds how large a heredoc body the shell will
// hold in memory; a longer body is refused with an error.
const DefaultMaxMemoryBufferMB = 100

// ConfigError wraps a failure to load or persist configuration.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string { return fmt.Sprintf("%s: %v", e.Path, e.Err) }
func (e *ConfigError) ExitCode() int { return 1 }
func (e *ConfigError) Unwrap() error { return e.Err }

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		Theme:             "auto",
		HistorySize:       1000,
		MaxMemoryBufferMB: DefaultMaxMemoryBufferMB,
	}
}

// ConfigDir returns ~/.aisha-shell.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".aisha-shell"), nil
}

// ConfigPath returns ~/.aisha-shell/config.yaml.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// HistoryPath returns ~/.aisha-shell/history, the file github.com/chzyer/readline
// persists line history to.
func HistoryPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history"), nil
}

// RCPath returns ~/.aisharc, the startup script sourced once at launch.
func RCPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".aisharc"), nil
}

// Load reads ~/.aisha-shell/config.yaml, falling back to Default() when it
// doesn't exist.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err != nil {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, &ConfigError{Path: path, Err: err}
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	return cfg, nil
}

// Save writes cfg to ~/.aisha-shell/config.yaml, creating the directory if
// needed.
func Save(cfg *Config) error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return &ConfigError{Path: dir, Err: err}
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return &ConfigError{Path: path, Err: err}
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return &ConfigError{Path: path, Err: err}
	}
	return nil
}

// ReadRCLines returns ~/.aisharc split into lines, or nil if the file
// doesn't exist. The shell feeds each line through the normal command chain
// executor at startup (spec.md external interfaces).
func ReadRCLines() ([]string, error) {
	path, err := RCPath()
	if err != nil {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &ConfigError{Path: path, Err: err}
	}

	var lines []string
	start := 0
	for i, b := range data {
		if b == '\n' {
			lines = append(lines, string(data[start:i]))
			start = i + 1
		}
	}
	if start < len(data) {
		lines = append(lines, string(data[start:]))
	}
	return lines, nil
}
