// Package config loads application configuration from a JSON file with
// environment variable overrides. A missing or malformed file is a startup
// failure, not a runtime one.
package config

import "fmt"

// Config holds all application configuration values.
// NOTE: Values in the config file override defaults, including explicit
// zero values. Missing keys are left at their default values.
type Config struct {
	// APIKey authenticates requests to the hosted AI API.
	APIKey string `json:"api_key"`
	// Workspace is the root directory all file and terminal operations are
	// confined to. Fixed for the process lifetime.
	Workspace string `json:"workspace"`
	// Model is the AI model name used for completions.
	Model string `json:"model"`

	Server   ServerConfig   `json:"server"`
	Terminal TerminalConfig `json:"terminal"`
	Files    FilesConfig    `json:"files"`
}

type ServerConfig struct {
	Addr string `json:"addr"` // Default: 127.0.0.1:8390
}

type TerminalConfig struct {
	TimeoutSeconds     int   `json:"timeout_seconds"`      // Default: 30
	MaxOutputSize      int64 `json:"max_output_size"`      // Default: 10MB
	GracefulShutdownMs int   `json:"graceful_shutdown_ms"` // Default: 2000
}

type FilesConfig struct {
	MaxFileSize     int64 `json:"max_file_size"`     // Default: 20MB
	MaxProjectFiles int   `json:"max_project_files"` // Default: 100
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Workspace: "workspace",
		Model:     "gemini-2.5-flash",
		Server: ServerConfig{
			Addr: "127.0.0.1:8390",
		},
		Terminal: TerminalConfig{
			TimeoutSeconds:     30,
			MaxOutputSize:      10 * 1024 * 1024,
			GracefulShutdownMs: 2000,
		},
		Files: FilesConfig{
			MaxFileSize:     20 * 1024 * 1024,
			MaxProjectFiles: 100,
		},
	}
}

// Validate checks the merged configuration for correctness.
func (c *Config) Validate() error {
	var errs []string

	if c.Workspace == "" {
		errs = append(errs, "workspace must not be empty")
	}
	if c.Model == "" {
		errs = append(errs, "model must not be empty")
	}
	if c.Server.Addr == "" {
		errs = append(errs, "server.addr must not be empty")
	}
	if c.Terminal.TimeoutSeconds < 1 {
		errs = append(errs, "terminal.timeout_seconds must be >= 1")
	}
	if c.Terminal.MaxOutputSize < 1 {
		errs = append(errs, "terminal.max_output_size must be >= 1")
	}
	if c.Terminal.GracefulShutdownMs < 1 {
		errs = append(errs, "terminal.graceful_shutdown_ms must be >= 1")
	}
	if c.Files.MaxFileSize < 1 {
		errs = append(errs, "files.max_file_size must be >= 1")
	}
	if c.Files.MaxProjectFiles < 1 {
		errs = append(errs, "files.max_project_files must be >= 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %v", ErrConfigMalformed, errs)
	}
	return nil
}
