package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// DefaultPath is the config file read when no explicit path is given.
const DefaultPath = "config.json"

// FileSystem abstracts the operations the loader needs, for testability.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	LookupEnv(key string) (string, bool)
}

// osFileSystem implements FileSystem using the real OS.
type osFileSystem struct{}

func (osFileSystem) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }
func (osFileSystem) LookupEnv(key string) (string, bool)  { return os.LookupEnv(key) }

// Loader handles configuration loading with injected dependencies.
type Loader struct {
	fs FileSystem
}

// NewLoader creates a production Loader using the real filesystem.
func NewLoader() *Loader {
	return &Loader{fs: osFileSystem{}}
}

// NewLoaderWithFS creates a Loader with a custom filesystem (for testing).
func NewLoaderWithFS(fs FileSystem) *Loader {
	return &Loader{fs: fs}
}

// Load reads configuration from the given path, merges it over defaults and
// applies environment overrides. A missing file fails with ErrConfigMissing;
// unparsable or invalid content fails with ErrConfigMalformed.
func (l *Loader) Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	cfg := DefaultConfig()

	data, err := l.fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigMissing, path)
		}
		return nil, err
	}

	// Unmarshal directly over the defaults: present keys overwrite defaults
	// (even explicit zeroes), missing keys leave them untouched.
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigMalformed, err)
	}

	l.applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnv applies environment overrides on top of the file values.
// PANDACODE_API_KEY wins over GEMINI_API_KEY.
func (l *Loader) applyEnv(cfg *Config) {
	if v, ok := l.fs.LookupEnv("GEMINI_API_KEY"); ok {
		cfg.APIKey = v
	}
	if v, ok := l.fs.LookupEnv("PANDACODE_API_KEY"); ok {
		cfg.APIKey = v
	}
	if v, ok := l.fs.LookupEnv("PANDACODE_WORKSPACE"); ok {
		cfg.Workspace = v
	}
	if v, ok := l.fs.LookupEnv("PANDACODE_MODEL"); ok {
		cfg.Model = v
	}
	if v, ok := l.fs.LookupEnv("PANDACODE_ADDR"); ok {
		cfg.Server.Addr = v
	}
}

// Load is a convenience function using the default loader.
func Load(path string) (*Config, error) {
	return NewLoader().Load(path)
}
