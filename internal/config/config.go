// Package config reads tagcheck settings from a YAML file.
// A missing file is not an error, every setting has a default.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pipe01/tagcheck/internal/scanner"
	"gopkg.in/yaml.v3"
)

// DefaultPath is looked up in the working directory when no path is given.
const DefaultPath = ".tagcheck.yaml"

// ErrInvalidValue is returned when a config value is out of range.
var ErrInvalidValue = errors.New("invalid config value")

// Validation bounds for max_line_length.
const (
	MinMaxLineLength = 1
	MaxMaxLineLength = 1024 * 1024 * 1024 // 1 GB
)

type Config struct {
	SkipDeclaration *bool `yaml:"skip_declaration,omitempty"`
	MaxLineLength   *int  `yaml:"max_line_length,omitempty"`

	path string
}

// Default returns a config with every setting unset.
func Default() *Config {
	return &Config{}
}

// Load reads the config at path. If path is empty DefaultPath is used, and a
// missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return LoadDir(".")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	return Parse(path, data)
}

// LoadDir reads DefaultPath inside dir, falling back to the defaults if it
// doesn't exist.
func LoadDir(dir string) (*Config, error) {
	path := filepath.Join(dir, DefaultPath)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	return Parse(path, data)
}

// Parse decodes and validates YAML config data. path is only used in messages.
func Parse(path string, data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("malformed config file %s: %w", path, err)
	}
	cfg.path = path

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.MaxLineLength != nil {
		v := *c.MaxLineLength
		if v < MinMaxLineLength || v > MaxMaxLineLength {
			return fmt.Errorf("%w: max_line_length must be between %d and %d, got %d",
				ErrInvalidValue, MinMaxLineLength, MaxMaxLineLength, v)
		}
	}
	return nil
}

// Path returns the file this config was loaded from, if any.
func (c *Config) Path() string {
	return c.path
}

// SkipsDeclaration reports whether a leading "<?xml" line is ignored (defaults to true).
func (c *Config) SkipsDeclaration() bool {
	if c.SkipDeclaration == nil {
		return true
	}
	return *c.SkipDeclaration
}

// LineLimit returns the maximum accepted line length in bytes (defaults to 1 MB).
func (c *Config) LineLimit() int {
	if c.MaxLineLength == nil {
		return scanner.DefaultMaxLineLength
	}
	return *c.MaxLineLength
}

// ScannerOptions builds scanner options from the config.
func (c *Config) ScannerOptions() scanner.Options {
	return scanner.Options{
		SkipDeclaration: c.SkipsDeclaration(),
		MaxLineLength:   c.LineLimit(),
	}
}
