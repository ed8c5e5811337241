package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultMaxPathBytes matches the fixed path buffer of the classic recycle utility.
const DefaultMaxPathBytes = 2048

type LoggingCfg struct {
	File         string `yaml:"file" json:"file"`                   // Append log lines here (empty = no log file)
	RotationDays int    `yaml:"rotation_days" json:"rotation_days"` // Days to keep logs before rotation
	Verbose      bool   `yaml:"verbose" json:"verbose"`             // Mirror log lines to stderr
}

type MetricsCfg struct {
	TextfilePath string `yaml:"textfile_path" json:"textfile_path"` // node_exporter textfile collector target
}

type Config struct {
	MaxPathBytes   int        `yaml:"max_path_bytes" json:"max_path_bytes"`   // Longer paths are skipped silently
	ProtectedPaths []string   `yaml:"protected_paths" json:"protected_paths"` // Extra paths that may never be trashed
	TrashDir       string     `yaml:"trash_dir" json:"trash_dir"`             // Overrides the home trash directory
	DatabasePath   string     `yaml:"database_path" json:"database_path"`     // SQLite journal of trash operations (empty = disabled)
	Logging        LoggingCfg `yaml:"logging" json:"logging"`
	Metrics        MetricsCfg `yaml:"metrics" json:"metrics"`
}

var (
	errInvalidPath     = errors.New("path must be absolute")
	errNegativeMaxPath = errors.New("max_path_bytes cannot be negative")
	errNegativeDays    = errors.New("logging.rotation_days cannot be negative")
)

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	_ = cfg.validateAndDefault()
	return cfg
}

// DefaultPath returns $XDG_CONFIG_HOME/recycle/config.yaml (or the platform equivalent).
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "recycle", "config.yaml")
}

func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := decode(f)
	if err != nil {
		return nil, err
	}
	if err := cfg.validateAndDefault(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOptional loads path, falling back to Default when the file does not exist.
// A missing file is only an error when the caller named it explicitly.
func LoadOptional(path string, explicit bool) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			return Default(), nil
		}
		return nil, fmt.Errorf("open config: %w", err)
	}
	return Load(path)
}

func decode(r io.Reader) (*Config, error) {
	cfg := &Config{}
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			// Empty file
			return cfg, nil
		}
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return cfg, nil
}

func (c *Config) validateAndDefault() error {
	if c.MaxPathBytes < 0 {
		return errNegativeMaxPath
	}
	if c.MaxPathBytes == 0 {
		c.MaxPathBytes = DefaultMaxPathBytes
	}

	if c.Logging.RotationDays < 0 {
		return errNegativeDays
	}
	if c.Logging.RotationDays == 0 {
		c.Logging.RotationDays = 30 // Default: keep logs for 30 days
	}

	cleaned := make([]string, 0, len(c.ProtectedPaths))
	for _, p := range c.ProtectedPaths {
		cp, err := cleanAbsolute(p)
		if err != nil {
			return fmt.Errorf("protected_paths: %w", err)
		}
		cleaned = append(cleaned, cp)
	}
	c.ProtectedPaths = cleaned

	optional := []struct {
		key string
		val *string
	}{
		{"trash_dir", &c.TrashDir},
		{"database_path", &c.DatabasePath},
		{"logging.file", &c.Logging.File},
		{"metrics.textfile_path", &c.Metrics.TextfilePath},
	}
	for _, o := range optional {
		if *o.val == "" {
			continue
		}
		cp, err := cleanAbsolute(*o.val)
		if err != nil {
			return fmt.Errorf("%s: %w", o.key, err)
		}
		*o.val = cp
	}

	return nil
}

func cleanAbsolute(p string) (string, error) {
	if p == "" {
		return "", errInvalidPath
	}
	cp := filepath.Clean(p)
	if !filepath.IsAbs(cp) {
		return "", fmt.Errorf("%w: %s", errInvalidPath, p)
	}
	return cp, nil
}

// JournalEnabled reports whether trash operations are recorded in SQLite.
func (c *Config) JournalEnabled() bool {
	return c.DatabasePath != ""
}
