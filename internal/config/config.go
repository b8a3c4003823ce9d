// Package config loads the engine's own tunables from a small YAML
// document. The host process's database-environment bootstrap (path
// resolution, directory creation) stays an external collaborator; this
// package only resolves settings once a directory has been handed to it.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds the engine tunables a deployment may override.
type Config struct {
	// BlockSize is read from the file (zero becomes 4096) but is not
	// applied: every page is page.BlockSize (4096) bytes regardless.
	BlockSize int `yaml:"block_size"`

	// DefaultIndexType is used by CREATE INDEX when no USING clause is
	// given.
	DefaultIndexType string `yaml:"default_index_type"`

	// LogLevel is parsed with logrus.ParseLevel by the caller.
	LogLevel string `yaml:"log_level"`
}

// Default returns the engine's built-in configuration.
func Default() Config {
	return Config{
		BlockSize:        4096,
		DefaultIndexType: "BTREE",
		LogLevel:         "info",
	}
}

// Load reads and parses a YAML config file at path, filling in defaults
// for any field left unset.
func Load(path string) (Config, error) {
	cfg := Default()
	buf, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config: read %s", path)
	}
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "config: parse %s", path)
	}
	if cfg.BlockSize == 0 {
		cfg.BlockSize = 4096
	}
	if cfg.DefaultIndexType == "" {
		cfg.DefaultIndexType = "BTREE"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	return cfg, nil
}
