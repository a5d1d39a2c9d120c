// Package config loads assetpairs settings from an HCL file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2/hclsimple"

	"github.com/agentic-research/assetpairs/internal/assets"
	"github.com/agentic-research/assetpairs/internal/logging"
)

// DefaultFile is read when no --config flag is given, if it exists.
const DefaultFile = "assetpairs.hcl"

// Config is the decoded configuration.
type Config struct {
	AssetsDir string     `hcl:"assets_dir,optional"`
	BasePath  string     `hcl:"base_path,optional"`
	CachePath string     `hcl:"cache_path,optional"`
	Workers   int        `hcl:"workers,optional"`
	Log       *LogConfig `hcl:"log,block"`
}

type LogConfig struct {
	Level  string `hcl:"level,optional"`
	Format string `hcl:"format,optional"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		AssetsDir: "assets",
		BasePath:  assets.DefaultBasePath,
		CachePath: "cache.json",
		Workers:   8,
		Log:       &LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads path over the defaults. An empty path falls back to DefaultFile
// and tolerates its absence; an explicit path must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	src, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(path, src)
}

// Parse decodes HCL source. filename is used in diagnostics only.
func Parse(filename string, src []byte) (*Config, error) {
	var c Config
	if err := hclsimple.Decode(filename, src, nil, &c); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", filename, err)
	}
	c.fill()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// fill replaces zero values with defaults.
func (c *Config) fill() {
	d := Default()
	if c.AssetsDir == "" {
		c.AssetsDir = d.AssetsDir
	}
	if c.BasePath == "" {
		c.BasePath = d.BasePath
	}
	if c.CachePath == "" {
		c.CachePath = d.CachePath
	}
	if c.Workers == 0 {
		c.Workers = d.Workers
	}
	if c.Log == nil {
		c.Log = d.Log
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if strings.TrimSpace(c.BasePath) == "" {
		return errors.New("base_path must not be empty")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}
