// Package config loads the optional .proctor.yml from the target directory.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bartekus/proctor/internal/runner"
)

// FileName is the configuration file looked up in the target directory.
const FileName = ".proctor.yml"

// Config holds the parsed .proctor.yml. All fields are optional; zero
// values fall back to defaults.
type Config struct {
	RawTimeout   string `yaml:"timeout"`    // e.g. "10m", "90s"
	RawMaxOutput int    `yaml:"max_output"` // combined-log cap in bytes

	// InstallFatal aborts the run when dependency installation fails,
	// instead of the default warn-and-continue.
	InstallFatal bool `yaml:"install_fatal"`

	// OutputDir is where the text report and framework artifact are copied.
	OutputDir string `yaml:"output_dir"`
}

// Load reads the config at path. A missing file yields an empty Config;
// malformed YAML is an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &cfg, nil
}

// Timeout returns the configured subprocess timeout or the default.
func (c *Config) Timeout() time.Duration {
	if c.RawTimeout != "" {
		d, err := time.ParseDuration(c.RawTimeout)
		if err == nil && d > 0 {
			return d
		}
	}
	return runner.DefaultTimeout
}

// MaxOutputBytes returns the configured combined-log cap or the default.
func (c *Config) MaxOutputBytes() int {
	if c.RawMaxOutput > 0 {
		return c.RawMaxOutput
	}
	return runner.DefaultMaxOutput
}
