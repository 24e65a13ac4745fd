// Package config assembles tool configuration from defaults, an optional
// YAML file, and environment variables, in that order of increasing
// precedence.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// ImageBaseURL is prefixed to every relative image path during
	// conversion.
	ImageBaseURL string `yaml:"image_base_url"`

	// Workers bounds batch parallelism. Defaults to GOMAXPROCS.
	Workers int `yaml:"workers"`

	// CaseSensitive switches exact-match scoring to case-sensitive
	// comparison.
	CaseSensitive bool `yaml:"case_sensitive"`

	// OutDir receives converted output files.
	OutDir string `yaml:"out_dir"`
}

func Default() Config {
	return Config{
		Workers: runtime.GOMAXPROCS(0),
		OutDir:  ".",
	}
}

// Load returns the default config overlaid with the YAML file at path (when
// non-empty) and then the IMLCONV_* environment variables.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("IMLCONV_IMAGE_BASE_URL"); v != "" {
		c.ImageBaseURL = v
	}
	if v := os.Getenv("IMLCONV_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Workers = n
		}
	}
	if v := os.Getenv("IMLCONV_CASE_SENSITIVE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.CaseSensitive = b
		}
	}
	if v := os.Getenv("IMLCONV_OUT_DIR"); v != "" {
		c.OutDir = v
	}
}
