package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/leporo/sqlbind/lint"
)

// DefaultFile is the configuration file looked up in the working directory
// when no file is specified explicitly.
const DefaultFile = "sqllint.yaml"

// Config holds sqllint configuration.
// Values come from a YAML file and can be overridden by environment variables.
type Config struct {
	// Files to check
	Extensions []string `yaml:"extensions" env:"SQLLINT_EXTENSIONS" env-separator:"," env-default:".cs"`
	Ignore     []string `yaml:"ignore" env:"SQLLINT_IGNORE" env-separator:","`
	NoRecurse  bool     `yaml:"no_recurse" env:"SQLLINT_NO_RECURSE" env-default:"false"`

	// Syntax of build and binding calls
	Opener  string `yaml:"opener" env:"SQLLINT_OPENER" env-default:"sql(()=>"`
	Binders string `yaml:"binders" env:"SQLLINT_BINDERS" env-default:"ps"`
	Sticky  bool   `yaml:"sticky" env:"SQLLINT_STICKY" env-default:"false"`

	// Output
	Format  string `yaml:"format" env:"SQLLINT_FORMAT" env-default:"text"`
	Verbose bool   `yaml:"verbose" env:"SQLLINT_VERBOSE" env-default:"false"`

	Workers  int           `yaml:"workers" env:"SQLLINT_WORKERS" env-default:"0"`
	Debounce time.Duration `yaml:"debounce" env:"SQLLINT_DEBOUNCE" env-default:"200ms"`
}

// Formats lists supported report formats.
var Formats = []string{"text", "json", "yaml"}

// Load reads configuration from a YAML file with environment variable overrides.
// If path is empty, DefaultFile is used when it exists and environment
// variables alone otherwise.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}

	if path != "" {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks configuration values.
func (c *Config) Validate() error {
	switch c.Format {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("unsupported format %q, use one of %v", c.Format, Formats)
	}
	if c.Workers < 0 {
		return errors.New("workers must not be negative")
	}
	if c.Debounce <= 0 {
		return errors.New("debounce must be positive")
	}
	if len(c.Extensions) == 0 {
		return errors.New("at least one file extension is required")
	}
	for _, ext := range c.Extensions {
		if len(ext) < 2 || ext[0] != '.' {
			return fmt.Errorf("file extension %q must start with a dot", ext)
		}
	}
	return c.Syntax().Check()
}

// Syntax returns the linter syntax.
func (c *Config) Syntax() lint.Syntax {
	return lint.Syntax{
		Opener:  c.Opener,
		Binders: c.Binders,
		Sticky:  c.Sticky,
	}
}
