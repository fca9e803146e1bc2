package config

import (
	"fmt"
	"os"
	"reflect"
	"regexp"

	"go.uber.org/zap"
)

type Config struct {
	*Settings
}

type Settings struct {
	Environment string
	ENVPrefix   string
	Debug       bool
	Verbose     bool
	Logger      *zap.Logger

	// ErrorOnUnmatchedKeys rejects keys in yaml, toml or json files that do
	// not correspond to a field of the target struct.
	ErrorOnUnmatchedKeys bool
}

// New initialize a Config
func New(cfg *Settings) *Config {
	if cfg == nil {
		cfg = &Settings{}
	}

	if os.Getenv("CONFIG_DEBUG_MODE") != "" {
		cfg.Debug = true
	}

	if os.Getenv("CONFIG_VERBOSE_MODE") != "" {
		cfg.Verbose = true
	}

	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Config{Settings: cfg}
}

var testRegexp = regexp.MustCompile(`_test|(\.test$)`)

// GetEnvironment returns the configured environment, CONFIG_ENV, "test" when
// running under go test, and "development" otherwise.
func (c *Config) GetEnvironment() string {
	if c.Environment == "" {
		if env := os.Getenv("CONFIG_ENV"); env != "" {
			return env
		}

		if testRegexp.MatchString(os.Args[0]) {
			return "test"
		}

		return "development"
	}
	return c.Environment
}

// Load fills cfg from struct tag defaults, then the given files in order
// (later files win, each optionally shadowed by an environment specific
// variant such as config.production.yml), then environment variables.
func (c *Config) Load(cfg interface{}, files ...string) error {
	if !reflect.Indirect(reflect.ValueOf(cfg)).CanAddr() {
		return fmt.Errorf("config %v should be addressable", cfg)
	}

	err := c.load(cfg, files...)
	if err != nil {
		c.Logger.Error("config load failed", zap.Strings("files", files), zap.Error(err))
	} else if c.Debug || c.Verbose {
		c.Logger.Debug("config loaded", zap.String("env", c.GetEnvironment()), zap.Any("config", cfg))
	}
	return err
}

// ENV return environment
func ENV() string {
	return New(nil).GetEnvironment()
}

// Load will unmarshal configurations to struct from files that you provide
func Load(cfg interface{}, files ...string) (*Config, error) {
	c := New(nil)
	if err := c.Load(cfg, files...); err != nil {
		return nil, err
	}

	return c, nil
}
