// Package config loads the mailfix configuration from an optional YAML file
// and MAILFIX_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables that override settings.
// For example, MAILFIX_LOG_LEVEL overrides log.level.
const EnvPrefix = "MAILFIX"

// Config is the complete mailfix configuration.
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// LogConfig selects how logs are written.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// PipelineConfig controls message processing.
type PipelineConfig struct {
	// Workers is the number of messages processed at once.
	Workers int `mapstructure:"workers"`
}

// MetricsConfig controls metrics export.
type MetricsConfig struct {
	// Textfile is where to write metrics in the Prometheus text format when
	// processing is finished. Empty disables it.
	Textfile string `mapstructure:"textfile"`
}

// Errors returned by Validate.
var (
	ErrLogLevel  = errors.New("log.level must be one of debug, info, warn, error")
	ErrLogFormat = errors.New("log.format must be json or console")
	ErrWorkers   = errors.New("pipeline.workers must be greater than zero")
)

// New returns a viper instance with the defaults and environment binding set
// up, ready for flags to be bound to it.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("pipeline.workers", 4)
	v.SetDefault("metrics.textfile", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the configuration file, if one is given, into v and returns the
// validated configuration.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigType("yaml")
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	var errs []error

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, ErrLogLevel)
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "console":
	default:
		errs = append(errs, ErrLogFormat)
	}

	if c.Pipeline.Workers <= 0 {
		errs = append(errs, ErrWorkers)
	}

	return errors.Join(errs...)
}
