// Package config loads treewalk settings from a YAML file, TREEWALK_*
// environment variables, and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"github.com/Sumatoshi-tech/treewalk/pkg/observability"
	"github.com/Sumatoshi-tech/treewalk/pkg/traversal"
)

// Sentinel validation errors.
var (
	ErrNoKeys           = errors.New("tree.keys must not be empty")
	ErrInvalidInterval  = errors.New("playback.interval must be positive")
	ErrInvalidOrder     = errors.New("invalid playback.order")
	ErrInvalidLogLevel  = errors.New("invalid logging.level")
	ErrInvalidLogFormat = errors.New("invalid logging.format")
)

// Config holds all treewalk configuration.
type Config struct {
	Tree      TreeConfig      `mapstructure:"tree"`
	Playback  PlaybackConfig  `mapstructure:"playback"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// TreeConfig holds the keys the tree is built from, in insertion order.
type TreeConfig struct {
	Keys []int `mapstructure:"keys"`
}

// PlaybackConfig holds animation settings.
type PlaybackConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	Order    string        `mapstructure:"order"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig holds the diagnostics listener address. Empty disables it.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	OTLPHeaders  string `mapstructure:"otlp_headers"`
	OTLPInsecure bool   `mapstructure:"otlp_insecure"`
	Environment  string `mapstructure:"environment"`
	DebugTrace   bool   `mapstructure:"debug_trace"`
}

// LoadConfig loads configuration from configPath, or from .treewalk.yaml in
// the working directory or home directory when configPath is empty. A missing
// search-path file is not an error; a missing explicit file is.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configFileName)
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")

		home, homeErr := os.UserHomeDir()
		if homeErr == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viperCfg.AutomaticEnv()

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := config.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("tree.keys", DefaultKeys)

	viperCfg.SetDefault("playback.interval", DefaultInterval.String())
	viperCfg.SetDefault("playback.order", DefaultOrder)

	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.format", DefaultLogFormat)

	viperCfg.SetDefault("metrics.addr", "")

	viperCfg.SetDefault("telemetry.otlp_endpoint", "")
	viperCfg.SetDefault("telemetry.otlp_headers", "")
	viperCfg.SetDefault("telemetry.otlp_insecure", false)
	viperCfg.SetDefault("telemetry.environment", "")
	viperCfg.SetDefault("telemetry.debug_trace", false)
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var err error

	if len(c.Tree.Keys) == 0 {
		err = multierr.Append(err, ErrNoKeys)
	}

	if c.Playback.Interval <= 0 {
		err = multierr.Append(err, fmt.Errorf("%w: %s", ErrInvalidInterval, c.Playback.Interval))
	}

	_, orderErr := traversal.ParseOrder(c.Playback.Order)
	if orderErr != nil {
		err = multierr.Append(err, fmt.Errorf("%w: %w", ErrInvalidOrder, orderErr))
	}

	_, levelErr := observability.ParseLevel(c.Logging.Level)
	if levelErr != nil {
		err = multierr.Append(err, fmt.Errorf("%w: %w", ErrInvalidLogLevel, levelErr))
	}

	switch strings.ToLower(c.Logging.Format) {
	case LogFormatText, LogFormatJSON:
	default:
		err = multierr.Append(err, fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Logging.Format))
	}

	return err
}

// Order returns the parsed playback order, or BFS if it does not parse.
func (c *Config) Order() traversal.Order {
	order, err := traversal.ParseOrder(c.Playback.Order)
	if err != nil {
		return traversal.BFS
	}

	return order
}

// Observability maps the config onto observability settings for the given
// launch mode.
func (c *Config) Observability(mode observability.AppMode, version string) observability.Config {
	obs := observability.DefaultConfig()
	obs.ServiceVersion = version
	obs.Environment = c.Telemetry.Environment
	obs.Mode = mode
	obs.OTLPEndpoint = c.Telemetry.OTLPEndpoint
	obs.OTLPHeaders = observability.ParseOTLPHeaders(c.Telemetry.OTLPHeaders)
	obs.OTLPInsecure = c.Telemetry.OTLPInsecure
	obs.DebugTrace = c.Telemetry.DebugTrace
	obs.LogJSON = strings.EqualFold(c.Logging.Format, LogFormatJSON)

	level, err := observability.ParseLevel(c.Logging.Level)
	if err == nil {
		obs.LogLevel = level
	}

	return obs
}
