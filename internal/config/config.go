package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/vango-dev/viewmodel/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "vmctl.json"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "VMCTL_"

	// DefaultPort is the default inspection server port.
	DefaultPort = 7070

	// DefaultHost is the default inspection server host.
	DefaultHost = "localhost"

	// DefaultWatchBuffer is the default per-watcher frame buffer.
	DefaultWatchBuffer = 16

	// DefaultNamespace is the default Prometheus namespace.
	DefaultNamespace = "viewmodel"
)

// Config represents the complete vmctl.json configuration.
type Config struct {
	// Log contains logger configuration.
	Log LogConfig `json:"log,omitempty" envPrefix:"LOG_"`

	// Server contains inspection server configuration.
	Server ServerConfig `json:"server,omitempty" envPrefix:"SERVER_"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `json:"metrics,omitempty" envPrefix:"METRICS_"`

	// Tracing contains OpenTelemetry configuration.
	Tracing TracingConfig `json:"tracing,omitempty" envPrefix:"TRACING_"`

	// Feed contains snapshot feed configuration.
	Feed FeedConfig `json:"feed,omitempty" envPrefix:"FEED_"`

	// Dispatcher contains UI loop configuration.
	Dispatcher DispatcherConfig `json:"dispatcher,omitempty" envPrefix:"DISPATCHER_"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// LogConfig contains logger settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty" env:"LEVEL"`

	// Format is text or json.
	Format string `json:"format,omitempty" env:"FORMAT"`
}

// ServerConfig contains inspection server settings.
type ServerConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty" env:"HOST"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty" env:"PORT"`

	// WatchBuffer is the number of frames buffered per websocket watcher
	// before frames are dropped.
	WatchBuffer int `json:"watchBuffer,omitempty" env:"WATCH_BUFFER"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled exposes /metrics and records pipeline metrics.
	Enabled bool `json:"enabled,omitempty" env:"ENABLED"`

	// Namespace is the metrics namespace.
	Namespace string `json:"namespace,omitempty" env:"NAMESPACE"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	// Enabled traces registry applies through the global tracer provider.
	Enabled bool `json:"enabled,omitempty" env:"ENABLED"`
}

// FeedConfig contains snapshot feed settings.
type FeedConfig struct {
	// Source is a path, file:// URL, s3://bucket/key or "-".
	Source string `json:"source,omitempty" env:"SOURCE"`

	// S3Region is the AWS region for s3:// sources.
	S3Region string `json:"s3Region,omitempty" env:"S3_REGION"`

	// S3Endpoint overrides the S3 endpoint, e.g. for MinIO.
	S3Endpoint string `json:"s3Endpoint,omitempty" env:"S3_ENDPOINT"`

	// S3PathStyle forces path-style addressing.
	S3PathStyle bool `json:"s3PathStyle,omitempty" env:"S3_PATH_STYLE"`
}

// DispatcherConfig contains UI loop settings.
type DispatcherConfig struct {
	// SlowTask is the duration after which a dispatch task is logged as
	// slow (e.g., "50ms"). Empty disables the warning.
	SlowTask string `json:"slowTask,omitempty" env:"SLOW_TASK"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Host:        DefaultHost,
			Port:        DefaultPort,
			WatchBuffer: DefaultWatchBuffer,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: DefaultNamespace,
		},
		Feed: FeedConfig{
			S3Region: "us-east-1",
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for vmctl.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadOrDefault is Load, falling back to defaults when the directory has no
// vmctl.json. Environment overrides are applied in both cases.
func LoadOrDefault(dir string) (*Config, error) {
	cfg, err := Load(dir)
	if err == nil {
		return cfg, nil
	}
	if !errors.HasCode(err, "E101") {
		return nil, err
	}

	cfg = New()
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// LoadFile reads configuration from the specified file path, then applies
// environment overrides and validates the result.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E101").
				WithDetail("No " + ConfigFileName + " found in " + filepath.Dir(path)).
				WithSuggestion("Create " + ConfigFileName + " or rely on VMCTL_* environment variables")
		}
		return nil, errors.New("E102").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E102").
			WithDetail("Failed to parse " + ConfigFileName + ": " + err.Error()).
			WithSuggestion("Check that " + ConfigFileName + " is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from VMCTL_* environment variables.
func (c *Config) ApplyEnv() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return errors.New("E103").
			WithDetail("Failed to read environment overrides").
			Wrap(err)
	}
	c.applyDefaults()
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.WatchBuffer == 0 {
		c.Server.WatchBuffer = DefaultWatchBuffer
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Feed.S3Region == "" {
		c.Feed.S3Region = "us-east-1"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("E103").
			WithDetail("server.port must be between 0 and 65535")
	}
	if c.Server.WatchBuffer < 0 {
		return errors.New("E103").
			WithDetail("server.watchBuffer must not be negative")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.New("E103").
			WithDetail("log.level must be debug, info, warn or error, got " + strconv.Quote(c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New("E103").
			WithDetail("log.format must be text or json, got " + strconv.Quote(c.Log.Format))
	}
	if _, err := c.SlowTaskThreshold(); err != nil {
		return err
	}
	return nil
}

// SlowTaskThreshold parses Dispatcher.SlowTask. Empty means disabled.
func (c *Config) SlowTaskThreshold() (time.Duration, error) {
	if c.Dispatcher.SlowTask == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Dispatcher.SlowTask)
	if err != nil || d < 0 {
		return 0, errors.New("E103").
			WithDetail("dispatcher.slowTask must be a positive duration, got " + strconv.Quote(c.Dispatcher.SlowTask))
	}
	return d, nil
}

// ServerAddress returns the listen address of the inspection server.
func (c *Config) ServerAddress() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}
