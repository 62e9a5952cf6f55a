package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// DefaultResolveTimeout is kept just under common gateway limits so the
// client reports its own timeout before the infrastructure does.
const DefaultResolveTimeout = 55 * time.Second

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Resolver ResolverConfig `yaml:"resolver"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds HTTP server configuration for the web front end.
type ServerConfig struct {
	Host         string        `yaml:"host" envconfig:"SERVER_HOST"`
	Port         int           `yaml:"port" envconfig:"SERVER_PORT"`
	ReadTimeout  time.Duration `yaml:"read_timeout" envconfig:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `yaml:"write_timeout" envconfig:"SERVER_WRITE_TIMEOUT"`
	SessionTTL   time.Duration `yaml:"session_ttl" envconfig:"SERVER_SESSION_TTL"`
}

// ResolverConfig holds settings for the external resolution endpoint.
type ResolverConfig struct {
	Endpoint   string        `yaml:"endpoint" envconfig:"RESOLVER_ENDPOINT"`
	Timeout    time.Duration `yaml:"timeout" envconfig:"RESOLVER_TIMEOUT"`
	UserAgent  string        `yaml:"user_agent" envconfig:"RESOLVER_USER_AGENT"`
	VideoParam string        `yaml:"video_param" envconfig:"RESOLVER_VIDEO_PARAM"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `yaml:"level" envconfig:"LOG_LEVEL"`
	File  string `yaml:"file" envconfig:"LOG_FILE"`
}

// Default returns the configuration used when neither file nor environment
// set a value.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 90 * time.Second,
			SessionTTL:   30 * time.Minute,
		},
		Resolver: ResolverConfig{
			Endpoint:   "http://localhost:3000/api/info",
			Timeout:    DefaultResolveTimeout,
			UserAgent:  "ytgrab/1.0",
			VideoParam: "mp4",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from file and environment variables.
// Environment variables override file values, which override defaults.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	// Load from YAML file if provided
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	// Override with environment variables
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set.
func (c *Config) Validate() error {
	if c.Resolver.Endpoint == "" {
		return fmt.Errorf("RESOLVER_ENDPOINT is required")
	}
	u, err := url.Parse(c.Resolver.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("RESOLVER_ENDPOINT must be an absolute http(s) URL, got %q", c.Resolver.Endpoint)
	}
	if c.Resolver.Timeout <= 0 {
		return fmt.Errorf("RESOLVER_TIMEOUT must be positive")
	}
	if c.Resolver.VideoParam == "" {
		return fmt.Errorf("RESOLVER_VIDEO_PARAM is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT out of range: %d", c.Server.Port)
	}
	if c.Server.WriteTimeout > 0 && c.Server.WriteTimeout <= c.Resolver.Timeout {
		return fmt.Errorf("SERVER_WRITE_TIMEOUT (%s) must exceed RESOLVER_TIMEOUT (%s)", c.Server.WriteTimeout, c.Resolver.Timeout)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// Address returns the server address in host:port format.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SlogLevel converts the configured level name to a slog.Level.
func (c *LogConfig) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL %q is not one of debug, info, warn, error", c.Level)
	}
}
