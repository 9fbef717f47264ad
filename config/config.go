// Package config provides the YAML configuration of a key-value client.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	etcd "go.etcd.io/etcd/client/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultDialTimeout is used when dial_timeout is not set.
	DefaultDialTimeout = 5 * time.Second
	// DefaultRequestTimeout is used when request_timeout is not set.
	DefaultRequestTimeout = 2 * time.Second
	// DefaultLogLevel is used when log_level is not set.
	DefaultLogLevel = "info"
)

var (
	// ErrNoEndpoints is returned when the configuration lists no endpoints.
	ErrNoEndpoints = errors.New("no endpoints configured")
	// ErrEmptyEndpoint is returned when an endpoint is an empty string.
	ErrEmptyEndpoint = errors.New("empty endpoint")
	// ErrNegativeTimeout is returned when a timeout is negative.
	ErrNegativeTimeout = errors.New("negative timeout")
	// ErrPasswordWithoutUser is returned when a password is set without a username.
	ErrPasswordWithoutUser = errors.New("password set without username")
)

// Config is the client configuration.
type Config struct {
	// Endpoints lists the store endpoints.
	Endpoints []string `yaml:"endpoints"`
	// DialTimeout limits establishing a connection.
	DialTimeout time.Duration `yaml:"dial_timeout"`
	// RequestTimeout limits a single request.
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// Username is used for authentication, if set.
	Username string `yaml:"username"`
	// Password is used for authentication, if set.
	Password string `yaml:"password"`
	// LogLevel is the zap level name.
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration with every default applied and
// no endpoints.
func Default() Config {
	return Config{
		Endpoints:      nil,
		DialTimeout:    DefaultDialTimeout,
		RequestTimeout: DefaultRequestTimeout,
		Username:       "",
		Password:       "",
		LogLevel:       DefaultLogLevel,
	}
}

// Parse decodes a YAML document, applies the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errParse(err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Load reads and parses the YAML file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	return Parse(data)
}

// Marshal encodes the configuration as YAML.
func (c Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}

	return data, nil
}

func (c *Config) applyDefaults() {
	if c.DialTimeout == 0 {
		c.DialTimeout = DefaultDialTimeout
	}

	if c.RequestTimeout == 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}

	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if len(c.Endpoints) == 0 {
		return errValidation("endpoints", ErrNoEndpoints)
	}

	for i, endpoint := range c.Endpoints {
		if endpoint == "" {
			return errValidation(fmt.Sprintf("endpoints[%d]", i), ErrEmptyEndpoint)
		}
	}

	if c.DialTimeout < 0 {
		return errValidation("dial_timeout", ErrNegativeTimeout)
	}

	if c.RequestTimeout < 0 {
		return errValidation("request_timeout", ErrNegativeTimeout)
	}

	if c.Password != "" && c.Username == "" {
		return errValidation("password", ErrPasswordWithoutUser)
	}

	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return errValidation("log_level", err)
	}

	return nil
}

// Logger builds a production zap logger at the configured level.
func (c Config) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, errValidation("log_level", err)
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return logger, nil
}

// EtcdConfig returns the etcd client configuration. The logger is handed
// to the client; nil keeps the client default.
func (c Config) EtcdConfig(logger *zap.Logger) etcd.Config {
	return etcd.Config{ //nolint:exhaustruct
		Endpoints:   c.Endpoints,
		DialTimeout: c.DialTimeout,
		Username:    c.Username,
		Password:    c.Password,
		Logger:      logger,
	}
}
