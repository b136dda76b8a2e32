package api

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig configures the TCP server, the ZeroMQ endpoint and the
// metrics listener.
type ServerConfig struct {
	// TCPAddress is the listen address of the framed TCP server.
	TCPAddress string `yaml:"tcp_address"`
	// ZmqEndpoint is the REP endpoint; empty disables ZeroMQ.
	ZmqEndpoint string `yaml:"zmq_endpoint"`
	// MetricsAddress serves /metrics and /health; empty disables it.
	MetricsAddress string `yaml:"metrics_address"`
	// MaxMessageSize bounds every frame in both directions.
	MaxMessageSize int `yaml:"max_message_size"`
	// ReadTimeout bounds the wait for the next frame of a connection.
	// Zero waits forever.
	ReadTimeout time.Duration `yaml:"read_timeout"`
	LogLevel    string        `yaml:"log_level"`
	Auth        AuthConfig    `yaml:"auth"`
}

// DefaultServerConfig returns the configuration used when nothing else is
// given.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		TCPAddress:     ":50051",
		MetricsAddress: ":9090",
		MaxMessageSize: MaxMessageSize,
		ReadTimeout:    5 * time.Minute,
		LogLevel:       "info",
	}
}

// LoadServerConfig starts from the defaults, applies the YAML file at path
// when path is not empty, then the HIE_* environment variables.
func LoadServerConfig(path string) (ServerConfig, error) {
	cfg := DefaultServerConfig()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overrides cfg from the variables found by lookup:
// HIE_TCP_ADDRESS, HIE_ZMQ_ENDPOINT, HIE_METRICS_ADDRESS,
// HIE_MAX_MESSAGE_SIZE, HIE_READ_TIMEOUT, HIE_LOG_LEVEL, HIE_AUTH_ENABLED
// and HIE_AUTH_TOKEN.
func (cfg *ServerConfig) ApplyEnv(lookup func(string) (string, bool)) error {
	for name, dst := range map[string]*string{
		"HIE_TCP_ADDRESS":     &cfg.TCPAddress,
		"HIE_ZMQ_ENDPOINT":    &cfg.ZmqEndpoint,
		"HIE_METRICS_ADDRESS": &cfg.MetricsAddress,
		"HIE_LOG_LEVEL":       &cfg.LogLevel,
		"HIE_AUTH_TOKEN":      &cfg.Auth.Token,
	} {
		if v, ok := lookup(name); ok {
			*dst = v
		}
	}
	if v, ok := lookup("HIE_MAX_MESSAGE_SIZE"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HIE_MAX_MESSAGE_SIZE: %w", err)
		}
		cfg.MaxMessageSize = n
	}
	if v, ok := lookup("HIE_READ_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("HIE_READ_TIMEOUT: %w", err)
		}
		cfg.ReadTimeout = d
	}
	if v, ok := lookup("HIE_AUTH_ENABLED"); ok {
		cfg.Auth.Enabled = v == "true" || v == "1"
	}
	return nil
}

// Validate reports the first inconsistent setting.
func (cfg ServerConfig) Validate() error {
	if cfg.TCPAddress == "" && cfg.ZmqEndpoint == "" {
		return errors.New("config: neither tcp_address nor zmq_endpoint is set")
	}
	if cfg.MaxMessageSize <= 0 || cfg.MaxMessageSize > MaxMessageSize {
		return fmt.Errorf("config: max_message_size %d outside (0, %d]", cfg.MaxMessageSize, MaxMessageSize)
	}
	if cfg.ReadTimeout < 0 {
		return fmt.Errorf("config: negative read_timeout %s", cfg.ReadTimeout)
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log_level %q", cfg.LogLevel)
	}
	return nil
}
