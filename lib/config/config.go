// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pthm/composer"
	"github.com/pthm/composer/lib/display"
	"github.com/pthm/composer/lib/encoding"
	"github.com/pthm/composer/lib/protocol"
	"github.com/pthm/composer/lib/toolkit"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig     `yaml:"server"`
	Logging  LoggingConfig    `yaml:"logging"`
	Metrics  MetricsConfig    `yaml:"metrics"`
	Protocol ProtocolConfig   `yaml:"protocol"`
	Render   RenderConfig     `yaml:"render"`
	Catalog  composer.Catalog `yaml:"catalog"`
}

// ServerConfig configures the HTTP host.
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // Enable /metrics endpoint
	Path    string `yaml:"path"`    // Custom path (default: /metrics)
}

// ProtocolConfig configures the host message exchange.
type ProtocolConfig struct {
	Codec      string `yaml:"codec"`   // "json" or "msgpack"
	Framing    string `yaml:"framing"` // "lines" or "length", stdio transport only; msgpack requires length
	SigningKey string `yaml:"signing_key,omitempty"`
}

// RenderConfig configures rendering.
type RenderConfig struct {
	MaxDepth    int    `yaml:"max_depth"`
	RootKey     string `yaml:"root_key"`
	Placeholder string `yaml:"placeholder"`
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse reads configuration from YAML bytes. Environment variables in the
// document are expanded and COMPOSER_* variables override file values.
func Parse(data []byte) (*Config, error) {
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadFromEnv creates configuration entirely from environment variables.
//
// Environment variables:
//
//	COMPOSER_SERVER_HOST      - Server host (default: 0.0.0.0)
//	COMPOSER_SERVER_PORT      - Server port (default: 8080)
//	COMPOSER_LOG_LEVEL        - Log level: debug, info, warn, error (default: info)
//	COMPOSER_LOG_FORMAT       - Log format: json or console (default: json)
//	COMPOSER_METRICS_ENABLED  - Enable /metrics endpoint (default: false)
//	COMPOSER_CODEC            - Wire codec: json or msgpack (default: json)
//	COMPOSER_FRAMING          - Stdio framing: lines or length (default: lines, length for msgpack)
//	COMPOSER_SIGNING_KEY      - HMAC key for host messages (default: unsigned)
//	COMPOSER_MAX_DEPTH        - Maximum description nesting (default: 256)
func LoadFromEnv() (*Config, error) {
	var cfg Config

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadWithFallback loads path when it exists and falls back to environment
// variables otherwise. An empty path always uses the environment.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return LoadFromEnv()
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// Codec returns the configured wire codec.
func (c *Config) Codec() encoding.Codec {
	codec, err := encoding.Lookup(c.Protocol.Codec)
	if err != nil {
		return encoding.JSON()
	}
	return codec
}

// Signer returns the configured signer, or nil when signing is off.
func (c *Config) Signer() *encoding.Signer {
	return encoding.NewSigner([]byte(c.Protocol.SigningKey))
}

// Composer builds the composer from the configured catalog and the toolkit
// primitives. An empty catalog selects toolkit.DefaultCatalog.
func (c *Config) Composer(opts ...composer.Option) (*composer.Composer, error) {
	cat := c.Catalog
	if len(cat) == 0 {
		cat = toolkit.DefaultCatalog()
	}
	opts = append([]composer.Option{composer.WithMaxDepth(c.Render.MaxDepth)}, opts...)
	return composer.Build(cat, toolkit.Primitives(), opts...)
}

// applyEnvOverrides applies COMPOSER_* environment variables to the config.
// Environment variables always override file-based configuration.
func applyEnvOverrides(cfg *Config) {
	// Server configuration
	if v := os.Getenv("COMPOSER_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("COMPOSER_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("COMPOSER_SERVER_READ_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}

	// Logging configuration
	if v := os.Getenv("COMPOSER_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("COMPOSER_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	// Metrics configuration
	if v := os.Getenv("COMPOSER_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
	if v := os.Getenv("COMPOSER_METRICS_PATH"); v != "" {
		cfg.Metrics.Path = v
	}

	// Protocol configuration
	if v := os.Getenv("COMPOSER_CODEC"); v != "" {
		cfg.Protocol.Codec = v
	}
	if v := os.Getenv("COMPOSER_FRAMING"); v != "" {
		cfg.Protocol.Framing = v
	}
	if v := os.Getenv("COMPOSER_SIGNING_KEY"); v != "" {
		cfg.Protocol.SigningKey = v
	}

	// Render configuration
	if v := os.Getenv("COMPOSER_MAX_DEPTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Render.MaxDepth = n
		}
	}
}

// parseBool parses a boolean from common string values.
func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

func setDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	if cfg.Protocol.Codec == "" {
		cfg.Protocol.Codec = encoding.NameJSON
	}
	if cfg.Protocol.Framing == "" {
		cfg.Protocol.Framing = protocol.FramingLines
		if isMsgPack(cfg.Protocol.Codec) {
			cfg.Protocol.Framing = protocol.FramingLength
		}
	}

	if cfg.Render.MaxDepth == 0 {
		cfg.Render.MaxDepth = composer.DefaultMaxDepth
	}
	if cfg.Render.RootKey == "" {
		cfg.Render.RootKey = composer.DefaultKey
	}
	if cfg.Render.Placeholder == "" {
		cfg.Render.Placeholder = display.DefaultPlaceholder
	}
}

func isMsgPack(name string) bool {
	codec, err := encoding.Lookup(name)
	return err == nil && codec.Name() == encoding.NameMsgPack
}

func validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", cfg.Server.Port)
	}

	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console', got %q", cfg.Logging.Format)
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", cfg.Logging.Level)
	}

	if !strings.HasPrefix(cfg.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with '/', got %q", cfg.Metrics.Path)
	}

	if _, err := encoding.Lookup(cfg.Protocol.Codec); err != nil {
		return fmt.Errorf("protocol.codec: %w", err)
	}
	validFraming := map[string]bool{protocol.FramingLines: true, protocol.FramingLength: true}
	if !validFraming[cfg.Protocol.Framing] {
		return fmt.Errorf("protocol.framing must be 'lines' or 'length', got %q", cfg.Protocol.Framing)
	}
	// msgpack strings carry raw newline bytes.
	if isMsgPack(cfg.Protocol.Codec) && cfg.Protocol.Framing == protocol.FramingLines {
		return fmt.Errorf("protocol.framing must be 'length' with the msgpack codec")
	}

	if cfg.Render.MaxDepth < 1 {
		return fmt.Errorf("render.max_depth must be positive, got %d", cfg.Render.MaxDepth)
	}

	for name, def := range cfg.Catalog {
		if name == "" {
			return fmt.Errorf("catalog: %w", composer.ErrEmptyTypeName)
		}
		if def.Primitive == "" {
			return fmt.Errorf("catalog.%s.primitive is required", name)
		}
		for attr, ad := range def.Attributes {
			if _, err := ad.Attribute(); err != nil {
				return fmt.Errorf("catalog.%s.attributes.%s: %w", name, attr, err)
			}
		}
	}

	return nil
}
