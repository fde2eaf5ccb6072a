package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-authgate"
	"github.com/goliatone/go-errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAddr       = ":8080"
	DefaultDSN        = "file:authgate.db?cache=shared"
	DefaultTokenTTL   = time.Hour
	DefaultContextKey = "security"
	DefaultLogLevel   = "info"
	envPrefix         = "AUTHGATE_"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig holds the account store connection
type DatabaseConfig struct {
	DSN   string `yaml:"dsn"`
	Debug bool   `yaml:"debug"`
}

// AuthConfig holds the gateway options
type AuthConfig struct {
	SigningKey string        `yaml:"signing_key"`
	TokenTTL   time.Duration `yaml:"token_ttl"`
	Issuer     string        `yaml:"issuer"`
	AuthScheme string        `yaml:"auth_scheme"`
	ContextKey string        `yaml:"context_key"`
	HashCost   int           `yaml:"hash_cost"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Defaults returns a configuration with every optional value set
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            DefaultAddr,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			DSN: DefaultDSN,
		},
		Auth: AuthConfig{
			TokenTTL:   DefaultTokenTTL,
			AuthScheme: authgate.DefaultAuthScheme,
			ContextKey: DefaultContextKey,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: "text",
		},
	}
}

// Load reads path, when given, over the defaults and then applies
// AUTHGATE_* environment overrides. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to read config file").
				WithMetadata(map[string]any{"path": path})
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, errors.Wrap(err, errors.CategoryValidation, "failed to parse config file").
				WithMetadata(map[string]any{"path": path})
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the values the gateway cannot start without
func (c *Config) Validate() error {
	if len(c.Auth.SigningKey) < authgate.MinSigningKeyLength {
		return authgate.ErrSigningKeyTooShort.Clone().WithMetadata(map[string]any{
			"min_length": authgate.MinSigningKeyLength,
			"length":     len(c.Auth.SigningKey),
		})
	}
	if c.Auth.TokenTTL <= 0 {
		return authgate.ErrInvalidTokenTTL.Clone().WithMetadata(map[string]any{
			"ttl": c.Auth.TokenTTL.String(),
		})
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.New("server address is required", errors.CategoryValidation)
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		return errors.New("database dsn is required", errors.CategoryValidation)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(envPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	dur := func(name string, dst *time.Duration) error {
		v, ok := lookup(envPrefix + name)
		if !ok || v == "" {
			return nil
		}
		d, err := parseDuration(v)
		if err != nil {
			return errors.Wrap(err, errors.CategoryValidation, "invalid duration").
				WithMetadata(map[string]any{"env": envPrefix + name})
		}
		*dst = d
		return nil
	}

	str("ADDR", &c.Server.Addr)
	str("DATABASE_DSN", &c.Database.DSN)
	str("SIGNING_KEY", &c.Auth.SigningKey)
	str("ISSUER", &c.Auth.Issuer)
	str("AUTH_SCHEME", &c.Auth.AuthScheme)
	str("CONTEXT_KEY", &c.Auth.ContextKey)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)

	if err := dur("TOKEN_TTL", &c.Auth.TokenTTL); err != nil {
		return err
	}
	if v, ok := lookup(envPrefix + "DATABASE_DEBUG"); ok && v != "" {
		c.Database.Debug = strings.EqualFold(v, "true") || v == "1"
	}
	if v, ok := lookup(envPrefix + "HASH_COST"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(err, errors.CategoryValidation, "invalid hash cost").
				WithMetadata(map[string]any{"env": envPrefix + "HASH_COST"})
		}
		c.Auth.HashCost = n
	}
	return nil
}

// parseDuration accepts Go durations and plain milliseconds
func parseDuration(v string) (time.Duration, error) {
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(v)
}

// GetSigningKey implements authgate.Config
func (c *Config) GetSigningKey() string {
	return c.Auth.SigningKey
}

// GetTokenTTL implements authgate.Config
func (c *Config) GetTokenTTL() time.Duration {
	return c.Auth.TokenTTL
}

// GetIssuer implements authgate.Config
func (c *Config) GetIssuer() string {
	return c.Auth.Issuer
}

// GetAuthScheme implements authgate.Config
func (c *Config) GetAuthScheme() string {
	if c.Auth.AuthScheme == "" {
		return authgate.DefaultAuthScheme
	}
	return c.Auth.AuthScheme
}

// GetContextKey implements authgate.Config
func (c *Config) GetContextKey() string {
	if c.Auth.ContextKey == "" {
		return DefaultContextKey
	}
	return c.Auth.ContextKey
}

// Redacted returns a copy safe to print
func (c *Config) Redacted() Config {
	out := *c
	if out.Auth.SigningKey != "" {
		out.Auth.SigningKey = "***"
	}
	return out
}
