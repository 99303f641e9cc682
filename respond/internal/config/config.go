// Package config provides configuration loading for the respond service.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the respond service
type Config struct {
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Database  DatabaseConfig  `mapstructure:"database" yaml:"database"`
	Redis     RedisConfig     `mapstructure:"redis" yaml:"redis"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit" yaml:"rate_limit"`
	Auth      AuthConfig      `mapstructure:"auth" yaml:"auth"`
	CORS      CORSConfig      `mapstructure:"cors" yaml:"cors"`
	TimeFrame TimeFrameConfig `mapstructure:"timeframe" yaml:"timeframe"`
	Assets    AssetsConfig    `mapstructure:"assets" yaml:"assets"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
	NATS      NATSConfig      `mapstructure:"nats" yaml:"nats"`
	Metrics   MetricsConfig   `mapstructure:"metrics" yaml:"metrics"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int           `mapstructure:"port" yaml:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes" yaml:"max_body_bytes"`
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres" yaml:"postgres"`
}

// PostgresConfig holds PostgreSQL connection settings
type PostgresConfig struct {
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port"`
	User     string `mapstructure:"user" yaml:"user"`
	Password string `mapstructure:"password" yaml:"password"`
	Database string `mapstructure:"database" yaml:"database"`
	SSLMode  string `mapstructure:"sslmode" yaml:"sslmode"`
	MaxConns int32  `mapstructure:"max_conns" yaml:"max_conns"`
}

// ConnString builds the postgres:// URL used by pgx and golang-migrate.
func (p PostgresConfig) ConnString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode,
	)
}

// RedisConfig holds Redis configuration for rate limiting
type RedisConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
}

// RateLimitConfig holds request rate limit settings
type RateLimitConfig struct {
	Enabled     bool          `mapstructure:"enabled" yaml:"enabled"`
	MaxRequests int           `mapstructure:"max_requests" yaml:"max_requests"`
	Window      time.Duration `mapstructure:"window" yaml:"window"`
	// AuthMaxRequests applies to login and signup per client IP.
	AuthMaxRequests int `mapstructure:"auth_max_requests" yaml:"auth_max_requests"`
}

// AuthConfig holds token and password settings
type AuthConfig struct {
	JWTSecret  string        `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	TokenTTL   time.Duration `mapstructure:"token_ttl" yaml:"token_ttl"`
	BcryptCost int           `mapstructure:"bcrypt_cost" yaml:"bcrypt_cost"`

	// PruneInterval is how often expired whitelist rows are deleted. Zero disables pruning.
	PruneInterval time.Duration `mapstructure:"prune_interval" yaml:"prune_interval"`
}

// CORSConfig holds allowed browser origins
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

// TimeFrameConfig controls the calendar used for time-frame filters
type TimeFrameConfig struct {
	Location string `mapstructure:"location" yaml:"location"`
}

// LoadLocation resolves the configured location name ("UTC", "Local", IANA name).
func (t TimeFrameConfig) LoadLocation() (*time.Location, error) {
	if t.Location == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(t.Location)
	if err != nil {
		return nil, fmt.Errorf("invalid timeframe.location %q: %w", t.Location, err)
	}
	return loc, nil
}

// AssetsConfig holds asset lookup behaviour
type AssetsConfig struct {
	// LegacyGroupMembership also matches assets through the encoded
	// asset_group_id column in addition to the assignment table.
	LegacyGroupMembership bool `mapstructure:"legacy_group_membership" yaml:"legacy_group_membership"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// NATSConfig holds NATS message broker configuration
type NATSConfig struct {
	URL           string        `mapstructure:"url" yaml:"url"`
	Enabled       bool          `mapstructure:"enabled" yaml:"enabled"`
	MaxReconnects int           `mapstructure:"max_reconnects" yaml:"max_reconnects"`
	ReconnectWait time.Duration `mapstructure:"reconnect_wait" yaml:"reconnect_wait"`
	Token         string        `mapstructure:"token" yaml:"token"`
}

// MetricsConfig holds the prometheus endpoint settings
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// legacyEnv maps config keys to the environment variable names used by
// earlier deployments. RESPOND_* names still take precedence.
var legacyEnv = map[string]string{
	"server.port":                "PORT",
	"cors.allowed_origins":       "CORS_ORIGIN",
	"auth.jwt_secret":            "JWT_SECRET",
	"database.postgres.host":     "DB_HOST",
	"database.postgres.port":     "DB_PORT",
	"database.postgres.user":     "DB_USER",
	"database.postgres.password": "DB_PASSWORD",
	"database.postgres.database": "DB_NAME",
	"rate_limit.max_requests":    "COMMON_RATE_LIMIT_MAX_REQUESTS",
}

// Load reads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/axisir/respond")
	}

	// Environment variables override (RESPOND_SERVER_PORT, etc.)
	v.SetEnvPrefix("RESPOND")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for key, legacy := range legacyEnv {
		envName := "RESPOND_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envName, legacy); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", legacy, err)
		}
	}
	// COMMON_RATE_LIMIT_WINDOW_MS is in milliseconds, not a duration string.
	if err := v.BindEnv("legacy.rate_limit_window_ms", "COMMON_RATE_LIMIT_WINDOW_MS"); err != nil {
		return nil, fmt.Errorf("bind env COMMON_RATE_LIMIT_WINDOW_MS: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		// Only fail if a specific config path was given
		if configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if ms := v.GetInt64("legacy.rate_limit_window_ms"); ms > 0 {
		cfg.RateLimit.Window = time.Duration(ms) * time.Millisecond
	}
	cfg.CORS.AllowedOrigins = splitOrigins(cfg.CORS.AllowedOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret (or JWT_SECRET) must be set")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.RateLimit.Enabled && (c.RateLimit.MaxRequests <= 0 || c.RateLimit.Window <= 0) {
		return fmt.Errorf("rate_limit requires positive max_requests and window")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive")
	}
	if _, err := c.TimeFrame.LoadLocation(); err != nil {
		return err
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.max_body_bytes", 1<<20)

	v.SetDefault("database.postgres.host", "localhost")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.user", "axisir")
	v.SetDefault("database.postgres.password", "")
	v.SetDefault("database.postgres.database", "axisir")
	v.SetDefault("database.postgres.sslmode", "disable")
	v.SetDefault("database.postgres.max_conns", 25)

	v.SetDefault("redis.url", "redis://localhost:6379/0")

	v.SetDefault("rate_limit.enabled", false)
	v.SetDefault("rate_limit.max_requests", 1000)
	v.SetDefault("rate_limit.window", "1s")
	v.SetDefault("rate_limit.auth_max_requests", 10)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", "1h")
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.prune_interval", "15m")

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("timeframe.location", "UTC")

	v.SetDefault("assets.legacy_group_membership", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.enabled", false)
	v.SetDefault("nats.max_reconnects", -1)
	v.SetDefault("nats.reconnect_wait", "2s")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// splitOrigins accepts both YAML lists and a comma-separated env value.
func splitOrigins(in []string) []string {
	var out []string
	for _, o := range in {
		for _, part := range strings.Split(o, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// Redacted returns a copy with secrets masked, for printing.
func (c Config) Redacted() Config {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "********"
	}
	c.Auth.JWTSecret = mask(c.Auth.JWTSecret)
	c.Database.Postgres.Password = mask(c.Database.Postgres.Password)
	c.NATS.Token = mask(c.NATS.Token)
	return c
}
