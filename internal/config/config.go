package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultStreakMaxLookbackDays   = 3 * 365
	DefaultLoginRateLimitPerMin    = 15
	DefaultSessionsCleanupInterval = 8 * time.Hour
)

type Config struct {
	Environment string `toml:"environment"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// postgres
	PostgresHost     string `toml:"postgres_host"`
	PostgresPort     string `toml:"postgres_port"`
	PostgresDBName   string `toml:"postgres_db_name"`
	PostgresUser     string `toml:"postgres_user"`
	PostgresMaxConns int32  `toml:"postgres_max_conns"`

	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`

	// prometheus
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	LoginRateLimitAllowedPerMin int      `toml:"login_rate_limit_allowed_per_min"`
	CorsAllowedOrigins          []string `toml:"cors_allowed_origins"`
	SessionsCleanupInterval     string   `toml:"sessions_cleanup_interval"`

	// dashboard
	Timezone              string `toml:"timezone"`
	StreakMaxLookbackDays int    `toml:"streak_max_lookback_days"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("no config section for env: %s", env)
	}
	return cfg, nil
}

// Load reads the TOML file at path and returns the section for env,
// with defaults filled in.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file [%s]: %w", path, err)
	}
	return fromToml(t, env)
}

// Parse is Load over an in-memory TOML document.
func Parse(env, data string) (*Config, error) {
	var t Toml
	if _, err := toml.Decode(data, &t); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return fromToml(t, env)
}

func fromToml(t Toml, env string) (*Config, error) {
	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg.Environment == "" {
		cfg.Environment = strings.ToLower(env)
	}
	cfg.setDefaults()

	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	if _, err := cfg.CleanupInterval(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.StreakMaxLookbackDays <= 0 {
		c.StreakMaxLookbackDays = DefaultStreakMaxLookbackDays
	}
	if c.LoginRateLimitAllowedPerMin <= 0 {
		c.LoginRateLimitAllowedPerMin = DefaultLoginRateLimitPerMin
	}
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	if c.SessionsCleanupInterval == "" {
		c.SessionsCleanupInterval = DefaultSessionsCleanupInterval.String()
	}
}

// CleanupInterval is how often the expired login sessions are removed.
func (c *Config) CleanupInterval() (time.Duration, error) {
	d, err := time.ParseDuration(c.SessionsCleanupInterval)
	if err != nil {
		return 0, fmt.Errorf("parse sessions cleanup interval [%s]: %w", c.SessionsCleanupInterval, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("sessions cleanup interval must be positive: %s", d)
	}
	return d, nil
}

// Location is the timezone used to decide what "today" is for dashboard users.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone [%s]: %w", c.Timezone, err)
	}
	return loc, nil
}
