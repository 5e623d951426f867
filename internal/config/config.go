package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config is the application configuration: YAML file first, then environment overrides
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Database     DatabaseConfig     `yaml:"database"`
	Redis        RedisConfig        `yaml:"redis"`
	JWT          JWTConfig          `yaml:"jwt"`
	CORS         CORSConfig         `yaml:"cors"`
	Security     SecurityConfig     `yaml:"security"`
	RateLimit    RateLimitConfig    `yaml:"rate_limit"`
	Notification NotificationConfig `yaml:"notification"`
	Admin        AdminSeedConfig    `yaml:"admin"`
}

type ServerConfig struct {
	Env     string `yaml:"env" env:"APP_ENV"`
	Port    int    `yaml:"port" env:"PORT"`
	BaseURL string `yaml:"base_url" env:"BASE_URL"`
}

type DatabaseConfig struct {
	Driver          string `yaml:"driver" env:"DATABASE_DRIVER"` // postgres, mysql, sqlite
	DSN             string `yaml:"dsn" env:"DATABASE_URL"`
	MaxIdleConns    int    `yaml:"max_idle_conns" env:"DATABASE_MAX_IDLE_CONNS"`
	MaxOpenConns    int    `yaml:"max_open_conns" env:"DATABASE_MAX_OPEN_CONNS"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime" env:"DATABASE_CONN_MAX_LIFETIME"` // seconds
	LogLevel        string `yaml:"log_level" env:"DATABASE_LOG_LEVEL"`
}

type RedisConfig struct {
	Host     string `yaml:"host" env:"REDIS_HOST"`
	Port     int    `yaml:"port" env:"REDIS_PORT"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
	PoolSize int    `yaml:"pool_size" env:"REDIS_POOL_SIZE"`
}

type JWTConfig struct {
	Secret    string `yaml:"secret" env:"JWT_SECRET"`
	ExpiresIn int    `yaml:"expires_in" env:"JWT_EXPIRES_IN"` // minutes
}

// TTL returns the access token lifetime
func (j JWTConfig) TTL() time.Duration {
	return time.Duration(j.ExpiresIn) * time.Minute
}

type CORSConfig struct {
	AllowOrigins string `yaml:"allow_origins" env:"CORS_ALLOW_ORIGINS"`
}

// Origins splits the comma separated origin list
func (c CORSConfig) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

type SecurityConfig struct {
	SettingsEncryptionKey string `yaml:"settings_encryption_key" env:"SETTINGS_ENCRYPTION_KEY"`
}

type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled" env:"RATE_LIMIT_ENABLED"`
	RequestsPerMinute int  `yaml:"requests_per_minute" env:"RATE_LIMIT_RPM"`
}

type NotificationConfig struct {
	Timeout         int    `yaml:"timeout" env:"NOTIFICATION_TIMEOUT"` // seconds
	PurgeSchedule   string `yaml:"purge_schedule" env:"INVITATION_PURGE_SCHEDULE"`
	PurgeRetainDays int    `yaml:"purge_retain_days" env:"INVITATION_PURGE_RETAIN_DAYS"`
}

// AdminSeedConfig creates the first admin when the users table is empty
type AdminSeedConfig struct {
	Username string `yaml:"username" env:"ADMIN_USERNAME"`
	Email    string `yaml:"email" env:"ADMIN_EMAIL"`
	Password string `yaml:"password" env:"ADMIN_PASSWORD"`
}

// Default returns a configuration usable for local development
func Default() *Config {
	return &Config{
		Server: ServerConfig{Env: "local", Port: 8081, BaseURL: "http://localhost:3000"},
		Database: DatabaseConfig{
			Driver:          "postgres",
			DSN:             "host=localhost user=wiki password=wiki dbname=wiki port=5432 sslmode=disable",
			MaxIdleConns:    10,
			MaxOpenConns:    50,
			ConnMaxLifetime: 300,
			LogLevel:        "warn",
		},
		Redis:     RedisConfig{Port: 6379, PoolSize: 10},
		JWT:       JWTConfig{ExpiresIn: 24 * 60},
		CORS:      CORSConfig{AllowOrigins: "http://localhost:3000"},
		RateLimit: RateLimitConfig{Enabled: true, RequestsPerMinute: 120},
		Notification: NotificationConfig{
			Timeout:         10,
			PurgeSchedule:   "0 3 * * *",
			PurgeRetainDays: 30,
		},
	}
}

// Load reads the YAML file at path (if present) over the defaults, then applies environment variables
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// env only
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsDevelopment reports whether the server runs in a local/dev environment
func (c *Config) IsDevelopment() bool {
	switch c.Server.Env {
	case "", "local", "dev", "development", "test":
		return true
	}
	return false
}

// Validate rejects configurations that are unsafe outside development
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("database dsn is required")
	}

	if c.JWT.Secret == "" {
		if !c.IsDevelopment() {
			return errors.New("JWT_SECRET is required")
		}
		c.JWT.Secret = "local-development-secret-change-me"
	}
	if !c.IsDevelopment() && len(c.JWT.Secret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters")
	}
	if c.JWT.ExpiresIn <= 0 {
		c.JWT.ExpiresIn = 24 * 60
	}
	if c.Notification.Timeout <= 0 {
		c.Notification.Timeout = 10
	}
	return nil
}

// NotificationTimeout returns the outbound notification deadline
func (c *Config) NotificationTimeout() time.Duration {
	return time.Duration(c.Notification.Timeout) * time.Second
}

// Summary returns the resolved non-secret settings for startup logging
func (c *Config) Summary() map[string]interface{} {
	return map[string]interface{}{
		"env":              c.Server.Env,
		"port":             c.Server.Port,
		"base_url":         c.Server.BaseURL,
		"db_driver":        c.Database.Driver,
		"redis":            c.Redis.Host != "",
		"rate_limit":       c.RateLimit.Enabled,
		"settings_key_set": c.Security.SettingsEncryptionKey != "",
	}
}
