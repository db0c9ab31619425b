package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Locks      LocksConfig      `yaml:"locks"`
	Pricing    PricingConfig    `yaml:"pricing"`
	Lifecycle  LifecycleConfig  `yaml:"lifecycle"`
	Backup     BackupConfig     `yaml:"backup"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	API        APIConfig        `yaml:"api"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// LocksConfig tunes the booking-lock protocol.
type LocksConfig struct {
	TTLMinutes           int `yaml:"ttl_minutes"`
	SweepIntervalSeconds int `yaml:"sweep_interval_seconds"`
	AcquireMaxAttempts   int `yaml:"acquire_max_attempts"`
	AcquireBackoffMS     int `yaml:"acquire_backoff_ms"`
}

func (c LocksConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

func (c LocksConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}

func (c LocksConfig) AcquireBackoff() time.Duration {
	return time.Duration(c.AcquireBackoffMS) * time.Millisecond
}

type PricingConfig struct {
	CacheTTLSeconds int `yaml:"cache_ttl_seconds"`
}

func (c PricingConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// LifecycleConfig controls the daily pricing-event state sweep.
type LifecycleConfig struct {
	DailyRunTime string `yaml:"daily_run_time"` // "HH:MM", local time
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Interval      string `yaml:"interval"` // Go duration string
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type APIConfig struct {
	HTTP      APIHTTPConfig      `yaml:"http"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIHTTPConfig struct {
	Port int `yaml:"port"`
}

type APIAuthConfig struct {
	Enabled      bool           `yaml:"enabled"`
	HeaderAPIKey string         `yaml:"header_api_key"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
}

type APIClientKey struct {
	Key         string   `yaml:"key"`
	Name        string   `yaml:"name"`
	Permissions []string `yaml:"permissions"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional; environment wins over file values via ExpandEnv.
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}
	if c.Locks.TTLMinutes < 0 {
		return errors.New("locks.ttl_minutes must not be negative")
	}
	if _, err := parseDailyRunTime(c.Lifecycle.DailyRunTime); err != nil {
		return fmt.Errorf("lifecycle.daily_run_time: %w", err)
	}
	if c.API.Auth.Enabled && len(c.API.Auth.APIKeys) == 0 {
		return errors.New("api.auth is enabled but no api_keys are configured")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "roomstay"
	}
	if c.Locks.TTLMinutes == 0 {
		c.Locks.TTLMinutes = 15
	}
	if c.Locks.SweepIntervalSeconds == 0 {
		c.Locks.SweepIntervalSeconds = 60
	}
	if c.Locks.AcquireMaxAttempts == 0 {
		c.Locks.AcquireMaxAttempts = 3
	}
	if c.Locks.AcquireBackoffMS == 0 {
		c.Locks.AcquireBackoffMS = 50
	}
	if c.Pricing.CacheTTLSeconds == 0 {
		c.Pricing.CacheTTLSeconds = 60
	}
	if c.Lifecycle.DailyRunTime == "" {
		c.Lifecycle.DailyRunTime = "00:05"
	}
	if c.API.HTTP.Port == 0 {
		c.API.HTTP.Port = 8080
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Backup.Enabled && c.Backup.Interval == "" {
		c.Backup.Interval = "24h"
	}
}

// DailyRunClock returns the configured lifecycle run time as hour and minute.
func (c *Config) DailyRunClock() (hour, minute int) {
	hm, _ := parseDailyRunTime(c.Lifecycle.DailyRunTime)
	return hm[0], hm[1]
}

func parseDailyRunTime(raw string) ([2]int, error) {
	if raw == "" {
		return [2]int{0, 5}, nil
	}
	var hour, minute int
	if _, err := fmt.Sscanf(raw, "%d:%d", &hour, &minute); err != nil {
		return [2]int{}, fmt.Errorf("expected HH:MM, got %q", raw)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return [2]int{}, fmt.Errorf("out of range: %q", raw)
	}
	return [2]int{hour, minute}, nil
}
