package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Booking  BookingConfig  `yaml:"booking"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig holds the database connection configuration. DSN may be
// overridden with the DATABASE_URL environment variable.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// AuthConfig holds token settings. The signing secret comes from the
// JWT_SECRET environment variable, never from the config file.
type AuthConfig struct {
	TokenTTLHours int `yaml:"token_ttl_hours"`
}

// BookingConfig is the reservation policy: slot size, weekly quota caps per
// machine type, the calendar week used for quota accounting, and which machine
// types require an automatically chained follow-on machine.
type BookingConfig struct {
	SlotDurationMinutes int               `yaml:"slot_duration_minutes"`
	WeeklyCapHours      map[string]int    `yaml:"weekly_cap_hours"`
	WeekStart           string            `yaml:"week_start"`
	Timezone            string            `yaml:"timezone"`
	DependentTypes      map[string]string `yaml:"dependent_types"`
}

// Load reads the configuration from the given path and applies defaults.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyDefaults()

	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		cfg.Database.DSN = dsn
	}
	return &cfg, nil
}

// Default returns the configuration used when no config file is supplied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		cfg.Database.DSN = dsn
	}
	return cfg
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 60
	}
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "laundry.db"
	}
	if cfg.Database.MaxOpenConns <= 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns <= 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetimeMinutes <= 0 {
		cfg.Database.ConnMaxLifetimeMinutes = 30
	}
	if cfg.Auth.TokenTTLHours <= 0 {
		cfg.Auth.TokenTTLHours = 24
	}
	if cfg.Booking.SlotDurationMinutes <= 0 {
		cfg.Booking.SlotDurationMinutes = 60
	}
	if cfg.Booking.WeeklyCapHours == nil {
		cfg.Booking.WeeklyCapHours = map[string]int{"washer": 2, "dryer": 2}
	}
	if cfg.Booking.WeekStart == "" {
		cfg.Booking.WeekStart = "monday"
	}
	if cfg.Booking.Timezone == "" {
		cfg.Booking.Timezone = "Europe/Berlin"
	}
	if cfg.Booking.DependentTypes == nil {
		cfg.Booking.DependentTypes = map[string]string{"washer": "dryer"}
	}
}

// ParseWeekday maps a config weekday name to time.Weekday.
func ParseWeekday(name string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sunday":
		return time.Sunday, nil
	case "monday":
		return time.Monday, nil
	case "tuesday":
		return time.Tuesday, nil
	case "wednesday":
		return time.Wednesday, nil
	case "thursday":
		return time.Thursday, nil
	case "friday":
		return time.Friday, nil
	case "saturday":
		return time.Saturday, nil
	}
	return time.Monday, fmt.Errorf("unknown weekday %q", name)
}
