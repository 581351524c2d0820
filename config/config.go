package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Pricing    PricingConfig    `yaml:"pricing"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Sweeper    SweeperConfig    `yaml:"sweeper"`
	Log        LogConfig        `yaml:"log"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size      int `yaml:"size"`
	QueueSize int `yaml:"queue_size"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RequestIPHeader string  `yaml:"request_ip_header"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// PricingConfig controls how quotes are computed and rendered.
type PricingConfig struct {
	// Timezone decides which calendar days count as Saturday and Sunday.
	Timezone       string         `yaml:"timezone"`
	Location       *time.Location `yaml:"-"`
	CurrencySymbol string         `yaml:"currency_symbol"`
}

// SweeperConfig holds the no-show sweeper configuration.
type SweeperConfig struct {
	Enabled            bool          `yaml:"enabled"`
	IntervalSeconds    int           `yaml:"interval_seconds"`
	Interval           time.Duration `yaml:"-"` // Ignored by YAML parser
	NoShowGraceMinutes int           `yaml:"no_show_grace_minutes"`
	NoShowGrace        time.Duration `yaml:"-"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                       string `yaml:"dsn"`
	MaxOpenConns              int    `yaml:"max_open_conns"`
	MaxIdleConns              int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes    int    `yaml:"conn_max_lifetime_minutes"`
	EnableExclusionConstraint bool   `yaml:"enable_exclusion_constraint"`
}

// LogConfig selects the logger level and encoding.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) applyDefaults() error {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 5
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 10
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 30
	}

	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "file::memory:?cache=shared"
	}

	if cfg.Pricing.Timezone == "" {
		cfg.Pricing.Timezone = "UTC"
	}
	loc, err := time.LoadLocation(cfg.Pricing.Timezone)
	if err != nil {
		return fmt.Errorf("invalid pricing.timezone %q: %w", cfg.Pricing.Timezone, err)
	}
	cfg.Pricing.Location = loc

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		cfg.WorkerPool.Size = 1
	}
	if cfg.WorkerPool.QueueSize <= 0 {
		cfg.WorkerPool.QueueSize = 100
	}

	if cfg.Sweeper.IntervalSeconds <= 0 {
		cfg.Sweeper.IntervalSeconds = 60
	}
	cfg.Sweeper.Interval = time.Duration(cfg.Sweeper.IntervalSeconds) * time.Second
	if cfg.Sweeper.NoShowGraceMinutes <= 0 {
		cfg.Sweeper.NoShowGraceMinutes = 30
	}
	cfg.Sweeper.NoShowGrace = time.Duration(cfg.Sweeper.NoShowGraceMinutes) * time.Minute

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	return nil
}
