// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port           int    `yaml:"port"`
	PublicHostname string `yaml:"public_hostname"` // used to build the endpoint URLs shown to merchants
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type GatewayConfig struct {
	// Token validity requested by merchants is clamped into
	// [MinTokenExpiryMin, MaxTokenExpiryMin] minutes.
	MinTokenExpiryMin int `yaml:"min_token_expiry_min"`
	MaxTokenExpiryMin int `yaml:"max_token_expiry_min"`

	ReceiptTTL         time.Duration `yaml:"receipt_ttl"`
	VerifyDeadline     time.Duration `yaml:"verify_deadline"`
	ReverseDeadline    time.Duration `yaml:"reverse_deadline"`
	Website            string        `yaml:"website"` // website shown to the payer on the payment page
	DecisionRateLimit  int           `yaml:"decision_rate_limit"`
	DecisionRateWindow time.Duration `yaml:"decision_rate_window"`
}

type SweeperConfig struct {
	Interval time.Duration `yaml:"interval"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Gateway  GatewayConfig  `yaml:"gateway"`
	Sweeper  SweeperConfig  `yaml:"sweeper"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// defaults
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 3000
	}
	if cfg.Server.PublicHostname == "" {
		cfg.Server.PublicHostname = "misconfig.example.com"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Gateway.MinTokenExpiryMin <= 0 {
		cfg.Gateway.MinTokenExpiryMin = 20
	}
	if cfg.Gateway.MaxTokenExpiryMin <= 0 {
		cfg.Gateway.MaxTokenExpiryMin = 3600
	}
	if cfg.Gateway.ReceiptTTL <= 0 {
		cfg.Gateway.ReceiptTTL = time.Hour
	}
	if cfg.Gateway.VerifyDeadline <= 0 {
		cfg.Gateway.VerifyDeadline = 30 * time.Minute
	}
	if cfg.Gateway.ReverseDeadline <= 0 {
		cfg.Gateway.ReverseDeadline = 50 * time.Minute
	}
	if cfg.Gateway.Website == "" {
		cfg.Gateway.Website = "mock.example.com"
	}
	if cfg.Gateway.DecisionRateLimit <= 0 {
		cfg.Gateway.DecisionRateLimit = 30
	}
	if cfg.Gateway.DecisionRateWindow <= 0 {
		cfg.Gateway.DecisionRateWindow = time.Minute
	}
	if cfg.Sweeper.Interval <= 0 {
		cfg.Sweeper.Interval = time.Minute
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Gateway.MinTokenExpiryMin > cfg.Gateway.MaxTokenExpiryMin {
		return nil, errors.New("gateway.min_token_expiry_min exceeds max_token_expiry_min")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
