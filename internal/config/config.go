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

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type ServerConfig struct {
	WebhookPort int `yaml:"webhook_port"` // payment platform callbacks
	APIPort     int `yaml:"api_port"`     // client/admin JSON API
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	PoolSize int    `yaml:"pool_size"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type RevenueCatConfig struct {
	APIKey        string `yaml:"api_key"`
	WebhookSecret string `yaml:"webhook_secret"`
	BaseURL       string `yaml:"base_url"`
}

type AIConfig struct {
	GeminiKey string `yaml:"gemini_key"`
	GeminiURL string `yaml:"gemini_url"`
	Model     string `yaml:"model"`
}

type CreditsConfig struct {
	// Catalog maps store product ids to grant amounts. Must stay in
	// sync with the packages configured at the payment platform; this
	// copy is the authoritative one for fulfillment.
	Catalog map[string]int64 `yaml:"catalog"`
	Welcome int64            `yaml:"welcome"`
}

type AuthConfig struct {
	JWTSecret   string `yaml:"jwt_secret"`
	AdminAPIKey string `yaml:"admin_api_key"`
}

type NotifyConfig struct {
	ExpoPushURL string `yaml:"expo_push_url"`
	Workers     int    `yaml:"workers"`
}

type ReconcileConfig struct {
	Interval time.Duration `yaml:"interval"`
	Lookback time.Duration `yaml:"lookback"`
	Batch    int           `yaml:"batch"`
}

type Config struct {
	Log        LogConfig        `yaml:"log"`
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	RevenueCat RevenueCatConfig `yaml:"revenuecat"`
	AI         AIConfig         `yaml:"ai"`
	Credits    CreditsConfig    `yaml:"credits"`
	Auth       AuthConfig       `yaml:"auth"`
	Notify     NotifyConfig     `yaml:"notify"`
	Reconcile  ReconcileConfig  `yaml:"reconcile"`

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
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Server.WebhookPort == 0 {
		cfg.Server.WebhookPort = 8081
	}
	if cfg.Server.APIPort == 0 {
		cfg.Server.APIPort = 8080
	}
	if cfg.Database.PoolSize <= 0 {
		cfg.Database.PoolSize = 10
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = time.Hour
	}
	if cfg.RevenueCat.BaseURL == "" {
		cfg.RevenueCat.BaseURL = "https://api.revenuecat.com/v1"
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "gemini-2.0-flash"
	}
	if cfg.Credits.Welcome == 0 {
		cfg.Credits.Welcome = 3
	}
	if cfg.Notify.ExpoPushURL == "" {
		cfg.Notify.ExpoPushURL = "https://exp.host/--/api/v2/push/send"
	}
	if cfg.Notify.Workers <= 0 {
		cfg.Notify.Workers = 4
	}
	if cfg.Reconcile.Interval <= 0 {
		cfg.Reconcile.Interval = 6 * time.Hour
	}
	if cfg.Reconcile.Lookback <= 0 {
		cfg.Reconcile.Lookback = 48 * time.Hour
	}
	if cfg.Reconcile.Batch <= 0 {
		cfg.Reconcile.Batch = 200
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.RevenueCat.WebhookSecret == "" {
		return nil, errors.New("revenuecat.webhook_secret is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("auth.jwt_secret is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
