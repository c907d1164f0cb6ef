package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	GraphURL           string        `mapstructure:"graph_url"`
	ClientID           string        `mapstructure:"client_id"`
	AppSecret          string        `mapstructure:"appsecret"`
	AccessToken        string        `mapstructure:"access_token"`
	HTTPTimeoutSeconds int64         `mapstructure:"http_timeout_seconds"`
	HTTPTimeout        time.Duration `mapstructure:"-"`

	PagesFile           string        `mapstructure:"pages_file"`
	PublishersFile      string        `mapstructure:"publishers_file"`
	PollIntervalSeconds int64         `mapstructure:"poll_interval"`
	PollInterval        time.Duration `mapstructure:"-"`

	StorageType            string        `mapstructure:"storage_type"`
	BBoltPath              string        `mapstructure:"bbolt_path"`
	StorageTTLSeconds      int64         `mapstructure:"storage_ttl_seconds"`
	StorageCleanupSeconds  int64         `mapstructure:"storage_cleanup_interval_seconds"`
	StorageTTL             time.Duration `mapstructure:"-"`
	StorageCleanupInterval time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "fbgraph")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("graph_url", "https://graph.facebook.com")
	v.SetDefault("client_id", "")
	v.SetDefault("appsecret", "")
	v.SetDefault("access_token", "")
	v.SetDefault("http_timeout_seconds", 15)
	v.SetDefault("pages_file", "./configs/pages.yaml")
	v.SetDefault("publishers_file", "./configs/publishers.yaml")
	v.SetDefault("poll_interval", 300) // seconds
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/fbgraph.db")
	v.SetDefault("storage_ttl_seconds", int64((60*24*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.GraphURL == "" {
		return nil, fmt.Errorf("graph_url must not be empty")
	}
	if cfg.HTTPTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid http_timeout_seconds (must be positive seconds)")
	}
	cfg.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSeconds) * time.Second

	if cfg.PollIntervalSeconds <= 0 {
		return nil, fmt.Errorf("invalid poll_interval (must be positive seconds)")
	}
	cfg.PollInterval = time.Duration(cfg.PollIntervalSeconds) * time.Second

	if cfg.StorageTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid storage_ttl_seconds (must be positive seconds)")
	}
	if cfg.StorageCleanupSeconds <= 0 {
		return nil, fmt.Errorf("invalid storage_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.StorageTTL = time.Duration(cfg.StorageTTLSeconds) * time.Second
	cfg.StorageCleanupInterval = time.Duration(cfg.StorageCleanupSeconds) * time.Second

	return &cfg, nil
}

// Redacted returns the config as loggable fields with credentials masked.
// The app secret and access token never reach the logs in the clear.
func (c *Config) Redacted() map[string]any {
	return map[string]any{
		"app_name":                         c.AppName,
		"app_env":                          c.Env,
		"log_level":                        c.LogLevel,
		"graph_url":                        c.GraphURL,
		"client_id":                        c.ClientID,
		"appsecret":                        maskSecret(c.AppSecret),
		"access_token":                     maskSecret(c.AccessToken),
		"http_timeout_seconds":             c.HTTPTimeoutSeconds,
		"pages_file":                       c.PagesFile,
		"publishers_file":                  c.PublishersFile,
		"poll_interval":                    c.PollIntervalSeconds,
		"storage_type":                     c.StorageType,
		"bbolt_path":                       c.BBoltPath,
		"storage_ttl_seconds":              c.StorageTTLSeconds,
		"storage_cleanup_interval_seconds": c.StorageCleanupSeconds,
	}
}

// maskSecret hides a credential value while still showing whether it is set.
func maskSecret(v string) string {
	if v == "" {
		return ""
	}
	return "***"
}
