package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server         ServerConfig         `yaml:"server"`
	Database       DatabaseConfig       `yaml:"database"`
	Inventory      InventoryConfig      `yaml:"inventory"`
	Redis          RedisConfig          `yaml:"redis"`
	Hermes         HermesConfig         `yaml:"hermes"`
	Inference      InferenceConfig      `yaml:"inference"`
	Fuel           FuelConfig           `yaml:"fuel"`
	Recommendation RecommendationConfig `yaml:"recommendation"`
	Cache          CacheConfig          `yaml:"cache"`
	Logging        LoggingConfig        `yaml:"logging"`
}

type ServerConfig struct {
	Port        int    `yaml:"port"`
	MetricsPort int    `yaml:"metrics_port"`
	AdminToken  string `yaml:"admin_token"`
	// RateLimitPerMinute caps requests per client; zero disables limiting.
	RateLimitPerMinute int `yaml:"rate_limit_per_minute"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// InventoryConfig points at a YAML inventory used when no database is set.
type InventoryConfig struct {
	File string `yaml:"file"`
}

// RedisConfig enables the shared score cache and fuel price store. An empty
// address keeps both in process memory.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type HermesConfig struct {
	URL string `yaml:"url"`
}

type InferenceConfig struct {
	Provider      string `yaml:"provider"`
	URL           string `yaml:"url"`
	APIKey        string `yaml:"api_key"`
	Model         string `yaml:"model"`
	TimeoutMs     int    `yaml:"timeout_ms"`
	MaxRetries    int    `yaml:"max_retries"`
	FixedResponse string `yaml:"fixed_response"`
}

type FuelConfig struct {
	// OverridePrice, when positive, wins over every other source.
	OverridePrice          float64 `yaml:"override_price"`
	DefaultPrice           float64 `yaml:"default_price"`
	FeedURL                string  `yaml:"feed_url"`
	FeedToken              string  `yaml:"feed_token"`
	Region                 string  `yaml:"region"`
	CacheTTLHours          int     `yaml:"cache_ttl_hours"`
	FetchTimeoutMs         int     `yaml:"fetch_timeout_ms"`
	RefreshIntervalMinutes int     `yaml:"refresh_interval_minutes"`
}

type RecommendationConfig struct {
	Workers     int `yaml:"workers"`
	DefaultTopN int `yaml:"default_top_n"`
	MaxTopN     int `yaml:"max_top_n"`
}

type CacheConfig struct {
	TTLMinutes  int    `yaml:"ttl_minutes"`
	RedisPrefix string `yaml:"redis_prefix"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Config) InferenceTimeout() time.Duration {
	return time.Duration(c.Inference.TimeoutMs) * time.Millisecond
}

func (c *Config) FuelCacheTTL() time.Duration {
	return time.Duration(c.Fuel.CacheTTLHours) * time.Hour
}

func (c *Config) FuelFetchTimeout() time.Duration {
	return time.Duration(c.Fuel.FetchTimeoutMs) * time.Millisecond
}

// FuelRefreshInterval is zero when background refresh is off.
func (c *Config) FuelRefreshInterval() time.Duration {
	return time.Duration(c.Fuel.RefreshIntervalMinutes) * time.Minute
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLMinutes) * time.Minute
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:               8700,
			MetricsPort:        8701,
			RateLimitPerMinute: 120,
		},
		Hermes: HermesConfig{
			URL: "nats://localhost:4222",
		},
		Inference: InferenceConfig{
			Provider:   "disabled",
			URL:        "https://api.openai.com",
			Model:      "gpt-4o-mini",
			TimeoutMs:  4000,
			MaxRetries: 3,
		},
		Fuel: FuelConfig{
			DefaultPrice:           5.89,
			Region:                 "BR",
			CacheTTLHours:          168,
			FetchTimeoutMs:         3000,
			RefreshIntervalMinutes: 360,
		},
		Recommendation: RecommendationConfig{
			Workers:     8,
			DefaultTopN: 3,
			MaxTopN:     20,
		},
		Cache: CacheConfig{
			TTLMinutes:  1440,
			RedisPrefix: "shortlist:score:",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Recommendation.Workers <= 0 {
		errs = append(errs, fmt.Errorf("recommendation.workers must be positive, got %d", c.Recommendation.Workers))
	}
	if c.Recommendation.MaxTopN <= 0 {
		errs = append(errs, fmt.Errorf("recommendation.max_top_n must be positive, got %d", c.Recommendation.MaxTopN))
	}
	switch c.Inference.Provider {
	case "http", "fixed", "disabled":
	default:
		errs = append(errs, fmt.Errorf("unknown inference.provider %q", c.Inference.Provider))
	}
	if c.Inference.Provider == "http" && c.Inference.URL == "" {
		errs = append(errs, errors.New("inference.url is required for the http provider"))
	}
	if c.Fuel.OverridePrice < 0 {
		errs = append(errs, fmt.Errorf("fuel.override_price must not be negative, got %v", c.Fuel.OverridePrice))
	}
	if c.Fuel.DefaultPrice <= 0 {
		errs = append(errs, fmt.Errorf("fuel.default_price must be positive, got %v", c.Fuel.DefaultPrice))
	}
	if c.Server.RateLimitPerMinute < 0 {
		errs = append(errs, errors.New("server.rate_limit_per_minute must not be negative"))
	}
	return errors.Join(errs...)
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SHORTLIST_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("SHORTLIST_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("SHORTLIST_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("SHORTLIST_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("SHORTLIST_INVENTORY_FILE"); v != "" {
		cfg.Inventory.File = v
	}
	if v := os.Getenv("SHORTLIST_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("SHORTLIST_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("SHORTLIST_HERMES_URL"); v != "" {
		cfg.Hermes.URL = v
	}
	if v := os.Getenv("SHORTLIST_INFERENCE_PROVIDER"); v != "" {
		cfg.Inference.Provider = v
	}
	if v := os.Getenv("SHORTLIST_INFERENCE_URL"); v != "" {
		cfg.Inference.URL = v
	}
	if v := os.Getenv("SHORTLIST_INFERENCE_API_KEY"); v != "" {
		cfg.Inference.APIKey = v
	}
	if v := os.Getenv("SHORTLIST_INFERENCE_MODEL"); v != "" {
		cfg.Inference.Model = v
	}
	if v := os.Getenv("SHORTLIST_FUEL_PRICE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Fuel.OverridePrice = f
		}
	}
	if v := os.Getenv("SHORTLIST_FUEL_FEED_URL"); v != "" {
		cfg.Fuel.FeedURL = v
	}
	if v := os.Getenv("SHORTLIST_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Recommendation.Workers = n
		}
	}
	if v := os.Getenv("SHORTLIST_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
