// Package app assembles the bot: configuration, infrastructure and
// the Telegram runtime options consumed by the shared runner.
package app

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "github.com/foodwizard/bot/core/config"
	coredatabase "github.com/foodwizard/bot/core/database"
	"github.com/foodwizard/bot/internal/ai"
	"github.com/foodwizard/bot/internal/imagestore"
)

const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// CacheConfig selects and tunes the session cache backend.
type CacheConfig struct {
	Backend      string `yaml:"backend" envconfig:"CACHE_BACKEND"`
	RedisURL     string `yaml:"redis_url" envconfig:"CACHE_REDIS_URL"`
	TTLHours     int    `yaml:"ttl_hours" envconfig:"CACHE_TTL_HOURS"`
	SweepMinutes int    `yaml:"sweep_minutes" envconfig:"CACHE_SWEEP_MINUTES"`
	HistoryCap   int    `yaml:"history_cap" envconfig:"CACHE_HISTORY_CAP"`
}

// ImagesConfig controls dish photo generation. Pollinations needs no
// credentials and is always in the chain; Hugging Face joins it when a
// token is configured.
type ImagesConfig struct {
	Enabled          bool   `yaml:"enabled" envconfig:"IMAGES_ENABLED"`
	HuggingFaceToken string `yaml:"huggingface_token" envconfig:"HUGGINGFACE_TOKEN"`
}

// StorageConfig controls where generated images are uploaded. S3 leads
// the chain when a bucket is configured, local disk always backs it up.
type StorageConfig struct {
	S3    imagestore.S3Config    `yaml:"s3"`
	Local imagestore.LocalConfig `yaml:"local"`
}

// Config is the full application configuration: the shared core plus
// everything specific to this bot.
type Config struct {
	Core     coreconfig.Config   `yaml:",inline"`
	Database coredatabase.Config `yaml:"database"`
	Cache    CacheConfig         `yaml:"cache"`
	AI       ai.Config           `yaml:"ai"`
	Images   ImagesConfig        `yaml:"images"`
	Storage  StorageConfig       `yaml:"storage"`
}

// CoreConfig satisfies the runner's ConfigCarrier.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Core
}

func (c *Config) cacheTTL() time.Duration {
	if c.Cache.TTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Cache.TTLHours) * time.Hour
}

func (c *Config) sweepInterval() time.Duration {
	if c.Cache.SweepMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.Cache.SweepMinutes) * time.Minute
}

// Load reads the YAML file, applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("app: read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("app: parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("app: process env: %w", err)
	}

	if err := coreconfig.Normalize(&cfg.Core); err != nil {
		return nil, err
	}
	if err := normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func normalize(cfg *Config) error {
	switch cfg.Cache.Backend {
	case "", CacheBackendMemory:
		cfg.Cache.Backend = CacheBackendMemory
	case CacheBackendRedis:
		if cfg.Cache.RedisURL == "" {
			return fmt.Errorf("app: cache.redis_url is required when cache.backend is %q", CacheBackendRedis)
		}
	default:
		return fmt.Errorf("app: unknown cache.backend %q", cfg.Cache.Backend)
	}

	if len(cfg.AI.APIKeys) == 0 {
		return fmt.Errorf("app: at least one AI API key is required")
	}
	if cfg.Database.Name == "" {
		return fmt.Errorf("app: database.name is required")
	}

	if cfg.Images.Enabled && cfg.Storage.Local.Dir == "" {
		cfg.Storage.Local.Dir = "./images"
	}
	return nil
}
