package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/stores/redis"
	"github.com/zeromicro/go-zero/rest"

	"marketdash-api/pkg/confkit"
	llmpkg "marketdash-api/pkg/llm"
	marketpkg "marketdash-api/pkg/market"
)

// CacheConf bounds the response cache and sets per-provider freshness.
type CacheConf struct {
	MaxEntries int `json:",default=2048"`
	// Retention is how long entries survive past their TTL to serve rate-limited requests, in seconds.
	Retention int `json:",default=3600"`

	AlphaVantage    int `json:",default=65"` // seconds
	CoinGecko       int `json:",default=20"`
	CoinGeckoSearch int `json:",default=12"`
	Yahoo           int `json:",default=60"`
}

type (
	ProvidersSection = confkit.Section[marketpkg.Config]
	LLMSection       = confkit.Section[llmpkg.Config]
)

type Config struct {
	rest.RestConf
	// Env indicates the running environment: test | dev | prod
	Env   string          `json:",default=test"`
	Redis redis.RedisConf `json:",optional"`
	Cache CacheConf

	Providers ProvidersSection `json:",optional"`
	LLM       LLMSection       `json:",optional"`

	mainPath string
	baseDir  string
}

func (c *Config) IsTestEnv() bool {
	return c.Env == "test" || c.Env == ""
}

// HasRedis reports whether the response cache should be Redis-backed.
func (c *Config) HasRedis() bool {
	return strings.TrimSpace(c.Redis.Host) != ""
}

func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

func Load(path string) (*Config, error) {
	confkit.LoadDotenvOnce()

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path %s: %w", path, err)
	}

	var cfg Config
	if err := conf.Load(absPath, &cfg, conf.UseEnv()); err != nil {
		return nil, fmt.Errorf("load config %s: %w", absPath, err)
	}

	cfg.mainPath = absPath
	cfg.baseDir = filepath.Dir(absPath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.hydrateSections(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Env)) {
	case "", "test", "dev", "prod":
		if strings.TrimSpace(c.Env) == "" {
			c.Env = "test"
		}
	default:
		return errors.New("config: env must be one of test|dev|prod")
	}
	return c.validateCache()
}

func (c *Config) validateCache() error {
	if c.Cache.MaxEntries <= 0 {
		return errors.New("config: cache.maxEntries must be positive")
	}
	if c.Cache.Retention <= 0 {
		return errors.New("config: cache.retention must be positive")
	}
	ttls := []struct {
		name    string
		seconds int
	}{
		{"alphaVantage", c.Cache.AlphaVantage},
		{"coinGecko", c.Cache.CoinGecko},
		{"coinGeckoSearch", c.Cache.CoinGeckoSearch},
		{"yahoo", c.Cache.Yahoo},
	}
	for _, ttl := range ttls {
		if ttl.seconds <= 0 {
			return fmt.Errorf("config: cache.%s must be positive", ttl.name)
		}
	}
	return nil
}

func (c *Config) hydrateSections() error {
	base := c.baseDir

	if err := c.Providers.Hydrate(base, marketpkg.LoadConfig); err != nil {
		return fmt.Errorf("load providers config: %w", err)
	}
	if err := c.LLM.Hydrate(base, llmpkg.LoadConfig); err != nil {
		return fmt.Errorf("load llm config: %w", err)
	}
	return nil
}

// ProvidersConfig returns the hydrated provider section or defaults drawn
// from the environment when no file is configured.
func (c *Config) ProvidersConfig() *marketpkg.Config {
	return c.Providers.Or(marketpkg.DefaultConfig)
}

// LLMConfig returns the hydrated LLM section or environment defaults.
func (c *Config) LLMConfig() *llmpkg.Config {
	return c.LLM.Or(llmpkg.DefaultConfig)
}

func (c *Config) MainPath() string {
	return c.mainPath
}

func (c *Config) BaseDir() string {
	return c.baseDir
}
