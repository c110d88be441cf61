package cache

import (
	"fmt"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/stores/redis"

	"marketdash-api/internal/config"
	marketcache "marketdash-api/pkg/market/cache"
)

// TTLClass names a config-driven freshness bucket.
type TTLClass string

const (
	TTLAlphaVantage    TTLClass = "alphavantage"
	TTLCoinGecko       TTLClass = "coingecko"
	TTLCoinGeckoSearch TTLClass = "coingecko_search"
	TTLYahoo           TTLClass = "yahoo"
)

// TTLSet normalises cache TTLs from config into time.Duration values.
type TTLSet struct {
	AlphaVantage    time.Duration
	CoinGecko       time.Duration
	CoinGeckoSearch time.Duration
	Yahoo           time.Duration
	Retention       time.Duration
}

// NewTTLSet converts config TTLs (in seconds) into durations.
func NewTTLSet(cfg config.CacheConf) TTLSet {
	return TTLSet{
		AlphaVantage:    durationOrDefault(cfg.AlphaVantage, 65*time.Second),
		CoinGecko:       durationOrDefault(cfg.CoinGecko, 20*time.Second),
		CoinGeckoSearch: durationOrDefault(cfg.CoinGeckoSearch, 12*time.Second),
		Yahoo:           durationOrDefault(cfg.Yahoo, time.Minute),
		Retention:       durationOrDefault(cfg.Retention, time.Hour),
	}
}

func durationOrDefault(seconds int, fallback time.Duration) time.Duration {
	if seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

// Duration returns the configured duration for the given TTL class.
func (t TTLSet) Duration(class TTLClass) time.Duration {
	switch class {
	case TTLAlphaVantage:
		return t.AlphaVantage
	case TTLCoinGecko:
		return t.CoinGecko
	case TTLCoinGeckoSearch:
		return t.CoinGeckoSearch
	case TTLYahoo:
		return t.Yahoo
	default:
		return 0
	}
}

// NewStore picks the response cache backend: Redis when configured, otherwise
// a bounded in-process cache.
func NewStore(c config.Config) (marketcache.Cache, error) {
	ttl := NewTTLSet(c.Cache)
	if c.HasRedis() {
		store, err := redis.NewRedis(c.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect redis %s: %w", c.Redis.Host, err)
		}
		logx.Infof("cache: redis backend host=%s retention=%s", c.Redis.Host, ttl.Retention)
		return marketcache.NewRedis(store, ttl.Retention), nil
	}
	mem, err := marketcache.NewMemory(c.Cache.MaxEntries, ttl.Retention)
	if err != nil {
		return nil, err
	}
	logx.Infof("cache: memory backend max_entries=%d retention=%s", c.Cache.MaxEntries, ttl.Retention)
	return mem, nil
}
