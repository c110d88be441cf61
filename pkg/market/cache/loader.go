package cache

import (
	"context"
	"net/http"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/syncx"

	"marketdash-api/pkg/market"
)

// FetchFunc performs the upstream call for a cache miss.
type FetchFunc func(ctx context.Context) (market.Envelope, error)

// Loader serves fresh cached envelopes and collapses concurrent misses for the
// same key into a single upstream call.
type Loader struct {
	cache  Cache
	flight syncx.SingleFlight
	now    func() time.Time
}

// LoaderOption customises a Loader.
type LoaderOption func(*Loader)

// WithClock overrides the time source used for freshness checks.
func WithClock(now func() time.Time) LoaderOption {
	return func(l *Loader) {
		if now != nil {
			l.now = now
		}
	}
}

// NewLoader builds a Loader over c. A nil cache disables caching.
func NewLoader(c Cache, opts ...LoaderOption) *Loader {
	l := &Loader{
		cache:  c,
		flight: syncx.NewSingleFlight(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the cached envelope for key when younger than ttl. Otherwise it
// calls fetch and stores the result, except for rate-limit notices: those are
// never stored and a previously cached success is returned in their place.
// Transport errors are returned without touching the cache.
func (l *Loader) Load(ctx context.Context, key string, ttl time.Duration, fetch FetchFunc) (market.Envelope, error) {
	if l == nil || l.cache == nil {
		return fetch(ctx)
	}

	cached, hit := l.cache.Get(ctx, key)
	if hit && cached.Fresh(l.now(), ttl) {
		return cached.Value, nil
	}

	// The shared call outlives any single caller's cancellation.
	shared := context.WithoutCancel(ctx)
	v, err := l.flight.Do(key, func() (any, error) {
		env, err := fetch(shared)
		if err != nil {
			return market.Envelope{}, err
		}
		if env.Status == http.StatusTooManyRequests {
			if hit && cached.Value.OK {
				logx.WithContext(shared).Infof("cache: rate limited, serving stale key=%s age=%s",
					key, l.now().Sub(cached.StoredAt))
				return cached.Value, nil
			}
			return env, nil
		}
		l.cache.Set(shared, key, Entry{StoredAt: l.now(), Value: env})
		return env, nil
	})
	if err != nil {
		return market.Envelope{}, err
	}
	return v.(market.Envelope), nil
}
