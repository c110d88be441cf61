package cache

import (
	"context"
	"time"

	"marketdash-api/pkg/market"
)

// Entry is a cached envelope stamped with the time it was stored.
type Entry struct {
	StoredAt time.Time       `msgpack:"stored_at"`
	Value    market.Envelope `msgpack:"value"`
}

// Fresh reports whether the entry is younger than ttl at now.
func (e Entry) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.StoredAt) < ttl
}

// Cache stores provider envelopes by key. Implementations are safe for
// concurrent use and bounded in size or lifetime.
type Cache interface {
	Get(ctx context.Context, key string) (Entry, bool)
	Set(ctx context.Context, key string, entry Entry)
}
