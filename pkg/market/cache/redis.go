package cache

import (
	"context"
	"math"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/stores/redis"
)

// Redis shares cached envelopes across instances. Entries are msgpack encoded
// and expire after the retention window.
type Redis struct {
	store     *redis.Redis
	retention time.Duration
}

// NewRedis wraps a go-zero Redis client.
func NewRedis(store *redis.Redis, retention time.Duration) *Redis {
	if retention <= 0 {
		retention = defaultRetention
	}
	return &Redis{store: store, retention: retention}
}

// Get implements Cache. Backend errors are logged and treated as misses.
func (r *Redis) Get(ctx context.Context, key string) (Entry, bool) {
	raw, err := r.store.GetCtx(ctx, key)
	if err != nil {
		logx.WithContext(ctx).Errorf("cache: redis get key=%s err=%v", key, err)
		return Entry{}, false
	}
	if raw == "" {
		return Entry{}, false
	}
	var entry Entry
	if err := msgpack.Unmarshal([]byte(raw), &entry); err != nil {
		logx.WithContext(ctx).Errorf("cache: decode key=%s err=%v", key, err)
		return Entry{}, false
	}
	return entry, true
}

// Set implements Cache.
func (r *Redis) Set(ctx context.Context, key string, entry Entry) {
	payload, err := msgpack.Marshal(entry)
	if err != nil {
		logx.WithContext(ctx).Errorf("cache: encode key=%s err=%v", key, err)
		return
	}
	seconds := int(math.Ceil(r.retention.Seconds()))
	if err := r.store.SetexCtx(ctx, key, string(payload), seconds); err != nil {
		logx.WithContext(ctx).Errorf("cache: redis set key=%s err=%v", key, err)
	}
}
