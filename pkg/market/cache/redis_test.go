package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeromicro/go-zero/core/stores/redis/redistest"

	"marketdash-api/pkg/market"
)

func TestRedisRoundTrip(t *testing.T) {
	store := redistest.CreateRedis(t)
	rc := NewRedis(store, time.Minute)
	ctx := context.Background()
	entry := Entry{
		StoredAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Value:    market.Failure(400, "Alpha Vantage error", "Invalid API call"),
	}

	rc.Set(ctx, "marketdash:test", entry)
	got, ok := rc.Get(ctx, "marketdash:test")
	require.True(t, ok)
	assert.True(t, entry.StoredAt.Equal(got.StoredAt))
	assert.Equal(t, entry.Value.Status, got.Value.Status)
	assert.False(t, got.Value.OK)
	assert.JSONEq(t, string(entry.Value.Data), string(got.Value.Data))

	ttl, err := store.TtlCtx(ctx, "marketdash:test")
	require.NoError(t, err)
	assert.Greater(t, ttl, 0)
	assert.LessOrEqual(t, ttl, 60)
}

func TestRedisMissAndCorruptEntry(t *testing.T) {
	store := redistest.CreateRedis(t)
	rc := NewRedis(store, time.Minute)
	ctx := context.Background()

	_, ok := rc.Get(ctx, "marketdash:none")
	assert.False(t, ok)

	require.NoError(t, store.SetCtx(ctx, "marketdash:bad", "\xc1not-msgpack"))
	_, ok = rc.Get(ctx, "marketdash:bad")
	assert.False(t, ok)
}

func TestLoaderOverRedis(t *testing.T) {
	store := redistest.CreateRedis(t)
	loader := NewLoader(NewRedis(store, time.Minute))
	calls := 0
	fetch := func(context.Context) (market.Envelope, error) {
		calls++
		return market.Success([]byte(`{"ok":true}`)), nil
	}

	for i := 0; i < 2; i++ {
		env, err := loader.Load(context.Background(), "marketdash:loader", 30*time.Second, fetch)
		require.NoError(t, err)
		assert.True(t, env.OK)
	}
	assert.Equal(t, 1, calls)
}
