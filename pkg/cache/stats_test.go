package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/lily/pkg/metrics"
	"github.com/Ramsey-B/lily/pkg/store"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	values map[string]string
	ttls   map[string]time.Duration
	err    error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	switch v := value.(type) {
	case []byte:
		f.values[key] = string(v)
	case string:
		f.values[key] = v
	}
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, k := range keys {
		delete(f.values, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func (f *fakeRedis) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", f.err)
}

func (f *fakeRedis) Close() error { return nil }

func newTestCache(rdb *fakeRedis) *StatsCache {
	return newStatsCache(rdb, time.Minute, ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {}))
}

func TestStatsCache(t *testing.T) {
	ctx := context.Background()
	summary := store.Summary{
		TypeDistribution:  map[string]int{"Mortuary": 2},
		StateDistribution: map[string]int{"OH": 2},
		Total:             2,
	}

	t.Run("should miss then hit", func(t *testing.T) {
		rdb := newFakeRedis()
		c := newTestCache(rdb)
		misses := testutil.ToFloat64(metrics.CacheLookupsTotal.WithLabelValues("miss"))
		hits := testutil.ToFloat64(metrics.CacheLookupsTotal.WithLabelValues("hit"))

		_, ok := c.Get(ctx)
		assert.False(t, ok)

		require.NoError(t, c.Set(ctx, summary))
		assert.Equal(t, time.Minute, rdb.ttls[statsKey])

		cached, ok := c.Get(ctx)
		assert.True(t, ok)
		assert.Equal(t, summary, cached)

		assert.Equal(t, misses+1, testutil.ToFloat64(metrics.CacheLookupsTotal.WithLabelValues("miss")))
		assert.Equal(t, hits+1, testutil.ToFloat64(metrics.CacheLookupsTotal.WithLabelValues("hit")))
	})

	t.Run("should treat redis errors as misses", func(t *testing.T) {
		rdb := newFakeRedis()
		rdb.err = errors.New("connection refused")
		c := newTestCache(rdb)

		_, ok := c.Get(ctx)
		assert.False(t, ok)
		assert.Error(t, c.Set(ctx, summary))
		assert.Error(t, c.Ping(ctx))
	})

	t.Run("should discard malformed entries", func(t *testing.T) {
		rdb := newFakeRedis()
		rdb.values[statsKey] = "{not json"
		_, ok := newTestCache(rdb).Get(ctx)
		assert.False(t, ok)
	})

	t.Run("should invalidate", func(t *testing.T) {
		rdb := newFakeRedis()
		c := newTestCache(rdb)
		require.NoError(t, c.Set(ctx, summary))
		require.NoError(t, c.Invalidate(ctx))
		_, ok := c.Get(ctx)
		assert.False(t, ok)
	})
}
