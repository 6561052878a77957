package limiter

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// fakeRedis is an in-memory stand-in for the handful of commands the limiter uses.
type fakeRedis struct {
	counters map[string]int64
	ttls     map[string]time.Duration
	deleted  []string
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{counters: map[string]int64{}, ttls: map[string]time.Duration{}}
}

var _ redisCmds = (*fakeRedis)(nil)

func (f *fakeRedis) PTTL(_ context.Context, key string) *redis.DurationCmd {
	if ttl, ok := f.ttls[key]; ok {
		return redis.NewDurationResult(ttl, nil)
	}
	return redis.NewDurationResult(-2, nil)
}

func (f *fakeRedis) Incr(_ context.Context, key string) *redis.IntCmd {
	f.counters[key]++
	return redis.NewIntResult(f.counters[key], nil)
}

func (f *fakeRedis) Expire(_ context.Context, key string, d time.Duration) *redis.BoolCmd {
	f.ttls[key] = d
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, _ any, d time.Duration) *redis.StatusCmd {
	f.counters[key] = 1
	f.ttls[key] = d
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, k := range keys {
		delete(f.counters, k)
		delete(f.ttls, k)
		f.deleted = append(f.deleted, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func TestRedis_BlocksAfterMaxFails(t *testing.T) {
	ctx := context.Background()
	rdb := newFakeRedis()
	l := NewRedis(rdb, time.Minute, 3, 5*time.Minute)
	ip := HashIP("10.0.0.1")

	for i := 0; i < 2; i++ {
		blocked, _, err := l.Failure(ctx, "a@x.com", ip)
		require.NoError(t, err)
		require.False(t, blocked)
	}
	fails, block := l.keys("a@x.com", ip)
	require.Equal(t, time.Minute, rdb.ttls[fails])

	ok, _, err := l.Allow(ctx, "a@x.com", ip)
	require.NoError(t, err)
	require.True(t, ok)

	blocked, dur, err := l.Failure(ctx, "a@x.com", ip)
	require.NoError(t, err)
	require.True(t, blocked)
	require.Equal(t, 5*time.Minute, dur)
	require.Equal(t, 5*time.Minute, rdb.ttls[block])

	ok, retry, err := l.Allow(ctx, "a@x.com", ip)
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, 5*time.Minute, retry)

	// other client is unaffected
	ok, _, err = l.Allow(ctx, "a@x.com", HashIP("10.0.0.2"))
	require.NoError(t, err)
	require.True(t, ok)
}

func TestRedis_SuccessClears(t *testing.T) {
	ctx := context.Background()
	rdb := newFakeRedis()
	l := NewRedis(rdb, time.Minute, 1, time.Minute)
	ip := HashIP("10.0.0.1")

	blocked, _, err := l.Failure(ctx, "a@x.com", ip)
	require.NoError(t, err)
	require.True(t, blocked)

	require.NoError(t, l.Success(ctx, "a@x.com", ip))
	ok, _, err := l.Allow(ctx, "a@x.com", ip)
	require.NoError(t, err)
	require.True(t, ok)
}
