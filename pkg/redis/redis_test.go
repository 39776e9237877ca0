package redis

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/liga/backend/pkg/config"
)

func disabledClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(&config.Config{Redis: config.RedisConfig{Enabled: false}})
	require.NoError(t, err)
	return client
}

func liveClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewFromClient(rdb), srv
}

func TestNewClient_Disabled(t *testing.T) {
	client := disabledClient(t)
	assert.False(t, client.Enabled())
	assert.NoError(t, client.Close())
}

func TestNewFromClient_Nil(t *testing.T) {
	client := NewFromClient(nil)
	assert.False(t, client.Enabled())
	assert.Equal(t, "disabled", client.Mode())
	assert.NoError(t, client.Ping(context.Background()))
}

func TestNewClient_Live(t *testing.T) {
	srv := miniredis.RunT(t)
	host, port, _ := strings.Cut(srv.Addr(), ":")

	client, err := New(&config.Config{Redis: config.RedisConfig{Host: host, Port: port, Enabled: true}})
	require.NoError(t, err)
	defer client.Close()

	assert.True(t, client.Enabled())
	assert.Equal(t, "redis "+srv.Addr(), client.Mode())
	assert.NoError(t, client.Ping(context.Background()))

	srv.Close()
	assert.Error(t, client.Ping(context.Background()))
}

func TestNewClient_Unreachable(t *testing.T) {
	srv := miniredis.RunT(t)
	host, port, _ := strings.Cut(srv.Addr(), ":")
	srv.Close()

	_, err := New(&config.Config{Redis: config.RedisConfig{Host: host, Port: port, Enabled: true}})
	assert.Error(t, err)
}

func TestNewOptions(t *testing.T) {
	opts := newOptions(&config.Config{Redis: config.RedisConfig{Host: "cache", Port: "6380", DB: 2, Password: "pw"}})
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, "liga", opts.ClientName)
}

func TestRateLimiter_Disabled(t *testing.T) {
	limiter := NewRateLimiter(disabledClient(t), "test")
	cfg := RecomputeRateLimit("clausura", "primera")

	// When Redis is disabled, all requests should be allowed
	allowed, remaining, err := limiter.Allow(context.Background(), cfg)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, cfg.Limit, remaining)

	assert.NoError(t, limiter.Wait(context.Background(), ResultsSiteRateLimit("example.org")))
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(disabledClient(t), "test")
	ctx := context.Background()

	// When Redis is disabled, cache operations should be no-ops
	var result string
	found, err := cache.Get(ctx, "key", &result)
	require.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, cache.Set(ctx, "key", "value", TTLShort))
	assert.NoError(t, cache.Delete(ctx, "key"))
}

func TestCache_GetOrSetDisabled(t *testing.T) {
	cache := NewCache(disabledClient(t), "test")

	type payload struct {
		Players int `json:"players"`
	}

	calls := 0
	var got payload
	err := cache.GetOrSet(context.Background(), "k", &got, time.Minute, func() (interface{}, error) {
		calls++
		return payload{Players: 10}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 10, got.Players)
}

func TestCacheKeys(t *testing.T) {
	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"StandingsKey", StandingsKey("clausura", "primera", "fp", "0123456789abcdef"), "standings:run:clausura:primera:0123456789ab:fp"},
		{"StandingsKey short hash", StandingsKey("s", "d", "fp", "abc"), "standings:run:s:d:abc:fp"},
		{"LatestKey", LatestKey("clausura", "primera"), "standings:latest:clausura:primera"},
		{"RecomputeRateLimit", RecomputeRateLimit("s", "d").Key, "recompute:s:d"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.got)
		})
	}
}

func TestCache_Live(t *testing.T) {
	client, srv := liveClient(t)
	cache := NewCache(client, "liga")
	ctx := context.Background()

	type entry struct {
		RunID string `json:"run_id"`
	}

	key := StandingsKey("clausura", "primera", "fp", "hash")
	require.NoError(t, cache.Set(ctx, key, entry{RunID: "run-1"}, TTLStandings))
	assert.True(t, srv.Exists("liga:cache:"+key))

	var got entry
	found, err := cache.Get(ctx, key, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "run-1", got.RunID)

	// same inputs in another stage do not share the entry
	found, err = cache.Get(ctx, StandingsKey("apertura", "primera", "fp", "hash"), &got)
	require.NoError(t, err)
	assert.False(t, found)

	srv.FastForward(TTLStandings + time.Second)
	found, err = cache.Get(ctx, key, &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRateLimiter_Live(t *testing.T) {
	client, _ := liveClient(t)
	limiter := NewRateLimiter(client, "liga")
	cfg := RateLimitConfig{Key: "fetch:example.org", Limit: 2, Window: time.Minute}
	ctx := context.Background()

	allowed, remaining, err := limiter.Allow(ctx, cfg)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 1, remaining)

	allowed, remaining, err = limiter.Allow(ctx, cfg)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 0, remaining)

	allowed, _, err = limiter.Allow(ctx, cfg)
	require.NoError(t, err)
	assert.False(t, allowed)
}
