package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wonny/scorecard/pkg/config"
)

func disabledClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(&config.Config{Redis: config.RedisConfig{Enabled: false}})
	require.NoError(t, err)
	return client
}

func TestNewClient_Disabled(t *testing.T) {
	client := disabledClient(t)

	assert.False(t, client.Enabled())
	assert.Equal(t, ":", client.Addr())
	assert.NoError(t, client.Close())

	_, err := client.Ping(context.Background())
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestRateLimiter_Disabled(t *testing.T) {
	limiter := NewRateLimiter(disabledClient(t), "test")

	allowed, remaining, err := limiter.Allow(context.Background(), DARTRateLimit)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, DARTRateLimit.Limit, remaining)

	assert.NoError(t, limiter.Wait(context.Background(), NaverRateLimit))
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(disabledClient(t), "test")
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "key", map[string]float64{"roe": 18.5}, TTLDaily))

	var result map[string]float64
	found, err := cache.Get(ctx, "key", &result)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, cache.Delete(ctx, "key"))
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "financial:dart:005930", FinancialFactsKey("dart", "005930"))
	assert.Equal(t, "market:naver:005930:2024-03-15", MarketSnapshotKey("naver", "005930", "2024-03-15"))
}

func TestCache_RoundTrip(t *testing.T) {
	if os.Getenv("REDIS_ENABLED") != "true" {
		t.Skip("REDIS_ENABLED not set, skipping integration test")
	}

	client, err := New(&config.Config{Redis: config.RedisConfig{
		Host:    os.Getenv("REDIS_HOST"),
		Port:    os.Getenv("REDIS_PORT"),
		Enabled: true,
	}})
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()
	cache := NewCache(client, "scorecard-test")
	key := FinancialFactsKey("db", "005930")

	require.NoError(t, cache.Set(ctx, key, map[string]float64{"roe": 18.5}, time.Minute))
	defer cache.Delete(ctx, key)

	var got map[string]float64
	found, err := cache.Get(ctx, key, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 18.5, got["roe"])
}
