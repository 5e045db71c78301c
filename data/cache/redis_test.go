package cache

import (
	"context"
	"testing"
	"time"

	"github.com/KotFed0t/crypto_portfolio_bot/config"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := &config.Config{}
	cfg.Cache.HistoricalPriceExpiration = time.Hour

	return NewRedisCache(client, cfg), mr
}

func TestHistoricalPrice_RoundTrip(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	ts := time.Date(2023, 1, 1, 12, 0, 0, 0, time.Local)

	err := c.SetHistoricalPrice(ctx, "btc", ts, decimal.RequireFromString("16625.08"))
	require.NoError(t, err)

	assert.True(t, mr.Exists("hist_price:BTC:01-01-2023"))

	// другое время того же дня попадает в тот же ключ
	price, err := c.GetHistoricalPrice(ctx, "BTC", ts.Add(6*time.Hour))
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("16625.08").Equal(price))
}

func TestHistoricalPrice_Miss(t *testing.T) {
	c, _ := newTestCache(t)

	_, err := c.GetHistoricalPrice(context.Background(), "ETH", time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHistoricalPrice_Expires(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	ts := time.Date(2023, 5, 10, 0, 0, 0, 0, time.Local)

	require.NoError(t, c.SetHistoricalPrice(ctx, "SOL", ts, decimal.NewFromInt(20)))
	mr.FastForward(2 * time.Hour)

	_, err := c.GetHistoricalPrice(ctx, "SOL", ts)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHistoricalPrice_Corrupted(t *testing.T) {
	c, mr := newTestCache(t)
	ts := time.Date(2023, 5, 10, 0, 0, 0, 0, time.Local)

	require.NoError(t, mr.Set("hist_price:SOL:10-05-2023", "garbage"))

	_, err := c.GetHistoricalPrice(context.Background(), "SOL", ts)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
