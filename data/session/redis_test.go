package session

import (
	"context"
	"testing"
	"time"

	"github.com/KotFed0t/crypto_portfolio_bot/config"
	"github.com/KotFed0t/crypto_portfolio_bot/internal/model"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T) *RedisSession {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := &config.Config{SessionExpiration: time.Hour}
	return NewRedisSession(client, cfg)
}

func TestSession_RoundTrip(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	want := model.Session{
		State: model.ExpectingAmount,
		Form:  model.PurchaseForm{Symbol: "BTC", Date: "2023-01-01", Time: "12:00"},
	}
	require.NoError(t, s.SetSession(ctx, "42", want))

	got, err := s.GetSession(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSession_NotFound(t *testing.T) {
	s := newTestSession(t)

	_, err := s.GetSession(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSession_Clear(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	require.NoError(t, s.SetSession(ctx, "42", model.Session{State: model.ExpectingSymbol}))
	require.NoError(t, s.ClearSession(ctx, "42"))

	_, err := s.GetSession(ctx, "42")
	assert.ErrorIs(t, err, ErrNotFound)
}
