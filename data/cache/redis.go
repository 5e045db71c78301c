package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/KotFed0t/crypto_portfolio_bot/config"
	"github.com/KotFed0t/crypto_portfolio_bot/utils"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("not found in cache")

const (
	historicalPricePrefix = "hist_price"
	dateLayout            = "02-01-2006"
)

type RedisCache struct {
	redis *redis.Client
	cfg   *config.Config
}

func NewRedisCache(redisClient *redis.Client, cfg *config.Config) *RedisCache {
	return &RedisCache{redis: redisClient, cfg: cfg}
}

// историческая цена за день не меняется, поэтому ключ - символ + дата без времени
func historicalPriceKey(symbol string, ts time.Time) string {
	return fmt.Sprintf("%s:%s:%s", historicalPricePrefix, strings.ToUpper(symbol), ts.Format(dateLayout))
}

func (r *RedisCache) SetHistoricalPrice(ctx context.Context, symbol string, ts time.Time, price decimal.Decimal) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	key := historicalPriceKey(symbol, ts)
	slog.Debug("SetHistoricalPrice start", slog.String("rqID", rqID), slog.String("key", key))

	err := r.redis.Set(ctx, key, price.String(), r.cfg.Cache.HistoricalPriceExpiration).Err()
	if err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("key", key))
		return err
	}

	slog.Debug("SetHistoricalPrice completed", slog.String("rqID", rqID))

	return nil
}

func (r *RedisCache) GetHistoricalPrice(ctx context.Context, symbol string, ts time.Time) (decimal.Decimal, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	key := historicalPriceKey(symbol, ts)
	slog.Debug("GetHistoricalPrice start", slog.String("rqID", rqID), slog.String("key", key))

	res, err := r.redis.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return decimal.Decimal{}, ErrNotFound
		}
		slog.Error("failed on redis.Get", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("key", key))
		return decimal.Decimal{}, err
	}

	price, err := decimal.NewFromString(res)
	if err != nil {
		slog.Error(
			"can't parse cached price",
			slog.String("rqID", rqID),
			slog.String("err", err.Error()),
			slog.String("resultFromRedis", res),
		)
		return decimal.Decimal{}, fmt.Errorf("can't parse cached price: %w", err)
	}

	slog.Debug("GetHistoricalPrice finished", slog.String("rqID", rqID))

	return price, nil
}
