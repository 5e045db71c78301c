package coinGeckoApi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/KotFed0t/crypto_portfolio_bot/config"
	"github.com/KotFed0t/crypto_portfolio_bot/internal/externalApi"
	"github.com/KotFed0t/crypto_portfolio_bot/internal/model/coinGeckoModel"
	"github.com/KotFed0t/crypto_portfolio_bot/utils"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

// формат даты, который принимает /coins/{id}/history
const HistoryDateLayout = "02-01-2006"

type SymbolResolver interface {
	ResolveOracleID(symbol string) string
}

type CoinGeckoApi struct {
	client   *resty.Client
	resolver SymbolResolver
}

func New(cfg *config.Config, resolver SymbolResolver) *CoinGeckoApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.CoinGeckoApi.Url).
		SetHeader("Accept", "application/json")

	if cfg.API.CoinGeckoApi.ApiKey != "" {
		client.SetHeader("x-cg-demo-api-key", cfg.API.CoinGeckoApi.ApiKey)
	}

	return &CoinGeckoApi{client: client, resolver: resolver}
}

func (a *CoinGeckoApi) GetCurrentPrice(ctx context.Context, symbol string) (price decimal.Decimal, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "CoinGeckoApi.GetCurrentPrice"
	oracleID := a.resolver.ResolveOracleID(symbol)

	slog.Debug("GetCurrentPrice start", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol), slog.String("oracleID", oracleID))
	defer func() {
		if err != nil {
			slog.Warn("GetCurrentPrice failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetCurrentPrice completed", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol), slog.String("price", price.String()))
		}
	}()

	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"ids":           oracleID,
			"vs_currencies": "usd",
		}).
		Get("/simple/price")
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: request failed: %w", externalApi.ErrPriceUnavailable, err)
	}

	if resp.IsError() {
		return decimal.Decimal{}, fmt.Errorf("%w: unexpected status %d", externalApi.ErrPriceUnavailable, resp.StatusCode())
	}

	simplePrice := coinGeckoModel.SimplePrice{}
	err = json.Unmarshal(resp.Body(), &simplePrice)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: can't unmarshal response: %w", externalApi.ErrPriceUnavailable, err)
	}

	coin, ok := simplePrice[oracleID]
	if !ok || coin.Usd == nil {
		return decimal.Decimal{}, fmt.Errorf("%w: no usd price for %s", externalApi.ErrPriceUnavailable, oracleID)
	}

	return *coin.Usd, nil
}

// GetHistoricalPrice returns the usd price for the day of ts. Time of day is ignored by the oracle.
func (a *CoinGeckoApi) GetHistoricalPrice(ctx context.Context, symbol string, ts time.Time) (price decimal.Decimal, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "CoinGeckoApi.GetHistoricalPrice"
	oracleID := a.resolver.ResolveOracleID(symbol)
	date := ts.Format(HistoryDateLayout)

	slog.Debug(
		"GetHistoricalPrice start",
		slog.String("rqID", rqID),
		slog.String("op", op),
		slog.String("symbol", symbol),
		slog.String("oracleID", oracleID),
		slog.String("date", date),
	)
	defer func() {
		if err != nil {
			slog.Warn("GetHistoricalPrice failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetHistoricalPrice completed", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol), slog.String("price", price.String()))
		}
	}()

	resp, err := a.client.R().
		SetContext(ctx).
		SetPathParam("id", oracleID).
		SetQueryParams(map[string]string{
			"date":         date,
			"localization": "false",
		}).
		Get("/coins/{id}/history")
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: request failed: %w", externalApi.ErrPriceUnavailable, err)
	}

	if resp.IsError() {
		return decimal.Decimal{}, fmt.Errorf("%w: unexpected status %d", externalApi.ErrPriceUnavailable, resp.StatusCode())
	}

	history := coinGeckoModel.CoinHistory{}
	err = json.Unmarshal(resp.Body(), &history)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: can't unmarshal response: %w", externalApi.ErrPriceUnavailable, err)
	}

	// на даты до листинга монеты market_data не приходит
	if history.MarketData == nil || history.MarketData.CurrentPrice.Usd == nil {
		return decimal.Decimal{}, fmt.Errorf("%w: no historical usd price for %s on %s", externalApi.ErrPriceUnavailable, oracleID, date)
	}

	return *history.MarketData.CurrentPrice.Usd, nil
}
