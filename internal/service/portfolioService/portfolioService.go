package portfolioService

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/KotFed0t/crypto_portfolio_bot/data/cache"
	"github.com/KotFed0t/crypto_portfolio_bot/data/repository"
	"github.com/KotFed0t/crypto_portfolio_bot/internal/model"
	"github.com/KotFed0t/crypto_portfolio_bot/internal/service"
	"github.com/KotFed0t/crypto_portfolio_bot/internal/symbolRegistry"
	"github.com/KotFed0t/crypto_portfolio_bot/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type PriceApi interface {
	GetHistoricalPrice(ctx context.Context, symbol string, ts time.Time) (decimal.Decimal, error)
}

type Cache interface {
	GetHistoricalPrice(ctx context.Context, symbol string, ts time.Time) (decimal.Decimal, error)
	SetHistoricalPrice(ctx context.Context, symbol string, ts time.Time, price decimal.Decimal) error
}

type Repository interface {
	CreatePurchase(ctx context.Context, purchase model.NewPurchase) (model.PurchaseRecord, error)
	GetPurchases(ctx context.Context) ([]model.PurchaseRecord, error)
	DeletePurchase(ctx context.Context, id uuid.UUID) error
}

type SymbolRegistry interface {
	IsSupported(symbol string) bool
	Search(query string) []symbolRegistry.Entry
}

type PortfolioService struct {
	repo     Repository
	cache    Cache
	priceApi PriceApi
	symbols  SymbolRegistry
	now      func() time.Time
	location *time.Location
}

func New(repo Repository, cache Cache, priceApi PriceApi, symbols SymbolRegistry) *PortfolioService {
	return &PortfolioService{
		repo:     repo,
		cache:    cache,
		priceApi: priceApi,
		symbols:  symbols,
		now:      time.Now,
		location: time.Local,
	}
}

// AddPurchase validates the form, resolves the historical price for the purchase day and persists the record.
// Nothing is persisted if any step fails.
func (s *PortfolioService) AddPurchase(ctx context.Context, form model.PurchaseForm) (record model.PurchaseRecord, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.AddPurchase"

	slog.Debug("AddPurchase start", slog.String("rqID", rqID), slog.String("op", op), slog.Any("form", form))
	defer func() {
		if err != nil {
			slog.Info("AddPurchase rejected", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("AddPurchase finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("purchaseID", record.ID.String()))
		}
	}()

	symbol := strings.ToUpper(strings.TrimSpace(form.Symbol))
	if !s.symbols.IsSupported(symbol) {
		return model.PurchaseRecord{}, fmt.Errorf("%w: %q", service.ErrInvalidSymbol, form.Symbol)
	}

	ts, err := s.parsePurchaseTimestamp(form.Date, form.Time)
	if err != nil {
		return model.PurchaseRecord{}, err
	}

	amount, err := parseAmount(form.Amount)
	if err != nil {
		return model.PurchaseRecord{}, err
	}

	price, err := s.getHistoricalPrice(ctx, symbol, ts)
	if err != nil {
		return model.PurchaseRecord{}, fmt.Errorf("%w: %w", service.ErrPriceUnavailable, err)
	}

	record, err = s.repo.CreatePurchase(ctx, model.NewPurchase{
		Symbol:            symbol,
		PurchaseTimestamp: ts,
		Amount:            amount,
		PurchasePriceUsd:  decimal.NewNullDecimal(price),
	})
	if err != nil {
		slog.Error("got error from repo.CreatePurchase", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.PurchaseRecord{}, fmt.Errorf("%w: %w", service.ErrStoreFailure, err)
	}

	return record, nil
}

func (s *PortfolioService) parsePurchaseTimestamp(date, clock string) (time.Time, error) {
	ts, err := time.ParseInLocation(DateLayout+" "+TimeLayout, strings.TrimSpace(date)+" "+strings.TrimSpace(clock), s.location)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", service.ErrInvalidDate, err)
	}

	if ts.After(s.now()) {
		return time.Time{}, service.ErrFutureDate
	}

	return ts, nil
}

func parseAmount(raw string) (decimal.Decimal, error) {
	// допускаем запятую как десятичный разделитель
	amount, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(raw), ",", "."))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %w", service.ErrInvalidAmount, err)
	}

	if !amount.IsPositive() {
		return decimal.Decimal{}, service.ErrInvalidAmount
	}

	return amount, nil
}

// getHistoricalPrice сначала смотрит в кэш, ошибки кэша не прерывают запрос к оракулу
func (s *PortfolioService) getHistoricalPrice(ctx context.Context, symbol string, ts time.Time) (decimal.Decimal, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.getHistoricalPrice"

	price, err := s.cache.GetHistoricalPrice(ctx, symbol, ts)
	if err == nil {
		return price, nil
	}
	if !errors.Is(err, cache.ErrNotFound) {
		slog.Warn("can't get historical price from cache", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	price, err = s.priceApi.GetHistoricalPrice(ctx, symbol, ts)
	if err != nil {
		slog.Error("can't get historical price from priceApi", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return decimal.Decimal{}, err
	}

	if err = s.cache.SetHistoricalPrice(ctx, symbol, ts, price); err != nil {
		slog.Warn("can't save historical price to cache", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	return price, nil
}

func (s *PortfolioService) GetPurchases(ctx context.Context) ([]model.PurchaseRecord, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GetPurchases"

	records, err := s.repo.GetPurchases(ctx)
	if err != nil {
		slog.Error("got error from repo.GetPurchases", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, fmt.Errorf("%w: %w", service.ErrStoreFailure, err)
	}

	return records, nil
}

func (s *PortfolioService) DeletePurchase(ctx context.Context, id uuid.UUID) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.DeletePurchase"

	slog.Debug("DeletePurchase start", slog.String("rqID", rqID), slog.String("op", op), slog.String("purchaseID", id.String()))

	err := s.repo.DeletePurchase(ctx, id)
	if err != nil {
		slog.Error("got error from repo.DeletePurchase", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: %w: %w", service.ErrStoreFailure, service.ErrNotFound, err)
		}
		return fmt.Errorf("%w: %w", service.ErrStoreFailure, err)
	}

	return nil
}

func (s *PortfolioService) SearchSymbols(query string) []symbolRegistry.Entry {
	return s.symbols.Search(query)
}
