package valuation

import (
	"context"
	"log/slog"
	"time"

	"github.com/KotFed0t/crypto_portfolio_bot/internal/model"
	"github.com/KotFed0t/crypto_portfolio_bot/utils"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

var hundred = decimal.NewFromInt(100)

type PriceOracle interface {
	GetCurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// priceOutcome is the result of one per-symbol fetch: either a known price or unknown.
type priceOutcome struct {
	price decimal.Decimal
	known bool
}

type Engine struct {
	oracle PriceOracle
	now    func() time.Time
}

func New(oracle PriceOracle) *Engine {
	return &Engine{oracle: oracle, now: time.Now}
}

// Valuate prices every record against the current market. It never fails:
// a symbol whose price can't be fetched leaves its positions without current price and P/L.
func (e *Engine) Valuate(ctx context.Context, records []model.PurchaseRecord) model.Valuation {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Engine.Valuate"
	start := e.now()

	slog.Debug("Valuate start", slog.String("rqID", rqID), slog.String("op", op), slog.Int("records", len(records)))

	prices := e.fetchCurrentPrices(ctx, distinctSymbols(records))

	positions := make([]model.ValuedPosition, 0, len(records))
	for _, record := range records {
		current := decimal.NullDecimal{}
		if outcome := prices[record.Symbol]; outcome.known {
			current = decimal.NewNullDecimal(outcome.price)
		}
		positions = append(positions, ValuePosition(record, current))
	}

	res := model.Valuation{
		Positions: positions,
		Snapshot:  Aggregate(positions),
		ValuedAt:  e.now(),
	}

	slog.Debug(
		"Valuate completed",
		slog.String("rqID", rqID),
		slog.String("op", op),
		slog.Int("symbols", len(prices)),
		slog.String("totalValue", res.Snapshot.TotalValue.String()),
		slog.Duration("duration", res.ValuedAt.Sub(start)),
	)

	return res
}

func distinctSymbols(records []model.PurchaseRecord) []string {
	seen := make(map[string]struct{}, len(records))
	symbols := make([]string, 0, len(records))
	for _, r := range records {
		if _, ok := seen[r.Symbol]; ok {
			continue
		}
		seen[r.Symbol] = struct{}{}
		symbols = append(symbols, r.Symbol)
	}
	return symbols
}

// fetchCurrentPrices запрашивает цены параллельно и ждет завершения всех запросов.
// Ошибка по одному символу не отменяет остальные.
func (e *Engine) fetchCurrentPrices(ctx context.Context, symbols []string) map[string]priceOutcome {
	rqID := utils.GetRequestIDFromCtx(ctx)
	// уже отправленные запросы не отменяются вместе с вызывающим
	fetchCtx := context.WithoutCancel(ctx)

	outcomes := make([]priceOutcome, len(symbols))

	var g errgroup.Group
	for i, symbol := range symbols {
		g.Go(func() error {
			price, err := e.oracle.GetCurrentPrice(fetchCtx, symbol)
			if err != nil {
				slog.Warn("current price unknown", slog.String("rqID", rqID), slog.String("symbol", symbol), slog.String("err", err.Error()))
				return nil
			}
			outcomes[i] = priceOutcome{price: price, known: true}
			return nil
		})
	}
	_ = g.Wait()

	res := make(map[string]priceOutcome, len(symbols))
	for i, symbol := range symbols {
		res[symbol] = outcomes[i]
	}
	return res
}

// ValuePosition computes P/L for one record. P/L is defined only when both prices are known;
// the percentage additionally requires a non-zero purchase price.
func ValuePosition(record model.PurchaseRecord, currentPrice decimal.NullDecimal) model.ValuedPosition {
	position := model.ValuedPosition{
		PurchaseRecord: record,
		CurrentPrice:   currentPrice,
	}

	if !currentPrice.Valid || !record.PurchasePriceUsd.Valid {
		return position
	}

	diff := currentPrice.Decimal.Sub(record.PurchasePriceUsd.Decimal)
	position.ProfitLoss = decimal.NewNullDecimal(diff.Mul(record.Amount))

	if !record.PurchasePriceUsd.Decimal.IsZero() {
		position.ProfitLossPercent = decimal.NewNullDecimal(diff.Div(record.PurchasePriceUsd.Decimal).Mul(hundred))
	}

	return position
}

// Aggregate sums positions that have both prices known; the rest are excluded, not counted as zero.
func Aggregate(positions []model.ValuedPosition) model.PortfolioSnapshot {
	snapshot := model.PortfolioSnapshot{
		TotalValue:             decimal.Zero,
		TotalCost:              decimal.Zero,
		TotalProfitLoss:        decimal.Zero,
		TotalProfitLossPercent: decimal.Zero,
	}

	for _, p := range positions {
		if !p.CurrentPrice.Valid || !p.PurchasePriceUsd.Valid {
			continue
		}
		snapshot.TotalValue = snapshot.TotalValue.Add(p.CurrentPrice.Decimal.Mul(p.Amount))
		snapshot.TotalCost = snapshot.TotalCost.Add(p.PurchasePriceUsd.Decimal.Mul(p.Amount))
	}

	snapshot.TotalProfitLoss = snapshot.TotalValue.Sub(snapshot.TotalCost)
	if !snapshot.TotalCost.IsZero() {
		snapshot.TotalProfitLossPercent = snapshot.TotalProfitLoss.Div(snapshot.TotalCost).Mul(hundred)
	}

	return snapshot
}
