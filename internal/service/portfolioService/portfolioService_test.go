package portfolioService

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/KotFed0t/crypto_portfolio_bot/data/cache"
	"github.com/KotFed0t/crypto_portfolio_bot/data/repository"
	"github.com/KotFed0t/crypto_portfolio_bot/internal/externalApi"
	"github.com/KotFed0t/crypto_portfolio_bot/internal/model"
	"github.com/KotFed0t/crypto_portfolio_bot/internal/service"
	"github.com/KotFed0t/crypto_portfolio_bot/internal/symbolRegistry"
	"github.com/KotFed0t/crypto_portfolio_bot/internal/valuation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRepository is a mock implementation of Repository for testing
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreatePurchase(ctx context.Context, purchase model.NewPurchase) (model.PurchaseRecord, error) {
	args := m.Called(ctx, purchase)
	return args.Get(0).(model.PurchaseRecord), args.Error(1)
}

func (m *MockRepository) GetPurchases(ctx context.Context) ([]model.PurchaseRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PurchaseRecord), args.Error(1)
}

func (m *MockRepository) DeletePurchase(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockCache is a mock implementation of Cache for testing
type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetHistoricalPrice(ctx context.Context, symbol string, ts time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, symbol, ts)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockCache) SetHistoricalPrice(ctx context.Context, symbol string, ts time.Time, price decimal.Decimal) error {
	args := m.Called(ctx, symbol, ts, price)
	return args.Error(0)
}

// MockPriceApi is a mock implementation of PriceApi and valuation.PriceOracle for testing
type MockPriceApi struct {
	mock.Mock
}

func (m *MockPriceApi) GetHistoricalPrice(ctx context.Context, symbol string, ts time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, symbol, ts)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPriceApi) GetCurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	args := m.Called(ctx, symbol)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type fixture struct {
	srv   *PortfolioService
	repo  *MockRepository
	cache *MockCache
	api   *MockPriceApi
}

var testNow = time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

func newFixture() fixture {
	f := fixture{
		repo:  new(MockRepository),
		cache: new(MockCache),
		api:   new(MockPriceApi),
	}
	f.srv = New(f.repo, f.cache, f.api, symbolRegistry.New())
	f.srv.now = func() time.Time { return testNow }
	f.srv.location = time.UTC
	return f
}

func btcForm() model.PurchaseForm {
	return model.PurchaseForm{Symbol: "BTC", Date: "2023-01-01", Time: "12:00", Amount: "1"}
}

func TestAddPurchase_EndToEndValuation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	ts := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)
	id := uuid.New()

	f.cache.On("GetHistoricalPrice", mock.Anything, "BTC", ts).Return(decimal.Decimal{}, cache.ErrNotFound)
	f.api.On("GetHistoricalPrice", mock.Anything, "BTC", ts).Return(decimal.NewFromInt(40000), nil)
	f.cache.On("SetHistoricalPrice", mock.Anything, "BTC", ts, decimal.NewFromInt(40000)).Return(nil)
	f.repo.On("CreatePurchase", mock.Anything, mock.MatchedBy(func(p model.NewPurchase) bool {
		return p.Symbol == "BTC" &&
			p.PurchaseTimestamp.Equal(ts) &&
			p.Amount.Equal(decimal.NewFromInt(1)) &&
			p.PurchasePriceUsd.Valid &&
			p.PurchasePriceUsd.Decimal.Equal(decimal.NewFromInt(40000))
	})).Return(model.PurchaseRecord{
		ID:                id,
		Symbol:            "BTC",
		PurchaseTimestamp: ts,
		Amount:            decimal.NewFromInt(1),
		PurchasePriceUsd:  decimal.NewNullDecimal(decimal.NewFromInt(40000)),
	}, nil)

	record, err := f.srv.AddPurchase(ctx, btcForm())
	require.NoError(t, err)
	assert.Equal(t, id, record.ID)
	f.repo.AssertNumberOfCalls(t, "CreatePurchase", 1)

	f.api.On("GetCurrentPrice", mock.Anything, "BTC").Return(decimal.NewFromInt(50000), nil)
	v := valuation.New(f.api).Valuate(ctx, []model.PurchaseRecord{record})

	require.Len(t, v.Positions, 1)
	assert.True(t, decimal.NewFromInt(10000).Equal(v.Positions[0].ProfitLoss.Decimal))
	assert.True(t, decimal.NewFromInt(25).Equal(v.Positions[0].ProfitLossPercent.Decimal))
}

func TestAddPurchase_InvalidSymbolMakesNoCalls(t *testing.T) {
	f := newFixture()

	form := btcForm()
	form.Symbol = "NOTACOIN"

	_, err := f.srv.AddPurchase(context.Background(), form)
	assert.ErrorIs(t, err, service.ErrInvalidSymbol)

	f.api.AssertNotCalled(t, "GetHistoricalPrice", mock.Anything, mock.Anything, mock.Anything)
	f.cache.AssertNotCalled(t, "GetHistoricalPrice", mock.Anything, mock.Anything, mock.Anything)
	f.repo.AssertNotCalled(t, "CreatePurchase", mock.Anything, mock.Anything)
}

func TestAddPurchase_LowerCaseSymbolIsNormalized(t *testing.T) {
	f := newFixture()
	ts := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)

	f.cache.On("GetHistoricalPrice", mock.Anything, "ETH", ts).Return(decimal.NewFromInt(1200), nil)
	f.repo.On("CreatePurchase", mock.Anything, mock.MatchedBy(func(p model.NewPurchase) bool {
		return p.Symbol == "ETH"
	})).Return(model.PurchaseRecord{ID: uuid.New(), Symbol: "ETH"}, nil)

	form := btcForm()
	form.Symbol = " eth "
	_, err := f.srv.AddPurchase(context.Background(), form)
	require.NoError(t, err)

	// цена взята из кэша, оракул не вызывался
	f.api.AssertNotCalled(t, "GetHistoricalPrice", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddPurchase_LocalValidation(t *testing.T) {
	tests := []struct {
		name    string
		form    model.PurchaseForm
		wantErr error
	}{
		{name: "bad date", form: model.PurchaseForm{Symbol: "BTC", Date: "01.01.2023", Time: "12:00", Amount: "1"}, wantErr: service.ErrInvalidDate},
		{name: "bad time", form: model.PurchaseForm{Symbol: "BTC", Date: "2023-01-01", Time: "25:00", Amount: "1"}, wantErr: service.ErrInvalidDate},
		{name: "future", form: model.PurchaseForm{Symbol: "BTC", Date: "2024-06-01", Time: "09:31", Amount: "1"}, wantErr: service.ErrFutureDate},
		{name: "not a number", form: model.PurchaseForm{Symbol: "BTC", Date: "2023-01-01", Time: "12:00", Amount: "abc"}, wantErr: service.ErrInvalidAmount},
		{name: "zero amount", form: model.PurchaseForm{Symbol: "BTC", Date: "2023-01-01", Time: "12:00", Amount: "0"}, wantErr: service.ErrInvalidAmount},
		{name: "negative amount", form: model.PurchaseForm{Symbol: "BTC", Date: "2023-01-01", Time: "12:00", Amount: "-2"}, wantErr: service.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()

			_, err := f.srv.AddPurchase(context.Background(), tt.form)
			assert.ErrorIs(t, err, tt.wantErr)

			f.api.AssertNotCalled(t, "GetHistoricalPrice", mock.Anything, mock.Anything, mock.Anything)
			f.repo.AssertNotCalled(t, "CreatePurchase", mock.Anything, mock.Anything)
		})
	}
}

func TestAddPurchase_CommaDecimalAmount(t *testing.T) {
	f := newFixture()

	f.cache.On("GetHistoricalPrice", mock.Anything, "BTC", mock.Anything).Return(decimal.NewFromInt(40000), nil)
	f.repo.On("CreatePurchase", mock.Anything, mock.MatchedBy(func(p model.NewPurchase) bool {
		return p.Amount.Equal(decimal.RequireFromString("0.25"))
	})).Return(model.PurchaseRecord{ID: uuid.New()}, nil)

	form := btcForm()
	form.Amount = "0,25"
	_, err := f.srv.AddPurchase(context.Background(), form)
	assert.NoError(t, err)
}

func TestAddPurchase_PriceUnavailableNothingPersisted(t *testing.T) {
	f := newFixture()

	f.cache.On("GetHistoricalPrice", mock.Anything, "BTC", mock.Anything).Return(decimal.Decimal{}, cache.ErrNotFound)
	f.api.On("GetHistoricalPrice", mock.Anything, "BTC", mock.Anything).Return(decimal.Decimal{}, externalApi.ErrPriceUnavailable)

	_, err := f.srv.AddPurchase(context.Background(), btcForm())
	assert.ErrorIs(t, err, service.ErrPriceUnavailable)
	assert.ErrorIs(t, err, externalApi.ErrPriceUnavailable)

	f.repo.AssertNotCalled(t, "CreatePurchase", mock.Anything, mock.Anything)
	f.cache.AssertNotCalled(t, "SetHistoricalPrice", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAddPurchase_CacheErrorFallsThroughToOracle(t *testing.T) {
	f := newFixture()

	f.cache.On("GetHistoricalPrice", mock.Anything, "BTC", mock.Anything).Return(decimal.Decimal{}, errors.New("redis down"))
	f.api.On("GetHistoricalPrice", mock.Anything, "BTC", mock.Anything).Return(decimal.NewFromInt(40000), nil)
	f.cache.On("SetHistoricalPrice", mock.Anything, "BTC", mock.Anything, mock.Anything).Return(errors.New("redis down"))
	f.repo.On("CreatePurchase", mock.Anything, mock.Anything).Return(model.PurchaseRecord{ID: uuid.New()}, nil)

	_, err := f.srv.AddPurchase(context.Background(), btcForm())
	assert.NoError(t, err)
}

func TestAddPurchase_StoreFailure(t *testing.T) {
	f := newFixture()
	dbErr := errors.New("connection refused")

	f.cache.On("GetHistoricalPrice", mock.Anything, "BTC", mock.Anything).Return(decimal.NewFromInt(40000), nil)
	f.repo.On("CreatePurchase", mock.Anything, mock.Anything).Return(model.PurchaseRecord{}, dbErr)

	_, err := f.srv.AddPurchase(context.Background(), btcForm())
	assert.ErrorIs(t, err, service.ErrStoreFailure)
	assert.ErrorIs(t, err, dbErr)
}

func TestGetPurchases_StoreFailure(t *testing.T) {
	f := newFixture()
	f.repo.On("GetPurchases", mock.Anything).Return(nil, errors.New("timeout"))

	_, err := f.srv.GetPurchases(context.Background())
	assert.ErrorIs(t, err, service.ErrStoreFailure)
}

func TestDeletePurchase(t *testing.T) {
	f := newFixture()
	id := uuid.New()
	f.repo.On("DeletePurchase", mock.Anything, id).Return(nil)

	assert.NoError(t, f.srv.DeletePurchase(context.Background(), id))
	f.repo.AssertExpectations(t)
}

func TestDeletePurchase_NotFound(t *testing.T) {
	f := newFixture()
	id := uuid.New()
	f.repo.On("DeletePurchase", mock.Anything, id).Return(repository.ErrNotFound)

	err := f.srv.DeletePurchase(context.Background(), id)
	assert.ErrorIs(t, err, service.ErrStoreFailure)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestSearchSymbols(t *testing.T) {
	f := newFixture()

	assert.Empty(t, f.srv.SearchSymbols(""))
	res := f.srv.SearchSymbols("eth")
	require.NotEmpty(t, res)
	assert.Equal(t, "ETH", res[0].Symbol)
}
