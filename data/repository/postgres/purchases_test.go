package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/KotFed0t/crypto_portfolio_bot/config"
	"github.com/KotFed0t/crypto_portfolio_bot/data/repository"
	"github.com/KotFed0t/crypto_portfolio_bot/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var purchaseColumns = []string{"purchase_id", "symbol", "purchase_ts", "amount", "purchase_price_usd", "dt_create"}

func newMockRepo(t *testing.T) (*Postgres, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewPostgres(&config.Config{}, sqlx.NewDb(db, "sqlmock")), mock
}

func TestCreatePurchase(t *testing.T) {
	repo, mock := newMockRepo(t)

	id := uuid.New()
	ts := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("INSERT INTO purchases").
		WithArgs("BTC", ts, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(purchaseColumns).
			AddRow(id.String(), "BTC", ts, "1", "40000", time.Now()))

	record, err := repo.CreatePurchase(context.Background(), model.NewPurchase{
		Symbol:            "BTC",
		PurchaseTimestamp: ts,
		Amount:            decimal.NewFromInt(1),
		PurchasePriceUsd:  decimal.NewNullDecimal(decimal.NewFromInt(40000)),
	})
	require.NoError(t, err)

	assert.Equal(t, id, record.ID)
	assert.Equal(t, "BTC", record.Symbol)
	assert.True(t, ts.Equal(record.PurchaseTimestamp))
	assert.True(t, decimal.NewFromInt(1).Equal(record.Amount))
	require.True(t, record.PurchasePriceUsd.Valid)
	assert.True(t, decimal.NewFromInt(40000).Equal(record.PurchasePriceUsd.Decimal))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePurchase_StoreError(t *testing.T) {
	repo, mock := newMockRepo(t)

	dbErr := errors.New("connection reset")
	mock.ExpectQuery("INSERT INTO purchases").WillReturnError(dbErr)

	_, err := repo.CreatePurchase(context.Background(), model.NewPurchase{Symbol: "ETH", Amount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, dbErr)
}

func TestCreatePurchase_ConstraintErrorReturnedAsIs(t *testing.T) {
	repo, mock := newMockRepo(t)

	checkViolation := &pgconn.PgError{Code: "23514", ConstraintName: "purchases_amount_check"}
	mock.ExpectQuery("INSERT INTO purchases").WillReturnError(checkViolation)

	_, err := repo.CreatePurchase(context.Background(), model.NewPurchase{Symbol: "ETH", Amount: decimal.NewFromInt(-1)})

	var pgErr *pgconn.PgError
	require.ErrorAs(t, err, &pgErr)
	assert.Equal(t, "23514", pgErr.Code)
	assert.NotErrorIs(t, err, repository.ErrNotFound)
}

func TestGetPurchases(t *testing.T) {
	repo, mock := newMockRepo(t)

	newer := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	older := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)
	id1, id2 := uuid.New(), uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM purchases ORDER BY purchase_ts DESC").
		WillReturnRows(sqlmock.NewRows(purchaseColumns).
			AddRow(id1.String(), "ETH", newer, "2.5", "3000.25", time.Now()).
			AddRow(id2.String(), "BTC", older, "0.1", nil, time.Now()))

	records, err := repo.GetPurchases(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, id1, records[0].ID)
	assert.True(t, decimal.RequireFromString("2.5").Equal(records[0].Amount))
	assert.True(t, records[0].PurchasePriceUsd.Valid)

	assert.Equal(t, id2, records[1].ID)
	assert.False(t, records[1].PurchasePriceUsd.Valid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPurchases_Empty(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM purchases").WillReturnRows(sqlmock.NewRows(purchaseColumns))

	records, err := repo.GetPurchases(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestDeletePurchase(t *testing.T) {
	repo, mock := newMockRepo(t)

	id := uuid.New()
	mock.ExpectExec("DELETE FROM purchases").
		WithArgs(id.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.DeletePurchase(context.Background(), id)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePurchase_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("DELETE FROM purchases").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeletePurchase(context.Background(), uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
