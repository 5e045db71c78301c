package postgres

import (
	"context"
	"log/slog"

	"github.com/KotFed0t/crypto_portfolio_bot/data/repository"
	"github.com/KotFed0t/crypto_portfolio_bot/internal/converter/dbConverter"
	"github.com/KotFed0t/crypto_portfolio_bot/internal/model"
	"github.com/KotFed0t/crypto_portfolio_bot/internal/model/dbModel"
	"github.com/KotFed0t/crypto_portfolio_bot/utils"
	"github.com/google/uuid"
)

func (r *Postgres) CreatePurchase(ctx context.Context, purchase model.NewPurchase) (record model.PurchaseRecord, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.CreatePurchase"
	query := `
		INSERT INTO purchases(symbol, purchase_ts, amount, purchase_price_usd)
		VALUES ($1, $2, $3, $4)
		RETURNING purchase_id, symbol, purchase_ts, amount, purchase_price_usd, dt_create
	`

	slog.Debug("CreatePurchase start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query), slog.Any("purchase", purchase))
	defer func() {
		if err != nil {
			slog.Error("CreatePurchase failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("CreatePurchase completed", slog.String("rqID", rqID), slog.String("op", op), slog.String("purchaseID", record.ID.String()))
		}
	}()

	dbPurchase := dbModel.Purchase{}
	err = r.db.QueryRowxContext(
		ctx,
		query,
		purchase.Symbol,
		purchase.PurchaseTimestamp,
		purchase.Amount,
		purchase.PurchasePriceUsd,
	).StructScan(&dbPurchase)
	if err != nil {
		return model.PurchaseRecord{}, err
	}

	return dbConverter.ConvertPurchase(dbPurchase), nil
}

// GetPurchases returns all purchases, newest purchase first.
func (r *Postgres) GetPurchases(ctx context.Context) (records []model.PurchaseRecord, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetPurchases"
	query := `
		SELECT purchase_id, symbol, purchase_ts, amount, purchase_price_usd, dt_create
		FROM purchases
		ORDER BY purchase_ts DESC
	`

	slog.Debug("GetPurchases start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetPurchases failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetPurchases completed", slog.String("rqID", rqID), slog.String("op", op), slog.Int("count", len(records)))
		}
	}()

	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	records = make([]model.PurchaseRecord, 0)
	for rows.Next() {
		var purchase dbModel.Purchase
		err = rows.StructScan(&purchase)
		if err != nil {
			return nil, err
		}
		records = append(records, dbConverter.ConvertPurchase(purchase))
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

func (r *Postgres) DeletePurchase(ctx context.Context, id uuid.UUID) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.DeletePurchase"
	query := `DELETE FROM purchases WHERE purchase_id = $1`

	slog.Debug("DeletePurchase start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query), slog.String("purchaseID", id.String()))
	defer func() {
		if err != nil {
			slog.Error("DeletePurchase failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("DeletePurchase completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if affected == 0 {
		return repository.ErrNotFound
	}

	return nil
}
