package dbConverter

import (
	"github.com/KotFed0t/crypto_portfolio_bot/internal/model"
	"github.com/KotFed0t/crypto_portfolio_bot/internal/model/dbModel"
)

func ConvertPurchase(dbPurchase dbModel.Purchase) model.PurchaseRecord {
	return model.PurchaseRecord{
		ID:                dbPurchase.ID,
		Symbol:            dbPurchase.Symbol,
		PurchaseTimestamp: dbPurchase.PurchaseTimestamp,
		Amount:            dbPurchase.Amount,
		PurchasePriceUsd:  dbPurchase.PurchasePriceUsd,
	}
}
