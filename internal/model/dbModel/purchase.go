package dbModel

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Purchase struct {
	ID                uuid.UUID           `db:"purchase_id"`
	Symbol            string              `db:"symbol"`
	PurchaseTimestamp time.Time           `db:"purchase_ts"`
	Amount            decimal.Decimal     `db:"amount"`
	PurchasePriceUsd  decimal.NullDecimal `db:"purchase_price_usd"`
	CreatedAt         time.Time           `db:"dt_create"`
}
