package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PurchaseRecord struct {
	ID                uuid.UUID
	Symbol            string
	PurchaseTimestamp time.Time
	Amount            decimal.Decimal
	// историческая цена на момент покупки, фиксируется при создании и больше не пересчитывается
	PurchasePriceUsd decimal.NullDecimal
}

type NewPurchase struct {
	Symbol            string
	PurchaseTimestamp time.Time
	Amount            decimal.Decimal
	PurchasePriceUsd  decimal.NullDecimal
}

// PurchaseForm is the raw user input of the add-purchase form.
type PurchaseForm struct {
	Symbol string `json:"symbol"`
	Date   string `json:"date"`
	Time   string `json:"time"`
	Amount string `json:"amount"`
}
