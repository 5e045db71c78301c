package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ValuedPosition is a purchase record enriched with the current market price.
// Values that can't be computed are left invalid and rendered as N/A.
type ValuedPosition struct {
	PurchaseRecord
	CurrentPrice      decimal.NullDecimal
	ProfitLoss        decimal.NullDecimal
	ProfitLossPercent decimal.NullDecimal
}

type PortfolioSnapshot struct {
	TotalValue             decimal.Decimal
	TotalCost              decimal.Decimal
	TotalProfitLoss        decimal.Decimal
	TotalProfitLossPercent decimal.Decimal
}

// Valuation is the result of one valuation pass. It is never mutated after creation.
type Valuation struct {
	Positions []ValuedPosition
	Snapshot  PortfolioSnapshot
	ValuedAt  time.Time
}
