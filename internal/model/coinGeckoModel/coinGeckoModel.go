package coinGeckoModel

import "github.com/shopspring/decimal"

// SimplePrice is the response of /simple/price: {"bitcoin": {"usd": 123.4}}
type SimplePrice map[string]struct {
	Usd *decimal.Decimal `json:"usd"`
}

// CoinHistory is the part of /coins/{id}/history we care about.
type CoinHistory struct {
	ID         string `json:"id"`
	Symbol     string `json:"symbol"`
	MarketData *struct {
		CurrentPrice struct {
			Usd *decimal.Decimal `json:"usd"`
		} `json:"current_price"`
	} `json:"market_data"`
}
