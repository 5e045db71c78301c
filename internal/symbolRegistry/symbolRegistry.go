package symbolRegistry

import "strings"

const searchLimit = 5

type Entry struct {
	Symbol   string
	Name     string
	OracleID string // идентификатор монеты в CoinGecko
}

var defaultEntries = []Entry{
	{Symbol: "BTC", Name: "Bitcoin", OracleID: "bitcoin"},
	{Symbol: "ETH", Name: "Ethereum", OracleID: "ethereum"},
	{Symbol: "USDT", Name: "Tether", OracleID: "tether"},
	{Symbol: "BNB", Name: "BNB", OracleID: "binancecoin"},
	{Symbol: "SOL", Name: "Solana", OracleID: "solana"},
	{Symbol: "USDC", Name: "USD Coin", OracleID: "usd-coin"},
	{Symbol: "XRP", Name: "XRP", OracleID: "ripple"},
	{Symbol: "DOGE", Name: "Dogecoin", OracleID: "dogecoin"},
	{Symbol: "TON", Name: "Toncoin", OracleID: "the-open-network"},
	{Symbol: "ADA", Name: "Cardano", OracleID: "cardano"},
	{Symbol: "TRX", Name: "TRON", OracleID: "tron"},
	{Symbol: "AVAX", Name: "Avalanche", OracleID: "avalanche-2"},
	{Symbol: "SHIB", Name: "Shiba Inu", OracleID: "shiba-inu"},
	{Symbol: "DOT", Name: "Polkadot", OracleID: "polkadot"},
	{Symbol: "LINK", Name: "Chainlink", OracleID: "chainlink"},
	{Symbol: "MATIC", Name: "Polygon", OracleID: "matic-network"},
	{Symbol: "LTC", Name: "Litecoin", OracleID: "litecoin"},
	{Symbol: "BCH", Name: "Bitcoin Cash", OracleID: "bitcoin-cash"},
	{Symbol: "XLM", Name: "Stellar", OracleID: "stellar"},
	{Symbol: "ATOM", Name: "Cosmos Hub", OracleID: "cosmos"},
	{Symbol: "UNI", Name: "Uniswap", OracleID: "uniswap"},
}

// Registry is an immutable table of supported coins.
type Registry struct {
	entries  []Entry
	bySymbol map[string]Entry
}

func New() *Registry {
	return NewWithEntries(defaultEntries)
}

func NewWithEntries(entries []Entry) *Registry {
	r := &Registry{
		entries:  make([]Entry, len(entries)),
		bySymbol: make(map[string]Entry, len(entries)),
	}
	copy(r.entries, entries)
	for _, e := range entries {
		r.bySymbol[strings.ToUpper(e.Symbol)] = e
	}
	return r
}

func (r *Registry) IsSupported(symbol string) bool {
	_, ok := r.Lookup(symbol)
	return ok
}

func (r *Registry) Lookup(symbol string) (Entry, bool) {
	e, ok := r.bySymbol[strings.ToUpper(symbol)]
	return e, ok
}

// Search returns up to 5 entries whose symbol or name contains query, in table order.
// Empty query returns nothing.
func (r *Registry) Search(query string) []Entry {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	res := make([]Entry, 0, searchLimit)
	for _, e := range r.entries {
		if strings.Contains(strings.ToLower(e.Symbol), query) || strings.Contains(strings.ToLower(e.Name), query) {
			res = append(res, e)
			if len(res) == searchLimit {
				break
			}
		}
	}
	return res
}

// ResolveOracleID maps symbol to its CoinGecko id.
// Unknown symbols intentionally fall back to the lower-cased symbol so the oracle can still be asked;
// the write path rejects them earlier through IsSupported.
func (r *Registry) ResolveOracleID(symbol string) string {
	if e, ok := r.Lookup(symbol); ok {
		return e.OracleID
	}
	return strings.ToLower(symbol)
}

func (r *Registry) Entries() []Entry {
	res := make([]Entry, len(r.entries))
	copy(res, r.entries)
	return res
}
