package dexscreener

// TokenPairsResp /latest/dex/tokens/{address}
type TokenPairsResp struct {
	SchemaVersion string `json:"schemaVersion"`
	Pairs         []Pair `json:"pairs"`
}

// Pair 单个交易对
type Pair struct {
	ChainID     string       `json:"chainId"`
	DexID       string       `json:"dexId"`
	PairAddress string       `json:"pairAddress"`
	BaseToken   Token        `json:"baseToken"`
	QuoteToken  Token        `json:"quoteToken"`
	PriceUsd    string       `json:"priceUsd"`
	Txns        PairTxns     `json:"txns"`
	Volume      PeriodFloats `json:"volume"`
	PriceChange PeriodFloats `json:"priceChange"`
	Liquidity   *Liquidity   `json:"liquidity"`
	Fdv         float64      `json:"fdv"`
	MarketCap   float64      `json:"marketCap"`
	Info        *PairInfo    `json:"info"`
}

type Token struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

type Liquidity struct {
	Usd   float64 `json:"usd"`
	Base  float64 `json:"base"`
	Quote float64 `json:"quote"`
}

type PairTxns struct {
	H24 TxnSummary `json:"h24"`
}

type TxnSummary struct {
	Buys  int64 `json:"buys"`
	Sells int64 `json:"sells"`
}

type PeriodFloats struct {
	H1  float64 `json:"h1"`
	H6  float64 `json:"h6"`
	H24 float64 `json:"h24"`
}

type PairInfo struct {
	ImageURL string `json:"imageUrl"`
}
