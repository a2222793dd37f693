package birdeye

// Response Birdeye 统一响应外壳
type Response[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    *T     `json:"data"`
}

// TokenOverview /defi/token_overview
type TokenOverview struct {
	Address               string   `json:"address"`
	Decimals              int      `json:"decimals"`
	Symbol                string   `json:"symbol"`
	Name                  string   `json:"name"`
	LogoURI               string   `json:"logoURI"`
	Price                 *float64 `json:"price"`
	PriceChange24hPercent *float64 `json:"priceChange24hPercent"`
	MarketCap             float64  `json:"marketCap"`
	Liquidity             float64  `json:"liquidity"`
	V24hUSD               float64  `json:"v24hUSD"`
	Buy24h                int64    `json:"buy24h"`
	Sell24h               int64    `json:"sell24h"`
	Holder                int64    `json:"holder"`
	Supply                float64  `json:"supply"`
	CirculatingSupply     float64  `json:"circulatingSupply"`
}

// TradeData /defi/v3/token/trade-data/single
type TradeData struct {
	Address      string  `json:"address"`
	Holder       int64   `json:"holder"`
	Price        float64 `json:"price"`
	Volume24hUSD float64 `json:"volume_24h_usd"`
	Buy24h       int64   `json:"buy_24h"`
	Sell24h      int64   `json:"sell_24h"`
	Trade24h     int64   `json:"trade_24h"`
}

// TokenSecurity /defi/token_security（Solana 字段）
type TokenSecurity struct {
	CreatorAddress     *string  `json:"creatorAddress"`
	OwnerAddress       *string  `json:"ownerAddress"`
	CreatorPercentage  *float64 `json:"creatorPercentage"`
	Top10HolderPercent *float64 `json:"top10HolderPercent"`
	Freezeable         *bool    `json:"freezeable"`
	FreezeAuthority    *string  `json:"freezeAuthority"`
	MutableMetadata    *bool    `json:"mutableMetadata"`
	TransferFeeEnable  *bool    `json:"transferFeeEnable"`
	IsToken2022        bool     `json:"isToken2022"`
	NonTransferable    *bool    `json:"nonTransferable"`
}
