package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TokenDetails 代币身份与行情信息，每次拉取重新构建
type TokenDetails struct {
	Mint              string           `json:"mint"`
	Symbol            string           `json:"symbol"`
	Name              string           `json:"name"`
	Logo              string           `json:"logo,omitempty"` // 空字符串表示无 logo
	Price             float64          `json:"price"`
	PriceChange24h    float64          `json:"price_change_24h"`
	MarketCap         *decimal.Decimal `json:"market_cap,omitempty"`
	CirculationStatus string           `json:"circulation_status"`
}

// DisplaySymbol 展示用的大写 symbol，存储值不做大小写转换
func (d TokenDetails) DisplaySymbol() string {
	return strings.ToUpper(d.Symbol)
}

// HasLogo reports whether a logo reference is present.
func (d TokenDetails) HasLogo() bool {
	return d.Logo != ""
}

// TopHolder 前 N 持有者之一
type TopHolder struct {
	Address    string  `json:"address"`
	Percentage float64 `json:"percentage"` // 0-100
}

// TokenAnalytics 归一化后的完整快照，下游只读。刷新时间记录在 Snapshot 上，
// 相同的上游响应归一化结果逐字段相等。
type TokenAnalytics struct {
	Details      TokenDetails      `json:"details"`
	Security     *SecurityAnalysis `json:"security,omitempty"`
	TopHolders   []TopHolder       `json:"top_holders"`
	TradeData    RealTradeData     `json:"trade_data"`
	TotalHolders *int64            `json:"total_holders,omitempty"`
}

// HasSecurity reports whether a risk assessment was produced for this snapshot.
func (a TokenAnalytics) HasSecurity() bool {
	return a.Security != nil
}

// PartialRecord 调用方已知的部分记录（例如钱包持仓缓存），字段均可缺失
type PartialRecord struct {
	Mint   *string `json:"mint,omitempty"`
	Symbol *string `json:"symbol,omitempty"`
	Name   *string `json:"name,omitempty"`
	Logo   *string `json:"logo,omitempty"`
}

// FetchedDetails 外部数据源返回的详情，nil 表示该字段缺失
type FetchedDetails struct {
	Symbol            *string
	Name              *string
	Logo              *string
	Price             *float64
	PriceChange24h    *float64
	MarketCap         *decimal.Decimal
	CirculationStatus *string
}

// FillMissing 用 other 补齐当前缺失的字段，已有字段不覆盖
func (d *FetchedDetails) FillMissing(other FetchedDetails) {
	if d.Symbol == nil {
		d.Symbol = other.Symbol
	}
	if d.Name == nil {
		d.Name = other.Name
	}
	if d.Logo == nil {
		d.Logo = other.Logo
	}
	if d.Price == nil {
		d.Price = other.Price
	}
	if d.PriceChange24h == nil {
		d.PriceChange24h = other.PriceChange24h
	}
	if d.MarketCap == nil {
		d.MarketCap = other.MarketCap
	}
	if d.CirculationStatus == nil {
		d.CirculationStatus = other.CirculationStatus
	}
}

// Complete reports whether every field has been populated.
func (d FetchedDetails) Complete() bool {
	return d.Symbol != nil && d.Name != nil && d.Logo != nil &&
		d.Price != nil && d.PriceChange24h != nil &&
		d.MarketCap != nil && d.CirculationStatus != nil
}

// FetchResult 外部指标提供方的一次完整响应
type FetchResult struct {
	Details      FetchedDetails
	TradeData    RealTradeData
	TopHolders   []TopHolder
	Security     *SecurityAnalysis
	TotalHolders *int64
}

// Snapshot 一次刷新的产物：归一化记录 + 合成价格序列
type Snapshot struct {
	Analytics   TokenAnalytics `json:"analytics"`
	Series      []PricePoint   `json:"series"`
	TimeFrame   TimeFrame      `json:"time_frame"`
	RefreshedAt time.Time      `json:"refreshed_at"`
}
