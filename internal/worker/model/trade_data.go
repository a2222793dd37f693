package model

import "github.com/shopspring/decimal"

// Unavailable 字段缺失时的展示文案
const Unavailable = "unavailable"

// RealTradeData 24h 交易聚合数据
//
// 上游以 0 表示"未知"，这里统一转成 nil；展示层依据 nil 渲染 unavailable，
// 不能渲染成 $0.00。
type RealTradeData struct {
	Liquidity *decimal.Decimal `json:"liquidity,omitempty"`
	Volume24h *decimal.Decimal `json:"volume_24h,omitempty"`
	Buys24h   *int64           `json:"buys_24h,omitempty"`
	Sells24h  *int64           `json:"sells_24h,omitempty"`
}

// NewTradeData 按上游零值哨兵规则构建，0 或负数视为缺失
func NewTradeData(liquidity, volume float64, buys, sells int64) RealTradeData {
	return RealTradeData{
		Liquidity: PositiveDecimal(liquidity),
		Volume24h: PositiveDecimal(volume),
		Buys24h:   PositiveInt(buys),
		Sells24h:  PositiveInt(sells),
	}
}

func (t RealTradeData) IsLiquidityAvailable() bool { return t.Liquidity != nil }
func (t RealTradeData) IsVolumeAvailable() bool    { return t.Volume24h != nil }
func (t RealTradeData) IsBuysAvailable() bool      { return t.Buys24h != nil }
func (t RealTradeData) IsSellsAvailable() bool     { return t.Sells24h != nil }

// FillMissing 用 other 补齐缺失字段
func (t *RealTradeData) FillMissing(other RealTradeData) {
	if t.Liquidity == nil {
		t.Liquidity = other.Liquidity
	}
	if t.Volume24h == nil {
		t.Volume24h = other.Volume24h
	}
	if t.Buys24h == nil {
		t.Buys24h = other.Buys24h
	}
	if t.Sells24h == nil {
		t.Sells24h = other.Sells24h
	}
}

// Availability 返回每个字段的展示值，缺失字段为 Unavailable
func (t RealTradeData) Availability() map[string]string {
	out := map[string]string{
		"liquidity":  Unavailable,
		"volume_24h": Unavailable,
		"buys_24h":   Unavailable,
		"sells_24h":  Unavailable,
	}
	if t.Liquidity != nil {
		out["liquidity"] = t.Liquidity.String()
	}
	if t.Volume24h != nil {
		out["volume_24h"] = t.Volume24h.String()
	}
	if t.Buys24h != nil {
		out["buys_24h"] = decimal.NewFromInt(*t.Buys24h).String()
	}
	if t.Sells24h != nil {
		out["sells_24h"] = decimal.NewFromInt(*t.Sells24h).String()
	}
	return out
}

// PositiveDecimal 仅当 v > 0 时返回值
func PositiveDecimal(v float64) *decimal.Decimal {
	if !(v > 0) {
		return nil
	}
	d := decimal.NewFromFloat(v)
	return &d
}

// PositiveInt 仅当 v > 0 时返回值
func PositiveInt(v int64) *int64 {
	if v <= 0 {
		return nil
	}
	return &v
}
