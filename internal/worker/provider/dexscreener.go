package provider

import (
	"context"
	"strconv"

	"token-insight/internal/worker/model"
	"token-insight/pkg/dexscreener"
)

const sourceDexScreener = "dexscreener"

// DexScreenerAPI dexscreener.DexScreenerClient 的可替换接口
type DexScreenerAPI interface {
	GetTokenPairs(ctx context.Context, mint string) ([]dexscreener.Pair, error)
}

// DexScreenerSource 行情备用源：详情取流动性最深的交易对，交易数据按所有交易对汇总
type DexScreenerSource struct {
	api DexScreenerAPI
}

func NewDexScreenerSource(api DexScreenerAPI) *DexScreenerSource {
	return &DexScreenerSource{api: api}
}

func (s *DexScreenerSource) Name() string { return sourceDexScreener }

func (s *DexScreenerSource) Market(ctx context.Context, mint string) (*MarketData, error) {
	pairs, err := s.api.GetTokenPairs(ctx, mint)
	if err != nil {
		return nil, err
	}

	var (
		liquidity, volume float64
		buys, sells       int64
	)
	for _, p := range pairs {
		if p.Liquidity != nil {
			liquidity += p.Liquidity.Usd
		}
		volume += p.Volume.H24
		buys += p.Txns.H24.Buys
		sells += p.Txns.H24.Sells
	}

	md := &MarketData{
		Trade: model.NewTradeData(liquidity, volume, buys, sells),
	}

	best := dexscreener.DeepestPair(pairs)
	if best == nil {
		return md, nil
	}
	md.Details = model.FetchedDetails{
		Symbol:    nonEmpty(best.BaseToken.Symbol),
		Name:      nonEmpty(best.BaseToken.Name),
		MarketCap: model.PositiveDecimal(best.MarketCap),
	}
	if md.Details.MarketCap == nil {
		md.Details.MarketCap = model.PositiveDecimal(best.Fdv)
	}
	if best.Info != nil {
		md.Details.Logo = nonEmpty(best.Info.ImageURL)
	}
	if price, err := strconv.ParseFloat(best.PriceUsd, 64); err == nil && price > 0 {
		md.Details.Price = &price
		change := best.PriceChange.H24
		md.Details.PriceChange24h = &change
	}
	return md, nil
}
