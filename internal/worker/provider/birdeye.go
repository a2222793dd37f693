package provider

import (
	"context"
	"fmt"

	"token-insight/internal/worker/model"
	"token-insight/pkg/birdeye"

	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
)

const sourceBirdeye = "birdeye"

// BirdeyeAPI birdeye.BirdeyeClient 的可替换接口
type BirdeyeAPI interface {
	GetTokenOverview(ctx context.Context, mint string) (*birdeye.TokenOverview, error)
	GetTradeData(ctx context.Context, mint string) (*birdeye.TradeData, error)
	GetTokenSecurity(ctx context.Context, mint string) (*birdeye.TokenSecurity, error)
}

// BirdeyeSource 主行情源 + 风险评估源
type BirdeyeSource struct {
	api BirdeyeAPI
	tl  *zap.Logger
}

func NewBirdeyeSource(api BirdeyeAPI, tl *zap.Logger) *BirdeyeSource {
	return &BirdeyeSource{api: api, tl: tl}
}

func (s *BirdeyeSource) Name() string { return sourceBirdeye }

// Market overview 必须成功，trade-data 失败时用 overview 的 24h 聚合
func (s *BirdeyeSource) Market(ctx context.Context, mint string) (*MarketData, error) {
	var (
		overview    *birdeye.TokenOverview
		overviewErr error
		trade       *birdeye.TradeData
	)

	var wg conc.WaitGroup
	wg.Go(func() { overview, overviewErr = s.api.GetTokenOverview(ctx, mint) })
	wg.Go(func() {
		// 失败降级到 overview
		var err error
		if trade, err = s.api.GetTradeData(ctx, mint); err != nil {
			s.tl.Debug("birdeye trade data unavailable", zap.String("mint", mint), zap.Error(err))
		}
	})
	wg.Wait()

	if overviewErr != nil {
		return nil, overviewErr
	}

	md := &MarketData{
		Details: overviewDetails(overview),
		Trade:   model.NewTradeData(overview.Liquidity, overview.V24hUSD, overview.Buy24h, overview.Sell24h),
	}
	if trade != nil {
		preferred := model.RealTradeData{
			Volume24h: model.PositiveDecimal(trade.Volume24hUSD),
			Buys24h:   model.PositiveInt(trade.Buy24h),
			Sells24h:  model.PositiveInt(trade.Sell24h),
		}
		preferred.FillMissing(md.Trade)
		md.Trade = preferred
	}

	holders := overview.Holder
	if trade != nil && trade.Holder > holders {
		holders = trade.Holder
	}
	md.TotalHolders = model.PositiveInt(holders)
	return md, nil
}

// Security 拉取合约安全信息并打分
func (s *BirdeyeSource) Security(ctx context.Context, mint string) (*model.SecurityAnalysis, error) {
	sec, err := s.api.GetTokenSecurity(ctx, mint)
	if err != nil {
		return nil, err
	}
	return ScoreSecurity(sec), nil
}

func overviewDetails(o *birdeye.TokenOverview) model.FetchedDetails {
	d := model.FetchedDetails{
		Symbol:         nonEmpty(o.Symbol),
		Name:           nonEmpty(o.Name),
		Logo:           nonEmpty(o.LogoURI),
		Price:          o.Price,
		PriceChange24h: o.PriceChange24hPercent,
		MarketCap:      model.PositiveDecimal(o.MarketCap),
	}
	if status, ok := circulationStatus(o.CirculatingSupply, o.Supply); ok {
		d.CirculationStatus = &status
	}
	return d
}

// circulationStatus 流通量 / 总供应量 的展示文案
func circulationStatus(circulating, supply float64) (string, bool) {
	if !(supply > 0) || !(circulating > 0) {
		return "", false
	}
	ratio := decimal.NewFromFloat(circulating).Div(decimal.NewFromFloat(supply))
	if ratio.GreaterThanOrEqual(decimal.RequireFromString("0.999")) {
		return "Fully Circulating", true
	}
	pct, _ := ratio.Mul(decimal.NewFromInt(100)).Float64()
	return fmt.Sprintf("%.1f%% Circulating", pct), true
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
