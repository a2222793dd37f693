package service

import (
	"context"
	"fmt"
	"time"

	"token-insight/internal/worker/model"
	"token-insight/internal/worker/provider"
	"token-insight/pkg/logger"
	"token-insight/pkg/solana_client"

	"go.uber.org/zap"
)

const (
	DefaultSymbol = "ASSET"
	DefaultName   = "Asset"
)

// Normalizer 拉取外部指标并按固定回退顺序合并成 TokenAnalytics
type Normalizer struct {
	provider provider.Provider
	timeout  time.Duration
	tl       *zap.Logger
}

func NewNormalizer(p provider.Provider, timeout time.Duration, tl *zap.Logger) *Normalizer {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Normalizer{provider: p, timeout: timeout, tl: tl}
}

// Normalize 失败时不返回任何部分结果：
//   - mint 非法 -> ErrInvalidMint
//   - 数据源报错 / 超时 -> ErrDataUnavailable
//
// 调用方 ctx 被取消时返回 ctx.Err()。
func (n *Normalizer) Normalize(ctx context.Context, mint string, existing *model.PartialRecord, symbolHint string) (model.TokenAnalytics, error) {
	if _, err := solana_client.ParseMint(mint); err != nil {
		return model.TokenAnalytics{}, fmt.Errorf("%w: %v", ErrInvalidMint, err)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	res, err := n.provider.Fetch(fetchCtx, mint, existing)
	if err != nil {
		if ctx.Err() != nil {
			return model.TokenAnalytics{}, ctx.Err()
		}
		logger.WithTrace(ctx, n.tl).Warn("metrics provider failed", zap.String("mint", mint), zap.Error(err))
		return model.TokenAnalytics{}, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}
	if res == nil {
		return model.TokenAnalytics{}, fmt.Errorf("%w: empty provider response", ErrDataUnavailable)
	}

	return Merge(mint, res, existing, symbolHint), nil
}

// Merge 纯函数：相同输入得到逐字段相同的结果
func Merge(mint string, res *model.FetchResult, existing *model.PartialRecord, symbolHint string) model.TokenAnalytics {
	if existing == nil {
		existing = &model.PartialRecord{}
	}
	fetched := res.Details

	symbol, _ := Resolve(
		FromPtr(fetched.Symbol),
		FromPtr(existing.Symbol),
		FromString(symbolHint),
		Const(DefaultSymbol),
	)
	name, _ := Resolve(
		FromPtr(fetched.Name),
		FromPtr(existing.Name),
		Const(DefaultName),
	)
	// 原生 SOL 固定 logo，覆盖数据源返回值
	logo, _ := Resolve(
		When(mint == model.NativeSolMint, model.NativeSolLogo),
		FromPtr(fetched.Logo),
		FromPtr(existing.Logo),
	)
	circulation, _ := Resolve(
		FromPtr(fetched.CirculationStatus),
		Const(model.Unavailable),
	)

	details := model.TokenDetails{
		Mint:              mint,
		Symbol:            symbol,
		Name:              name,
		Logo:              logo,
		MarketCap:         fetched.MarketCap,
		CirculationStatus: circulation,
	}
	if fetched.Price != nil && *fetched.Price > 0 {
		details.Price = *fetched.Price
	}
	if fetched.PriceChange24h != nil {
		details.PriceChange24h = *fetched.PriceChange24h
	}

	holders := res.TopHolders
	if holders == nil {
		holders = []model.TopHolder{}
	}

	return model.TokenAnalytics{
		Details:      details,
		Security:     res.Security,
		TopHolders:   holders,
		TradeData:    res.TradeData,
		TotalHolders: res.TotalHolders,
	}
}
