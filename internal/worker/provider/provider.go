// Package provider fetches raw token metrics from external sources and folds them
// into a single model.FetchResult. Missing fields are left nil; only a token with
// no market data at all is an error.
package provider

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"token-insight/internal/worker/model"
	"token-insight/internal/worker/monitor"

	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
)

// ErrNoMarketData 所有行情源都失败
var ErrNoMarketData = errors.New("no market data available")

// Provider 外部指标提供方
type Provider interface {
	Fetch(ctx context.Context, mint string, existing *model.PartialRecord) (*model.FetchResult, error)
}

// MarketData 行情源返回：详情 + 24h 交易数据
type MarketData struct {
	Details      model.FetchedDetails
	Trade        model.RealTradeData
	TotalHolders *int64
}

// MarketSource token 详情与交易数据来源
type MarketSource interface {
	Name() string
	Market(ctx context.Context, mint string) (*MarketData, error)
}

// SecuritySource 风险评估来源
type SecuritySource interface {
	Name() string
	Security(ctx context.Context, mint string) (*model.SecurityAnalysis, error)
}

// HolderData 持有者来源返回
type HolderData struct {
	Holders []model.TopHolder
	Total   *int64
}

// HolderSource 持有者分布来源
type HolderSource interface {
	Name() string
	Holders(ctx context.Context, mint string, limit int) (*HolderData, error)
}

// Composite 按优先级组合多个数据源
type Composite struct {
	markets     []MarketSource
	security    SecuritySource
	holders     []HolderSource
	holderLimit int
	tl          *zap.Logger
}

// NewComposite markets / holders 按优先级排列，security 可为 nil
func NewComposite(tl *zap.Logger, markets []MarketSource, security SecuritySource, holders []HolderSource, holderLimit int) *Composite {
	if holderLimit <= 0 {
		holderLimit = 10
	}
	return &Composite{
		markets:     markets,
		security:    security,
		holders:     holders,
		holderLimit: holderLimit,
		tl:          tl,
	}
}

// Fetch 并发拉取行情、风险、持有者；existing 仅用于日志上下文
func (c *Composite) Fetch(ctx context.Context, mint string, existing *model.PartialRecord) (*model.FetchResult, error) {
	var (
		market    *MarketData
		marketErr error
		security  *model.SecurityAnalysis
		holders   *HolderData
	)

	var wg conc.WaitGroup
	wg.Go(func() { market, marketErr = c.fetchMarket(ctx, mint) })
	wg.Go(func() { security = c.fetchSecurity(ctx, mint) })
	wg.Go(func() { holders = c.fetchHolders(ctx, mint) })
	wg.Wait()

	if marketErr != nil {
		return nil, marketErr
	}

	result := &model.FetchResult{
		Details:      market.Details,
		TradeData:    market.Trade,
		Security:     security,
		TotalHolders: market.TotalHolders,
		TopHolders:   []model.TopHolder{},
	}
	if holders != nil {
		result.TopHolders = holders.Holders
		if holders.Total != nil {
			result.TotalHolders = holders.Total
		}
	}

	c.tl.Debug("provider fetch completed",
		zap.String("mint", mint),
		zap.Bool("has_existing", existing != nil),
		zap.Bool("has_security", security != nil),
		zap.Int("holders", len(result.TopHolders)))
	return result, nil
}

// fetchMarket 依次查询行情源，后面的源只补齐缺失字段
func (c *Composite) fetchMarket(ctx context.Context, mint string) (*MarketData, error) {
	var (
		acc     *MarketData
		lastErr error
	)
	for _, src := range c.markets {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		md, err := observe(src.Name(), func() (*MarketData, error) { return src.Market(ctx, mint) })
		if err != nil {
			c.tl.Warn("market source failed", zap.String("source", src.Name()), zap.String("mint", mint), zap.Error(err))
			lastErr = err
			continue
		}
		if acc == nil {
			acc = md
		} else {
			acc.Details.FillMissing(md.Details)
			acc.Trade.FillMissing(md.Trade)
			if acc.TotalHolders == nil {
				acc.TotalHolders = md.TotalHolders
			}
		}
		if acc.Details.Complete() && acc.Trade.IsLiquidityAvailable() && acc.Trade.IsVolumeAvailable() {
			break
		}
	}
	if acc == nil {
		if lastErr == nil {
			return nil, ErrNoMarketData
		}
		return nil, fmt.Errorf("%w: %v", ErrNoMarketData, lastErr)
	}
	return acc, nil
}

// fetchSecurity 风险评估失败不影响整体，返回 nil
func (c *Composite) fetchSecurity(ctx context.Context, mint string) *model.SecurityAnalysis {
	if c.security == nil {
		return nil
	}
	sa, err := observe(c.security.Name(), func() (*model.SecurityAnalysis, error) { return c.security.Security(ctx, mint) })
	if err != nil {
		c.tl.Warn("security source failed", zap.String("source", c.security.Name()), zap.String("mint", mint), zap.Error(err))
		return nil
	}
	return sa
}

// fetchHolders 取第一个返回非空列表的来源，结果按占比降序并截断
func (c *Composite) fetchHolders(ctx context.Context, mint string) *HolderData {
	var total *int64
	for _, src := range c.holders {
		if ctx.Err() != nil {
			return nil
		}
		hd, err := observe(src.Name(), func() (*HolderData, error) { return src.Holders(ctx, mint, c.holderLimit) })
		if err != nil {
			c.tl.Warn("holder source failed", zap.String("source", src.Name()), zap.String("mint", mint), zap.Error(err))
			continue
		}
		if total == nil {
			total = hd.Total
		}
		if len(hd.Holders) == 0 {
			continue
		}
		return &HolderData{Holders: TopN(hd.Holders, c.holderLimit), Total: total}
	}
	if total != nil {
		return &HolderData{Holders: []model.TopHolder{}, Total: total}
	}
	return nil
}

// TopN 按持仓比例降序取前 n 个，同一地址只保留一次
func TopN(holders []model.TopHolder, n int) []model.TopHolder {
	seen := make(map[string]bool, len(holders))
	out := make([]model.TopHolder, 0, len(holders))
	for _, h := range holders {
		if h.Address == "" || seen[h.Address] {
			continue
		}
		seen[h.Address] = true
		out = append(out, h)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Percentage > out[j].Percentage })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func observe[T any](source string, fn func() (T, error)) (T, error) {
	start := time.Now()
	v, err := fn()
	monitor.ProviderDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	status := "ok"
	if err != nil {
		status = "error"
	}
	monitor.ProviderRequests.WithLabelValues(source, status).Inc()
	return v, err
}
