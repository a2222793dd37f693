package job

import (
	"context"
	"strings"
	"sync/atomic"

	"token-insight/internal/worker/config"
	"token-insight/internal/worker/model"
)

// TagLister 按 tag 列出 token 地址（web3_tokens）
type TagLister interface {
	ListByTag(ctx context.Context, chainID uint64, tag string, limit int) ([]string, error)
}

// Watchlist 定时刷新的 mint 列表。配置中显式列出的优先，
// 为空时按 tag 从 token 表取市值最高的若干个。支持热更新。
type Watchlist struct {
	cfg    atomic.Pointer[config.AnalyticsConfig]
	lister TagLister
}

func NewWatchlist(cfg config.AnalyticsConfig, lister TagLister) *Watchlist {
	w := &Watchlist{lister: lister}
	w.Update(cfg)
	return w
}

// Update 配置变更时调用
func (w *Watchlist) Update(cfg config.AnalyticsConfig) {
	w.cfg.Store(&cfg)
}

// Mints 去重、去空白，保持配置顺序
func (w *Watchlist) Mints(ctx context.Context) ([]string, error) {
	cfg := w.cfg.Load()
	mints := dedupe(cfg.Watchlist)
	if len(mints) > 0 || cfg.WatchlistTag == "" || w.lister == nil {
		return mints, nil
	}

	limit := cfg.WatchlistLimit
	if limit <= 0 {
		limit = 50
	}
	listed, err := w.lister.ListByTag(ctx, model.SolanaChainID, cfg.WatchlistTag, limit)
	if err != nil {
		return nil, err
	}
	return dedupe(listed), nil
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
