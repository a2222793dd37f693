package worker

import (
	"time"

	"token-insight/internal/worker/cache"
	"token-insight/internal/worker/config"
	"token-insight/internal/worker/dao"
	"token-insight/internal/worker/provider"
	"token-insight/internal/worker/repository"
	"token-insight/internal/worker/service"
	"token-insight/pkg/birdeye"
	"token-insight/pkg/dexscreener"
	"token-insight/pkg/moralis"

	"go.uber.org/zap"
)

// NewProvider 组装外部数据源：Birdeye 为主，DexScreener 补齐行情；
// 持有者优先 Moralis，失败时走 Solana RPC
func NewProvider(cfg config.Config, repo repository.Repository, tl *zap.Logger) provider.Provider {
	be := provider.NewBirdeyeSource(birdeye.NewBirdeyeClient(birdeye.Config{
		BaseURL:   cfg.Birdeye.BaseURL,
		APIKey:    cfg.Birdeye.APIKey,
		RateLimit: cfg.Birdeye.RateLimit,
		Timeout:   time.Duration(cfg.Birdeye.Timeout) * time.Second,
	}, tl), tl)

	markets := []provider.MarketSource{be}
	if cfg.DexScreener.Enable {
		markets = append(markets, provider.NewDexScreenerSource(dexscreener.NewDexScreenerClient(dexscreener.Config{
			BaseURL:   cfg.DexScreener.BaseURL,
			RateLimit: cfg.DexScreener.RateLimit,
			Timeout:   time.Duration(cfg.DexScreener.Timeout) * time.Second,
		}, tl)))
	}

	var holders []provider.HolderSource
	if cfg.Moralis.APIKey != "" {
		holders = append(holders, provider.NewMoralisSource(moralis.NewMoralisClient(moralis.Config{
			BaseURL:    cfg.Moralis.BaseURL,
			GatewayURL: cfg.Moralis.GatewayURL,
			APIKey:     cfg.Moralis.APIKey,
			RateLimit:  cfg.Moralis.RateLimit,
			Timeout:    time.Duration(cfg.Moralis.Timeout) * time.Second,
		}, tl), tl))
	}
	if client := repo.GetSolanaClient(); client != nil {
		holders = append(holders, provider.NewRPCSource(client))
	}

	return provider.NewComposite(tl, markets, be, holders, cfg.Analytics.TopHolderLimit)
}

// NewTokenDAO 未配置数据库时返回 nil
func NewTokenDAO(repo repository.Repository) dao.TokenDAO {
	if repo.GetDB() == nil {
		return nil
	}
	return dao.NewDAOManager(repo.GetDB(), repo.GetRDB()).TokenDAO
}

// NewRefresher 归一化 + 序列重建 + 快照缓存，sinks 接收每次成功的刷新
func NewRefresher(cfg config.Config, repo repository.Repository, tokens dao.TokenDAO, tl *zap.Logger, sinks ...service.Sink) *service.Refresher {
	normalizer := service.NewNormalizer(NewProvider(cfg, repo, tl), cfg.Analytics.ProviderTimeout(), tl)
	series := service.NewReconstructor(service.SeriesConfigFrom(cfg.Analytics), nil)
	snapshots := cache.NewAnalyticsCache(tl, repo.GetRDB(), cfg.Analytics.SnapshotTTL())

	var records service.RecordSource
	if tokens != nil {
		records = tokens
	}
	return service.NewRefresher(tl, normalizer, series, snapshots, records, sinks...)
}
