package cache

import (
	"context"
	"errors"
	"time"

	"token-insight/internal/worker/model"
	"token-insight/internal/worker/monitor"
	"token-insight/pkg/utils"

	"github.com/bytedance/sonic"
	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// AnalyticsCache 最近一次成功刷新的快照：本地缓存 + Redis（gzip JSON），TTL 相同
type AnalyticsCache struct {
	tl         *zap.Logger
	ttl        time.Duration
	localCache *cache.Cache
	redis      *redis.Client
}

// NewAnalyticsCache rdb 为 nil 时只用本地缓存
func NewAnalyticsCache(tl *zap.Logger, rdb *redis.Client, ttl time.Duration) *AnalyticsCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &AnalyticsCache{
		tl:         tl,
		ttl:        ttl,
		localCache: cache.New(ttl, time.Minute),
		redis:      rdb,
	}
}

func (c *AnalyticsCache) Get(ctx context.Context, mint string) (*model.Snapshot, bool) {
	key := utils.AnalyticsSnapshotKey(mint)

	if v, found := c.localCache.Get(key); found {
		if snap, ok := v.(model.Snapshot); ok {
			monitor.SnapshotCacheHits.WithLabelValues("local", "hit").Inc()
			return &snap, true
		}
	}
	monitor.SnapshotCacheHits.WithLabelValues("local", "miss").Inc()

	if c.redis == nil {
		return nil, false
	}
	raw, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.tl.Warn("redis get snapshot failed", zap.String("mint", mint), zap.Error(err))
		}
		monitor.SnapshotCacheHits.WithLabelValues("redis", "miss").Inc()
		return nil, false
	}

	snap, err := decodeSnapshot(raw)
	if err != nil {
		c.tl.Warn("decode cached snapshot failed", zap.String("mint", mint), zap.Error(err))
		monitor.SnapshotCacheHits.WithLabelValues("redis", "miss").Inc()
		return nil, false
	}
	monitor.SnapshotCacheHits.WithLabelValues("redis", "hit").Inc()

	// 本地只保留 Redis 剩余的有效期
	remaining := c.ttl - time.Since(snap.RefreshedAt)
	if remaining > 0 {
		c.localCache.Set(key, snap, remaining)
	}
	return &snap, true
}

func (c *AnalyticsCache) Set(ctx context.Context, snap model.Snapshot) {
	key := utils.AnalyticsSnapshotKey(snap.Analytics.Details.Mint)
	c.localCache.Set(key, snap, c.ttl)

	if c.redis == nil {
		return
	}
	raw, err := encodeSnapshot(snap)
	if err != nil {
		c.tl.Warn("encode snapshot failed", zap.String("mint", snap.Analytics.Details.Mint), zap.Error(err))
		return
	}
	if err := c.redis.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.tl.Warn("redis set snapshot failed", zap.String("mint", snap.Analytics.Details.Mint), zap.Error(err))
	}
}

func encodeSnapshot(snap model.Snapshot) ([]byte, error) {
	data, err := sonic.Marshal(snap)
	if err != nil {
		return nil, err
	}
	return utils.CompressData(data)
}

func decodeSnapshot(raw []byte) (model.Snapshot, error) {
	var snap model.Snapshot
	data, err := utils.DecompressData(raw)
	if err != nil {
		return snap, err
	}
	err = sonic.Unmarshal(data, &snap)
	return snap, err
}
