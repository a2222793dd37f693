package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"token-insight/internal/worker/model"
	"token-insight/internal/worker/monitor"
	"token-insight/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// SnapshotCache 最近一次成功刷新的快照
type SnapshotCache interface {
	Get(ctx context.Context, mint string) (*model.Snapshot, bool)
	Set(ctx context.Context, snap model.Snapshot)
}

// RecordSource 已知的部分记录（本地 token 表），查不到返回 nil
type RecordSource interface {
	GetPartialRecord(ctx context.Context, mint string) (*model.PartialRecord, error)
}

// Sink 刷新成功后的下游（Kafka 事件、ES 索引），Submit 不阻塞
type Sink interface {
	Submit(snap model.Snapshot)
}

// Refresher 每个 mint 同一时间最多一个刷新在执行，并发请求合并到同一次刷新。
// 刷新在与调用方解耦的 ctx 上运行（仍受数据源超时约束）；结果由第一个仍存活的
// 调用方提交到缓存和下游，所有调用方都已取消时结果直接丢弃。
type Refresher struct {
	normalizer *Normalizer
	series     *Reconstructor
	cache      SnapshotCache
	records    RecordSource
	sinks      []Sink
	tl         *zap.Logger

	group singleflight.Group
	now   func() time.Time
}

// flight 一次合并刷新的结果，commit 只执行一次
type flight struct {
	snap   model.Snapshot
	commit sync.Once
}

// NewRefresher cache / records 可为 nil
func NewRefresher(tl *zap.Logger, normalizer *Normalizer, series *Reconstructor, cache SnapshotCache, records RecordSource, sinks ...Sink) *Refresher {
	return &Refresher{
		normalizer: normalizer,
		series:     series,
		cache:      cache,
		records:    records,
		sinks:      sinks,
		tl:         tl,
		now:        time.Now,
	}
}

// Get 缓存命中直接返回，否则刷新
func (r *Refresher) Get(ctx context.Context, mint, symbolHint string, tf model.TimeFrame) (model.Snapshot, error) {
	if r.cache != nil {
		if snap, ok := r.cache.Get(ctx, mint); ok {
			snap.TimeFrame = tf
			return *snap, nil
		}
	}
	return r.Refresh(ctx, mint, symbolHint, tf)
}

// Refresh 强制刷新。时间范围只透传到快照，不影响序列。
func (r *Refresher) Refresh(ctx context.Context, mint, symbolHint string, tf model.TimeFrame) (model.Snapshot, error) {
	start := time.Now()
	ch := r.group.DoChan(mint, func() (interface{}, error) {
		snap, err := r.build(context.WithoutCancel(ctx), mint, symbolHint, tf)
		if err != nil {
			return nil, err
		}
		return &flight{snap: snap}, nil
	})

	select {
	case <-ctx.Done():
		monitor.RefreshTotal.WithLabelValues("canceled").Inc()
		return model.Snapshot{}, ctx.Err()
	case res := <-ch:
		if res.Shared {
			monitor.RefreshCoalesced.Inc()
		}
		if res.Err != nil {
			monitor.RefreshTotal.WithLabelValues(outcome(res.Err)).Inc()
			return model.Snapshot{}, res.Err
		}
		if ctx.Err() != nil {
			monitor.RefreshTotal.WithLabelValues("canceled").Inc()
			return model.Snapshot{}, ctx.Err()
		}

		f := res.Val.(*flight)
		f.commit.Do(func() {
			// 提交一旦开始不再受调用方取消影响
			r.publish(context.WithoutCancel(ctx), f.snap)
			monitor.RefreshTotal.WithLabelValues("success").Inc()
			monitor.RefreshDuration.Observe(time.Since(start).Seconds())
		})

		snap := f.snap
		snap.TimeFrame = tf
		return snap, nil
	}
}

// build 归一化 + 序列重建，全部成功才返回快照，不产生副作用
func (r *Refresher) build(ctx context.Context, mint, symbolHint string, tf model.TimeFrame) (model.Snapshot, error) {
	existing := r.lookupRecord(ctx, mint)

	analytics, err := r.normalizer.Normalize(ctx, mint, existing, symbolHint)
	if err != nil {
		return model.Snapshot{}, err
	}

	series, err := r.series.Reconstruct(analytics.Details.Price, analytics.Details.PriceChange24h)
	if err != nil {
		logger.WithTrace(ctx, r.tl).Warn("series reconstruction rejected",
			zap.String("mint", mint),
			zap.Float64("price", analytics.Details.Price),
			zap.Float64("change_24h", analytics.Details.PriceChange24h),
			zap.Error(err))
		return model.Snapshot{}, err
	}

	return model.Snapshot{
		Analytics:   analytics,
		Series:      series,
		TimeFrame:   tf,
		RefreshedAt: r.now(),
	}, nil
}

// lookupRecord 已知记录只用于回退，查询失败不影响刷新
func (r *Refresher) lookupRecord(ctx context.Context, mint string) *model.PartialRecord {
	if r.records == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, r.normalizer.timeout)
	defer cancel()

	rec, err := r.records.GetPartialRecord(ctx, mint)
	if err != nil {
		logger.WithTrace(ctx, r.tl).Debug("existing record lookup failed", zap.String("mint", mint), zap.Error(err))
		return nil
	}
	return rec
}

func (r *Refresher) publish(ctx context.Context, snap model.Snapshot) {
	if r.cache != nil {
		r.cache.Set(ctx, snap)
	}
	for _, s := range r.sinks {
		s.Submit(snap)
	}
}

func outcome(err error) string {
	switch {
	case errors.Is(err, ErrDataUnavailable):
		return "unavailable"
	case errors.Is(err, ErrDegenerateInput):
		return "degenerate"
	case errors.Is(err, ErrInvalidMint):
		return "invalid"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}
