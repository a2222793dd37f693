package job

import (
	"context"
	"errors"
	"sync/atomic"

	"token-insight/internal/worker/model"
	"token-insight/internal/worker/service"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// Refresher 作业依赖的刷新能力
type Refresher interface {
	Refresh(ctx context.Context, mint, symbolHint string, tf model.TimeFrame) (model.Snapshot, error)
}

// WatchlistRefresh 周期刷新 watchlist 中的 token，让缓存和下游保持最新
type WatchlistRefresh struct {
	watchlist *Watchlist
	refresher Refresher
	workers   int
	tl        *zap.Logger
}

func NewWatchlistRefresh(watchlist *Watchlist, refresher Refresher, workers int, logger *zap.Logger) *WatchlistRefresh {
	if workers <= 0 {
		workers = 4
	}
	return &WatchlistRefresh{
		watchlist: watchlist,
		refresher: refresher,
		workers:   workers,
		tl:        logger,
	}
}

// Run 单个 token 失败不影响其他；全部失败时返回错误
func (j *WatchlistRefresh) Run(ctx context.Context) error {
	mints, err := j.watchlist.Mints(ctx)
	if err != nil {
		return err
	}
	if len(mints) == 0 {
		j.tl.Debug("watchlist is empty")
		return nil
	}

	var ok, failed atomic.Int32
	worker := pool.New().WithMaxGoroutines(j.workers)
	for _, mint := range mints {
		worker.Go(func() {
			if _, err := j.refresher.Refresh(ctx, mint, "", model.TimeFrame24H); err != nil {
				failed.Add(1)
				if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
					j.tl.Warn("watchlist refresh failed", zap.String("mint", mint), zap.Error(err))
				}
				return
			}
			ok.Add(1)
		})
	}
	worker.Wait()

	j.tl.Info("watchlist refreshed",
		zap.Int("total", len(mints)),
		zap.Int32("ok", ok.Load()),
		zap.Int32("failed", failed.Load()))

	if ok.Load() == 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		return service.ErrDataUnavailable
	}
	return nil
}
