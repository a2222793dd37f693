package job

import (
	"context"

	"token-insight/internal/worker/model"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// RecordLoader 已有记录查询，查询结果会进入 DAO 缓存
type RecordLoader interface {
	GetPartialRecord(ctx context.Context, mint string) (*model.PartialRecord, error)
}

// CacheLoad 启动时预热 watchlist 的已有记录缓存，第一次刷新不必等数据库
type CacheLoad struct {
	watchlist *Watchlist
	records   RecordLoader
	tl        *zap.Logger
}

func NewCacheLoad(watchlist *Watchlist, records RecordLoader, logger *zap.Logger) *CacheLoad {
	return &CacheLoad{
		watchlist: watchlist,
		records:   records,
		tl:        logger,
	}
}

func (j *CacheLoad) Run(ctx context.Context) error {
	mints, err := j.watchlist.Mints(ctx)
	if err != nil {
		return err
	}

	worker := pool.New().WithMaxGoroutines(8)
	for _, mint := range mints {
		worker.Go(func() {
			if _, err := j.records.GetPartialRecord(ctx, mint); err != nil {
				j.tl.Debug("preload record failed", zap.String("mint", mint), zap.Error(err))
			}
		})
	}
	worker.Wait()

	j.tl.Info("token records preloaded", zap.Int("count", len(mints)))
	return nil
}
