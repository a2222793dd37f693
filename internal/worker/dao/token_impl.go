package dao

import (
	"context"
	"errors"
	"time"

	"token-insight/internal/worker/model"
	"token-insight/pkg/utils"

	"github.com/bytedance/sonic"
	"github.com/lib/pq"
	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	recordRedisTTL    = 30 * time.Minute
	recordNotFoundTTL = 1 * time.Minute
	nullPlaceholder   = "null"
)

// tokenDAO 本地缓存 -> Redis -> PostgreSQL
type tokenDAO struct {
	db         *gorm.DB
	rds        *redis.Client
	localCache *cache.Cache
}

func NewTokenDAO(db *gorm.DB, rds *redis.Client) TokenDAO {
	return &tokenDAO{
		db:         db,
		rds:        rds,
		localCache: cache.New(10*time.Minute, time.Minute),
	}
}

func (t *tokenDAO) GetPartialRecord(ctx context.Context, mint string) (*model.PartialRecord, error) {
	cacheKey := utils.TokenRecordKey(model.SolanaChainID, mint)

	// 先查本地缓存
	if cached, found := t.localCache.Get(cacheKey); found {
		if rec, ok := cached.(*model.PartialRecord); ok {
			return rec, nil
		}
	}

	// 再查 Redis
	if t.rds != nil {
		cached, err := t.rds.Get(ctx, cacheKey).Result()
		if err == nil {
			if cached == nullPlaceholder {
				t.localCache.Set(cacheKey, (*model.PartialRecord)(nil), recordNotFoundTTL)
				return nil, nil
			}
			var rec model.PartialRecord
			if sonic.UnmarshalString(cached, &rec) == nil {
				t.localCache.Set(cacheKey, &rec, cache.DefaultExpiration)
				return &rec, nil
			}
		}
	}

	// 查数据库
	token, err := t.GetByAddress(ctx, model.SolanaChainID, mint)
	if err != nil {
		return nil, err
	}
	if token == nil {
		// 缓存空结果，避免缓存穿透
		t.localCache.Set(cacheKey, (*model.PartialRecord)(nil), recordNotFoundTTL)
		if t.rds != nil {
			t.rds.Set(ctx, cacheKey, nullPlaceholder, recordNotFoundTTL)
		}
		return nil, nil
	}

	rec := token.ToPartialRecord()
	t.updateRecordCache(ctx, cacheKey, rec)
	return rec, nil
}

func (t *tokenDAO) updateRecordCache(ctx context.Context, cacheKey string, rec *model.PartialRecord) {
	t.localCache.Set(cacheKey, rec, cache.DefaultExpiration)
	if t.rds == nil {
		return
	}
	if data, err := sonic.MarshalString(rec); err == nil {
		t.rds.Set(ctx, cacheKey, data, recordRedisTTL)
	}
}

func (t *tokenDAO) InvalidateRecord(ctx context.Context, mint string) {
	cacheKey := utils.TokenRecordKey(model.SolanaChainID, mint)
	t.localCache.Delete(cacheKey)
	if t.rds != nil {
		t.rds.Del(ctx, cacheKey)
	}
}

func (t *tokenDAO) GetByAddress(ctx context.Context, chainID uint64, tokenAddress string) (*model.Token, error) {
	var token model.Token
	err := t.db.WithContext(ctx).
		Where("chain_id = ? AND address = ?", chainID, tokenAddress).
		First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &token, nil
}

func (t *tokenDAO) ListByTag(ctx context.Context, chainID uint64, tag string, limit int) ([]string, error) {
	var addresses []string
	err := t.db.WithContext(ctx).
		Model(&model.Token{}).
		Where("chain_id = ? AND tags @> ?", chainID, pq.StringArray{tag}).
		Order("market_cap_usd DESC NULLS LAST").
		Limit(limit).
		Pluck("address", &addresses).Error
	if err != nil {
		return nil, err
	}
	return addresses, nil
}
