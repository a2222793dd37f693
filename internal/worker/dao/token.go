package dao

import (
	"context"

	"token-insight/internal/worker/model"
)

// TokenDAO web3_tokens 已知代币记录
type TokenDAO interface {
	// GetPartialRecord 归一化使用的已有记录，查不到返回 nil, nil
	GetPartialRecord(ctx context.Context, mint string) (*model.PartialRecord, error)

	// GetByAddress 完整记录，查不到返回 nil, nil
	GetByAddress(ctx context.Context, chainID uint64, tokenAddress string) (*model.Token, error)

	// ListByTag 带指定 tag 的 token 地址，watchlist 为空时作为刷新来源
	ListByTag(ctx context.Context, chainID uint64, tag string, limit int) ([]string, error)

	// InvalidateRecord 清除已有记录缓存
	InvalidateRecord(ctx context.Context, mint string)
}
