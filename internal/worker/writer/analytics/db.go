package analytics

import (
	"context"
	"time"

	"token-insight/internal/worker/model"
	"token-insight/internal/worker/writer"

	"github.com/bytedance/sonic"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DECIMAL(50,20) 上限
var maxDecimal50_20 = decimal.RequireFromString("999999999999999999999999999999.99999999999999999999")

// limitDecimal 防止 PostgreSQL DECIMAL(50,20) 溢出
func limitDecimal(value decimal.Decimal) decimal.Decimal {
	if value.GreaterThan(maxDecimal50_20) {
		return maxDecimal50_20
	}
	if value.LessThan(maxDecimal50_20.Neg()) {
		return maxDecimal50_20.Neg()
	}
	return value.Round(20)
}

// DbTokenRecordWriter 把最新快照回写到 web3_tokens 已有行，不新增行、不保留历史。
// 缺失字段不覆盖库中已有值。
type DbTokenRecordWriter struct {
	db *gorm.DB
	tl *zap.Logger
}

func NewDbTokenRecordWriter(db *gorm.DB, tl *zap.Logger) writer.BatchWriter[model.Snapshot] {
	return &DbTokenRecordWriter{db: db, tl: tl}
}

func (w *DbTokenRecordWriter) BWrite(ctx context.Context, snaps []model.Snapshot) error {
	if len(snaps) == 0 {
		return nil
	}

	newCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	var lastErr error
	for _, s := range snaps {
		updates := RecordUpdates(s)
		err := w.db.WithContext(newCtx).
			Model(&model.Token{}).
			Where("chain_id = ? AND address = ?", model.SolanaChainID, s.Analytics.Details.Mint).
			Updates(updates).Error
		if err != nil {
			w.tl.Warn("❌ token record update failed", zap.String("mint", s.Analytics.Details.Mint), zap.Error(err))
			lastErr = err
		}
	}
	return lastErr
}

func (w *DbTokenRecordWriter) Close() error {
	return nil
}

type holderInfo struct {
	TotalHolders *int64            `json:"total_holders,omitempty"`
	TopHolders   []model.TopHolder `json:"top_holders"`
}

// RecordUpdates web3_tokens 需要更新的列
func RecordUpdates(s model.Snapshot) map[string]interface{} {
	a := s.Analytics
	updates := map[string]interface{}{
		"updated_at": s.RefreshedAt.UnixMilli(),
	}
	if a.Details.HasLogo() {
		updates["logo"] = a.Details.Logo
	}
	if a.Details.Price > 0 {
		updates["price_usd"] = limitDecimal(decimal.NewFromFloat(a.Details.Price))
	}
	if a.Details.MarketCap != nil {
		updates["market_cap_usd"] = limitDecimal(*a.Details.MarketCap)
	}
	if a.TradeData.Liquidity != nil {
		updates["liquidity"] = limitDecimal(*a.TradeData.Liquidity)
	}
	if a.Security != nil {
		if data, err := sonic.Marshal(a.Security); err == nil {
			updates["security_info"] = datatypes.JSON(data)
		}
	}
	if len(a.TopHolders) > 0 || a.TotalHolders != nil {
		if data, err := sonic.Marshal(holderInfo{TotalHolders: a.TotalHolders, TopHolders: a.TopHolders}); err == nil {
			updates["holder_info"] = datatypes.JSON(data)
		}
	}
	return updates
}
