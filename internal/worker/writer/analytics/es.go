package analytics

import (
	"context"

	"token-insight/internal/worker/model"
	"token-insight/internal/worker/writer"
	"token-insight/pkg/elasticsearch"

	"go.uber.org/zap"
)

// IndexMapping 最新快照索引的 mapping，NewClient 启动时创建
var IndexMapping = map[string]interface{}{
	"mappings": map[string]interface{}{
		"properties": map[string]interface{}{
			"mint":               map[string]interface{}{"type": "keyword"},
			"symbol":             map[string]interface{}{"type": "keyword"},
			"name":               map[string]interface{}{"type": "text"},
			"logo":               map[string]interface{}{"type": "keyword", "index": false},
			"price":              map[string]interface{}{"type": "double"},
			"price_change_24h":   map[string]interface{}{"type": "double"},
			"market_cap":         map[string]interface{}{"type": "double"},
			"circulation_status": map[string]interface{}{"type": "keyword"},
			"liquidity":          map[string]interface{}{"type": "double"},
			"volume_24h":         map[string]interface{}{"type": "double"},
			"buys_24h":           map[string]interface{}{"type": "long"},
			"sells_24h":          map[string]interface{}{"type": "long"},
			"total_holders":      map[string]interface{}{"type": "long"},
			"top10_percentage":   map[string]interface{}{"type": "double"},
			"risk_score":         map[string]interface{}{"type": "double"},
			"risk_level":         map[string]interface{}{"type": "keyword"},
			"refreshed_at":       map[string]interface{}{"type": "date"},
		},
	},
}

// ESAnalyticsWriter 每个 mint 一篇文档，只保留最新快照，不存历史
type ESAnalyticsWriter struct {
	esClient *elasticsearch.Client
	logger   *zap.Logger
	index    string
}

func NewESAnalyticsWriter(esClient *elasticsearch.Client, logger *zap.Logger, index string) writer.BatchWriter[model.Snapshot] {
	return &ESAnalyticsWriter{esClient: esClient, logger: logger, index: index}
}

func (w *ESAnalyticsWriter) BWrite(ctx context.Context, snaps []model.Snapshot) error {
	if len(snaps) == 0 {
		return nil
	}

	// 同一批次内同一 mint 只保留最新的
	latest := make(map[string]model.Snapshot, len(snaps))
	for _, s := range snaps {
		mint := s.Analytics.Details.Mint
		if prev, ok := latest[mint]; !ok || s.RefreshedAt.After(prev.RefreshedAt) {
			latest[mint] = s
		}
	}

	operations := make([]elasticsearch.BulkOperation, 0, len(latest))
	for mint, s := range latest {
		operations = append(operations, elasticsearch.BulkOperation{
			Action:   "index",
			Index:    w.index,
			ID:       mint,
			Document: ToESDoc(s),
		})
	}
	return w.esClient.BulkWrite(ctx, operations)
}

func (w *ESAnalyticsWriter) Close() error {
	return nil
}

// ToESDoc 缺失字段不写入文档，而不是写 0
func ToESDoc(s model.Snapshot) map[string]interface{} {
	a := s.Analytics
	d := a.Details
	doc := map[string]interface{}{
		"mint":               d.Mint,
		"symbol":             d.DisplaySymbol(),
		"name":               d.Name,
		"price":              d.Price,
		"price_change_24h":   d.PriceChange24h,
		"circulation_status": d.CirculationStatus,
		"refreshed_at":       s.RefreshedAt.UnixMilli(),
	}
	if d.HasLogo() {
		doc["logo"] = d.Logo
	}
	if d.MarketCap != nil {
		doc["market_cap"] = d.MarketCap.InexactFloat64()
	}
	if a.TradeData.Liquidity != nil {
		doc["liquidity"] = a.TradeData.Liquidity.InexactFloat64()
	}
	if a.TradeData.Volume24h != nil {
		doc["volume_24h"] = a.TradeData.Volume24h.InexactFloat64()
	}
	if a.TradeData.Buys24h != nil {
		doc["buys_24h"] = *a.TradeData.Buys24h
	}
	if a.TradeData.Sells24h != nil {
		doc["sells_24h"] = *a.TradeData.Sells24h
	}
	if a.TotalHolders != nil {
		doc["total_holders"] = *a.TotalHolders
	}
	if len(a.TopHolders) > 0 {
		var top10 float64
		for i, h := range a.TopHolders {
			if i >= 10 {
				break
			}
			top10 += h.Percentage
		}
		doc["top10_percentage"] = top10
	}
	if a.Security != nil {
		doc["risk_score"] = a.Security.RiskScore
		doc["risk_level"] = string(a.Security.RiskLevel)
	}
	return doc
}
