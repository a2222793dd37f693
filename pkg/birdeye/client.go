package birdeye

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"token-insight/pkg/httpclient"

	"go.uber.org/zap"
)

// ErrNoData 响应 success=false 或 data 为空
var ErrNoData = errors.New("birdeye: no data")

type Config struct {
	BaseURL   string
	APIKey    string
	RateLimit int // 每分钟
	Timeout   time.Duration
}

type BirdeyeClient struct {
	baseURL    string
	httpClient *httpclient.HTTPClient
	logger     *zap.Logger
}

func NewBirdeyeClient(cfg Config, logger *zap.Logger) *BirdeyeClient {
	httpClient := httpclient.NewHTTPClient(httpclient.HTTPClientConfig{
		Timeout:    cfg.Timeout,
		RateLimit:  cfg.RateLimit,
		MaxRetries: 1,
		Headers: map[string]string{
			"X-API-KEY": cfg.APIKey,
			"x-chain":   "solana",
			"accept":    "application/json",
		},
	}, logger)

	return &BirdeyeClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

// GetTokenOverview 代币详情 + 24h 聚合
func (b *BirdeyeClient) GetTokenOverview(ctx context.Context, mint string) (*TokenOverview, error) {
	var resp Response[TokenOverview]
	if err := b.get(ctx, "/defi/token_overview", mint, &resp); err != nil {
		return nil, fmt.Errorf("fetch token overview failed, mint: %s, error: %w", mint, err)
	}
	if !resp.Success || resp.Data == nil {
		return nil, fmt.Errorf("token overview %s: %w", mint, ErrNoData)
	}
	return resp.Data, nil
}

// GetTradeData 24h 交易数据
func (b *BirdeyeClient) GetTradeData(ctx context.Context, mint string) (*TradeData, error) {
	var resp Response[TradeData]
	if err := b.get(ctx, "/defi/v3/token/trade-data/single", mint, &resp); err != nil {
		return nil, fmt.Errorf("fetch trade data failed, mint: %s, error: %w", mint, err)
	}
	if !resp.Success || resp.Data == nil {
		return nil, fmt.Errorf("trade data %s: %w", mint, ErrNoData)
	}
	return resp.Data, nil
}

// GetTokenSecurity 合约安全信息
func (b *BirdeyeClient) GetTokenSecurity(ctx context.Context, mint string) (*TokenSecurity, error) {
	var resp Response[TokenSecurity]
	if err := b.get(ctx, "/defi/token_security", mint, &resp); err != nil {
		return nil, fmt.Errorf("fetch token security failed, mint: %s, error: %w", mint, err)
	}
	if !resp.Success || resp.Data == nil {
		return nil, fmt.Errorf("token security %s: %w", mint, ErrNoData)
	}
	return resp.Data, nil
}

func (b *BirdeyeClient) get(ctx context.Context, path, mint string, out interface{}) error {
	return b.httpClient.Get(ctx, b.baseURL+path, map[string]string{"address": mint}, nil, out)
}

func (b *BirdeyeClient) Close() error {
	return b.httpClient.Close()
}
