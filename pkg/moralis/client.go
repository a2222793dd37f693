package moralis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"token-insight/pkg/httpclient"

	"go.uber.org/zap"
)

type Config struct {
	BaseURL    string
	GatewayURL string
	APIKey     string
	RateLimit  int
	Timeout    time.Duration
}

type MoralisClient struct {
	baseURL    string
	gatewayURL string
	httpClient *httpclient.HTTPClient
	logger     *zap.Logger
}

func NewMoralisClient(cfg Config, logger *zap.Logger) *MoralisClient {
	httpClient := httpclient.NewHTTPClient(httpclient.HTTPClientConfig{
		Timeout:    cfg.Timeout,
		RateLimit:  cfg.RateLimit,
		MaxRetries: 1,
		Headers:    map[string]string{"X-API-Key": cfg.APIKey},
	}, logger)

	return &MoralisClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		gatewayURL: strings.TrimRight(cfg.GatewayURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

// GetSolanaTopHolders 单页前 limit 个持有者，按持仓比例降序
func (m *MoralisClient) GetSolanaTopHolders(ctx context.Context, mint string, limit int) ([]SolanaTokenHolder, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	var holders SolanaHoldersResp
	url := fmt.Sprintf("%s/token/mainnet/%s/top-holders", m.gatewayURL, mint)
	err := m.httpClient.Get(ctx, url, map[string]string{"limit": strconv.Itoa(limit)}, nil, &holders)
	if err != nil {
		return nil, fmt.Errorf("fetch solana top holders failed, mint: %s, error: %w", mint, err)
	}
	return holders.Result, nil
}

// GetSolanaHolderStats 持有者统计（总持有人数、集中度）
func (m *MoralisClient) GetSolanaHolderStats(ctx context.Context, mint string) (*HolderStats, error) {
	var stats HolderStats
	url := fmt.Sprintf("%s/token/mainnet/holders/%s", m.gatewayURL, mint)
	if err := m.httpClient.Get(ctx, url, nil, nil, &stats); err != nil {
		return nil, fmt.Errorf("fetch solana holder stats failed, mint: %s, error: %w", mint, err)
	}
	return &stats, nil
}

func (m *MoralisClient) Close() error {
	return m.httpClient.Close()
}
