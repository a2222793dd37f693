// Package dexscreener fetches pair-level liquidity, volume and price data from DexScreener.
package dexscreener

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"token-insight/pkg/httpclient"

	"go.uber.org/zap"
)

var ErrNoPairs = errors.New("dexscreener: no pairs found")

type Config struct {
	BaseURL   string
	RateLimit int
	Timeout   time.Duration
}

type DexScreenerClient struct {
	baseURL    string
	httpClient *httpclient.HTTPClient
}

func NewDexScreenerClient(cfg Config, logger *zap.Logger) *DexScreenerClient {
	return &DexScreenerClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpclient.NewHTTPClient(httpclient.HTTPClientConfig{
			Timeout:    cfg.Timeout,
			RateLimit:  cfg.RateLimit,
			MaxRetries: 1,
		}, logger),
	}
}

// GetTokenPairs 返回以 mint 为 base token 的交易对
func (d *DexScreenerClient) GetTokenPairs(ctx context.Context, mint string) ([]Pair, error) {
	var resp TokenPairsResp
	url := fmt.Sprintf("%s/latest/dex/tokens/%s", d.baseURL, mint)
	if err := d.httpClient.Get(ctx, url, nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch token pairs failed, mint: %s, error: %w", mint, err)
	}

	pairs := make([]Pair, 0, len(resp.Pairs))
	for _, p := range resp.Pairs {
		if p.BaseToken.Address == mint {
			pairs = append(pairs, p)
		}
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("%s: %w", mint, ErrNoPairs)
	}
	return pairs, nil
}

// DeepestPair 流动性最大的交易对
func DeepestPair(pairs []Pair) *Pair {
	var best *Pair
	bestLiq := -1.0
	for i := range pairs {
		liq := 0.0
		if pairs[i].Liquidity != nil {
			liq = pairs[i].Liquidity.Usd
		}
		if liq > bestLiq {
			best = &pairs[i]
			bestLiq = liq
		}
	}
	return best
}

func (d *DexScreenerClient) Close() error {
	return d.httpClient.Close()
}
