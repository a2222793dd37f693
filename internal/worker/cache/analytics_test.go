package cache

import (
	"context"
	"testing"
	"time"

	"token-insight/internal/worker/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const bonkMint = "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"

func testSnapshot() model.Snapshot {
	return model.Snapshot{
		Analytics: model.TokenAnalytics{
			Details:   model.TokenDetails{Mint: bonkMint, Symbol: "bonk", Price: 0.00002},
			TradeData: model.NewTradeData(0, 12.5, 3, 0),
		},
		Series: []model.PricePoint{
			{Timestamp: time.UnixMilli(1700000000000).UTC(), Price: 0.000019, Label: "22:13"},
			{Timestamp: time.UnixMilli(1700003600000).UTC(), Price: 0.00002, Label: "23:13"},
		},
		TimeFrame:   model.TimeFrame24H,
		RefreshedAt: time.Now(),
	}
}

func TestAnalyticsCacheLocal(t *testing.T) {
	c := NewAnalyticsCache(zap.NewNop(), nil, time.Minute)
	ctx := context.Background()

	_, ok := c.Get(ctx, bonkMint)
	assert.False(t, ok)

	c.Set(ctx, testSnapshot())
	snap, ok := c.Get(ctx, bonkMint)
	require.True(t, ok)
	assert.Equal(t, "bonk", snap.Analytics.Details.Symbol)
	assert.Len(t, snap.Series, 2)
}

func TestSnapshotEncoding(t *testing.T) {
	in := testSnapshot()
	raw, err := encodeSnapshot(in)
	require.NoError(t, err)

	out, err := decodeSnapshot(raw)
	require.NoError(t, err)
	assert.Equal(t, in.Analytics.Details, out.Analytics.Details)
	assert.Nil(t, out.Analytics.TradeData.Liquidity)
	assert.Equal(t, "12.5", out.Analytics.TradeData.Volume24h.String())
	assert.True(t, in.Series[1].Timestamp.Equal(out.Series[1].Timestamp))
}
