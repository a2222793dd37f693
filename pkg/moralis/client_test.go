package moralis

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testMint = "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"

func newTestClient(t *testing.T, handler http.HandlerFunc) *MoralisClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewMoralisClient(Config{
		BaseURL:    srv.URL,
		GatewayURL: srv.URL,
		APIKey:     "test-key",
		Timeout:    2 * time.Second,
	}, zap.NewNop())
}

func TestGetSolanaTopHolders(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/token/mainnet/"+testMint+"/top-holders", r.URL.Path)
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		assert.Equal(t, "test-key", r.Header.Get("X-API-Key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":[
			{"ownerAddress":"holderA","percentageRelativeToTotalSupply":12.5},
			{"ownerAddress":"holderB","percentageRelativeToTotalSupply":3.25}
		]}`))
	})

	holders, err := c.GetSolanaTopHolders(context.Background(), testMint, 10)
	require.NoError(t, err)
	require.Len(t, holders, 2)
	assert.Equal(t, "holderA", holders[0].OwnerAddress)
	assert.InDelta(t, 12.5, holders[0].PercentageRelativeToTotalSupply, 1e-9)
}

func TestGetSolanaHolderStats(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/token/mainnet/holders/"+testMint, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"totalHolders":98765,"holderSupply":{"top10":{"supply":"1","supplyPercent":41.2}}}`))
	})

	stats, err := c.GetSolanaHolderStats(context.Background(), testMint)
	require.NoError(t, err)
	assert.Equal(t, int64(98765), stats.TotalHolders)
	assert.InDelta(t, 41.2, stats.HolderSupply.Top10.SupplyPercent, 1e-9)
}

func TestGetSolanaHolderStatsNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.GetSolanaHolderStats(context.Background(), testMint)
	require.Error(t, err)
}
