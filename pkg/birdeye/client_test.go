package birdeye

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

func newTestClient(t *testing.T, handler http.HandlerFunc) *BirdeyeClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewBirdeyeClient(Config{
		BaseURL: srv.URL + "/",
		APIKey:  "be-key",
		Timeout: 2 * time.Second,
	}, zap.NewNop())
}

func TestGetTokenOverview(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/defi/token_overview", r.URL.Path)
		assert.Equal(t, testMint, r.URL.Query().Get("address"))
		assert.Equal(t, "be-key", r.Header.Get("X-API-KEY"))
		assert.Equal(t, "solana", r.Header.Get("x-chain"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{
			"address":"` + testMint + `","symbol":"Bonk","name":"Bonk",
			"price":0.0000213,"priceChange24hPercent":-4.5,
			"marketCap":1500000000,"liquidity":0,"v24hUSD":2500000,
			"buy24h":1200,"sell24h":900,"holder":800000,
			"supply":100,"circulatingSupply":90
		}}`))
	})

	ov, err := c.GetTokenOverview(context.Background(), testMint)
	require.NoError(t, err)
	assert.Equal(t, "Bonk", ov.Symbol)
	require.NotNil(t, ov.Price)
	assert.InDelta(t, 0.0000213, *ov.Price, 1e-12)
	assert.InDelta(t, -4.5, *ov.PriceChange24hPercent, 1e-9)
	assert.Equal(t, float64(0), ov.Liquidity)
	assert.Equal(t, int64(800000), ov.Holder)
}

func TestNoDataResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":false,"message":"Not found","data":null}`))
	})

	_, err := c.GetTradeData(context.Background(), testMint)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestHTTPErrorStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.GetTokenSecurity(context.Background(), testMint)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestGetTokenSecurity(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/defi/token_security", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{
			"freezeable":true,"mutableMetadata":false,"top10HolderPercent":0.42,"isToken2022":false
		}}`))
	})

	sec, err := c.GetTokenSecurity(context.Background(), testMint)
	require.NoError(t, err)
	require.NotNil(t, sec.Freezeable)
	assert.True(t, *sec.Freezeable)
	assert.False(t, *sec.MutableMetadata)
	assert.InDelta(t, 0.42, *sec.Top10HolderPercent, 1e-9)
	assert.Nil(t, sec.CreatorPercentage)
}
