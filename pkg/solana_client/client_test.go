package solana_client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bonkMint = "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"

func rpcServer(t *testing.T, results map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		result, ok := results[req.Method]
		if !ok {
			t.Errorf("unexpected method %s", req.Method)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":` + string(req.ID) + `,"result":` + result + `}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestParseMint(t *testing.T) {
	_, err := ParseMint(bonkMint)
	require.NoError(t, err)

	_, err = ParseMint("not-a-mint")
	require.Error(t, err)

	_, err = ParseMint("")
	require.Error(t, err)
}

func TestGetLargestAccounts(t *testing.T) {
	srv := rpcServer(t, map[string]string{
		"getTokenSupply": `{"context":{"slot":1},"value":{"amount":"1000000","decimals":2,"uiAmountString":"10000"}}`,
		"getTokenLargestAccounts": `{"context":{"slot":1},"value":[
			{"address":"` + bonkMint + `","amount":"250000","decimals":2,"uiAmountString":"2500"},
			{"address":"So11111111111111111111111111111111111111112","amount":"100000","decimals":2,"uiAmountString":"1000"},
			{"address":"11111111111111111111111111111111","amount":"50000","decimals":2,"uiAmountString":"500"}
		]}`,
	})

	accounts, err := GetLargestAccounts(context.Background(), Init(srv.URL), bonkMint, 2)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, bonkMint, accounts[0].Address)
	assert.InDelta(t, 25.0, accounts[0].Percentage, 1e-9)
	assert.InDelta(t, 10.0, accounts[1].Percentage, 1e-9)
}

func TestGetLargestAccountsZeroSupply(t *testing.T) {
	srv := rpcServer(t, map[string]string{
		"getTokenSupply": `{"context":{"slot":1},"value":{"amount":"0","decimals":0,"uiAmountString":"0"}}`,
	})

	_, err := GetLargestAccounts(context.Background(), Init(srv.URL), bonkMint, 10)
	require.Error(t, err)
}
