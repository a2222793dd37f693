package provider

import (
	"context"
	"errors"
	"testing"

	"token-insight/internal/worker/model"
	"token-insight/pkg/birdeye"
	"token-insight/pkg/dexscreener"
	"token-insight/pkg/moralis"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const testMint = "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"

type fakeMarket struct {
	name string
	data *MarketData
	err  error
	hits int
}

func (f *fakeMarket) Name() string { return f.name }
func (f *fakeMarket) Market(context.Context, string) (*MarketData, error) {
	f.hits++
	return f.data, f.err
}

type fakeHolders struct {
	name string
	data *HolderData
	err  error
}

func (f *fakeHolders) Name() string { return f.name }
func (f *fakeHolders) Holders(context.Context, string, int) (*HolderData, error) {
	return f.data, f.err
}

type fakeSecurity struct {
	sa  *model.SecurityAnalysis
	err error
}

func (f *fakeSecurity) Name() string { return "fake_security" }
func (f *fakeSecurity) Security(context.Context, string) (*model.SecurityAnalysis, error) {
	return f.sa, f.err
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }
func int64Ptr(i int64) *int64     { return &i }

func TestCompositeFillsMissingFromFallback(t *testing.T) {
	primary := &fakeMarket{name: "primary", data: &MarketData{
		Details: model.FetchedDetails{Symbol: strPtr("bonk"), Price: floatPtr(0.00002)},
		Trade:   model.NewTradeData(0, 5000, 10, 0),
	}}
	secondary := &fakeMarket{name: "secondary", data: &MarketData{
		Details: model.FetchedDetails{Symbol: strPtr("OTHER"), Name: strPtr("Bonk"), Logo: strPtr("https://logo")},
		Trade:   model.NewTradeData(120000, 1, 0, 7),
	}}

	c := NewComposite(zap.NewNop(), []MarketSource{primary, secondary}, nil, nil, 10)
	res, err := c.Fetch(context.Background(), testMint, nil)
	require.NoError(t, err)

	assert.Equal(t, "bonk", *res.Details.Symbol)
	assert.Equal(t, "Bonk", *res.Details.Name)
	assert.Equal(t, "https://logo", *res.Details.Logo)
	require.NotNil(t, res.TradeData.Liquidity)
	assert.Equal(t, "120000", res.TradeData.Liquidity.String())
	assert.Equal(t, "5000", res.TradeData.Volume24h.String())
	assert.Equal(t, int64(10), *res.TradeData.Buys24h)
	assert.Equal(t, int64(7), *res.TradeData.Sells24h)
	assert.Nil(t, res.Security)
	assert.Empty(t, res.TopHolders)
}

func TestCompositeStopsWhenComplete(t *testing.T) {
	primary := &fakeMarket{name: "primary", data: &MarketData{
		Details: model.FetchedDetails{
			Symbol: strPtr("A"), Name: strPtr("A"), Logo: strPtr("l"),
			Price: floatPtr(1), PriceChange24h: floatPtr(2),
			MarketCap: model.PositiveDecimal(3), CirculationStatus: strPtr("Fully Circulating"),
		},
		Trade: model.NewTradeData(1, 1, 1, 1),
	}}
	secondary := &fakeMarket{name: "secondary", err: errors.New("should not be called")}

	c := NewComposite(zap.NewNop(), []MarketSource{primary, secondary}, nil, nil, 10)
	_, err := c.Fetch(context.Background(), testMint, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, secondary.hits)
}

func TestCompositeMarketFailure(t *testing.T) {
	c := NewComposite(zap.NewNop(),
		[]MarketSource{&fakeMarket{name: "a", err: errors.New("boom")}},
		&fakeSecurity{sa: model.NewSecurityAnalysis(10, "x")},
		nil, 10)

	_, err := c.Fetch(context.Background(), testMint, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoMarketData)
}

func TestCompositeAuxiliaryFailuresAreTolerated(t *testing.T) {
	market := &fakeMarket{name: "m", data: &MarketData{TotalHolders: int64Ptr(50)}}
	holders := []HolderSource{
		&fakeHolders{name: "h1", err: errors.New("rate limited")},
		&fakeHolders{name: "h2", data: &HolderData{Holders: []model.TopHolder{
			{Address: "a", Percentage: 1},
			{Address: "b", Percentage: 9},
			{Address: "c", Percentage: 5},
			{Address: "b", Percentage: 9},
		}}},
	}

	c := NewComposite(zap.NewNop(), []MarketSource{market}, &fakeSecurity{err: errors.New("down")}, holders, 2)
	res, err := c.Fetch(context.Background(), testMint, nil)
	require.NoError(t, err)

	assert.Nil(t, res.Security)
	require.Len(t, res.TopHolders, 2)
	assert.Equal(t, "b", res.TopHolders[0].Address)
	assert.Equal(t, "c", res.TopHolders[1].Address)
	assert.Equal(t, int64(50), *res.TotalHolders)
}

func TestCompositeHolderTotalPreferredFromHolderSource(t *testing.T) {
	market := &fakeMarket{name: "m", data: &MarketData{TotalHolders: int64Ptr(50)}}
	holders := []HolderSource{&fakeHolders{name: "h", data: &HolderData{
		Holders: []model.TopHolder{{Address: "a", Percentage: 1}},
		Total:   int64Ptr(777),
	}}}

	c := NewComposite(zap.NewNop(), []MarketSource{market}, nil, holders, 10)
	res, err := c.Fetch(context.Background(), testMint, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(777), *res.TotalHolders)
}

type fakeBirdeye struct {
	overview *birdeye.TokenOverview
	trade    *birdeye.TradeData
	security *birdeye.TokenSecurity
	err      error
}

func (f *fakeBirdeye) GetTokenOverview(context.Context, string) (*birdeye.TokenOverview, error) {
	if f.overview == nil {
		return nil, birdeye.ErrNoData
	}
	return f.overview, nil
}

func (f *fakeBirdeye) GetTradeData(context.Context, string) (*birdeye.TradeData, error) {
	if f.trade == nil {
		return nil, f.err
	}
	return f.trade, nil
}

func (f *fakeBirdeye) GetTokenSecurity(context.Context, string) (*birdeye.TokenSecurity, error) {
	if f.security == nil {
		return nil, birdeye.ErrNoData
	}
	return f.security, nil
}

func TestBirdeyeMarket(t *testing.T) {
	src := NewBirdeyeSource(&fakeBirdeye{
		overview: &birdeye.TokenOverview{
			Symbol: "Bonk", Name: "Bonk", LogoURI: "https://bonk/logo.png",
			Price: floatPtr(0.00002), PriceChange24hPercent: floatPtr(-3.5),
			MarketCap: 1500000, Liquidity: 250000, V24hUSD: 100, Buy24h: 1, Sell24h: 2,
			Holder: 10, Supply: 1000, CirculatingSupply: 500,
		},
		trade: &birdeye.TradeData{Volume24hUSD: 9000, Buy24h: 300, Sell24h: 0, Holder: 20},
	}, zap.NewNop())

	md, err := src.Market(context.Background(), testMint)
	require.NoError(t, err)
	assert.Equal(t, "Bonk", *md.Details.Symbol)
	assert.Equal(t, "50.0% Circulating", *md.Details.CirculationStatus)
	assert.Equal(t, "9000", md.Trade.Volume24h.String())
	assert.Equal(t, int64(300), *md.Trade.Buys24h)
	// trade-data 为 0 时回退 overview
	assert.Equal(t, int64(2), *md.Trade.Sells24h)
	assert.Equal(t, "250000", md.Trade.Liquidity.String())
	assert.Equal(t, int64(20), *md.TotalHolders)
}

func TestBirdeyeMarketWithoutTradeData(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	src := NewBirdeyeSource(&fakeBirdeye{
		overview: &birdeye.TokenOverview{Symbol: "X", Liquidity: 0, V24hUSD: 0},
		err:      errors.New("timeout"),
	}, zap.New(core))

	md, err := src.Market(context.Background(), testMint)
	require.NoError(t, err)
	assert.Nil(t, md.Trade.Liquidity)
	assert.Nil(t, md.Trade.Volume24h)
	assert.Nil(t, md.Details.Price)
	assert.Nil(t, md.Details.CirculationStatus)
	assert.Nil(t, md.TotalHolders)

	// 降级时记录 trade-data 失败原因
	entries := logs.FilterMessage("birdeye trade data unavailable").All()
	require.Len(t, entries, 1)
	assert.Equal(t, testMint, entries[0].ContextMap()["mint"])
	assert.Equal(t, "timeout", entries[0].ContextMap()["error"])
}

func TestCirculationStatus(t *testing.T) {
	s, ok := circulationStatus(999.5, 1000)
	require.True(t, ok)
	assert.Equal(t, "Fully Circulating", s)

	s, ok = circulationStatus(123, 1000)
	require.True(t, ok)
	assert.Equal(t, "12.3% Circulating", s)

	_, ok = circulationStatus(0, 1000)
	assert.False(t, ok)
}

type fakeDex struct {
	pairs []dexscreener.Pair
	err   error
}

func (f *fakeDex) GetTokenPairs(context.Context, string) ([]dexscreener.Pair, error) {
	return f.pairs, f.err
}

func TestDexScreenerMarket(t *testing.T) {
	pair := func(liq, vol float64, buys, sells int64, price string) dexscreener.Pair {
		p := dexscreener.Pair{
			BaseToken: dexscreener.Token{Address: testMint, Symbol: "BONK", Name: "Bonk"},
			PriceUsd:  price,
			Liquidity: &dexscreener.Liquidity{Usd: liq},
			MarketCap: 42,
		}
		p.Volume.H24 = vol
		p.PriceChange.H24 = 1.5
		p.Txns.H24 = dexscreener.TxnSummary{Buys: buys, Sells: sells}
		return p
	}
	src := NewDexScreenerSource(&fakeDex{pairs: []dexscreener.Pair{
		pair(100, 10, 1, 2, "0.5"),
		pair(300, 20, 3, 4, "0.7"),
	}})

	md, err := src.Market(context.Background(), testMint)
	require.NoError(t, err)
	assert.Equal(t, "400", md.Trade.Liquidity.String())
	assert.Equal(t, "30", md.Trade.Volume24h.String())
	assert.Equal(t, int64(4), *md.Trade.Buys24h)
	assert.Equal(t, int64(6), *md.Trade.Sells24h)
	assert.InDelta(t, 0.7, *md.Details.Price, 1e-12)
	assert.InDelta(t, 1.5, *md.Details.PriceChange24h, 1e-12)
	assert.Nil(t, md.Details.Logo)
}

type fakeMoralis struct {
	holders []moralis.SolanaTokenHolder
	stats   *moralis.HolderStats
}

func (f *fakeMoralis) GetSolanaTopHolders(context.Context, string, int) ([]moralis.SolanaTokenHolder, error) {
	return f.holders, nil
}

func (f *fakeMoralis) GetSolanaHolderStats(context.Context, string) (*moralis.HolderStats, error) {
	if f.stats == nil {
		return nil, errors.New("not found")
	}
	return f.stats, nil
}

func TestMoralisHolders(t *testing.T) {
	src := NewMoralisSource(&fakeMoralis{
		holders: []moralis.SolanaTokenHolder{{OwnerAddress: "w1", PercentageRelativeToTotalSupply: 12.5}},
		stats:   &moralis.HolderStats{TotalHolders: 900},
	}, zap.NewNop())

	hd, err := src.Holders(context.Background(), testMint, 10)
	require.NoError(t, err)
	require.Len(t, hd.Holders, 1)
	assert.Equal(t, "w1", hd.Holders[0].Address)
	assert.Equal(t, int64(900), *hd.Total)

	src = NewMoralisSource(&fakeMoralis{}, zap.NewNop())
	hd, err = src.Holders(context.Background(), testMint, 10)
	require.NoError(t, err)
	assert.Empty(t, hd.Holders)
	assert.Nil(t, hd.Total)
}
