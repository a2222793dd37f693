package dao

import (
	"context"
	"testing"
	"time"

	"token-insight/internal/worker/model"
	"token-insight/pkg/utils"

	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bonkMint = "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"

func TestGetPartialRecordLocalCache(t *testing.T) {
	d := &tokenDAO{localCache: cache.New(time.Minute, time.Minute)}
	logo := "https://logo"
	d.updateRecordCache(context.Background(), utils.TokenRecordKey(model.SolanaChainID, bonkMint), &model.PartialRecord{Logo: &logo})

	rec, err := d.GetPartialRecord(context.Background(), bonkMint)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, logo, *rec.Logo)

	d.InvalidateRecord(context.Background(), bonkMint)
	_, found := d.localCache.Get(utils.TokenRecordKey(model.SolanaChainID, bonkMint))
	assert.False(t, found)
}

func TestGetPartialRecordCachedMiss(t *testing.T) {
	d := &tokenDAO{localCache: cache.New(time.Minute, time.Minute)}
	d.localCache.Set(utils.TokenRecordKey(model.SolanaChainID, bonkMint), (*model.PartialRecord)(nil), time.Minute)

	rec, err := d.GetPartialRecord(context.Background(), bonkMint)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestTokenToPartialRecord(t *testing.T) {
	name := ""
	logo := "https://logo"
	tok := &model.Token{Address: bonkMint, Symbol: "BONK", Name: &name, Logo: &logo}

	rec := tok.ToPartialRecord()
	assert.Equal(t, bonkMint, *rec.Mint)
	assert.Equal(t, "BONK", *rec.Symbol)
	assert.Nil(t, rec.Name)
	assert.Equal(t, logo, *rec.Logo)
}
