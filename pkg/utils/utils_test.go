package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressRoundTrip(t *testing.T) {
	data := []byte(`{"mint":"So11111111111111111111111111111111111111112","series":[1,2,3]}`)
	z, err := CompressData(data)
	require.NoError(t, err)

	out, err := DecompressData(z)
	require.NoError(t, err)
	assert.Equal(t, data, out)

	_, err = DecompressData([]byte("not gzip"))
	assert.Error(t, err)
}

func TestSplitListAndRandomChoice(t *testing.T) {
	list := SplitList(" http://a , ,http://b,")
	assert.Equal(t, []string{"http://a", "http://b"}, list)
	assert.Contains(t, list, RandomChoice(list))
	assert.Equal(t, "", RandomChoice(nil))
}

func TestGetHashBucket(t *testing.T) {
	b := GetHashBucket("DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263", 4)
	assert.Less(t, b, uint32(4))
	assert.Equal(t, b, GetHashBucket("DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263", 4))
}
