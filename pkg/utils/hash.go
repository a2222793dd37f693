package utils

import (
	"hash/crc32"
)

// GetHashBucket 同一 key 总是落到同一个 bucket
func GetHashBucket(key string, bucketSize uint32) uint32 {
	if bucketSize == 0 {
		return 0
	}
	return crc32.ChecksumIEEE([]byte(key)) % bucketSize
}
