package utils

import "fmt"

// TokenRecordKey web3_tokens 已有记录缓存
func TokenRecordKey(chainId uint64, mint string) string {
	return fmt.Sprintf("token_insight:token_record:%d:%s", chainId, mint)
}

// AnalyticsSnapshotKey 最近一次刷新的快照
func AnalyticsSnapshotKey(mint string) string {
	return fmt.Sprintf("token_insight:analytics:%s", mint)
}
