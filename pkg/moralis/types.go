package moralis

// SolanaHoldersResp Solana top-holders 响应
type SolanaHoldersResp struct {
	Cursor      string              `json:"cursor"`
	Page        int                 `json:"page"`
	PageSize    int                 `json:"pageSize"`
	TotalSupply string              `json:"totalSupply"`
	Result      []SolanaTokenHolder `json:"result"`
}

// SolanaTokenHolder represents a single token holder in Solana response
type SolanaTokenHolder struct {
	Balance                         string  `json:"balance"`
	BalanceFormatted                string  `json:"balanceFormatted"`
	IsContract                      bool    `json:"isContract"`
	OwnerAddress                    string  `json:"ownerAddress"`
	USDValue                        string  `json:"usdValue"`
	PercentageRelativeToTotalSupply float64 `json:"percentageRelativeToTotalSupply"`
}

// HolderStats 持有者统计
type HolderStats struct {
	TotalHolders int64        `json:"totalHolders"`
	HolderSupply HolderSupply `json:"holderSupply"`
}

// HolderSupply represents supply distribution among top holders
type HolderSupply struct {
	Top10  SupplyInfo `json:"top10"`
	Top25  SupplyInfo `json:"top25"`
	Top50  SupplyInfo `json:"top50"`
	Top100 SupplyInfo `json:"top100"`
}

// SupplyInfo represents supply information for a specific holder tier
type SupplyInfo struct {
	Supply        string  `json:"supply"`
	SupplyPercent float64 `json:"supplyPercent"`
}
