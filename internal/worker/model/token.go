package model

import (
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	// SolanaChainID bip44 编号，web3_tokens 表中 Solana 的 chain_id
	SolanaChainID uint64 = 501

	// NativeSolMint 原生 SOL（WSOL）mint 地址
	NativeSolMint = "So11111111111111111111111111111111111111112"
	// NativeSolLogo 原生 SOL 固定 logo，优先级高于任何数据源
	NativeSolLogo = "https://raw.githubusercontent.com/solana-labs/token-list/main/assets/mainnet/So11111111111111111111111111111111111111112/logo.png"
)

// Token web3_tokens 表中已知的代币记录，作为归一化时的已有记录来源
type Token struct {
	ID           int64            `gorm:"column:id;primaryKey;autoIncrement:true"`
	Network      string           `gorm:"column:network;not null"`
	ChainID      *int32           `gorm:"column:chain_id"`
	Address      string           `gorm:"column:address;not null"`
	Symbol       string           `gorm:"column:symbol;not null"`
	Name         *string          `gorm:"column:name"`
	Decimals     *int32           `gorm:"column:decimals"`
	Logo         *string          `gorm:"column:logo"`
	PriceUsd     *decimal.Decimal `gorm:"column:price_usd"`
	MarketCapUsd *decimal.Decimal `gorm:"column:market_cap_usd"`
	Liquidity    *decimal.Decimal `gorm:"column:liquidity"`
	Tags         pq.StringArray   `gorm:"column:tags;type:text[]"`
	SecurityInfo *datatypes.JSON  `gorm:"column:security_info"`
	HolderInfo   *datatypes.JSON  `gorm:"column:holder_info"`
	UpdatedAt    *int64           `gorm:"column:updated_at"`
}

func (*Token) TableName() string {
	return "dex_query_v1.web3_tokens"
}

// ToPartialRecord 转为归一化使用的部分记录，空字符串视为缺失
func (t *Token) ToPartialRecord() *PartialRecord {
	if t == nil {
		return nil
	}
	rec := &PartialRecord{
		Mint:   nonEmpty(&t.Address),
		Symbol: nonEmpty(&t.Symbol),
		Name:   nonEmpty(t.Name),
		Logo:   nonEmpty(t.Logo),
	}
	return rec
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}
