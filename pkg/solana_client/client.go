package solana_client

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"
)

// Init solana client
func Init(rawUrl string) *rpc.Client {
	return rpc.New(rawUrl)
}

// ParseMint 校验 mint 地址（base58 公钥）
func ParseMint(mint string) (solana.PublicKey, error) {
	pk, err := solana.PublicKeyFromBase58(mint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid mint address %q: %w", mint, err)
	}
	return pk, nil
}

// LargestAccount 最大持仓 token account 及占总供应量百分比
type LargestAccount struct {
	Address    string
	Percentage float64
}

// GetLargestAccounts 通过 getTokenLargestAccounts + getTokenSupply 计算前 limit 个账户的持仓占比
func GetLargestAccounts(ctx context.Context, client *rpc.Client, mint string, limit int) ([]LargestAccount, error) {
	pk, err := ParseMint(mint)
	if err != nil {
		return nil, err
	}

	supply, err := client.GetTokenSupply(ctx, pk, rpc.CommitmentFinalized)
	if err != nil {
		return nil, fmt.Errorf("获取代币供应量失败: %w", err)
	}
	if supply == nil || supply.Value == nil {
		return nil, fmt.Errorf("empty token supply for %s", mint)
	}
	total, err := decimal.NewFromString(supply.Value.Amount)
	if err != nil || !total.IsPositive() {
		return nil, fmt.Errorf("invalid token supply %q for %s", supply.Value.Amount, mint)
	}

	largest, err := client.GetTokenLargestAccounts(ctx, pk, rpc.CommitmentFinalized)
	if err != nil {
		return nil, fmt.Errorf("获取最大持仓账户失败: %w", err)
	}

	out := make([]LargestAccount, 0, len(largest.Value))
	for _, acc := range largest.Value {
		if acc == nil {
			continue
		}
		amount, err := decimal.NewFromString(acc.Amount)
		if err != nil {
			continue
		}
		out = append(out, LargestAccount{
			Address:    acc.Address.String(),
			Percentage: amount.Div(total).Mul(decimal.NewFromInt(100)).InexactFloat64(),
		})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
