package provider

import (
	"context"

	"token-insight/internal/worker/model"
	"token-insight/pkg/moralis"
	"token-insight/pkg/solana_client"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
)

const (
	sourceMoralis = "moralis"
	sourceRPC     = "solana_rpc"
)

// MoralisAPI moralis.MoralisClient 的可替换接口
type MoralisAPI interface {
	GetSolanaTopHolders(ctx context.Context, mint string, limit int) ([]moralis.SolanaTokenHolder, error)
	GetSolanaHolderStats(ctx context.Context, mint string) (*moralis.HolderStats, error)
}

// MoralisSource 持有者主来源
type MoralisSource struct {
	api MoralisAPI
	tl  *zap.Logger
}

func NewMoralisSource(api MoralisAPI, tl *zap.Logger) *MoralisSource {
	return &MoralisSource{api: api, tl: tl}
}

func (s *MoralisSource) Name() string { return sourceMoralis }

// Holders top-holders 失败即失败；stats 仅用于总人数，失败忽略
func (s *MoralisSource) Holders(ctx context.Context, mint string, limit int) (*HolderData, error) {
	var (
		list    []moralis.SolanaTokenHolder
		listErr error
		stats   *moralis.HolderStats
	)

	var wg conc.WaitGroup
	wg.Go(func() { list, listErr = s.api.GetSolanaTopHolders(ctx, mint, limit) })
	wg.Go(func() {
		var err error
		if stats, err = s.api.GetSolanaHolderStats(ctx, mint); err != nil {
			s.tl.Debug("moralis holder stats unavailable", zap.String("mint", mint), zap.Error(err))
		}
	})
	wg.Wait()

	if listErr != nil {
		return nil, listErr
	}

	out := &HolderData{Holders: make([]model.TopHolder, 0, len(list))}
	for _, h := range list {
		out.Holders = append(out.Holders, model.TopHolder{
			Address:    h.OwnerAddress,
			Percentage: h.PercentageRelativeToTotalSupply,
		})
	}
	if stats != nil {
		out.Total = model.PositiveInt(stats.TotalHolders)
	}
	return out, nil
}

// RPCSource 链上兜底：getTokenLargestAccounts，地址为 token account 而非 owner
type RPCSource struct {
	client *rpc.Client
}

func NewRPCSource(client *rpc.Client) *RPCSource {
	return &RPCSource{client: client}
}

func (s *RPCSource) Name() string { return sourceRPC }

func (s *RPCSource) Holders(ctx context.Context, mint string, limit int) (*HolderData, error) {
	accounts, err := solana_client.GetLargestAccounts(ctx, s.client, mint, limit)
	if err != nil {
		return nil, err
	}
	out := &HolderData{Holders: make([]model.TopHolder, 0, len(accounts))}
	for _, a := range accounts {
		out.Holders = append(out.Holders, model.TopHolder{Address: a.Address, Percentage: a.Percentage})
	}
	return out, nil
}
