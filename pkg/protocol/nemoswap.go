package protocol

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/renec-chain/nemo-swap-sub000/pkg"
	"github.com/renec-chain/nemo-swap-sub000/pkg/nemoswap"
	"github.com/renec-chain/nemo-swap-sub000/pkg/sol"
)

// NemoswapProtocol implements the Protocol interface for the nemo-swap
// concentrated liquidity program (Whirlpool lineage).
//
// Pools are discovered through getProgramAccounts with discriminator,
// account-size and mint filters, then screened so the router never selects
// a pool that would fail on-chain.
type NemoswapProtocol struct {
	SolClient *sol.Client
	logger    *zap.Logger
}

// NewNemoswap creates a protocol instance backed by the given client.
func NewNemoswap(solClient *sol.Client, logger *zap.Logger) *NemoswapProtocol {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NemoswapProtocol{
		SolClient: solClient,
		logger:    logger,
	}
}

// FetchPoolsByPair returns the quotable pools holding the given mint pair.
// Both mint orderings are queried since pool token order is canonical, not
// caller-defined.
func (p *NemoswapProtocol) FetchPoolsByPair(ctx context.Context, baseMint string, quoteMint string) ([]pkg.Pool, error) {
	accounts := make([]*rpc.KeyedAccount, 0)

	programAccounts, err := p.getPoolAccountsByTokenPair(ctx, baseMint, quoteMint)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pools with base token %s: %w", baseMint, err)
	}
	accounts = append(accounts, programAccounts...)

	programAccounts, err = p.getPoolAccountsByTokenPair(ctx, quoteMint, baseMint)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pools with base token %s: %w", quoteMint, err)
	}
	accounts = append(accounts, programAccounts...)

	res := make([]pkg.Pool, 0)
	for _, v := range accounts {
		layout := &nemoswap.Whirlpool{}
		if err := layout.Decode(v.Account.Data.GetBinary()); err != nil {
			p.logger.Warn("skipping undecodable pool account",
				zap.String("account", v.Pubkey.String()), zap.Error(err))
			continue
		}
		layout.Address = v.Pubkey

		if err := layout.Validate(); err != nil {
			p.logger.Info("skipping invalid pool",
				zap.String("pool", layout.GetID()), zap.Error(err))
			continue
		}
		if err := p.screenTickArrays(ctx, layout); err != nil {
			p.logger.Info("skipping pool with unusable tick arrays",
				zap.String("pool", layout.GetID()), zap.Error(err))
			continue
		}

		res = append(res, layout)
	}
	return res, nil
}

// getPoolAccountsByTokenPair queries pool accounts for one mint ordering.
func (p *NemoswapProtocol) getPoolAccountsByTokenPair(ctx context.Context, baseMint string, quoteMint string) (rpc.GetProgramAccountsResult, error) {
	baseKey, err := solana.PublicKeyFromBase58(baseMint)
	if err != nil {
		return nil, fmt.Errorf("invalid base mint address: %w", err)
	}
	quoteKey, err := solana.PublicKeyFromBase58(quoteMint)
	if err != nil {
		return nil, fmt.Errorf("invalid quote mint address: %w", err)
	}

	var knownPoolLayout nemoswap.Whirlpool
	result, err := p.SolClient.RpcClient.GetProgramAccountsWithOpts(ctx, nemoswap.NEMOSWAP_PROGRAM_ID, &rpc.GetProgramAccountsOpts{
		Filters: []rpc.RPCFilter{
			{
				Memcmp: &rpc.RPCFilterMemcmp{
					Offset: 0,
					Bytes:  nemoswap.WhirlpoolDiscriminator,
				},
			},
			{
				DataSize: knownPoolLayout.Span(),
			},
			{
				Memcmp: &rpc.RPCFilterMemcmp{
					Offset: knownPoolLayout.Offset("TokenMintA"),
					Bytes:  baseKey.Bytes(),
				},
			},
			{
				Memcmp: &rpc.RPCFilterMemcmp{
					Offset: knownPoolLayout.Offset("TokenMintB"),
					Bytes:  quoteKey.Bytes(),
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get pools: %w", err)
	}

	return result, nil
}

// FetchPoolByID loads and decodes a single pool account.
func (p *NemoswapProtocol) FetchPoolByID(ctx context.Context, poolID string) (pkg.Pool, error) {
	poolKey, err := solana.PublicKeyFromBase58(poolID)
	if err != nil {
		return nil, fmt.Errorf("invalid pool id: %w", err)
	}

	account, err := p.SolClient.RpcClient.GetAccountInfo(ctx, poolKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get pool account %s: %w", poolID, err)
	}

	layout := &nemoswap.Whirlpool{}
	if err := layout.Decode(account.Value.Data.GetBinary()); err != nil {
		return nil, fmt.Errorf("failed to decode pool data for %s: %w", poolID, err)
	}
	layout.Address = poolKey

	return layout, nil
}

// screenTickArrays verifies, for both trade directions, that the primary
// tick array of the traversal window exists and decodes. Pools missing it
// would make every swap fail on-chain, so discovery drops them up front.
func (p *NemoswapProtocol) screenTickArrays(ctx context.Context, pool *nemoswap.Whirlpool) error {
	for _, aToB := range []bool{true, false} {
		pdas, starts, err := nemoswap.DeriveTickArrayPDAs(
			pool.Address, pool.TickCurrentIndex, pool.TickSpacing, aToB)
		if err != nil {
			return fmt.Errorf("failed to derive tick array PDAs for aToB=%v: %w", aToB, err)
		}

		results, err := p.SolClient.RpcClient.GetMultipleAccountsWithOpts(ctx, pdas[:], &rpc.GetMultipleAccountsOpts{
			Commitment: rpc.CommitmentProcessed,
		})
		if err != nil {
			return fmt.Errorf("failed to query tick arrays for aToB=%v: %w", aToB, err)
		}

		if results.Value[0] == nil {
			return fmt.Errorf("primary tick array missing for aToB=%v", aToB)
		}
		var ta nemoswap.TickArray
		if err := ta.Decode(results.Value[0].Data.GetBinary()); err != nil {
			return fmt.Errorf("primary tick array corrupted for aToB=%v: %w", aToB, err)
		}
		if ta.StartTickIndex != starts[0] {
			return fmt.Errorf("primary tick array starts at %d, expected %d for aToB=%v",
				ta.StartTickIndex, starts[0], aToB)
		}
	}
	return nil
}
