package router

import (
	"context"
	"fmt"

	"cosmossdk.io/math"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/renec-chain/nemo-swap-sub000/pkg"
)

// SimpleRouter picks the best single pool for a pair by quoted output.
type SimpleRouter struct {
	protocols []pkg.Protocol
	pools     []pkg.Pool
	logger    *zap.Logger
}

func NewSimpleRouter(logger *zap.Logger, protocols ...pkg.Protocol) *SimpleRouter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SimpleRouter{
		protocols: protocols,
		pools:     []pkg.Pool{},
		logger:    logger,
	}
}

// QueryAllPools collects the pools every protocol knows for the pair.
// Protocol failures are logged and skipped so one flaky endpoint does not
// empty the route set.
func (r *SimpleRouter) QueryAllPools(ctx context.Context, baseMint, quoteMint string) ([]pkg.Pool, error) {
	for _, proto := range r.protocols {
		pools, err := proto.FetchPoolsByPair(ctx, baseMint, quoteMint)
		if err != nil {
			r.logger.Warn("protocol pool query failed", zap.Error(err))
			continue
		}
		r.pools = append(r.pools, pools...)
	}
	return r.pools, nil
}

// GetBestPool quotes every collected pool exact-in and returns the one with
// the highest output.
func (r *SimpleRouter) GetBestPool(ctx context.Context, solClient *rpc.Client, tokenIn, tokenOut string, amountIn math.Int) (pkg.Pool, math.Int, error) {
	var best pkg.Pool
	maxOut := math.NewInt(0)
	for _, pool := range r.pools {
		outAmount, err := pool.Quote(ctx, solClient, tokenIn, amountIn)
		if err != nil {
			r.logger.Debug("pool quote failed",
				zap.String("pool", pool.GetID()), zap.Error(err))
			continue
		}
		if outAmount.GT(maxOut) {
			maxOut = outAmount
			best = pool
		}
	}
	if best == nil {
		return nil, math.ZeroInt(), fmt.Errorf("no route found for %s -> %s", tokenIn, tokenOut)
	}
	return best, maxOut, nil
}
