package main

import (
	"context"
	"os"

	"cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/renec-chain/nemo-swap-sub000/pkg/nemoswap"
	"github.com/renec-chain/nemo-swap-sub000/pkg/protocol"
	"github.com/renec-chain/nemo-swap-sub000/pkg/router"
	"github.com/renec-chain/nemo-swap-sub000/pkg/sol"
	"github.com/renec-chain/nemo-swap-sub000/utils"
)

const (
	defaultRPC   = "https://api-mainnet-beta.renec.foundation:8899"
	defaultWSRPC = "wss://api-mainnet-beta.renec.foundation:8900"

	defaultAmountIn = 1000000000 // 1 native token (9 decimals)
	slippageBps     = 100        // 1%

	computeUnitPrice = uint64(1000)
	computeUnitLimit = uint32(300000)
)

func main() {
	utils.LoadEnv()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	privateKeyStr := os.Getenv("RENEC_PRIVATE_KEY")
	if privateKeyStr == "" {
		logger.Fatal("RENEC_PRIVATE_KEY is required")
	}
	privateKey := solana.MustPrivateKeyFromBase58(privateKeyStr)
	logger.Info("loaded signer", zap.String("publicKey", privateKey.PublicKey().String()))

	if programID := os.Getenv("NEMOSWAP_PROGRAM_ID"); programID != "" {
		nemoswap.NEMOSWAP_PROGRAM_ID = solana.MustPublicKeyFromBase58(programID)
	}
	quoteMint := os.Getenv("QUOTE_TOKEN_MINT")
	if quoteMint == "" {
		logger.Fatal("QUOTE_TOKEN_MINT is required")
	}

	ctx := context.Background()
	solClient, err := sol.NewClient(ctx,
		utils.EnvString("RENEC_RPC_URL", defaultRPC),
		utils.EnvString("RENEC_WS_RPC_URL", defaultWSRPC),
		logger,
	)
	if err != nil {
		logger.Fatal("failed to create client", zap.Error(err))
	}
	defer solClient.Close()

	amountIn := math.NewInt(utils.EnvInt64("AMOUNT_IN", defaultAmountIn))

	balance, err := solClient.GetUserTokenBalance(ctx, privateKey.PublicKey(), sol.WrappedNative)
	if err != nil {
		logger.Fatal("failed to get wrapped-native balance", zap.Error(err))
	}
	logger.Info("wrapped-native balance", zap.Uint64("balance", balance))
	if math.NewIntFromUint64(balance).LT(amountIn) {
		if err := solClient.CoverWrappedNative(ctx, privateKey, amountIn.Int64()); err != nil {
			logger.Fatal("failed to cover wrapped native", zap.Error(err))
		}
	}

	if _, err := solClient.SelectOrCreateSPLTokenAccount(ctx, privateKey,
		solana.MustPublicKeyFromBase58(quoteMint)); err != nil {
		logger.Fatal("failed to prepare quote token account", zap.Error(err))
	}

	r := router.NewSimpleRouter(logger, protocol.NewNemoswap(solClient, logger))

	pools, err := r.QueryAllPools(ctx, sol.WrappedNative.String(), quoteMint)
	if err != nil {
		logger.Fatal("failed to query pools", zap.Error(err))
	}
	for _, pool := range pools {
		logger.Info("found pool", zap.String("pool", pool.GetID()))
	}

	bestPool, amountOut, err := r.GetBestPool(ctx, solClient.RpcClient,
		sol.WrappedNative.String(), quoteMint, amountIn)
	if err != nil {
		logger.Fatal("failed to select pool", zap.Error(err))
	}
	logger.Info("selected best pool",
		zap.String("pool", bestPool.GetID()),
		zap.String("expectedOut", amountOut.String()))

	// Quote once more through the full engine surface for the log, with the
	// optional fee-discount overlay when a discount token is configured.
	if whirlpool, ok := bestPool.(*nemoswap.Whirlpool); ok {
		if discountMint := os.Getenv("DISCOUNT_TOKEN_MINT"); discountMint != "" {
			info, err := whirlpool.FetchDiscountInfo(ctx, solClient.RpcClient,
				solana.MustPublicKeyFromBase58(discountMint))
			if err != nil {
				logger.Warn("no discount info for pool", zap.Error(err))
			} else {
				quote, err := whirlpool.SwapQuoteWithFeeDiscount(nemoswap.SwapQuoteParams{
					Amount:                 amountIn,
					AmountSpecifiedIsInput: true,
					AToB:                   whirlpool.TokenMintA.Equals(sol.WrappedNative),
					SlippageTolerance:      nemoswap.PercentageFromBps(slippageBps),
				}, info)
				if err != nil {
					logger.Warn("discount quote failed", zap.Error(err))
				} else {
					logger.Info("fee discount quote",
						zap.String("fee", quote.EstimatedFeeAmount.String()),
						zap.String("discount", quote.EstimatedDiscountAmount.String()),
						zap.String("burn", quote.EstimatedBurnAmount.String()))
				}
			}
		}
	}

	minAmountOut, err := nemoswap.PercentageFromBps(slippageBps).AdjustDown(amountOut)
	if err != nil {
		logger.Fatal("failed to compute slippage bound", zap.Error(err))
	}

	instructions, err := bestPool.BuildSwapInstructions(ctx, solClient.RpcClient,
		privateKey.PublicKey(), sol.WrappedNative.String(), amountIn, minAmountOut)
	if err != nil {
		logger.Fatal("failed to build swap instructions", zap.Error(err))
	}

	cuPriceIx, err := computebudget.NewSetComputeUnitPriceInstruction(computeUnitPrice).ValidateAndBuild()
	if err != nil {
		logger.Fatal("failed to build compute unit price instruction", zap.Error(err))
	}
	cuLimitIx, err := computebudget.NewSetComputeUnitLimitInstruction(computeUnitLimit).ValidateAndBuild()
	if err != nil {
		logger.Fatal("failed to build compute unit limit instruction", zap.Error(err))
	}
	instructions = append([]solana.Instruction{cuPriceIx, cuLimitIx}, instructions...)

	res, err := solClient.RpcClient.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		logger.Fatal("failed to get blockhash", zap.Error(err))
	}

	isSimulate := utils.EnvInt64("SEND_TX", 0) == 0
	sig, err := solClient.SendTx(ctx, res.Value.Blockhash,
		[]solana.PrivateKey{privateKey}, instructions, isSimulate)
	if err != nil {
		logger.Fatal("failed to send transaction", zap.Error(err))
	}
	logger.Info("transaction submitted",
		zap.Bool("simulated", isSimulate),
		zap.String("signature", sig.String()))
}
