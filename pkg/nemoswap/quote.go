package nemoswap

import (
	"context"
	"fmt"

	"cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// SwapQuoteParams describes one requested trade against a pool snapshot.
// TickArrays must be the pre-fetched window ordered along the traversal
// direction; the engine fails rather than fetching more.
type SwapQuoteParams struct {
	Amount                 math.Int
	AmountSpecifiedIsInput bool
	AToB                   bool

	// SqrtPriceLimit bounds the traversal. The zero value selects the
	// global bound for the trade direction.
	SqrtPriceLimit math.Int

	SlippageTolerance Percentage

	TickArrays []TickArray
}

// SwapQuote is the simulated outcome of a single-hop trade.
type SwapQuote struct {
	Amount                 math.Int
	AmountSpecifiedIsInput bool
	AToB                   bool
	SqrtPriceLimit         math.Int

	EstimatedAmountIn     math.Int
	EstimatedAmountOut    math.Int
	EstimatedFeeAmount    math.Int
	EstimatedProtocolFee  math.Int
	EstimatedEndSqrtPrice math.Int
	EstimatedEndTickIndex int32

	// OtherAmountThreshold is the slippage-bounded execution limit:
	// minimum output for exact-input trades, maximum input for
	// exact-output trades.
	OtherAmountThreshold math.Int

	InputMint  solana.PublicKey
	OutputMint solana.PublicKey
}

// SwapQuote simulates a trade against the pool snapshot. The pool is not
// mutated; every call is an independent computation over the supplied
// window (params.TickArrays, falling back to the installed window).
func (p *Whirlpool) SwapQuote(params SwapQuoteParams) (*SwapQuote, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if params.Amount.IsNil() || !params.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrZeroTradableAmount)
	}

	arrays := params.TickArrays
	if len(arrays) == 0 {
		arrays = p.tickArrays
	}

	limit, err := resolveSqrtPriceLimit(params.SqrtPriceLimit, p.SqrtPriceInt(), params.AToB)
	if err != nil {
		return nil, err
	}

	res, err := simulateSwap(
		p.SqrtPriceInt(), p.LiquidityInt(), p.TickCurrentIndex,
		p.TickSpacing, p.FeeRate, p.ProtocolFeeRate,
		params.Amount, limit, arrays,
		params.AmountSpecifiedIsInput, params.AToB,
	)
	if err != nil {
		return nil, err
	}

	quote := &SwapQuote{
		Amount:                 params.Amount,
		AmountSpecifiedIsInput: params.AmountSpecifiedIsInput,
		AToB:                   params.AToB,
		SqrtPriceLimit:         limit,
		EstimatedAmountIn:      res.amountIn,
		EstimatedAmountOut:     res.amountOut,
		EstimatedFeeAmount:     res.feeAmount,
		EstimatedProtocolFee:   res.protocolFee,
		EstimatedEndSqrtPrice:  res.endSqrtPrice,
		EstimatedEndTickIndex:  res.endTickIndex,
	}
	if params.AToB {
		quote.InputMint, quote.OutputMint = p.TokenMintA, p.TokenMintB
	} else {
		quote.InputMint, quote.OutputMint = p.TokenMintB, p.TokenMintA
	}

	quote.OtherAmountThreshold, err = otherAmountThreshold(quote, params.SlippageTolerance)
	if err != nil {
		return nil, err
	}
	return quote, nil
}

// Quote implements the router's minimal pool interface: exact-input quote
// by mint, returning the estimated output amount. The tick-array window is
// fetched fresh per call.
func (p *Whirlpool) Quote(ctx context.Context, client *rpc.Client, inputMint string, inputAmount math.Int) (math.Int, error) {
	aToB, err := p.directionForInput(inputMint)
	if err != nil {
		return math.ZeroInt(), err
	}
	if err := p.FetchTickArrays(ctx, client, aToB); err != nil {
		return math.ZeroInt(), err
	}

	quote, err := p.SwapQuote(SwapQuoteParams{
		Amount:                 inputAmount,
		AmountSpecifiedIsInput: true,
		AToB:                   aToB,
	})
	if err != nil {
		return math.ZeroInt(), err
	}
	return quote.EstimatedAmountOut, nil
}

func (p *Whirlpool) directionForInput(inputMint string) (bool, error) {
	switch inputMint {
	case p.TokenMintA.String():
		return true, nil
	case p.TokenMintB.String():
		return false, nil
	default:
		return false, fmt.Errorf("%w: mint %s not in pool %s", ErrRouteMismatch, inputMint, p.Address)
	}
}

func resolveSqrtPriceLimit(limit, current math.Int, aToB bool) (math.Int, error) {
	if limit.IsNil() || limit.IsZero() {
		if aToB {
			return MIN_SQRT_PRICE_X64, nil
		}
		return MAX_SQRT_PRICE_X64, nil
	}
	if limit.LT(MIN_SQRT_PRICE_X64) || limit.GT(MAX_SQRT_PRICE_X64) {
		return math.Int{}, fmt.Errorf("%w: sqrt price limit %s", ErrOutOfBounds, limit)
	}
	if aToB && limit.GTE(current) {
		return math.Int{}, fmt.Errorf("%w: limit %s not below current price", ErrOutOfBounds, limit)
	}
	if !aToB && limit.LTE(current) {
		return math.Int{}, fmt.Errorf("%w: limit %s not above current price", ErrOutOfBounds, limit)
	}
	return limit, nil
}

type swapResult struct {
	amountIn     math.Int
	amountOut    math.Int
	feeAmount    math.Int
	protocolFee  math.Int
	endSqrtPrice math.Int
	endTickIndex int32
}

// simulateSwap drives computeSwapStep across tick segments: each iteration
// steps to the nearer of the next initialized tick and the sqrt-price
// limit, then crosses the tick when one was reached. Liquidity changes by
// the tick's signed net, negated when moving down.
func simulateSwap(
	sqrtPrice, liquidity math.Int, currentTick int32,
	tickSpacing uint16, feeRate uint16, protocolFeeRate uint16,
	amount, sqrtPriceLimit math.Int, arrays []TickArray,
	amountSpecifiedIsInput, aToB bool,
) (*swapResult, error) {
	seq, err := NewTickArraySequence(arrays, tickSpacing, currentTick, aToB)
	if err != nil {
		return nil, err
	}

	remaining := amount
	totalIn := math.ZeroInt()
	totalOut := math.ZeroInt()
	totalFee := math.ZeroInt()
	protocolFee := math.ZeroInt()
	protoRate := math.NewInt(int64(protocolFeeRate))

	maxIterations := len(arrays)*TICK_ARRAY_SIZE + 2
	for iter := 0; remaining.IsPositive() && !sqrtPrice.Equal(sqrtPriceLimit); iter++ {
		if iter >= maxIterations {
			return nil, fmt.Errorf("%w: swap exceeded %d iterations", ErrInsufficientTickArrayData, maxIterations)
		}

		boundaryTick, boundaryData, found := seq.NextInitializedTick(currentTick)
		boundaryPrice, err := SqrtPriceFromTick(boundaryTick)
		if err != nil {
			return nil, err
		}

		target := boundaryPrice
		if aToB && boundaryPrice.LT(sqrtPriceLimit) {
			target = sqrtPriceLimit
		} else if !aToB && boundaryPrice.GT(sqrtPriceLimit) {
			target = sqrtPriceLimit
		}

		if !found && target.Equal(sqrtPrice) {
			// The data window is exhausted and cannot move the price.
			return nil, fmt.Errorf("%w: swap walked past the supplied window at tick %d",
				ErrInsufficientTickArrayData, currentTick)
		}

		step, err := computeSwapStep(
			sqrtPrice, target, liquidity, remaining,
			uint32(feeRate), amountSpecifiedIsInput, aToB,
		)
		if err != nil {
			return nil, err
		}

		consumedIn := step.amountIn.Add(step.feeAmount)
		totalIn = totalIn.Add(consumedIn)
		totalOut = totalOut.Add(step.amountOut)
		totalFee = totalFee.Add(step.feeAmount)
		protocolFee = protocolFee.Add(
			step.feeAmount.Mul(protoRate).Quo(PROTOCOL_FEE_RATE_DENOMINATOR))

		if amountSpecifiedIsInput {
			remaining = remaining.Sub(consumedIn)
		} else {
			remaining = remaining.Sub(step.amountOut)
		}
		if remaining.IsNegative() {
			return nil, fmt.Errorf("%w: consumed more than remaining", ErrArithmeticOverflow)
		}

		if step.nextSqrtPrice.Equal(boundaryPrice) {
			if found {
				net := boundaryData.LiquidityNet
				if aToB {
					net = net.Neg()
				}
				liquidity = liquidity.Add(net)
				if liquidity.IsNegative() {
					return nil, fmt.Errorf("%w: liquidity underflow crossing tick %d",
						ErrArithmeticOverflow, boundaryTick)
				}
			}
			if aToB {
				currentTick = boundaryTick - 1
			} else {
				currentTick = boundaryTick
			}
		} else if !step.nextSqrtPrice.Equal(sqrtPrice) {
			currentTick, err = TickFromSqrtPrice(step.nextSqrtPrice)
			if err != nil {
				return nil, err
			}
		}
		sqrtPrice = step.nextSqrtPrice
	}

	if totalIn.GT(MaxUint64) || totalOut.GT(MaxUint64) {
		return nil, fmt.Errorf("%w: swap totals exceed u64", ErrArithmeticOverflow)
	}

	return &swapResult{
		amountIn:     totalIn,
		amountOut:    totalOut,
		feeAmount:    totalFee,
		protocolFee:  protocolFee,
		endSqrtPrice: sqrtPrice,
		endTickIndex: currentTick,
	}, nil
}

func otherAmountThreshold(quote *SwapQuote, tolerance Percentage) (math.Int, error) {
	if quote.AmountSpecifiedIsInput {
		return tolerance.AdjustDown(quote.EstimatedAmountOut)
	}
	return tolerance.AdjustUp(quote.EstimatedAmountIn)
}
