package nemoswap

import (
	"fmt"
	"math/big"

	"cosmossdk.io/math"
)

// Intermediate curve math runs on big.Int: the products here reach past 256
// bits, which cosmossdk math.Int refuses to represent. Results are checked
// back into range before they re-enter the math.Int world.

func mulDivFloor(a, b, denominator *big.Int) (*big.Int, error) {
	if denominator.Sign() == 0 {
		return nil, fmt.Errorf("%w: division by zero", ErrArithmeticOverflow)
	}
	return new(big.Int).Quo(new(big.Int).Mul(a, b), denominator), nil
}

func mulDivCeil(a, b, denominator *big.Int) (*big.Int, error) {
	if denominator.Sign() == 0 {
		return nil, fmt.Errorf("%w: division by zero", ErrArithmeticOverflow)
	}
	numerator := new(big.Int).Mul(a, b)
	numerator.Add(numerator, new(big.Int).Sub(denominator, big.NewInt(1)))
	return numerator.Quo(numerator, denominator), nil
}

func checkU128(v *big.Int) (*big.Int, error) {
	if v.Sign() < 0 || v.BitLen() > 128 {
		return nil, fmt.Errorf("%w: value exceeds u128", ErrArithmeticOverflow)
	}
	return v, nil
}

func checkU64(v *big.Int) (*big.Int, error) {
	if v.Sign() < 0 || v.BitLen() > 64 {
		return nil, fmt.Errorf("%w: value exceeds u64", ErrArithmeticOverflow)
	}
	return v, nil
}

// tokenAmountADelta returns the token A amount moved when the price travels
// between the two sqrt prices at constant liquidity. Rounds up when the
// amount is charged to the trader, down when paid out.
func tokenAmountADelta(sqrtPrice0, sqrtPrice1, liquidity *big.Int, roundUp bool) (*big.Int, error) {
	lower, upper := sqrtPrice0, sqrtPrice1
	if lower.Cmp(upper) > 0 {
		lower, upper = upper, lower
	}
	if lower.Sign() <= 0 {
		return nil, fmt.Errorf("%w: non-positive sqrt price", ErrArithmeticOverflow)
	}

	numerator1 := new(big.Int).Lsh(liquidity, U64Resolution)
	numerator2 := new(big.Int).Sub(upper, lower)

	if roundUp {
		tmp, err := mulDivCeil(numerator1, numerator2, upper)
		if err != nil {
			return nil, err
		}
		out, err := mulDivCeil(tmp, big.NewInt(1), lower)
		if err != nil {
			return nil, err
		}
		return checkU128(out)
	}
	tmp, err := mulDivFloor(numerator1, numerator2, upper)
	if err != nil {
		return nil, err
	}
	return checkU128(tmp.Quo(tmp, lower))
}

// tokenAmountBDelta returns the token B amount moved between the two sqrt
// prices at constant liquidity.
func tokenAmountBDelta(sqrtPrice0, sqrtPrice1, liquidity *big.Int, roundUp bool) (*big.Int, error) {
	lower, upper := sqrtPrice0, sqrtPrice1
	if lower.Cmp(upper) > 0 {
		lower, upper = upper, lower
	}
	if lower.Sign() <= 0 {
		return nil, fmt.Errorf("%w: non-positive sqrt price", ErrArithmeticOverflow)
	}

	diff := new(big.Int).Sub(upper, lower)
	q64 := new(big.Int).Lsh(big.NewInt(1), U64Resolution)
	var out *big.Int
	var err error
	if roundUp {
		out, err = mulDivCeil(liquidity, diff, q64)
	} else {
		out, err = mulDivFloor(liquidity, diff, q64)
	}
	if err != nil {
		return nil, err
	}
	return checkU128(out)
}

// nextSqrtPriceFromAmountARoundingUp solves the curve for the sqrt price
// after adding (add=true) or removing token A. Token A moves inversely to
// price, so rounding up keeps the result pool-favorable.
func nextSqrtPriceFromAmountARoundingUp(sqrtPrice, liquidity, amount *big.Int, add bool) (*big.Int, error) {
	if amount.Sign() == 0 {
		return sqrtPrice, nil
	}
	liquidityShifted := new(big.Int).Lsh(liquidity, U64Resolution)

	if add {
		denominator := new(big.Int).Add(liquidityShifted, new(big.Int).Mul(amount, sqrtPrice))
		if denominator.Cmp(liquidityShifted) >= 0 {
			out, err := mulDivCeil(liquidityShifted, sqrtPrice, denominator)
			if err != nil {
				return nil, err
			}
			return checkU128(out)
		}
		tmp := new(big.Int).Quo(liquidityShifted, sqrtPrice)
		tmp.Add(tmp, amount)
		out, err := mulDivCeil(liquidityShifted, big.NewInt(1), tmp)
		if err != nil {
			return nil, err
		}
		return checkU128(out)
	}

	product := new(big.Int).Mul(amount, sqrtPrice)
	if liquidityShifted.Cmp(product) <= 0 {
		return nil, fmt.Errorf("%w: token A output exceeds pool reserves", ErrArithmeticOverflow)
	}
	denominator := new(big.Int).Sub(liquidityShifted, product)
	out, err := mulDivCeil(liquidityShifted, sqrtPrice, denominator)
	if err != nil {
		return nil, err
	}
	return checkU128(out)
}

// nextSqrtPriceFromAmountBRoundingDown solves the curve for the sqrt price
// after adding or removing token B. Token B moves with price.
func nextSqrtPriceFromAmountBRoundingDown(sqrtPrice, liquidity, amount *big.Int, add bool) (*big.Int, error) {
	if liquidity.Sign() <= 0 {
		return nil, fmt.Errorf("%w: non-positive liquidity", ErrArithmeticOverflow)
	}
	deltaY := new(big.Int).Lsh(amount, U64Resolution)

	if add {
		out := new(big.Int).Add(sqrtPrice, new(big.Int).Quo(deltaY, liquidity))
		return checkU128(out)
	}

	quotient, err := mulDivCeil(deltaY, big.NewInt(1), liquidity)
	if err != nil {
		return nil, err
	}
	if sqrtPrice.Cmp(quotient) <= 0 {
		return nil, fmt.Errorf("%w: token B output exceeds pool reserves", ErrArithmeticOverflow)
	}
	return new(big.Int).Sub(sqrtPrice, quotient), nil
}

func nextSqrtPriceFromInput(sqrtPrice, liquidity, amountIn *big.Int, aToB bool) (*big.Int, error) {
	if sqrtPrice.Sign() <= 0 || liquidity.Sign() <= 0 {
		return nil, fmt.Errorf("%w: non-positive pool state", ErrArithmeticOverflow)
	}
	if aToB {
		return nextSqrtPriceFromAmountARoundingUp(sqrtPrice, liquidity, amountIn, true)
	}
	return nextSqrtPriceFromAmountBRoundingDown(sqrtPrice, liquidity, amountIn, true)
}

func nextSqrtPriceFromOutput(sqrtPrice, liquidity, amountOut *big.Int, aToB bool) (*big.Int, error) {
	if sqrtPrice.Sign() <= 0 || liquidity.Sign() <= 0 {
		return nil, fmt.Errorf("%w: non-positive pool state", ErrArithmeticOverflow)
	}
	if aToB {
		return nextSqrtPriceFromAmountBRoundingDown(sqrtPrice, liquidity, amountOut, false)
	}
	return nextSqrtPriceFromAmountARoundingUp(sqrtPrice, liquidity, amountOut, false)
}

// swapStep is one uncrossed price segment of a swap.
type swapStep struct {
	nextSqrtPrice math.Int
	amountIn      math.Int
	amountOut     math.Int
	feeAmount     math.Int
}

// computeSwapStep simulates a swap within a single segment: no tick is
// crossed, liquidity is constant. amountRemaining is fee-inclusive input in
// exact-input mode and wanted output in exact-output mode. Amounts charged
// to the trader round up, amounts paid out round down.
func computeSwapStep(
	currentSqrtPrice, targetSqrtPrice, liquidity, amountRemaining math.Int,
	feeRate uint32,
	amountSpecifiedIsInput, aToB bool,
) (swapStep, error) {
	var step swapStep

	current := currentSqrtPrice.BigInt()
	target := targetSqrtPrice.BigInt()
	liq := liquidity.BigInt()
	remaining := amountRemaining.BigInt()
	feeRateBig := big.NewInt(int64(feeRate))
	feeDenom := FEE_RATE_DENOMINATOR.BigInt()
	feeComplement := new(big.Int).Sub(feeDenom, feeRateBig)

	amountIn := new(big.Int)
	amountOut := new(big.Int)
	next := new(big.Int)

	if amountSpecifiedIsInput {
		remainingLessFee, err := mulDivFloor(remaining, feeComplement, feeDenom)
		if err != nil {
			return step, err
		}
		if aToB {
			amountIn, err = tokenAmountADelta(target, current, liq, true)
		} else {
			amountIn, err = tokenAmountBDelta(current, target, liq, true)
		}
		if err != nil {
			return step, err
		}
		if remainingLessFee.Cmp(amountIn) >= 0 {
			next.Set(target)
		} else {
			next, err = nextSqrtPriceFromInput(current, liq, remainingLessFee, aToB)
			if err != nil {
				return step, err
			}
		}
	} else {
		var err error
		if aToB {
			amountOut, err = tokenAmountBDelta(target, current, liq, false)
		} else {
			amountOut, err = tokenAmountADelta(current, target, liq, false)
		}
		if err != nil {
			return step, err
		}
		if remaining.Cmp(amountOut) >= 0 {
			next.Set(target)
		} else {
			next, err = nextSqrtPriceFromOutput(current, liq, remaining, aToB)
			if err != nil {
				return step, err
			}
		}
	}

	reachedTarget := next.Cmp(target) == 0

	var err error
	if aToB {
		if !(reachedTarget && amountSpecifiedIsInput) {
			if amountIn, err = tokenAmountADelta(next, current, liq, true); err != nil {
				return step, err
			}
		}
		if !(reachedTarget && !amountSpecifiedIsInput) {
			if amountOut, err = tokenAmountBDelta(next, current, liq, false); err != nil {
				return step, err
			}
		}
	} else {
		if !(reachedTarget && amountSpecifiedIsInput) {
			if amountIn, err = tokenAmountBDelta(current, next, liq, true); err != nil {
				return step, err
			}
		}
		if !(reachedTarget && !amountSpecifiedIsInput) {
			if amountOut, err = tokenAmountADelta(current, next, liq, false); err != nil {
				return step, err
			}
		}
	}

	// Never hand out more than was asked for in exact-output mode.
	if !amountSpecifiedIsInput && amountOut.Cmp(remaining) > 0 {
		amountOut.Set(remaining)
	}

	feeAmount := new(big.Int)
	if amountSpecifiedIsInput && !reachedTarget {
		// The segment absorbed the whole remaining input; everything not
		// consumed by the curve is fee.
		feeAmount.Sub(remaining, amountIn)
	} else {
		if feeAmount, err = mulDivCeil(amountIn, feeRateBig, feeComplement); err != nil {
			return step, err
		}
	}

	if _, err = checkU64(amountIn); err != nil {
		return step, err
	}
	if _, err = checkU64(amountOut); err != nil {
		return step, err
	}
	if _, err = checkU64(feeAmount); err != nil {
		return step, err
	}

	step.nextSqrtPrice = math.NewIntFromBigInt(next)
	step.amountIn = math.NewIntFromBigInt(amountIn)
	step.amountOut = math.NewIntFromBigInt(amountOut)
	step.feeAmount = math.NewIntFromBigInt(feeAmount)
	return step, nil
}
