package nemoswap

import (
	"math/big"
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenAmountDeltaRounding(t *testing.T) {
	lower := big.NewInt(0).Set(Q64.BigInt())
	upper, _ := new(big.Int).SetString("18505865242158232063", 10) // tick 64
	liquidity := big.NewInt(1_000_000_000)

	up, err := tokenAmountADelta(lower, upper, liquidity, true)
	require.NoError(t, err)
	down, err := tokenAmountADelta(lower, upper, liquidity, false)
	require.NoError(t, err)
	assert.True(t, up.Cmp(down) >= 0, "ceil %s below floor %s", up, down)
	assert.True(t, new(big.Int).Sub(up, down).Cmp(big.NewInt(1)) <= 0)

	upB, err := tokenAmountBDelta(lower, upper, liquidity, true)
	require.NoError(t, err)
	downB, err := tokenAmountBDelta(lower, upper, liquidity, false)
	require.NoError(t, err)
	assert.True(t, upB.Cmp(downB) >= 0)
	assert.True(t, new(big.Int).Sub(upB, downB).Cmp(big.NewInt(1)) <= 0)
}

func TestTokenAmountDeltaZeroWidth(t *testing.T) {
	p := Q64.BigInt()
	liquidity := big.NewInt(1_000_000_000)

	a, err := tokenAmountADelta(p, p, liquidity, true)
	require.NoError(t, err)
	assert.Equal(t, int64(0), a.Int64())

	b, err := tokenAmountBDelta(p, p, liquidity, true)
	require.NoError(t, err)
	assert.Equal(t, int64(0), b.Int64())
}

func TestNextSqrtPriceFromInputDirections(t *testing.T) {
	p := Q64.BigInt()
	liquidity := big.NewInt(1_000_000_000)
	amount := big.NewInt(99700)

	next, err := nextSqrtPriceFromInput(p, liquidity, amount, true)
	require.NoError(t, err)
	assert.Equal(t, "18444905116669419675", next.String())
	assert.True(t, next.Cmp(p) < 0, "token A input must move the price down")

	next, err = nextSqrtPriceFromInput(p, liquidity, amount, false)
	require.NoError(t, err)
	assert.Equal(t, "18448583214093700458", next.String())
	assert.True(t, next.Cmp(p) > 0, "token B input must move the price up")
}

func TestNextSqrtPriceZeroAmountIsIdentity(t *testing.T) {
	p := Q64.BigInt()
	liquidity := big.NewInt(1_000_000_000)

	next, err := nextSqrtPriceFromInput(p, liquidity, big.NewInt(0), true)
	require.NoError(t, err)
	assert.Equal(t, 0, next.Cmp(p))
}

func TestNextSqrtPriceOutputExceedingReserves(t *testing.T) {
	p := Q64.BigInt()
	liquidity := big.NewInt(1000)

	// Asking for more token A out than the pool can release.
	_, err := nextSqrtPriceFromOutput(p, liquidity, big.NewInt(1_000_000), false)
	require.ErrorIs(t, err, ErrArithmeticOverflow)

	// Same for token B moving down.
	_, err = nextSqrtPriceFromOutput(p, liquidity, big.NewInt(1_000_000_000), true)
	require.ErrorIs(t, err, ErrArithmeticOverflow)
}

func TestComputeSwapStepExactInPartial(t *testing.T) {
	current := Q64
	target, err := SqrtPriceFromTick(-5632)
	require.NoError(t, err)
	liquidity := math.NewInt(1_000_000_000)

	step, err := computeSwapStep(current, target, liquidity, math.NewInt(100000), 3000, true, true)
	require.NoError(t, err)

	assert.Equal(t, "18444905116669419675", step.nextSqrtPrice.String())
	assert.Equal(t, "99700", step.amountIn.String())
	assert.Equal(t, "99690", step.amountOut.String())
	// The segment swallowed the whole input: fee is the leftover.
	assert.Equal(t, "300", step.feeAmount.String())
	assert.Equal(t, "100000", step.amountIn.Add(step.feeAmount).String())
}

func TestComputeSwapStepExactInReachesTarget(t *testing.T) {
	current := Q64
	target, err := SqrtPriceFromTick(-128)
	require.NoError(t, err)
	liquidity := math.NewInt(1_000_000_000)

	step, err := computeSwapStep(current, target, liquidity, math.NewInt(10_000_000), 3000, true, true)
	require.NoError(t, err)

	assert.True(t, step.nextSqrtPrice.Equal(target))
	assert.Equal(t, "6420202", step.amountIn.String())
	assert.Equal(t, "6379245", step.amountOut.String())
	assert.Equal(t, "19319", step.feeAmount.String())
}

func TestComputeSwapStepExactOut(t *testing.T) {
	current := Q64
	target, err := SqrtPriceFromTick(-5632)
	require.NoError(t, err)
	liquidity := math.NewInt(1_000_000_000)

	step, err := computeSwapStep(current, target, liquidity, math.NewInt(99000), 3000, false, true)
	require.NoError(t, err)

	assert.Equal(t, "18444917846046254370", step.nextSqrtPrice.String())
	assert.Equal(t, "99010", step.amountIn.String())
	assert.Equal(t, "99000", step.amountOut.String())
	assert.Equal(t, "298", step.feeAmount.String())
}

func TestComputeSwapStepExactOutNeverOverpays(t *testing.T) {
	current := Q64
	target, err := SqrtPriceFromTick(-5632)
	require.NoError(t, err)
	liquidity := math.NewInt(1_000_000_000)

	for _, want := range []int64{1, 1000, 99000, 5_000_000} {
		step, err := computeSwapStep(current, target, liquidity, math.NewInt(want), 3000, false, true)
		require.NoError(t, err)
		assert.True(t, step.amountOut.LTE(math.NewInt(want)),
			"amountOut %s exceeds requested %d", step.amountOut, want)
	}
}

func TestMulDivZeroDenominator(t *testing.T) {
	_, err := mulDivFloor(big.NewInt(1), big.NewInt(1), big.NewInt(0))
	require.ErrorIs(t, err, ErrArithmeticOverflow)
	_, err = mulDivCeil(big.NewInt(1), big.NewInt(1), big.NewInt(0))
	require.ErrorIs(t, err, ErrArithmeticOverflow)
}

func TestCheckU64Bounds(t *testing.T) {
	_, err := checkU64(new(big.Int).SetUint64(^uint64(0)))
	require.NoError(t, err)
	_, err = checkU64(new(big.Int).Lsh(big.NewInt(1), 64))
	require.ErrorIs(t, err, ErrArithmeticOverflow)
	_, err = checkU64(big.NewInt(-1))
	require.ErrorIs(t, err, ErrArithmeticOverflow)
}
