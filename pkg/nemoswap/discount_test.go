package nemoswap

import (
	"encoding/binary"
	"testing"

	"cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDiscountInfo(pool *Whirlpool) *WhirlpoolDiscountInfo {
	return &WhirlpoolDiscountInfo{
		Whirlpool:                   pool.Address,
		DiscountToken:               solana.MustPublicKeyFromBase58("BRjpCHtyQLNCo8gqRUr8jtdAj5AjPYQaoqbvcZiHok1k"),
		TokenConversionRate:         500_000, // 50% of the fee is discountable
		DiscountFeeRate:             200_000, // 20% of that is discounted
		DiscountTokenRateOverTokenA: 2_000_000,
		Expo:                        6, // discount token worth 2 token A
	}
}

func TestSwapQuoteWithFeeDiscountFeeOnInputA(t *testing.T) {
	pool := newTestPool(t, 0, 1_000_000_000, 3000, 0)

	quote, err := pool.SwapQuoteWithFeeDiscount(SwapQuoteParams{
		Amount:                 math.NewInt(100000),
		AmountSpecifiedIsInput: true,
		AToB:                   true,
		TickArrays:             downWindow(t, nil),
	}, testDiscountInfo(pool))
	require.NoError(t, err)

	// Base quote is untouched by the discount.
	assert.Equal(t, "300", quote.EstimatedFeeAmount.String())
	assert.Equal(t, "99690", quote.EstimatedAmountOut.String())

	// fee 300 -> discountable 150 -> discounted 30 -> burn 30/2 = 15
	assert.Equal(t, "30", quote.EstimatedDiscountAmount.String())
	assert.Equal(t, "15", quote.EstimatedBurnAmount.String())
}

func TestSwapQuoteWithFeeDiscountFeeOnOutputSide(t *testing.T) {
	pool := newTestPool(t, 0, 1_000_000_000, 3000, 0)

	// Exact-output A->B charges the fee in token B, which converts 1:1 to
	// token A at price 1.
	quote, err := pool.SwapQuoteWithFeeDiscount(SwapQuoteParams{
		Amount:                 math.NewInt(99000),
		AmountSpecifiedIsInput: false,
		AToB:                   true,
		TickArrays:             downWindow(t, nil),
	}, testDiscountInfo(pool))
	require.NoError(t, err)

	// fee 298 in B -> 298 in A -> discountable 149 -> discounted 29 -> burn 14
	assert.Equal(t, "298", quote.EstimatedFeeAmount.String())
	assert.Equal(t, "29", quote.EstimatedDiscountAmount.String())
	assert.Equal(t, "14", quote.EstimatedBurnAmount.String())
}

func TestSwapQuoteWithFeeDiscountZeroDiscount(t *testing.T) {
	pool := newTestPool(t, 0, 1_000_000_000, 3000, 0)
	info := testDiscountInfo(pool)
	info.TokenConversionRate = 0

	quote, err := pool.SwapQuoteWithFeeDiscount(SwapQuoteParams{
		Amount:                 math.NewInt(100000),
		AmountSpecifiedIsInput: true,
		AToB:                   true,
		TickArrays:             downWindow(t, nil),
	}, info)
	require.NoError(t, err)
	assert.Equal(t, "0", quote.EstimatedDiscountAmount.String())
	assert.Equal(t, "0", quote.EstimatedBurnAmount.String())
}

func TestSwapQuoteWithFeeDiscountZeroTokenRate(t *testing.T) {
	pool := newTestPool(t, 0, 1_000_000_000, 3000, 0)
	info := testDiscountInfo(pool)
	info.DiscountTokenRateOverTokenA = 0

	_, err := pool.SwapQuoteWithFeeDiscount(SwapQuoteParams{
		Amount:                 math.NewInt(100000),
		AmountSpecifiedIsInput: true,
		AToB:                   true,
		TickArrays:             downWindow(t, nil),
	}, info)
	require.ErrorIs(t, err, ErrArithmeticOverflow)
}

func TestSwapQuoteWithFeeDiscountWrongPool(t *testing.T) {
	pool := newTestPool(t, 0, 1_000_000_000, 3000, 0)
	info := testDiscountInfo(pool)
	info.Whirlpool = solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")

	_, err := pool.SwapQuoteWithFeeDiscount(SwapQuoteParams{
		Amount:                 math.NewInt(100000),
		AmountSpecifiedIsInput: true,
		AToB:                   true,
		TickArrays:             downWindow(t, nil),
	}, info)
	require.ErrorIs(t, err, ErrInvalidAccountData)
}

func TestSwapQuoteWithFeeDiscountNilInfo(t *testing.T) {
	pool := newTestPool(t, 0, 1_000_000_000, 3000, 0)
	_, err := pool.SwapQuoteWithFeeDiscount(SwapQuoteParams{
		Amount:                 math.NewInt(100000),
		AmountSpecifiedIsInput: true,
		AToB:                   true,
		TickArrays:             downWindow(t, nil),
	}, nil)
	require.ErrorIs(t, err, ErrInvalidAccountData)
}

func TestConvertBToA(t *testing.T) {
	// At price 1 the conversion is the identity.
	assert.Equal(t, "298", convertBToA(math.NewInt(298), Q64).String())

	// At sqrt price 2^65 (price 4), one B is a quarter A, floored.
	doubled := Q64.MulRaw(2)
	assert.Equal(t, "25", convertBToA(math.NewInt(100), doubled).String())
	assert.Equal(t, "0", convertBToA(math.NewInt(3), doubled).String())
}

func TestDiscountInfoDecode(t *testing.T) {
	pool := solana.MustPublicKeyFromBase58("whirLbMiicVdio4qvUfM5KAg6Ct8VwpYzGff3uctyCc")
	mint := solana.MustPublicKeyFromBase58("BRjpCHtyQLNCo8gqRUr8jtdAj5AjPYQaoqbvcZiHok1k")

	data := make([]byte, discountInfoSize)
	copy(data, DiscountInfoDiscriminator)
	copy(data[8:], pool.Bytes())
	copy(data[40:], mint.Bytes())
	binary.LittleEndian.PutUint32(data[72:], 500_000)
	binary.LittleEndian.PutUint32(data[76:], 200_000)
	binary.LittleEndian.PutUint64(data[80:], 2_000_000)
	data[88] = 6

	var info WhirlpoolDiscountInfo
	require.NoError(t, info.Decode(data))
	assert.Equal(t, pool, info.Whirlpool)
	assert.Equal(t, mint, info.DiscountToken)
	assert.Equal(t, uint32(500_000), info.TokenConversionRate)
	assert.Equal(t, uint32(200_000), info.DiscountFeeRate)
	assert.Equal(t, uint64(2_000_000), info.DiscountTokenRateOverTokenA)
	assert.Equal(t, uint8(6), info.Expo)

	require.ErrorIs(t, info.Decode(data[:20]), ErrInvalidAccountData)
	data[0] ^= 0xff
	require.ErrorIs(t, info.Decode(data), ErrInvalidAccountData)
}

func TestDeriveDiscountInfoPDA(t *testing.T) {
	pool := solana.MustPublicKeyFromBase58("whirLbMiicVdio4qvUfM5KAg6Ct8VwpYzGff3uctyCc")
	mint := solana.MustPublicKeyFromBase58("BRjpCHtyQLNCo8gqRUr8jtdAj5AjPYQaoqbvcZiHok1k")

	pda, err := DeriveDiscountInfoPDA(pool, mint)
	require.NoError(t, err)
	assert.False(t, pda.IsZero())

	again, err := DeriveDiscountInfoPDA(pool, mint)
	require.NoError(t, err)
	assert.Equal(t, pda, again)

	other, err := DeriveDiscountInfoPDA(pool, pool)
	require.NoError(t, err)
	assert.NotEqual(t, pda, other)
}
