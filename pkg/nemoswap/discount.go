package nemoswap

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math/big"

	"cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// WhirlpoolDiscountInfo configures the fee-discount mechanism for one
// (pool, discount token) pair. Rates are integer numerators over
// DISCOUNT_RATE_DENOMINATOR; DiscountTokenRateOverTokenA with Expo encodes
// the discount-token price in token A as rate/10^expo, so rates below one
// base unit stay exact integers.
type WhirlpoolDiscountInfo struct {
	Address solana.PublicKey

	Whirlpool                   solana.PublicKey
	DiscountToken               solana.PublicKey
	TokenConversionRate         uint32
	DiscountFeeRate             uint32
	DiscountTokenRateOverTokenA uint64
	Expo                        uint8
}

const discountInfoSize = 8 + 32 + 32 + 4 + 4 + 8 + 1

// Decode parses a discount-info account image.
func (d *WhirlpoolDiscountInfo) Decode(data []byte) error {
	if len(data) < discountInfoSize {
		return fmt.Errorf("%w: discount info account too short: %d", ErrInvalidAccountData, len(data))
	}
	if !bytes.Equal(data[:8], DiscountInfoDiscriminator) {
		return fmt.Errorf("%w: discount info discriminator mismatch", ErrInvalidAccountData)
	}
	d.Whirlpool = solana.PublicKeyFromBytes(data[8:40])
	d.DiscountToken = solana.PublicKeyFromBytes(data[40:72])
	d.TokenConversionRate = binary.LittleEndian.Uint32(data[72:])
	d.DiscountFeeRate = binary.LittleEndian.Uint32(data[76:])
	d.DiscountTokenRateOverTokenA = binary.LittleEndian.Uint64(data[80:])
	d.Expo = data[88]
	return nil
}

// DeriveDiscountInfoPDA derives the discount-info account address for a
// pool and discount token mint.
func DeriveDiscountInfoPDA(whirlpool, discountToken solana.PublicKey) (solana.PublicKey, error) {
	pda, _, err := solana.FindProgramAddress(
		[][]byte{[]byte(DISCOUNT_INFO_SEED), whirlpool.Bytes(), discountToken.Bytes()},
		NEMOSWAP_PROGRAM_ID,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive discount info PDA: %w", err)
	}
	return pda, nil
}

// FeeDiscountSwapQuote augments a base quote with the discount-token burn.
// The base fee is unchanged: the discount is a secondary burn incentive,
// not a fee reduction in the traded currency.
type FeeDiscountSwapQuote struct {
	SwapQuote

	// EstimatedDiscountAmount is the discounted fee portion, in token A.
	EstimatedDiscountAmount math.Int
	// EstimatedBurnAmount is the discount-token quantity burned.
	EstimatedBurnAmount math.Int
}

// SwapQuoteWithFeeDiscount simulates a trade and layers the discount-token
// burn on top of the base quote.
//
// The fee currency follows the trade mode: the input side for exact-input
// trades, the output side for exact-output trades. Fees accrued in token B
// are first converted to token A terms through the pool's current price.
// Every division floors, so ties always favor the pool.
func (p *Whirlpool) SwapQuoteWithFeeDiscount(params SwapQuoteParams, info *WhirlpoolDiscountInfo) (*FeeDiscountSwapQuote, error) {
	if info == nil {
		return nil, fmt.Errorf("%w: nil discount info", ErrInvalidAccountData)
	}
	if !info.Whirlpool.IsZero() && !info.Whirlpool.Equals(p.Address) {
		return nil, fmt.Errorf("%w: discount info belongs to pool %s", ErrInvalidAccountData, info.Whirlpool)
	}

	base, err := p.SwapQuote(params)
	if err != nil {
		return nil, err
	}

	feeInA := base.EstimatedFeeAmount
	feeIsTokenA := params.AToB == params.AmountSpecifiedIsInput
	if !feeIsTokenA {
		feeInA = convertBToA(base.EstimatedFeeAmount, p.SqrtPriceInt())
	}

	conversionRate := math.NewInt(int64(info.TokenConversionRate))
	discountFeeRate := math.NewInt(int64(info.DiscountFeeRate))

	discountableFee := feeInA.Mul(conversionRate).Quo(DISCOUNT_RATE_DENOMINATOR)
	discountFee := discountableFee.Mul(discountFeeRate).Quo(DISCOUNT_RATE_DENOMINATOR)

	burnAmount := math.ZeroInt()
	if discountFee.IsPositive() {
		if info.DiscountTokenRateOverTokenA == 0 {
			return nil, fmt.Errorf("%w: zero discount token rate", ErrArithmeticOverflow)
		}
		expo := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(info.Expo)), nil)
		rate := new(big.Int).SetUint64(info.DiscountTokenRateOverTokenA)
		burn := new(big.Int).Mul(discountFee.BigInt(), expo)
		burnAmount = math.NewIntFromBigInt(burn.Quo(burn, rate))
	}

	return &FeeDiscountSwapQuote{
		SwapQuote:               *base,
		EstimatedDiscountAmount: discountFee,
		EstimatedBurnAmount:     burnAmount,
	}, nil
}

// convertBToA converts a token B amount into token A terms at the pool's
// current price: amountA = amountB * 2^128 / sqrtPrice^2, floored.
func convertBToA(amountB, sqrtPrice math.Int) math.Int {
	priceSquared := new(big.Int).Mul(sqrtPrice.BigInt(), sqrtPrice.BigInt())
	scaled := new(big.Int).Mul(amountB.BigInt(), Q128.BigInt())
	return math.NewIntFromBigInt(scaled.Quo(scaled, priceSquared))
}

// FetchDiscountInfo loads the discount-info account for a pool and a
// discount token mint.
func (p *Whirlpool) FetchDiscountInfo(ctx context.Context, client *rpc.Client, discountToken solana.PublicKey) (*WhirlpoolDiscountInfo, error) {
	pda, err := DeriveDiscountInfoPDA(p.Address, discountToken)
	if err != nil {
		return nil, err
	}
	acct, err := client.GetAccountInfo(ctx, pda)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch discount info %s: %w", pda, err)
	}

	info := &WhirlpoolDiscountInfo{Address: pda}
	if err := info.Decode(acct.Value.Data.GetBinary()); err != nil {
		return nil, err
	}
	return info, nil
}
