package nemoswap

import (
	"math/big"

	"cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"
)

// Program IDs
var (
	// nemo-swap program (Whirlpool lineage); override via NEMOSWAP_PROGRAM_ID
	NEMOSWAP_PROGRAM_ID = solana.MustPublicKeyFromBase58("whirLbMiicVdio4qvUfM5KAg6Ct8VwpYzGff3uctyCc")

	TOKEN_PROGRAM_ID = solana.MustPublicKeyFromBase58("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	MEMO_PROGRAM_ID  = solana.MustPublicKeyFromBase58("MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr")
)

// Tick configuration
const (
	TICK_ARRAY_SIZE = 88
	MAX_TICK        = 443636
	MIN_TICK        = -443636
	U64Resolution   = 64

	// Serialized tick slot size inside a tick array account
	TickSize = 113
)

// Price bounds. These equal SqrtPriceFromTick(MIN_TICK) and
// SqrtPriceFromTick(MAX_TICK), keeping bound checks and tick math consistent.
var (
	MIN_SQRT_PRICE_X64    = math.NewIntFromBigInt(big.NewInt(4295048016))
	MAX_SQRT_PRICE_X64, _ = math.NewIntFromString("79226673521066979257578248091")
)

// Fee configuration
var (
	FEE_RATE_DENOMINATOR          = math.NewInt(1000000)
	PROTOCOL_FEE_RATE_DENOMINATOR = math.NewInt(10000)

	// Fee-discount rates are expressed over the same ppm denominator
	DISCOUNT_RATE_DENOMINATOR = math.NewInt(1000000)
)

// Account sizes (including the 8-byte discriminator)
const (
	WHIRLPOOL_SIZE     = 653
	TICK_ARRAY_ACCOUNT = 8 + 4 + TICK_ARRAY_SIZE*TickSize + 32
)

// PDA seeds
var (
	WHIRLPOOL_SEED     = "whirlpool"
	TICK_ARRAY_SEED    = "tick_array"
	ORACLE_SEED        = "oracle"
	DISCOUNT_INFO_SEED = "whirlpool_discount_info"
)

// Anchor account discriminators
var (
	WhirlpoolDiscriminator    = []byte{63, 149, 209, 12, 225, 128, 99, 9}
	TickArrayDiscriminator    = []byte{69, 97, 189, 190, 110, 7, 66, 187}
	DiscountInfoDiscriminator = []byte{175, 122, 194, 244, 151, 140, 173, 64}
)

// Anchor instruction discriminators
var (
	SwapDiscriminator                      = []byte{248, 198, 158, 145, 225, 117, 135, 200}
	SwapWithFeeDiscountDiscriminator       = []byte{127, 239, 210, 196, 100, 246, 138, 102}
	TwoHopSwapDiscriminator                = []byte{195, 96, 237, 108, 68, 162, 219, 230}
	TwoHopSwapWithFeeDiscountDiscriminator = []byte{243, 99, 196, 43, 61, 237, 161, 149}
)

// Common tick spacings deployed for this program
const (
	TICK_SPACING_STABLE   = 1
	TICK_SPACING_STANDARD = 64
	TICK_SPACING_VOLATILE = 128
)

// Fixed-point helpers
var (
	Q64  = math.NewIntFromBigInt(new(big.Int).Lsh(big.NewInt(1), 64))
	Q128 = math.NewIntFromBigInt(new(big.Int).Lsh(big.NewInt(1), 128))

	MaxUint128 = math.NewIntFromBigInt(new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1)))
	MaxUint64  = math.NewIntFromBigInt(new(big.Int).SetUint64(^uint64(0)))
)
