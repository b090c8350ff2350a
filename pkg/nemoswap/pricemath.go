package nemoswap

import (
	"fmt"
	"math/big"

	"cosmossdk.io/math"
	"github.com/shopspring/decimal"
)

// Q64.64 magic constants for sqrt(1.0001)^(2^k), k = 0..18, used by the
// per-bit decomposition in SqrtPriceFromTick.
var tickBitRatios = [19]math.Int{
	mustInt("18445821805675395072"),
	mustInt("18444899583751176192"),
	mustInt("18443055278223355904"),
	mustInt("18439367220385607680"),
	mustInt("18431993317065453568"),
	mustInt("18417254355718170624"),
	mustInt("18387811781193609216"),
	mustInt("18329067761203558400"),
	mustInt("18212142134806163456"),
	mustInt("17980523815641700352"),
	mustInt("17526086738831433728"),
	mustInt("16651378430235570176"),
	mustInt("15030750278694412288"),
	mustInt("12247334978884435968"),
	mustInt("8131365268886854656"),
	mustInt("3584323654725218816"),
	mustInt("696457651848324352"),
	mustInt("26294789957507116"),
	mustInt("37481735321082"),
}

// Constants for the log2-based TickFromSqrtPrice.
var (
	bitPrecision           = 14
	logB2X32               = mustInt("59543866431248")
	logBPErrMarginLowerX64 = mustInt("184467440737095516")
	logBPErrMarginUpperX64 = mustInt("15793534762490258745")
)

func mustInt(s string) math.Int {
	v, ok := math.NewIntFromString(s)
	if !ok {
		panic("bad integer constant: " + s)
	}
	return v
}

func mulRightShift64(val, mulBy math.Int) math.Int {
	return val.Mul(mulBy).Quo(Q64)
}

// SqrtPriceFromTick returns the Q64.64 sqrt price for a tick index.
func SqrtPriceFromTick(tick int32) (math.Int, error) {
	if tick < MIN_TICK || tick > MAX_TICK {
		return math.Int{}, fmt.Errorf("%w: tick %d", ErrOutOfBounds, tick)
	}

	tickAbs := tick
	if tickAbs < 0 {
		tickAbs = -tickAbs
	}

	ratio := Q64
	if tickAbs&0x1 != 0 {
		ratio = tickBitRatios[0]
	}
	for bit := 1; bit < len(tickBitRatios); bit++ {
		if tickAbs&(1<<uint(bit)) != 0 {
			ratio = mulRightShift64(ratio, tickBitRatios[bit])
		}
	}

	if tick > 0 {
		ratio = MaxUint128.Quo(ratio)
	}
	return ratio, nil
}

// TickFromSqrtPrice returns the tick index whose price range contains the
// given Q64.64 sqrt price. Inverse of SqrtPriceFromTick up to tick
// granularity.
func TickFromSqrtPrice(sqrtPriceX64 math.Int) (int32, error) {
	if sqrtPriceX64.GT(MAX_SQRT_PRICE_X64) || sqrtPriceX64.LT(MIN_SQRT_PRICE_X64) {
		return 0, fmt.Errorf("%w: sqrt price %s", ErrOutOfBounds, sqrtPriceX64)
	}

	msb := sqrtPriceX64.BigInt().BitLen() - 1
	log2pIntegerX32 := new(big.Int).Lsh(big.NewInt(int64(msb-64)), 32)

	// Fixed-point fractional refinement of log2(p) by repeated squaring.
	var r *big.Int
	if msb >= 64 {
		r = new(big.Int).Rsh(sqrtPriceX64.BigInt(), uint(msb-63))
	} else {
		r = new(big.Int).Lsh(sqrtPriceX64.BigInt(), uint(63-msb))
	}

	bit, _ := new(big.Int).SetString("8000000000000000", 16)
	log2pFractionX64 := big.NewInt(0)
	for precision := 0; bit.Sign() > 0 && precision < bitPrecision; precision++ {
		r.Mul(r, r)
		rMoreThanTwo := new(big.Int).Rsh(r, 127)
		r.Rsh(r, uint(63+rMoreThanTwo.Int64()))
		log2pFractionX64.Add(log2pFractionX64, new(big.Int).Mul(bit, rMoreThanTwo))
		bit.Rsh(bit, 1)
	}

	log2pFractionX32 := new(big.Int).Rsh(log2pFractionX64, 32)
	log2pX32 := new(big.Int).Add(log2pIntegerX32, log2pFractionX32)
	logbpX64 := new(big.Int).Mul(log2pX32, logB2X32.BigInt())

	tickLow := new(big.Int).Rsh(
		new(big.Int).Sub(logbpX64, logBPErrMarginLowerX64.BigInt()), 64).Int64()
	tickHigh := new(big.Int).Rsh(
		new(big.Int).Add(logbpX64, logBPErrMarginUpperX64.BigInt()), 64).Int64()

	if tickLow == tickHigh {
		return int32(tickLow), nil
	}

	derived, err := SqrtPriceFromTick(int32(tickHigh))
	if err != nil {
		return 0, err
	}
	if derived.LTE(sqrtPriceX64) {
		return int32(tickHigh), nil
	}
	return int32(tickLow), nil
}

// PriceToSqrtPrice converts a decimal price of token B per token A into the
// pool's Q64.64 sqrt-price representation, adjusting for mint decimals.
func PriceToSqrtPrice(price decimal.Decimal, decimalsA, decimalsB uint8) (math.Int, error) {
	if !price.IsPositive() {
		return math.Int{}, fmt.Errorf("%w: price %s", ErrOutOfBounds, price)
	}
	shifted := price.Mul(decimal.New(1, int32(decimalsB)-int32(decimalsA)))

	rat := new(big.Rat)
	if exp := shifted.Exponent(); exp >= 0 {
		rat.SetInt(new(big.Int).Mul(shifted.Coefficient(), exp10(exp)))
	} else {
		rat.SetFrac(shifted.Coefficient(), exp10(-exp))
	}
	f := new(big.Float).SetPrec(192)
	f.SetRat(rat)
	f.Sqrt(f)
	f.Mul(f, new(big.Float).SetInt(Q64.BigInt()))

	out, _ := f.Int(nil)
	sqrtPrice := math.NewIntFromBigInt(out)
	if sqrtPrice.LT(MIN_SQRT_PRICE_X64) || sqrtPrice.GT(MAX_SQRT_PRICE_X64) {
		return math.Int{}, fmt.Errorf("%w: price %s", ErrOutOfBounds, price)
	}
	return sqrtPrice, nil
}

// PriceToTickIndex converts a decimal price into the closest tick index.
func PriceToTickIndex(price decimal.Decimal, decimalsA, decimalsB uint8) (int32, error) {
	sqrtPrice, err := PriceToSqrtPrice(price, decimalsA, decimalsB)
	if err != nil {
		return 0, err
	}
	return TickFromSqrtPrice(sqrtPrice)
}

// PriceToInitializableTickIndex converts a decimal price into a tick index
// aligned to the pool's tick spacing. roundUp selects which neighbouring
// initializable tick to take when the price lands between two of them.
func PriceToInitializableTickIndex(price decimal.Decimal, decimalsA, decimalsB uint8, tickSpacing uint16, roundUp bool) (int32, error) {
	tick, err := PriceToTickIndex(price, decimalsA, decimalsB)
	if err != nil {
		return 0, err
	}
	spacing := int32(tickSpacing)
	rem := tick % spacing
	if rem < 0 {
		rem += spacing
	}
	aligned := tick - rem
	if roundUp && rem != 0 {
		aligned += spacing
	}
	if aligned < MIN_TICK || aligned > MAX_TICK {
		return 0, fmt.Errorf("%w: tick %d", ErrOutOfBounds, aligned)
	}
	return aligned, nil
}

// TickIndexToPrice converts a tick index back into a decimal price of token
// B per token A, adjusted for mint decimals.
func TickIndexToPrice(tick int32, decimalsA, decimalsB uint8) (decimal.Decimal, error) {
	sqrtPrice, err := SqrtPriceFromTick(tick)
	if err != nil {
		return decimal.Decimal{}, err
	}
	d := decimal.NewFromBigInt(sqrtPrice.BigInt(), 0).
		Div(decimal.NewFromBigInt(Q64.BigInt(), 0))
	return d.Mul(d).Mul(decimal.New(1, int32(decimalsA)-int32(decimalsB))), nil
}

func exp10(n int32) *big.Int {
	if n < 0 {
		n = 0
	}
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}
