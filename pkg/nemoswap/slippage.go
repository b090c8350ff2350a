package nemoswap

import (
	"fmt"

	"cosmossdk.io/math"
)

// Percentage is an exact rational tolerance, avoiding any float rounding in
// threshold computation.
type Percentage struct {
	Numerator   math.Int
	Denominator math.Int
}

// PercentageFromBps builds a tolerance from basis points (10000 = 100%).
func PercentageFromBps(bps uint16) Percentage {
	return Percentage{Numerator: math.NewInt(int64(bps)), Denominator: math.NewInt(10000)}
}

// PercentageFromFraction builds a tolerance from an arbitrary fraction.
func PercentageFromFraction(numerator, denominator int64) Percentage {
	return Percentage{Numerator: math.NewInt(numerator), Denominator: math.NewInt(denominator)}
}

// ZeroPercentage is the no-tolerance value.
func ZeroPercentage() Percentage {
	return Percentage{Numerator: math.ZeroInt(), Denominator: math.OneInt()}
}

func (p Percentage) normalized() (Percentage, error) {
	if p.Numerator.IsNil() && p.Denominator.IsNil() {
		return ZeroPercentage(), nil
	}
	if p.Denominator.IsNil() || p.Denominator.IsZero() {
		return Percentage{}, fmt.Errorf("%w: zero slippage denominator", ErrArithmeticOverflow)
	}
	if p.Numerator.IsNil() {
		p.Numerator = math.ZeroInt()
	}
	if p.Numerator.IsNegative() || p.Numerator.GT(p.Denominator) {
		return Percentage{}, fmt.Errorf("%w: slippage %s/%s outside [0,1]",
			ErrOutOfBounds, p.Numerator, p.Denominator)
	}
	return p, nil
}

// AdjustDown returns floor(amount * (1 - p)), the minimum-receipt bound for
// an exact-input trade.
func (p Percentage) AdjustDown(amount math.Int) (math.Int, error) {
	pct, err := p.normalized()
	if err != nil {
		return math.Int{}, err
	}
	return amount.Mul(pct.Denominator.Sub(pct.Numerator)).Quo(pct.Denominator), nil
}

// AdjustUp returns ceil(amount * (1 + p)), the maximum-payment bound for an
// exact-output trade.
func (p Percentage) AdjustUp(amount math.Int) (math.Int, error) {
	pct, err := p.normalized()
	if err != nil {
		return math.Int{}, err
	}
	numerator := amount.Mul(pct.Denominator.Add(pct.Numerator))
	return numerator.Add(pct.Denominator.SubRaw(1)).Quo(pct.Denominator), nil
}
