package router

import (
	"fmt"

	"cosmossdk.io/math"

	"github.com/renec-chain/nemo-swap-sub000/pkg/nemoswap"
)

// TwoHopQuote is the composition of two single-pool quotes whose legs chain
// exactly. Per-leg details (fees, thresholds, end prices) stay on the legs;
// only the route-level totals are lifted here.
type TwoHopQuote struct {
	One *nemoswap.SwapQuote
	Two *nemoswap.SwapQuote

	AmountSpecifiedIsInput bool
	EstimatedAmountIn      math.Int
	EstimatedAmountOut     math.Int
}

// ComposeTwoHop validates that two quotes form an executable route: the
// first leg's output currency and amount must match the second leg's input
// exactly, with no intermediate amount left behind or conjured. Amount
// mismatches are not rounded away; the caller must re-quote a leg instead.
func ComposeTwoHop(one, two *nemoswap.SwapQuote) (*TwoHopQuote, error) {
	if one == nil || two == nil {
		return nil, fmt.Errorf("%w: nil leg", nemoswap.ErrRouteMismatch)
	}
	if one.AmountSpecifiedIsInput != two.AmountSpecifiedIsInput {
		return nil, fmt.Errorf("%w: legs specify different swap modes", nemoswap.ErrRouteMismatch)
	}
	if !one.OutputMint.Equals(two.InputMint) {
		return nil, fmt.Errorf("%w: leg one outputs %s, leg two consumes %s",
			nemoswap.ErrRouteMismatch, one.OutputMint, two.InputMint)
	}
	if !one.EstimatedAmountOut.Equal(two.EstimatedAmountIn) {
		return nil, fmt.Errorf("%w: leg one yields %s, leg two requires %s",
			nemoswap.ErrRouteMismatch, one.EstimatedAmountOut, two.EstimatedAmountIn)
	}

	return &TwoHopQuote{
		One:                    one,
		Two:                    two,
		AmountSpecifiedIsInput: one.AmountSpecifiedIsInput,
		EstimatedAmountIn:      one.EstimatedAmountIn,
		EstimatedAmountOut:     two.EstimatedAmountOut,
	}, nil
}

// RouteQuote is an N-leg route built by folding the two-hop chaining rule.
type RouteQuote struct {
	Legs []*nemoswap.SwapQuote

	AmountSpecifiedIsInput bool
	EstimatedAmountIn      math.Int
	EstimatedAmountOut     math.Int
}

// ComposeRoute chains an arbitrary number of legs under the same rule as
// ComposeTwoHop, applied pairwise in order.
func ComposeRoute(legs ...*nemoswap.SwapQuote) (*RouteQuote, error) {
	if len(legs) == 0 || legs[0] == nil {
		return nil, fmt.Errorf("%w: empty route", nemoswap.ErrRouteMismatch)
	}
	for i := 1; i < len(legs); i++ {
		if _, err := ComposeTwoHop(legs[i-1], legs[i]); err != nil {
			return nil, fmt.Errorf("leg %d: %w", i, err)
		}
	}
	return &RouteQuote{
		Legs:                   legs,
		AmountSpecifiedIsInput: legs[0].AmountSpecifiedIsInput,
		EstimatedAmountIn:      legs[0].EstimatedAmountIn,
		EstimatedAmountOut:     legs[len(legs)-1].EstimatedAmountOut,
	}, nil
}
