package nemoswap

import "errors"

// Quote computations either fully succeed or fail with one of these.
// Callers should treat every one of them as "cannot quote this trade right
// now" rather than something to retry blindly; the tick-array errors in
// particular mean the caller has to fetch a wider window first.
var (
	// ErrOutOfBounds is returned when a tick index or sqrt price falls
	// outside the globally supported range.
	ErrOutOfBounds = errors.New("tick or sqrt price out of bounds")

	// ErrMissingTickArray is returned when the supplied tick-array window
	// has a gap or does not cover the traversal origin.
	ErrMissingTickArray = errors.New("missing tick array")

	// ErrInsufficientTickArrayData is returned when a swap walks past the
	// end of the supplied tick-array window with amount still remaining.
	ErrInsufficientTickArrayData = errors.New("insufficient tick array data")

	// ErrArithmeticOverflow is returned when fixed-point math would exceed
	// the representable range. Results are never silently wrapped.
	ErrArithmeticOverflow = errors.New("arithmetic overflow")

	// ErrRouteMismatch is returned when two quotes do not chain into a
	// valid multi-hop route.
	ErrRouteMismatch = errors.New("route mismatch")

	// ErrZeroTradableAmount is returned for zero-amount swap requests.
	ErrZeroTradableAmount = errors.New("zero tradable amount")

	// ErrInvalidAccountData is returned when account bytes fail to decode.
	ErrInvalidAccountData = errors.New("invalid account data")

	// ErrPoolDisabled is returned when quoting against a pool snapshot
	// that is not tradable.
	ErrPoolDisabled = errors.New("pool disabled")
)
