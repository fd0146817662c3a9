package deriverse

import "errors"

var (
	// ErrArithmeticOverflow is returned when a checked numeric step of a
	// simulation overflows int64, or a bounds guard such as the maximum
	// notional check trips.
	ErrArithmeticOverflow = errors.New("arithmetic overflow")

	// ErrUnsupportedMode is returned for any swap mode other than exact-in.
	ErrUnsupportedMode = errors.New("swap mode is not supported")

	// ErrSwapFailed is returned when a simulated swap moves zero tokens on
	// either side, i.e. there is no viable liquidity for the request.
	ErrSwapFailed = errors.New("swap failed")

	// ErrInvalidAccount is returned when a required account is absent from
	// the supplied snapshot, or its data is shorter than the declared
	// record layout.
	ErrInvalidAccount = errors.New("missing or invalid account")
)
