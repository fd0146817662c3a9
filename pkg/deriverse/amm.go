// Package deriverse prices token swaps against a Deriverse spot venue, which
// pools liquidity from a constant-product AMM and a price-ordered limit order
// book. The package is pure: it decodes a point-in-time snapshot of the
// venue's accounts and simulates execution without performing any I/O or
// mutating the snapshot.
package deriverse

import (
	"fmt"
	"math"
	"math/big"

	"github.com/nulln0ne/deriverse-estimator/pkg/safe"
)

// Side of a resting order line.
type Side uint8

const (
	SideBid Side = iota
	SideAsk
)

func (s Side) String() string {
	if s == SideBid {
		return "bid"
	}
	return "ask"
}

const (
	// PriceScale is the global fixed-point scale for prices: a price of
	// 10.5 is stored as 10.5 * PriceScale.
	PriceScale int64 = 1_000_000_000

	// MaxPrice caps a price when the curve has no asset reserve left to
	// quote against ("infinite" price sentinel).
	MaxPrice int64 = math.MaxInt64 >> 1
)

// maxSum bounds any single notional; larger values indicate a corrupted or
// nonsensical snapshot.
const maxSum = float64(math.MaxInt64 >> 1)

// DecFactor returns 10^decimals as an int64 scaling factor.
func DecFactor(decimals uint8) int64 {
	f := int64(1)
	for i := uint8(0); i < decimals; i++ {
		f *= 10
	}
	return f
}

// Amm holds the constant-product curve state for one quote simulation. The
// invariant product k is fixed at snapshot time; AssetTokens and CrncyTokens
// are a private working copy that the quote engine moves along the curve.
type Amm struct {
	k           *big.Int
	kf          float64
	AssetTokens int64
	CrncyTokens int64
	df          float64
	rdf         float64
}

// NewAmm derives the curve state from a decoded instrument header.
func NewAmm(h *InstrumentHeader) Amm {
	k := new(big.Int).Mul(big.NewInt(h.AssetTokens), big.NewInt(h.CrncyTokens))
	kf, _ := new(big.Float).SetInt(k).Float64()
	return Amm{
		k:           k,
		kf:          kf,
		AssetTokens: h.AssetTokens,
		CrncyTokens: h.CrncyTokens,
		df:          float64(h.DecFactor),
		rdf:         1 / float64(h.DecFactor),
	}
}

// satInt64 converts a float64 to int64 with saturation: NaN maps to zero,
// out-of-range values clamp to the int64 bounds, everything else truncates
// toward zero.
func satInt64(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= float64(math.MaxInt64):
		return math.MaxInt64
	case f <= float64(math.MinInt64):
		return math.MinInt64
	}
	return int64(f)
}

// TradeSum is the notional of qty traded at px, in currency minor units,
// truncated toward zero.
func (a *Amm) TradeSum(qty, px int64) (int64, error) {
	sum := float64(qty) * float64(px) * a.rdf
	if math.Signbit(sum) || math.IsNaN(sum) || sum > maxSum {
		return 0, fmt.Errorf("trade sum out of range: %w", ErrArithmeticOverflow)
	}
	return int64(sum), nil
}

// QtyToPrice inverts the curve: how much asset quantity the AMM absorbs
// before its instantaneous price reaches px on the given side. Floored at
// zero.
func (a *Amm) QtyToPrice(px int64, side Side) (int64, error) {
	root := satInt64(math.Sqrt(a.kf * a.df / float64(px)))
	var q int64
	var ok bool
	if side == SideBid {
		q, ok = safe.Sub(root, a.AssetTokens)
	} else {
		q, ok = safe.Sub(a.AssetTokens, root)
	}
	if !ok {
		return 0, fmt.Errorf("qty to price %d: %w", px, ErrArithmeticOverflow)
	}
	return max(q, 0), nil
}

// PxAfterQty is the curve's price after hypothetically trading qty on the
// given side. Selling the entire asset reserve (or more) yields MaxPrice
// rather than a division by a non-positive reserve.
func (a *Amm) PxAfterQty(qty int64, side Side) (int64, error) {
	if side == SideAsk && qty >= a.AssetTokens {
		return MaxPrice, nil
	}
	var nt int64
	var ok bool
	if side == SideBid {
		nt, ok = safe.Add(a.AssetTokens, qty)
	} else {
		nt, ok = safe.Sub(a.AssetTokens, qty)
	}
	if !ok {
		return 0, fmt.Errorf("px after qty %d: %w", qty, ErrArithmeticOverflow)
	}
	return satInt64(a.kf * a.df / (float64(nt) * float64(nt))), nil
}

// SumForQty is the notional the curve realizes for trading qty on the given
// side, via crncy - k/(asset±qty). Floored at zero; a non-positive adjusted
// reserve yields zero.
func (a *Amm) SumForQty(qty int64, side Side) (int64, error) {
	if side == SideBid {
		if a.AssetTokens == 0 {
			return 0, nil
		}
		nt, ok := safe.Add(a.AssetTokens, qty)
		if !ok || nt <= 0 {
			return 0, fmt.Errorf("sum for qty %d: %w", qty, ErrArithmeticOverflow)
		}
		sum := new(big.Int).Sub(big.NewInt(a.CrncyTokens), new(big.Int).Quo(a.k, big.NewInt(nt)))
		return clampSum(sum)
	}
	nt := a.AssetTokens - qty
	if nt <= 0 {
		return 0, nil
	}
	sum := new(big.Int).Sub(new(big.Int).Quo(a.k, big.NewInt(nt)), big.NewInt(a.CrncyTokens))
	return clampSum(sum)
}

func clampSum(sum *big.Int) (int64, error) {
	if sum.Sign() < 0 {
		return 0, nil
	}
	if !sum.IsInt64() {
		return 0, fmt.Errorf("amm sum exceeds int64: %w", ErrArithmeticOverflow)
	}
	return sum.Int64(), nil
}

// PxAfterSum is the curve's price after absorbing sum currency minor units
// on the buy side (the notional-budget dual of PxAfterQty).
func (a *Amm) PxAfterSum(sum int64) (int64, error) {
	if a.CrncyTokens == 0 {
		return MaxPrice, nil
	}
	nc, ok := safe.Add(a.CrncyTokens, sum)
	if !ok {
		return 0, fmt.Errorf("px after sum %d: %w", sum, ErrArithmeticOverflow)
	}
	return satInt64(float64(nc) * float64(nc) * a.df / a.kf), nil
}

// QtyForSum is the asset quantity released by the curve for spending sum
// currency minor units on the buy side.
func (a *Amm) QtyForSum(sum int64) (int64, error) {
	if a.CrncyTokens == 0 {
		return 0, nil
	}
	nc, ok := safe.Add(a.CrncyTokens, sum)
	if !ok {
		return 0, fmt.Errorf("qty for sum %d: %w", sum, ErrArithmeticOverflow)
	}
	div := new(big.Int).Quo(a.k, big.NewInt(nc))
	if !div.IsInt64() {
		return 0, fmt.Errorf("qty for sum %d: %w", sum, ErrArithmeticOverflow)
	}
	q, ok := safe.Sub(a.AssetTokens, div.Int64())
	if !ok {
		return 0, fmt.Errorf("qty for sum %d: %w", sum, ErrArithmeticOverflow)
	}
	return q, nil
}

// SumToPrice is the currency notional the curve absorbs before its price
// reaches px on the buy side. Floored at zero.
func (a *Amm) SumToPrice(px int64) (int64, error) {
	if a.CrncyTokens == 0 {
		return 0, nil
	}
	root := satInt64(math.Sqrt(a.kf * float64(px) / a.df))
	d, ok := safe.Sub(a.CrncyTokens, root)
	if !ok {
		return 0, fmt.Errorf("sum to price %d: %w", px, ErrArithmeticOverflow)
	}
	return max(-d, 0), nil
}

// partialFill reports whether the execution price bound is more aggressive
// than the price the curve would naturally reach for the remaining budget,
// so only a bound-capped portion can fill.
func partialFill(ammPx, boundPx int64, side Side) bool {
	if side == SideBid {
		return ammPx < boundPx
	}
	return ammPx > boundPx
}

// lastLine reports whether the curve's price already dominates the line, so
// the line cannot contribute and the remainder settles on the curve alone.
func lastLine(ammPx, linePx int64, side Side) bool {
	if side == SideBid {
		return ammPx >= linePx
	}
	return ammPx <= linePx
}

// coverLine reports whether consuming the budget leaves both the curve price
// and the bound on the taker's side of the line, so the whole line fills.
func coverLine(ammPx, boundPx, linePx int64, side Side) bool {
	if side == SideBid {
		return max(ammPx, boundPx) <= linePx
	}
	return min(ammPx, boundPx) >= linePx
}

// lineUnreachable reports whether the bound stops execution strictly before
// the line's price.
func lineUnreachable(boundPx, linePx int64, side Side) bool {
	if side == SideBid {
		return boundPx > linePx
	}
	return boundPx < linePx
}
