package deriverse

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"

	"github.com/nulln0ne/deriverse-estimator/pkg/safe"
)

// SwapMode selects how a quote request fixes its amount.
type SwapMode uint8

const (
	// ExactIn fixes the amount supplied; the engine computes the amount
	// received. This is the only supported mode.
	ExactIn SwapMode = iota
	ExactOut
)

// QuoteParams is one exact-in quote request.
type QuoteParams struct {
	InputMint  solana.PublicKey
	OutputMint solana.PublicKey
	Amount     uint64
	Mode       SwapMode
}

// Quote is the simulated result of a swap: amounts actually consumed and
// produced, and the fee taken in the currency token.
type Quote struct {
	InAmount  uint64
	OutAmount uint64
	FeeAmount uint64
	FeeMint   solana.PublicKey
	FeePct    decimal.Decimal
}

func accAdd(dst *int64, delta int64) error {
	v, ok := safe.Add(*dst, delta)
	if !ok {
		return fmt.Errorf("fill accumulation: %w", ErrArithmeticOverflow)
	}
	*dst = v
	return nil
}

func accSub(dst *int64, delta int64) error {
	v, ok := safe.Sub(*dst, delta)
	if !ok {
		return fmt.Errorf("fill accumulation: %w", ErrArithmeticOverflow)
	}
	*dst = v
	return nil
}

// Quote simulates an exact-in swap against the venue's snapshot and reports
// the resulting amounts. The simulation walks the book's levels in price
// order interleaved with the AMM curve, consuming whichever source offers
// the better price, bounded by an execution price one eighth away from the
// current market price. Nothing persisted is touched: the AMM reserves move
// on a local copy only.
func (v *Venue) Quote(params QuoteParams) (*Quote, error) {
	if params.Mode != ExactIn {
		return nil, fmt.Errorf("mode %d: %w", params.Mode, ErrUnsupportedMode)
	}

	amm := v.Amm
	buy := v.CrncyToken.Address == params.InputMint

	px := v.Header.MarketPx()
	maxDiff := px >> 3
	bound := px - maxDiff
	if buy {
		bound = px + maxDiff
	}

	feeRate := v.Header.DayVolatility * v.FeeRateFactor
	amount := int64(params.Amount)

	var clientTokens, clientMints, feeAmount int64

	switch {
	case buy && (bound > px || v.Book.Crosses(bound, SideAsk)):
		qty, remaining, fees, err := fillBuy(&amm, &v.Book, amount, bound, feeRate)
		if err != nil {
			return nil, err
		}
		clientTokens += qty
		clientMints -= amount - remaining
		clientMints -= fees
		feeAmount = fees

	case !buy && (bound < px || v.Book.Crosses(bound, SideBid)):
		remaining, sum, fees, err := fillSell(&amm, &v.Book, amount, bound, feeRate)
		if err != nil {
			return nil, err
		}
		clientTokens -= amount - remaining
		clientMints += sum
		clientMints -= fees
		feeAmount = fees
	}

	if clientTokens == 0 || clientMints == 0 {
		return nil, fmt.Errorf("no viable liquidity: %w", ErrSwapFailed)
	}

	if buy {
		return &Quote{
			InAmount:  uint64(-clientMints),
			OutAmount: uint64(clientTokens),
			FeeAmount: uint64(feeAmount),
			FeeMint:   v.CrncyToken.Address,
			FeePct:    decimal.NewFromInt(feeAmount).Div(decimal.NewFromInt(-clientMints)),
		}, nil
	}
	return &Quote{
		InAmount:  uint64(-clientTokens),
		OutAmount: uint64(clientMints),
		FeeAmount: uint64(feeAmount),
		FeeMint:   v.CrncyToken.Address,
		FeePct:    decimal.NewFromInt(feeAmount).Div(decimal.NewFromInt(clientMints)),
	}, nil
}

// fillBuy consumes a currency budget against the ask side and the curve.
// The fee is carved out of the budget up front, so the budget tracked in
// the loop is net of fees. Returns the asset quantity acquired, the
// unconsumed part of the net budget, and the accrued fee.
func fillBuy(amm *Amm, book *OrderBook, amount, bound int64, feeRate float64) (qty, remaining, fees int64, err error) {
	remaining = satInt64(float64(amount) / (1 + feeRate))

	applyAmm := func(q, s int64) error {
		if err := accAdd(&qty, q); err != nil {
			return err
		}
		if err := accSub(&amm.AssetTokens, q); err != nil {
			return err
		}
		return accAdd(&amm.CrncyTokens, s)
	}
	addFee := func(s int64) error {
		return accAdd(&fees, satInt64(float64(s)*feeRate))
	}

	lines := book.Asks()
	for {
		_, line, hasLine := lines.Next()

		ammPx, err := amm.PxAfterSum(remaining)
		if err != nil {
			return 0, 0, 0, err
		}

		if !hasLine {
			var tradedQty, tradedSum int64
			if partialFill(ammPx, bound, SideAsk) {
				if tradedQty, err = amm.QtyToPrice(bound, SideAsk); err != nil {
					return 0, 0, 0, err
				}
				if tradedSum, err = amm.SumForQty(tradedQty, SideAsk); err != nil {
					return 0, 0, 0, err
				}
				if tradedQty == 0 || tradedSum == 0 {
					break
				}
			} else {
				if tradedQty, err = amm.QtyForSum(remaining); err != nil {
					return 0, 0, 0, err
				}
				if tradedQty == 0 {
					break
				}
				tradedSum = remaining
			}
			remaining -= tradedSum
			if err = applyAmm(tradedQty, tradedSum); err != nil {
				return 0, 0, 0, err
			}
			if err = addFee(tradedSum); err != nil {
				return 0, 0, 0, err
			}
			break
		}

		lineSum, err := amm.TradeSum(line.Qty, line.Price)
		if err != nil {
			return 0, 0, 0, err
		}

		// The whole remaining budget fits inside this level.
		if remaining <= lineSum {
			var tradedQty, tradedSum int64
			switch {
			case lastLine(ammPx, line.Price, SideAsk):
				if partialFill(ammPx, bound, SideAsk) {
					if tradedQty, err = amm.QtyToPrice(bound, SideAsk); err != nil {
						return 0, 0, 0, err
					}
					if tradedSum, err = amm.SumForQty(tradedQty, SideAsk); err != nil {
						return 0, 0, 0, err
					}
					if tradedQty == 0 || tradedSum == 0 {
						return qty, remaining, fees, nil
					}
				} else {
					if tradedQty, err = amm.QtyForSum(remaining); err != nil {
						return 0, 0, 0, err
					}
					if tradedQty == 0 {
						return qty, remaining, fees, nil
					}
					tradedSum = remaining
				}
				remaining -= tradedSum
				if err = applyAmm(tradedQty, tradedSum); err != nil {
					return 0, 0, 0, err
				}

			case lineUnreachable(bound, line.Price, SideAsk):
				if tradedQty, err = amm.QtyToPrice(bound, SideAsk); err != nil {
					return 0, 0, 0, err
				}
				if tradedSum, err = amm.SumForQty(tradedQty, SideAsk); err != nil {
					return 0, 0, 0, err
				}
				if tradedQty == 0 || tradedSum == 0 {
					return qty, remaining, fees, nil
				}
				remaining -= tradedSum
				if err = applyAmm(tradedQty, tradedSum); err != nil {
					return 0, 0, 0, err
				}

			default:
				// Ride the curve up to the level's price, then fill
				// the leftover directly against the level.
				if tradedQty, err = amm.QtyToPrice(line.Price, SideAsk); err != nil {
					return 0, 0, 0, err
				}
				if tradedSum, err = amm.SumForQty(tradedQty, SideAsk); err != nil {
					return 0, 0, 0, err
				}
				if tradedQty != 0 && tradedSum != 0 {
					remaining -= tradedSum
					if err = applyAmm(tradedQty, tradedSum); err != nil {
						return 0, 0, 0, err
					}
				}
				if remaining > 0 {
					fillQty := satInt64(float64(remaining) * amm.df / float64(line.Price))
					if err = accAdd(&qty, fillQty); err != nil {
						return 0, 0, 0, err
					}
					if err = accAdd(&fees, satInt64(float64(remaining)*feeRate)); err != nil {
						return 0, 0, 0, err
					}
					remaining = 0
				}
			}
			if tradedQty != 0 && tradedSum != 0 {
				if err = addFee(tradedSum); err != nil {
					return 0, 0, 0, err
				}
			}
			break
		}

		// The budget exceeds the level: if taking the whole level still
		// keeps the curve on the taker's side of it, consume it and move
		// to the next one.
		nextAmmPx, err := amm.PxAfterSum(remaining - lineSum)
		if err != nil {
			return 0, 0, 0, err
		}
		if coverLine(nextAmmPx, bound, line.Price, SideAsk) {
			if err = accAdd(&qty, line.Qty); err != nil {
				return 0, 0, 0, err
			}
			if err = accAdd(&fees, satInt64(float64(lineSum)*feeRate)); err != nil {
				return 0, 0, 0, err
			}
			remaining -= lineSum
			continue
		}

		// Crossing point: curve up to the better of bound and level
		// price, then the level itself if still covered.
		tradedSum, err := amm.SumToPrice(min(line.Price, bound))
		if err != nil {
			return 0, 0, 0, err
		}
		tradedSum = min(tradedSum, remaining)
		tradedQty, err := amm.QtyForSum(tradedSum)
		if err != nil {
			return 0, 0, 0, err
		}
		if tradedQty != 0 && tradedSum != 0 {
			remaining -= tradedSum
			if err = applyAmm(tradedQty, tradedSum); err != nil {
				return 0, 0, 0, err
			}
			if err = addFee(tradedSum); err != nil {
				return 0, 0, 0, err
			}
		}
		if coverLine(ammPx, bound, line.Price, SideAsk) {
			if err = accAdd(&qty, line.Qty); err != nil {
				return 0, 0, 0, err
			}
			if err = accAdd(&fees, satInt64(float64(lineSum)*feeRate)); err != nil {
				return 0, 0, 0, err
			}
			remaining -= lineSum
		}
		break
	}

	return qty, remaining, fees, nil
}

// fillSell consumes an asset-quantity budget against the bid side and the
// curve. Returns the unconsumed quantity, the currency notional realized,
// and the accrued fee.
func fillSell(amm *Amm, book *OrderBook, amount, bound int64, feeRate float64) (remaining, sum, fees int64, err error) {
	remaining = amount

	applyAmm := func(q, s int64) error {
		if err := accAdd(&sum, s); err != nil {
			return err
		}
		if err := accAdd(&amm.AssetTokens, q); err != nil {
			return err
		}
		return accSub(&amm.CrncyTokens, s)
	}
	addFee := func(s int64) error {
		return accAdd(&fees, satInt64(float64(s)*feeRate))
	}

	lines := book.Bids()
	for {
		_, line, hasLine := lines.Next()

		ammPx, err := amm.PxAfterQty(remaining, SideBid)
		if err != nil {
			return 0, 0, 0, err
		}

		if !hasLine {
			var tradedQty, tradedSum int64
			if partialFill(ammPx, bound, SideBid) {
				if tradedQty, err = amm.QtyToPrice(bound, SideBid); err != nil {
					return 0, 0, 0, err
				}
				if tradedSum, err = amm.SumForQty(tradedQty, SideBid); err != nil {
					return 0, 0, 0, err
				}
				if tradedQty == 0 || tradedSum == 0 {
					break
				}
			} else {
				if tradedSum, err = amm.SumForQty(remaining, SideBid); err != nil {
					return 0, 0, 0, err
				}
				if tradedSum == 0 {
					break
				}
				tradedQty = remaining
			}
			remaining -= tradedQty
			if err = applyAmm(tradedQty, tradedSum); err != nil {
				return 0, 0, 0, err
			}
			if err = addFee(tradedSum); err != nil {
				return 0, 0, 0, err
			}
			break
		}

		// The whole remaining quantity fits inside this level.
		if remaining <= line.Qty {
			var tradedQty, tradedSum int64
			switch {
			case lastLine(ammPx, line.Price, SideBid):
				if partialFill(ammPx, bound, SideBid) {
					if tradedQty, err = amm.QtyToPrice(bound, SideBid); err != nil {
						return 0, 0, 0, err
					}
					if tradedSum, err = amm.SumForQty(tradedQty, SideBid); err != nil {
						return 0, 0, 0, err
					}
					if tradedQty == 0 || tradedSum == 0 {
						return remaining, sum, fees, nil
					}
				} else {
					if tradedSum, err = amm.SumForQty(remaining, SideBid); err != nil {
						return 0, 0, 0, err
					}
					if tradedSum == 0 {
						return remaining, sum, fees, nil
					}
					tradedQty = remaining
				}
				remaining -= tradedQty
				if err = applyAmm(tradedQty, tradedSum); err != nil {
					return 0, 0, 0, err
				}

			case lineUnreachable(bound, line.Price, SideBid):
				if tradedQty, err = amm.QtyToPrice(bound, SideBid); err != nil {
					return 0, 0, 0, err
				}
				if tradedSum, err = amm.SumForQty(tradedQty, SideBid); err != nil {
					return 0, 0, 0, err
				}
				if tradedQty == 0 || tradedSum == 0 {
					return remaining, sum, fees, nil
				}
				remaining -= tradedQty
				if err = applyAmm(tradedQty, tradedSum); err != nil {
					return 0, 0, 0, err
				}

			default:
				// Ride the curve down to the level's price, then fill
				// the leftover directly against the level.
				if tradedQty, err = amm.QtyToPrice(line.Price, SideBid); err != nil {
					return 0, 0, 0, err
				}
				if tradedSum, err = amm.SumForQty(tradedQty, SideBid); err != nil {
					return 0, 0, 0, err
				}
				if tradedQty != 0 && tradedSum != 0 {
					remaining -= tradedQty
					if err = applyAmm(tradedQty, tradedSum); err != nil {
						return 0, 0, 0, err
					}
				}
				if remaining > 0 {
					fillSum, err := amm.TradeSum(remaining, line.Price)
					if err != nil {
						return 0, 0, 0, err
					}
					if err = accAdd(&fees, satInt64(float64(fillSum)*feeRate)); err != nil {
						return 0, 0, 0, err
					}
					if err = accAdd(&sum, fillSum); err != nil {
						return 0, 0, 0, err
					}
					remaining = 0
				}
			}
			if tradedSum != 0 && tradedQty != 0 {
				if err = addFee(tradedSum); err != nil {
					return 0, 0, 0, err
				}
			}
			break
		}

		// The quantity exceeds the level: consume it whole if the curve
		// stays on the taker's side of it afterwards.
		nextAmmPx, err := amm.PxAfterQty(remaining-line.Qty, SideBid)
		if err != nil {
			return 0, 0, 0, err
		}
		if coverLine(nextAmmPx, bound, line.Price, SideBid) {
			fillSum, err := amm.TradeSum(line.Qty, line.Price)
			if err != nil {
				return 0, 0, 0, err
			}
			if err = accAdd(&fees, satInt64(float64(fillSum)*feeRate)); err != nil {
				return 0, 0, 0, err
			}
			remaining -= line.Qty
			if err = accAdd(&sum, fillSum); err != nil {
				return 0, 0, 0, err
			}
			continue
		}

		// Crossing point: curve up to the better of bound and level
		// price, then the level itself if still covered.
		tradedQty, err := amm.QtyToPrice(max(line.Price, bound), SideBid)
		if err != nil {
			return 0, 0, 0, err
		}
		tradedQty = min(tradedQty, remaining)
		tradedSum, err := amm.SumForQty(tradedQty, SideBid)
		if err != nil {
			return 0, 0, 0, err
		}
		if tradedQty != 0 && tradedSum != 0 {
			remaining -= tradedQty
			if err = applyAmm(tradedQty, tradedSum); err != nil {
				return 0, 0, 0, err
			}
			if err = addFee(tradedSum); err != nil {
				return 0, 0, 0, err
			}
		}
		if coverLine(nextAmmPx, bound, line.Price, SideBid) {
			fillSum, err := amm.TradeSum(line.Qty, line.Price)
			if err != nil {
				return 0, 0, 0, err
			}
			if err = accAdd(&fees, satInt64(float64(fillSum)*feeRate)); err != nil {
				return 0, 0, 0, err
			}
			remaining -= line.Qty
			if err = accAdd(&sum, fillSum); err != nil {
				return 0, 0, 0, err
			}
		}
		break
	}

	return remaining, sum, fees, nil
}
