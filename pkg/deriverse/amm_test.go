package deriverse

import (
	"errors"
	"math"
	"testing"
)

func testAmm(assetTokens, crncyTokens int64) Amm {
	return NewAmm(&InstrumentHeader{
		AssetTokens: assetTokens,
		CrncyTokens: crncyTokens,
		DecFactor:   1_000_000,
	})
}

// Reserves of 1e12 asset minor units against 1e16 currency minor units put
// the curve's instantaneous price at exactly 10.0.
func balancedAmm() Amm {
	return testAmm(1_000_000*1_000_000, 10_000_000*1_000_000_000)
}

func TestDecFactor(t *testing.T) {
	cases := []struct {
		decimals uint8
		want     int64
	}{
		{0, 1},
		{1, 10},
		{6, 1_000_000},
		{9, 1_000_000_000},
	}
	for _, c := range cases {
		if got := DecFactor(c.decimals); got != c.want {
			t.Fatalf("DecFactor(%d) = %d, want %d", c.decimals, got, c.want)
		}
	}
}

func TestSatInt64(t *testing.T) {
	cases := []struct {
		in   float64
		want int64
	}{
		{0, 0},
		{1.9, 1},
		{-1.9, -1},
		{math.NaN(), 0},
		{math.Inf(1), math.MaxInt64},
		{math.Inf(-1), math.MinInt64},
		{2e19, math.MaxInt64},
		{-2e19, math.MinInt64},
	}
	for _, c := range cases {
		if got := satInt64(c.in); got != c.want {
			t.Fatalf("satInt64(%v) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestTradeSum(t *testing.T) {
	a := balancedAmm()

	sum, err := a.TradeSum(100_000, px(10.4))
	if err != nil {
		t.Fatalf("TradeSum: %v", err)
	}
	if want := int64(1_040_000_000); sum != want {
		t.Fatalf("TradeSum = %d, want %d", sum, want)
	}

	if _, err := a.TradeSum(-100_000, px(10.4)); !errors.Is(err, ErrArithmeticOverflow) {
		t.Fatalf("negative notional: got %v, want overflow", err)
	}
	if _, err := a.TradeSum(math.MaxInt64, math.MaxInt64); !errors.Is(err, ErrArithmeticOverflow) {
		t.Fatalf("huge notional: got %v, want overflow", err)
	}
}

func TestPxAfterQty(t *testing.T) {
	a := balancedAmm()

	got, err := a.PxAfterQty(0, SideBid)
	if err != nil {
		t.Fatalf("PxAfterQty: %v", err)
	}
	if want := px(10.0); got != want {
		t.Fatalf("resting price = %d, want %d", got, want)
	}

	// Buying from the curve raises its price, selling into it lowers it.
	up, err := a.PxAfterQty(100_000_000, SideAsk)
	if err != nil {
		t.Fatalf("PxAfterQty ask: %v", err)
	}
	down, err := a.PxAfterQty(100_000_000, SideBid)
	if err != nil {
		t.Fatalf("PxAfterQty bid: %v", err)
	}
	if !(down < px(10.0) && px(10.0) < up) {
		t.Fatalf("prices not ordered: down=%d rest=%d up=%d", down, px(10.0), up)
	}

	// Draining the whole asset reserve pushes the price to the cap.
	capPx, err := a.PxAfterQty(a.AssetTokens, SideAsk)
	if err != nil {
		t.Fatalf("PxAfterQty drain: %v", err)
	}
	if capPx != MaxPrice {
		t.Fatalf("drained price = %d, want MaxPrice", capPx)
	}
}

func TestQtyToPriceRoundTrip(t *testing.T) {
	a := balancedAmm()

	for _, target := range []int64{px(10.2), px(10.5), px(11.0)} {
		qty, err := a.QtyToPrice(target, SideAsk)
		if err != nil {
			t.Fatalf("QtyToPrice(%d): %v", target, err)
		}
		if qty <= 0 {
			t.Fatalf("QtyToPrice(%d) = %d, want positive", target, qty)
		}
		after, err := a.PxAfterQty(qty, SideAsk)
		if err != nil {
			t.Fatalf("PxAfterQty(%d): %v", qty, err)
		}
		diff := math.Abs(float64(after-target)) / float64(target)
		if diff > 1e-6 {
			t.Fatalf("round trip to %d landed at %d (rel diff %g)", target, after, diff)
		}
	}

	// A price the curve already trades past absorbs nothing.
	qty, err := a.QtyToPrice(px(9.0), SideAsk)
	if err != nil {
		t.Fatalf("QtyToPrice below market: %v", err)
	}
	if qty != 0 {
		t.Fatalf("QtyToPrice below market = %d, want 0", qty)
	}
}

func TestSumForQty(t *testing.T) {
	a := balancedAmm()

	// Selling into the curve realizes slightly less than the spot
	// notional, buying costs slightly more.
	sell, err := a.SumForQty(140_000, SideBid)
	if err != nil {
		t.Fatalf("SumForQty bid: %v", err)
	}
	buy, err := a.SumForQty(140_000, SideAsk)
	if err != nil {
		t.Fatalf("SumForQty ask: %v", err)
	}
	spot := int64(1_400_000_000)
	if !(sell <= spot && spot <= buy) {
		t.Fatalf("sums not ordered: sell=%d spot=%d buy=%d", sell, spot, buy)
	}
	if float64(spot-sell) > float64(spot)*0.001 {
		t.Fatalf("sell sum %d too far from spot %d", sell, spot)
	}

	// Buying at least the whole asset reserve has no finite cost.
	sum, err := a.SumForQty(a.AssetTokens, SideAsk)
	if err != nil {
		t.Fatalf("SumForQty drain: %v", err)
	}
	if sum != 0 {
		t.Fatalf("SumForQty drain = %d, want 0", sum)
	}

	empty := testAmm(0, 0)
	sum, err = empty.SumForQty(100, SideBid)
	if err != nil || sum != 0 {
		t.Fatalf("empty curve sum = %d, %v, want 0, nil", sum, err)
	}
}

func TestPxAfterSum(t *testing.T) {
	a := balancedAmm()

	rest, err := a.PxAfterSum(0)
	if err != nil {
		t.Fatalf("PxAfterSum: %v", err)
	}
	if rest != px(10.0) {
		t.Fatalf("resting price = %d, want %d", rest, px(10.0))
	}
	after, err := a.PxAfterSum(1_400_000_000)
	if err != nil {
		t.Fatalf("PxAfterSum: %v", err)
	}
	if after <= rest {
		t.Fatalf("price after spend = %d, want above %d", after, rest)
	}

	empty := testAmm(0, 0)
	got, err := empty.PxAfterSum(100)
	if err != nil || got != MaxPrice {
		t.Fatalf("empty curve price = %d, %v, want MaxPrice, nil", got, err)
	}
}

func TestQtyForSum(t *testing.T) {
	a := balancedAmm()

	qty, err := a.QtyForSum(1_400_000_000)
	if err != nil {
		t.Fatalf("QtyForSum: %v", err)
	}
	if want := int64(140_000); qty != want {
		t.Fatalf("QtyForSum = %d, want %d", qty, want)
	}

	empty := testAmm(0, 0)
	qty, err = empty.QtyForSum(100)
	if err != nil || qty != 0 {
		t.Fatalf("empty curve qty = %d, %v, want 0, nil", qty, err)
	}
}

func TestSumToPrice(t *testing.T) {
	a := balancedAmm()

	sum, err := a.SumToPrice(px(10.2))
	if err != nil {
		t.Fatalf("SumToPrice: %v", err)
	}
	if sum <= 0 {
		t.Fatalf("SumToPrice above market = %d, want positive", sum)
	}
	after, err := a.PxAfterSum(sum)
	if err != nil {
		t.Fatalf("PxAfterSum: %v", err)
	}
	diff := math.Abs(float64(after-px(10.2))) / float64(px(10.2))
	if diff > 1e-6 {
		t.Fatalf("spend to 10.2 landed at %d (rel diff %g)", after, diff)
	}

	sum, err = a.SumToPrice(px(9.0))
	if err != nil || sum != 0 {
		t.Fatalf("SumToPrice below market = %d, %v, want 0, nil", sum, err)
	}

	empty := testAmm(0, 0)
	sum, err = empty.SumToPrice(px(10.2))
	if err != nil || sum != 0 {
		t.Fatalf("empty curve sum = %d, %v, want 0, nil", sum, err)
	}
}

func TestFillPredicates(t *testing.T) {
	if !partialFill(px(9.0), px(9.5), SideBid) {
		t.Fatal("bid curve past the bound must partial fill")
	}
	if partialFill(px(9.6), px(9.5), SideBid) {
		t.Fatal("bid curve inside the bound must not partial fill")
	}
	if !partialFill(px(10.6), px(10.5), SideAsk) {
		t.Fatal("ask curve past the bound must partial fill")
	}
	if partialFill(px(10.4), px(10.5), SideAsk) {
		t.Fatal("ask curve inside the bound must not partial fill")
	}

	if !lastLine(px(10.5), px(10.4), SideBid) {
		t.Fatal("bid curve at or above the line dominates it")
	}
	if lastLine(px(10.3), px(10.4), SideBid) {
		t.Fatal("bid curve below the line does not dominate it")
	}
	if !lastLine(px(10.3), px(10.4), SideAsk) {
		t.Fatal("ask curve at or below the line dominates it")
	}

	if !coverLine(px(10.2), px(10.3), px(10.4), SideBid) {
		t.Fatal("line above curve and bound is covered on the bid side")
	}
	if coverLine(px(10.2), px(10.5), px(10.4), SideBid) {
		t.Fatal("bound past the line is not covered on the bid side")
	}
	if !coverLine(px(10.3), px(10.2), px(10.1), SideAsk) {
		t.Fatal("line below curve and bound is covered on the ask side")
	}
	if coverLine(px(10.0), px(10.2), px(10.1), SideAsk) {
		t.Fatal("curve past the line is not covered on the ask side")
	}

	if !lineUnreachable(px(10.5), px(10.4), SideBid) {
		t.Fatal("bid bound above the line leaves it unreachable")
	}
	if lineUnreachable(px(10.3), px(10.4), SideBid) {
		t.Fatal("bid bound past the line leaves it reachable")
	}
	if !lineUnreachable(px(10.3), px(10.4), SideAsk) {
		t.Fatal("ask bound below the line leaves it unreachable")
	}
}
