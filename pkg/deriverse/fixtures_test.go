package deriverse

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/gagliardetto/solana-go"
)

var (
	testAssetMint = solana.MustPublicKeyFromBase58("ATokenMint111111111111111111111111111111111")
	testCrncyMint = solana.MustPublicKeyFromBase58("BTokenMint111111111111111111111111111111111")
	testMapsAddr  = solana.MustPublicKeyFromBase58("Maps11111111111111111111111111111111111111A")
	testProgramID = solana.MustPublicKeyFromBase58("Drvs11111111111111111111111111111111111111A")
)

const (
	testAssetTokenID  uint32 = 2
	testCrncyTokenID  uint32 = 3
	testAssetDecimals uint8  = 6
	testCrncyDecimals uint8  = 9
)

func testDeployment() Deployment {
	return Deployment{ProgramID: testProgramID, Version: 1}
}

func encodeInstrumentHeader(h *InstrumentHeader) []byte {
	data := make([]byte, InstrumentHeaderSize)
	copy(data[0:32], h.AssetMint.Bytes())
	copy(data[32:64], h.CrncyMint.Bytes())
	copy(data[64:96], h.MapsAddress.Bytes())
	binary.LittleEndian.PutUint32(data[96:100], h.AssetTokenID)
	binary.LittleEndian.PutUint32(data[100:104], h.CrncyTokenID)
	binary.LittleEndian.PutUint32(data[104:108], h.InstrID)
	binary.LittleEndian.PutUint32(data[108:112], h.TradingEnabled)
	binary.LittleEndian.PutUint64(data[112:120], uint64(h.AssetTokens))
	binary.LittleEndian.PutUint64(data[120:128], uint64(h.CrncyTokens))
	binary.LittleEndian.PutUint64(data[128:136], uint64(h.DecFactor))
	binary.LittleEndian.PutUint64(data[136:144], uint64(h.BestBid))
	binary.LittleEndian.PutUint64(data[144:152], uint64(h.BestAsk))
	binary.LittleEndian.PutUint64(data[152:160], uint64(h.LastPx))
	binary.LittleEndian.PutUint32(data[160:164], h.BidLinesBegin)
	binary.LittleEndian.PutUint32(data[164:168], h.AskLinesBegin)
	binary.LittleEndian.PutUint32(data[168:172], h.BidLinesCount)
	binary.LittleEndian.PutUint32(data[172:176], h.AskLinesCount)
	binary.LittleEndian.PutUint64(data[176:184], math.Float64bits(h.DayVolatility))
	return data
}

func encodeTokenState(t TokenState) []byte {
	data := make([]byte, TokenStateSize)
	copy(data[0:32], t.Address.Bytes())
	copy(data[32:64], t.ProgramAddress.Bytes())
	binary.LittleEndian.PutUint32(data[64:68], t.ID)
	binary.LittleEndian.PutUint64(data[72:80], t.Mask)
	return data
}

func encodeCommunityHeader(spotFeeRate uint32) []byte {
	data := make([]byte, CommunityHeaderSize)
	binary.LittleEndian.PutUint32(data[0:4], spotFeeRate)
	return data
}

func encodeLevel(l Level) []byte {
	data := make([]byte, LineSize)
	binary.LittleEndian.PutUint64(data[0:8], uint64(l.Price))
	binary.LittleEndian.PutUint64(data[8:16], uint64(l.Qty))
	binary.LittleEndian.PutUint32(data[16:20], l.Next)
	binary.LittleEndian.PutUint32(data[20:24], l.Prev)
	binary.LittleEndian.PutUint32(data[24:28], l.SRef)
	return data
}

func encodeLinesAccount(lines []Level) []byte {
	data := make([]byte, LinesHeaderSize, LinesHeaderSize+len(lines)*LineSize)
	for _, l := range lines {
		data = append(data, encodeLevel(l)...)
	}
	return data
}

func px(p float64) int64 {
	return int64(p * float64(PriceScale))
}

// testBookLines is the shared seven slot arena both sides link through:
// bids 10.4 -> 10.1 -> 10.0 starting at index 1, asks 9.9 -> 10.1 -> 10.1
// starting at index 2, one unallocated slot at index 5.
func testBookLines() []Level {
	return []Level{
		{Price: px(10.1), Qty: 100_000, Next: 3, Prev: 1, SRef: 0},
		{Price: px(10.4), Qty: 100_000, Next: 0, Prev: NullLine, SRef: 1},
		{Price: px(9.9), Qty: 100_000, Next: 4, Prev: NullLine, SRef: 0},
		{Price: px(10.0), Qty: 100_000, Next: NullLine, Prev: 3, SRef: 0},
		{Price: px(10.1), Qty: 100_000, Next: 6, Prev: NullLine, SRef: 0},
		{Next: NullLine, Prev: NullLine},
		{Price: px(10.1), Qty: 100_000, Next: NullLine, Prev: 4, SRef: 0},
	}
}

type venueFixture struct {
	spotFeeRate   uint32
	dayVolatility float64
	assetTokens   int64
	crncyTokens   int64
	lines         []Level
	bidBegin      uint32
	askBegin      uint32
	lastPx        int64
}

func newTestVenue(t *testing.T, fx venueFixture) *Venue {
	t.Helper()

	bestBid := int64(0)
	if int(fx.bidBegin) < len(fx.lines) {
		bestBid = fx.lines[fx.bidBegin].Price
	}
	bestAsk := MaxPrice
	if int(fx.askBegin) < len(fx.lines) {
		bestAsk = fx.lines[fx.askBegin].Price
	}

	header := &InstrumentHeader{
		AssetMint:      testAssetMint,
		CrncyMint:      testCrncyMint,
		MapsAddress:    testMapsAddr,
		AssetTokenID:   testAssetTokenID,
		CrncyTokenID:   testCrncyTokenID,
		InstrID:        7,
		TradingEnabled: 1,
		AssetTokens:    fx.assetTokens,
		CrncyTokens:    fx.crncyTokens,
		DecFactor:      DecFactor(9 + testAssetDecimals - testCrncyDecimals),
		BestBid:        bestBid,
		BestAsk:        bestAsk,
		LastPx:         fx.lastPx,
		BidLinesBegin:  fx.bidBegin,
		AskLinesBegin:  fx.askBegin,
		BidLinesCount:  uint32(len(fx.lines)),
		AskLinesCount:  uint32(len(fx.lines)),
		DayVolatility:  fx.dayVolatility,
	}
	headerData := encodeInstrumentHeader(header)

	venue, err := NewVenue(testDeployment(), headerData)
	if err != nil {
		t.Fatalf("NewVenue: %v", err)
	}

	accounts := AccountMap{
		venue.Accounts.InstrHeader: {Data: headerData},
		venue.Accounts.AssetTokenState: {
			Data: encodeTokenState(TokenState{
				Address: testAssetMint,
				ID:      testAssetTokenID,
				Mask:    uint64(testAssetDecimals),
			}),
		},
		venue.Accounts.CrncyTokenState: {
			Data: encodeTokenState(TokenState{
				Address: testCrncyMint,
				ID:      testCrncyTokenID,
				Mask:    uint64(testCrncyDecimals),
			}),
		},
		venue.Accounts.Community: {Data: encodeCommunityHeader(fx.spotFeeRate)},
		venue.Accounts.Lines:     {Data: encodeLinesAccount(fx.lines)},
		venue.Accounts.AssetMint: {Owner: solana.TokenProgramID},
		venue.Accounts.CrncyMint: {Owner: solana.TokenProgramID},
	}
	if err := venue.Update(accounts); err != nil {
		t.Fatalf("Update: %v", err)
	}
	return venue
}
