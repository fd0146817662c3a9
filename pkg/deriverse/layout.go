package deriverse

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gagliardetto/solana-go"
)

// On-chain account layouts. All records are little-endian with fixed field
// offsets; decoding validates the buffer length up front and never reads
// past it.
const (
	// InstrumentHeaderSize is the minimum length of an instrument account.
	InstrumentHeaderSize = 184
	// TokenStateSize is the length of a token-state record.
	TokenStateSize = 80
	// CommunityHeaderSize is the minimum length of the community account.
	CommunityHeaderSize = 8
	// LineSize is the size of one price-level record in the lines array.
	LineSize = 32
	// LinesHeaderSize is the fixed header prefix of the lines account that
	// precedes the flat level array.
	LinesHeaderSize = 64
)

// NullLine is the reserved "no link" index in the lines array.
const NullLine = ^uint32(0)

// InstrumentHeader is the decoded, read-only header of a spot instrument
// account.
type InstrumentHeader struct {
	AssetMint   solana.PublicKey
	CrncyMint   solana.PublicKey
	MapsAddress solana.PublicKey

	AssetTokenID uint32
	CrncyTokenID uint32
	InstrID      uint32
	// TradingEnabled is nonzero while the venue accepts orders.
	TradingEnabled uint32

	AssetTokens int64
	CrncyTokens int64
	// DecFactor converts between asset quantity at PriceScale and
	// currency minor units: sum = qty * px / DecFactor.
	DecFactor int64

	BestBid int64
	BestAsk int64
	LastPx  int64

	BidLinesBegin uint32
	AskLinesBegin uint32
	BidLinesCount uint32
	AskLinesCount uint32

	DayVolatility float64
}

// DecodeInstrumentHeader parses an instrument account's data.
func DecodeInstrumentHeader(data []byte) (*InstrumentHeader, error) {
	if len(data) < InstrumentHeaderSize {
		return nil, fmt.Errorf("instrument header is %d bytes, want at least %d: %w",
			len(data), InstrumentHeaderSize, ErrInvalidAccount)
	}
	h := &InstrumentHeader{
		AssetMint:   solana.PublicKeyFromBytes(data[0:32]),
		CrncyMint:   solana.PublicKeyFromBytes(data[32:64]),
		MapsAddress: solana.PublicKeyFromBytes(data[64:96]),

		AssetTokenID:   binary.LittleEndian.Uint32(data[96:100]),
		CrncyTokenID:   binary.LittleEndian.Uint32(data[100:104]),
		InstrID:        binary.LittleEndian.Uint32(data[104:108]),
		TradingEnabled: binary.LittleEndian.Uint32(data[108:112]),

		AssetTokens: int64(binary.LittleEndian.Uint64(data[112:120])),
		CrncyTokens: int64(binary.LittleEndian.Uint64(data[120:128])),
		DecFactor:   int64(binary.LittleEndian.Uint64(data[128:136])),

		BestBid: int64(binary.LittleEndian.Uint64(data[136:144])),
		BestAsk: int64(binary.LittleEndian.Uint64(data[144:152])),
		LastPx:  int64(binary.LittleEndian.Uint64(data[152:160])),

		BidLinesBegin: binary.LittleEndian.Uint32(data[160:164]),
		AskLinesBegin: binary.LittleEndian.Uint32(data[164:168]),
		BidLinesCount: binary.LittleEndian.Uint32(data[168:172]),
		AskLinesCount: binary.LittleEndian.Uint32(data[172:176]),

		DayVolatility: math.Float64frombits(binary.LittleEndian.Uint64(data[176:184])),
	}
	return h, nil
}

// MarketPx selects the reference market price from the cached best bid, best
// ask and last trade price.
func (h *InstrumentHeader) MarketPx() int64 {
	switch {
	case h.BestAsk < h.LastPx:
		return h.BestAsk
	case h.BestBid > h.LastPx:
		return h.BestBid
	default:
		return h.LastPx
	}
}

// TokenState is the decoded per-token registry record.
type TokenState struct {
	Address        solana.PublicKey
	ProgramAddress solana.PublicKey
	ID             uint32
	Mask           uint64
}

// Decimals is the mint's decimal count, carried in the low byte of Mask.
func (t TokenState) Decimals() uint8 {
	return uint8(t.Mask & 0xFF)
}

// DecodeTokenState parses a token-state account's data.
func DecodeTokenState(data []byte) (TokenState, error) {
	if len(data) < TokenStateSize {
		return TokenState{}, fmt.Errorf("token state is %d bytes, want at least %d: %w",
			len(data), TokenStateSize, ErrInvalidAccount)
	}
	return TokenState{
		Address:        solana.PublicKeyFromBytes(data[0:32]),
		ProgramAddress: solana.PublicKeyFromBytes(data[32:64]),
		ID:             binary.LittleEndian.Uint32(data[64:68]),
		Mask:           binary.LittleEndian.Uint64(data[72:80]),
	}, nil
}

// CommunityHeader is the decoded community (fee/governance) account header.
type CommunityHeader struct {
	SpotFeeRate uint32
}

// FeeRateStep converts the community account's integer spot fee rate into a
// fractional rate factor.
const FeeRateStep = 1e-6

// DecodeCommunityHeader parses the community account's data.
func DecodeCommunityHeader(data []byte) (CommunityHeader, error) {
	if len(data) < CommunityHeaderSize {
		return CommunityHeader{}, fmt.Errorf("community header is %d bytes, want at least %d: %w",
			len(data), CommunityHeaderSize, ErrInvalidAccount)
	}
	return CommunityHeader{
		SpotFeeRate: binary.LittleEndian.Uint32(data[0:4]),
	}, nil
}

// Level is one price line of the order book: a resting quantity at a fixed
// price, linked to its neighbors by array index.
type Level struct {
	Price int64
	Qty   int64
	Next  uint32
	Prev  uint32
	// SRef tags the order origin; NullLine marks an unallocated slot.
	SRef uint32
}

func decodeLevel(data []byte) Level {
	return Level{
		Price: int64(binary.LittleEndian.Uint64(data[0:8])),
		Qty:   int64(binary.LittleEndian.Uint64(data[8:16])),
		Next:  binary.LittleEndian.Uint32(data[16:20]),
		Prev:  binary.LittleEndian.Uint32(data[20:24]),
		SRef:  binary.LittleEndian.Uint32(data[24:28]),
	}
}

// decodeLines parses the flat level array that follows the lines account
// header. A trailing partial record is ignored.
func decodeLines(data []byte) []Level {
	n := len(data) / LineSize
	lines := make([]Level, n)
	for i := 0; i < n; i++ {
		lines[i] = decodeLevel(data[i*LineSize:])
	}
	return lines
}
