package deriverse

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Account type tags used in the versioned seed scheme.
const (
	TagRoot      uint32 = 1
	TagCommunity uint32 = 2

	TagInstrument     uint32 = 10
	TagSpotBidsTree   uint32 = 11
	TagSpotAsksTree   uint32 = 12
	TagSpotBidOrders  uint32 = 13
	TagSpotAskOrders  uint32 = 14
	TagSpotLines      uint32 = 15
	TagSpotClientInfo uint32 = 16
	// TagSpotClientInfo2 is the overflow client-info account.
	TagSpotClientInfo2 uint32 = 17
	TagSpot1mCandles   uint32 = 18
	TagSpot15mCandles  uint32 = 19
	TagSpotDayCandles  uint32 = 20
	TagClientPrimary   uint32 = 30
	TagClientCommunity uint32 = 31
)

// authoritySeed is the fixed seed of the venue's program authority.
var authoritySeed = []byte("drvs")

// Deployment identifies one on-chain deployment of the venue program.
// Program id and schema version are runtime configuration so the same binary
// can quote against devnet, mainnet or a local validator.
type Deployment struct {
	ProgramID solana.PublicKey
	Version   uint32
}

func seedBytes(version, tag uint32) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint32(b[0:4], version)
	binary.LittleEndian.PutUint32(b[4:8], tag)
	return b
}

func seedBytesByID(version, tag, id, id2 uint32) []byte {
	b := make([]byte, 16)
	binary.LittleEndian.PutUint32(b[0:4], version)
	binary.LittleEndian.PutUint32(b[4:8], tag)
	binary.LittleEndian.PutUint32(b[8:12], id)
	binary.LittleEndian.PutUint32(b[12:16], id2)
	return b
}

func tokenSeedBytes(version uint32, mint solana.PublicKey) []byte {
	b := make([]byte, 32)
	copy(b[0:28], mint.Bytes()[0:28])
	binary.LittleEndian.PutUint32(b[28:32], version)
	return b
}

// Authority derives the venue program's authority address.
func (d Deployment) Authority() (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{authoritySeed}, d.ProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive authority: %w", err)
	}
	return addr, nil
}

func (d Deployment) derive(seed []byte) (solana.PublicKey, error) {
	auth, err := d.Authority()
	if err != nil {
		return solana.PublicKey{}, err
	}
	addr, _, err := solana.FindProgramAddress([][]byte{seed, auth.Bytes()}, d.ProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive account: %w", err)
	}
	return addr, nil
}

// Account derives a singleton program account for an account-type tag.
func (d Deployment) Account(tag uint32) (solana.PublicKey, error) {
	return d.derive(seedBytes(d.Version, tag))
}

// SpotAccount derives a per-instrument account for an account-type tag and
// the instrument's token id pair.
func (d Deployment) SpotAccount(tag, assetTokenID, crncyTokenID uint32) (solana.PublicKey, error) {
	return d.derive(seedBytesByID(d.Version, tag, assetTokenID, crncyTokenID))
}

// TokenAccount derives the token-state registry account for a mint.
func (d Deployment) TokenAccount(mint solana.PublicKey) (solana.PublicKey, error) {
	return d.derive(tokenSeedBytes(d.Version, mint))
}

// ClientPrimaryAccount derives a client's primary sub-account.
func (d Deployment) ClientPrimaryAccount(owner solana.PublicKey) (solana.PublicKey, error) {
	seeds := [][]byte{seedBytes(d.Version, TagClientPrimary), owner.Bytes()}
	addr, _, err := solana.FindProgramAddress(seeds, d.ProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive client primary: %w", err)
	}
	return addr, nil
}

// ClientCommunityAccount derives a client's community sub-account.
func (d Deployment) ClientCommunityAccount(owner solana.PublicKey) (solana.PublicKey, error) {
	seeds := [][]byte{seedBytes(d.Version, TagClientCommunity), owner.Bytes()}
	addr, _, err := solana.FindProgramAddress(seeds, d.ProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive client community: %w", err)
	}
	return addr, nil
}

// ContextAccounts is the set of accounts a venue snapshot is assembled from.
type ContextAccounts struct {
	InstrHeader     solana.PublicKey
	AssetTokenState solana.PublicKey
	CrncyTokenState solana.PublicKey
	Lines           solana.PublicKey
	Community       solana.PublicKey
	AssetMint       solana.PublicKey
	CrncyMint       solana.PublicKey
}

// ContextAccounts derives the snapshot account set for a decoded instrument
// header.
func (d Deployment) ContextAccounts(h *InstrumentHeader) (ContextAccounts, error) {
	instr, err := d.SpotAccount(TagInstrument, h.AssetTokenID, h.CrncyTokenID)
	if err != nil {
		return ContextAccounts{}, err
	}
	assetState, err := d.TokenAccount(h.AssetMint)
	if err != nil {
		return ContextAccounts{}, err
	}
	crncyState, err := d.TokenAccount(h.CrncyMint)
	if err != nil {
		return ContextAccounts{}, err
	}
	lines, err := d.SpotAccount(TagSpotLines, h.AssetTokenID, h.CrncyTokenID)
	if err != nil {
		return ContextAccounts{}, err
	}
	community, err := d.Account(TagCommunity)
	if err != nil {
		return ContextAccounts{}, err
	}
	return ContextAccounts{
		InstrHeader:     instr,
		AssetTokenState: assetState,
		CrncyTokenState: crncyState,
		Lines:           lines,
		Community:       community,
		AssetMint:       h.AssetMint,
		CrncyMint:       h.CrncyMint,
	}, nil
}

// List returns the accounts in snapshot-fetch order.
func (c ContextAccounts) List() []solana.PublicKey {
	return []solana.PublicKey{
		c.InstrHeader,
		c.AssetTokenState,
		c.CrncyTokenState,
		c.Community,
		c.Lines,
		c.AssetMint,
		c.CrncyMint,
	}
}
