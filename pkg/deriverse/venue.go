package deriverse

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Account is a point-in-time copy of one on-chain account.
type Account struct {
	Data  []byte
	Owner solana.PublicKey
}

// AccountMap is the snapshot a venue is assembled from: account address to
// raw account state. The caller fetches it; the package never re-fetches or
// mutates it.
type AccountMap map[solana.PublicKey]Account

func (m AccountMap) account(key solana.PublicKey) (Account, error) {
	acc, ok := m[key]
	if !ok {
		return Account{}, fmt.Errorf("account %s not in snapshot: %w", key, ErrInvalidAccount)
	}
	return acc, nil
}

// Venue is one spot instrument's quoting state, reconstructed from an
// account snapshot. A Venue populated by Update is safe for concurrent
// quoting: Quote works on private copies of all mutable state.
type Venue struct {
	Deployment Deployment
	Accounts   ContextAccounts

	Header     *InstrumentHeader
	AssetToken TokenState
	CrncyToken TokenState
	Book       OrderBook
	Amm        Amm

	// FeeRateFactor scales the instrument's day volatility into the
	// effective fee rate.
	FeeRateFactor float64

	AssetTokenProgram solana.PublicKey
	CrncyTokenProgram solana.PublicKey
}

// NewVenue seeds a venue from the instrument header account's data. The
// venue holds only derived addresses until Update supplies a full snapshot.
func NewVenue(dep Deployment, instrHeaderData []byte) (*Venue, error) {
	h, err := DecodeInstrumentHeader(instrHeaderData)
	if err != nil {
		return nil, err
	}
	accounts, err := dep.ContextAccounts(h)
	if err != nil {
		return nil, err
	}
	return &Venue{
		Deployment: dep,
		Accounts:   accounts,
		Header:     h,
	}, nil
}

// Label is the venue's display name.
func (v *Venue) Label() string { return "Deriverse" }

// Key is the venue's identifying account, the instrument header address.
func (v *Venue) Key() solana.PublicKey { return v.Accounts.InstrHeader }

// ReserveMints returns the two token mints the venue trades between.
func (v *Venue) ReserveMints() []solana.PublicKey {
	return []solana.PublicKey{v.AssetToken.Address, v.CrncyToken.Address}
}

// AccountsToUpdate lists the accounts a snapshot must contain for Update.
func (v *Venue) AccountsToUpdate() []solana.PublicKey {
	return v.Accounts.List()
}

// Update rebuilds all quoting state from the snapshot: instrument header,
// token states, fee rate, order book view and AMM curve.
func (v *Venue) Update(accounts AccountMap) error {
	instr, err := accounts.account(v.Accounts.InstrHeader)
	if err != nil {
		return err
	}
	h, err := DecodeInstrumentHeader(instr.Data)
	if err != nil {
		return fmt.Errorf("instrument %s: %w", v.Accounts.InstrHeader, err)
	}
	v.Header = h

	assetState, err := accounts.account(v.Accounts.AssetTokenState)
	if err != nil {
		return err
	}
	if v.AssetToken, err = DecodeTokenState(assetState.Data); err != nil {
		return fmt.Errorf("asset token state %s: %w", v.Accounts.AssetTokenState, err)
	}

	crncyState, err := accounts.account(v.Accounts.CrncyTokenState)
	if err != nil {
		return err
	}
	if v.CrncyToken, err = DecodeTokenState(crncyState.Data); err != nil {
		return fmt.Errorf("crncy token state %s: %w", v.Accounts.CrncyTokenState, err)
	}

	community, err := accounts.account(v.Accounts.Community)
	if err != nil {
		return err
	}
	ch, err := DecodeCommunityHeader(community.Data)
	if err != nil {
		return fmt.Errorf("community %s: %w", v.Accounts.Community, err)
	}
	v.FeeRateFactor = float64(ch.SpotFeeRate) * FeeRateStep

	lines, err := accounts.account(v.Accounts.Lines)
	if err != nil {
		return err
	}
	v.Book = NewOrderBook(h, lines.Data)
	v.Amm = NewAmm(h)

	assetMint, err := accounts.account(v.Accounts.AssetMint)
	if err != nil {
		return err
	}
	v.AssetTokenProgram = assetMint.Owner

	crncyMint, err := accounts.account(v.Accounts.CrncyMint)
	if err != nil {
		return err
	}
	v.CrncyTokenProgram = crncyMint.Owner

	return nil
}

// Active reports whether the venue is currently tradable: the book has a
// declared line capacity and trading is enabled on the instrument.
func (v *Venue) Active() bool {
	return v.Book.MaxSteps != 0 && v.Header.TradingEnabled != 0
}
