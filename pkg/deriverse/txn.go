package deriverse

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Instruction tags of the venue program.
const (
	instrDeposit      uint8 = 4
	instrNewSpotOrder uint8 = 12
	instrSwap         uint8 = 26
)

var addressLookupTableProgram = solana.MustPublicKeyFromBase58("AddressLookupTab1e1111111111111111111111111")

// SwapParams describes one swap to build an instruction for.
type SwapParams struct {
	SourceMint              solana.PublicKey
	DestinationMint         solana.PublicKey
	SourceTokenAccount      solana.PublicKey
	DestinationTokenAccount solana.PublicKey
	TokenTransferAuthority  solana.PublicKey
	InAmount                uint64
}

// SwapInstructionAccounts resolves the swap's side from the mint pair and
// returns the program's full account meta list in instruction order. The
// source or destination mint must be the venue's currency mint and the
// other one its asset mint.
func (v *Venue) SwapInstructionAccounts(params SwapParams) ([]*solana.AccountMeta, Side, error) {
	var side Side
	var assetAccount, crncyAccount solana.PublicKey
	switch {
	case v.CrncyToken.Address == params.SourceMint:
		if v.AssetToken.Address != params.DestinationMint {
			return nil, 0, fmt.Errorf("destination mint %s is not the venue's asset mint: %w",
				params.DestinationMint, ErrInvalidAccount)
		}
		side = SideBid
		assetAccount, crncyAccount = params.DestinationTokenAccount, params.SourceTokenAccount
	case v.CrncyToken.Address == params.DestinationMint:
		if v.AssetToken.Address != params.SourceMint {
			return nil, 0, fmt.Errorf("source mint %s is not the venue's asset mint: %w",
				params.SourceMint, ErrInvalidAccount)
		}
		side = SideAsk
		assetAccount, crncyAccount = params.SourceTokenAccount, params.DestinationTokenAccount
	default:
		return nil, 0, fmt.Errorf("neither mint matches crncy mint %s: %w",
			v.CrncyToken.Address, ErrInvalidAccount)
	}

	dep := v.Deployment
	h := v.Header

	root, err := dep.Account(TagRoot)
	if err != nil {
		return nil, 0, err
	}
	authority, err := dep.Authority()
	if err != nil {
		return nil, 0, err
	}

	spot := func(tag uint32) (solana.PublicKey, error) {
		return dep.SpotAccount(tag, h.AssetTokenID, h.CrncyTokenID)
	}
	bidsTree, err := spot(TagSpotBidsTree)
	if err != nil {
		return nil, 0, err
	}
	asksTree, err := spot(TagSpotAsksTree)
	if err != nil {
		return nil, 0, err
	}
	bidOrders, err := spot(TagSpotBidOrders)
	if err != nil {
		return nil, 0, err
	}
	askOrders, err := spot(TagSpotAskOrders)
	if err != nil {
		return nil, 0, err
	}
	clientInfo, err := spot(TagSpotClientInfo)
	if err != nil {
		return nil, 0, err
	}
	clientInfo2, err := spot(TagSpotClientInfo2)
	if err != nil {
		return nil, 0, err
	}
	candles1m, err := spot(TagSpot1mCandles)
	if err != nil {
		return nil, 0, err
	}
	candles15m, err := spot(TagSpot15mCandles)
	if err != nil {
		return nil, 0, err
	}
	candlesDay, err := spot(TagSpotDayCandles)
	if err != nil {
		return nil, 0, err
	}

	metas := []*solana.AccountMeta{
		solana.NewAccountMeta(params.TokenTransferAuthority, false, true),
		solana.NewAccountMeta(root, false, false),
		solana.NewAccountMeta(v.Accounts.InstrHeader, true, false),
		solana.NewAccountMeta(bidsTree, true, false),
		solana.NewAccountMeta(asksTree, true, false),
		solana.NewAccountMeta(bidOrders, true, false),
		solana.NewAccountMeta(askOrders, true, false),
		solana.NewAccountMeta(v.Accounts.Lines, true, false),
		solana.NewAccountMeta(h.MapsAddress, true, false),
		solana.NewAccountMeta(clientInfo, true, false),
		solana.NewAccountMeta(clientInfo2, true, false),
		solana.NewAccountMeta(candles1m, true, false),
		solana.NewAccountMeta(candles15m, true, false),
		solana.NewAccountMeta(candlesDay, true, false),
		solana.NewAccountMeta(v.Accounts.Community, false, false),
		solana.NewAccountMeta(v.AssetToken.ProgramAddress, true, false),
		solana.NewAccountMeta(v.CrncyToken.ProgramAddress, true, false),
		solana.NewAccountMeta(h.AssetMint, false, false),
		solana.NewAccountMeta(h.CrncyMint, false, false),
		solana.NewAccountMeta(v.Accounts.AssetTokenState, false, false),
		solana.NewAccountMeta(v.Accounts.CrncyTokenState, false, false),
		solana.NewAccountMeta(assetAccount, true, false),
		solana.NewAccountMeta(crncyAccount, true, false),
		solana.NewAccountMeta(authority, false, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
		solana.NewAccountMeta(v.AssetTokenProgram, false, false),
		solana.NewAccountMeta(v.CrncyTokenProgram, false, false),
		solana.NewAccountMeta(solana.SPLAssociatedTokenAccountProgramID, false, false),
	}
	return metas, side, nil
}

// BuildSwapInstruction builds the complete swap instruction: the account
// metas plus the 24-byte instruction payload. The payload carries no price:
// the program executes at the book and curve state it observes.
func (v *Venue) BuildSwapInstruction(params SwapParams) (*solana.GenericInstruction, error) {
	metas, side, err := v.SwapInstructionAccounts(params)
	if err != nil {
		return nil, err
	}

	data := make([]byte, 24)
	data[0] = instrSwap
	if side == SideBid {
		data[1] = 1
	}
	binary.LittleEndian.PutUint32(data[4:8], v.Header.InstrID)
	binary.LittleEndian.PutUint64(data[16:24], params.InAmount)

	return solana.NewInstruction(v.Deployment.ProgramID, metas, data), nil
}

// DepositParams describes a deposit of one token into the client's venue
// balance. Amount is in whole tokens; the builder scales it by the token's
// decimals. When the client's primary account does not exist yet the
// instruction also carries the accounts needed to bootstrap it, including
// an address lookup table slot.
type DepositParams struct {
	Signer              solana.PublicKey
	ClientATA           solana.PublicKey
	TokenMint           solana.PublicKey
	TokenProgram        solana.PublicKey
	Amount              int64
	DepositAll          bool
	ClientAccountExists bool
	LutSlot             uint32
	LutAccount          solana.PublicKey
}

// BuildDepositInstruction builds a deposit instruction against the token's
// registry state.
func (d Deployment) BuildDepositInstruction(state TokenState, params DepositParams) (*solana.GenericInstruction, error) {
	root, err := d.Account(TagRoot)
	if err != nil {
		return nil, err
	}
	tokenStateAddr, err := d.TokenAccount(params.TokenMint)
	if err != nil {
		return nil, err
	}
	clientPrimary, err := d.ClientPrimaryAccount(params.Signer)
	if err != nil {
		return nil, err
	}

	metas := []*solana.AccountMeta{
		solana.NewAccountMeta(params.Signer, true, true),
		solana.NewAccountMeta(params.ClientATA, true, false),
		solana.NewAccountMeta(state.ProgramAddress, true, false),
		solana.NewAccountMeta(params.TokenMint, false, false),
		solana.NewAccountMeta(root, !params.ClientAccountExists, false),
		solana.NewAccountMeta(tokenStateAddr, false, false),
		solana.NewAccountMeta(clientPrimary, true, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
		solana.NewAccountMeta(params.TokenProgram, false, false),
	}
	if !params.ClientAccountExists {
		clientCommunity, err := d.ClientCommunityAccount(params.Signer)
		if err != nil {
			return nil, err
		}
		metas = append(metas,
			solana.NewAccountMeta(clientCommunity, true, false),
			solana.NewAccountMeta(params.LutAccount, true, false),
			solana.NewAccountMeta(addressLookupTableProgram, false, false),
		)
	}

	qty := params.Amount * DecFactor(state.Decimals())

	data := make([]byte, 24)
	data[0] = instrDeposit
	binary.LittleEndian.PutUint32(data[4:8], state.ID)
	binary.LittleEndian.PutUint64(data[8:16], uint64(qty))
	if params.DepositAll {
		data[16] = 1
	}
	binary.LittleEndian.PutUint32(data[20:24], params.LutSlot)

	return solana.NewInstruction(d.ProgramID, metas, data), nil
}

// NewSpotOrderParams describes one resting limit order. Amount is in whole
// asset tokens, positive to buy and negative to sell; Price is in currency
// per asset.
type NewSpotOrderParams struct {
	Signer solana.PublicKey
	Amount float64
	Price  float64
}

// BuildNewSpotOrderInstruction builds a limit-order instruction for the
// venue the given header describes.
func (v *Venue) BuildNewSpotOrderInstruction(params NewSpotOrderParams) (*solana.GenericInstruction, error) {
	dep := v.Deployment
	h := v.Header

	root, err := dep.Account(TagRoot)
	if err != nil {
		return nil, err
	}
	clientPrimary, err := dep.ClientPrimaryAccount(params.Signer)
	if err != nil {
		return nil, err
	}
	clientCommunity, err := dep.ClientCommunityAccount(params.Signer)
	if err != nil {
		return nil, err
	}

	spot := func(tag uint32) (solana.PublicKey, error) {
		return dep.SpotAccount(tag, h.AssetTokenID, h.CrncyTokenID)
	}
	bidsTree, err := spot(TagSpotBidsTree)
	if err != nil {
		return nil, err
	}
	asksTree, err := spot(TagSpotAsksTree)
	if err != nil {
		return nil, err
	}
	bidOrders, err := spot(TagSpotBidOrders)
	if err != nil {
		return nil, err
	}
	askOrders, err := spot(TagSpotAskOrders)
	if err != nil {
		return nil, err
	}
	clientInfo, err := spot(TagSpotClientInfo)
	if err != nil {
		return nil, err
	}
	clientInfo2, err := spot(TagSpotClientInfo2)
	if err != nil {
		return nil, err
	}
	candles1m, err := spot(TagSpot1mCandles)
	if err != nil {
		return nil, err
	}
	candles15m, err := spot(TagSpot15mCandles)
	if err != nil {
		return nil, err
	}
	candlesDay, err := spot(TagSpotDayCandles)
	if err != nil {
		return nil, err
	}

	metas := []*solana.AccountMeta{
		solana.NewAccountMeta(params.Signer, false, true),
		solana.NewAccountMeta(root, false, false),
		solana.NewAccountMeta(clientPrimary, true, false),
		solana.NewAccountMeta(clientCommunity, true, false),
		solana.NewAccountMeta(v.Accounts.InstrHeader, true, false),
		solana.NewAccountMeta(bidsTree, true, false),
		solana.NewAccountMeta(asksTree, true, false),
		solana.NewAccountMeta(bidOrders, true, false),
		solana.NewAccountMeta(askOrders, true, false),
		solana.NewAccountMeta(v.Accounts.Lines, true, false),
		solana.NewAccountMeta(h.MapsAddress, true, false),
		solana.NewAccountMeta(clientInfo, true, false),
		solana.NewAccountMeta(clientInfo2, true, false),
		solana.NewAccountMeta(candles1m, true, false),
		solana.NewAccountMeta(candles15m, true, false),
		solana.NewAccountMeta(candlesDay, true, false),
		solana.NewAccountMeta(v.Accounts.Community, false, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	}

	qty := satInt64(params.Amount * float64(DecFactor(v.AssetToken.Decimals())))
	side := uint8(0)
	if qty <= 0 {
		side = 1
	}

	const orderTypeLimit = 0

	data := make([]byte, 24)
	data[0] = instrNewSpotOrder
	data[1] = orderTypeLimit
	data[2] = side
	binary.LittleEndian.PutUint32(data[4:8], h.InstrID)
	binary.LittleEndian.PutUint64(data[8:16], uint64(qty))
	binary.LittleEndian.PutUint64(data[16:24], uint64(satInt64(params.Price*float64(PriceScale))))

	return solana.NewInstruction(dep.ProgramID, metas, data), nil
}
