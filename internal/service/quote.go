package service

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/gagliardetto/solana-go"

	"github.com/nulln0ne/deriverse-estimator/pkg/deriverse"
)

// AccountFetcher loads account snapshots from the chain.
type AccountFetcher interface {
	FetchAccounts(ctx context.Context, keys []solana.PublicKey) (deriverse.AccountMap, error)
}

// QuoteService prices swaps against Deriverse spot instruments by fetching a
// fresh account snapshot per request and simulating the fill off chain.
type QuoteService struct {
	BaseService
	fetcher    AccountFetcher
	deployment deriverse.Deployment
}

// NewQuoteService constructs a QuoteService using the provided logger,
// account fetcher and program deployment.
func NewQuoteService(logger *slog.Logger, fetcher AccountFetcher, deployment deriverse.Deployment) *QuoteService {
	return &QuoteService{
		BaseService: BaseService{logger: logger},
		fetcher:     fetcher,
		deployment:  deployment,
	}
}

// Quote resolves the instrument trading the given mint pair, snapshots it
// and simulates an exact-in swap of amount input tokens.
func (s *QuoteService) Quote(ctx context.Context, inputMint, outputMint solana.PublicKey, amount uint64, mode deriverse.SwapMode) (*deriverse.Quote, error) {
	s.logger.Debug("quoting swap", "input", inputMint.String(), "output", outputMint.String(), "amount", amount)

	if inputMint.Equals(outputMint) {
		return nil, ErrSameToken
	}

	venue, err := s.loadVenue(ctx, inputMint, outputMint)
	if err != nil {
		return nil, err
	}

	quote, err := venue.Quote(deriverse.QuoteParams{
		InputMint:  inputMint,
		OutputMint: outputMint,
		Amount:     amount,
		Mode:       mode,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("quote computed", "in", quote.InAmount, "out", quote.OutAmount, "fee", quote.FeeAmount)
	return quote, nil
}

// loadVenue resolves the mint pair to an instrument and rebuilds its quoting
// state from a fresh snapshot. The pair's instrument may list either mint as
// the asset, so both id orderings are tried.
func (s *QuoteService) loadVenue(ctx context.Context, a, b solana.PublicKey) (*deriverse.Venue, error) {
	aID, err := s.tokenID(ctx, a)
	if err != nil {
		return nil, err
	}
	bID, err := s.tokenID(ctx, b)
	if err != nil {
		return nil, err
	}

	for _, ids := range [][2]uint32{{aID, bID}, {bID, aID}} {
		instrKey, err := s.deployment.SpotAccount(deriverse.TagInstrument, ids[0], ids[1])
		if err != nil {
			return nil, fmt.Errorf("derive instrument: %w", err)
		}
		snapshot, err := s.fetcher.FetchAccounts(ctx, []solana.PublicKey{instrKey})
		if err != nil {
			return nil, fmt.Errorf("fetch instrument: %w", err)
		}
		acc, ok := snapshot[instrKey]
		if !ok {
			continue
		}

		venue, err := deriverse.NewVenue(s.deployment, acc.Data)
		if err != nil {
			return nil, err
		}
		accounts, err := s.fetcher.FetchAccounts(ctx, venue.AccountsToUpdate())
		if err != nil {
			return nil, fmt.Errorf("fetch snapshot: %w", err)
		}
		if err := venue.Update(accounts); err != nil {
			return nil, err
		}
		return venue, nil
	}
	return nil, ErrUnknownInstrument
}

func (s *QuoteService) tokenID(ctx context.Context, mint solana.PublicKey) (uint32, error) {
	stateKey, err := s.deployment.TokenAccount(mint)
	if err != nil {
		return 0, fmt.Errorf("derive token state: %w", err)
	}
	snapshot, err := s.fetcher.FetchAccounts(ctx, []solana.PublicKey{stateKey})
	if err != nil {
		return 0, fmt.Errorf("fetch token state: %w", err)
	}
	acc, ok := snapshot[stateKey]
	if !ok {
		return 0, fmt.Errorf("mint %s: %w", mint, ErrUnknownToken)
	}
	state, err := deriverse.DecodeTokenState(acc.Data)
	if err != nil {
		return 0, fmt.Errorf("mint %s: %w", mint, err)
	}
	return state.ID, nil
}
