package sol

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/nulln0ne/deriverse-estimator/pkg/deriverse"
)

// Dial connects to a Solana JSON-RPC endpoint and verifies it responds.
func Dial(ctx context.Context, url string) (*rpc.Client, error) {
	client := rpc.New(url)

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if _, err := client.GetHealth(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("rpc health check: %w", err)
	}
	return client, nil
}

// Fetcher reads account snapshots over JSON-RPC at confirmed commitment.
type Fetcher struct {
	client *rpc.Client
}

func NewFetcher(client *rpc.Client) *Fetcher {
	return &Fetcher{client: client}
}

// FetchAccounts loads the given accounts in one batch. Accounts that do not
// exist on chain are simply absent from the returned map.
func (f *Fetcher) FetchAccounts(ctx context.Context, keys []solana.PublicKey) (deriverse.AccountMap, error) {
	out, err := f.client.GetMultipleAccountsWithOpts(ctx, keys, &rpc.GetMultipleAccountsOpts{
		Commitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return nil, fmt.Errorf("get multiple accounts: %w", err)
	}

	accounts := make(deriverse.AccountMap, len(keys))
	for i, acc := range out.Value {
		if acc == nil {
			continue
		}
		accounts[keys[i]] = deriverse.Account{
			Data:  acc.Data.GetBinary(),
			Owner: acc.Owner,
		}
	}
	return accounts, nil
}
