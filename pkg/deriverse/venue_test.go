package deriverse

import (
	"errors"
	"testing"
)

func TestVenueUpdateMissingAccount(t *testing.T) {
	venue := bookOnlyVenue(t)

	accounts := AccountMap{}
	if err := venue.Update(accounts); !errors.Is(err, ErrInvalidAccount) {
		t.Fatalf("empty snapshot: got %v, want ErrInvalidAccount", err)
	}
}

func TestVenueUpdateRejectsTruncatedHeader(t *testing.T) {
	venue := bookOnlyVenue(t)

	accounts := AccountMap{
		venue.Accounts.InstrHeader: {Data: make([]byte, InstrumentHeaderSize-1)},
	}
	if err := venue.Update(accounts); !errors.Is(err, ErrInvalidAccount) {
		t.Fatalf("truncated header: got %v, want ErrInvalidAccount", err)
	}
}

func TestVenueActive(t *testing.T) {
	if v := bookOnlyVenue(t); !v.Active() {
		t.Fatal("venue with lines and trading enabled must be active")
	}

	// No declared lines capacity means nothing can be quoted off the book.
	if v := newTestVenue(t, venueFixture{lastPx: px(10.0)}); v.Active() {
		t.Fatal("venue without lines must be inactive")
	}
}

func TestVenueReserveMints(t *testing.T) {
	venue := bookOnlyVenue(t)

	mints := venue.ReserveMints()
	if len(mints) != 2 {
		t.Fatalf("ReserveMints = %d entries, want 2", len(mints))
	}
	if !mints[0].Equals(testAssetMint) || !mints[1].Equals(testCrncyMint) {
		t.Fatalf("ReserveMints = %v, want asset then crncy", mints)
	}
}
