package token

import (
	"errors"
	"fmt"
	"testing"

	"github.com/congo-pay/hoard_token/internal/ledger"
)

func TestTranslateKeepsBothLevels(t *testing.T) {
	cases := []struct {
		cause error
		core  error
	}{
		{ledger.ErrOwnerMismatch, ErrUnauthorized},
		{ledger.ErrFixedSupply, ErrUnauthorized},
		{ledger.ErrInsufficientFunds, ErrInsufficientBalance},
		{ledger.ErrOverflow, ErrSupplyOverflow},
		{ledger.ErrInvalidAccountData, ErrInvalidAccountType},
		{ledger.ErrAuthorityTypeNotSupported, ErrInvalidAuthorityType},
		{ledger.ErrAuthorityRevoked, ErrAuthorityAlreadyRevoked},
		{ledger.ErrAccountNotEmpty, ErrAccountNotEmpty},
		{ledger.ErrMintMismatch, ErrMintMismatch},
		{ledger.ErrAlreadyInUse, ErrAlreadyInitialized},
	}
	for _, tc := range cases {
		err := translate(fmt.Errorf("leg: %w", tc.cause))
		if !errors.Is(err, tc.core) || !errors.Is(err, tc.cause) {
			t.Fatalf("%v: expected %v in chain, got %v", tc.cause, tc.core, err)
		}
	}
}

func TestTranslatePassesThroughForeignErrors(t *testing.T) {
	if translate(nil) != nil {
		t.Fatal("expected nil")
	}
	boom := errors.New("boom")
	if err := translate(boom); err != boom {
		t.Fatalf("expected error unchanged, got %v", err)
	}
	already := fmt.Errorf("%w: %w", ErrUnauthorized, ledger.ErrOwnerMismatch)
	if err := translate(already); err != already {
		t.Fatalf("expected classified error unchanged, got %v", err)
	}
}
