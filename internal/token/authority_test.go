package token

import (
	"context"
	"errors"
	"testing"

	"github.com/congo-pay/hoard_token/internal/ledger"
)

func TestSetAuthorityRevokeTwice(t *testing.T) {
	e := newTokenEnv(t, 0)
	ctx := context.Background()
	in := SetAuthorityInput{Target: e.mint, Type: ledger.AuthorityMintTokens, Current: e.authority}

	res, err := e.svc.SetAuthority(ctx, in)
	if err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if res.TargetKind != "mint" {
		t.Fatalf("expected mint target, got %s", res.TargetKind)
	}
	before, err := e.svc.MintInfo(ctx, e.mint)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	if _, err := e.svc.SetAuthority(ctx, in); !errors.Is(err, ErrAuthorityAlreadyRevoked) {
		t.Fatalf("expected ErrAuthorityAlreadyRevoked, got %v", err)
	}
	newAuthority := ledger.NewUniquePublicKey()
	in.New = &newAuthority
	if _, err := e.svc.SetAuthority(ctx, in); !errors.Is(err, ErrAuthorityAlreadyRevoked) {
		t.Fatalf("expected revoked slot to stay revoked, got %v", err)
	}

	after, err := e.svc.MintInfo(ctx, e.mint)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if after.MintAuthority != nil || after.Supply != before.Supply || *after.FreezeAuthority != *before.FreezeAuthority {
		t.Fatalf("state changed by rejected calls: before %+v after %+v", before, after)
	}

	_, err = e.svc.Mint(ctx, MintInput{Mint: e.mint, Destination: e.source, Authority: e.authority, Amount: 1})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected fixed supply to reject minting, got %v", err)
	}
}

func TestSetAuthorityRotatesFreezeAuthority(t *testing.T) {
	e := newTokenEnv(t, 0)
	ctx := context.Background()
	next := ledger.NewUniquePublicKey()

	if _, err := e.svc.SetAuthority(ctx, SetAuthorityInput{Target: e.mint, Type: ledger.AuthorityFreezeAccount, Current: e.authority, New: &next}); err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if _, err := e.svc.Freeze(ctx, FreezeInput{Account: e.dest, Mint: e.mint, Authority: e.authority}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected old freeze authority rejected, got %v", err)
	}
	if _, err := e.svc.Freeze(ctx, FreezeInput{Account: e.dest, Mint: e.mint, Authority: next}); err != nil {
		t.Fatalf("freeze with new authority: %v", err)
	}
}

func TestSetAuthorityRequiresCurrentAuthority(t *testing.T) {
	e := newTokenEnv(t, 0)
	next := ledger.NewUniquePublicKey()

	_, err := e.svc.SetAuthority(context.Background(), SetAuthorityInput{Target: e.mint, Type: ledger.AuthorityMintTokens, Current: e.owner, New: &next})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestSetAuthorityOnTokenAccount(t *testing.T) {
	e := newTokenEnv(t, 100)
	ctx := context.Background()
	newOwner := ledger.NewUniquePublicKey()

	res, err := e.svc.SetAuthority(ctx, SetAuthorityInput{Target: e.source, Type: ledger.AuthorityAccountOwner, Current: e.owner, New: &newOwner})
	if err != nil {
		t.Fatalf("change owner: %v", err)
	}
	if res.TargetKind != "token_account" {
		t.Fatalf("expected token_account target, got %s", res.TargetKind)
	}

	in := e.transferInput(10)
	if _, err := e.svc.Transfer(ctx, in); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected previous owner rejected, got %v", err)
	}
	in.Authority = newOwner
	if _, err := e.svc.Transfer(ctx, in); err != nil {
		t.Fatalf("transfer by new owner: %v", err)
	}

	_, err = e.svc.SetAuthority(ctx, SetAuthorityInput{Target: e.source, Type: ledger.AuthorityAccountOwner, Current: newOwner})
	if !errors.Is(err, ErrInvalidAuthorityType) {
		t.Fatalf("expected ErrInvalidAuthorityType for ownerless account, got %v", err)
	}
}

func TestSetAuthorityCloseAuthority(t *testing.T) {
	e := newTokenEnv(t, 0)
	ctx := context.Background()
	closer := ledger.NewUniquePublicKey()

	if _, err := e.svc.SetAuthority(ctx, SetAuthorityInput{Target: e.dest, Type: ledger.AuthorityCloseAccount, Current: e.owner, New: &closer}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected non-owner rejected, got %v", err)
	}

	view, err := e.svc.Account(ctx, e.source)
	if err != nil {
		t.Fatalf("account: %v", err)
	}
	if view.CloseAuthority != e.owner {
		t.Fatalf("expected owner as default close authority, got %s", view.CloseAuthority)
	}

	if _, err := e.svc.SetAuthority(ctx, SetAuthorityInput{Target: e.source, Type: ledger.AuthorityCloseAccount, Current: e.owner, New: &closer}); err != nil {
		t.Fatalf("set close authority: %v", err)
	}
	if _, err := e.svc.CloseAccount(ctx, CloseAccountInput{Account: e.source, Destination: e.dest, Authority: e.owner}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected owner to lose close rights, got %v", err)
	}
	if _, err := e.svc.CloseAccount(ctx, CloseAccountInput{Account: e.source, Destination: e.dest, Authority: closer}); err != nil {
		t.Fatalf("close by close authority: %v", err)
	}
}

func TestSetAuthorityRejectsMismatchedType(t *testing.T) {
	e := newTokenEnv(t, 0)
	ctx := context.Background()
	next := ledger.NewUniquePublicKey()

	cases := []SetAuthorityInput{
		{Target: e.mint, Type: ledger.AuthorityAccountOwner, Current: e.authority, New: &next},
		{Target: e.mint, Type: ledger.AuthorityCloseAccount, Current: e.authority, New: &next},
		{Target: e.source, Type: ledger.AuthorityMintTokens, Current: e.owner, New: &next},
		{Target: e.source, Type: ledger.AuthorityFreezeAccount, Current: e.owner, New: &next},
	}
	for _, in := range cases {
		if _, err := e.svc.SetAuthority(ctx, in); !errors.Is(err, ErrInvalidAuthorityType) {
			t.Fatalf("%s on %s: expected ErrInvalidAuthorityType, got %v", in.Type, in.Target, err)
		}
	}
}

func TestSetAuthorityRejectsUnknownTarget(t *testing.T) {
	svc, led, _ := newTestService(t)
	ctx := context.Background()

	garbage := ledger.NewUniquePublicKey()
	ledger.SeedRecord(led, garbage, make([]byte, 100))

	for _, target := range []ledger.PublicKey{garbage, ledger.NewUniquePublicKey()} {
		_, err := svc.SetAuthority(ctx, SetAuthorityInput{Target: target, Type: ledger.AuthorityMintTokens, Current: ledger.NewUniquePublicKey()})
		if !errors.Is(err, ErrInvalidAccountType) {
			t.Fatalf("target %s: expected ErrInvalidAccountType, got %v", target, err)
		}
	}
}
