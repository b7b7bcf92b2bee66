package ledger

import (
	"encoding/binary"
	"errors"
	"testing"
)

func TestMintPackUnpack(t *testing.T) {
	authority := NewUniquePublicKey()
	freeze := NewUniquePublicKey()
	mint := Mint{MintAuthority: &authority, Supply: 1_000_000_000, Decimals: 9, IsInitialized: true, FreezeAuthority: &freeze}

	data := mint.Pack()
	if len(data) != MintSize {
		t.Fatalf("expected %d bytes, got %d", MintSize, len(data))
	}
	if Classify(data) != KindMint {
		t.Fatalf("expected mint kind, got %s", Classify(data))
	}

	decoded, err := UnpackMint(data)
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if decoded.Supply != mint.Supply || decoded.Decimals != 9 || !decoded.IsInitialized {
		t.Fatalf("unexpected mint: %+v", decoded)
	}
	if decoded.MintAuthority == nil || *decoded.MintAuthority != authority {
		t.Fatalf("mint authority lost: %v", decoded.MintAuthority)
	}
	if decoded.FreezeAuthority == nil || *decoded.FreezeAuthority != freeze {
		t.Fatalf("freeze authority lost: %v", decoded.FreezeAuthority)
	}
}

func TestAccountPackUnpack(t *testing.T) {
	delegate := NewUniquePublicKey()
	closer := NewUniquePublicKey()
	acct := Account{
		Mint:            NewUniquePublicKey(),
		Owner:           NewUniquePublicKey(),
		Amount:          42,
		Delegate:        &delegate,
		State:           AccountStateFrozen,
		DelegatedAmount: 7,
		CloseAuthority:  &closer,
	}

	data := acct.Pack()
	if len(data) != AccountSize {
		t.Fatalf("expected %d bytes, got %d", AccountSize, len(data))
	}
	if Classify(data) != KindAccount {
		t.Fatalf("expected token account kind, got %s", Classify(data))
	}

	decoded, err := UnpackAccount(data)
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if decoded.Mint != acct.Mint || decoded.Owner != acct.Owner || decoded.Amount != 42 {
		t.Fatalf("unexpected account: %+v", decoded)
	}
	if !decoded.IsFrozen() || decoded.DelegatedAmount != 7 || decoded.IsNative != nil {
		t.Fatalf("unexpected account state: %+v", decoded)
	}
	if decoded.Delegate == nil || *decoded.Delegate != delegate {
		t.Fatalf("delegate lost: %v", decoded.Delegate)
	}
	if decoded.EffectiveCloseAuthority() != closer {
		t.Fatalf("close authority lost")
	}
}

func TestEffectiveCloseAuthorityFallsBackToOwner(t *testing.T) {
	acct := Account{Owner: NewUniquePublicKey(), State: AccountStateInitialized}
	if acct.EffectiveCloseAuthority() != acct.Owner {
		t.Fatal("expected owner to be the close authority")
	}
}

func TestClassifyUnknownLayouts(t *testing.T) {
	for _, size := range []int{0, 1, MintSize - 1, AccountSize + 1, 200} {
		if kind := Classify(make([]byte, size)); kind != KindUnknown {
			t.Fatalf("size %d classified as %s", size, kind)
		}
	}
}

func TestUnpackRejectsCorruptOptionTag(t *testing.T) {
	data := Mint{IsInitialized: true}.Pack()
	binary.LittleEndian.PutUint32(data[0:], 7)
	if _, err := UnpackMint(data); !errors.Is(err, ErrInvalidAccountData) {
		t.Fatalf("expected ErrInvalidAccountData, got %v", err)
	}

	acctData := Account{State: AccountStateInitialized}.Pack()
	acctData[108] = 9 // state byte
	if _, err := UnpackAccount(acctData); !errors.Is(err, ErrInvalidAccountData) {
		t.Fatalf("expected ErrInvalidAccountData for bad state, got %v", err)
	}
}
