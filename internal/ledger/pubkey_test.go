package ledger

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestPublicKeyTextRoundTrip(t *testing.T) {
	key := NewUniquePublicKey()

	parsed, err := ParsePublicKey(key.String())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed != key {
		t.Fatalf("expected %s, got %s", key, parsed)
	}

	payload, err := json.Marshal(struct {
		Key PublicKey `json:"key"`
	}{Key: key})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded struct {
		Key PublicKey `json:"key"`
	}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Key != key {
		t.Fatalf("json round trip changed key: %s != %s", decoded.Key, key)
	}
}

func TestParsePublicKeyRejectsWrongLength(t *testing.T) {
	for _, input := range []string{"", "abc", "0OIl", TokenProgramID.String() + "1111"} {
		if _, err := ParsePublicKey(input); !errors.Is(err, ErrInvalidPublicKey) {
			t.Fatalf("input %q: expected ErrInvalidPublicKey, got %v", input, err)
		}
	}
}

func TestWellKnownProgramIDs(t *testing.T) {
	if TokenProgramID.String() != "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA" {
		t.Fatalf("token program id changed: %s", TokenProgramID)
	}
	if AssociatedTokenProgramID.IsZero() {
		t.Fatal("associated token program id is zero")
	}
}

func TestFindProgramAddressIsOffCurveAndDeterministic(t *testing.T) {
	seed := []byte("mint-signer")
	first, bump, err := FindProgramAddress([][]byte{seed}, TokenProgramID)
	if err != nil {
		t.Fatalf("find program address: %v", err)
	}
	if isOnCurve(first[:]) {
		t.Fatalf("derived address %s lies on the curve", first)
	}

	again, bumpAgain, err := FindProgramAddress([][]byte{seed}, TokenProgramID)
	if err != nil {
		t.Fatalf("find program address again: %v", err)
	}
	if first != again || bump != bumpAgain {
		t.Fatalf("derivation not deterministic: %s/%d vs %s/%d", first, bump, again, bumpAgain)
	}

	direct, err := CreateProgramAddress([][]byte{seed, {bump}}, TokenProgramID)
	if err != nil {
		t.Fatalf("create with found bump: %v", err)
	}
	if direct != first {
		t.Fatalf("create program address disagrees with find: %s != %s", direct, first)
	}
}

func TestFindProgramAddressRejectsLongSeeds(t *testing.T) {
	long := make([]byte, maxSeedLength+1)
	if _, _, err := FindProgramAddress([][]byte{long}, TokenProgramID); !errors.Is(err, ErrInvalidSeeds) {
		t.Fatalf("expected ErrInvalidSeeds, got %v", err)
	}
}

func TestFindAssociatedTokenAddressDependsOnWalletAndMint(t *testing.T) {
	wallet := NewUniquePublicKey()
	mintA := NewUniquePublicKey()
	mintB := NewUniquePublicKey()

	a, err := FindAssociatedTokenAddress(wallet, mintA)
	if err != nil {
		t.Fatalf("derive a: %v", err)
	}
	b, err := FindAssociatedTokenAddress(wallet, mintB)
	if err != nil {
		t.Fatalf("derive b: %v", err)
	}
	if a == b {
		t.Fatal("different mints produced the same associated account")
	}
	if a == wallet || a == mintA {
		t.Fatal("associated account collides with an input key")
	}
}
