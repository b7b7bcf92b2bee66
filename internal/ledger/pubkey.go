package ledger

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// PublicKeySize is the length in bytes of an identity.
const PublicKeySize = 32

const (
	maxSeeds      = 16
	maxSeedLength = 32
	pdaMarker     = "ProgramDerivedAddress"
)

var (
	// TokenProgramID owns every mint and token account record.
	TokenProgramID = MustParsePublicKey("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")

	// AssociatedTokenProgramID derives the canonical token account of a wallet for a mint.
	AssociatedTokenProgramID = MustParsePublicKey("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efcZ6PP6MRW8")

	// ErrInvalidPublicKey is returned when a textual key does not decode to 32 bytes.
	ErrInvalidPublicKey = errors.New("invalid public key")

	// ErrInvalidSeeds is returned when program address seeds exceed the allowed shape.
	ErrInvalidSeeds = errors.New("invalid program address seeds")

	// ErrNoViableBump is returned when every bump yields an on-curve address.
	ErrNoViableBump = errors.New("unable to find a viable program address bump seed")
)

// PublicKey identifies an account, a mint or a signing authority.
type PublicKey [PublicKeySize]byte

// ParsePublicKey decodes a base58 identity.
func ParsePublicKey(s string) (PublicKey, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return PublicKey{}, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	if len(raw) != PublicKeySize {
		return PublicKey{}, fmt.Errorf("%w: decoded %d bytes", ErrInvalidPublicKey, len(raw))
	}
	var key PublicKey
	copy(key[:], raw)
	return key, nil
}

// MustParsePublicKey is ParsePublicKey for compile-time constants.
func MustParsePublicKey(s string) PublicKey {
	key, err := ParsePublicKey(s)
	if err != nil {
		panic(err)
	}
	return key
}

// NewUniquePublicKey returns a random identity. Used for fresh keypairs in tests and tooling.
func NewUniquePublicKey() PublicKey {
	var key PublicKey
	if _, err := rand.Read(key[:]); err != nil {
		panic(fmt.Sprintf("read random key: %v", err))
	}
	return key
}

// String renders the key in base58.
func (k PublicKey) String() string {
	return base58.Encode(k[:])
}

// IsZero reports whether every byte of the key is zero.
func (k PublicKey) IsZero() bool {
	return k == PublicKey{}
}

// Less orders keys bytewise; lock acquisition relies on it.
func (k PublicKey) Less(other PublicKey) bool {
	return bytes.Compare(k[:], other[:]) < 0
}

// MarshalText implements encoding.TextMarshaler.
func (k PublicKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *PublicKey) UnmarshalText(text []byte) error {
	parsed, err := ParsePublicKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// CreateProgramAddress hashes seeds under programID and rejects results that lie on the
// ed25519 curve, since those could have a private key.
func CreateProgramAddress(seeds [][]byte, programID PublicKey) (PublicKey, error) {
	if len(seeds) > maxSeeds {
		return PublicKey{}, ErrInvalidSeeds
	}
	h := sha256.New()
	for _, seed := range seeds {
		if len(seed) > maxSeedLength {
			return PublicKey{}, ErrInvalidSeeds
		}
		h.Write(seed)
	}
	h.Write(programID[:])
	h.Write([]byte(pdaMarker))

	var key PublicKey
	copy(key[:], h.Sum(nil))
	if isOnCurve(key[:]) {
		return PublicKey{}, ErrInvalidSeeds
	}
	return key, nil
}

// FindProgramAddress searches bumps from 255 down and returns the first off-curve address.
func FindProgramAddress(seeds [][]byte, programID PublicKey) (PublicKey, uint8, error) {
	if len(seeds) >= maxSeeds {
		return PublicKey{}, 0, ErrInvalidSeeds
	}
	for _, seed := range seeds {
		if len(seed) > maxSeedLength {
			return PublicKey{}, 0, ErrInvalidSeeds
		}
	}

	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)
	for bump := 255; bump > 0; bump-- {
		withBump[len(seeds)] = []byte{byte(bump)}
		if key, err := CreateProgramAddress(withBump, programID); err == nil {
			return key, uint8(bump), nil
		}
	}
	return PublicKey{}, 0, ErrNoViableBump
}

// FindAssociatedTokenAddress returns the canonical token account of wallet for mint.
func FindAssociatedTokenAddress(wallet, mint PublicKey) (PublicKey, error) {
	key, _, err := FindProgramAddress([][]byte{wallet[:], TokenProgramID[:], mint[:]}, AssociatedTokenProgramID)
	if err != nil {
		return PublicKey{}, fmt.Errorf("derive associated token address: %w", err)
	}
	return key, nil
}

func isOnCurve(point []byte) bool {
	if len(point) != PublicKeySize {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}
