package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var (
	// ErrInsufficientFunds occurs when the source account lacks the balance, or a delegate
	// lacks the allowance, to cover a requested movement.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrOwnerMismatch indicates the signer is not the authority the record requires.
	ErrOwnerMismatch = errors.New("owner does not match")

	// ErrMintMismatch indicates the records of one instruction reference different mints.
	ErrMintMismatch = errors.New("account not associated with this mint")

	// ErrAccountFrozen indicates a frozen account was asked to move funds or change state.
	ErrAccountFrozen = errors.New("account is frozen")

	// ErrFixedSupply indicates the mint authority was revoked so the supply cannot grow.
	ErrFixedSupply = errors.New("fixed supply")

	// ErrMintCannotFreeze indicates the mint has no freeze authority.
	ErrMintCannotFreeze = errors.New("mint cannot freeze accounts")

	// ErrOverflow indicates an amount or supply computation left the u64 domain.
	ErrOverflow = errors.New("operation overflowed")

	// ErrAccountNotEmpty indicates a close was attempted on an account holding tokens.
	ErrAccountNotEmpty = errors.New("non-native account can only be closed if its balance is zero")

	// ErrInvalidAccountData indicates a stored record does not decode into the expected layout.
	ErrInvalidAccountData = errors.New("invalid account data")

	// ErrUninitializedAccount indicates the address holds no initialized record.
	ErrUninitializedAccount = errors.New("uninitialized account")

	// ErrAlreadyInUse indicates an initialize targeted an address that already holds a record.
	ErrAlreadyInUse = errors.New("account already in use")

	// ErrAuthorityTypeNotSupported indicates the authority type does not exist on the target record.
	ErrAuthorityTypeNotSupported = errors.New("authority type not supported for this account")

	// ErrAuthorityRevoked indicates the authority slot was permanently cleared.
	ErrAuthorityRevoked = errors.New("authority has been revoked")

	// ErrOwnerRequired indicates an attempt to leave a token account without an owner.
	ErrOwnerRequired = errors.New("token account owner cannot be removed")

	// ErrInvalidState indicates a freeze of a frozen account or a thaw of an unfrozen one.
	ErrInvalidState = errors.New("invalid account state for operation")

	// ErrInvalidDestination indicates a close whose destination is the closed account itself.
	ErrInvalidDestination = errors.New("invalid close destination")

	// ErrAccountNotLocked indicates a unit of work touched an address it did not declare.
	ErrAccountNotLocked = errors.New("account not declared in unit of work")
)

// AuthorityType identifies the authority slot being reassigned on a mint or token account.
type AuthorityType uint8

const (
	AuthorityMintTokens AuthorityType = iota
	AuthorityFreezeAccount
	AuthorityAccountOwner
	AuthorityCloseAccount
)

var authorityTypeNames = map[AuthorityType]string{
	AuthorityMintTokens:    "mint_tokens",
	AuthorityFreezeAccount: "freeze_account",
	AuthorityAccountOwner:  "account_owner",
	AuthorityCloseAccount:  "close_account",
}

func (t AuthorityType) String() string {
	if name, ok := authorityTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("authority_type(%d)", uint8(t))
}

// ParseAuthorityType parses the wire name of an authority type.
func ParseAuthorityType(s string) (AuthorityType, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	for t, name := range authorityTypeNames {
		if name == normalized {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrAuthorityTypeNotSupported, s)
}

// MarshalText implements encoding.TextMarshaler.
func (t AuthorityType) MarshalText() ([]byte, error) {
	if _, ok := authorityTypeNames[t]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrAuthorityTypeNotSupported, uint8(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *AuthorityType) UnmarshalText(text []byte) error {
	parsed, err := ParseAuthorityType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Receipt identifies a committed unit of work.
type Receipt struct {
	TransactionID string
	CommittedAt   time.Time
}

// Ledger defines the contract implemented by ledger backends (e.g. Postgres).
//
// Update runs fn as one unit of work over the declared accounts: every write made through
// the Ops view commits together, or none does when fn returns an error. Conflicting units of
// work on the same accounts are serialized by the backend.
type Ledger interface {
	Update(ctx context.Context, keys []PublicKey, fn func(ops *Ops) error) (Receipt, error)
	Load(ctx context.Context, key PublicKey) ([]byte, error)
}

// recordTx is the raw record access a backend hands to Ops for the span of one unit of work.
// A nil slice from get means the address holds nothing; put with nil deletes the record.
type recordTx interface {
	get(key PublicKey) ([]byte, error)
	put(key PublicKey, data []byte) error
}

// LoadAccount reads and decodes a token account outside any unit of work.
func LoadAccount(ctx context.Context, l Ledger, key PublicKey) (Account, error) {
	data, err := l.Load(ctx, key)
	if err != nil {
		return Account{}, err
	}
	return decodeAccount(data)
}

// LoadMint reads and decodes a mint outside any unit of work.
func LoadMint(ctx context.Context, l Ledger, key PublicKey) (Mint, error) {
	data, err := l.Load(ctx, key)
	if err != nil {
		return Mint{}, err
	}
	return decodeMint(data)
}

func decodeAccount(data []byte) (Account, error) {
	if len(data) == 0 {
		return Account{}, ErrUninitializedAccount
	}
	acct, err := UnpackAccount(data)
	if err != nil {
		return Account{}, err
	}
	if !acct.IsInitialized() {
		return Account{}, ErrUninitializedAccount
	}
	return acct, nil
}

func decodeMint(data []byte) (Mint, error) {
	if len(data) == 0 {
		return Mint{}, ErrUninitializedAccount
	}
	mint, err := UnpackMint(data)
	if err != nil {
		return Mint{}, err
	}
	if !mint.IsInitialized {
		return Mint{}, ErrUninitializedAccount
	}
	return mint, nil
}

// sortedKeys dedupes keys and orders them so locks are always taken in the same order.
func sortedKeys(keys []PublicKey) []PublicKey {
	seen := make(map[PublicKey]struct{}, len(keys))
	out := make([]PublicKey, 0, len(keys))
	for _, k := range keys {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

func errNotLocked(key PublicKey) error {
	return fmt.Errorf("%s: %w", key, ErrAccountNotLocked)
}
