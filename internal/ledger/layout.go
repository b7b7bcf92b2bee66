package ledger

import (
	"encoding/binary"
	"fmt"
)

const (
	// MintSize is the stored length of a mint record.
	MintSize = 82
	// AccountSize is the stored length of a token account record.
	AccountSize = 165

	optionSize = 4
)

// Kind classifies a stored record by its layout.
type Kind int

const (
	KindUnknown Kind = iota
	KindMint
	KindAccount
)

func (k Kind) String() string {
	switch k {
	case KindMint:
		return "mint"
	case KindAccount:
		return "token_account"
	default:
		return "unknown"
	}
}

// Classify resolves what a stored record is from its length. Empty data means the address
// holds nothing.
func Classify(data []byte) Kind {
	switch len(data) {
	case MintSize:
		return KindMint
	case AccountSize:
		return KindAccount
	default:
		return KindUnknown
	}
}

// AccountState is the lifecycle state of a token account.
type AccountState uint8

const (
	AccountStateUninitialized AccountState = iota
	AccountStateInitialized
	AccountStateFrozen
)

func (s AccountState) String() string {
	switch s {
	case AccountStateInitialized:
		return "initialized"
	case AccountStateFrozen:
		return "frozen"
	default:
		return "uninitialized"
	}
}

// Mint is the supply record of a token.
type Mint struct {
	MintAuthority   *PublicKey
	Supply          uint64
	Decimals        uint8
	IsInitialized   bool
	FreezeAuthority *PublicKey
}

// Account is the balance record of one owner for one mint.
type Account struct {
	Mint            PublicKey
	Owner           PublicKey
	Amount          uint64
	Delegate        *PublicKey
	State           AccountState
	IsNative        *uint64
	DelegatedAmount uint64
	CloseAuthority  *PublicKey
}

// IsFrozen reports whether the account is frozen.
func (a Account) IsFrozen() bool { return a.State == AccountStateFrozen }

// IsInitialized reports whether the account has been initialized.
func (a Account) IsInitialized() bool { return a.State != AccountStateUninitialized }

// EffectiveCloseAuthority is the close authority, falling back to the owner when unset.
func (a Account) EffectiveCloseAuthority() PublicKey {
	if a.CloseAuthority != nil {
		return *a.CloseAuthority
	}
	return a.Owner
}

// Pack encodes the mint into its stored layout.
func (m Mint) Pack() []byte {
	buf := make([]byte, MintSize)
	off := putKeyOption(buf, 0, m.MintAuthority)
	binary.LittleEndian.PutUint64(buf[off:], m.Supply)
	off += 8
	buf[off] = m.Decimals
	off++
	if m.IsInitialized {
		buf[off] = 1
	}
	off++
	putKeyOption(buf, off, m.FreezeAuthority)
	return buf
}

// UnpackMint decodes a stored mint record.
func UnpackMint(data []byte) (Mint, error) {
	if len(data) != MintSize {
		return Mint{}, fmt.Errorf("%w: mint record is %d bytes", ErrInvalidAccountData, len(data))
	}
	var (
		m   Mint
		err error
	)
	off := 0
	if m.MintAuthority, off, err = keyOption(data, off); err != nil {
		return Mint{}, err
	}
	m.Supply = binary.LittleEndian.Uint64(data[off:])
	off += 8
	m.Decimals = data[off]
	off++
	switch data[off] {
	case 0:
	case 1:
		m.IsInitialized = true
	default:
		return Mint{}, fmt.Errorf("%w: bad initialized flag %d", ErrInvalidAccountData, data[off])
	}
	off++
	if m.FreezeAuthority, _, err = keyOption(data, off); err != nil {
		return Mint{}, err
	}
	return m, nil
}

// Pack encodes the account into its stored layout.
func (a Account) Pack() []byte {
	buf := make([]byte, AccountSize)
	off := copy(buf, a.Mint[:])
	off += copy(buf[off:], a.Owner[:])
	binary.LittleEndian.PutUint64(buf[off:], a.Amount)
	off += 8
	off = putKeyOption(buf, off, a.Delegate)
	buf[off] = byte(a.State)
	off++
	if a.IsNative != nil {
		binary.LittleEndian.PutUint32(buf[off:], 1)
		binary.LittleEndian.PutUint64(buf[off+optionSize:], *a.IsNative)
	}
	off += optionSize + 8
	binary.LittleEndian.PutUint64(buf[off:], a.DelegatedAmount)
	off += 8
	putKeyOption(buf, off, a.CloseAuthority)
	return buf
}

// UnpackAccount decodes a stored token account record.
func UnpackAccount(data []byte) (Account, error) {
	if len(data) != AccountSize {
		return Account{}, fmt.Errorf("%w: token account record is %d bytes", ErrInvalidAccountData, len(data))
	}
	var (
		a   Account
		err error
	)
	off := copy(a.Mint[:], data[0:32])
	off += copy(a.Owner[:], data[off:off+32])
	a.Amount = binary.LittleEndian.Uint64(data[off:])
	off += 8
	if a.Delegate, off, err = keyOption(data, off); err != nil {
		return Account{}, err
	}
	if data[off] > byte(AccountStateFrozen) {
		return Account{}, fmt.Errorf("%w: bad account state %d", ErrInvalidAccountData, data[off])
	}
	a.State = AccountState(data[off])
	off++
	switch tag := binary.LittleEndian.Uint32(data[off:]); tag {
	case 0:
	case 1:
		v := binary.LittleEndian.Uint64(data[off+optionSize:])
		a.IsNative = &v
	default:
		return Account{}, fmt.Errorf("%w: bad option tag %d", ErrInvalidAccountData, tag)
	}
	off += optionSize + 8
	a.DelegatedAmount = binary.LittleEndian.Uint64(data[off:])
	off += 8
	if a.CloseAuthority, _, err = keyOption(data, off); err != nil {
		return Account{}, err
	}
	return a, nil
}

func putKeyOption(buf []byte, off int, key *PublicKey) int {
	if key != nil {
		binary.LittleEndian.PutUint32(buf[off:], 1)
		copy(buf[off+optionSize:], key[:])
	}
	return off + optionSize + PublicKeySize
}

func keyOption(data []byte, off int) (*PublicKey, int, error) {
	next := off + optionSize + PublicKeySize
	switch tag := binary.LittleEndian.Uint32(data[off:]); tag {
	case 0:
		return nil, next, nil
	case 1:
		var key PublicKey
		copy(key[:], data[off+optionSize:next])
		return &key, next, nil
	default:
		return nil, next, fmt.Errorf("%w: bad option tag %d", ErrInvalidAccountData, tag)
	}
}
