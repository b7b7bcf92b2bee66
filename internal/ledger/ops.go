package ledger

import (
	"fmt"
	"math/bits"
)

// Ops applies token rules to the records locked by one unit of work. Each method either
// fully applies its change to the unit of work or leaves it untouched and returns an error;
// whether anything reaches the ledger is decided when the unit of work commits.
type Ops struct {
	tx recordTx
}

// Kind classifies the record stored at key. Unrecognized or empty records are KindUnknown.
func (o *Ops) Kind(key PublicKey) (Kind, error) {
	data, err := o.tx.get(key)
	if err != nil {
		return KindUnknown, err
	}
	return Classify(data), nil
}

// Account decodes the initialized token account at key.
func (o *Ops) Account(key PublicKey) (Account, error) {
	data, err := o.tx.get(key)
	if err != nil {
		return Account{}, err
	}
	acct, err := decodeAccount(data)
	if err != nil {
		return Account{}, fmt.Errorf("token account %s: %w", key, err)
	}
	return acct, nil
}

// Mint decodes the initialized mint at key.
func (o *Ops) Mint(key PublicKey) (Mint, error) {
	data, err := o.tx.get(key)
	if err != nil {
		return Mint{}, err
	}
	mint, err := decodeMint(data)
	if err != nil {
		return Mint{}, fmt.Errorf("mint %s: %w", key, err)
	}
	return mint, nil
}

// InitMint creates a mint record at an empty address.
func (o *Ops) InitMint(key PublicKey, decimals uint8, mintAuthority PublicKey, freezeAuthority *PublicKey) error {
	if err := o.requireEmpty(key); err != nil {
		return err
	}
	mint := Mint{
		MintAuthority:   &mintAuthority,
		Decimals:        decimals,
		IsInitialized:   true,
		FreezeAuthority: cloneKey(freezeAuthority),
	}
	return o.tx.put(key, mint.Pack())
}

// InitAccount creates a token account for owner at an empty address.
func (o *Ops) InitAccount(key, mint, owner PublicKey) error {
	if err := o.requireEmpty(key); err != nil {
		return err
	}
	if _, err := o.Mint(mint); err != nil {
		return err
	}
	acct := Account{
		Mint:  mint,
		Owner: owner,
		State: AccountStateInitialized,
	}
	return o.tx.put(key, acct.Pack())
}

// MintTo issues amount new tokens into destination. authority must be the mint authority.
func (o *Ops) MintTo(mintKey, destination, authority PublicKey, amount uint64) error {
	dst, err := o.Account(destination)
	if err != nil {
		return err
	}
	if dst.IsFrozen() {
		return fmt.Errorf("token account %s: %w", destination, ErrAccountFrozen)
	}
	if dst.Mint != mintKey {
		return ErrMintMismatch
	}
	mint, err := o.Mint(mintKey)
	if err != nil {
		return err
	}
	if mint.MintAuthority == nil {
		return ErrFixedSupply
	}
	if *mint.MintAuthority != authority {
		return fmt.Errorf("mint authority: %w", ErrOwnerMismatch)
	}

	supply, carry := bits.Add64(mint.Supply, amount, 0)
	if carry != 0 {
		return fmt.Errorf("supply: %w", ErrOverflow)
	}
	balance, carry := bits.Add64(dst.Amount, amount, 0)
	if carry != 0 {
		return fmt.Errorf("balance: %w", ErrOverflow)
	}
	mint.Supply = supply
	dst.Amount = balance

	if err := o.tx.put(mintKey, mint.Pack()); err != nil {
		return err
	}
	return o.tx.put(destination, dst.Pack())
}

// Burn destroys amount tokens held by source. authority must be the owner or a delegate
// holding enough allowance.
func (o *Ops) Burn(mintKey, source, authority PublicKey, amount uint64) error {
	src, err := o.Account(source)
	if err != nil {
		return err
	}
	if src.IsFrozen() {
		return fmt.Errorf("token account %s: %w", source, ErrAccountFrozen)
	}
	if src.Mint != mintKey {
		return ErrMintMismatch
	}
	mint, err := o.Mint(mintKey)
	if err != nil {
		return err
	}
	if src.Amount < amount {
		return ErrInsufficientFunds
	}
	if err := authorizeSpend(&src, authority, amount); err != nil {
		return err
	}
	if mint.Supply < amount {
		return fmt.Errorf("supply: %w", ErrOverflow)
	}
	src.Amount -= amount
	mint.Supply -= amount

	if err := o.tx.put(source, src.Pack()); err != nil {
		return err
	}
	return o.tx.put(mintKey, mint.Pack())
}

// Transfer moves amount from source to destination. A zero amount is legal and runs every
// check without changing balances.
func (o *Ops) Transfer(source, destination, authority PublicKey, amount uint64) error {
	src, err := o.Account(source)
	if err != nil {
		return err
	}
	dst, err := o.Account(destination)
	if err != nil {
		return err
	}
	if src.IsFrozen() {
		return fmt.Errorf("token account %s: %w", source, ErrAccountFrozen)
	}
	if dst.IsFrozen() {
		return fmt.Errorf("token account %s: %w", destination, ErrAccountFrozen)
	}
	if src.Mint != dst.Mint {
		return ErrMintMismatch
	}
	if src.Amount < amount {
		return ErrInsufficientFunds
	}
	if err := authorizeSpend(&src, authority, amount); err != nil {
		return err
	}

	if source == destination {
		// Self transfers only consume delegate allowance.
		return o.tx.put(source, src.Pack())
	}

	balance, carry := bits.Add64(dst.Amount, amount, 0)
	if carry != 0 {
		return fmt.Errorf("balance: %w", ErrOverflow)
	}
	src.Amount -= amount
	dst.Amount = balance

	if err := o.tx.put(source, src.Pack()); err != nil {
		return err
	}
	return o.tx.put(destination, dst.Pack())
}

// Approve lets delegate move up to amount out of source on the owner's behalf. A new
// approval replaces the previous one.
func (o *Ops) Approve(source, delegate, owner PublicKey, amount uint64) error {
	src, err := o.Account(source)
	if err != nil {
		return err
	}
	if src.IsFrozen() {
		return fmt.Errorf("token account %s: %w", source, ErrAccountFrozen)
	}
	if src.Owner != owner {
		return ErrOwnerMismatch
	}
	src.Delegate = &delegate
	src.DelegatedAmount = amount
	return o.tx.put(source, src.Pack())
}

// Revoke clears the delegate of source and its allowance.
func (o *Ops) Revoke(source, owner PublicKey) error {
	src, err := o.Account(source)
	if err != nil {
		return err
	}
	if src.IsFrozen() {
		return fmt.Errorf("token account %s: %w", source, ErrAccountFrozen)
	}
	if src.Owner != owner {
		return ErrOwnerMismatch
	}
	src.Delegate = nil
	src.DelegatedAmount = 0
	return o.tx.put(source, src.Pack())
}

// SetMintAuthority reassigns the mint or freeze authority of a mint. A nil next clears the
// slot for good: a cleared slot can never be set again.
func (o *Ops) SetMintAuthority(key PublicKey, authorityType AuthorityType, current PublicKey, next *PublicKey) error {
	mint, err := o.Mint(key)
	if err != nil {
		return err
	}
	var slot **PublicKey
	switch authorityType {
	case AuthorityMintTokens:
		slot = &mint.MintAuthority
	case AuthorityFreezeAccount:
		slot = &mint.FreezeAuthority
	default:
		return fmt.Errorf("%s on mint: %w", authorityType, ErrAuthorityTypeNotSupported)
	}
	if *slot == nil {
		return fmt.Errorf("%s: %w", authorityType, ErrAuthorityRevoked)
	}
	if **slot != current {
		return fmt.Errorf("%s: %w", authorityType, ErrOwnerMismatch)
	}
	*slot = cloneKey(next)
	return o.tx.put(key, mint.Pack())
}

// SetAccountAuthority reassigns the owner or close authority of a token account. Changing
// the owner drops any delegate. A nil close authority hands closing back to the owner.
func (o *Ops) SetAccountAuthority(key PublicKey, authorityType AuthorityType, current PublicKey, next *PublicKey) error {
	acct, err := o.Account(key)
	if err != nil {
		return err
	}
	if acct.IsFrozen() {
		return fmt.Errorf("token account %s: %w", key, ErrAccountFrozen)
	}
	switch authorityType {
	case AuthorityAccountOwner:
		if acct.Owner != current {
			return fmt.Errorf("%s: %w", authorityType, ErrOwnerMismatch)
		}
		if next == nil {
			return ErrOwnerRequired
		}
		acct.Owner = *next
		acct.Delegate = nil
		acct.DelegatedAmount = 0
	case AuthorityCloseAccount:
		if acct.EffectiveCloseAuthority() != current {
			return fmt.Errorf("%s: %w", authorityType, ErrOwnerMismatch)
		}
		acct.CloseAuthority = cloneKey(next)
	default:
		return fmt.Errorf("%s on token account: %w", authorityType, ErrAuthorityTypeNotSupported)
	}
	return o.tx.put(key, acct.Pack())
}

// CloseAccount deletes an empty token account. Rent is not modeled, so destination only
// has to differ from the closed account.
func (o *Ops) CloseAccount(key, destination, authority PublicKey) error {
	if key == destination {
		return ErrInvalidDestination
	}
	acct, err := o.Account(key)
	if err != nil {
		return err
	}
	if acct.IsFrozen() {
		return fmt.Errorf("token account %s: %w", key, ErrAccountFrozen)
	}
	if acct.Amount != 0 {
		return ErrAccountNotEmpty
	}
	if acct.EffectiveCloseAuthority() != authority {
		return fmt.Errorf("close authority: %w", ErrOwnerMismatch)
	}
	return o.tx.put(key, nil)
}

// FreezeAccount freezes a token account. authority must be the mint's freeze authority.
func (o *Ops) FreezeAccount(key, mintKey, authority PublicKey) error {
	return o.setFrozen(key, mintKey, authority, true)
}

// ThawAccount unfreezes a token account. authority must be the mint's freeze authority.
func (o *Ops) ThawAccount(key, mintKey, authority PublicKey) error {
	return o.setFrozen(key, mintKey, authority, false)
}

func (o *Ops) setFrozen(key, mintKey, authority PublicKey, freeze bool) error {
	acct, err := o.Account(key)
	if err != nil {
		return err
	}
	if acct.Mint != mintKey {
		return ErrMintMismatch
	}
	if acct.IsFrozen() == freeze {
		return fmt.Errorf("token account %s is %s: %w", key, acct.State, ErrInvalidState)
	}
	mint, err := o.Mint(mintKey)
	if err != nil {
		return err
	}
	if mint.FreezeAuthority == nil {
		return ErrMintCannotFreeze
	}
	if *mint.FreezeAuthority != authority {
		return fmt.Errorf("freeze authority: %w", ErrOwnerMismatch)
	}
	if freeze {
		acct.State = AccountStateFrozen
	} else {
		acct.State = AccountStateInitialized
	}
	return o.tx.put(key, acct.Pack())
}

func (o *Ops) requireEmpty(key PublicKey) error {
	data, err := o.tx.get(key)
	if err != nil {
		return err
	}
	if len(data) != 0 {
		return fmt.Errorf("%s: %w", key, ErrAlreadyInUse)
	}
	return nil
}

// authorizeSpend checks authority may move amount out of acct, consuming delegate allowance
// when the delegate signs.
func authorizeSpend(acct *Account, authority PublicKey, amount uint64) error {
	if acct.Owner == authority {
		return nil
	}
	if acct.Delegate == nil || *acct.Delegate != authority {
		return ErrOwnerMismatch
	}
	if acct.DelegatedAmount < amount {
		return fmt.Errorf("delegated allowance: %w", ErrInsufficientFunds)
	}
	acct.DelegatedAmount -= amount
	if acct.DelegatedAmount == 0 {
		acct.Delegate = nil
	}
	return nil
}

func cloneKey(key *PublicKey) *PublicKey {
	if key == nil {
		return nil
	}
	k := *key
	return &k
}
