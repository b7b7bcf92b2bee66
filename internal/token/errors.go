package token

import (
	"errors"
	"fmt"

	"github.com/congo-pay/hoard_token/internal/fee"
	"github.com/congo-pay/hoard_token/internal/ledger"
)

var (
	// ErrUnauthorized indicates the signer does not hold the authority the operation requires.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInsufficientBalance indicates the source balance or delegate allowance is too small.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrAmountOverflow indicates the fee computation would leave the 64-bit domain.
	ErrAmountOverflow = fee.ErrAmountOverflow

	// ErrSupplyOverflow indicates a supply or balance would leave the 64-bit domain.
	ErrSupplyOverflow = errors.New("supply overflow")

	// ErrInvalidAccountType indicates an address holds neither a mint nor a token account of the
	// expected kind.
	ErrInvalidAccountType = errors.New("invalid account type")

	// ErrInvalidAuthorityType indicates the authority type cannot be applied to the target.
	ErrInvalidAuthorityType = errors.New("invalid authority type")

	// ErrAuthorityAlreadyRevoked indicates the authority slot was permanently cleared.
	ErrAuthorityAlreadyRevoked = errors.New("authority already revoked")

	// ErrTransferFailed indicates a leg of a fee-split transfer could not commit. Nothing was
	// applied.
	ErrTransferFailed = errors.New("transfer failed")

	// ErrAccountNotEmpty indicates a close of an account that still holds tokens.
	ErrAccountNotEmpty = errors.New("account not empty")

	// ErrMintMismatch indicates the accounts of one operation belong to different mints.
	ErrMintMismatch = errors.New("mint mismatch")

	// ErrAccountFrozen indicates a frozen account was asked to move funds or change state.
	ErrAccountFrozen = errors.New("account frozen")

	// ErrAlreadyInitialized indicates an initialize against an occupied address.
	ErrAlreadyInitialized = errors.New("already initialized")

	// ErrInvalidAccountState indicates a freeze of a frozen account or a thaw of a thawed one.
	ErrInvalidAccountState = errors.New("invalid account state")

	// ErrInvalidRequest indicates malformed input.
	ErrInvalidRequest = errors.New("invalid request")
)

var ledgerErrors = []struct {
	cause error
	core  error
}{
	{ledger.ErrOwnerMismatch, ErrUnauthorized},
	{ledger.ErrFixedSupply, ErrUnauthorized},
	{ledger.ErrMintCannotFreeze, ErrUnauthorized},
	{ledger.ErrInsufficientFunds, ErrInsufficientBalance},
	{ledger.ErrOverflow, ErrSupplyOverflow},
	{ledger.ErrMintMismatch, ErrMintMismatch},
	{ledger.ErrAccountFrozen, ErrAccountFrozen},
	{ledger.ErrAccountNotEmpty, ErrAccountNotEmpty},
	{ledger.ErrInvalidAccountData, ErrInvalidAccountType},
	{ledger.ErrUninitializedAccount, ErrInvalidAccountType},
	{ledger.ErrAlreadyInUse, ErrAlreadyInitialized},
	{ledger.ErrAuthorityTypeNotSupported, ErrInvalidAuthorityType},
	{ledger.ErrOwnerRequired, ErrInvalidAuthorityType},
	{ledger.ErrAuthorityRevoked, ErrAuthorityAlreadyRevoked},
	{ledger.ErrInvalidState, ErrInvalidAccountState},
	{ledger.ErrInvalidDestination, ErrInvalidRequest},
	{ledger.ErrAccountNotLocked, ErrInvalidRequest},
}

// translate classifies a ledger error into the service taxonomy. The ledger cause stays in the
// chain so both levels match errors.Is. Errors outside the ledger taxonomy pass through.
func translate(err error) error {
	if err == nil {
		return nil
	}
	for _, m := range ledgerErrors {
		if errors.Is(err, m.cause) {
			if errors.Is(err, m.core) {
				return err
			}
			return fmt.Errorf("%w: %w", m.core, err)
		}
	}
	return err
}
