package token

import (
	"errors"

	"github.com/congo-pay/hoard_token/internal/ledger"
)

var errIssuanceSpent = errors.New("initial issuance already used")

// issuance is the right of a freshly created mint to sign its own first mint-to. It is
// created together with the mint and can be spent once; afterwards the mint is governed by
// its recorded mint authority only.
type issuance struct {
	mint  ledger.PublicKey
	spent bool
}

func newIssuance(mint ledger.PublicKey) *issuance {
	return &issuance{mint: mint}
}

// consume returns the signer for the initial mint-to.
func (i *issuance) consume() (ledger.PublicKey, error) {
	if i.spent {
		return ledger.PublicKey{}, errIssuanceSpent
	}
	i.spent = true
	return i.mint, nil
}
