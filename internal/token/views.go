package token

import (
	"context"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/congo-pay/hoard_token/internal/ledger"
)

// AccountView is the read model of a token account.
type AccountView struct {
	Address         ledger.PublicKey  `json:"address"`
	Mint            ledger.PublicKey  `json:"mint"`
	Owner           ledger.PublicKey  `json:"owner"`
	Amount          uint64            `json:"amount"`
	UIAmount        string            `json:"ui_amount"`
	Decimals        uint8             `json:"decimals"`
	Delegate        *ledger.PublicKey `json:"delegate"`
	DelegatedAmount uint64            `json:"delegated_amount"`
	State           string            `json:"state"`
	CloseAuthority  ledger.PublicKey  `json:"close_authority"`
}

// MintView is the read model of a mint.
type MintView struct {
	Address         ledger.PublicKey  `json:"address"`
	MintAuthority   *ledger.PublicKey `json:"mint_authority"`
	FreezeAuthority *ledger.PublicKey `json:"freeze_authority"`
	Supply          uint64            `json:"supply"`
	UISupply        string            `json:"ui_supply"`
	Decimals        uint8             `json:"decimals"`
}

// UIAmount renders a base-unit amount with the mint's decimals, e.g. 1500000000 with 9
// decimals is "1.5".
func UIAmount(amount uint64, decimals uint8) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(amount), -int32(decimals)).String()
}

// Account returns the current state of a token account.
func (s *Service) Account(ctx context.Context, key ledger.PublicKey) (AccountView, error) {
	acct, err := ledger.LoadAccount(ctx, s.ledger, key)
	if err != nil {
		return AccountView{}, translate(err)
	}
	mint, err := ledger.LoadMint(ctx, s.ledger, acct.Mint)
	if err != nil {
		return AccountView{}, translate(err)
	}
	return AccountView{
		Address:         key,
		Mint:            acct.Mint,
		Owner:           acct.Owner,
		Amount:          acct.Amount,
		UIAmount:        UIAmount(acct.Amount, mint.Decimals),
		Decimals:        mint.Decimals,
		Delegate:        acct.Delegate,
		DelegatedAmount: acct.DelegatedAmount,
		State:           acct.State.String(),
		CloseAuthority:  acct.EffectiveCloseAuthority(),
	}, nil
}

// MintInfo returns the current state of a mint.
func (s *Service) MintInfo(ctx context.Context, key ledger.PublicKey) (MintView, error) {
	mint, err := ledger.LoadMint(ctx, s.ledger, key)
	if err != nil {
		return MintView{}, translate(err)
	}
	return MintView{
		Address:         key,
		MintAuthority:   mint.MintAuthority,
		FreezeAuthority: mint.FreezeAuthority,
		Supply:          mint.Supply,
		UISupply:        UIAmount(mint.Supply, mint.Decimals),
		Decimals:        mint.Decimals,
	}, nil
}
