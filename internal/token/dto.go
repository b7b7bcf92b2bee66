package token

import "github.com/congo-pay/hoard_token/internal/ledger"

type initializeRequest struct {
	Mint        ledger.PublicKey `json:"mint"`
	Authority   ledger.PublicKey `json:"authority"`
	TotalSupply uint64           `json:"total_supply"`
}

type initializeMintRequest struct {
	Mint            ledger.PublicKey  `json:"mint"`
	Decimals        uint8             `json:"decimals"`
	MintAuthority   ledger.PublicKey  `json:"mint_authority"`
	FreezeAuthority *ledger.PublicKey `json:"freeze_authority"`
}

type mintToRequest struct {
	Destination ledger.PublicKey `json:"destination"`
	Authority   ledger.PublicKey `json:"authority"`
	Amount      uint64           `json:"amount"`
}

type burnRequest struct {
	Source    ledger.PublicKey `json:"source"`
	Authority ledger.PublicKey `json:"authority"`
	Amount    uint64           `json:"amount"`
}

type initializeAccountRequest struct {
	Account ledger.PublicKey `json:"account"`
	Mint    ledger.PublicKey `json:"mint"`
	Owner   ledger.PublicKey `json:"owner"`
}

type transferRequest struct {
	Source            ledger.PublicKey `json:"source"`
	Destination       ledger.PublicKey `json:"destination"`
	EcosystemTreasury ledger.PublicKey `json:"ecosystem_treasury"`
	RewardTreasury    ledger.PublicKey `json:"reward_treasury"`
	Authority         ledger.PublicKey `json:"authority"`
	Amount            uint64           `json:"amount"`
}

type approveRequest struct {
	Delegate ledger.PublicKey `json:"delegate"`
	Owner    ledger.PublicKey `json:"owner"`
	Amount   uint64           `json:"amount"`
}

type ownerRequest struct {
	Owner ledger.PublicKey `json:"owner"`
}

type setAuthorityRequest struct {
	Target           ledger.PublicKey      `json:"target"`
	AuthorityType    *ledger.AuthorityType `json:"authority_type"`
	CurrentAuthority ledger.PublicKey      `json:"current_authority"`
	NewAuthority     *ledger.PublicKey     `json:"new_authority"`
}

type closeAccountRequest struct {
	Destination ledger.PublicKey `json:"destination"`
	Authority   ledger.PublicKey `json:"authority"`
}

type freezeRequest struct {
	Mint      ledger.PublicKey `json:"mint"`
	Authority ledger.PublicKey `json:"authority"`
}

type quoteResponse struct {
	Amount       uint64 `json:"amount"`
	NetAmount    uint64 `json:"net_amount"`
	EcosystemFee uint64 `json:"ecosystem_fee"`
	RewardFee    uint64 `json:"reward_fee"`
	Fee          uint64 `json:"fee"`
}
