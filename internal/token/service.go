package token

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/congo-pay/hoard_token/internal/events"
	"github.com/congo-pay/hoard_token/internal/ledger"
	"github.com/congo-pay/hoard_token/internal/logging"
	"github.com/congo-pay/hoard_token/internal/observability"
)

// Decimals is the precision of mints created by Initialize.
const Decimals = 9

// Service issues token operations against the ledger. It holds no token state of its own:
// every operation is one ledger unit of work.
type Service struct {
	ledger    ledger.Ledger
	publisher events.Publisher
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// NewService constructs a token service. publisher and metrics may be nil.
func NewService(l ledger.Ledger, publisher events.Publisher, metrics *observability.Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Service{ledger: l, publisher: publisher, metrics: metrics, logger: logger}
}

// Result identifies the committed unit of work of an operation.
type Result struct {
	TransactionID string    `json:"transaction_id"`
	CompletedAt   time.Time `json:"completed_at"`
}

func resultOf(r ledger.Receipt) Result {
	return Result{TransactionID: r.TransactionID, CompletedAt: r.CommittedAt}
}

// InitializeInput creates a mint and places its whole initial supply with Authority.
type InitializeInput struct {
	Mint        ledger.PublicKey
	Authority   ledger.PublicKey
	TotalSupply uint64
}

// InitializeResult describes the created mint and the account holding the initial supply.
type InitializeResult struct {
	Result
	Mint     ledger.PublicKey `json:"mint"`
	Account  ledger.PublicKey `json:"account"`
	Supply   uint64           `json:"supply"`
	Decimals uint8            `json:"decimals"`
}

// Initialize creates a mint with Decimals precision, opens the authority's associated token
// account and issues TotalSupply into it. The mint signs its own first issuance and then hands
// the mint authority to the initializer, all in one unit of work.
func (s *Service) Initialize(ctx context.Context, in InitializeInput) (InitializeResult, error) {
	if err := requireKeys(field{"mint", in.Mint}, field{"authority", in.Authority}); err != nil {
		return InitializeResult{}, err
	}
	account, err := ledger.FindAssociatedTokenAddress(in.Authority, in.Mint)
	if err != nil {
		return InitializeResult{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	grant := newIssuance(in.Mint)
	receipt, err := s.run(ctx, "initialize", []ledger.PublicKey{in.Mint, account}, func(ops *ledger.Ops) error {
		if err := ops.InitMint(in.Mint, Decimals, in.Mint, nil); err != nil {
			return err
		}
		if err := ops.InitAccount(account, in.Mint, in.Authority); err != nil {
			return err
		}
		signer, err := grant.consume()
		if err != nil {
			return err
		}
		if err := ops.MintTo(in.Mint, account, signer, in.TotalSupply); err != nil {
			return err
		}
		return ops.SetMintAuthority(in.Mint, ledger.AuthorityMintTokens, signer, &in.Authority)
	})
	if err != nil {
		return InitializeResult{}, err
	}

	s.metrics.RecordMinted(in.TotalSupply)
	s.publish(ctx, events.Event{
		Kind:          events.KindInitialize,
		TransactionID: receipt.TransactionID,
		Mint:          in.Mint.String(),
		Accounts:      map[string]string{"account": account.String()},
		Amounts:       map[string]uint64{"total_supply": in.TotalSupply},
		Authority:     in.Authority.String(),
		OccurredAt:    receipt.CommittedAt,
	})
	return InitializeResult{
		Result:   resultOf(receipt),
		Mint:     in.Mint,
		Account:  account,
		Supply:   in.TotalSupply,
		Decimals: Decimals,
	}, nil
}

// InitializeMintInput creates a bare mint with no supply.
type InitializeMintInput struct {
	Mint            ledger.PublicKey
	Decimals        uint8
	MintAuthority   ledger.PublicKey
	FreezeAuthority *ledger.PublicKey
}

// InitializeMint creates a mint record.
func (s *Service) InitializeMint(ctx context.Context, in InitializeMintInput) (Result, error) {
	if err := requireKeys(field{"mint", in.Mint}, field{"mint_authority", in.MintAuthority}); err != nil {
		return Result{}, err
	}
	receipt, err := s.run(ctx, "initialize_mint", []ledger.PublicKey{in.Mint}, func(ops *ledger.Ops) error {
		return ops.InitMint(in.Mint, in.Decimals, in.MintAuthority, in.FreezeAuthority)
	})
	if err != nil {
		return Result{}, err
	}
	s.publish(ctx, events.Event{
		Kind:          events.KindInitializeMint,
		TransactionID: receipt.TransactionID,
		Mint:          in.Mint.String(),
		Authority:     in.MintAuthority.String(),
		OccurredAt:    receipt.CommittedAt,
	})
	return resultOf(receipt), nil
}

// InitializeAccountInput opens a token account. A zero Account selects the owner's associated
// token account for the mint.
type InitializeAccountInput struct {
	Account ledger.PublicKey
	Mint    ledger.PublicKey
	Owner   ledger.PublicKey
}

// AccountResult reports the address of a created token account.
type AccountResult struct {
	Result
	Account ledger.PublicKey `json:"account"`
}

// InitializeAccount creates a token account for Owner.
func (s *Service) InitializeAccount(ctx context.Context, in InitializeAccountInput) (AccountResult, error) {
	if err := requireKeys(field{"mint", in.Mint}, field{"owner", in.Owner}); err != nil {
		return AccountResult{}, err
	}
	account := in.Account
	if account.IsZero() {
		derived, err := ledger.FindAssociatedTokenAddress(in.Owner, in.Mint)
		if err != nil {
			return AccountResult{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
		account = derived
	}

	receipt, err := s.run(ctx, "initialize_account", []ledger.PublicKey{account, in.Mint}, func(ops *ledger.Ops) error {
		return ops.InitAccount(account, in.Mint, in.Owner)
	})
	if err != nil {
		return AccountResult{}, err
	}
	s.publish(ctx, events.Event{
		Kind:          events.KindInitializeAccount,
		TransactionID: receipt.TransactionID,
		Mint:          in.Mint.String(),
		Accounts:      map[string]string{"account": account.String(), "owner": in.Owner.String()},
		OccurredAt:    receipt.CommittedAt,
	})
	return AccountResult{Result: resultOf(receipt), Account: account}, nil
}

// MintInput issues new supply into Destination.
type MintInput struct {
	Mint        ledger.PublicKey
	Destination ledger.PublicKey
	Authority   ledger.PublicKey
	Amount      uint64
}

// Mint issues Amount new tokens. Authority must be the mint authority.
func (s *Service) Mint(ctx context.Context, in MintInput) (Result, error) {
	if err := requireKeys(field{"mint", in.Mint}, field{"destination", in.Destination}, field{"authority", in.Authority}); err != nil {
		return Result{}, err
	}
	receipt, err := s.run(ctx, "mint", []ledger.PublicKey{in.Mint, in.Destination}, func(ops *ledger.Ops) error {
		return ops.MintTo(in.Mint, in.Destination, in.Authority, in.Amount)
	})
	if err != nil {
		return Result{}, err
	}
	s.metrics.RecordMinted(in.Amount)
	s.publish(ctx, events.Event{
		Kind:          events.KindMint,
		TransactionID: receipt.TransactionID,
		Mint:          in.Mint.String(),
		Accounts:      map[string]string{"destination": in.Destination.String()},
		Amounts:       map[string]uint64{"amount": in.Amount},
		Authority:     in.Authority.String(),
		OccurredAt:    receipt.CommittedAt,
	})
	return resultOf(receipt), nil
}

// BurnInput destroys tokens held by Source.
type BurnInput struct {
	Mint      ledger.PublicKey
	Source    ledger.PublicKey
	Authority ledger.PublicKey
	Amount    uint64
}

// Burn destroys Amount tokens, lowering both the balance and the supply. Authority must be the
// owner of Source or a delegate within its allowance.
func (s *Service) Burn(ctx context.Context, in BurnInput) (Result, error) {
	if err := requireKeys(field{"mint", in.Mint}, field{"source", in.Source}, field{"authority", in.Authority}); err != nil {
		return Result{}, err
	}
	receipt, err := s.run(ctx, "burn", []ledger.PublicKey{in.Mint, in.Source}, func(ops *ledger.Ops) error {
		return ops.Burn(in.Mint, in.Source, in.Authority, in.Amount)
	})
	if err != nil {
		return Result{}, err
	}
	s.metrics.RecordBurned(in.Amount)
	s.publish(ctx, events.Event{
		Kind:          events.KindBurn,
		TransactionID: receipt.TransactionID,
		Mint:          in.Mint.String(),
		Accounts:      map[string]string{"source": in.Source.String()},
		Amounts:       map[string]uint64{"amount": in.Amount},
		Authority:     in.Authority.String(),
		OccurredAt:    receipt.CommittedAt,
	})
	return resultOf(receipt), nil
}

// ApproveInput grants Delegate an allowance over Source.
type ApproveInput struct {
	Source   ledger.PublicKey
	Delegate ledger.PublicKey
	Owner    ledger.PublicKey
	Amount   uint64
}

// Approve sets the delegate of Source, replacing any previous approval.
func (s *Service) Approve(ctx context.Context, in ApproveInput) (Result, error) {
	if err := requireKeys(field{"source", in.Source}, field{"delegate", in.Delegate}, field{"owner", in.Owner}); err != nil {
		return Result{}, err
	}
	receipt, err := s.run(ctx, "approve", []ledger.PublicKey{in.Source}, func(ops *ledger.Ops) error {
		return ops.Approve(in.Source, in.Delegate, in.Owner, in.Amount)
	})
	if err != nil {
		return Result{}, err
	}
	s.publish(ctx, events.Event{
		Kind:          events.KindApprove,
		TransactionID: receipt.TransactionID,
		Accounts:      map[string]string{"source": in.Source.String(), "delegate": in.Delegate.String()},
		Amounts:       map[string]uint64{"allowance": in.Amount},
		Authority:     in.Owner.String(),
		OccurredAt:    receipt.CommittedAt,
	})
	return resultOf(receipt), nil
}

// RevokeInput clears the delegate of Source.
type RevokeInput struct {
	Source ledger.PublicKey
	Owner  ledger.PublicKey
}

// Revoke clears the delegate of Source and its allowance.
func (s *Service) Revoke(ctx context.Context, in RevokeInput) (Result, error) {
	if err := requireKeys(field{"source", in.Source}, field{"owner", in.Owner}); err != nil {
		return Result{}, err
	}
	receipt, err := s.run(ctx, "revoke", []ledger.PublicKey{in.Source}, func(ops *ledger.Ops) error {
		return ops.Revoke(in.Source, in.Owner)
	})
	if err != nil {
		return Result{}, err
	}
	s.publish(ctx, events.Event{
		Kind:          events.KindRevoke,
		TransactionID: receipt.TransactionID,
		Accounts:      map[string]string{"source": in.Source.String()},
		Authority:     in.Owner.String(),
		OccurredAt:    receipt.CommittedAt,
	})
	return resultOf(receipt), nil
}

// CloseAccountInput closes an empty token account.
type CloseAccountInput struct {
	Account     ledger.PublicKey
	Destination ledger.PublicKey
	Authority   ledger.PublicKey
}

// CloseAccount removes an empty token account. Authority must be the close authority, or the
// owner when none is set.
func (s *Service) CloseAccount(ctx context.Context, in CloseAccountInput) (Result, error) {
	if err := requireKeys(field{"account", in.Account}, field{"destination", in.Destination}, field{"authority", in.Authority}); err != nil {
		return Result{}, err
	}
	receipt, err := s.run(ctx, "close_account", []ledger.PublicKey{in.Account, in.Destination}, func(ops *ledger.Ops) error {
		return ops.CloseAccount(in.Account, in.Destination, in.Authority)
	})
	if err != nil {
		return Result{}, err
	}
	s.publish(ctx, events.Event{
		Kind:          events.KindCloseAccount,
		TransactionID: receipt.TransactionID,
		Accounts:      map[string]string{"account": in.Account.String(), "destination": in.Destination.String()},
		Authority:     in.Authority.String(),
		OccurredAt:    receipt.CommittedAt,
	})
	return resultOf(receipt), nil
}

// FreezeInput freezes or thaws a token account of Mint.
type FreezeInput struct {
	Account   ledger.PublicKey
	Mint      ledger.PublicKey
	Authority ledger.PublicKey
}

// Freeze blocks every movement out of or into Account. Authority must be the mint's freeze
// authority.
func (s *Service) Freeze(ctx context.Context, in FreezeInput) (Result, error) {
	return s.setFrozen(ctx, in, true)
}

// Thaw lifts a freeze.
func (s *Service) Thaw(ctx context.Context, in FreezeInput) (Result, error) {
	return s.setFrozen(ctx, in, false)
}

func (s *Service) setFrozen(ctx context.Context, in FreezeInput, freeze bool) (Result, error) {
	if err := requireKeys(field{"account", in.Account}, field{"mint", in.Mint}, field{"authority", in.Authority}); err != nil {
		return Result{}, err
	}
	op, kind := "thaw", events.KindThaw
	if freeze {
		op, kind = "freeze", events.KindFreeze
	}
	receipt, err := s.run(ctx, op, []ledger.PublicKey{in.Account, in.Mint}, func(ops *ledger.Ops) error {
		if freeze {
			return ops.FreezeAccount(in.Account, in.Mint, in.Authority)
		}
		return ops.ThawAccount(in.Account, in.Mint, in.Authority)
	})
	if err != nil {
		return Result{}, err
	}
	s.publish(ctx, events.Event{
		Kind:          kind,
		TransactionID: receipt.TransactionID,
		Mint:          in.Mint.String(),
		Accounts:      map[string]string{"account": in.Account.String()},
		Authority:     in.Authority.String(),
		OccurredAt:    receipt.CommittedAt,
	})
	return resultOf(receipt), nil
}

// run executes one unit of work, classifies its error and records the outcome.
func (s *Service) run(ctx context.Context, op string, keys []ledger.PublicKey, fn func(ops *ledger.Ops) error) (ledger.Receipt, error) {
	started := time.Now()
	receipt, err := s.ledger.Update(ctx, keys, fn)
	err = translate(err)
	s.metrics.RecordOperation(op, started, err)
	if err != nil {
		s.logger.Debug("token operation rejected", "operation", op, "error", err)
		return ledger.Receipt{}, err
	}
	s.logger.Info("token operation committed", "operation", op, "transaction_id", receipt.TransactionID)
	return receipt, nil
}

// publish delivers a committed event. Failures are logged and never undo the commit.
func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.metrics.RecordPublishError(event.Kind)
		s.logger.Warn("event publish failed", "kind", event.Kind, "transaction_id", event.TransactionID, "error", err)
	}
}

type field struct {
	name string
	key  ledger.PublicKey
}

func requireKeys(fields ...field) error {
	for _, f := range fields {
		if f.key.IsZero() {
			return fmt.Errorf("%w: %s is required", ErrInvalidRequest, f.name)
		}
	}
	return nil
}
