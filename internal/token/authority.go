package token

import (
	"context"
	"fmt"

	"github.com/congo-pay/hoard_token/internal/events"
	"github.com/congo-pay/hoard_token/internal/ledger"
)

// SetAuthorityInput reassigns one authority slot of a mint or token account. A nil New clears
// the slot: on a mint this is permanent and the slot can never be set again.
type SetAuthorityInput struct {
	Target  ledger.PublicKey
	Type    ledger.AuthorityType
	Current ledger.PublicKey
	New     *ledger.PublicKey
}

// SetAuthorityResult reports what the target resolved to.
type SetAuthorityResult struct {
	Result
	TargetKind string `json:"target_kind"`
}

// authorityTarget is a target whose kind was resolved from its stored layout.
type authorityTarget interface {
	kind() ledger.Kind
	apply(ops *ledger.Ops, authorityType ledger.AuthorityType, current ledger.PublicKey, next *ledger.PublicKey) error
}

type mintTarget struct{ key ledger.PublicKey }

func (mintTarget) kind() ledger.Kind { return ledger.KindMint }

func (t mintTarget) apply(ops *ledger.Ops, authorityType ledger.AuthorityType, current ledger.PublicKey, next *ledger.PublicKey) error {
	switch authorityType {
	case ledger.AuthorityMintTokens, ledger.AuthorityFreezeAccount:
		return ops.SetMintAuthority(t.key, authorityType, current, next)
	default:
		return fmt.Errorf("%w: %s cannot be set on a mint", ErrInvalidAuthorityType, authorityType)
	}
}

type accountTarget struct{ key ledger.PublicKey }

func (accountTarget) kind() ledger.Kind { return ledger.KindAccount }

func (t accountTarget) apply(ops *ledger.Ops, authorityType ledger.AuthorityType, current ledger.PublicKey, next *ledger.PublicKey) error {
	switch authorityType {
	case ledger.AuthorityAccountOwner, ledger.AuthorityCloseAccount:
		return ops.SetAccountAuthority(t.key, authorityType, current, next)
	default:
		return fmt.Errorf("%w: %s cannot be set on a token account", ErrInvalidAuthorityType, authorityType)
	}
}

// resolveTarget classifies the record at key once so the rest of the operation dispatches on
// a concrete kind.
func resolveTarget(ops *ledger.Ops, key ledger.PublicKey) (authorityTarget, error) {
	kind, err := ops.Kind(key)
	if err != nil {
		return nil, err
	}
	switch kind {
	case ledger.KindMint:
		return mintTarget{key: key}, nil
	case ledger.KindAccount:
		return accountTarget{key: key}, nil
	default:
		return nil, fmt.Errorf("%w: %s is neither a mint nor a token account", ErrInvalidAccountType, key)
	}
}

// SetAuthority resolves Target to a mint or token account and reassigns the requested slot.
// Current must match the slot exactly.
func (s *Service) SetAuthority(ctx context.Context, in SetAuthorityInput) (SetAuthorityResult, error) {
	if err := requireKeys(field{"target", in.Target}, field{"current_authority", in.Current}); err != nil {
		return SetAuthorityResult{}, err
	}

	var resolved ledger.Kind
	receipt, err := s.run(ctx, "set_authority", []ledger.PublicKey{in.Target}, func(ops *ledger.Ops) error {
		target, err := resolveTarget(ops, in.Target)
		if err != nil {
			return err
		}
		resolved = target.kind()
		return target.apply(ops, in.Type, in.Current, in.New)
	})
	if err != nil {
		return SetAuthorityResult{}, err
	}

	next := ""
	if in.New != nil {
		next = in.New.String()
	}
	s.publish(ctx, events.Event{
		Kind:          events.KindSetAuthority,
		TransactionID: receipt.TransactionID,
		Accounts: map[string]string{
			"target":         in.Target.String(),
			"authority_type": in.Type.String(),
			"new_authority":  next,
		},
		Authority:  in.Current.String(),
		OccurredAt: receipt.CommittedAt,
	})
	return SetAuthorityResult{Result: resultOf(receipt), TargetKind: resolved.String()}, nil
}
