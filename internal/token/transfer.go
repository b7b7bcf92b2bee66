package token

import (
	"context"
	"fmt"
	"time"

	"github.com/congo-pay/hoard_token/internal/events"
	"github.com/congo-pay/hoard_token/internal/fee"
	"github.com/congo-pay/hoard_token/internal/ledger"
)

// TransferInput moves Amount out of Source, split between Destination and the two treasuries.
type TransferInput struct {
	Source            ledger.PublicKey
	Destination       ledger.PublicKey
	EcosystemTreasury ledger.PublicKey
	RewardTreasury    ledger.PublicKey
	Authority         ledger.PublicKey
	Amount            uint64
}

// TransferResult reports the committed split.
type TransferResult struct {
	Result
	Split fee.Split `json:"split"`
}

type leg struct {
	name   string
	to     ledger.PublicKey
	amount uint64
}

// Transfer debits Amount from Source and credits the net amount, the ecosystem fee and the
// reward fee to their accounts, in that order, as one unit of work. The net leg always runs, so
// even a zero transfer is checked; empty fee legs are skipped. Any failing leg aborts the whole
// transfer with ErrTransferFailed and no balance changes.
func (s *Service) Transfer(ctx context.Context, in TransferInput) (TransferResult, error) {
	started := time.Now()
	if err := requireKeys(
		field{"source", in.Source},
		field{"destination", in.Destination},
		field{"ecosystem_treasury", in.EcosystemTreasury},
		field{"reward_treasury", in.RewardTreasury},
		field{"authority", in.Authority},
	); err != nil {
		return TransferResult{}, err
	}

	split, err := fee.Calculate(in.Amount)
	if err != nil {
		s.metrics.RecordOperation("transfer", started, err)
		return TransferResult{}, err
	}

	legs := [3]leg{
		{name: "net", to: in.Destination, amount: split.Net},
		{name: "ecosystem", to: in.EcosystemTreasury, amount: split.EcosystemFee},
		{name: "reward", to: in.RewardTreasury, amount: split.RewardFee},
	}
	keys := []ledger.PublicKey{in.Source, in.Destination, in.EcosystemTreasury, in.RewardTreasury}

	receipt, err := s.run(ctx, "transfer", keys, func(ops *ledger.Ops) error {
		for i, l := range legs {
			// A delegate whose allowance the net leg used up is no longer recorded on the
			// source, so a zero fee leg signed by it would be rejected.
			if i > 0 && l.amount == 0 {
				continue
			}
			if err := ops.Transfer(in.Source, l.to, in.Authority, l.amount); err != nil {
				return fmt.Errorf("%s leg: %w", l.name, err)
			}
		}
		return nil
	})
	if err != nil {
		return TransferResult{}, fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}

	s.metrics.RecordFees(split)
	s.publish(ctx, events.Event{
		Kind:          events.KindTransfer,
		TransactionID: receipt.TransactionID,
		Accounts: map[string]string{
			"source":             in.Source.String(),
			"destination":        in.Destination.String(),
			"ecosystem_treasury": in.EcosystemTreasury.String(),
			"reward_treasury":    in.RewardTreasury.String(),
		},
		Amounts: map[string]uint64{
			"amount":        in.Amount,
			"net_amount":    split.Net,
			"ecosystem_fee": split.EcosystemFee,
			"reward_fee":    split.RewardFee,
		},
		Authority:  in.Authority.String(),
		OccurredAt: receipt.CommittedAt,
	})
	return TransferResult{Result: resultOf(receipt), Split: split}, nil
}

// Quote returns the split a transfer of amount would produce.
func (s *Service) Quote(amount uint64) (fee.Split, error) {
	return fee.Calculate(amount)
}
