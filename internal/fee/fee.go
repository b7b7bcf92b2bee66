// Package fee computes how a transfer amount is partitioned between the recipient and the
// protocol treasuries.
package fee

import (
	"errors"
	"math/bits"
)

const (
	// RateNumerator and RateDenominator express the total fee rate (4%).
	RateNumerator   = 4
	RateDenominator = 100
)

// ErrAmountOverflow indicates amount*RateNumerator does not fit in 64 bits.
var ErrAmountOverflow = errors.New("amount overflow")

// Split is the three-way partition of a transfer amount. The parts always sum to the amount.
type Split struct {
	Net          uint64 `json:"net_amount"`
	EcosystemFee uint64 `json:"ecosystem_fee"`
	RewardFee    uint64 `json:"reward_fee"`
}

// Fee is the total protocol fee of the split.
func (s Split) Fee() uint64 { return s.EcosystemFee + s.RewardFee }

// Calculate splits amount into net, ecosystem fee and reward fee. The total fee is
// floor(amount*4/100); the ecosystem half is rounded down and the reward fee takes the
// remainder. Amounts below 25 carry no fee.
func Calculate(amount uint64) (Split, error) {
	hi, lo := bits.Mul64(amount, RateNumerator)
	if hi != 0 {
		return Split{}, ErrAmountOverflow
	}
	total := lo / RateDenominator
	ecosystem := total / 2
	return Split{
		Net:          amount - total,
		EcosystemFee: ecosystem,
		RewardFee:    total - ecosystem,
	}, nil
}
