package fee

import (
	"errors"
	"math"
	"testing"
)

func TestCalculateKnownAmounts(t *testing.T) {
	cases := []struct {
		amount uint64
		want   Split
	}{
		{amount: 0, want: Split{}},
		{amount: 1, want: Split{Net: 1}},
		{amount: 24, want: Split{Net: 24}},
		{amount: 25, want: Split{Net: 24, EcosystemFee: 0, RewardFee: 1}},
		{amount: 99, want: Split{Net: 96, EcosystemFee: 1, RewardFee: 2}},
		{amount: 100, want: Split{Net: 96, EcosystemFee: 2, RewardFee: 2}},
		{amount: 1_000_000_000, want: Split{Net: 960_000_000, EcosystemFee: 20_000_000, RewardFee: 20_000_000}},
	}
	for _, tc := range cases {
		got, err := Calculate(tc.amount)
		if err != nil {
			t.Fatalf("amount %d: unexpected error %v", tc.amount, err)
		}
		if got != tc.want {
			t.Fatalf("amount %d: expected %+v, got %+v", tc.amount, tc.want, got)
		}
	}
}

func TestCalculateNoFeeBelowTwentyFive(t *testing.T) {
	for amount := uint64(0); amount < 25; amount++ {
		got, err := Calculate(amount)
		if err != nil {
			t.Fatalf("amount %d: %v", amount, err)
		}
		if got != (Split{Net: amount}) {
			t.Fatalf("amount %d: expected no fee, got %+v", amount, got)
		}
	}
}

func TestCalculatePartsSumToAmount(t *testing.T) {
	amounts := []uint64{26, 49, 50, 51, 77, 101, 199, 12_345, 987_654_321, math.MaxUint64 / 4}
	for i := uint64(0); i < 1_000; i++ {
		amounts = append(amounts, i*7919)
	}
	for _, amount := range amounts {
		got, err := Calculate(amount)
		if err != nil {
			t.Fatalf("amount %d: %v", amount, err)
		}
		if got.Net+got.EcosystemFee+got.RewardFee != amount {
			t.Fatalf("amount %d: parts %+v do not sum to amount", amount, got)
		}
		if got.EcosystemFee > got.RewardFee || got.RewardFee-got.EcosystemFee > 1 {
			t.Fatalf("amount %d: uneven fee halves %+v", amount, got)
		}
		if got.Fee() != amount*RateNumerator/RateDenominator {
			t.Fatalf("amount %d: fee %d is not 4%%", amount, got.Fee())
		}
	}
}

func TestCalculateOverflow(t *testing.T) {
	for _, amount := range []uint64{math.MaxUint64/4 + 1, 1 << 62, math.MaxUint64} {
		if _, err := Calculate(amount); !errors.Is(err, ErrAmountOverflow) {
			t.Fatalf("amount %d: expected ErrAmountOverflow, got %v", amount, err)
		}
	}
}
