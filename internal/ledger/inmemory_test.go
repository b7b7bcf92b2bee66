package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
)

// fixture is a mint with two funded-capable token accounts.
type fixture struct {
	ledger    Ledger
	mint      PublicKey
	authority PublicKey
	alice     PublicKey
	aliceAcct PublicKey
	bob       PublicKey
	bobAcct   PublicKey
}

func newFixture(t *testing.T, l Ledger, supply uint64) fixture {
	t.Helper()
	f := fixture{
		ledger:    l,
		mint:      NewUniquePublicKey(),
		authority: NewUniquePublicKey(),
		alice:     NewUniquePublicKey(),
		aliceAcct: NewUniquePublicKey(),
		bob:       NewUniquePublicKey(),
		bobAcct:   NewUniquePublicKey(),
	}
	keys := []PublicKey{f.mint, f.aliceAcct, f.bobAcct}
	_, err := l.Update(context.Background(), keys, func(ops *Ops) error {
		if err := ops.InitMint(f.mint, 9, f.authority, &f.authority); err != nil {
			return err
		}
		if err := ops.InitAccount(f.aliceAcct, f.mint, f.alice); err != nil {
			return err
		}
		if err := ops.InitAccount(f.bobAcct, f.mint, f.bob); err != nil {
			return err
		}
		if supply == 0 {
			return nil
		}
		return ops.MintTo(f.mint, f.aliceAcct, f.authority, supply)
	})
	if err != nil {
		t.Fatalf("setup fixture: %v", err)
	}
	return f
}

func (f fixture) balance(t *testing.T, key PublicKey) uint64 {
	t.Helper()
	acct, err := LoadAccount(context.Background(), f.ledger, key)
	if err != nil {
		t.Fatalf("load %s: %v", key, err)
	}
	return acct.Amount
}

func (f fixture) transfer(amount uint64) error {
	_, err := f.ledger.Update(context.Background(), []PublicKey{f.aliceAcct, f.bobAcct}, func(ops *Ops) error {
		return ops.Transfer(f.aliceAcct, f.bobAcct, f.alice, amount)
	})
	return err
}

func TestInMemoryLedger_TransferMaintainsBalance(t *testing.T) {
	f := newFixture(t, NewInMemory(), 10_000)

	receipt, err := f.ledger.Update(context.Background(), []PublicKey{f.aliceAcct, f.bobAcct}, func(ops *Ops) error {
		return ops.Transfer(f.aliceAcct, f.bobAcct, f.alice, 1_500)
	})
	if err != nil {
		t.Fatalf("transfer failed: %v", err)
	}
	if receipt.TransactionID == "" || receipt.CommittedAt.IsZero() {
		t.Fatalf("expected populated receipt, got %+v", receipt)
	}

	if got := f.balance(t, f.aliceAcct); got != 8_500 {
		t.Fatalf("expected from balance 8500, got %d", got)
	}
	if got := f.balance(t, f.bobAcct); got != 1_500 {
		t.Fatalf("expected to balance 1500, got %d", got)
	}

	mint, err := LoadMint(context.Background(), f.ledger, f.mint)
	if err != nil {
		t.Fatalf("load mint: %v", err)
	}
	if mint.Supply != 10_000 {
		t.Fatalf("supply changed by a transfer: %d", mint.Supply)
	}
}

func TestInMemoryLedger_ConcurrentTransfers(t *testing.T) {
	f := newFixture(t, NewInMemory(), 100_000)

	const workers = 10
	const amount = uint64(500)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := f.transfer(amount); err != nil {
				t.Errorf("transfer %d failed: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	total := f.balance(t, f.aliceAcct) + f.balance(t, f.bobAcct)
	if total != 100_000 {
		t.Fatalf("ledger not balanced after concurrency, total=%d", total)
	}
	if got := f.balance(t, f.bobAcct); got != workers*amount {
		t.Fatalf("expected bob to hold %d, got %d", workers*amount, got)
	}
}

func TestInMemoryLedger_FailedUnitOfWorkLeavesNoTrace(t *testing.T) {
	f := newFixture(t, NewInMemory(), 1_000)
	boom := errors.New("boom")

	_, err := f.ledger.Update(context.Background(), []PublicKey{f.aliceAcct, f.bobAcct}, func(ops *Ops) error {
		if err := ops.Transfer(f.aliceAcct, f.bobAcct, f.alice, 400); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if got := f.balance(t, f.aliceAcct); got != 1_000 {
		t.Fatalf("staged debit leaked: alice holds %d", got)
	}
	if got := f.balance(t, f.bobAcct); got != 0 {
		t.Fatalf("staged credit leaked: bob holds %d", got)
	}
}

func TestInMemoryLedger_StagedWritesVisibleWithinUnitOfWork(t *testing.T) {
	f := newFixture(t, NewInMemory(), 1_000)

	_, err := f.ledger.Update(context.Background(), []PublicKey{f.aliceAcct, f.bobAcct}, func(ops *Ops) error {
		if err := ops.Transfer(f.aliceAcct, f.bobAcct, f.alice, 600); err != nil {
			return err
		}
		// only 400 left after the first leg
		if err := ops.Transfer(f.aliceAcct, f.bobAcct, f.alice, 600); !errors.Is(err, ErrInsufficientFunds) {
			t.Errorf("expected insufficient funds on second leg, got %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := f.balance(t, f.bobAcct); got != 600 {
		t.Fatalf("expected bob to hold 600, got %d", got)
	}
}

func TestInMemoryLedger_RejectsUndeclaredAccount(t *testing.T) {
	f := newFixture(t, NewInMemory(), 1_000)

	_, err := f.ledger.Update(context.Background(), []PublicKey{f.aliceAcct}, func(ops *Ops) error {
		return ops.Transfer(f.aliceAcct, f.bobAcct, f.alice, 1)
	})
	if !errors.Is(err, ErrAccountNotLocked) {
		t.Fatalf("expected ErrAccountNotLocked, got %v", err)
	}
}

func TestInMemoryLedger_CanceledContext(t *testing.T) {
	f := newFixture(t, NewInMemory(), 1_000)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	_, err := f.ledger.Update(ctx, []PublicKey{f.aliceAcct}, func(*Ops) error {
		called = true
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if called {
		t.Fatal("unit of work ran on a canceled context")
	}
}

func TestInMemoryLedger_LoadReturnsCopy(t *testing.T) {
	f := newFixture(t, NewInMemory(), 5)

	data, err := f.ledger.Load(context.Background(), f.aliceAcct)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	for i := range data {
		data[i] = 0xff
	}
	if got := f.balance(t, f.aliceAcct); got != 5 {
		t.Fatalf("mutating a loaded record changed the ledger: %d", got)
	}
}
