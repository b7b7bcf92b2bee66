package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type inMemoryLedger struct {
	mu           sync.RWMutex
	records      map[PublicKey][]byte
	accountLocks map[PublicKey]*sync.Mutex
	transactions []Receipt
}

// NewInMemory creates a concurrency-safe in-memory ledger useful for unit tests and local
// development.
func NewInMemory() Ledger {
	return &inMemoryLedger{
		records:      make(map[PublicKey][]byte),
		accountLocks: make(map[PublicKey]*sync.Mutex),
	}
}

func (l *inMemoryLedger) Load(_ context.Context, key PublicKey) ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return cloneBytes(l.records[key]), nil
}

func (l *inMemoryLedger) Update(ctx context.Context, keys []PublicKey, fn func(ops *Ops) error) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}

	locked := sortedKeys(keys)
	for _, key := range locked {
		lock := l.accountLock(key)
		lock.Lock()
		defer lock.Unlock()
	}

	tx := &memoryTx{ledger: l, declared: make(map[PublicKey]struct{}, len(locked)), staged: make(map[PublicKey][]byte)}
	for _, key := range locked {
		tx.declared[key] = struct{}{}
	}

	if err := fn(&Ops{tx: tx}); err != nil {
		return Receipt{}, err
	}

	receipt := Receipt{TransactionID: uuid.NewString(), CommittedAt: time.Now().UTC()}

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, data := range tx.staged {
		if data == nil {
			delete(l.records, key)
			continue
		}
		l.records[key] = data
	}
	l.transactions = append(l.transactions, receipt)
	return receipt, nil
}

func (l *inMemoryLedger) accountLock(key PublicKey) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.accountLocks[key]
	if !ok {
		lock = &sync.Mutex{}
		l.accountLocks[key] = lock
	}
	return lock
}

// memoryTx stages writes so nothing is visible to readers until the unit of work commits.
type memoryTx struct {
	ledger   *inMemoryLedger
	declared map[PublicKey]struct{}
	staged   map[PublicKey][]byte
}

func (t *memoryTx) get(key PublicKey) ([]byte, error) {
	if _, ok := t.declared[key]; !ok {
		return nil, errNotLocked(key)
	}
	if data, ok := t.staged[key]; ok {
		return cloneBytes(data), nil
	}
	t.ledger.mu.RLock()
	defer t.ledger.mu.RUnlock()
	return cloneBytes(t.ledger.records[key]), nil
}

func (t *memoryTx) put(key PublicKey, data []byte) error {
	if _, ok := t.declared[key]; !ok {
		return errNotLocked(key)
	}
	t.staged[key] = cloneBytes(data)
	return nil
}

func cloneBytes(data []byte) []byte {
	if data == nil {
		return nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out
}
