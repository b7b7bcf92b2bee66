package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresLedger persists mint and token account records in PostgreSQL. Each unit of work is
// one database transaction holding advisory locks on its declared accounts.
type PostgresLedger struct {
	db *pgxpool.Pool
}

// NewPostgresLedger constructs a Postgres-backed ledger implementation.
func NewPostgresLedger(db *pgxpool.Pool) *PostgresLedger {
	return &PostgresLedger{db: db}
}

// Load returns the raw record stored at key, or nil when there is none.
func (l *PostgresLedger) Load(ctx context.Context, key PublicKey) ([]byte, error) {
	var data []byte
	err := l.db.QueryRow(ctx, `SELECT data FROM ledger_accounts WHERE address = $1`, key.String()).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	return data, nil
}

// Update runs fn in a single database transaction. Advisory locks are taken in key order so
// two units of work sharing accounts cannot deadlock, and they also cover addresses that hold
// no row yet.
func (l *PostgresLedger) Update(ctx context.Context, keys []PublicKey, fn func(ops *Ops) error) (Receipt, error) {
	locked := sortedKeys(keys)

	tx, err := l.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Receipt{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	addresses := make([]string, len(locked))
	for i, key := range locked {
		addresses[i] = key.String()
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, addresses[i]); err != nil {
			return Receipt{}, fmt.Errorf("lock %s: %w", key, err)
		}
	}

	rtx := &postgresTx{
		declared: make(map[PublicKey]struct{}, len(locked)),
		loaded:   make(map[PublicKey][]byte, len(locked)),
		staged:   make(map[PublicKey][]byte),
	}
	for _, key := range locked {
		rtx.declared[key] = struct{}{}
	}

	rows, err := tx.Query(ctx, `SELECT address, data FROM ledger_accounts WHERE address = ANY($1)`, addresses)
	if err != nil {
		return Receipt{}, err
	}
	for rows.Next() {
		var (
			address string
			data    []byte
		)
		if err := rows.Scan(&address, &data); err != nil {
			rows.Close()
			return Receipt{}, err
		}
		key, err := ParsePublicKey(address)
		if err != nil {
			rows.Close()
			return Receipt{}, fmt.Errorf("stored address %q: %w", address, err)
		}
		rtx.loaded[key] = data
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return Receipt{}, err
	}

	if err := fn(&Ops{tx: rtx}); err != nil {
		return Receipt{}, err
	}

	for key, data := range rtx.staged {
		if data == nil {
			if _, err := tx.Exec(ctx, `DELETE FROM ledger_accounts WHERE address = $1`, key.String()); err != nil {
				return Receipt{}, err
			}
			continue
		}
		if _, err := tx.Exec(ctx, `INSERT INTO ledger_accounts (address, data, updated_at) VALUES ($1, $2, now())
            ON CONFLICT (address) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`, key.String(), data); err != nil {
			return Receipt{}, err
		}
	}

	txID := uuid.New()
	var committedAt time.Time
	if err := tx.QueryRow(ctx, `INSERT INTO ledger_transactions (id, accounts) VALUES ($1, $2) RETURNING committed_at`,
		txID, addresses).Scan(&committedAt); err != nil {
		return Receipt{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Receipt{}, err
	}

	return Receipt{TransactionID: txID.String(), CommittedAt: committedAt.UTC()}, nil
}

type postgresTx struct {
	declared map[PublicKey]struct{}
	loaded   map[PublicKey][]byte
	staged   map[PublicKey][]byte
}

func (t *postgresTx) get(key PublicKey) ([]byte, error) {
	if _, ok := t.declared[key]; !ok {
		return nil, errNotLocked(key)
	}
	if data, ok := t.staged[key]; ok {
		return cloneBytes(data), nil
	}
	return cloneBytes(t.loaded[key]), nil
}

func (t *postgresTx) put(key PublicKey, data []byte) error {
	if _, ok := t.declared[key]; !ok {
		return errNotLocked(key)
	}
	t.staged[key] = cloneBytes(data)
	return nil
}
