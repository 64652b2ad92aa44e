package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/hospitalauth/internal/auth/store"
)

type txStore struct {
	tx *sql.Tx
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // outer DB stays open

// Ping is a no-op inside a transaction; the connection is already held.
func (t *txStore) Ping(context.Context) error { return nil }

func (t *txStore) Tx(context.Context) (store.Tx, error) {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(context.Context, func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) Users() store.Users { return &usersRepo{db: t.tx} }

func (t *txStore) ApplyMigrations() error { return nil } // migrations run before any tx
