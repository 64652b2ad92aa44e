package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/aussiebroadwan/hospitalauth/internal/auth/store"
)

type Store struct {
	db  *sql.DB
	dsn string
}

// NewStore opens the database at dsn (a path or ":memory:").
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// One connection serialises writers and keeps ":memory:" a single
	// database rather than one per connection.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		`PRAGMA foreign_keys = ON;`,
		`PRAGMA busy_timeout = 5000;`,
	} {
		if _, err := db.ExecContext(context.Background(), pragma); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return &Store{db: db, dsn: dsn}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &txStore{tx: tx}, nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) Users() store.Users { return &usersRepo{db: s.db} }

// mapConstraint converts unique violations to store.ErrAlreadyExists.
func mapConstraint(err error) error {
	var se *msqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return store.ErrAlreadyExists
		}
	}
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return store.ErrAlreadyExists
	}
	return err
}
