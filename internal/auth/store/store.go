package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/hospitalauth/internal/auth/domain"
	"github.com/aussiebroadwan/hospitalauth/internal/auth/rbac"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite,
// postgres) implement it. Repositories hang off it so a Tx exposes the
// same surface and nested transactions are impossible to start by
// accident.
type Store interface {
	Users() Users

	ApplyMigrations() error

	// Tx starts a read/write transaction. The caller MUST Commit or
	// Rollback the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is a transactional store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// Users is the user-store collaborator. Reads are always fresh; nothing
// here caches.
type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail expects an already lower-cased address.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// GetUserByNationalID expects digits only.
	GetUserByNationalID(ctx context.Context, nationalID string) (domain.User, error)

	ListUsers(ctx context.Context) ([]domain.User, error)

	// CreateUser inserts u. Duplicate email or national id yields
	// ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) error

	// TouchLastAuthenticated records a successful login or refresh.
	TouchLastAuthenticated(ctx context.Context, id string, at time.Time) error

	SetActive(ctx context.Context, id string, active bool, at time.Time) error
	SetRole(ctx context.Context, id string, role rbac.RoleTag, at time.Time) error
	UpdatePasswordHash(ctx context.Context, id, hash string, at time.Time) error

	IsEmpty(ctx context.Context) (bool, error)
}
