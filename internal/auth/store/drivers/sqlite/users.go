package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/hospitalauth/internal/auth/domain"
	"github.com/aussiebroadwan/hospitalauth/internal/auth/rbac"
	"github.com/aussiebroadwan/hospitalauth/internal/auth/store"
)

// dbtx is satisfied by *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type usersRepo struct {
	db dbtx
}

const (
	selectUser = `SELECT ` + store.UserColumns + ` FROM users`

	insertUser = `INSERT INTO users (
	id, display_name, email, national_id, role, organization_id,
	active, password_hash, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
)

func (r *usersRepo) getOne(ctx context.Context, where string, arg any) (domain.User, error) {
	return store.ScanUser(r.db.QueryRowContext(ctx, selectUser+` WHERE `+where+` = ?`, arg))
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return r.getOne(ctx, "id", id)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getOne(ctx, "email", email)
}

func (r *usersRepo) GetUserByNationalID(ctx context.Context, nationalID string) (domain.User, error) {
	return r.getOne(ctx, "national_id", nationalID)
}

func (r *usersRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, selectUser+` ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		u, err := store.ScanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx, insertUser,
		u.ID,
		u.DisplayName,
		u.Email,
		store.NullString(u.NationalID),
		string(u.Role),
		u.OrganizationID,
		u.Active,
		u.PasswordHash,
		u.CreatedAt.UTC(),
		u.UpdatedAt.UTC(),
	)
	return mapConstraint(err)
}

func (r *usersRepo) TouchLastAuthenticated(ctx context.Context, id string, at time.Time) error {
	return store.CheckAffected(r.db.ExecContext(ctx,
		`UPDATE users SET last_authenticated_at = ? WHERE id = ?`, at.UTC(), id))
}

func (r *usersRepo) SetActive(ctx context.Context, id string, active bool, at time.Time) error {
	return store.CheckAffected(r.db.ExecContext(ctx,
		`UPDATE users SET active = ?, updated_at = ? WHERE id = ?`, active, at.UTC(), id))
}

func (r *usersRepo) SetRole(ctx context.Context, id string, role rbac.RoleTag, at time.Time) error {
	return store.CheckAffected(r.db.ExecContext(ctx,
		`UPDATE users SET role = ?, updated_at = ? WHERE id = ?`, string(role), at.UTC(), id))
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, id, hash string, at time.Time) error {
	return store.CheckAffected(r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`, hash, at.UTC(), id))
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return false, err
	}
	return n == 0, nil
}
