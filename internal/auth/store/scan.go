package store

import (
	"database/sql"
	"errors"

	"github.com/aussiebroadwan/hospitalauth/internal/auth/domain"
	"github.com/aussiebroadwan/hospitalauth/internal/auth/rbac"
)

// UserColumns is the select list ScanUser expects, shared by the drivers.
const UserColumns = `id, display_name, email, national_id, role, organization_id,
	active, password_hash, last_authenticated_at, created_at, updated_at`

// Scanner is satisfied by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// ScanUser reads one row selected with UserColumns.
func ScanUser(row Scanner) (domain.User, error) {
	var (
		u          domain.User
		role       string
		nationalID sql.NullString
		lastAuth   sql.NullTime
	)
	err := row.Scan(
		&u.ID,
		&u.DisplayName,
		&u.Email,
		&nationalID,
		&role,
		&u.OrganizationID,
		&u.Active,
		&u.PasswordHash,
		&lastAuth,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, MapNotFound(err)
	}

	// Stored roles are not re-validated: an unknown tag simply resolves to
	// an empty permission set.
	u.Role = rbac.RoleTag(role)
	u.NationalID = nationalID.String
	if lastAuth.Valid {
		t := lastAuth.Time.UTC()
		u.LastAuthenticatedAt = &t
	}
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return u, nil
}

// MapNotFound converts sql.ErrNoRows to ErrNotFound.
func MapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// NullString maps "" to NULL so optional unique columns stay unique.
func NullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// CheckAffected returns ErrNotFound when an update touched no rows.
func CheckAffected(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
