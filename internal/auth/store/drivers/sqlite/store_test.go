package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/hospitalauth/internal/auth/domain"
	"github.com/aussiebroadwan/hospitalauth/internal/auth/rbac"
	"github.com/aussiebroadwan/hospitalauth/internal/auth/store"
	"github.com/aussiebroadwan/hospitalauth/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/hospitalauth/pkg/idx"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newUser(email, nationalID string, role rbac.RoleTag) domain.User {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return domain.User{
		ID:             idx.New().String(),
		DisplayName:    "Dr. Test",
		Email:          email,
		NationalID:     nationalID,
		Role:           role,
		OrganizationID: "hospital-central",
		Active:         true,
		PasswordHash:   "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestUsersCRUD(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	users := s.Users()

	empty, err := users.IsEmpty(ctx)
	require.NoError(t, err)
	require.True(t, empty)

	u := newUser("medico@example.org", "12345678901", rbac.RoleMedico)
	require.NoError(t, users.CreateUser(ctx, u))

	empty, err = users.IsEmpty(ctx)
	require.NoError(t, err)
	require.False(t, empty)

	byID, err := users.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.Email, byID.Email)
	require.Equal(t, rbac.RoleMedico, byID.Role)
	require.True(t, byID.Active)
	require.Nil(t, byID.LastAuthenticatedAt)
	require.True(t, u.CreatedAt.Equal(byID.CreatedAt))

	byEmail, err := users.GetUserByEmail(ctx, "medico@example.org")
	require.NoError(t, err)
	require.Equal(t, u.ID, byEmail.ID)

	byCPF, err := users.GetUserByNationalID(ctx, "12345678901")
	require.NoError(t, err)
	require.Equal(t, u.ID, byCPF.ID)

	_, err = users.GetUserByEmail(ctx, "nobody@example.org")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateUserDuplicates(t *testing.T) {
	ctx := context.Background()
	users := newStore(t).Users()

	require.NoError(t, users.CreateUser(ctx, newUser("a@example.org", "111", rbac.RoleAdmin)))
	require.ErrorIs(t, users.CreateUser(ctx, newUser("a@example.org", "222", rbac.RoleAdmin)), store.ErrAlreadyExists)
	require.ErrorIs(t, users.CreateUser(ctx, newUser("b@example.org", "111", rbac.RoleAdmin)), store.ErrAlreadyExists)

	// Users without a national id do not collide with each other.
	require.NoError(t, users.CreateUser(ctx, newUser("c@example.org", "", rbac.RoleAdmin)))
	require.NoError(t, users.CreateUser(ctx, newUser("d@example.org", "", rbac.RoleAdmin)))

	all, err := users.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestUserMutations(t *testing.T) {
	ctx := context.Background()
	users := newStore(t).Users()

	u := newUser("enf@example.org", "", rbac.RoleEnfermeiro)
	require.NoError(t, users.CreateUser(ctx, u))

	at := time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC)
	require.NoError(t, users.TouchLastAuthenticated(ctx, u.ID, at))
	require.NoError(t, users.SetActive(ctx, u.ID, false, at))
	require.NoError(t, users.SetRole(ctx, u.ID, rbac.RoleEnfermeiroTriagem, at))
	require.NoError(t, users.UpdatePasswordHash(ctx, u.ID, "$2a$10$legacy", at))

	got, err := users.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.False(t, got.Active)
	require.Equal(t, rbac.RoleEnfermeiroTriagem, got.Role)
	require.Equal(t, "$2a$10$legacy", got.PasswordHash)
	require.NotNil(t, got.LastAuthenticatedAt)
	require.True(t, at.Equal(*got.LastAuthenticatedAt))
	require.True(t, at.Equal(got.UpdatedAt))

	require.ErrorIs(t, users.SetActive(ctx, "missing", true, at), store.ErrNotFound)
}

func TestWithTx(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	err := s.WithTx(ctx, func(tx store.Tx) error {
		require.NoError(t, tx.Users().CreateUser(ctx, newUser("rollback@example.org", "", rbac.RoleAdmin)))
		return store.ErrAlreadyExists
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	empty, err := s.Users().IsEmpty(ctx)
	require.NoError(t, err)
	require.True(t, empty)

	require.NoError(t, s.WithTx(ctx, func(tx store.Tx) error {
		return tx.Users().CreateUser(ctx, newUser("commit@example.org", "", rbac.RoleAdmin))
	}))
	_, err = s.Users().GetUserByEmail(ctx, "commit@example.org")
	require.NoError(t, err)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.ApplyMigrations())
	require.NoError(t, s.Ping(context.Background()))
}
