//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/aussiebroadwan/hospitalauth/internal/auth/domain"
	"github.com/aussiebroadwan/hospitalauth/internal/auth/rbac"
	"github.com/aussiebroadwan/hospitalauth/internal/auth/store"
	"github.com/aussiebroadwan/hospitalauth/internal/auth/store/drivers/postgres"
	"github.com/aussiebroadwan/hospitalauth/pkg/idx"
)

// startPostgres runs a throwaway postgres container and returns its URL.
func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "auth",
				"POSTGRES_PASSWORD": "auth",
				"POSTGRES_DB":       "auth",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://auth:auth@%s:%s/auth?sslmode=disable", host, port.Port())
}

func TestPostgresStore(t *testing.T) {
	ctx := context.Background()

	s, err := postgres.NewStore(ctx, startPostgres(t))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.ApplyMigrations())
	require.NoError(t, s.ApplyMigrations())

	now := time.Now().UTC().Truncate(time.Microsecond)
	u := domain.User{
		ID:           idx.New().String(),
		DisplayName:  "Dra. Souza",
		Email:        "souza@example.org",
		NationalID:   "98765432100",
		Role:         rbac.RoleMedico,
		Active:       true,
		PasswordHash: "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	require.NoError(t, s.WithTx(ctx, func(tx store.Tx) error {
		return tx.Users().CreateUser(ctx, u)
	}))
	require.ErrorIs(t, s.Users().CreateUser(ctx, u), store.ErrAlreadyExists)

	got, err := s.Users().GetUserByNationalID(ctx, "98765432100")
	require.NoError(t, err)
	require.Equal(t, u.Email, got.Email)
	require.True(t, now.Equal(got.CreatedAt))

	require.NoError(t, s.Users().TouchLastAuthenticated(ctx, u.ID, now.Add(time.Minute)))
	require.NoError(t, s.Users().SetActive(ctx, u.ID, false, now.Add(time.Minute)))

	got, err = s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.False(t, got.Active)
	require.NotNil(t, got.LastAuthenticatedAt)
}
