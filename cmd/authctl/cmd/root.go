// Package cmd implements authctl, the operator CLI for the auth service.
// It reads the same AUTH_* environment as the service.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/hospitalauth/internal/auth/app"
	"github.com/aussiebroadwan/hospitalauth/internal/auth/service"
	"github.com/aussiebroadwan/hospitalauth/internal/auth/store"
	"github.com/aussiebroadwan/hospitalauth/pkg/slogx"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "authctl",
	Short: "Hospital auth service operator CLI",
	Long: `authctl manages the hospital auth service's user store: it hashes
passwords, creates identities, applies migrations and prints the role
catalog. Configuration comes from the same AUTH_* variables as the service.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level to stderr")
	rootCmd.AddCommand(hashPasswordCmd, createUserCmd, setActiveCmd, migrateCmd, rolesCmd)
}

func commandContext(cmd *cobra.Command) context.Context {
	level := "error"
	if verbose {
		level = "debug"
	}
	logger := slogx.New(slogx.Config{
		Service: "authctl",
		Version: app.BuildVersion,
		Level:   level,
		Format:  "text",
		Output:  cmd.ErrOrStderr(),
	})
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return slogx.WithContext(ctx, logger)
}

// openUsers opens the configured store and returns a UserService over it.
func openUsers(ctx context.Context) (*service.UserService, store.Store, error) {
	cfg := app.LoadConfig()

	hasher, err := app.NewHasher(cfg)
	if err != nil {
		return nil, nil, err
	}
	st, err := app.OpenStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return &service.UserService{Store: st, Hasher: hasher}, st, nil
}

func closeQuietly(ctx context.Context, c io.Closer) {
	if err := c.Close(); err != nil {
		slogx.FromContext(ctx).Warn("close failed", slog.Any("error", err))
	}
}
