package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/hospitalauth/internal/auth/app"
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password [password]",
	Short: "Print an argon2id hash of a password",
	Long: `Hashes a password with the configured pepper (AUTH_PEPPER_FILE). The
password is taken from the argument or, when absent, the first line of stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := passwordArg(cmd, args)
		if err != nil {
			return err
		}

		hasher, err := app.NewHasher(app.LoadConfig())
		if err != nil {
			return err
		}
		hash, err := hasher.Hash(password)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

func passwordArg(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return "", errors.New("password must not be empty")
	}
	return line, nil
}
