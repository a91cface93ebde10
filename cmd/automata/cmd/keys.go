package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/solatis/automata/internal/core/auth"
	"github.com/solatis/automata/internal/core/config"
)

var keyLabel string

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage API keys",
}

var keysCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an API key; the key is printed once and never stored",
	RunE: func(cmd *cobra.Command, args []string) error {
		authenticator, closeDB, err := openAuthenticator(cmd)
		if err != nil {
			return err
		}
		defer closeDB()

		id, key, err := authenticator.CreateKey(cmd.Context(), keyLabel)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "id:  %s\nkey: %s\n", id, key)
		return nil
	},
}

var keysRevokeCmd = &cobra.Command{
	Use:   "revoke ID",
	Short: "Revoke an API key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		authenticator, closeDB, err := openAuthenticator(cmd)
		if err != nil {
			return err
		}
		defer closeDB()

		if err := authenticator.RevokeKey(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "revoked %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keysCmd)
	keysCmd.AddCommand(keysCreateCmd, keysRevokeCmd)
	keysCreateCmd.Flags().StringVar(&keyLabel, "label", "", "human-readable key label")
}

func openAuthenticator(cmd *cobra.Command) (*auth.Authenticator, func(), error) {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	secrets, err := config.HMACSecrets()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load HMAC secrets: %w", err)
	}
	database, queries, err := openDatabase(cmd.Context(), cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return auth.NewAuthenticator(secrets, queries, auth.WithLogger(logger)), func() { database.Close() }, nil
}
