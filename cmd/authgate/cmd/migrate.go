package cmd

import (
	"fmt"

	"github.com/goliatone/go-authgate"
	"github.com/goliatone/go-authgate/repository"
	"github.com/spf13/cobra"
)

var (
	adminEmail    string
	adminUsername string
	adminPassword string
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the account and post migrations",
	Long: `Applies the embedded account and post migrations. With --admin-email and
--admin-password an enabled ADMIN account is seeded unless the email or
username is already taken.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := repository.Open(cfg.Database.DSN, cfg.Database.Debug)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer client.DB().Close()

		if err := repository.Migrate(cmd.Context(), client); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		logger.Info("account and post tables ready")

		accounts := repository.NewAccountStore(client.DB())

		if adminEmail == "" {
			return nil
		}
		if adminPassword == "" {
			return fmt.Errorf("--admin-password is required with --admin-email")
		}
		if adminUsername == "" {
			adminUsername = "admin"
		}

		hash, err := authgate.HashPasswordWithCost(adminPassword, cfg.Auth.HashCost)
		if err != nil {
			return fmt.Errorf("failed to hash admin password: %w", err)
		}

		principal, err := accounts.CreateAccount(cmd.Context(), authgate.NewAccount{
			Email:        adminEmail,
			Username:     adminUsername,
			DisplayName:  adminUsername,
			PasswordHash: hash,
			Role:         authgate.RoleAdmin,
			Enabled:      true,
		})
		if err != nil {
			if authgate.IsAccountExists(err) {
				logger.Warnf("admin account %s already exists, skipping seed", adminEmail)
				return nil
			}
			return fmt.Errorf("failed to seed admin account: %w", err)
		}

		logger.WithField("account_id", principal.ID).Info("admin account seeded")
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVar(&adminEmail, "admin-email", "", "Email of an ADMIN account to seed")
	migrateCmd.Flags().StringVar(&adminUsername, "admin-username", "", "Username of the seeded ADMIN account (default: admin)")
	migrateCmd.Flags().StringVar(&adminPassword, "admin-password", "", "Password of the seeded ADMIN account")

	rootCmd.AddCommand(migrateCmd)
}
