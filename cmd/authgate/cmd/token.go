package cmd

import (
	"fmt"

	"github.com/goliatone/go-authgate"
	"github.com/goliatone/go-print"
	"github.com/spf13/cobra"
)

var tokenSubject string

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue and inspect tokens with the configured signing key",
}

var tokenIssueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Issue a token for a subject",
	Long:  `Signs a token for --subject. The subject is not checked against the account store.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tokens, err := authgate.NewTokenService(cfg, authgate.WithTokenLogger(adaptLogger(logger, "token")))
		if err != nil {
			return fmt.Errorf("failed to create token service: %w", err)
		}

		token, err := tokens.Issue(tokenSubject)
		if err != nil {
			return fmt.Errorf("failed to issue token: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), print.MaybePrettyJSON(token))
		return nil
	},
}

var tokenVerifyCmd = &cobra.Command{
	Use:   "verify <token>",
	Short: "Verify a token and print its subject",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tokens, err := authgate.NewTokenService(cfg, authgate.WithTokenLogger(adaptLogger(logger, "token")))
		if err != nil {
			return fmt.Errorf("failed to create token service: %w", err)
		}

		subject, err := tokens.Verify(args[0])
		if err != nil {
			return fmt.Errorf("token rejected: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), subject)
		return nil
	},
}

func init() {
	tokenIssueCmd.Flags().StringVar(&tokenSubject, "subject", "", "Token subject, usually the account email")
	_ = tokenIssueCmd.MarkFlagRequired("subject")

	tokenCmd.AddCommand(tokenIssueCmd)
	tokenCmd.AddCommand(tokenVerifyCmd)
	rootCmd.AddCommand(tokenCmd)
}
