package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/community-accounts-cli/internal/application"
	"github.com/bnema/community-accounts-cli/internal/domain"
)

func newValidateCmd(app *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Probe the stored accounts with a real login",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, baseURL, err := app.environment()
			if err != nil {
				return err
			}

			accounts, err := app.newAccountsRepo().Load(cmd.Context(), env)
			if err != nil {
				return err
			}
			if len(accounts) == 0 {
				return fmt.Errorf("no accounts stored for environment %q", env)
			}

			gateway := app.newGateway()
			service := application.NewAccountService(
				app.newAccountsRepo(),
				gateway,
				app.newSessions(gateway),
				app.sleeper,
				app.validatePace(),
			)

			outcomes, err := service.ValidateAccounts(cmd.Context(), baseURL, accounts)
			if err != nil {
				return err
			}

			validAccounts := make([]domain.Credential, 0, len(outcomes))
			for _, outcome := range outcomes {
				label := "invalid"
				if outcome.Valid {
					label = "valid"
					for _, account := range accounts {
						if account.Email == outcome.Email {
							validAccounts = append(validAccounts, account)
							break
						}
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s: %s\n", label, outcome.Email, outcome.Message)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d/%d accounts valid\n", len(validAccounts), len(outcomes))

			if output != "" {
				if err := app.newAccountsRepo().Export(cmd.Context(), output, validAccounts); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %d valid accounts to %s\n", len(validAccounts), output)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the valid accounts to this file")

	return cmd
}
