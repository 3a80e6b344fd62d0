package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/community-accounts-cli/internal/domain"
)

func newAccountsCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage the stored account files",
	}

	cmd.AddCommand(newAccountsListCmd(app), newAccountsAddCmd(app))

	return cmd
}

func newAccountsListCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the stored accounts for the environment",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, _, err := app.environment()
			if err != nil {
				return err
			}

			accounts, err := app.newAccountsRepo().Load(cmd.Context(), env)
			if err != nil {
				return err
			}

			for i, account := range accounts {
				fmt.Fprintf(cmd.OutOrStdout(), "%3d  %s\n", i+1, account.Email)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d accounts stored for %s\n", len(accounts), env)

			return nil
		},
	}
}

func newAccountsAddCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <email> <password>",
		Short: "Add an account to the environment's account file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, _, err := app.environment()
			if err != nil {
				return err
			}

			account := domain.Credential{Email: args[0], Password: args[1]}
			if err := account.Validate(); err != nil {
				return err
			}

			added, err := app.newAccountsRepo().Merge(cmd.Context(), env, []domain.Credential{account})
			if err != nil {
				return err
			}

			if added == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is already stored for %s\n", account.Email, env)
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "added %s to %s accounts\n", account.Email, env)
			return nil
		},
	}
}
