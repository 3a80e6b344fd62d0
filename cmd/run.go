package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/community-accounts-cli/internal/application"
	"github.com/bnema/community-accounts-cli/internal/domain"
)

func newRunCmd(app *app) *cobra.Command {
	var (
		params []string
		start  int
		count  int
	)

	cmd := &cobra.Command{
		Use:   "run <operation>",
		Short: "Run one operation across the stored accounts",
		Long:  "Run one registry operation sequentially across the environment's stored accounts.\n\nOperations:\n" + operationsHelp(),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, baseURL, err := app.environment()
			if err != nil {
				return err
			}

			opParams, err := parseParams(params)
			if err != nil {
				return err
			}

			accounts, err := app.newAccountsRepo().Load(cmd.Context(), env)
			if err != nil {
				return err
			}
			accounts = sliceAccounts(accounts, start, count)
			if len(accounts) == 0 {
				return fmt.Errorf("no accounts stored for environment %q", env)
			}

			gateway := app.newGateway()
			ledger := app.newLedger()
			runner := application.NewRunner(
				app.newSessions(gateway),
				app.newExecutor(gateway, ledger),
				ledger,
				app.sleeper,
				app.accountPace(),
				app.logger(cmd.ErrOrStderr()),
			)

			report, err := runner.Run(cmd.Context(), application.RunInput{
				BaseURL:   baseURL,
				Env:       env,
				Accounts:  accounts,
				Operation: domain.OperationKey(args[0]),
				Params:    opParams,
			})

			for _, outcome := range report.Outcomes {
				fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s: %s\n", outcomeLabel(outcome.Result.Success), outcome.Email, outcome.Result.Message)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d/%d accounts succeeded\n", report.SuccessCount(), len(report.Outcomes))

			return err
		},
	}

	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "Operation parameter as key=value (repeatable)")
	cmd.Flags().IntVar(&start, "start", 0, "Index of the first account to use")
	cmd.Flags().IntVar(&count, "count", 0, "How many accounts to use (0 means all remaining)")

	return cmd
}

func sliceAccounts(accounts []domain.Credential, start, count int) []domain.Credential {
	if start < 0 {
		start = 0
	}
	if start >= len(accounts) {
		return nil
	}

	accounts = accounts[start:]
	if count > 0 && count < len(accounts) {
		accounts = accounts[:count]
	}

	return accounts
}
