package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/community-accounts-cli/internal/application"
	"github.com/bnema/community-accounts-cli/internal/domain"
)

func newExecCmd(app *app) *cobra.Command {
	var (
		email    string
		password string
		params   []string
	)

	cmd := &cobra.Command{
		Use:   "exec <operation>",
		Short: "Run one operation as a single account",
		Long:  "Run one registry operation authenticated as a single account.\n\nOperations:\n" + operationsHelp(),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, baseURL, err := app.environment()
			if err != nil {
				return err
			}

			if email == "" {
				return errors.New("--email is required")
			}
			if password == "" {
				password, err = promptPassword(cmd, "Password for "+email)
				if err != nil {
					return err
				}
			}

			opParams, err := parseParams(params)
			if err != nil {
				return err
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
				Accounts:  []domain.Credential{{Email: email, Password: password}},
				Operation: domain.OperationKey(args[0]),
				Params:    opParams,
			})
			if err != nil {
				return err
			}

			result := report.Outcomes[0].Result
			printResult(cmd, result)
			if !result.Success {
				return fmt.Errorf("operation failed: %s", result.Message)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted when omitted)")
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "Operation parameter as key=value (repeatable)")

	return cmd
}
