package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/community-accounts-cli/internal/application"
)

func newAIDCmd(app *app) *cobra.Command {
	var (
		email    string
		password string
	)

	cmd := &cobra.Command{
		Use:   "aid",
		Short: "Resolve an account's own AID",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, baseURL, err := app.environment()
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

			gateway := app.newGateway()
			service := application.NewAccountService(
				app.newAccountsRepo(),
				gateway,
				app.newSessions(gateway),
				app.sleeper,
				app.validatePace(),
			)

			var aid string
			err = runProgressSpinner(cmd.Context(), cmd.OutOrStdout(), "Resolving AID...", func() error {
				var resolveErr error
				aid, resolveErr = service.ResolveAID(cmd.Context(), baseURL, email, password)
				return resolveErr
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), aid)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted when omitted)")

	return cmd
}
