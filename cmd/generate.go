package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bnema/community-accounts-cli/internal/application"
)

func newGenerateCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "generate [count]",
		Short: "Generate fresh accounts via disposable email",
		Long:  "Generate fresh platform accounts end to end: disposable inbox, verification codes, registration and activation. Created accounts are merged into the environment's account file.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, baseURL, err := app.environment()
			if err != nil {
				return err
			}

			count := 1
			if len(args) == 1 {
				count, err = strconv.Atoi(args[0])
				if err != nil || count < 1 {
					return fmt.Errorf("count %q must be a positive number", args[0])
				}
			}

			generator := application.NewGenerator(
				app.newGateway(),
				app.newMailProvider(),
				app.newAccountsRepo(),
				app.sleeper,
				application.GeneratorOptions{
					PollAttempts: app.cfg.Mail.PollAttempts,
					PollInterval: app.cfg.MailPollInterval(),
					CodeLength:   app.cfg.Mail.CodeLength,
					AccountPace:  app.accountPace(),
				},
				app.logger(cmd.ErrOrStderr()),
			)

			report, err := generator.Generate(cmd.Context(), env, baseURL, count)
			if err != nil {
				return err
			}

			for _, account := range report.Created {
				fmt.Fprintf(cmd.OutOrStdout(), "created %s %s\n", account.Email, account.Password)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d created, %d failed, %d added to %s accounts\n",
				len(report.Created), report.Failed, report.Added, env)

			return nil
		},
	}
}
