package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           "ca",
		Short:         "Community Accounts CLI (ca): batch community operations across accounts",
		Long:          "ca (Community Accounts CLI) runs community API operations across stored accounts, adjusts points through the admin backend, generates fresh accounts via disposable email, and keeps an audit history of everything it did.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&opts.env, "env", "", "Target environment (dev or pda; defaults to the configured default)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	app, err := wireApp(opts)
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newExecCmd(app),
		newRunCmd(app),
		newPointsCmd(app),
		newAIDCmd(app),
		newGenerateCmd(app),
		newValidateCmd(app),
		newAccountsCmd(app),
		newHistoryCmd(app),
		newConfigCmd(app),
	)

	return rootCmd
}
