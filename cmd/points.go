package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bnema/community-accounts-cli/internal/application"
	"github.com/bnema/community-accounts-cli/internal/domain"
)

func newPointsCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "points",
		Short: "Adjust account points through the admin backend",
	}

	cmd.AddCommand(
		newPointsSubCmd(app, "grant", "Grant points to an account", domain.PointsGrant),
		newPointsSubCmd(app, "deduct", "Deduct points from an account", domain.PointsDeduct),
	)

	return cmd
}

func newPointsSubCmd(app *app, use, short string, kind domain.PointsKind) *cobra.Command {
	var (
		email    string
		password string
	)

	cmd := &cobra.Command{
		Use:   use + " [aid] <points>",
		Short: short,
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, baseURL, err := app.environment()
			if err != nil {
				return err
			}

			aid := ""
			rawPoints := args[0]
			if len(args) == 2 {
				aid = args[0]
				rawPoints = args[1]
			}

			points, err := strconv.Atoi(rawPoints)
			if err != nil || points <= 0 {
				return fmt.Errorf("points %q must be a positive number", rawPoints)
			}

			if aid == "" {
				if email == "" {
					return errors.New("pass an aid or --email to resolve one")
				}
				if password == "" {
					password, err = promptPassword(cmd, "Password for "+email)
					if err != nil {
						return err
					}
				}

				gateway := app.newGateway()
				accounts := application.NewAccountService(
					app.newAccountsRepo(),
					gateway,
					app.newSessions(gateway),
					app.sleeper,
					app.validatePace(),
				)
				aid, err = accounts.ResolveAID(cmd.Context(), baseURL, email, password)
				if err != nil {
					return err
				}
			}

			backendURL, err := app.cfg.AdminBackendURL(env)
			if err != nil {
				return err
			}
			apiURL, err := app.cfg.AdminAPIURL(env)
			if err != nil {
				return err
			}
			credential, err := app.cfg.AdminCredential(env)
			if err != nil {
				return err
			}
			operation, ok := app.cfg.Admin.Points[string(kind)]
			if !ok {
				return fmt.Errorf("no points operation %q configured", kind)
			}

			service := application.NewAdminService(app.newAdminGateway(), app.newLedger(), app.clock)
			result, err := service.ExecutePoints(cmd.Context(), application.PointsInput{
				Env:           env,
				BackendURL:    backendURL,
				APIURL:        apiURL,
				Username:      credential.Username,
				Password:      credential.Password,
				Kind:          kind,
				Path:          operation.Path,
				MaxPerRequest: operation.MaxPerRequest,
				TargetAID:     aid,
				Points:        points,
			})
			if err != nil {
				return err
			}

			printResult(cmd, result)
			if !result.Success {
				return fmt.Errorf("%s failed: %s", kind.Name(), result.Message)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Resolve the target AID from this account")
	cmd.Flags().StringVar(&password, "password", "", "Password for --email (prompted when omitted)")

	return cmd
}
