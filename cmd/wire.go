package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/spf13/viper"

	"github.com/bnema/community-accounts-cli/internal/adapters/adminapi"
	"github.com/bnema/community-accounts-cli/internal/adapters/api"
	"github.com/bnema/community-accounts-cli/internal/adapters/mailtm"
	"github.com/bnema/community-accounts-cli/internal/adapters/repo/jsonfile"
	"github.com/bnema/community-accounts-cli/internal/application"
	"github.com/bnema/community-accounts-cli/internal/config"
	"github.com/bnema/community-accounts-cli/internal/domain"
	"github.com/bnema/community-accounts-cli/internal/logging"
	"github.com/bnema/community-accounts-cli/internal/ports"
)

type globalOptions struct {
	env     string
	verbose bool
}

type app struct {
	cfg        config.Config
	opts       *globalOptions
	httpClient *http.Client
	clock      ports.Clock
	sleeper    ports.Sleeper
}

func wireApp(opts *globalOptions) (*app, error) {
	cfg, err := config.Load(viper.New())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return &app{
		cfg:        cfg,
		opts:       opts,
		httpClient: http.DefaultClient,
		clock:      ports.SystemClock{},
		sleeper:    ports.SystemSleeper{},
	}, nil
}

// environment resolves the target environment from the --env flag or the
// configured default, together with its base URL.
func (a *app) environment() (domain.Environment, string, error) {
	name := a.opts.env
	if name == "" {
		name = a.cfg.DefaultEnv
	}

	env := domain.Environment(name)
	baseURL, err := a.cfg.BaseURL(env)
	if err != nil {
		return "", "", err
	}

	return env, baseURL, nil
}

func (a *app) logger(w io.Writer) *slog.Logger {
	return logging.New(w, a.opts.verbose)
}

// newGateway hands out a fresh community API client. Each client owns its own
// identifying header state, so commands get one per invocation instead of a
// shared instance.
func (a *app) newGateway() *api.Client {
	return api.New(api.Options{
		HTTPClient:     a.httpClient,
		Headers:        a.cfg.Headers,
		RequestTimeout: a.cfg.RequestTimeout(),
		RatePerSecond:  a.cfg.Client.RatePerSecond,
	})
}

func (a *app) newAdminGateway() *adminapi.Client {
	return adminapi.New(adminapi.Options{
		HTTPClient:     a.httpClient,
		LoginPath:      a.cfg.Admin.LoginPath,
		RequestTimeout: a.cfg.AncillaryTimeout(),
	})
}

func (a *app) newMailProvider() *mailtm.Client {
	return mailtm.New(mailtm.Options{
		HTTPClient:     a.httpClient,
		BaseURL:        a.cfg.Mail.BaseURL,
		RequestTimeout: a.cfg.AncillaryTimeout(),
	})
}

func (a *app) newLedger() *jsonfile.Ledger {
	return jsonfile.NewLedger(a.cfg.HistoryDir(), a.clock)
}

func (a *app) newAccountsRepo() *jsonfile.AccountsRepository {
	return jsonfile.NewAccountsRepository(a.cfg.AccountsDir())
}

func (a *app) newSessions(gateway ports.CommunityGateway) *application.SessionService {
	return application.NewSessionService(gateway, a.clock, a.cfg.Client.ID)
}

func (a *app) newExecutor(gateway ports.CommunityGateway, ledger ports.HistoryLedger) *application.Executor {
	return application.NewExecutor(gateway, ledger, a.clock, a.sleeper, a.attemptPace(), a.cfg.Client.ID)
}

func (a *app) attemptPace() application.Pace {
	return application.Pace{MinSeconds: a.cfg.Pacing.AttemptMinSeconds, MaxSeconds: a.cfg.Pacing.AttemptMaxSeconds}
}

func (a *app) accountPace() application.Pace {
	return application.Pace{MinSeconds: a.cfg.Pacing.AccountMinSeconds, MaxSeconds: a.cfg.Pacing.AccountMaxSeconds}
}

func (a *app) validatePace() application.Pace {
	return application.Pace{MinSeconds: a.cfg.Pacing.ValidateMinSeconds, MaxSeconds: a.cfg.Pacing.ValidateMaxSeconds}
}
