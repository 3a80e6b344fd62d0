package application

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/bnema/community-accounts-cli/internal/domain"
	"github.com/bnema/community-accounts-cli/internal/ports"
)

// RunInput describes one batch run: the same operation applied to every
// account in order.
type RunInput struct {
	BaseURL   string
	Env       domain.Environment
	Accounts  []domain.Credential
	Operation domain.OperationKey
	Params    map[string]string
}

// AccountOutcome is the per-account slice of a batch run.
type AccountOutcome struct {
	Email  string
	Login  LoginResult
	Result domain.OperationResult
}

// RunReport aggregates a whole batch run.
type RunReport struct {
	RunID    string
	Outcomes []AccountOutcome
}

func (r RunReport) SuccessCount() int {
	count := 0
	for _, outcome := range r.Outcomes {
		if outcome.Result.Success {
			count++
		}
	}

	return count
}

// Runner executes one operation across many accounts sequentially. One
// account fully finishes, including its internal repeats, before the next
// one starts; a failed account never halts the batch.
type Runner struct {
	sessions    *SessionService
	executor    *Executor
	ledger      ports.HistoryLedger
	sleeper     ports.Sleeper
	accountPace Pace
	logger      *slog.Logger
}

func NewRunner(sessions *SessionService, executor *Executor, ledger ports.HistoryLedger, sleeper ports.Sleeper, accountPace Pace, logger *slog.Logger) *Runner {
	if sleeper == nil {
		sleeper = ports.SystemSleeper{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Runner{
		sessions:    sessions,
		executor:    executor,
		ledger:      ledger,
		sleeper:     sleeper,
		accountPace: accountPace,
		logger:      logger,
	}
}

func (r *Runner) Run(ctx context.Context, in RunInput) (RunReport, error) {
	report := RunReport{RunID: uuid.NewString()}
	r.logger.Info("starting batch run",
		"run_id", report.RunID,
		"operation", string(in.Operation),
		"accounts", len(in.Accounts),
		"env", string(in.Env))

	for i, account := range in.Accounts {
		if i > 0 {
			if err := r.sleeper.Sleep(ctx, r.accountPace.Duration()); err != nil {
				return report, err
			}
		}

		outcome, err := r.runAccount(ctx, in, account)
		report.Outcomes = append(report.Outcomes, outcome)
		if err != nil {
			return report, err
		}

		r.logger.Info("account finished",
			"run_id", report.RunID,
			"email", account.Email,
			"success", outcome.Result.Success,
			"message", outcome.Result.Message)
	}

	return report, nil
}

func (r *Runner) runAccount(ctx context.Context, in RunInput, account domain.Credential) (AccountOutcome, error) {
	outcome := AccountOutcome{Email: account.Email}

	outcome.Login = r.sessions.LoginUser(ctx, in.BaseURL, account.Email, account.Password)
	if !outcome.Login.Success {
		outcome.Result = domain.FailedResult(outcome.Login.Message)
		err := r.ledger.Record(ctx, domain.HistoryRecord{
			Operation: operationName(in.Operation),
			Email:     account.Email,
			TargetID:  in.Params["target_id"],
			Result:    domain.OutcomeFailed,
			Env:       in.Env,
			Details:   outcome.Login.Message,
		})
		return outcome, err
	}

	result, err := r.executor.Execute(ctx, ExecuteInput{
		BaseURL:   in.BaseURL,
		Env:       in.Env,
		Email:     account.Email,
		Token:     outcome.Login.Token,
		Operation: in.Operation,
		Params:    in.Params,
	})
	outcome.Result = result

	return outcome, err
}

func operationName(key domain.OperationKey) string {
	if def, ok := domain.Lookup(key); ok {
		return def.Name
	}

	return string(key)
}
