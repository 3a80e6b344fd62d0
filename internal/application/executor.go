package application

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bnema/community-accounts-cli/internal/domain"
	"github.com/bnema/community-accounts-cli/internal/ports"
)

// ExecuteInput identifies one operation invocation for an already
// authenticated account.
type ExecuteInput struct {
	BaseURL   string
	Env       domain.Environment
	Email     string
	Token     string
	Operation domain.OperationKey
	Params    map[string]string
}

// Executor runs declarative operations against the community API and records
// every attempt in the history ledger,
// including attempts that never reach the network.
type Executor struct {
	gateway     ports.CommunityGateway
	ledger      ports.HistoryLedger
	clock       ports.Clock
	sleeper     ports.Sleeper
	attemptPace Pace
	clientID    string
}

func NewExecutor(gateway ports.CommunityGateway, ledger ports.HistoryLedger, clock ports.Clock, sleeper ports.Sleeper, attemptPace Pace, clientID string) *Executor {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if sleeper == nil {
		sleeper = ports.SystemSleeper{}
	}
	if clientID == "" {
		clientID = domain.DefaultClientID
	}

	return &Executor{
		gateway:     gateway,
		ledger:      ledger,
		clock:       clock,
		sleeper:     sleeper,
		attemptPace: attemptPace,
		clientID:    clientID,
	}
}

// Execute validates parameters, dispatches the operation and aggregates the
// attempt results. Invalid invocations come back as failed results, not
// errors; errors are reserved for cancellation and ledger failures.
func (e *Executor) Execute(ctx context.Context, in ExecuteInput) (domain.OperationResult, error) {
	def, ok := domain.Lookup(in.Operation)
	if !ok {
		message := fmt.Sprintf("unknown operation %q", in.Operation)
		if err := e.record(ctx, in, "Unknown operation", in.Params["target_id"], domain.OutcomeFailed, message); err != nil {
			return domain.OperationResult{}, err
		}
		return domain.FailedResult(message), nil
	}

	params, err := def.MergeParams(in.Params)
	if err != nil {
		if recordErr := e.record(ctx, in, def.Name, in.Params["target_id"], domain.OutcomeFailed, err.Error()); recordErr != nil {
			return domain.OperationResult{}, recordErr
		}
		return domain.FailedResult(err.Error()), nil
	}
	target := params["target_id"]

	selfAID := ""
	if def.NeedsSelfAID {
		selfAID, err = e.gateway.SelfAID(ctx, in.BaseURL, in.Token)
		if err != nil {
			message := fmt.Sprintf("resolve own aid: %v", err)
			if recordErr := e.record(ctx, in, def.Name, target, domain.OutcomeFailed, message); recordErr != nil {
				return domain.OperationResult{}, recordErr
			}
			return domain.FailedResult(message), nil
		}
	}

	count := 1
	if def.Repeatable {
		count, err = strconv.Atoi(params["count"])
		if err != nil || count < 1 {
			message := fmt.Sprintf("count %q is not a positive number", params["count"])
			if recordErr := e.record(ctx, in, def.Name, target, domain.OutcomeFailed, message); recordErr != nil {
				return domain.OperationResult{}, recordErr
			}
			return domain.FailedResult(message), nil
		}
	}

	attempts := make([]domain.AttemptResult, 0, count)
	for i := 0; i < count; i++ {
		if i > 0 {
			if err := e.sleeper.Sleep(ctx, e.attemptPace.Duration()); err != nil {
				return domain.Aggregate(attempts), err
			}
		}

		req, err := def.BuildRequest(params, domain.BuildContext{
			ClientID: e.clientID,
			SelfAID:  selfAID,
			Attempt:  i,
			Now:      e.clock.Now(),
		})
		if err != nil {
			// Build failures are deterministic; repeating would only
			// produce the same failure.
			if recordErr := e.record(ctx, in, def.Name, target, domain.OutcomeFailed, err.Error()); recordErr != nil {
				return domain.OperationResult{}, recordErr
			}
			attempts = append(attempts, domain.AttemptResult{Success: false, Message: err.Error()})
			break
		}

		attempt := e.attempt(ctx, in, req)
		attempts = append(attempts, attempt)

		if err := e.record(ctx, in, def.Name, target, domain.OutcomeOf(attempt.Success), attempt.Message); err != nil {
			return domain.Aggregate(attempts), err
		}
		if ctx.Err() != nil {
			return domain.Aggregate(attempts), ctx.Err()
		}
	}

	if !def.Repeatable && len(attempts) == 1 {
		return domain.SingleResult(attempts[0].Success, attempts[0].Message), nil
	}

	return domain.Aggregate(attempts), nil
}

func (e *Executor) attempt(ctx context.Context, in ExecuteInput, req domain.Request) domain.AttemptResult {
	resp, err := e.gateway.Do(ctx, in.BaseURL, in.Token, req)
	if err != nil {
		return domain.AttemptResult{Success: false, Message: fmt.Sprintf("request failed: %v", err)}
	}

	success := domain.Classify(resp, false)
	return domain.AttemptResult{Success: success, Message: describeResponse(resp, false)}
}

func (e *Executor) record(ctx context.Context, in ExecuteInput, operation, target string, outcome domain.Outcome, details string) error {
	err := e.ledger.Record(ctx, domain.HistoryRecord{
		Operation: operation,
		Email:     in.Email,
		TargetID:  target,
		Result:    outcome,
		Env:       in.Env,
		Details:   details,
	})
	if err != nil {
		return fmt.Errorf("record history: %w", err)
	}

	return nil
}

func describeResponse(resp domain.Response, acceptZero bool) string {
	if domain.Classify(resp, acceptZero) {
		return "ok"
	}
	if resp.HTTPStatus != 200 {
		return fmt.Sprintf("http %d", resp.HTTPStatus)
	}
	if !resp.StatusKnown {
		return "response body is not json"
	}

	return fmt.Sprintf("remote status %d", resp.Status)
}
