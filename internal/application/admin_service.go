package application

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bnema/community-accounts-cli/internal/domain"
	"github.com/bnema/community-accounts-cli/internal/ports"
)

// adminSessionTTL bounds how long a cached admin token is trusted. The admin
// login response carries no expiry either.
const adminSessionTTL = 2 * time.Hour

type adminKey struct {
	backendURL string
	username   string
}

type adminSession struct {
	token     string
	email     string
	expiresAt time.Time
}

// PointsInput describes one administrative point adjustment. Amounts above
// the per-request cap are split into multiple sub-requests automatically.
type PointsInput struct {
	Env           domain.Environment
	BackendURL    string
	APIURL        string
	Username      string
	Password      string
	Kind          domain.PointsKind
	Path          string
	MaxPerRequest int
	TargetAID     string
	Points        int
}

// AdminService drives the administrative backend: its own login contract, its
// own token cache, and point operations with per-request caps.
type AdminService struct {
	gateway ports.AdminGateway
	ledger  ports.HistoryLedger
	clock   ports.Clock

	mu       sync.Mutex
	sessions map[adminKey]adminSession
}

func NewAdminService(gateway ports.AdminGateway, ledger ports.HistoryLedger, clock ports.Clock) *AdminService {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &AdminService{
		gateway:  gateway,
		ledger:   ledger,
		clock:    clock,
		sessions: make(map[adminKey]adminSession),
	}
}

// ExecutePoints grants or deducts points for one target account. Each
// sub-request is classified and recorded individually; the admin API reports
// success as status 200 or 0.
func (s *AdminService) ExecutePoints(ctx context.Context, in PointsInput) (domain.OperationResult, error) {
	aid := strings.TrimSpace(in.TargetAID)
	if aid == "" || in.Points <= 0 {
		message := "points operations require a target aid and a positive amount"
		if err := s.record(ctx, in, "unknown", aid, domain.OutcomeFailed, message); err != nil {
			return domain.OperationResult{}, err
		}
		return domain.FailedResult(message), nil
	}

	token, email, err := s.login(ctx, in)
	if err != nil {
		message := fmt.Sprintf("admin login failed: %v", err)
		if recordErr := s.record(ctx, in, "unknown", aid, domain.OutcomeFailed, message); recordErr != nil {
			return domain.OperationResult{}, recordErr
		}
		return domain.FailedResult(message), nil
	}

	chunks := domain.SplitPoints(in.Points, in.MaxPerRequest)
	attempts := make([]domain.AttemptResult, 0, len(chunks))

	for _, chunk := range chunks {
		attempt := s.subRequest(ctx, in, token, aid, chunk)
		attempts = append(attempts, attempt)

		if err := s.record(ctx, in, email, aid, domain.OutcomeOf(attempt.Success), attempt.Message); err != nil {
			return domain.Aggregate(attempts), err
		}
		if ctx.Err() != nil {
			return domain.Aggregate(attempts), ctx.Err()
		}
	}

	return domain.Aggregate(attempts), nil
}

func (s *AdminService) subRequest(ctx context.Context, in PointsInput, token, aid string, chunk int) domain.AttemptResult {
	body, err := in.Kind.Body(aid, chunk)
	if err != nil {
		return domain.AttemptResult{Success: false, Message: err.Error()}
	}

	resp, err := s.gateway.Do(ctx, in.APIURL, token, in.Path, body)
	if err != nil {
		return domain.AttemptResult{Success: false, Message: fmt.Sprintf("request failed: %v", err)}
	}

	if domain.Classify(resp, true) {
		return domain.AttemptResult{Success: true, Message: fmt.Sprintf("ok (%d points)", chunk)}
	}

	return domain.AttemptResult{Success: false, Message: describeResponse(resp, true)}
}

// login returns a cached admin token when one is still fresh, logging in
// otherwise.
func (s *AdminService) login(ctx context.Context, in PointsInput) (string, string, error) {
	key := adminKey{backendURL: in.BackendURL, username: in.Username}
	now := s.clock.Now()

	s.mu.Lock()
	cached, ok := s.sessions[key]
	s.mu.Unlock()
	if ok && cached.token != "" && now.Before(cached.expiresAt) {
		return cached.token, cached.email, nil
	}

	identity, err := s.gateway.Login(ctx, in.BackendURL, in.Username, in.Password)
	if err != nil {
		return "", "", err
	}

	s.mu.Lock()
	s.sessions[key] = adminSession{
		token:     identity.Token,
		email:     identity.Email,
		expiresAt: now.Add(adminSessionTTL),
	}
	s.mu.Unlock()

	return identity.Token, identity.Email, nil
}

func (s *AdminService) record(ctx context.Context, in PointsInput, email, aid string, outcome domain.Outcome, details string) error {
	err := s.ledger.Record(ctx, domain.HistoryRecord{
		Operation: in.Kind.Name(),
		Email:     email,
		TargetID:  aid,
		Result:    outcome,
		Env:       in.Env,
		Details:   details,
	})
	if err != nil {
		return fmt.Errorf("record history: %w", err)
	}

	return nil
}
