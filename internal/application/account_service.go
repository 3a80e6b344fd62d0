package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/bnema/community-accounts-cli/internal/domain"
	"github.com/bnema/community-accounts-cli/internal/ports"
)

// ValidationOutcome is one account's login probe result.
type ValidationOutcome struct {
	Email   string
	Valid   bool
	Message string
}

// AccountService covers stored-account housekeeping: validation probes,
// identity resolution and listing.
type AccountService struct {
	repo         ports.AccountRepository
	gateway      ports.CommunityGateway
	sessions     *SessionService
	sleeper      ports.Sleeper
	validatePace Pace
}

func NewAccountService(repo ports.AccountRepository, gateway ports.CommunityGateway, sessions *SessionService, sleeper ports.Sleeper, validatePace Pace) *AccountService {
	if sleeper == nil {
		sleeper = ports.SystemSleeper{}
	}

	return &AccountService{
		repo:         repo,
		gateway:      gateway,
		sessions:     sessions,
		sleeper:      sleeper,
		validatePace: validatePace,
	}
}

// ValidateAccounts probes each credential with a real login, paced so the
// probes do not hammer the authentication endpoint. Validation is a
// read-only check; nothing is written to the history ledger.
func (s *AccountService) ValidateAccounts(ctx context.Context, baseURL string, accounts []domain.Credential) ([]ValidationOutcome, error) {
	outcomes := make([]ValidationOutcome, 0, len(accounts))

	for i, account := range accounts {
		if i > 0 {
			if err := s.sleeper.Sleep(ctx, s.validatePace.Duration()); err != nil {
				return outcomes, err
			}
		}

		if err := account.Validate(); err != nil {
			outcomes = append(outcomes, ValidationOutcome{Email: account.Email, Valid: false, Message: err.Error()})
			continue
		}

		login := s.sessions.LoginUser(ctx, baseURL, account.Email, account.Password)
		outcomes = append(outcomes, ValidationOutcome{
			Email:   account.Email,
			Valid:   login.Success,
			Message: login.Message,
		})
	}

	return outcomes, nil
}

// ResolveAID logs the account in and asks the platform for its own account
// identity.
func (s *AccountService) ResolveAID(ctx context.Context, baseURL, email, password string) (string, error) {
	login := s.sessions.LoginUser(ctx, baseURL, email, password)
	if !login.Success {
		return "", errors.New(login.Message)
	}

	aid, err := s.gateway.SelfAID(ctx, baseURL, login.Token)
	if err != nil {
		return "", fmt.Errorf("resolve aid: %w", err)
	}

	return aid, nil
}

// List returns the stored accounts for env.
func (s *AccountService) List(ctx context.Context, env domain.Environment) ([]domain.Credential, error) {
	accounts, err := s.repo.Load(ctx, env)
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}

	return accounts, nil
}
