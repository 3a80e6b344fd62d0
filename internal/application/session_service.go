package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/bnema/community-accounts-cli/internal/domain"
	"github.com/bnema/community-accounts-cli/internal/ports"
)

// LoginResult is a structured login outcome. Authentication failures are
// reported as data, never as Go errors, so batch flows can record them and
// keep going.
type LoginResult struct {
	Success bool
	Token   string
	Message string
	// Reused is true when a cached, still valid session served the request
	// without a network call.
	Reused bool
}

type sessionKey struct {
	email   string
	baseURL string
}

// SessionService caches community API sessions in memory, keyed by account
// and environment. Tokens are never persisted; the cache dies with the
// process.
type SessionService struct {
	gateway  ports.CommunityGateway
	clock    ports.Clock
	clientID string

	mu       sync.Mutex
	sessions map[sessionKey]domain.Session
}

func NewSessionService(gateway ports.CommunityGateway, clock ports.Clock, clientID string) *SessionService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if clientID == "" {
		clientID = domain.DefaultClientID
	}

	return &SessionService{
		gateway:  gateway,
		clock:    clock,
		clientID: clientID,
		sessions: make(map[sessionKey]domain.Session),
	}
}

// LoginUser returns a usable token for the account, reusing a cached session
// when one is still valid for baseURL.
func (s *SessionService) LoginUser(ctx context.Context, baseURL, email, password string) LoginResult {
	if token, ok := s.GetToken(baseURL, email); ok {
		return LoginResult{Success: true, Token: token, Message: "session reused", Reused: true}
	}

	token, err := s.gateway.Login(ctx, baseURL, email, password, s.clientID)
	if err != nil {
		return LoginResult{Success: false, Message: fmt.Sprintf("login failed: %v", err)}
	}

	now := s.clock.Now()
	s.mu.Lock()
	s.sessions[sessionKey{email: email, baseURL: baseURL}] = domain.Session{
		Email:     email,
		Token:     token,
		BaseURL:   baseURL,
		ExpiresAt: now.Add(domain.SessionTTL),
	}
	s.mu.Unlock()

	return LoginResult{Success: true, Token: token, Message: "login successful"}
}

// GetToken returns the cached token for the account if it is still valid for
// baseURL. Expired entries are evicted on access.
func (s *SessionService) GetToken(baseURL, email string) (string, bool) {
	now := s.clock.Now()
	key := sessionKey{email: email, baseURL: baseURL}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[key]
	if !ok {
		return "", false
	}
	if !session.ValidFor(baseURL, now) {
		delete(s.sessions, key)
		return "", false
	}

	return session.Token, true
}

func (s *SessionService) IsLoggedIn(baseURL, email string) bool {
	_, ok := s.GetToken(baseURL, email)
	return ok
}

// ClearSession drops every cached session for the account across
// environments.
func (s *SessionService) ClearSession(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.sessions {
		if key.email == email {
			delete(s.sessions, key)
		}
	}
}

func (s *SessionService) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = make(map[sessionKey]domain.Session)
}
