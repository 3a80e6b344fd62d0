package ports

import (
	"context"

	"github.com/bnema/community-accounts-cli/internal/domain"
)

// CommunityGateway is the community API surface the core depends on. One
// gateway instance owns its own HTTP session state, so concurrent workers
// must each get their own instance.
type CommunityGateway interface {
	// Login exchanges credentials for a bearer token. Any failure is a hard
	// error; the credential cache converts it to a structured result.
	Login(ctx context.Context, baseURL, email, password, clientID string) (string, error)

	// SelfAID resolves the authenticated caller's own account identity.
	SelfAID(ctx context.Context, baseURL, token string) (string, error)

	// Do sends one declaratively built operation request.
	Do(ctx context.Context, baseURL, token string, req domain.Request) (domain.Response, error)

	// SendVerification asks the platform to mail a verification code of the
	// given kind (3 = registration, 4 = account identity).
	SendVerification(ctx context.Context, baseURL, email string, kind int) error

	// VerifyCode submits a mailed verification code.
	VerifyCode(ctx context.Context, baseURL, email, code string, kind int) error

	// Register creates the platform account once the code is verified.
	Register(ctx context.Context, baseURL, email, password, code string) error
}

type AdminIdentity struct {
	Token string
	Email string
}

// AdminGateway reaches the administrative backend, which lives on a separate
// domain per environment and has its own login contract.
type AdminGateway interface {
	Login(ctx context.Context, baseURL, username, password string) (AdminIdentity, error)
	Do(ctx context.Context, baseURL, token, path string, body map[string]any) (domain.Response, error)
}
