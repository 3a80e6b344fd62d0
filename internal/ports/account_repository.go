package ports

import (
	"context"

	"github.com/bnema/community-accounts-cli/internal/domain"
)

// AccountRepository reads and updates the per-environment account files.
type AccountRepository interface {
	// Load returns the accounts stored for env; an absent file yields an
	// empty slice, not an error.
	Load(ctx context.Context, env domain.Environment) ([]domain.Credential, error)

	// Merge appends accounts into env's file de-duplicated by email, never
	// overwriting existing entries. It returns how many were actually added.
	Merge(ctx context.Context, env domain.Environment, accounts []domain.Credential) (int, error)
}
