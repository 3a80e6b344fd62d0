package domain

import (
	"fmt"
	"strings"
)

type Environment string

const (
	EnvDev Environment = "dev"
	EnvPda Environment = "pda"
)

// Credential is one account from a persisted account file. Immutable once
// created; never mutated, only read.
type Credential struct {
	Email    string
	Password string
}

func (c Credential) Validate() error {
	if strings.TrimSpace(c.Email) == "" {
		return fmt.Errorf("email is required")
	}
	if strings.TrimSpace(c.Password) == "" {
		return fmt.Errorf("password is required")
	}

	return nil
}

// NormalizeCredentials trims entries and de-duplicates by email, keeping the
// first occurrence. Account files are merged, never silently overwritten, so
// order is preserved.
func NormalizeCredentials(creds []Credential) []Credential {
	result := make([]Credential, 0, len(creds))
	seen := make(map[string]struct{}, len(creds))

	for _, cred := range creds {
		email := strings.TrimSpace(cred.Email)
		if email == "" {
			continue
		}
		if _, ok := seen[email]; ok {
			continue
		}

		seen[email] = struct{}{}
		result = append(result, Credential{Email: email, Password: strings.TrimSpace(cred.Password)})
	}

	return result
}
