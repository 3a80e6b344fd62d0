// Package jsonfile persists account lists and the operation history ledger
// as JSON files, the formats the surrounding tooling exchanges.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bnema/community-accounts-cli/internal/domain"
	"github.com/bnema/community-accounts-cli/internal/ports"
)

const (
	fileMode = 0o600
	dirMode  = 0o700
)

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

type accountSchema struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AccountsRepository stores one JSON array file of {email, password} objects
// per environment.
type AccountsRepository struct {
	dir string
}

var _ ports.AccountRepository = (*AccountsRepository)(nil)

func NewAccountsRepository(dir string) *AccountsRepository {
	return &AccountsRepository{dir: dir}
}

func (r *AccountsRepository) path(env domain.Environment) string {
	return filepath.Join(r.dir, string(env)+".json")
}

// Load returns the accounts stored for env. An absent file yields an empty
// slice; malformed entries are an error so a bad file is surfaced, not
// half-read.
func (r *AccountsRepository) Load(ctx context.Context, env domain.Environment) ([]domain.Credential, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := r.path(env)
	mu := lockForPath(path)
	mu.RLock()
	defer mu.RUnlock()

	return readAccounts(path)
}

// Merge appends accounts into env's file de-duplicated by email. Existing
// entries always win; the file is never silently overwritten.
func (r *AccountsRepository) Merge(ctx context.Context, env domain.Environment, accounts []domain.Credential) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	path := r.path(env)
	mu := lockForPath(path)
	mu.Lock()
	defer mu.Unlock()

	existing, err := readAccounts(path)
	if err != nil {
		return 0, err
	}

	merged := domain.NormalizeCredentials(append(existing, accounts...))
	added := len(merged) - len(existing)
	if added <= 0 {
		return 0, nil
	}

	encoded := make([]accountSchema, 0, len(merged))
	for _, cred := range merged {
		encoded = append(encoded, accountSchema{Email: cred.Email, Password: cred.Password})
	}

	data, err := json.MarshalIndent(encoded, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("encode accounts file: %w", err)
	}

	if err := writeFileAtomic(path, data); err != nil {
		return 0, err
	}

	return added, nil
}

// Export writes accounts to path in the account-file format. Used to dump
// the surviving subset after a validation run; the destination is replaced.
func (r *AccountsRepository) Export(ctx context.Context, path string, accounts []domain.Credential) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	encoded := make([]accountSchema, 0, len(accounts))
	for _, cred := range domain.NormalizeCredentials(accounts) {
		encoded = append(encoded, accountSchema{Email: cred.Email, Password: cred.Password})
	}

	data, err := json.MarshalIndent(encoded, "", "  ")
	if err != nil {
		return fmt.Errorf("encode accounts file: %w", err)
	}

	mu := lockForPath(path)
	mu.Lock()
	defer mu.Unlock()

	return writeFileAtomic(path, data)
}

func readAccounts(path string) ([]domain.Credential, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read accounts file: %w", err)
	}

	var entries []accountSchema
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode accounts file %s: %w", filepath.Base(path), err)
	}

	accounts := make([]domain.Credential, 0, len(entries))
	for _, entry := range entries {
		cred := domain.Credential{Email: entry.Email, Password: entry.Password}
		if err := cred.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrAccountsInvalid, filepath.Base(path))
		}
		accounts = append(accounts, cred)
	}

	return accounts, nil
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), dirMode); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := tempFile.Chmod(fileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace file: %w", err)
	}

	cleanup = false

	return nil
}
