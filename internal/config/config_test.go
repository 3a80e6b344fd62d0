package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/community-accounts-cli/internal/domain"
)

func TestDefaultCoversBothEnvironments(t *testing.T) {
	cfg := Default()

	devURL, err := cfg.BaseURL(domain.EnvDev)
	require.NoError(t, err)
	assert.Contains(t, devURL, "dev-")

	pdaURL, err := cfg.BaseURL(domain.EnvPda)
	require.NoError(t, err)
	assert.Contains(t, pdaURL, "pda-")

	_, err = cfg.BaseURL("staging")
	require.Error(t, err)
}

func TestDefaultPointsCaps(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 5000, cfg.Admin.Points["grant_points"].MaxPerRequest)
	assert.Equal(t, 500, cfg.Admin.Points["deduct_points"].MaxPerRequest)
}

func TestTimeoutFallbacks(t *testing.T) {
	cfg := Config{}

	assert.Equal(t, 15*time.Second, cfg.RequestTimeout())
	assert.Equal(t, 10*time.Second, cfg.AncillaryTimeout())
	assert.Equal(t, 5*time.Second, cfg.MailPollInterval())

	cfg.Client.TimeoutSeconds = 30
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout())
}

func TestAdminCredentialMissing(t *testing.T) {
	cfg := Default()

	_, err := cfg.AdminCredential(domain.EnvDev)
	require.Error(t, err)

	cfg.Admin.Credentials["dev"] = AdminCredential{Username: "ops", Password: "secret"}
	cred, err := cfg.AdminCredential(domain.EnvDev)
	require.NoError(t, err)
	assert.Equal(t, "ops", cred.Username)
}

func TestWriteDefaultThenDecodeRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	require.NoError(t, WriteDefault(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded Config
	require.NoError(t, toml.Unmarshal(data, &decoded))
	assert.Equal(t, Default().Environments, decoded.Environments)
	assert.Equal(t, Default().Pacing, decoded.Pacing)
}

func TestWriteDefaultRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, WriteDefault(path))

	err := WriteDefault(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}
