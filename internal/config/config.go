package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bnema/community-accounts-cli/internal/domain"
	"github.com/spf13/viper"
)

const (
	configName = "config"
	configType = "toml"
	configDir  = ".config/ca"
	dataSubdir = ".local/share/ca"
)

type Environment struct {
	BaseURL string `mapstructure:"base_url" toml:"base_url"`
}

type Client struct {
	ID                      string  `mapstructure:"id" toml:"id"`
	TimeoutSeconds          float64 `mapstructure:"timeout_seconds" toml:"timeout_seconds"`
	AncillaryTimeoutSeconds float64 `mapstructure:"ancillary_timeout_seconds" toml:"ancillary_timeout_seconds"`
	RatePerSecond           float64 `mapstructure:"rate_per_second" toml:"rate_per_second"`
}

type Pacing struct {
	AttemptMinSeconds  float64 `mapstructure:"attempt_min_seconds" toml:"attempt_min_seconds"`
	AttemptMaxSeconds  float64 `mapstructure:"attempt_max_seconds" toml:"attempt_max_seconds"`
	AccountMinSeconds  float64 `mapstructure:"account_min_seconds" toml:"account_min_seconds"`
	AccountMaxSeconds  float64 `mapstructure:"account_max_seconds" toml:"account_max_seconds"`
	ValidateMinSeconds float64 `mapstructure:"validate_min_seconds" toml:"validate_min_seconds"`
	ValidateMaxSeconds float64 `mapstructure:"validate_max_seconds" toml:"validate_max_seconds"`
}

type AdminCredential struct {
	Username string `mapstructure:"username" toml:"username"`
	Password string `mapstructure:"password" toml:"password"`
}

type PointsOperation struct {
	Path          string `mapstructure:"path" toml:"path"`
	MaxPerRequest int    `mapstructure:"max_per_request" toml:"max_per_request"`
}

type Admin struct {
	LoginPath   string                     `mapstructure:"login_path" toml:"login_path"`
	Backends    map[string]string          `mapstructure:"backends" toml:"backends"`
	APIs        map[string]string          `mapstructure:"apis" toml:"apis"`
	Credentials map[string]AdminCredential `mapstructure:"credentials" toml:"credentials"`
	Points      map[string]PointsOperation `mapstructure:"points" toml:"points"`
}

type Mail struct {
	BaseURL             string  `mapstructure:"base_url" toml:"base_url"`
	PollAttempts        int     `mapstructure:"poll_attempts" toml:"poll_attempts"`
	PollIntervalSeconds float64 `mapstructure:"poll_interval_seconds" toml:"poll_interval_seconds"`
	CodeLength          int     `mapstructure:"code_length" toml:"code_length"`
}

type Data struct {
	Dir string `mapstructure:"dir" toml:"dir"`
}

type Config struct {
	DefaultEnv   string                 `mapstructure:"default_env" toml:"default_env"`
	Environments map[string]Environment `mapstructure:"environments" toml:"environments"`
	// Headers is the base header set attached to every community API request.
	Headers map[string]string `mapstructure:"headers" toml:"headers"`
	Client  Client            `mapstructure:"client" toml:"client"`
	Pacing  Pacing            `mapstructure:"pacing" toml:"pacing"`
	Admin   Admin             `mapstructure:"admin" toml:"admin"`
	Mail    Mail              `mapstructure:"mail" toml:"mail"`
	Data    Data              `mapstructure:"data" toml:"data"`
}

func Default() Config {
	return Config{
		DefaultEnv: string(domain.EnvDev),
		Environments: map[string]Environment{
			string(domain.EnvDev): {BaseURL: "https://dev-app2.govee.com"},
			string(domain.EnvPda): {BaseURL: "https://pda-app2.govee.com"},
		},
		Headers: map[string]string{
			"appVersion": "7.1.00",
			"clientType": "0",
			"country":    "US",
			"envId":      "1",
			"iotVersion": "1",
		},
		Client: Client{
			ID:                      domain.DefaultClientID,
			TimeoutSeconds:          15,
			AncillaryTimeoutSeconds: 10,
			RatePerSecond:           2,
		},
		Pacing: Pacing{
			AttemptMinSeconds:  1.5,
			AttemptMaxSeconds:  3.5,
			AccountMinSeconds:  2,
			AccountMaxSeconds:  5,
			ValidateMinSeconds: 1,
			ValidateMaxSeconds: 3,
		},
		Admin: Admin{
			LoginPath: "/user/rest/v2/login",
			Backends: map[string]string{
				string(domain.EnvDev): "https://dev-backend.lanjingerp.com",
				string(domain.EnvPda): "https://dev-backend.lanjingerp.com",
			},
			APIs: map[string]string{
				string(domain.EnvDev): "https://dev-adminapi.govee.com",
				string(domain.EnvPda): "https://pda-adminapi.govee.com",
			},
			Credentials: map[string]AdminCredential{},
			Points: map[string]PointsOperation{
				"grant_points":  {Path: "/admin/v1/su-points/hand-on", MaxPerRequest: 5000},
				"deduct_points": {Path: "/admin/v1/points/deduction", MaxPerRequest: 500},
			},
		},
		Mail: Mail{
			BaseURL:             "https://api.mail.tm",
			PollAttempts:        10,
			PollIntervalSeconds: 5,
			CodeLength:          4,
		},
	}
}

// Load reads config.toml from ~/.config/ca when present and overlays it on
// the built-in defaults. A missing file is not an error.
func Load(cfg *viper.Viper) (Config, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("resolve home directory: %w", err)
	}

	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(filepath.Join(homeDir, configDir))

	if err := cfg.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	result := Default()
	if err := cfg.Unmarshal(&result); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	result.applyDefaults(homeDir)

	return result, nil
}

func (c *Config) applyDefaults(homeDir string) {
	if c.Data.Dir == "" {
		c.Data.Dir = filepath.Join(homeDir, dataSubdir)
	}
	if c.DefaultEnv == "" {
		c.DefaultEnv = string(domain.EnvDev)
	}
}

// ConfigFilePath returns where config init writes the default file.
func ConfigFilePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	return filepath.Join(homeDir, configDir, configName+"."+configType), nil
}

func (c Config) BaseURL(env domain.Environment) (string, error) {
	entry, ok := c.Environments[string(env)]
	if !ok || entry.BaseURL == "" {
		return "", fmt.Errorf("unknown environment %q", env)
	}

	return entry.BaseURL, nil
}

func (c Config) AdminBackendURL(env domain.Environment) (string, error) {
	url, ok := c.Admin.Backends[string(env)]
	if !ok || url == "" {
		return "", fmt.Errorf("no admin backend configured for environment %q", env)
	}

	return url, nil
}

func (c Config) AdminAPIURL(env domain.Environment) (string, error) {
	url, ok := c.Admin.APIs[string(env)]
	if !ok || url == "" {
		return "", fmt.Errorf("no admin api configured for environment %q", env)
	}

	return url, nil
}

func (c Config) AdminCredential(env domain.Environment) (AdminCredential, error) {
	cred, ok := c.Admin.Credentials[string(env)]
	if !ok || cred.Username == "" {
		return AdminCredential{}, fmt.Errorf("no admin credentials configured for environment %q", env)
	}

	return cred, nil
}

func (c Config) HistoryDir() string {
	return filepath.Join(c.Data.Dir, "history")
}

func (c Config) AccountsDir() string {
	return filepath.Join(c.Data.Dir, "accounts")
}

func (c Config) RequestTimeout() time.Duration {
	return secondsToDuration(c.Client.TimeoutSeconds, 15*time.Second)
}

func (c Config) AncillaryTimeout() time.Duration {
	return secondsToDuration(c.Client.AncillaryTimeoutSeconds, 10*time.Second)
}

func (c Config) MailPollInterval() time.Duration {
	return secondsToDuration(c.Mail.PollIntervalSeconds, 5*time.Second)
}

func secondsToDuration(seconds float64, fallback time.Duration) time.Duration {
	if seconds <= 0 {
		return fallback
	}

	return time.Duration(seconds * float64(time.Second))
}
