package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"time"

	"github.com/bnema/community-accounts-cli/internal/domain"
	"github.com/bnema/community-accounts-cli/internal/ports"
)

const (
	verificationKindRegistration = 3
	verificationKindIdentity     = 4

	// activationClientID is the client identifier the platform expects on
	// the first login of a freshly registered account.
	activationClientID = "R28M61PLYNX"
)

type GeneratorOptions struct {
	PollAttempts int
	PollInterval time.Duration
	CodeLength   int
	AccountPace  Pace
}

// GenerateReport summarizes one generation batch. Created accounts are
// merged into the environment's account file before the report is returned.
type GenerateReport struct {
	Created []domain.Credential
	Failed  int
	// Added is how many created accounts were new to the account file.
	Added int
}

// Generator provisions fresh platform accounts end to end: disposable inbox,
// registration code, account registry, activation login and identity code.
type Generator struct {
	gateway     ports.CommunityGateway
	mail        ports.MailProvider
	repo        ports.AccountRepository
	sleeper     ports.Sleeper
	opts        GeneratorOptions
	logger      *slog.Logger
	codePattern *regexp.Regexp
}

func NewGenerator(gateway ports.CommunityGateway, mail ports.MailProvider, repo ports.AccountRepository, sleeper ports.Sleeper, opts GeneratorOptions, logger *slog.Logger) *Generator {
	if sleeper == nil {
		sleeper = ports.SystemSleeper{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.PollAttempts <= 0 {
		opts.PollAttempts = 10
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 5 * time.Second
	}
	if opts.CodeLength <= 0 {
		opts.CodeLength = 4
	}

	return &Generator{
		gateway:     gateway,
		mail:        mail,
		repo:        repo,
		sleeper:     sleeper,
		opts:        opts,
		logger:      logger,
		codePattern: regexp.MustCompile(fmt.Sprintf(`\d{%d}`, opts.CodeLength)),
	}
}

// Generate creates count accounts sequentially. A failed account is skipped,
// not fatal; cancellation stops the batch.
func (g *Generator) Generate(ctx context.Context, env domain.Environment, baseURL string, count int) (GenerateReport, error) {
	report := GenerateReport{}

	for i := 0; i < count; i++ {
		if i > 0 {
			if err := g.sleeper.Sleep(ctx, g.opts.AccountPace.Duration()); err != nil {
				return g.merge(ctx, env, report)
			}
		}

		g.logger.Info("generating account", "index", i+1, "count", count)
		account, err := g.generateOne(ctx, baseURL)
		if err != nil {
			if ctx.Err() != nil {
				return g.merge(ctx, env, report)
			}
			report.Failed++
			g.logger.Warn("account generation failed", "index", i+1, "error", err)
			continue
		}

		report.Created = append(report.Created, account)
		g.logger.Info("account created", "email", account.Email)
	}

	return g.merge(ctx, env, report)
}

func (g *Generator) merge(ctx context.Context, env domain.Environment, report GenerateReport) (GenerateReport, error) {
	if len(report.Created) == 0 {
		return report, ctx.Err()
	}

	added, err := g.repo.Merge(context.WithoutCancel(ctx), env, report.Created)
	if err != nil {
		return report, fmt.Errorf("merge generated accounts: %w", err)
	}
	report.Added = added

	return report, ctx.Err()
}

func (g *Generator) generateOne(ctx context.Context, baseURL string) (domain.Credential, error) {
	inbox, err := g.mail.CreateInbox(ctx)
	if err != nil {
		return domain.Credential{}, fmt.Errorf("create inbox: %w", err)
	}

	if err := g.gateway.SendVerification(ctx, baseURL, inbox.Address, verificationKindRegistration); err != nil {
		return domain.Credential{}, fmt.Errorf("send registration code: %w", err)
	}

	code, err := g.pollCode(ctx, inbox.Token)
	if err != nil {
		return domain.Credential{}, fmt.Errorf("registration code: %w", err)
	}

	if err := g.gateway.VerifyCode(ctx, baseURL, inbox.Address, code, verificationKindRegistration); err != nil {
		return domain.Credential{}, fmt.Errorf("verify registration code: %w", err)
	}

	if err := g.gateway.Register(ctx, baseURL, inbox.Address, inbox.Password, code); err != nil {
		return domain.Credential{}, fmt.Errorf("register account: %w", err)
	}

	// First login activates the account; the token is not needed.
	if _, err := g.gateway.Login(ctx, baseURL, inbox.Address, inbox.Password, activationClientID); err != nil {
		return domain.Credential{}, fmt.Errorf("activation login: %w", err)
	}

	if err := g.gateway.SendVerification(ctx, baseURL, inbox.Address, verificationKindIdentity); err != nil {
		return domain.Credential{}, fmt.Errorf("send identity code: %w", err)
	}

	identityCode, err := g.pollCode(ctx, inbox.Token)
	if err != nil {
		return domain.Credential{}, fmt.Errorf("identity code: %w", err)
	}

	if err := g.gateway.VerifyCode(ctx, baseURL, inbox.Address, identityCode, verificationKindIdentity); err != nil {
		return domain.Credential{}, fmt.Errorf("verify identity code: %w", err)
	}

	return domain.Credential{Email: inbox.Address, Password: inbox.Password}, nil
}

// pollCode waits for the next verification mail and extracts the first code
// from the newest message.
func (g *Generator) pollCode(ctx context.Context, token string) (string, error) {
	for attempt := 0; attempt < g.opts.PollAttempts; attempt++ {
		if err := g.sleeper.Sleep(ctx, g.opts.PollInterval); err != nil {
			return "", err
		}

		messages, err := g.mail.Messages(ctx, token)
		if err != nil {
			g.logger.Debug("inbox poll failed", "attempt", attempt+1, "error", err)
			continue
		}

		for _, message := range messages {
			if code := g.codePattern.FindString(message.Intro); code != "" {
				return code, nil
			}
		}
	}

	return "", fmt.Errorf("no verification code received after %d polls", g.opts.PollAttempts)
}
