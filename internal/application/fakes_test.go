package application

import (
	"context"
	"time"

	"github.com/bnema/community-accounts-cli/internal/domain"
	"github.com/bnema/community-accounts-cli/internal/ports"
)

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	return f.now
}

type fakeSleeper struct {
	sleeps []time.Duration
	err    error
}

func (f *fakeSleeper) Sleep(ctx context.Context, d time.Duration) error {
	f.sleeps = append(f.sleeps, d)
	if f.err != nil {
		return f.err
	}

	return ctx.Err()
}

type loginCall struct {
	baseURL  string
	email    string
	clientID string
}

type doCall struct {
	baseURL string
	token   string
	req     domain.Request
}

type fakeGateway struct {
	logins    []loginCall
	loginErrs map[string]error

	selfAID    string
	selfAIDErr error

	doCalls   []doCall
	responses []domain.Response
	doErr     error

	sentKinds     []int
	verifiedCodes []string
	registered    []string
	registerErr   error
}

func (f *fakeGateway) Login(ctx context.Context, baseURL, email, password, clientID string) (string, error) {
	f.logins = append(f.logins, loginCall{baseURL: baseURL, email: email, clientID: clientID})
	if err := f.loginErrs[email]; err != nil {
		return "", err
	}

	return "token-" + email, nil
}

func (f *fakeGateway) SelfAID(ctx context.Context, baseURL, token string) (string, error) {
	if f.selfAIDErr != nil {
		return "", f.selfAIDErr
	}

	return f.selfAID, nil
}

func (f *fakeGateway) Do(ctx context.Context, baseURL, token string, req domain.Request) (domain.Response, error) {
	f.doCalls = append(f.doCalls, doCall{baseURL: baseURL, token: token, req: req})
	if f.doErr != nil {
		return domain.Response{}, f.doErr
	}
	if len(f.responses) == 0 {
		return domain.Response{HTTPStatus: 200, Status: 200, StatusKnown: true}, nil
	}

	resp := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}

	return resp, nil
}

func (f *fakeGateway) SendVerification(ctx context.Context, baseURL, email string, kind int) error {
	f.sentKinds = append(f.sentKinds, kind)
	return nil
}

func (f *fakeGateway) VerifyCode(ctx context.Context, baseURL, email, code string, kind int) error {
	f.verifiedCodes = append(f.verifiedCodes, code)
	return nil
}

func (f *fakeGateway) Register(ctx context.Context, baseURL, email, password, code string) error {
	if f.registerErr != nil {
		return f.registerErr
	}

	f.registered = append(f.registered, email)
	return nil
}

type adminLoginCall struct {
	baseURL  string
	username string
}

type adminDoCall struct {
	baseURL string
	token   string
	path    string
	body    map[string]any
}

type fakeAdminGateway struct {
	logins    []adminLoginCall
	identity  ports.AdminIdentity
	loginErr  error
	doCalls   []adminDoCall
	responses []domain.Response
	doErr     error
}

func (f *fakeAdminGateway) Login(ctx context.Context, baseURL, username, password string) (ports.AdminIdentity, error) {
	f.logins = append(f.logins, adminLoginCall{baseURL: baseURL, username: username})
	if f.loginErr != nil {
		return ports.AdminIdentity{}, f.loginErr
	}

	return f.identity, nil
}

func (f *fakeAdminGateway) Do(ctx context.Context, baseURL, token, path string, body map[string]any) (domain.Response, error) {
	f.doCalls = append(f.doCalls, adminDoCall{baseURL: baseURL, token: token, path: path, body: body})
	if f.doErr != nil {
		return domain.Response{}, f.doErr
	}
	if len(f.responses) == 0 {
		return domain.Response{HTTPStatus: 200, Status: 0, StatusKnown: true}, nil
	}

	resp := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}

	return resp, nil
}

type fakeLedger struct {
	records []domain.HistoryRecord
	err     error
}

func (f *fakeLedger) Record(ctx context.Context, record domain.HistoryRecord) error {
	if f.err != nil {
		return f.err
	}

	f.records = append(f.records, record)
	return nil
}

func (f *fakeLedger) LoadToday(ctx context.Context) ([]domain.HistoryRecord, error) {
	return f.records, nil
}

func (f *fakeLedger) LoadAll(ctx context.Context) ([]domain.HistoryDay, error) {
	if len(f.records) == 0 {
		return nil, nil
	}

	return []domain.HistoryDay{{Date: "today", Records: f.records}}, nil
}

func (f *fakeLedger) ClearToday(ctx context.Context) error {
	f.records = nil
	return nil
}

func (f *fakeLedger) ClearAll(ctx context.Context) error {
	f.records = nil
	return nil
}

type fakeRepo struct {
	accounts map[domain.Environment][]domain.Credential
	mergeErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{accounts: make(map[domain.Environment][]domain.Credential)}
}

func (f *fakeRepo) Load(ctx context.Context, env domain.Environment) ([]domain.Credential, error) {
	return f.accounts[env], nil
}

func (f *fakeRepo) Merge(ctx context.Context, env domain.Environment, accounts []domain.Credential) (int, error) {
	if f.mergeErr != nil {
		return 0, f.mergeErr
	}

	merged := domain.NormalizeCredentials(append(f.accounts[env], accounts...))
	added := len(merged) - len(f.accounts[env])
	f.accounts[env] = merged

	return added, nil
}

type fakeMail struct {
	inboxes       []ports.Inbox
	createErr     error
	messageQueues [][]ports.MailMessage
	messagesErr   error
	polls         int
}

func (f *fakeMail) CreateInbox(ctx context.Context) (ports.Inbox, error) {
	if f.createErr != nil {
		return ports.Inbox{}, f.createErr
	}
	if len(f.inboxes) == 0 {
		return ports.Inbox{Address: "gen@test.mail", Password: "passpass", Token: "mail-token"}, nil
	}

	inbox := f.inboxes[0]
	if len(f.inboxes) > 1 {
		f.inboxes = f.inboxes[1:]
	}

	return inbox, nil
}

func (f *fakeMail) Messages(ctx context.Context, token string) ([]ports.MailMessage, error) {
	f.polls++
	if f.messagesErr != nil {
		return nil, f.messagesErr
	}
	if len(f.messageQueues) == 0 {
		return nil, nil
	}

	messages := f.messageQueues[0]
	if len(f.messageQueues) > 1 {
		f.messageQueues = f.messageQueues[1:]
	}

	return messages, nil
}
