package ports

import "context"

type Inbox struct {
	Address  string
	Password string
	Token    string
}

type MailMessage struct {
	Intro string
}

// MailProvider is the disposable-email service used during account
// generation.
type MailProvider interface {
	// CreateInbox provisions a fresh disposable mailbox and logs into it.
	CreateInbox(ctx context.Context) (Inbox, error)

	// Messages lists the inbox, newest first.
	Messages(ctx context.Context, token string) ([]MailMessage, error)
}
