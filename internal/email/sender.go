package email

import "context"

// Attachment represents a file attachment for an email.
type Attachment struct {
	FileName string
	Content  []byte
	MIMEType string
}

// Sender delivers the transactional emails the quote workflow produces.
type Sender interface {
	SendQuoteProposalEmail(ctx context.Context, toEmail, customerName, projectTitle string, attachments ...Attachment) error
	SendWelcomeEmail(ctx context.Context, toEmail, displayName, loginURL string) error
}

// NoopSender satisfies Sender without delivering anything. Used when no SMTP
// configuration is present, e.g. in local development.
type NoopSender struct{}

func (NoopSender) SendQuoteProposalEmail(ctx context.Context, toEmail, customerName, projectTitle string, attachments ...Attachment) error {
	return nil
}

func (NoopSender) SendWelcomeEmail(ctx context.Context, toEmail, displayName, loginURL string) error {
	return nil
}
