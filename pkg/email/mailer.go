package email

import (
	"context"
	"fmt"
	"regexp"
)

// Config wires the outbound email channel. The Postmark tokens may be left
// empty in development, where the host binary swaps in a DevSender; the
// sender and support addresses are always required because they establish
// the From and Reply-To identity of every reminder.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL,required"`
	SupportEmail         string `env:"SUPPORT_EMAIL,required"`
}

func (c Config) validate() error {
	if c.PostmarkServerToken == "" || c.PostmarkAccountToken == "" {
		return fmt.Errorf("%w: both Postmark tokens are required", ErrInvalidConfig)
	}
	for name, addr := range map[string]string{"SenderEmail": c.SenderEmail, "SupportEmail": c.SupportEmail} {
		if !emailRegex.MatchString(addr) {
			return fmt.Errorf("%w: %s must be a valid email address", ErrInvalidConfig, name)
		}
	}
	return nil
}

// EmailSender represents an interface for sending emails.
type EmailSender interface {
	SendEmail(ctx context.Context, params SendEmailParams) error
}

// SendEmailParams represents the parameters for sending an email.
type SendEmailParams struct {
	SendTo   string `json:"send_to"`       // Email address of the recipient
	Subject  string `json:"subject"`       // Subject of the email
	BodyHTML string `json:"body_html"`     // HTML body of the email
	Tag      string `json:"tag,omitempty"` // Optional
}

// emailRegex is intentionally loose; real validation happens at the provider.
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Validate checks that the parameters describe a deliverable email.
func (p SendEmailParams) Validate() error {
	if p.SendTo == "" {
		return fmt.Errorf("%w: SendTo is required", ErrInvalidParams)
	}
	if !emailRegex.MatchString(p.SendTo) {
		return fmt.Errorf("%w: SendTo must be a valid email address", ErrInvalidParams)
	}
	if p.Subject == "" {
		return fmt.Errorf("%w: Subject is required", ErrInvalidParams)
	}
	if p.BodyHTML == "" {
		return fmt.Errorf("%w: BodyHTML is required", ErrInvalidParams)
	}
	return nil
}
