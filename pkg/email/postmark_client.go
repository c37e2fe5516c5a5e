package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrz1836/postmark"
)

// postmarkSender delivers reminders through Postmark's transactional API.
type postmarkSender struct {
	client  *postmark.Client
	from    string
	replyTo string
}

// NewPostmarkClient validates the config and returns a Postmark-backed
// sender. Replies go to the support address so customer answers to a
// reminder reach a human.
func NewPostmarkClient(cfg Config) (EmailSender, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &postmarkSender{
		client:  postmark.NewClient(cfg.PostmarkServerToken, cfg.PostmarkAccountToken),
		from:    cfg.SenderEmail,
		replyTo: cfg.SupportEmail,
	}, nil
}

// MustNewPostmarkClient is NewPostmarkClient that panics on invalid config,
// for use during host startup.
func MustNewPostmarkClient(cfg Config) EmailSender {
	sender, err := NewPostmarkClient(cfg)
	if err != nil {
		panic(err)
	}
	return sender
}

// SendEmail submits one transactional message. Open tracking and HTML-only
// link tracking stay on so reminder engagement can be measured.
func (s *postmarkSender) SendEmail(ctx context.Context, params SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	resp, err := s.client.SendEmail(ctx, postmark.Email{
		From:       s.from,
		ReplyTo:    s.replyTo,
		To:         params.SendTo,
		Subject:    params.Subject,
		Tag:        params.Tag,
		HTMLBody:   params.BodyHTML,
		TrackOpens: true,
		TrackLinks: "HtmlOnly",
	})
	if err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}
	if resp.ErrorCode > 0 {
		return errors.Join(ErrFailedToSendEmail,
			fmt.Errorf("postmark %d: %s", resp.ErrorCode, resp.Message))
	}
	return nil
}
