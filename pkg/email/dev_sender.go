package email

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DevSender writes each reminder to disk instead of delivering it, so local
// runs can be inspected in a browser. Every send produces a pair of files:
// the rendered HTML body and a JSON envelope with the delivery metadata.
type DevSender struct {
	dir string
}

// NewDevSender returns a sender that drops emails into dir, creating it on
// first send.
func NewDevSender(dir string) EmailSender {
	return &DevSender{dir: dir}
}

type devEnvelope struct {
	SentAt  string `json:"sent_at"`
	SendTo  string `json:"send_to"`
	Subject string `json:"subject"`
	Tag     string `json:"tag,omitempty"`
}

func (d *DevSender) SendEmail(ctx context.Context, params SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrFailedToSendEmail, d.dir, err)
	}

	now := time.Now()
	label := params.Tag
	if label == "" {
		label = params.Subject
	}
	base := now.Format("20060102_150405") + "_" + filenameSafe(label)

	if err := os.WriteFile(filepath.Join(d.dir, base+".html"), []byte(params.BodyHTML), 0o644); err != nil {
		return fmt.Errorf("%w: write body: %v", ErrFailedToSendEmail, err)
	}

	envelope, err := json.MarshalIndent(devEnvelope{
		SentAt:  now.Format(time.RFC3339),
		SendTo:  params.SendTo,
		Subject: params.Subject,
		Tag:     params.Tag,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode envelope: %v", ErrFailedToSendEmail, err)
	}
	if err := os.WriteFile(filepath.Join(d.dir, base+".json"), envelope, 0o644); err != nil {
		return fmt.Errorf("%w: write envelope: %v", ErrFailedToSendEmail, err)
	}
	return nil
}

// filenameSafe lowercases the label and keeps only [a-z0-9-_.], mapping
// spaces to underscores and dropping the rest.
func filenameSafe(label string) string {
	const maxLen = 100

	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		case r == ' ':
			return '_'
		default:
			return -1
		}
	}, label)

	if mapped == "" {
		return "email"
	}
	if len(mapped) > maxLen {
		mapped = mapped[:maxLen]
	}
	return mapped
}
