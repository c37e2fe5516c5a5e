package email

import "errors"

var (
	ErrFailedToSendEmail  = errors.New("mailer.errors.failed_to_send_email")
	ErrInvalidConfig      = errors.New("mailer.errors.invalid_config")
	ErrInvalidParams      = errors.New("mailer.errors.invalid_params")
	ErrUnknownRecipient   = errors.New("mailer.errors.unknown_recipient")
	ErrFailedToRenderBody = errors.New("mailer.errors.failed_to_render_body")
)
