package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"

	"github.com/dmitrymomot/replenish/pkg/remind"
)

// RecipientResolver maps a customer identifier to a deliverable email address.
// Implementations typically query the customer profile store.
type RecipientResolver func(ctx context.Context, customerID string) (string, error)

// ReminderDispatcher delivers replenishment reminders as transactional emails.
// It implements remind.Dispatcher so it can be plugged straight into the
// scheduling coordinator.
type ReminderDispatcher struct {
	sender  EmailSender
	resolve RecipientResolver
	tmpl    *template.Template
}

// reminderTemplate is a plain default body. Callers who want branded emails
// should pass their own template via NewReminderDispatcherTemplate.
var reminderTemplate = template.Must(template.New("reminder").Parse(`<html><body>
<p>Hi{{if .CustomerName}} {{.CustomerName}}{{end}},</p>
<p>It looks like your <strong>{{.ProductName}}</strong> is about to run out.</p>
<p>Reorder now so you don't go without{{if .SubscriptionInterval}}, or subscribe every {{.SubscriptionInterval}} and save{{end}}.</p>
</body></html>`))

// NewReminderDispatcher builds a dispatcher with the default email body.
func NewReminderDispatcher(sender EmailSender, resolve RecipientResolver) *ReminderDispatcher {
	return NewReminderDispatcherTemplate(sender, resolve, reminderTemplate)
}

// NewReminderDispatcherTemplate builds a dispatcher with a custom body template.
// The template is executed with the reminder's TemplateContext plus the
// customer and product identifiers.
func NewReminderDispatcherTemplate(sender EmailSender, resolve RecipientResolver, tmpl *template.Template) *ReminderDispatcher {
	if sender == nil {
		panic("email: sender is required")
	}
	if resolve == nil {
		panic("email: recipient resolver is required")
	}
	if tmpl == nil {
		tmpl = reminderTemplate
	}
	return &ReminderDispatcher{sender: sender, resolve: resolve, tmpl: tmpl}
}

// Dispatch resolves the recipient, renders the body and sends the reminder.
// Errors are returned unsent so the coordinator keeps the schedule pending and
// retries on the next sweep.
func (d *ReminderDispatcher) Dispatch(ctx context.Context, reminder remind.Reminder) error {
	sendTo, err := d.resolve(ctx, reminder.CustomerID)
	if err != nil {
		return errors.Join(ErrUnknownRecipient, err)
	}

	data := map[string]string{
		"CustomerID": reminder.CustomerID,
		"ProductID":  reminder.ProductID,
	}
	for k, v := range reminder.TemplateContext {
		data[k] = v
	}
	if data["ProductName"] == "" {
		data["ProductName"] = reminder.ProductID
	}

	var body bytes.Buffer
	if err := d.tmpl.Execute(&body, data); err != nil {
		return errors.Join(ErrFailedToRenderBody, err)
	}

	subject := data["Subject"]
	if subject == "" {
		subject = fmt.Sprintf("Time to restock %s", data["ProductName"])
	}

	return d.sender.SendEmail(ctx, SendEmailParams{
		SendTo:   sendTo,
		Subject:  subject,
		BodyHTML: body.String(),
		Tag:      "replenishment-reminder",
	})
}
