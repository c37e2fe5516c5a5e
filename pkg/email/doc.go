// Package email provides the outbound email boundary for replenishment
// reminders.
//
// It defines a small EmailSender interface with two implementations: a
// production sender backed by Postmark's transactional API and a DevSender
// that writes emails to disk for local development. ReminderDispatcher adapts
// an EmailSender to the remind.Dispatcher interface used by the scheduling
// coordinator.
//
// # Usage
//
//	cfg := email.Config{
//	    PostmarkServerToken:  os.Getenv("POSTMARK_SERVER_TOKEN"),
//	    PostmarkAccountToken: os.Getenv("POSTMARK_ACCOUNT_TOKEN"),
//	    SenderEmail:          "reminders@example.com",
//	    SupportEmail:         "support@example.com",
//	}
//
//	sender, err := email.NewPostmarkClient(cfg)
//	if err != nil {
//	    // handle error
//	}
//
//	dispatcher := email.NewReminderDispatcher(sender, lookupCustomerEmail)
//	coordinator := remind.NewCoordinator(estimator, store, dispatcher)
//
// In development, swap the sender without touching the rest of the wiring:
//
//	sender := email.NewDevSender("./tmp/emails")
//
// # Errors
//
// Sentinel errors (ErrFailedToSendEmail, ErrInvalidConfig, ErrInvalidParams,
// ErrUnknownRecipient, ErrFailedToRenderBody) wrap underlying causes with
// errors.Join for comparison and unwrapping.
package email
