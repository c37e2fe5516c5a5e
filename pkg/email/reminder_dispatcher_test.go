package email_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/replenish/pkg/email"
	"github.com/dmitrymomot/replenish/pkg/remind"
)

// MockEmailSender is a mock implementation of EmailSender for testing
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendEmail(ctx context.Context, params email.SendEmailParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

func staticResolver(addr string) email.RecipientResolver {
	return func(ctx context.Context, customerID string) (string, error) {
		return addr, nil
	}
}

func TestReminderDispatcher_Dispatch(t *testing.T) {
	t.Parallel()

	t.Run("renders and sends with template context", func(t *testing.T) {
		t.Parallel()

		sender := new(MockEmailSender)
		sender.On("SendEmail", mock.Anything, mock.MatchedBy(func(p email.SendEmailParams) bool {
			return p.SendTo == "user@example.com" &&
				p.Subject == "Time to restock Dog Food 5kg" &&
				p.Tag == "replenishment-reminder"
		})).Return(nil)

		d := email.NewReminderDispatcher(sender, staticResolver("user@example.com"))
		err := d.Dispatch(context.Background(), remind.Reminder{
			CustomerID: "c1",
			ProductID:  "p1",
			FireDate:   time.Date(2024, 6, 17, 0, 0, 0, 0, time.UTC),
			TemplateContext: map[string]string{
				"ProductName":          "Dog Food 5kg",
				"SubscriptionInterval": "30 days",
			},
		})
		require.NoError(t, err)
		sender.AssertExpectations(t)
	})

	t.Run("falls back to product id when name missing", func(t *testing.T) {
		t.Parallel()

		sender := new(MockEmailSender)
		sender.On("SendEmail", mock.Anything, mock.MatchedBy(func(p email.SendEmailParams) bool {
			return p.Subject == "Time to restock p1"
		})).Return(nil)

		d := email.NewReminderDispatcher(sender, staticResolver("user@example.com"))
		err := d.Dispatch(context.Background(), remind.Reminder{CustomerID: "c1", ProductID: "p1"})
		require.NoError(t, err)
		sender.AssertExpectations(t)
	})

	t.Run("resolver failure keeps email unsent", func(t *testing.T) {
		t.Parallel()

		sender := new(MockEmailSender)
		resolve := func(ctx context.Context, customerID string) (string, error) {
			return "", errors.New("no such customer")
		}

		d := email.NewReminderDispatcher(sender, resolve)
		err := d.Dispatch(context.Background(), remind.Reminder{CustomerID: "ghost", ProductID: "p1"})
		require.ErrorIs(t, err, email.ErrUnknownRecipient)
		sender.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything)
	})

	t.Run("sender failure propagates", func(t *testing.T) {
		t.Parallel()

		sender := new(MockEmailSender)
		sender.On("SendEmail", mock.Anything, mock.Anything).Return(email.ErrFailedToSendEmail)

		d := email.NewReminderDispatcher(sender, staticResolver("user@example.com"))
		err := d.Dispatch(context.Background(), remind.Reminder{CustomerID: "c1", ProductID: "p1"})
		assert.ErrorIs(t, err, email.ErrFailedToSendEmail)
	})
}
