package remind

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/replenish/pkg/paycycle"
)

// Status is the scheduling state of a (customer, product) pair.
type Status string

const (
	// StatusIdle means no reminder is outstanding; the pair is absent from the store.
	StatusIdle Status = "idle"
	// StatusScheduled means a reminder is pending dispatch.
	StatusScheduled Status = "scheduled"
	// StatusDispatched means the dispatch collaborator confirmed delivery.
	StatusDispatched Status = "dispatched"
)

// Schedule is a planned reminder for one (customer, product) pair.
type Schedule struct {
	ID            uuid.UUID           `json:"id"`
	CustomerID    string              `json:"customer_id"`
	ProductID     string              `json:"product_id"`
	DepletionDate time.Time           `json:"depletion_date"`
	FireDate      time.Time           `json:"fire_date"`
	CycleUsed     paycycle.Frequency  `json:"cycle_used"`
	Status        Status              `json:"status"`
	CreatedAt     time.Time           `json:"created_at"`
}

// Reminder is the payload handed to the dispatch collaborator.
type Reminder struct {
	CustomerID      string            `json:"customer_id"`
	ProductID       string            `json:"product_id"`
	FireDate        time.Time         `json:"fire_date"`
	TemplateContext map[string]string `json:"template_context,omitempty"`
}
