package ledger

import "time"

// UsageEvent is a single observed usage record. An open event has only a
// purchase date; a closed event additionally carries the repurchase date and
// the observed lifespan in whole days. Events are immutable once appended.
type UsageEvent struct {
	ProductID            string     `json:"product_id"`
	CustomerID           string     `json:"customer_id"`
	PurchaseDate         time.Time  `json:"purchase_date"`
	RepurchaseDate       *time.Time `json:"repurchase_date,omitempty"`
	ObservedLifespanDays *int       `json:"observed_lifespan_days,omitempty"`
}

// Closed reports whether the event carries an observed lifespan.
func (e UsageEvent) Closed() bool {
	return e.ObservedLifespanDays != nil
}

// ValidLifespan reports whether the event is closed with a positive observed
// lifespan. Non-positive lifespans come from malformed input dates and are
// excluded from aggregation rather than failing it.
func (e UsageEvent) ValidLifespan() bool {
	return e.ObservedLifespanDays != nil && *e.ObservedLifespanDays > 0
}

// CloseWith returns a closed copy of an open event, deriving the observed
// lifespan from the repurchase date in whole calendar days. Both dates are
// normalized to midnight first so clock times and DST shifts cannot shave
// a day off the interval.
func (e UsageEvent) CloseWith(repurchase time.Time) UsageEvent {
	days := daysBetween(e.PurchaseDate, repurchase)
	closed := e
	closed.RepurchaseDate = &repurchase
	closed.ObservedLifespanDays = &days
	return closed
}

func daysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}
