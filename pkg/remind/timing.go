package remind

import (
	"time"

	"github.com/dmitrymomot/replenish/pkg/paycycle"
)

// fireOffsetDays is how long after an income event the reminder fires,
// giving the payment time to settle before the customer is prompted.
const fireOffsetDays = 2

// FireDate computes the calendar date a reminder should be dispatched.
//
// The next cycle event is projected from the pattern as of now: monthly
// cycles anchor on the pattern's day of month (clamped to the last day of
// shorter months), weekly and biweekly cycles step forward from the last
// known cycle event in 7- or 14-day periods. If that next event falls before
// the depletion date, the reminder fires two days after it; otherwise the
// cycle is stepped back one period so the reminder follows the last income
// event before the product runs out.
func FireDate(pattern paycycle.Pattern, depletionDate, now time.Time) (time.Time, error) {
	if !pattern.Frequency.Valid() {
		return time.Time{}, ErrUndeterminedCycle
	}
	if depletionDate.IsZero() {
		return time.Time{}, ErrInvalidDepletionDate
	}

	now = truncateDay(now)
	depletionDate = truncateDay(depletionDate)

	var next time.Time
	switch pattern.Frequency {
	case paycycle.Monthly:
		if pattern.AnchorDay < 1 || pattern.AnchorDay > 31 {
			return time.Time{}, paycycle.ErrInvalidAnchorDay
		}
		next = monthlyOccurrence(now.Year(), now.Month(), pattern.AnchorDay, now.Location())
		if now.Day() >= pattern.AnchorDay {
			next = monthlyOccurrence(now.Year(), now.Month()+1, pattern.AnchorDay, now.Location())
		}
	case paycycle.Weekly, paycycle.Biweekly:
		if pattern.LastCycleDate.IsZero() {
			return time.Time{}, paycycle.ErrMissingCycleDate
		}
		_, days := pattern.Frequency.Period()
		next = truncateDay(pattern.LastCycleDate)
		for !next.After(now) {
			next = next.AddDate(0, 0, days)
		}
	default:
		return time.Time{}, ErrUndeterminedCycle
	}

	cycle := next
	if !next.Before(depletionDate) {
		cycle = stepBack(next, pattern)
	}
	return cycle.AddDate(0, 0, fireOffsetDays), nil
}

// FallbackFireDate places a reminder two days before depletion when no pay
// cycle is known, so the customer is still prompted before running out.
func FallbackFireDate(depletionDate time.Time) time.Time {
	return truncateDay(depletionDate).AddDate(0, 0, -fireOffsetDays)
}

// stepBack returns the cycle event one period before the given occurrence.
func stepBack(occurrence time.Time, pattern paycycle.Pattern) time.Time {
	months, days := pattern.Frequency.Period()
	if months > 0 {
		return monthlyOccurrence(occurrence.Year(), occurrence.Month()-time.Month(months), pattern.AnchorDay, occurrence.Location())
	}
	return occurrence.AddDate(0, 0, -days)
}

// monthlyOccurrence builds the anchor-day occurrence in the given month,
// clamping day 29-31 to the month's last day. time.Month arithmetic in the
// caller may pass values outside 1-12; time.Date normalizes them.
func monthlyOccurrence(year int, month time.Month, day int, loc *time.Location) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	if last := daysIn(first.Year(), first.Month(), loc); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, loc)
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
