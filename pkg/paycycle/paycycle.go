package paycycle

import (
	"encoding/json"
	"math"
	"slices"
	"time"
)

// Frequency classifies how often a customer's income event recurs.
// The zero value is Undetermined so an empty Pattern is never mistaken
// for a detected one.
type Frequency int

const (
	Undetermined Frequency = iota
	Weekly
	Biweekly
	Monthly
)

// String returns the lowercase name of the frequency.
func (f Frequency) String() string {
	switch f {
	case Weekly:
		return "weekly"
	case Biweekly:
		return "biweekly"
	case Monthly:
		return "monthly"
	default:
		return "undetermined"
	}
}

// ParseFrequency maps a lowercase frequency name to its Frequency value.
func ParseFrequency(s string) (Frequency, error) {
	switch s {
	case "weekly":
		return Weekly, nil
	case "biweekly":
		return Biweekly, nil
	case "monthly":
		return Monthly, nil
	default:
		return Undetermined, ErrInvalidFrequency
	}
}

// MarshalJSON encodes the frequency by its lowercase name.
func (f Frequency) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

// UnmarshalJSON decodes a frequency name. "undetermined" is accepted so
// serialized schedules round-trip.
func (f *Frequency) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "undetermined" {
		*f = Undetermined
		return nil
	}
	parsed, err := ParseFrequency(s)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Valid reports whether the frequency is one of the three detectable classes.
func (f Frequency) Valid() bool {
	switch f {
	case Weekly, Biweekly, Monthly:
		return true
	default:
		return false
	}
}

// Period returns the cycle length as a calendar step. Monthly cycles step by
// calendar month; weekly and biweekly cycles step by a fixed number of days.
func (f Frequency) Period() (months, days int) {
	switch f {
	case Monthly:
		return 1, 0
	case Biweekly:
		return 0, 14
	case Weekly:
		return 0, 7
	default:
		return 0, 0
	}
}

// MinDates is the minimum number of transaction dates required for detection.
const MinDates = 3

// Pattern describes a detected or declared pay cycle.
//
// AnchorDay is the modal day of month across the observed dates and drives
// monthly cycle projection. LastCycleDate is the most recent observed cycle
// event and drives weekly/biweekly projection; day of month alone is
// ambiguous for sub-monthly cycles, so the absolute last event date is the
// authoritative anchor there and AnchorDay serves as a display hint.
type Pattern struct {
	AnchorDay     int       `json:"anchor_day"` // 1-31
	Frequency     Frequency `json:"frequency"`
	Confidence    int       `json:"confidence"` // 0-100
	LastCycleDate time.Time `json:"last_cycle_date"`
}

// Detect infers a recurring pay cycle from a customer's transaction dates.
// It returns ok=false when fewer than MinDates dates are supplied. The input
// slice is not modified; order does not affect the result.
func Detect(dates []time.Time) (Pattern, bool) {
	if len(dates) < MinDates {
		return Pattern{}, false
	}

	sorted := make([]time.Time, len(dates))
	copy(sorted, dates)
	slices.SortFunc(sorted, func(a, b time.Time) int { return a.Compare(b) })

	// Modal day of month. Ties break toward the earliest date so the result
	// is independent of the caller's ordering.
	counts := make(map[int]int, len(sorted))
	for _, d := range sorted {
		counts[d.Day()]++
	}
	anchorDay, best := 0, 0
	for _, d := range sorted {
		day := d.Day()
		if counts[day] > best {
			anchorDay, best = day, counts[day]
		}
	}

	// Intervals in whole calendar days. Comparing midnight-normalized dates
	// keeps clock times and DST shifts from producing fractional gaps.
	intervals := make([]float64, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		intervals = append(intervals, float64(daysBetween(sorted[i-1], sorted[i])))
	}
	avg := mean(intervals)

	var freq Frequency
	switch {
	case avg > 21:
		freq = Monthly
	case avg > 10:
		freq = Biweekly
	default:
		freq = Weekly
	}

	consistency := float64(best) / float64(len(sorted)) * 100

	var dev float64
	for _, iv := range intervals {
		dev += math.Abs(iv - avg)
	}
	dev /= float64(len(intervals))
	intervalConsistency := math.Max(0, 100-5*dev)

	return Pattern{
		AnchorDay:     anchorDay,
		Frequency:     freq,
		Confidence:    int(math.Round((consistency + intervalConsistency) / 2)),
		LastCycleDate: sorted[len(sorted)-1],
	}, true
}

// Declared builds a Pattern from a customer-supplied cycle. It takes
// precedence over detection and carries full confidence. lastCycleDate may be
// zero for monthly cycles, which project from the anchor day alone; weekly
// and biweekly cycles require it.
func Declared(anchorDay int, freq Frequency, lastCycleDate time.Time) (Pattern, error) {
	if anchorDay < 1 || anchorDay > 31 {
		return Pattern{}, ErrInvalidAnchorDay
	}
	if !freq.Valid() {
		return Pattern{}, ErrInvalidFrequency
	}
	if freq != Monthly && lastCycleDate.IsZero() {
		return Pattern{}, ErrMissingCycleDate
	}
	return Pattern{
		AnchorDay:     anchorDay,
		Frequency:     freq,
		Confidence:    100,
		LastCycleDate: lastCycleDate,
	}, nil
}

func daysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}

func mean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	var sum float64
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}
