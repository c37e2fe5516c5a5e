package paycycle

import "errors"

var (
	// ErrInvalidAnchorDay is returned when a declared anchor day is outside 1-31.
	ErrInvalidAnchorDay = errors.New("paycycle: anchor day must be between 1 and 31")

	// ErrInvalidFrequency is returned when a declared frequency is not weekly, biweekly or monthly.
	ErrInvalidFrequency = errors.New("paycycle: invalid frequency")

	// ErrMissingCycleDate is returned when a weekly or biweekly declaration omits the last cycle date.
	ErrMissingCycleDate = errors.New("paycycle: last cycle date required for sub-monthly frequencies")
)
