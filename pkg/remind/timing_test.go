package remind_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/replenish/pkg/paycycle"
	"github.com/dmitrymomot/replenish/pkg/remind"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFireDate_Monthly(t *testing.T) {
	t.Parallel()

	t.Run("next cycle lands after depletion, steps back one month", func(t *testing.T) {
		t.Parallel()
		pattern := paycycle.Pattern{AnchorDay: 15, Frequency: paycycle.Monthly}

		// Today is past the anchor, so the next cycle is July 15; that is
		// after the July 10 depletion, so the reminder follows June 15.
		fire, err := remind.FireDate(pattern, date(2024, time.July, 10), date(2024, time.June, 20))
		require.NoError(t, err)
		assert.Equal(t, date(2024, time.June, 17), fire)
	})

	t.Run("next cycle lands before depletion", func(t *testing.T) {
		t.Parallel()
		pattern := paycycle.Pattern{AnchorDay: 15, Frequency: paycycle.Monthly}

		fire, err := remind.FireDate(pattern, date(2024, time.July, 10), date(2024, time.June, 10))
		require.NoError(t, err)
		assert.Equal(t, date(2024, time.June, 17), fire)
	})

	t.Run("anchor day clamps in short months", func(t *testing.T) {
		t.Parallel()
		pattern := paycycle.Pattern{AnchorDay: 31, Frequency: paycycle.Monthly}

		// February 2024 has 29 days; the anchor clamps to the 29th.
		fire, err := remind.FireDate(pattern, date(2024, time.March, 20), date(2024, time.February, 10))
		require.NoError(t, err)
		assert.Equal(t, date(2024, time.March, 2), fire)
	})

	t.Run("rolls into the next year", func(t *testing.T) {
		t.Parallel()
		pattern := paycycle.Pattern{AnchorDay: 5, Frequency: paycycle.Monthly}

		fire, err := remind.FireDate(pattern, date(2025, time.February, 1), date(2024, time.December, 20))
		require.NoError(t, err)
		assert.Equal(t, date(2025, time.January, 7), fire)
	})
}

func TestFireDate_SubMonthly(t *testing.T) {
	t.Parallel()

	t.Run("weekly steps forward from the last cycle event", func(t *testing.T) {
		t.Parallel()
		pattern := paycycle.Pattern{
			AnchorDay:     3,
			Frequency:     paycycle.Weekly,
			LastCycleDate: date(2024, time.June, 3),
		}

		// Occurrences: 6/10, 6/17, 6/24; first after today (6/20) is 6/24,
		// which is before the 6/28 depletion.
		fire, err := remind.FireDate(pattern, date(2024, time.June, 28), date(2024, time.June, 20))
		require.NoError(t, err)
		assert.Equal(t, date(2024, time.June, 26), fire)
	})

	t.Run("biweekly steps back when the next cycle misses depletion", func(t *testing.T) {
		t.Parallel()
		pattern := paycycle.Pattern{
			AnchorDay:     1,
			Frequency:     paycycle.Biweekly,
			LastCycleDate: date(2024, time.June, 1),
		}

		// Next cycle 6/15 is past the 6/10 depletion; the reminder follows
		// the 6/1 event instead.
		fire, err := remind.FireDate(pattern, date(2024, time.June, 10), date(2024, time.June, 5))
		require.NoError(t, err)
		assert.Equal(t, date(2024, time.June, 3), fire)
	})

	t.Run("requires the last cycle date", func(t *testing.T) {
		t.Parallel()
		pattern := paycycle.Pattern{AnchorDay: 5, Frequency: paycycle.Weekly}

		_, err := remind.FireDate(pattern, date(2024, time.June, 10), date(2024, time.June, 1))
		assert.ErrorIs(t, err, paycycle.ErrMissingCycleDate)
	})
}

func TestFireDate_Validation(t *testing.T) {
	t.Parallel()

	_, err := remind.FireDate(paycycle.Pattern{}, date(2024, time.June, 10), date(2024, time.June, 1))
	assert.ErrorIs(t, err, remind.ErrUndeterminedCycle)

	pattern := paycycle.Pattern{AnchorDay: 15, Frequency: paycycle.Monthly}
	_, err = remind.FireDate(pattern, time.Time{}, date(2024, time.June, 1))
	assert.ErrorIs(t, err, remind.ErrInvalidDepletionDate)

	pattern.AnchorDay = 0
	_, err = remind.FireDate(pattern, date(2024, time.June, 10), date(2024, time.June, 1))
	assert.ErrorIs(t, err, paycycle.ErrInvalidAnchorDay)
}

func TestFallbackFireDate(t *testing.T) {
	t.Parallel()

	fire := remind.FallbackFireDate(date(2024, time.June, 10))
	assert.Equal(t, date(2024, time.June, 8), fire)
}
