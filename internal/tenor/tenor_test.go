package tenor

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jan2026 = time.Date(2026, time.January, 10, 12, 0, 0, 0, time.UTC)

func TestYearFraction(t *testing.T) {
	tests := []struct {
		name string
		n    float64
		unit Unit
		conv Convention
		now  time.Time
		want float64
	}{
		{name: "years", n: 2, unit: Years, want: 2},
		{name: "months", n: 6, unit: Months, want: 0.5},
		{name: "days 360", n: 90, unit: Days, conv: Days360, want: 0.25},
		{name: "days 365", n: 73, unit: Days, conv: Days365, want: 0.2},
		{name: "actual within common year", n: 73, unit: Days, conv: Actual, now: jan2026, want: 73.0 / 365},
		{name: "actual within leap year", n: 61, unit: Days, conv: Actual, now: time.Date(2028, 3, 1, 0, 0, 0, 0, time.UTC), want: 61.0 / 366},
		// 2027 (365) and 2028 (366) average to 365.5
		{name: "actual across years", n: 400, unit: Days, conv: Actual, now: time.Date(2027, 6, 1, 0, 0, 0, 0, time.UTC), want: 400.0 / 365.5},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := YearFraction(tc.n, tc.unit, tc.conv, tc.now)
			require.NoError(t, err)
			assert.InDelta(t, tc.want, got, 1e-12)
		})
	}
}

func TestYearFractionErrors(t *testing.T) {
	_, err := YearFraction(0, Years, "", jan2026)
	assert.True(t, errors.Is(err, ErrNonPositive))

	_, err = YearFraction(5, Unit("weeks"), "", jan2026)
	assert.True(t, errors.Is(err, ErrUnknownUnit))

	_, err = YearFraction(5, Days, Convention("252"), jan2026)
	assert.True(t, errors.Is(err, ErrUnknownConvention))
}

func TestParse(t *testing.T) {
	for in, want := range map[string]Unit{"years": Years, "Year": Years, "months": Months, "d": Days, " DAYS ": Days} {
		got, err := ParseUnit(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseUnit("fortnights")
	assert.True(t, errors.Is(err, ErrUnknownUnit))

	for in, want := range map[string]Convention{"360": Days360, "365": Days365, "Actual": Actual} {
		got, err := ParseConvention(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err = ParseConvention("act/act")
	assert.True(t, errors.Is(err, ErrUnknownConvention))
}
