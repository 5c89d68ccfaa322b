// Package tenor converts a time to maturity given in years, months or days
// into the year-fraction the pricing model expects.
package tenor

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrUnknownUnit is returned by ParseUnit for anything but years, months or days.
	ErrUnknownUnit = errors.New("unknown time unit")
	// ErrUnknownConvention is returned by ParseConvention for anything but 360, 365 or actual.
	ErrUnknownConvention = errors.New("unknown day count convention")
	// ErrNonPositive is returned by YearFraction for a maturity <= 0.
	ErrNonPositive = errors.New("time to maturity must be > 0")
)

// Unit is the unit a maturity is quoted in.
type Unit string

// Supported units.
const (
	Years  Unit = "years"
	Months Unit = "months"
	Days   Unit = "days"
)

// Convention is the day count used for Days.
type Convention string

// Supported day counts.
const (
	Days360 Convention = "360"
	Days365 Convention = "365"
	// Actual averages the calendar days of every year the period touches.
	Actual Convention = "actual"
)

// ParseUnit accepts years, months or days (singular or plural, any case).
func ParseUnit(s string) (Unit, error) {
	switch strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s") {
	case "year", "y":
		return Years, nil
	case "month", "m":
		return Months, nil
	case "day", "d":
		return Days, nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknownUnit, s)
}

// ParseConvention accepts 360, 365 or actual.
func ParseConvention(s string) (Convention, error) {
	switch c := Convention(strings.ToLower(strings.TrimSpace(s))); c {
	case Days360, Days365, Actual:
		return c, nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknownConvention, s)
}

// YearFraction converts n units into years. The convention applies only to
// Days; now anchors the Actual convention.
func YearFraction(n float64, unit Unit, conv Convention, now time.Time) (float64, error) {
	if !(n > 0) {
		return 0, fmt.Errorf("%w, got %v", ErrNonPositive, n)
	}

	switch unit {
	case Years:
		return n, nil
	case Months:
		return n / 12, nil
	case Days:
		divider, err := daysPerYear(n, conv, now)
		if err != nil {
			return 0, err
		}
		return n / divider, nil
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownUnit, unit)
}

func daysPerYear(n float64, conv Convention, now time.Time) (float64, error) {
	switch conv {
	case Days360:
		return 360, nil
	case Days365:
		return 365, nil
	case Actual:
		end := now.Add(time.Duration(n * float64(24*time.Hour)))
		first, last := now.Year(), end.Year()

		total := 0
		for y := first; y <= last; y++ {
			total += daysIn(y)
		}
		return float64(total) / float64(last-first+1), nil
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownConvention, conv)
}

func daysIn(year int) int {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return int(start.AddDate(1, 0, 0).Sub(start).Hours() / 24)
}
