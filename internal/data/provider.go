// Package data supplies market inputs (spot and realized volatility) for an
// underlying, either from a market data vendor or from fixed values.
package data

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/montanaflynn/stats"
)

// TradingDays annualises daily volatility.
const TradingDays = 252

// ErrNoData is returned when a source has nothing for the request.
var ErrNoData = errors.New("no market data")

// Provider supplies market data
type Provider interface {
	// Spot returns the latest available price of ticker.
	Spot(ctx context.Context, ticker string) (float64, error)
	// RealizedVol returns annualised close-to-close volatility over [from, to].
	RealizedVol(ctx context.Context, ticker string, from, to time.Time) (float64, error)
}

// Bar simplified OHLC
type Bar struct {
	Date  time.Time
	Open  float64
	High  float64
	Low   float64
	Close float64
	Vol   float64
}

// RealizedVolFromBars annualises the sample standard deviation of daily log
// returns. Bars must be in date order; at least three are required so that
// there are two returns to take a sample deviation over.
func RealizedVolFromBars(bars []Bar) (float64, error) {
	if len(bars) < 3 {
		return 0, fmt.Errorf("%w: need at least 3 bars, got %d", ErrNoData, len(bars))
	}

	returns := make(stats.Float64Data, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		prev, cur := bars[i-1].Close, bars[i].Close
		if prev <= 0 || cur <= 0 {
			return 0, fmt.Errorf("non-positive close on %s", bars[i].Date.Format("2006-01-02"))
		}
		returns = append(returns, math.Log(cur/prev))
	}

	sd, err := stats.StandardDeviationSample(returns)
	if err != nil {
		return 0, fmt.Errorf("realized vol: %w", err)
	}
	return sd * math.Sqrt(TradingDays), nil
}
