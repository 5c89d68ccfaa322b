package data

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// staticDataProvider implements Provider with fixed values.
// It is used when no vendor API key is configured.
type staticDataProvider struct {
	spots map[string]float64
	vol   float64
}

// NewStaticProvider returns a provider that quotes spots per ticker and the
// same volatility for every ticker.
func NewStaticProvider(spots map[string]float64, vol float64) Provider {
	normalized := make(map[string]float64, len(spots))
	for k, v := range spots {
		normalized[strings.ToUpper(k)] = v
	}
	return &staticDataProvider{spots: normalized, vol: vol}
}

// Spot returns the configured quote for ticker, ignoring case.
func (staticDataProv *staticDataProvider) Spot(ctx context.Context, ticker string) (float64, error) {
	if spot, ok := staticDataProv.spots[strings.ToUpper(ticker)]; ok {
		return spot, nil
	}
	return 0, fmt.Errorf("%w for %s", ErrNoData, ticker)
}

// RealizedVol returns the configured volatility for any ticker and window.
func (staticDataProv *staticDataProvider) RealizedVol(ctx context.Context, ticker string, from, to time.Time) (float64, error) {
	if staticDataProv.vol <= 0 {
		return 0, fmt.Errorf("%w: no volatility configured", ErrNoData)
	}
	return staticDataProv.vol, nil
}
