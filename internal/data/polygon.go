package data

import (
	"context"
	"fmt"
	"net/http"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"

	"github.com/contactkeval/option-heatmap/internal/logger"
)

// polygonDataProvider implements Provider using the Polygon.io REST client.
type polygonDataProvider struct {
	client *polygon.Client
}

// NewPolygonDataProvider constructs a Polygon-backed provider.
//
// Parameters:
//   - apiKey: Polygon API key for authentication
//   - hc: optional HTTP client; nil uses the SDK default
func NewPolygonDataProvider(apiKey string, hc *http.Client) Provider {
	logger.Infof("initializing Polygon data provider")

	if hc == nil {
		return &polygonDataProvider{client: polygon.New(apiKey)}
	}
	return &polygonDataProvider{client: polygon.NewWithClient(apiKey, hc)}
}

// Spot returns the previous session's adjusted close.
func (polygonDataProv *polygonDataProvider) Spot(ctx context.Context, ticker string) (float64, error) {
	logger.Debugf("previous close request: %s", ticker)

	params := models.GetPreviousCloseAggParams{Ticker: ticker}.WithAdjusted(true)

	resp, err := polygonDataProv.client.GetPreviousCloseAgg(ctx, params)
	if err != nil {
		logger.Errorf("previous close request failed for %s: %v", ticker, err)
		return 0, fmt.Errorf("polygon previous close %s: %w", ticker, err)
	}

	if len(resp.Results) == 0 {
		return 0, fmt.Errorf("%w: no previous close for %s", ErrNoData, ticker)
	}

	spot := resp.Results[0].Close
	logger.Tracef("previous close %s=%.4f", ticker, spot)
	return spot, nil
}

// RealizedVol estimates annualised volatility from daily bars in [from, to].
func (polygonDataProv *polygonDataProvider) RealizedVol(ctx context.Context, ticker string, from, to time.Time) (float64, error) {
	bars, err := polygonDataProv.dailyBars(ctx, ticker, from, to)
	if err != nil {
		return 0, err
	}

	vol, err := RealizedVolFromBars(bars)
	if err != nil {
		return 0, fmt.Errorf("realized vol %s: %w", ticker, err)
	}

	logger.Debugf("realized vol %s over %d bars=%.4f", ticker, len(bars), vol)
	return vol, nil
}

func (polygonDataProv *polygonDataProvider) dailyBars(ctx context.Context, ticker string, from, to time.Time) ([]Bar, error) {
	logger.Debugf(
		"fetching bars: %s from=%s to=%s",
		ticker,
		from.Format("2006-01-02"),
		to.Format("2006-01-02"),
	)

	params := models.ListAggsParams{
		Ticker:     ticker,
		Multiplier: 1,
		Timespan:   models.Day,
		From:       models.Millis(from),
		To:         models.Millis(to),
	}.WithOrder(models.Asc).WithAdjusted(true)

	iter := polygonDataProv.client.ListAggs(ctx, params)

	var out []Bar
	for iter.Next() {
		agg := iter.Item()
		out = append(out, Bar{
			Date:  time.Time(agg.Timestamp).UTC(),
			Open:  agg.Open,
			High:  agg.High,
			Low:   agg.Low,
			Close: agg.Close,
			Vol:   agg.Volume,
		})
	}
	if err := iter.Err(); err != nil {
		logger.Errorf("bars request failed for %s: %v", ticker, err)
		return nil, fmt.Errorf("polygon aggs %s: %w", ticker, err)
	}

	logger.Tracef("bars received: %d records", len(out))
	return out, nil
}
