package pricing

import (
	"math"
)

// Price computes Black-Scholes-Merton call and put prices for every
// (spot, strike) pair on the grid derived from p.
//
// Rows are spot values and columns are strike values, both generated by
// NewAxis. The put grid is derived from the call grid through put-call
// parity, so the two surfaces are always mutually consistent.
//
// Price does not validate p. Non-positive strike, spot, vol or tau produce
// NaN or Inf cells; use PriceChecked at an input boundary.
//
// Parameters:
//   - p.Strike: base strike price, centre of the strike axis
//   - p.Spot: base spot price, centre of the spot axis
//   - p.Rate: continuously compounded risk-free rate (may be negative)
//   - p.Vol: annualised volatility, as a decimal
//   - p.Tau: time to maturity as a year-fraction
//
// Returns:
//
//	call and put grids sharing identical axes.
func Price(p MarketParams) (call, put Grid) {
	spots := NewAxis(p.Spot)
	strikes := NewAxis(p.Strike)

	// computed once and reused for d1 and d2
	sigmaRootT := p.Vol * math.Sqrt(p.Tau)
	drift := p.Tau * (p.Rate + p.Vol*p.Vol/2)
	discount := math.Exp(-p.Rate * p.Tau)

	callValues := make([][]float64, len(spots))
	putValues := make([][]float64, len(spots))

	for i, s := range spots {
		callValues[i] = make([]float64, len(strikes))
		putValues[i] = make([]float64, len(strikes))

		for j, k := range strikes {
			d1 := (math.Log(s/k) + drift) / sigmaRootT
			d2 := d1 - sigmaRootT

			c := s*NormCDF(d1) - k*discount*NormCDF(d2)
			callValues[i][j] = c
			putValues[i][j] = c - s + k*discount
		}
	}

	return Grid{Spots: spots, Strikes: strikes, Values: callValues},
		Grid{Spots: spots, Strikes: strikes, Values: putValues}
}

// PriceChecked validates p before pricing it.
func PriceChecked(p MarketParams) (call, put Grid, err error) {
	if err := p.Validate(); err != nil {
		return Grid{}, Grid{}, err
	}
	call, put = Price(p)
	return call, put, nil
}

// ProfitLoss re-centres each grid on what was paid for the option so that
// zero means break-even. A nil baseline falls back to that grid's own
// at-the-money cell, i.e. buying the option at today's inputs.
//
// Both grids use the same orientation (rows are spots, columns are strikes).
func ProfitLoss(call, put Grid, callBase, putBase *float64) (Grid, Grid) {
	return call.Shift(Reference(call, callBase)), put.Shift(Reference(put, putBase))
}

// Reference returns the purchase price if one was given, else g's
// at-the-money cell. A zero price counts as not given.
func Reference(g Grid, paid *float64) float64 {
	if paid != nil && *paid != 0 {
		return *paid
	}
	return g.ATM()
}

// NormCDF computes the cumulative distribution function of the standard normal distribution
// for a given value x using the error function.
// It returns a value between 0 and 1 representing the probability that a standard normal
// random variable is less than or equal to x. Large |x| saturates to exactly 0 or 1.
func NormCDF(x float64) float64 {
	return 0.5 * (1.0 + math.Erf(x/math.Sqrt2))
}
