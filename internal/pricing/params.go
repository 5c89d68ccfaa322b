package pricing

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParams is returned when market parameters fall outside the
// domain of the closed-form model.
var ErrInvalidParams = errors.New("invalid market parameters")

// MarketParams holds the five scalar inputs of a single pricing call.
type MarketParams struct {
	Strike float64 `json:"strike" yaml:"strike"` // base strike, > 0
	Spot   float64 `json:"spot" yaml:"spot"`     // base spot, > 0
	Rate   float64 `json:"rate" yaml:"rate"`     // risk-free rate, decimal, unconstrained
	Vol    float64 `json:"vol" yaml:"vol"`       // annualised volatility, decimal, > 0
	Tau    float64 `json:"tau" yaml:"tau"`       // time to maturity in years, > 0
}

// Validate reports the first parameter that violates a precondition.
// Fields are checked in the order strike, spot, tau, vol.
func (p MarketParams) Validate() error {
	switch {
	case !(p.Strike > 0):
		return fmt.Errorf("%w: strike must be > 0, got %v", ErrInvalidParams, p.Strike)
	case !(p.Spot > 0):
		return fmt.Errorf("%w: spot must be > 0, got %v", ErrInvalidParams, p.Spot)
	case !(p.Tau > 0):
		return fmt.Errorf("%w: time to maturity must be > 0, got %v", ErrInvalidParams, p.Tau)
	case !(p.Vol > 0):
		return fmt.Errorf("%w: volatility must be > 0, got %v", ErrInvalidParams, p.Vol)
	}
	return nil
}

// Purchase holds what was paid for each option. A nil or zero price means
// the option was bought at its at-the-money value.
type Purchase struct {
	Call *float64 `json:"call_price,omitempty" yaml:"call_price,omitempty"`
	Put  *float64 `json:"put_price,omitempty" yaml:"put_price,omitempty"`
}

// Validate rejects negative or non-finite purchase prices.
func (p Purchase) Validate() error {
	for _, v := range []struct {
		name  string
		price *float64
	}{{"call price", p.Call}, {"put price", p.Put}} {
		if v.price == nil {
			continue
		}
		if !(*v.price >= 0) || math.IsInf(*v.price, 0) {
			return fmt.Errorf("%w: %s must be >= 0, got %v", ErrInvalidParams, v.name, *v.price)
		}
	}
	return nil
}
