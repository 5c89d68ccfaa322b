// Package scale turns a price surface into a three-point diverging colour
// scale. Every descriptor it returns satisfies VMin < VCenter < VMax, including
// for flat, one-sided and pinned-reference surfaces.
package scale

import (
	"errors"
	"fmt"
	"math"
)

// Epsilon is the smallest step used to pull a degenerate scale apart.
const Epsilon = 0.0001

// ErrNoReference is returned when Normalize gets neither a reference price
// nor profit/loss mode.
var ErrNoReference = errors.New("either a reference price or profit/loss mode is required")

// ErrBadReference is returned for a reference price that cannot centre a
// scale.
var ErrBadReference = errors.New("invalid reference price")

// ErrEmpty is returned for a surface with no finite cells.
var ErrEmpty = errors.New("no values to normalize")

// Values is anything exposing its cells. pricing.Grid satisfies it.
type Values interface {
	Cells() []float64
}

// Descriptor is a two-slope normalization: VMin maps to 0, VCenter to 0.5
// and VMax to 1.
type Descriptor struct {
	VMin    float64 `json:"vmin"`
	VCenter float64 `json:"vcenter"`
	VMax    float64 `json:"vmax"`
}

// Valid reports whether the descriptor is strictly increasing.
func (d Descriptor) Valid() bool {
	return d.VMin < d.VCenter && d.VCenter < d.VMax
}

// Position maps v into [0, 1], clipping values outside the range.
func (d Descriptor) Position(v float64) float64 {
	switch {
	case v <= d.VMin:
		return 0
	case v >= d.VMax:
		return 1
	case v < d.VCenter:
		return 0.5 * (v - d.VMin) / (d.VCenter - d.VMin)
	default:
		return 0.5 + 0.5*(v-d.VCenter)/(d.VMax-d.VCenter)
	}
}

// Options selects the normalization mode. ProfitLoss takes precedence over
// Reference when both are set.
type Options struct {
	Reference  *float64
	ProfitLoss bool
}

// WithReference returns price-mode options centred on ref.
func WithReference(ref float64) Options {
	return Options{Reference: &ref}
}

// ProfitLoss returns options for a surface already re-centred on break-even.
func ProfitLoss() Options {
	return Options{ProfitLoss: true}
}

// Case names the shape of a surface relative to the scale it needs.
type Case int

const (
	// Flat: profit/loss surface where every cell is identical.
	Flat Case = iota
	// AllNonPositive: profit/loss surface whose maximum is <= 0.
	AllNonPositive
	// AllNonNegative: profit/loss surface whose minimum is >= 0.
	AllNonNegative
	// Straddling: profit/loss surface with cells on both sides of zero.
	Straddling
	// ReferenceZero: price surface with no cell above zero.
	ReferenceZero
	// ReferencePinned: reference at or beyond an end of [0, max].
	ReferencePinned
	// ReferenceInside: reference strictly inside (0, max).
	ReferenceInside
)

var caseNames = map[Case]string{
	Flat:            "flat",
	AllNonPositive:  "all-non-positive",
	AllNonNegative:  "all-non-negative",
	Straddling:      "straddling",
	ReferenceZero:   "reference-zero",
	ReferencePinned: "reference-pinned",
	ReferenceInside: "reference-inside",
}

// String returns the kebab-case case name.
func (c Case) String() string {
	if name, ok := caseNames[c]; ok {
		return name
	}
	return fmt.Sprintf("case(%d)", int(c))
}

// Classify picks the case for the surface extremes and options.
// vmin is ignored in price mode.
func Classify(vmin, vmax float64, opts Options) (Case, error) {
	if opts.ProfitLoss {
		switch {
		case vmin == vmax:
			return Flat, nil
		case vmax <= 0:
			return AllNonPositive, nil
		case vmin >= 0:
			return AllNonNegative, nil
		default:
			return Straddling, nil
		}
	}

	if opts.Reference == nil {
		return 0, ErrNoReference
	}

	ref := *opts.Reference
	if math.IsNaN(ref) {
		return 0, fmt.Errorf("%w: NaN", ErrBadReference)
	}

	switch {
	case vmax <= 0:
		return ReferenceZero, nil
	case ref >= vmax || ref <= 0:
		return ReferencePinned, nil
	default:
		return ReferenceInside, nil
	}
}

// Normalize builds a strictly increasing descriptor for the surface.
//
// In profit/loss mode the surface is centred on zero. In price mode the
// scale starts at zero and is centred on the reference, pulled just inside
// (0, max) when it sits on or beyond either end.
//
// Normalize returns ErrNoReference when opts selects no mode and
// ErrBadReference for a NaN reference in price mode.
func Normalize(values Values, opts Options) (Descriptor, error) {
	if !opts.ProfitLoss {
		if opts.Reference == nil {
			return Descriptor{}, ErrNoReference
		}
		if math.IsNaN(*opts.Reference) {
			return Descriptor{}, fmt.Errorf("%w: NaN", ErrBadReference)
		}
	}

	vmin, vmax, ok := extremes(values.Cells())
	if !ok {
		return Descriptor{}, ErrEmpty
	}

	c, err := Classify(vmin, vmax, opts)
	if err != nil {
		return Descriptor{}, err
	}

	switch c {
	case Flat:
		centre := above(vmin, vmin+Epsilon)
		return Descriptor{VMin: vmin, VCenter: centre, VMax: above(centre, vmin+2*Epsilon)}, nil
	case AllNonPositive:
		return Descriptor{VMin: vmin, VCenter: 0, VMax: Epsilon}, nil
	case AllNonNegative:
		return Descriptor{VMin: -Epsilon, VCenter: 0, VMax: vmax}, nil
	case Straddling:
		return Descriptor{VMin: vmin, VCenter: 0, VMax: vmax}, nil
	case ReferenceZero:
		return Descriptor{VMin: 0, VCenter: Epsilon, VMax: 2 * Epsilon}, nil
	case ReferencePinned:
		centre := Epsilon
		if *opts.Reference >= vmax {
			centre = vmax - Epsilon
		}
		if centre <= 0 || centre >= vmax {
			// range narrower than one step
			centre = above(0, vmax/2)
			if centre >= vmax {
				vmax = above(centre, centre)
			}
		}
		return Descriptor{VMin: 0, VCenter: centre, VMax: vmax}, nil
	case ReferenceInside:
		return Descriptor{VMin: 0, VCenter: *opts.Reference, VMax: vmax}, nil
	}

	return Descriptor{}, fmt.Errorf("unhandled scale case %v", c)
}

// extremes scans the finite cells. NaN and infinite cells come from
// unvalidated inputs and are skipped.
func extremes(cells []float64) (vmin, vmax float64, ok bool) {
	for _, v := range cells {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if !ok {
			vmin, vmax, ok = v, v, true
			continue
		}
		vmin = math.Min(vmin, v)
		vmax = math.Max(vmax, v)
	}
	return vmin, vmax, ok
}

// above returns want, or the next float after floor when want has been
// absorbed by floor's magnitude.
func above(floor, want float64) float64 {
	if want > floor {
		return want
	}
	return math.Nextafter(floor, math.Inf(1))
}

// Slice adapts a plain slice to Values.
type Slice []float64

// Cells returns s.
func (s Slice) Cells() []float64 { return s }
