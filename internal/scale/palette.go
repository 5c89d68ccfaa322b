package scale

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrUnknownPalette is returned by Lookup for a key outside the fixed set.
var ErrUnknownPalette = errors.New("unknown palette")

// RGB is an 8-bit-per-channel colour.
type RGB struct {
	R, G, B uint8
}

// Hex renders the colour as #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseHex parses #rrggbb (the leading # is optional).
func ParseHex(s string) (RGB, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return RGB{}, fmt.Errorf("parse colour %q: want 6 hex digits", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("parse colour %q: %w", s, err)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// PaletteKey identifies one of the built-in gradients.
type PaletteKey string

// Built-in palettes.
const (
	RedBlue       PaletteKey = "Red-Blue"
	RedGreen      PaletteKey = "Red-Green"
	OrangeSeafoam PaletteKey = "Orange-Seafoam"
)

// DefaultPalette is used when no palette is configured.
const DefaultPalette = RedBlue

// Palette is a three-colour gradient: Low at position 0, Mid at 0.5, High at 1.
type Palette struct {
	Name PaletteKey `json:"name"`
	Low  RGB        `json:"-"`
	Mid  RGB        `json:"-"`
	High RGB        `json:"-"`
}

var palettes = []Palette{
	newPalette(RedBlue, "#930400", "#efefef", "#0047bc"),
	newPalette(RedGreen, "#930400", "#efefef", "#00642e"),
	newPalette(OrangeSeafoam, "#ab3300", "#ffffeb", "#007272"),
}

func newPalette(name PaletteKey, low, mid, high string) Palette {
	return Palette{Name: name, Low: mustHex(low), Mid: mustHex(mid), High: mustHex(high)}
}

func mustHex(s string) RGB {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Keys lists the palette keys in display order.
func Keys() []PaletteKey {
	out := make([]PaletteKey, len(palettes))
	for i, p := range palettes {
		out[i] = p.Name
	}
	return out
}

// Lookup returns the palette for key. Matching ignores case.
func Lookup(key PaletteKey) (Palette, error) {
	for _, p := range palettes {
		if strings.EqualFold(string(p.Name), string(key)) {
			return p, nil
		}
	}
	return Palette{}, fmt.Errorf("%w %q (want one of %v)", ErrUnknownPalette, key, Keys())
}

// At returns the gradient colour at position t in [0, 1].
func (p Palette) At(t float64) RGB {
	switch {
	case math.IsNaN(t) || t <= 0:
		return p.Low
	case t >= 1:
		return p.High
	case t < 0.5:
		return lerp(p.Low, p.Mid, t*2)
	default:
		return lerp(p.Mid, p.High, (t-0.5)*2)
	}
}

// Color maps v through d onto the gradient.
func (p Palette) Color(v float64, d Descriptor) RGB {
	return p.At(d.Position(v))
}

func lerp(a, b RGB, t float64) RGB {
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return RGB{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B)}
}
