// Package pixel converts between on-disk pixel encodings and the canonical
// colour representation used by the rest of the module.
//
// Every pixel layout is described by a Format. Formats are immutable values
// held in a table built once at package initialisation and selected by Tag
// or by name. Any-to-any conversion goes through a []Color buffer, so each
// layout only needs an encoder and a decoder.
package pixel

import (
	"fmt"
	"math"
)

// Color is the canonical colour value: four float64 channels.
// Normalized formats decode into [0,1] (or [-1,1] for signed formats);
// integer and float formats decode into their numeric range.
type Color struct {
	R, G, B, A float64
}

var (
	// Black is opaque black.
	Black = Color{0, 0, 0, 1}
	// White is opaque white.
	White = Color{1, 1, 1, 1}
	// Transparent is the all-zero colour.
	Transparent = Color{}
)

// RGBA returns a Color from its four channels.
func RGBA(r, g, b, a float64) Color {
	return Color{r, g, b, a}
}

// Gray returns an opaque colour with all colour channels set to v.
func Gray(v float64) Color {
	return Color{v, v, v, 1}
}

// Add returns c + o per channel.
func (c Color) Add(o Color) Color {
	return Color{c.R + o.R, c.G + o.G, c.B + o.B, c.A + o.A}
}

// Sub returns c - o per channel.
func (c Color) Sub(o Color) Color {
	return Color{c.R - o.R, c.G - o.G, c.B - o.B, c.A - o.A}
}

// Mul returns c * o per channel.
func (c Color) Mul(o Color) Color {
	return Color{c.R * o.R, c.G * o.G, c.B * o.B, c.A * o.A}
}

// Scale returns c * s.
func (c Color) Scale(s float64) Color {
	return Color{c.R * s, c.G * s, c.B * s, c.A * s}
}

// Lerp returns c + t*(o-c) per channel.
func (c Color) Lerp(o Color, t float64) Color {
	return Color{
		c.R + t*(o.R-c.R),
		c.G + t*(o.G-c.G),
		c.B + t*(o.B-c.B),
		c.A + t*(o.A-c.A),
	}
}

// Clamp limits every channel of c to the matching channels of lo and hi.
func (c Color) Clamp(lo, hi Color) Color {
	return Color{
		clamp(c.R, lo.R, hi.R),
		clamp(c.G, lo.G, hi.G),
		clamp(c.B, lo.B, hi.B),
		clamp(c.A, lo.A, hi.A),
	}
}

// Luma returns the Rec.601 luma of the colour channels.
func (c Color) Luma() float64 {
	return 0.299*c.R + 0.587*c.G + 0.114*c.B
}

func (c Color) String() string {
	return fmt.Sprintf("RGBA(%.4f, %.4f, %.4f, %.4f)", c.R, c.G, c.B, c.A)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Size is a three-dimensional extent in pixels.
type Size struct {
	Width, Height, Depth int
}

// Size2D returns a Size with depth 1.
func Size2D(width, height int) Size {
	return Size{width, height, 1}
}

// Volume returns Width*Height*Depth.
func (s Size) Volume() int {
	return s.Width * s.Height * s.Depth
}

// Valid reports whether every dimension is at least 1.
func (s Size) Valid() bool {
	return s.Width >= 1 && s.Height >= 1 && s.Depth >= 1
}

// Max returns the largest dimension.
func (s Size) Max() int {
	return max(s.Width, s.Height, s.Depth)
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%dx%d", s.Width, s.Height, s.Depth)
}

func srgbToLinear(v float64) float64 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

func linearToSrgb(v float64) float64 {
	if v <= 0.0031308 {
		return v * 12.92
	}
	return 1.055*math.Pow(v, 1.0/2.4) - 0.055
}
