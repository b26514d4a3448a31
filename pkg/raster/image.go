// Package raster is the working representation for pixel processing: an
// addressable grid of canonical colours with per-axis edge handling,
// resampling, mip chain generation and derived maps.
package raster

import (
	"fmt"

	"github.com/goopsie/texforge/pkg/pixel"
	"github.com/goopsie/texforge/pkg/texerr"
)

// Address selects how an out-of-range coordinate on one axis is resolved.
type Address uint8

const (
	// Clamp pins the coordinate to the nearest edge.
	Clamp Address = iota
	// Wrap repeats the image.
	Wrap
	// Mirror repeats the image, flipping every other period.
	Mirror
	// Border reads the border colour and drops writes.
	Border
)

func (a Address) String() string {
	switch a {
	case Clamp:
		return "clamp"
	case Wrap:
		return "wrap"
	case Mirror:
		return "mirror"
	case Border:
		return "border"
	}
	return fmt.Sprintf("Address(%d)", uint8(a))
}

// Resolve maps coordinate c on an axis of length n into [0, n). The second
// result is false when the mode is Border and c is outside the axis.
func (a Address) Resolve(c, n int) (int, bool) {
	if c >= 0 && c < n {
		return c, true
	}
	switch a {
	case Wrap:
		return ((c % n) + n) % n, true
	case Mirror:
		cycle := floorDiv(c, n)
		if cycle%2 == 0 {
			return c - cycle*n, true
		}
		return -c + cycle*n + (n - 1), true
	case Border:
		return 0, false
	default:
		return max(0, min(n-1, c)), true
	}
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// Image is a width x height x depth grid of colours stored z-major, then y,
// then x.
type Image struct {
	size   pixel.Size
	pix    []pixel.Color
	mode   [3]Address
	border pixel.Color
}

// New returns a transparent image of the given size.
func New(size pixel.Size) (*Image, error) {
	if !size.Valid() {
		return nil, texerr.Preconditionf("raster: invalid image size %s", size)
	}
	return &Image{size: size, pix: make([]pixel.Color, size.Volume())}, nil
}

// Filled returns an image of the given size with every pixel set to c.
func Filled(size pixel.Size, c pixel.Color) (*Image, error) {
	img, err := New(size)
	if err != nil {
		return nil, err
	}
	for i := range img.pix {
		img.pix[i] = c
	}
	return img, nil
}

// FromColors wraps a copy of pix, which must hold size.Volume() colours.
func FromColors(size pixel.Size, pix []pixel.Color) (*Image, error) {
	img, err := New(size)
	if err != nil {
		return nil, err
	}
	if len(pix) != len(img.pix) {
		return nil, texerr.Preconditionf("raster: %d colours for size %s", len(pix), size)
	}
	copy(img.pix, pix)
	return img, nil
}

// Size returns the image extent.
func (m *Image) Size() pixel.Size { return m.size }

// Pix returns the backing colours in z, y, x order.
func (m *Image) Pix() []pixel.Color { return m.pix }

// Address returns the addressing modes for x, y and z.
func (m *Image) Address() (x, y, z Address) {
	return m.mode[0], m.mode[1], m.mode[2]
}

// SetAddress sets the addressing mode of each axis.
func (m *Image) SetAddress(x, y, z Address) {
	m.mode = [3]Address{x, y, z}
}

// SetAddressAll uses a for every axis.
func (m *Image) SetAddressAll(a Address) {
	m.SetAddress(a, a, a)
}

// BorderColor returns the colour read outside Border axes.
func (m *Image) BorderColor() pixel.Color { return m.border }

// SetBorderColor sets the colour read outside Border axes.
func (m *Image) SetBorderColor(c pixel.Color) { m.border = c }

// Clone returns a deep copy including addressing state.
func (m *Image) Clone() *Image {
	c := *m
	c.pix = append([]pixel.Color(nil), m.pix...)
	return &c
}

func (m *Image) offset(x, y, z int) int {
	return (z*m.size.Height+y)*m.size.Width + x
}

// resolve applies the addressing mode of every axis. Border takes effect
// when any out-of-range axis uses it.
func (m *Image) resolve(x, y, z int) (int, bool) {
	x, okx := m.mode[0].Resolve(x, m.size.Width)
	y, oky := m.mode[1].Resolve(y, m.size.Height)
	z, okz := m.mode[2].Resolve(z, m.size.Depth)
	if !okx || !oky || !okz {
		return 0, false
	}
	return m.offset(x, y, z), true
}

// At returns the colour at (x, y, z) after addressing.
func (m *Image) At(x, y, z int) pixel.Color {
	i, ok := m.resolve(x, y, z)
	if !ok {
		return m.border
	}
	return m.pix[i]
}

// Set writes c at (x, y, z) after addressing. Writes that fall on the
// border are dropped.
func (m *Image) Set(x, y, z int, c pixel.Color) {
	if i, ok := m.resolve(x, y, z); ok {
		m.pix[i] = c
	}
}

// In reports whether (x, y, z) lies inside the image.
func (m *Image) In(x, y, z int) bool {
	return x >= 0 && x < m.size.Width &&
		y >= 0 && y < m.size.Height &&
		z >= 0 && z < m.size.Depth
}
