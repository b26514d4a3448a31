package raster

import (
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/goopsie/texforge/pkg/pixel"
	"github.com/goopsie/texforge/pkg/texerr"
)

func TestMap(t *testing.T) {
	a := ramp(t, pixel.Size{Width: 3, Height: 2, Depth: 1})
	out := Map(a, func(c pixel.Color) pixel.Color { return c.Scale(2) })
	if out.Size() != a.Size() || out.Pix()[5].R != 10 {
		t.Errorf("Map: size %s, last %v", out.Size(), out.Pix()[5])
	}

	var order [][3]int
	MapIndexed(a, func(x, y, z int, c pixel.Color) pixel.Color {
		order = append(order, [3]int{x, y, z})
		return c
	})
	if order[1] != [3]int{1, 0, 0} || order[3] != [3]int{0, 1, 0} {
		t.Errorf("visit order %v", order)
	}
}

func TestMapUsesCommonExtent(t *testing.T) {
	a := ramp(t, pixel.Size{Width: 4, Height: 2, Depth: 1})
	b := ramp(t, pixel.Size{Width: 2, Height: 3, Depth: 1})
	c := ramp(t, pixel.Size{Width: 3, Height: 3, Depth: 1})

	sum := Map2(a, b, func(ca, cb pixel.Color) pixel.Color { return ca.Add(cb) })
	if sum.Size() != (pixel.Size{Width: 2, Height: 2, Depth: 1}) {
		t.Fatalf("Map2 size %s", sum.Size())
	}
	// a(1,1) = 5, b(1,1) = 3.
	if got := sum.At(1, 1, 0).R; got != 8 {
		t.Errorf("Map2(1,1) = %v, want 8", got)
	}

	tri := Map3(a, b, c, func(ca, cb, cc pixel.Color) pixel.Color { return ca.Add(cb).Add(cc) })
	if got := tri.At(1, 1, 0).R; got != 12 {
		t.Errorf("Map3(1,1) = %v, want 12", got)
	}

	idx := MapIndexed2(a, b, func(x, y, z int, ca, cb pixel.Color) pixel.Color {
		return pixel.Gray(float64(x + 10*y))
	})
	if got := idx.At(1, 1, 0).R; got != 11 {
		t.Errorf("MapIndexed2(1,1) = %v", got)
	}
	idx3 := MapIndexed3(a, b, c, func(x, y, z int, ca, cb, cc pixel.Color) pixel.Color {
		return cc
	})
	if got := idx3.At(1, 1, 0).R; got != 4 {
		t.Errorf("MapIndexed3(1,1) = %v, want 4", got)
	}
}

func TestFold(t *testing.T) {
	imgs := []*Image{
		ramp(t, pixel.Size{Width: 2, Height: 2, Depth: 1}),
		ramp(t, pixel.Size{Width: 2, Height: 2, Depth: 1}),
		ramp(t, pixel.Size{Width: 2, Height: 2, Depth: 1}),
	}
	sum, err := Fold(imgs, pixel.Color{A: 0}, func(acc, c pixel.Color) pixel.Color { return acc.Add(c) })
	if err != nil {
		t.Fatal(err)
	}
	if got := sum.At(1, 1, 0); got.R != 9 || got.A != 3 {
		t.Errorf("Fold(1,1) = %v", got)
	}
	if _, err := Fold(nil, pixel.Black, nil); !errors.Is(err, texerr.ErrPrecondition) {
		t.Errorf("empty fold: got %v", err)
	}
}

func TestBlit(t *testing.T) {
	src := ramp(t, pixel.Size{Width: 4, Height: 4, Depth: 1})
	dst, _ := New(pixel.Size{Width: 4, Height: 4, Depth: 1})

	if err := Blit(dst, 2, 1, 0, src, 0, 0, 0, pixel.Size{Width: 2, Height: 2, Depth: 1}); err != nil {
		t.Fatal(err)
	}
	if got := dst.At(3, 2, 0).R; got != 5 {
		t.Errorf("dst(3,2) = %v, want 5", got)
	}
	if got := dst.At(0, 0, 0); got != pixel.Transparent {
		t.Errorf("untouched pixel = %v", got)
	}

	// Overlapping copy within one image.
	if err := Blit(src, 0, 1, 0, src, 0, 0, 0, pixel.Size{Width: 4, Height: 3, Depth: 1}); err != nil {
		t.Fatal(err)
	}
	if got := src.At(2, 3, 0).R; got != 10 {
		t.Errorf("overlap (2,3) = %v, want 10", got)
	}

	bad := []struct {
		name           string
		dx, dy, sx, sy int
		size           pixel.Size
	}{
		{"SourceOutside", 0, 0, 3, 0, pixel.Size{Width: 2, Height: 2, Depth: 1}},
		{"DestOutside", 0, 3, 0, 0, pixel.Size{Width: 2, Height: 2, Depth: 1}},
		{"Negative", -1, 0, 0, 0, pixel.Size{Width: 1, Height: 1, Depth: 1}},
		{"EmptyBox", 0, 0, 0, 0, pixel.Size{Width: 0, Height: 1, Depth: 1}},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			err := Blit(dst, tt.dx, tt.dy, 0, src, tt.sx, tt.sy, 0, tt.size)
			if !errors.Is(err, texerr.ErrPrecondition) {
				t.Errorf("got %v, want precondition", err)
			}
		})
	}
}
