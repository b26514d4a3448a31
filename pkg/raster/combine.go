package raster

import (
	"github.com/goopsie/texforge/pkg/pixel"
	"github.com/goopsie/texforge/pkg/texerr"
)

// Combinators allocate a new image and visit pixels z-major, then y, then x.
// When several inputs are given the output covers their common extent.

func minSize(imgs ...*Image) pixel.Size {
	s := imgs[0].size
	for _, m := range imgs[1:] {
		s.Width = min(s.Width, m.size.Width)
		s.Height = min(s.Height, m.size.Height)
		s.Depth = min(s.Depth, m.size.Depth)
	}
	return s
}

func generate(size pixel.Size, fn func(x, y, z int) pixel.Color) *Image {
	out := &Image{size: size, pix: make([]pixel.Color, size.Volume())}
	i := 0
	for z := 0; z < size.Depth; z++ {
		for y := 0; y < size.Height; y++ {
			for x := 0; x < size.Width; x++ {
				out.pix[i] = fn(x, y, z)
				i++
			}
		}
	}
	return out
}

// Generate builds an image of the given size from fn.
func Generate(size pixel.Size, fn func(x, y, z int) pixel.Color) (*Image, error) {
	if !size.Valid() {
		return nil, texerr.Preconditionf("raster: invalid image size %s", size)
	}
	return generate(size, fn), nil
}

// Map applies fn to every pixel of a.
func Map(a *Image, fn func(pixel.Color) pixel.Color) *Image {
	return generate(a.size, func(x, y, z int) pixel.Color {
		return fn(a.pix[a.offset(x, y, z)])
	})
}

// MapIndexed applies fn to every pixel of a along with its coordinate.
func MapIndexed(a *Image, fn func(x, y, z int, c pixel.Color) pixel.Color) *Image {
	return generate(a.size, func(x, y, z int) pixel.Color {
		return fn(x, y, z, a.pix[a.offset(x, y, z)])
	})
}

// Map2 combines a and b pixel by pixel.
func Map2(a, b *Image, fn func(ca, cb pixel.Color) pixel.Color) *Image {
	return generate(minSize(a, b), func(x, y, z int) pixel.Color {
		return fn(a.pix[a.offset(x, y, z)], b.pix[b.offset(x, y, z)])
	})
}

// MapIndexed2 is Map2 with the pixel coordinate.
func MapIndexed2(a, b *Image, fn func(x, y, z int, ca, cb pixel.Color) pixel.Color) *Image {
	return generate(minSize(a, b), func(x, y, z int) pixel.Color {
		return fn(x, y, z, a.pix[a.offset(x, y, z)], b.pix[b.offset(x, y, z)])
	})
}

// Map3 combines a, b and c pixel by pixel.
func Map3(a, b, c *Image, fn func(ca, cb, cc pixel.Color) pixel.Color) *Image {
	return generate(minSize(a, b, c), func(x, y, z int) pixel.Color {
		return fn(a.pix[a.offset(x, y, z)], b.pix[b.offset(x, y, z)], c.pix[c.offset(x, y, z)])
	})
}

// MapIndexed3 is Map3 with the pixel coordinate.
func MapIndexed3(a, b, c *Image, fn func(x, y, z int, ca, cb, cc pixel.Color) pixel.Color) *Image {
	return generate(minSize(a, b, c), func(x, y, z int) pixel.Color {
		return fn(x, y, z, a.pix[a.offset(x, y, z)], b.pix[b.offset(x, y, z)], c.pix[c.offset(x, y, z)])
	})
}

// Fold reduces images into one, starting every pixel at seed and applying
// op with each image in turn.
func Fold(images []*Image, seed pixel.Color, op func(acc, c pixel.Color) pixel.Color) (*Image, error) {
	if len(images) == 0 {
		return nil, texerr.Preconditionf("raster: fold over no images")
	}
	return generate(minSize(images...), func(x, y, z int) pixel.Color {
		acc := seed
		for _, m := range images {
			acc = op(acc, m.pix[m.offset(x, y, z)])
		}
		return acc
	}), nil
}

// Blit copies the size-sized box at src origin (sx, sy, sz) into dst at
// (dx, dy, dz). Both boxes must lie inside their images.
func Blit(dst *Image, dx, dy, dz int, src *Image, sx, sy, sz int, size pixel.Size) error {
	if !size.Valid() {
		return texerr.Preconditionf("raster: blit size %s", size)
	}
	if !boxInside(src.size, sx, sy, sz, size) {
		return texerr.Preconditionf("raster: blit source box %s at (%d, %d, %d) outside %s",
			size, sx, sy, sz, src.size)
	}
	if !boxInside(dst.size, dx, dy, dz, size) {
		return texerr.Preconditionf("raster: blit destination box %s at (%d, %d, %d) outside %s",
			size, dx, dy, dz, dst.size)
	}

	pix := src.pix
	if dst == src {
		pix = append([]pixel.Color(nil), src.pix...)
	}
	for z := 0; z < size.Depth; z++ {
		for y := 0; y < size.Height; y++ {
			so := src.offset(sx, sy+y, sz+z)
			do := dst.offset(dx, dy+y, dz+z)
			copy(dst.pix[do:do+size.Width], pix[so:so+size.Width])
		}
	}
	return nil
}

func boxInside(s pixel.Size, x, y, z int, box pixel.Size) bool {
	return x >= 0 && y >= 0 && z >= 0 &&
		x+box.Width <= s.Width && y+box.Height <= s.Height && z+box.Depth <= s.Depth
}
