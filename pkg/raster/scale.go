package raster

import (
	"fmt"
	"math"
	"strings"

	"github.com/goopsie/texforge/pkg/pixel"
	"github.com/goopsie/texforge/pkg/texerr"
	"github.com/goopsie/texforge/pkg/texture"
)

// Filter selects the resampling kernel used by Scale.
type Filter uint8

const (
	// Point takes the nearest source sample.
	Point Filter = iota
	// Linear blends two samples per axis.
	Linear
	// Cubic blends four samples per axis with Catmull-Rom weights.
	Cubic
	// Spline blends four samples per axis with cubic polynomial weights
	// through the neighbours at -1, 0, 1 and 2.
	Spline
)

var filterNames = [...]string{"point", "linear", "cubic", "spline"}

func (f Filter) String() string {
	if int(f) < len(filterNames) {
		return filterNames[f]
	}
	return fmt.Sprintf("Filter(%d)", uint8(f))
}

// ParseFilter returns the filter with the given name.
func ParseFilter(name string) (Filter, error) {
	for i, n := range filterNames {
		if strings.EqualFold(n, name) {
			return Filter(i), nil
		}
	}
	return 0, texerr.Preconditionf("raster: unknown filter %q", name)
}

type tap struct {
	idx int
	w   float64
}

// axisTaps returns, for every destination index, the source samples and
// weights of the filter along one axis.
func axisTaps(f Filter, src, dst int) [][]tap {
	taps := make([][]tap, dst)
	clampIdx := func(i int) int { return max(0, min(src-1, i)) }
	for d := range taps {
		if f == Point {
			taps[d] = []tap{{d * src / dst, 1}}
			continue
		}

		pos := float64(d) * float64(src) / float64(dst)
		i := int(math.Floor(pos))
		t := pos - float64(i)

		switch f {
		case Linear:
			taps[d] = []tap{{clampIdx(i), 1 - t}, {clampIdx(i + 1), t}}
		case Cubic:
			t2, t3 := t*t, t*t*t
			taps[d] = []tap{
				{clampIdx(i - 1), 0.5 * (-t + 2*t2 - t3)},
				{clampIdx(i), 0.5 * (2 - 5*t2 + 3*t3)},
				{clampIdx(i + 1), 0.5 * (t + 4*t2 - 3*t3)},
				{clampIdx(i + 2), 0.5 * (-t2 + t3)},
			}
		case Spline:
			taps[d] = []tap{
				{clampIdx(i - 1), (-t) * (t - 1) * (t - 2) / 6},
				{clampIdx(i), 3 * (t + 1) * (t - 1) * (t - 2) / 6},
				{clampIdx(i + 1), -3 * (t + 1) * t * (t - 2) / 6},
				{clampIdx(i + 2), (t + 1) * t * (t - 1) / 6},
			}
		}
	}
	return taps
}

// Scale resamples img to size with filter f. Filtering is separable: the
// 1D kernel runs along x, then y, then z, and axes whose length does not
// change are left untouched. Source samples past the edge are clamped.
func Scale(img *Image, size pixel.Size, f Filter) (*Image, error) {
	if !size.Valid() {
		return nil, texerr.Preconditionf("raster: invalid scale size %s", size)
	}
	if int(f) >= len(filterNames) {
		return nil, texerr.Preconditionf("raster: unknown filter %d", uint8(f))
	}

	cur := img.Clone()
	if size.Width != cur.size.Width {
		cur = resampleAxis(cur, 0, size.Width, axisTaps(f, cur.size.Width, size.Width))
	}
	if size.Height != cur.size.Height {
		cur = resampleAxis(cur, 1, size.Height, axisTaps(f, cur.size.Height, size.Height))
	}
	if size.Depth != cur.size.Depth {
		cur = resampleAxis(cur, 2, size.Depth, axisTaps(f, cur.size.Depth, size.Depth))
	}
	return cur, nil
}

// resampleAxis replaces the length of one axis (0 x, 1 y, 2 z) using the
// precomputed taps.
func resampleAxis(src *Image, axis, n int, taps [][]tap) *Image {
	size := src.size
	switch axis {
	case 0:
		size.Width = n
	case 1:
		size.Height = n
	default:
		size.Depth = n
	}

	out := generate(size, func(x, y, z int) pixel.Color {
		var c pixel.Color
		coord := [3]int{x, y, z}
		for _, tp := range taps[coord[axis]] {
			if tp.w == 0 {
				continue
			}
			var s pixel.Color
			switch axis {
			case 0:
				s = src.pix[src.offset(tp.idx, y, z)]
			case 1:
				s = src.pix[src.offset(x, tp.idx, z)]
			default:
				s = src.pix[src.offset(x, y, tp.idx)]
			}
			c = c.Add(s.Scale(tp.w))
		}
		return c
	})
	out.mode = src.mode
	out.border = src.border
	return out
}

// GenerateMipmaps returns a full mip chain for img. Level 0 is a copy of
// img; every further level is resampled directly from img rather than from
// the level above it.
func GenerateMipmaps(img *Image, f Filter) ([]*Image, error) {
	levels := texture.MipLevels(img.size)
	chain := make([]*Image, levels)
	chain[0] = img.Clone()
	for mip := 1; mip < levels; mip++ {
		level, err := Scale(img, texture.MipSliceSize(img.size, mip), f)
		if err != nil {
			return nil, err
		}
		chain[mip] = level
	}
	return chain, nil
}
