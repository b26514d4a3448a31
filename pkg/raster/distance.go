package raster

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/goopsie/texforge/pkg/pixel"
	"github.com/goopsie/texforge/pkg/texerr"
)

// Metric measures the distance between two samples.
type Metric uint8

const (
	Euclidean Metric = iota
	Manhattan
	Chebyshev
)

var metricNames = [...]string{"euclidean", "manhattan", "chebyshev"}

func (m Metric) String() string {
	if int(m) < len(metricNames) {
		return metricNames[m]
	}
	return fmt.Sprintf("Metric(%d)", uint8(m))
}

// ParseMetric returns the metric with the given name.
func ParseMetric(name string) (Metric, error) {
	for i, n := range metricNames {
		if strings.EqualFold(n, name) {
			return Metric(i), nil
		}
	}
	return 0, texerr.Preconditionf("raster: unknown metric %q", name)
}

// Distance returns the length of v under m.
func (m Metric) Distance(v mgl64.Vec3) float64 {
	switch m {
	case Manhattan:
		return math.Abs(v[0]) + math.Abs(v[1]) + math.Abs(v[2])
	case Chebyshev:
		return math.Max(math.Abs(v[0]), math.Max(math.Abs(v[1]), math.Abs(v[2])))
	default:
		return v.Len()
	}
}

// Threshold returns a predicate that is true where the red channel is at
// least t.
func Threshold(t float64) func(pixel.Color) bool {
	return func(c pixel.Color) bool { return c.R >= t }
}

// DistanceTransform computes an approximate signed distance field of src
// at the given size. inside classifies source samples. Each output sample
// maps to a source sample (nearest, as with Point scaling) and searches
// square rings of growing radius around it for a sample of the opposite
// class; the search stops after the first ring that holds one. The result
// is grey (d, d, d, 1) where d is measured in source pixels, positive
// inside and negative outside. Samples with no opposite in reach get the
// search bound as magnitude.
func DistanceTransform(src *Image, size pixel.Size, inside func(pixel.Color) bool, metric Metric) (*Image, error) {
	if !size.Valid() {
		return nil, texerr.Preconditionf("raster: invalid distance field size %s", size)
	}
	if inside == nil {
		return nil, texerr.Preconditionf("raster: nil boundary predicate")
	}

	ss := src.size
	class := make([]bool, len(src.pix))
	for i, c := range src.pix {
		class[i] = inside(c)
	}
	bound := ss.Max()

	out := generate(size, func(x, y, z int) pixel.Color {
		sx := x * ss.Width / size.Width
		sy := y * ss.Height / size.Height
		sz := z * ss.Depth / size.Depth
		in := class[src.offset(sx, sy, sz)]

		best := math.Inf(1)
		for r := 1; r < bound && math.IsInf(best, 1); r++ {
			visitRing(ss, sx, sy, sz, r, func(px, py, pz int) {
				if class[src.offset(px, py, pz)] == in {
					return
				}
				d := metric.Distance(mgl64.Vec3{float64(px - sx), float64(py - sy), float64(pz - sz)})
				best = math.Min(best, d)
			})
		}
		if math.IsInf(best, 1) {
			best = float64(bound)
		}
		if !in {
			best = -best
		}
		return pixel.Gray(best)
	})
	return out, nil
}

// visitRing calls fn for every in-bounds sample whose Chebyshev distance
// from (cx, cy, cz) is exactly r.
func visitRing(s pixel.Size, cx, cy, cz, r int, fn func(x, y, z int)) {
	zr := r
	if s.Depth == 1 {
		zr = 0
	}
	for dz := -zr; dz <= zr; dz++ {
		z := cz + dz
		if z < 0 || z >= s.Depth {
			continue
		}
		for dy := -r; dy <= r; dy++ {
			y := cy + dy
			if y < 0 || y >= s.Height {
				continue
			}
			step := 2 * r
			if abs(dz) == r || abs(dy) == r {
				step = 1
			}
			for dx := -r; dx <= r; dx += step {
				x := cx + dx
				if x < 0 || x >= s.Width {
					continue
				}
				fn(x, y, z)
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
