package raster

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/goopsie/texforge/pkg/pixel"
)

// NormalMap derives a tangent-space normal map from the red channel of a
// height image. Gradients use the 3x3 Sobel kernel and the image's own
// addressing at the edges; each depth slice is processed on its own. The
// normal (dx*scale, dy*scale, 1) is normalized and packed into [0, 1].
func NormalMap(height *Image, scale float64) *Image {
	h := func(x, y, z int) float64 { return height.At(x, y, z).R }

	out := generate(height.size, func(x, y, z int) pixel.Color {
		tl, t, tr := h(x-1, y-1, z), h(x, y-1, z), h(x+1, y-1, z)
		l, r := h(x-1, y, z), h(x+1, y, z)
		bl, b, br := h(x-1, y+1, z), h(x, y+1, z), h(x+1, y+1, z)

		dx := (tr + 2*r + br) - (tl + 2*l + bl)
		dy := (bl + 2*b + br) - (tl + 2*t + tr)

		n := mgl64.Vec3{dx * scale, dy * scale, 1}.Normalize()
		return pixel.Color{
			R: n[0]*0.5 + 0.5,
			G: n[1]*0.5 + 0.5,
			B: n[2]*0.5 + 0.5,
			A: 1,
		}
	})
	out.mode = height.mode
	return out
}
