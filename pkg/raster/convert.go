package raster

import (
	"image"
	"image/color"
	"math"

	"github.com/cockroachdb/errors"

	"github.com/goopsie/texforge/pkg/pixel"
	"github.com/goopsie/texforge/pkg/texerr"
	"github.com/goopsie/texforge/pkg/texture"
)

// FromResource decodes one subresource into a new image.
func FromResource(res *texture.Resource, mip, slice int) (*Image, error) {
	b, err := res.Subresource(mip, slice)
	if err != nil {
		return nil, err
	}
	size := res.MipSliceSize(mip)
	img, err := New(size)
	if err != nil {
		return nil, err
	}
	if err := res.Format().Decode(b, size, img.pix); err != nil {
		return nil, errors.Wrapf(err, "decode mip %d slice %d", mip, slice)
	}
	return img, nil
}

// ToResource encodes m into one subresource of res. m must have the size
// of that mip level.
func (m *Image) ToResource(res *texture.Resource, mip, slice int) error {
	b, err := res.Subresource(mip, slice)
	if err != nil {
		return err
	}
	if want := res.MipSliceSize(mip); m.size != want {
		return texerr.Preconditionf("raster: image size %s for mip %d of size %s", m.size, mip, want)
	}
	if err := res.Format().Encode(m.pix, m.size, b); err != nil {
		return errors.Wrapf(err, "encode mip %d slice %d", mip, slice)
	}
	return nil
}

// ResourceFromMipmaps builds a single-slice resource holding chain as its
// mip levels. chain[0] sets the resource size.
func ResourceFromMipmaps(chain []*Image, format pixel.Format) (*texture.Resource, error) {
	if len(chain) == 0 {
		return nil, texerr.Preconditionf("raster: empty mip chain")
	}
	res, err := texture.New(chain[0].size, len(chain), 1, format)
	if err != nil {
		return nil, err
	}
	for mip, img := range chain {
		if err := img.ToResource(res, mip, 0); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// FromImage converts a standard library image into a single-slice image
// with straight (not premultiplied) alpha.
func FromImage(src image.Image) (*Image, error) {
	b := src.Bounds()
	img, err := New(pixel.Size2D(b.Dx(), b.Dy()))
	if err != nil {
		return nil, err
	}
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBA64Model.Convert(src.At(x, y)).(color.NRGBA64)
			img.pix[i] = pixel.Color{
				R: float64(c.R) / 0xffff,
				G: float64(c.G) / 0xffff,
				B: float64(c.B) / 0xffff,
				A: float64(c.A) / 0xffff,
			}
			i++
		}
	}
	return img, nil
}

// ToNRGBA64 returns depth slice z as a standard library image. Channels
// are clamped to [0, 1].
func (m *Image) ToNRGBA64(z int) (*image.NRGBA64, error) {
	if z < 0 || z >= m.size.Depth {
		return nil, texerr.Preconditionf("raster: depth slice %d outside %s", z, m.size)
	}
	out := image.NewNRGBA64(image.Rect(0, 0, m.size.Width, m.size.Height))
	q := func(v float64) uint16 {
		return uint16(math.Round(math.Max(0, math.Min(1, v)) * 0xffff))
	}
	for y := 0; y < m.size.Height; y++ {
		for x := 0; x < m.size.Width; x++ {
			c := m.pix[m.offset(x, y, z)]
			out.SetNRGBA64(x, y, color.NRGBA64{R: q(c.R), G: q(c.G), B: q(c.B), A: q(c.A)})
		}
	}
	return out, nil
}
