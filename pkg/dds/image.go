package dds

import (
	"image"
	"image/color"
	"io"

	"github.com/goopsie/texforge/pkg/raster"
)

func init() {
	image.RegisterFormat("dds", "DDS ", DecodeImage, DecodeConfig)
}

// DecodeImage decodes the first depth slice of mip 0, array slice 0.
func DecodeImage(r io.Reader) (image.Image, error) {
	res, err := Decode(r)
	if err != nil {
		return nil, err
	}
	img, err := raster.FromResource(res, 0, 0)
	if err != nil {
		return nil, err
	}
	return img.ToNRGBA64(0)
}

// DecodeConfig returns the dimensions of mip 0 without reading pixel data.
func DecodeConfig(r io.Reader) (image.Config, error) {
	info, err := DecodeHeader(r)
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: color.NRGBA64Model,
		Width:      info.Size.Width,
		Height:     info.Size.Height,
	}, nil
}
