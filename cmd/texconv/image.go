package main

import (
	"bufio"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/goopsie/texforge/pkg/dds"
	"github.com/goopsie/texforge/pkg/pixel"
	"github.com/goopsie/texforge/pkg/raster"
	"github.com/goopsie/texforge/pkg/texture"
)

// outputOptions controls how an image is written when the destination is
// a DDS file.
type outputOptions struct {
	format   pixel.Format
	mips     bool
	filter   raster.Filter
	extended bool
}

func ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// loadResource reads a DDS file.
func loadResource(path string) (*texture.Resource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}
	defer f.Close()

	res, err := dds.Decode(bufio.NewReader(f))
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return res, nil
}

// loadImage reads the first mip of the first slice of a DDS file, or any
// png, bmp, tiff or tga image, as a raster image.
func loadImage(path string) (*raster.Image, error) {
	if ext(path) == ".dds" {
		res, err := loadResource(path)
		if err != nil {
			return nil, err
		}
		return raster.FromResource(res, 0, 0)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}
	defer f.Close()

	var img image.Image
	r := bufio.NewReader(f)
	switch ext(path) {
	case ".tga":
		img, err = tga.Decode(r)
	case ".bmp":
		img, err = bmp.Decode(r)
	case ".tif", ".tiff":
		img, err = tiff.Decode(r)
	default:
		img, _, err = image.Decode(r)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return raster.FromImage(img)
}

// saveImage writes img to path, choosing the container from the extension.
// DDS outputs are encoded with opts; other outputs store the first depth
// slice.
func saveImage(path string, img *raster.Image, opts outputOptions) error {
	if ext(path) == ".dds" {
		res, err := buildResource(img, opts)
		if err != nil {
			return err
		}
		var ddsOpts []dds.EncodeOption
		if opts.extended {
			ddsOpts = append(ddsOpts, dds.WithExtendedHeader())
		}
		return saveResource(path, res, ddsOpts...)
	}

	rgba, err := img.ToNRGBA64(0)
	if err != nil {
		return err
	}
	return writeImage(path, rgba)
}

// buildResource converts img to a single-slice resource in opts.format,
// with a generated mip chain when opts.mips is set.
func buildResource(img *raster.Image, opts outputOptions) (*texture.Resource, error) {
	if opts.format == nil {
		return nil, errors.New("no output format")
	}
	chain := []*raster.Image{img}
	if opts.mips {
		var err error
		if chain, err = raster.GenerateMipmaps(img, opts.filter); err != nil {
			return nil, errors.Wrap(err, "generate mipmaps")
		}
	}
	return raster.ResourceFromMipmaps(chain, opts.format)
}

// writeImage writes a standard library image as png, bmp or tiff.
func writeImage(path string, img image.Image) error {
	return writeFile(path, func(w *bufio.Writer) error {
		switch ext(path) {
		case ".png":
			return png.Encode(w, img)
		case ".bmp":
			return bmp.Encode(w, img)
		case ".tif", ".tiff":
			return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
		default:
			return errors.Newf("unsupported output extension %q", filepath.Ext(path))
		}
	})
}

// saveResource writes res as a DDS file.
func saveResource(path string, res *texture.Resource, opts ...dds.EncodeOption) error {
	return writeFile(path, func(w *bufio.Writer) error {
		return dds.Encode(w, res, opts...)
	})
}

func writeFile(path string, fn func(w *bufio.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create")
	}
	w := bufio.NewWriter(f)
	if err := fn(w); err != nil {
		f.Close()
		os.Remove(path)
		return errors.Wrapf(err, "write %s", path)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return errors.Wrap(err, "flush")
	}
	return f.Close()
}
