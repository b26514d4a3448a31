package dds

import (
	"io"

	"github.com/cockroachdb/errors"

	"github.com/goopsie/texforge/pkg/texerr"
	"github.com/goopsie/texforge/pkg/texture"
)

type encodeConfig struct {
	extended bool
}

// EncodeOption configures Encode.
type EncodeOption func(*encodeConfig)

// WithExtendedHeader always writes a DX10 header, even for formats that
// have a legacy description.
func WithExtendedHeader() EncodeOption {
	return func(c *encodeConfig) {
		c.extended = true
	}
}

// BuildHeader derives the headers that Encode would write for res. The
// DX10 header is nil when the legacy header can describe res.
func BuildHeader(res *texture.Resource, opts ...EncodeOption) (*Header, *DX10Header, error) {
	cfg := encodeConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	format := res.Format()
	size := res.Size()
	arrays := res.ArraySize()
	if res.Cubemap() {
		arrays /= 6
	}

	h := &Header{
		Magic:       Magic,
		Size:        HeaderSize,
		Width:       uint32(size.Width),
		Height:      uint32(size.Height),
		Depth:       uint32(size.Depth),
		MipMapCount: uint32(res.MipLevels()),
	}
	if size.Depth > 1 {
		h.Caps2 |= Caps2Volume
	}
	if res.Cubemap() {
		h.Caps2 |= Caps2Cubemap | Caps2CubemapAllFaces
	}

	pf, legacy := legacyPixelFormat(format)
	var ext *DX10Header
	if !legacy || arrays > 1 || cfg.extended {
		dxgi, ok := dxgiByTag[format.Tag()]
		if !ok {
			return nil, nil, texerr.Unsupportedf("dds: format %s has no DXGI mapping", format.Name())
		}
		pf = PixelFormat{Size: PixelFormatSize, Flags: PFFourCC, FourCC: FourCCDX10}
		ext = &DX10Header{
			DXGIFormat:        dxgi,
			ResourceDimension: DimensionTexture2D,
			ArraySize:         uint32(arrays),
		}
		if size.Depth > 1 {
			ext.ResourceDimension = DimensionTexture3D
		}
		if res.Cubemap() {
			ext.MiscFlag |= MiscTextureCube
		}
	}
	h.PixelFormat = pf

	h.Fixup()
	_, rowPitch, slicePitch := format.ByteCount(res.MipSliceSize(0))
	h.setPitch(format.Compressed(), rowPitch, slicePitch)
	return h, ext, nil
}

// Encode writes res as a DDS file. Unsupported formats fail before any
// byte is written; a failure while writing subresources leaves a partial
// file.
func Encode(w io.Writer, res *texture.Resource, opts ...EncodeOption) error {
	h, ext, err := BuildHeader(res, opts...)
	if err != nil {
		return err
	}

	buf := make([]byte, encodedHeaderSize, encodedHeaderSize+DX10HeaderSize)
	h.EncodeTo(buf)
	if ext != nil {
		buf = buf[:encodedHeaderSize+DX10HeaderSize]
		ext.EncodeTo(buf[encodedHeaderSize:])
	}
	if _, err := w.Write(buf); err != nil {
		return errors.Wrap(err, "dds: write header")
	}

	return res.Each(func(mip, slice int, b []byte) error {
		if _, err := w.Write(b); err != nil {
			return errors.Wrapf(err, "dds: write mip %d slice %d", mip, slice)
		}
		return nil
	})
}
