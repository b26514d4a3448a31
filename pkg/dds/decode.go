package dds

import (
	"io"

	"github.com/goopsie/texforge/pkg/pixel"
	"github.com/goopsie/texforge/pkg/texerr"
	"github.com/goopsie/texforge/pkg/texture"
)

// maxDimension bounds header dimensions so a corrupt header cannot request
// an absurd allocation.
const maxDimension = 1 << 16

// maxDataSize bounds the subresource bytes a header may describe. Per-axis
// limits alone still allow a volume whose product overflows an allocation.
const maxDataSize = 1 << 32

// Info is the parsed and normalized header of a file together with the
// resource layout it describes.
type Info struct {
	Header Header
	// DX10 is nil for legacy files.
	DX10 *DX10Header

	Format    pixel.Format
	Size      pixel.Size
	MipLevels int
	// ArraySize counts array slices; for cubemaps it counts faces.
	ArraySize int
	Cubemap   bool
}

// DataSize returns the number of subresource bytes following the headers.
func (info *Info) DataSize() int {
	n := 0
	for mip := 0; mip < info.MipLevels; mip++ {
		total, _, _ := info.Format.ByteCount(texture.MipSliceSize(info.Size, mip))
		n += total
	}
	return n * info.ArraySize
}

// DecodeHeader reads the headers, applies Fixup and resolves the pixel
// format. On return r is positioned at the first subresource byte.
func DecodeHeader(r io.Reader) (*Info, error) {
	var buf [encodedHeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, texerr.WrapMalformed(err, "dds: read header")
	}

	info := &Info{}
	h := &info.Header
	h.DecodeFrom(buf[:])
	if err := h.Validate(); err != nil {
		return nil, err
	}

	if h.IsDX10() {
		var ext [DX10HeaderSize]byte
		if _, err := io.ReadFull(r, ext[:]); err != nil {
			return nil, texerr.WrapMalformed(err, "dds: read DX10 header")
		}
		info.DX10 = &DX10Header{}
		info.DX10.DecodeFrom(ext[:])
	}

	h.Fixup()

	var err error
	if info.DX10 != nil {
		info.Format, err = formatFromDXGI(info.DX10.DXGIFormat)
	} else {
		info.Format, err = formatFromLegacy(&h.PixelFormat)
	}
	if err != nil {
		return nil, err
	}

	if err := info.layout(); err != nil {
		return nil, err
	}
	return info, nil
}

// layout derives size, mip and array counts from the normalized headers.
func (info *Info) layout() error {
	h := &info.Header
	if h.Width > maxDimension || h.Height > maxDimension || h.Depth > maxDimension {
		return texerr.Malformedf("dds: dimensions %dx%dx%d too large", h.Width, h.Height, h.Depth)
	}

	volume := h.Caps2&Caps2Volume != 0
	info.Cubemap = h.Caps2&Caps2Cubemap != 0
	info.ArraySize = 1
	if ext := info.DX10; ext != nil {
		volume = ext.ResourceDimension == DimensionTexture3D
		info.Cubemap = ext.MiscFlag&MiscTextureCube != 0
		info.ArraySize = max(int(ext.ArraySize), 1)
	}
	if info.Cubemap && volume {
		return texerr.Malformedf("dds: header describes both a cubemap and a volume")
	}
	if info.Cubemap {
		info.ArraySize *= 6
	}

	info.Size = pixel.Size{Width: max(int(h.Width), 1), Height: max(int(h.Height), 1), Depth: 1}
	if volume {
		info.Size.Depth = int(h.Depth)
	}
	if info.ArraySize > maxDimension {
		return texerr.Malformedf("dds: array size %d too large", info.ArraySize)
	}

	info.MipLevels = int(h.MipMapCount)
	if full := texture.MipLevels(info.Size); info.MipLevels > full {
		return texerr.Malformedf("dds: %d mip levels for size %s, at most %d", info.MipLevels, info.Size, full)
	}
	if _, ok := info.boundedDataSize(maxDataSize); !ok {
		return texerr.Malformedf("dds: %s %s with %d mips and %d slices exceeds %d bytes",
			info.Format.Name(), info.Size, info.MipLevels, info.ArraySize, maxDataSize)
	}
	return nil
}

// boundedDataSize returns DataSize, or false once it would exceed limit.
// Each mip is at most 2^48 texels of 16 bytes, so no single term
// overflows an int64.
func (info *Info) boundedDataSize(limit int64) (int64, bool) {
	var n int64
	for mip := 0; mip < info.MipLevels; mip++ {
		total, _, _ := info.Format.ByteCount(texture.MipSliceSize(info.Size, mip))
		n += int64(total)
		if n > limit {
			return 0, false
		}
	}
	if n > 0 && int64(info.ArraySize) > limit/n {
		return 0, false
	}
	return n * int64(info.ArraySize), true
}

// Decode reads a whole file into a new resource. No resource is returned
// on error.
func Decode(r io.Reader) (*texture.Resource, error) {
	info, err := DecodeHeader(r)
	if err != nil {
		return nil, err
	}
	// In-memory readers report what is left, so a short file fails before
	// the resource is allocated.
	if lr, ok := r.(interface{ Len() int }); ok && lr.Len() < info.DataSize() {
		return nil, texerr.Malformedf("dds: %d data bytes, header describes %d", lr.Len(), info.DataSize())
	}

	res, err := texture.New(info.Size, info.MipLevels, info.ArraySize, info.Format)
	if err != nil {
		return nil, texerr.WrapMalformed(err, "dds: allocate resource")
	}
	if err := res.SetCubemap(info.Cubemap); err != nil {
		return nil, texerr.WrapMalformed(err, "dds: cubemap")
	}

	err = res.Each(func(mip, slice int, b []byte) error {
		if _, err := io.ReadFull(r, b); err != nil {
			return texerr.WrapMalformed(err, "dds: read mip %d slice %d", mip, slice)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
