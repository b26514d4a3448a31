// Package dds reads and writes DirectDraw Surface files as texture
// resources.
//
// A file is the "DDS " magic, a 124-byte header with an embedded 32-byte
// pixel format block, an optional 20-byte DX10 header and the
// subresources in resource order. Legacy headers are normalized by a fixup
// pass before they are trusted.
package dds

import (
	"encoding/binary"

	"github.com/goopsie/texforge/pkg/texerr"
)

const (
	// Magic is "DDS " read as a little-endian uint32.
	Magic = 0x20534444

	// HeaderSize is the value of the header size field.
	HeaderSize = 124
	// PixelFormatSize is the value of the pixel format size field.
	PixelFormatSize = 32
	// DX10HeaderSize is the encoded size of the DX10 header.
	DX10HeaderSize = 20

	// encodedHeaderSize covers the magic and the header.
	encodedHeaderSize = 4 + HeaderSize
)

// Header flags.
const (
	FlagCaps        = 0x00000001
	FlagHeight      = 0x00000002
	FlagWidth       = 0x00000004
	FlagPitch       = 0x00000008
	FlagPixelFormat = 0x00001000
	FlagMipMapCount = 0x00020000
	FlagLinearSize  = 0x00080000
	FlagDepth       = 0x00800000
)

// Pixel format flags.
const (
	PFAlphaPixels = 0x00000001
	PFAlpha       = 0x00000002
	PFFourCC      = 0x00000004
	PFRGB         = 0x00000040
	PFYUV         = 0x00000200
	PFLuminance   = 0x00020000
)

// Surface capability flags.
const (
	CapsComplex = 0x00000008
	CapsTexture = 0x00001000
	CapsMipmap  = 0x00400000

	Caps2Cubemap         = 0x00000200
	Caps2CubemapAllFaces = 0x0000FC00
	Caps2Volume          = 0x00200000
)

// DX10 resource dimensions and misc flags.
const (
	DimensionTexture1D = 2
	DimensionTexture2D = 3
	DimensionTexture3D = 4

	MiscTextureCube = 0x4
)

// FourCCDX10 marks a file carrying a DX10 header.
var FourCCDX10 = [4]byte{'D', 'X', '1', '0'}

// Header is the fixed 124-byte file header, preceded on disk by the magic.
type Header struct {
	Magic             uint32
	Size              uint32
	Flags             uint32
	Height            uint32
	Width             uint32
	PitchOrLinearSize uint32
	Depth             uint32
	MipMapCount       uint32
	Reserved1         [11]uint32
	PixelFormat       PixelFormat
	Caps              uint32
	Caps2             uint32
	Caps3             uint32
	Caps4             uint32
	Reserved2         uint32
}

// PixelFormat is the 32-byte legacy pixel format block.
type PixelFormat struct {
	Size        uint32
	Flags       uint32
	FourCC      [4]byte
	RGBBitCount uint32
	RBitMask    uint32
	GBitMask    uint32
	BBitMask    uint32
	ABitMask    uint32
}

// DX10Header is the extended header that follows Header when the FourCC
// is "DX10".
type DX10Header struct {
	DXGIFormat        uint32
	ResourceDimension uint32
	MiscFlag          uint32
	ArraySize         uint32
	MiscFlags2        uint32
}

// IsDX10 reports whether a DX10 header follows. The FourCC alone decides;
// some writers omit the FourCC pixel flag.
func (h *Header) IsDX10() bool {
	return h.PixelFormat.FourCC == FourCCDX10
}

// EncodeTo writes the magic and header to buf, which must hold at least
// 128 bytes.
func (h *Header) EncodeTo(buf []byte) {
	le := binary.LittleEndian
	le.PutUint32(buf[0:4], h.Magic)
	le.PutUint32(buf[4:8], h.Size)
	le.PutUint32(buf[8:12], h.Flags)
	le.PutUint32(buf[12:16], h.Height)
	le.PutUint32(buf[16:20], h.Width)
	le.PutUint32(buf[20:24], h.PitchOrLinearSize)
	le.PutUint32(buf[24:28], h.Depth)
	le.PutUint32(buf[28:32], h.MipMapCount)
	for i, v := range h.Reserved1 {
		le.PutUint32(buf[32+4*i:], v)
	}
	pf := &h.PixelFormat
	le.PutUint32(buf[76:80], pf.Size)
	le.PutUint32(buf[80:84], pf.Flags)
	copy(buf[84:88], pf.FourCC[:])
	le.PutUint32(buf[88:92], pf.RGBBitCount)
	le.PutUint32(buf[92:96], pf.RBitMask)
	le.PutUint32(buf[96:100], pf.GBitMask)
	le.PutUint32(buf[100:104], pf.BBitMask)
	le.PutUint32(buf[104:108], pf.ABitMask)
	le.PutUint32(buf[108:112], h.Caps)
	le.PutUint32(buf[112:116], h.Caps2)
	le.PutUint32(buf[116:120], h.Caps3)
	le.PutUint32(buf[120:124], h.Caps4)
	le.PutUint32(buf[124:128], h.Reserved2)
}

// DecodeFrom reads the magic and header from buf without validating them.
func (h *Header) DecodeFrom(buf []byte) {
	le := binary.LittleEndian
	h.Magic = le.Uint32(buf[0:4])
	h.Size = le.Uint32(buf[4:8])
	h.Flags = le.Uint32(buf[8:12])
	h.Height = le.Uint32(buf[12:16])
	h.Width = le.Uint32(buf[16:20])
	h.PitchOrLinearSize = le.Uint32(buf[20:24])
	h.Depth = le.Uint32(buf[24:28])
	h.MipMapCount = le.Uint32(buf[28:32])
	for i := range h.Reserved1 {
		h.Reserved1[i] = le.Uint32(buf[32+4*i:])
	}
	pf := &h.PixelFormat
	pf.Size = le.Uint32(buf[76:80])
	pf.Flags = le.Uint32(buf[80:84])
	copy(pf.FourCC[:], buf[84:88])
	pf.RGBBitCount = le.Uint32(buf[88:92])
	pf.RBitMask = le.Uint32(buf[92:96])
	pf.GBitMask = le.Uint32(buf[96:100])
	pf.BBitMask = le.Uint32(buf[100:104])
	pf.ABitMask = le.Uint32(buf[104:108])
	h.Caps = le.Uint32(buf[108:112])
	h.Caps2 = le.Uint32(buf[112:116])
	h.Caps3 = le.Uint32(buf[116:120])
	h.Caps4 = le.Uint32(buf[120:124])
	h.Reserved2 = le.Uint32(buf[124:128])
}

// Validate checks the fields that identify a DDS header.
func (h *Header) Validate() error {
	if h.Magic != Magic {
		return texerr.Malformedf("dds: invalid magic 0x%08x", h.Magic)
	}
	if h.Size != HeaderSize {
		return texerr.Malformedf("dds: header size %d, want %d", h.Size, HeaderSize)
	}
	if h.PixelFormat.Size != PixelFormatSize {
		return texerr.Malformedf("dds: pixel format size %d, want %d", h.PixelFormat.Size, PixelFormatSize)
	}
	return nil
}

// EncodeTo writes the DX10 header to buf, which must hold at least 20 bytes.
func (h *DX10Header) EncodeTo(buf []byte) {
	le := binary.LittleEndian
	le.PutUint32(buf[0:4], h.DXGIFormat)
	le.PutUint32(buf[4:8], h.ResourceDimension)
	le.PutUint32(buf[8:12], h.MiscFlag)
	le.PutUint32(buf[12:16], h.ArraySize)
	le.PutUint32(buf[16:20], h.MiscFlags2)
}

// DecodeFrom reads the DX10 header from buf.
func (h *DX10Header) DecodeFrom(buf []byte) {
	le := binary.LittleEndian
	h.DXGIFormat = le.Uint32(buf[0:4])
	h.ResourceDimension = le.Uint32(buf[4:8])
	h.MiscFlag = le.Uint32(buf[8:12])
	h.ArraySize = le.Uint32(buf[12:16])
	h.MiscFlags2 = le.Uint32(buf[16:20])
}

// Fixup normalizes flag combinations left by inconsistent writers. The
// required header flags are forced on, conflicting pixel flags are
// resolved in the order RGB, luminance, FourCC, YUV, alpha, and the
// cubemap, volume and mipmap state is mirrored into the capability bits.
// Zero depth and mip counts become 1.
func (h *Header) Fixup() {
	h.Flags |= FlagCaps | FlagHeight | FlagWidth | FlagPixelFormat

	pf := &h.PixelFormat
	switch {
	case pf.Flags&PFRGB != 0:
		pf.Flags &^= PFLuminance | PFFourCC | PFYUV | PFAlpha
	case pf.Flags&PFLuminance != 0:
		pf.Flags &^= PFFourCC | PFYUV | PFAlpha
	case pf.Flags&PFFourCC != 0:
		pf.Flags &^= PFYUV | PFAlpha
	case pf.Flags&PFYUV != 0:
		pf.Flags &^= PFAlpha
	}

	if h.Depth == 0 {
		h.Depth = 1
	}
	if h.MipMapCount == 0 {
		h.MipMapCount = 1
	}

	if h.Caps2&Caps2Cubemap != 0 {
		h.Caps |= CapsComplex
	}
	if h.Caps2&Caps2Volume != 0 {
		h.Caps |= CapsComplex
		h.Flags |= FlagDepth
	}
	if h.MipMapCount > 1 {
		h.Caps |= CapsComplex | CapsMipmap
		h.Flags |= FlagMipMapCount
	}
	h.Caps |= CapsTexture
}

// setPitch records the row pitch for uncompressed formats or the size of
// the top-level image for compressed ones.
func (h *Header) setPitch(compressed bool, rowPitch, slicePitch int) {
	h.Flags &^= FlagPitch | FlagLinearSize
	if compressed {
		h.Flags |= FlagLinearSize
		h.PitchOrLinearSize = uint32(slicePitch)
	} else {
		h.Flags |= FlagPitch
		h.PitchOrLinearSize = uint32(rowPitch)
	}
}
