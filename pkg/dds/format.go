package dds

import (
	"fmt"

	"github.com/goopsie/texforge/pkg/pixel"
	"github.com/goopsie/texforge/pkg/texerr"
)

// DXGI_FORMAT values that appear in DX10 headers.
const (
	DXGIFormatUnknown           = 0
	DXGIFormatR32G32B32A32Float = 2
	DXGIFormatR16G16B16A16Float = 10
	DXGIFormatR16G16B16A16Unorm = 11
	DXGIFormatR10G10B10A2Unorm  = 24
	DXGIFormatR11G11B10Float    = 26
	DXGIFormatR8G8B8A8Unorm     = 28
	DXGIFormatR8G8B8A8UnormSRGB = 29
	DXGIFormatR8G8B8A8Uint      = 30
	DXGIFormatR8G8B8A8Snorm     = 31
	DXGIFormatR16G16Unorm       = 35
	DXGIFormatR32Float          = 41
	DXGIFormatR8G8Unorm         = 49
	DXGIFormatR16Float          = 54
	DXGIFormatR16Unorm          = 56
	DXGIFormatR8Unorm           = 61
	DXGIFormatA8Unorm           = 65
	DXGIFormatBC1Unorm          = 71
	DXGIFormatBC1UnormSRGB      = 72
	DXGIFormatBC2Unorm          = 74
	DXGIFormatBC2UnormSRGB      = 75
	DXGIFormatBC3Unorm          = 77
	DXGIFormatBC3UnormSRGB      = 78
	DXGIFormatBC4Unorm          = 80
	DXGIFormatBC4Snorm          = 81
	DXGIFormatBC5Unorm          = 83
	DXGIFormatBC5Snorm          = 84
	DXGIFormatB5G6R5Unorm       = 85
	DXGIFormatB5G5R5A1Unorm     = 86
	DXGIFormatB8G8R8A8Unorm     = 87
	DXGIFormatB8G8R8X8Unorm     = 88
	DXGIFormatB8G8R8A8UnormSRGB = 91
	DXGIFormatBC6HUF16          = 95
	DXGIFormatBC6HSF16          = 96
	DXGIFormatBC7Unorm          = 98
	DXGIFormatBC7UnormSRGB      = 99
)

// dxgiFormats maps the DXGI values this package can load and save.
// Anything else fails with an unsupported-format error.
var dxgiFormats = map[uint32]pixel.Tag{
	DXGIFormatR32G32B32A32Float: pixel.R32G32B32A32Float,
	DXGIFormatR16G16B16A16Float: pixel.R16G16B16A16Float,
	DXGIFormatR16G16B16A16Unorm: pixel.R16G16B16A16UNorm,
	DXGIFormatR10G10B10A2Unorm:  pixel.R10G10B10A2UNorm,
	DXGIFormatR8G8B8A8Unorm:     pixel.R8G8B8A8UNorm,
	DXGIFormatR8G8B8A8UnormSRGB: pixel.R8G8B8A8UNormSRGB,
	DXGIFormatR8G8B8A8Uint:      pixel.R8G8B8A8UInt,
	DXGIFormatR8G8B8A8Snorm:     pixel.R8G8B8A8SNorm,
	DXGIFormatR16G16Unorm:       pixel.R16G16UNorm,
	DXGIFormatR32Float:          pixel.R32Float,
	DXGIFormatR8G8Unorm:         pixel.R8G8UNorm,
	DXGIFormatR16Float:          pixel.R16Float,
	DXGIFormatR16Unorm:          pixel.R16UNorm,
	DXGIFormatR8Unorm:           pixel.R8UNorm,
	DXGIFormatA8Unorm:           pixel.A8UNorm,
	DXGIFormatBC1Unorm:          pixel.BC1,
	DXGIFormatBC2Unorm:          pixel.BC2,
	DXGIFormatBC3Unorm:          pixel.BC3,
	DXGIFormatBC4Unorm:          pixel.BC4,
	DXGIFormatBC5Unorm:          pixel.BC5,
	DXGIFormatB5G6R5Unorm:       pixel.B5G6R5UNorm,
	DXGIFormatB5G5R5A1Unorm:     pixel.B5G5R5A1UNorm,
	DXGIFormatB8G8R8A8Unorm:     pixel.B8G8R8A8UNorm,
	DXGIFormatB8G8R8X8Unorm:     pixel.B8G8R8X8UNorm,
	DXGIFormatBC7Unorm:          pixel.BC7,
}

var dxgiByTag = func() map[pixel.Tag]uint32 {
	m := make(map[pixel.Tag]uint32, len(dxgiFormats))
	for v, tag := range dxgiFormats {
		m[tag] = v
	}
	return m
}()

// FormatName returns a human-readable name for a DXGI_FORMAT value.
func FormatName(format uint32) string {
	switch format {
	case DXGIFormatR11G11B10Float:
		return "R11G11B10_FLOAT"
	case DXGIFormatBC1UnormSRGB:
		return "BC1_UNORM_SRGB"
	case DXGIFormatBC2UnormSRGB:
		return "BC2_UNORM_SRGB"
	case DXGIFormatBC3UnormSRGB:
		return "BC3_UNORM_SRGB"
	case DXGIFormatBC4Snorm:
		return "BC4_SNORM"
	case DXGIFormatBC5Snorm:
		return "BC5_SNORM"
	case DXGIFormatB8G8R8A8UnormSRGB:
		return "B8G8R8A8_UNORM_SRGB"
	case DXGIFormatBC6HUF16:
		return "BC6H_UF16"
	case DXGIFormatBC6HSF16:
		return "BC6H_SF16"
	case DXGIFormatBC7UnormSRGB:
		return "BC7_UNORM_SRGB"
	}
	if tag, ok := dxgiFormats[format]; ok {
		return tag.String()
	}
	return fmt.Sprintf("UNKNOWN(%d)", format)
}

func formatFromDXGI(v uint32) (pixel.Format, error) {
	tag, ok := dxgiFormats[v]
	if !ok {
		return nil, texerr.Unsupportedf("dds: unsupported DXGI format %s", FormatName(v))
	}
	return tag.Format(), nil
}

// legacyFourCC maps the FourCC codes recognized in legacy headers.
var legacyFourCC = map[[4]byte]pixel.Tag{
	{'D', 'X', 'T', '1'}: pixel.BC1,
	{'D', 'X', 'T', '2'}: pixel.DXT2,
	{'D', 'X', 'T', '3'}: pixel.BC2,
	{'D', 'X', 'T', '5'}: pixel.BC3,
}

// saveFourCC lists the block formats written with a legacy FourCC.
var saveFourCC = map[pixel.Tag][4]byte{
	pixel.BC1: {'D', 'X', 'T', '1'},
	pixel.BC2: {'D', 'X', 'T', '3'},
	pixel.BC3: {'D', 'X', 'T', '5'},
}

// legacyMask describes an uncompressed format by its legacy bit masks.
type legacyMask struct {
	tag   pixel.Tag
	flags uint32
	bits  uint32
	r     uint32
	g     uint32
	b     uint32
	a     uint32
}

var legacyMasks = []legacyMask{
	{pixel.R8G8B8A8UNorm, PFRGB | PFAlphaPixels, 32, 0x000000ff, 0x0000ff00, 0x00ff0000, 0xff000000},
	{pixel.B8G8R8A8UNorm, PFRGB | PFAlphaPixels, 32, 0x00ff0000, 0x0000ff00, 0x000000ff, 0xff000000},
	{pixel.B8G8R8X8UNorm, PFRGB, 32, 0x00ff0000, 0x0000ff00, 0x000000ff, 0},
	{pixel.R8G8B8UNorm, PFRGB, 24, 0x00ff0000, 0x0000ff00, 0x000000ff, 0},
	{pixel.B5G6R5UNorm, PFRGB, 16, 0xf800, 0x07e0, 0x001f, 0},
	{pixel.B5G5R5A1UNorm, PFRGB | PFAlphaPixels, 16, 0x7c00, 0x03e0, 0x001f, 0x8000},
	{pixel.R10G10B10A2UNorm, PFRGB | PFAlphaPixels, 32, 0x000003ff, 0x000ffc00, 0x3ff00000, 0xc0000000},
	{pixel.R16G16UNorm, PFRGB, 32, 0x0000ffff, 0xffff0000, 0, 0},
	{pixel.L8UNorm, PFLuminance, 8, 0xff, 0, 0, 0},
	{pixel.A8UNorm, PFAlpha, 8, 0, 0, 0, 0xff},
}

const pfKindMask = PFRGB | PFLuminance | PFAlpha

func (m legacyMask) matches(pf *PixelFormat) bool {
	return pf.Flags&pfKindMask == m.flags&pfKindMask &&
		pf.RGBBitCount == m.bits &&
		pf.RBitMask == m.r && pf.GBitMask == m.g && pf.BBitMask == m.b &&
		pf.ABitMask == m.a
}

func (m legacyMask) pixelFormat() PixelFormat {
	return PixelFormat{
		Size:        PixelFormatSize,
		Flags:       m.flags,
		RGBBitCount: m.bits,
		RBitMask:    m.r,
		GBitMask:    m.g,
		BBitMask:    m.b,
		ABitMask:    m.a,
	}
}

// formatFromLegacy selects the format of a header without a DX10 block.
// The header must already be fixed up.
func formatFromLegacy(pf *PixelFormat) (pixel.Format, error) {
	if pf.Flags&PFFourCC != 0 {
		tag, ok := legacyFourCC[pf.FourCC]
		if !ok {
			return nil, texerr.Unsupportedf("dds: unsupported FourCC %q", pf.FourCC[:])
		}
		return tag.Format(), nil
	}
	for _, m := range legacyMasks {
		if m.matches(pf) {
			return m.tag.Format(), nil
		}
	}
	return nil, texerr.Unsupportedf("dds: unsupported pixel format (flags 0x%x, %d bits, masks %08x %08x %08x %08x)",
		pf.Flags, pf.RGBBitCount, pf.RBitMask, pf.GBitMask, pf.BBitMask, pf.ABitMask)
}

// legacyPixelFormat returns the legacy description of f, if it has one.
func legacyPixelFormat(f pixel.Format) (PixelFormat, bool) {
	if cc, ok := saveFourCC[f.Tag()]; ok {
		return PixelFormat{Size: PixelFormatSize, Flags: PFFourCC, FourCC: cc}, true
	}
	for _, m := range legacyMasks {
		if m.tag == f.Tag() {
			return m.pixelFormat(), true
		}
	}
	return PixelFormat{}, false
}
