package pixel

import (
	"fmt"
	"math"

	"github.com/goopsie/texforge/pkg/texerr"
)

// Format describes one pixel encoding and converts between its bytes and
// canonical colours. Implementations are stateless.
type Format interface {
	// Tag is the closed identifier of the format.
	Tag() Tag
	// Name is the stable string key used when round-tripping formats.
	Name() string
	// Normalized reports whether decoded values map to [0,1] ([-1,1] when
	// signed) instead of the raw numeric range.
	Normalized() bool
	// Compressed reports whether pixels are stored as fixed-size 4x4 blocks.
	Compressed() bool
	// Min and Max are the smallest and largest representable colours.
	Min() Color
	Max() Color
	// ByteCount returns the total byte length, row pitch and slice pitch of
	// an image of the given size. Compressed formats count rows of blocks.
	ByteCount(size Size) (total, rowPitch, slicePitch int)
	// Decode converts src into size.Volume() colours written to dst.
	Decode(src []byte, size Size, dst []Color) error
	// Encode converts size.Volume() colours from src into dst.
	Encode(src []Color, size Size, dst []byte) error
}

// Tag identifies a pixel format. The set is closed; switches over Tag
// are expected to be exhaustive.
type Tag uint8

const (
	Unknown Tag = iota
	R8G8B8A8UNorm
	R8G8B8A8UNormSRGB
	R8G8B8A8SNorm
	R8G8B8A8UInt
	B8G8R8A8UNorm
	B8G8R8X8UNorm
	R8G8B8UNorm
	B5G6R5UNorm
	B5G5R5A1UNorm
	R10G10B10A2UNorm
	R8UNorm
	A8UNorm
	L8UNorm
	R8G8UNorm
	R16UNorm
	R16G16UNorm
	R16G16B16A16UNorm
	R16Float
	R16G16B16A16Float
	R32Float
	R32G32B32A32Float
	BC1
	BC2
	BC3
	DXT2
	BC4
	BC5
	BC7

	tagCount
)

// Format returns the descriptor for t, or nil for Unknown and out-of-range
// values.
func (t Tag) Format() Format {
	if t == Unknown || t >= tagCount {
		return nil
	}
	return formats[t]
}

func (t Tag) String() string {
	if f := t.Format(); f != nil {
		return f.Name()
	}
	return fmt.Sprintf("UNKNOWN(%d)", uint8(t))
}

// formats is the immutable descriptor table, indexed by Tag.
var formats = [tagCount]Format{
	R8G8B8A8UNorm:     rgba8(R8G8B8A8UNorm, "R8G8B8A8_UNORM", encUNorm, false),
	R8G8B8A8UNormSRGB: rgba8(R8G8B8A8UNormSRGB, "R8G8B8A8_UNORM_SRGB", encUNorm, true),
	R8G8B8A8SNorm:     rgba8(R8G8B8A8SNorm, "R8G8B8A8_SNORM", encSNorm, false),
	R8G8B8A8UInt:      rgba8(R8G8B8A8UInt, "R8G8B8A8_UINT", encUInt, false),
	B8G8R8A8UNorm: packed(B8G8R8A8UNorm, "B8G8R8A8_UNORM", 4, encUNorm,
		field{chB, 0, 8}, field{chG, 8, 8}, field{chR, 16, 8}, field{chA, 24, 8}),
	B8G8R8X8UNorm: packed(B8G8R8X8UNorm, "B8G8R8X8_UNORM", 4, encUNorm,
		field{chB, 0, 8}, field{chG, 8, 8}, field{chR, 16, 8}, field{chX, 24, 8}),
	R8G8B8UNorm: packed(R8G8B8UNorm, "R8G8B8_UNORM", 3, encUNorm,
		field{chB, 0, 8}, field{chG, 8, 8}, field{chR, 16, 8}),
	B5G6R5UNorm: packed(B5G6R5UNorm, "B5G6R5_UNORM", 2, encUNorm,
		field{chB, 0, 5}, field{chG, 5, 6}, field{chR, 11, 5}),
	B5G5R5A1UNorm: packed(B5G5R5A1UNorm, "B5G5R5A1_UNORM", 2, encUNorm,
		field{chB, 0, 5}, field{chG, 5, 5}, field{chR, 10, 5}, field{chA, 15, 1}),
	R10G10B10A2UNorm: packed(R10G10B10A2UNorm, "R10G10B10A2_UNORM", 4, encUNorm,
		field{chR, 0, 10}, field{chG, 10, 10}, field{chB, 20, 10}, field{chA, 30, 2}),
	R8UNorm:   packed(R8UNorm, "R8_UNORM", 1, encUNorm, field{chR, 0, 8}),
	A8UNorm:   packed(A8UNorm, "A8_UNORM", 1, encUNorm, field{chA, 0, 8}),
	L8UNorm:   packed(L8UNorm, "L8_UNORM", 1, encUNorm, field{chL, 0, 8}),
	R8G8UNorm: packed(R8G8UNorm, "R8G8_UNORM", 2, encUNorm, field{chR, 0, 8}, field{chG, 8, 8}),
	R16UNorm:  packed(R16UNorm, "R16_UNORM", 2, encUNorm, field{chR, 0, 16}),
	R16G16UNorm: packed(R16G16UNorm, "R16G16_UNORM", 4, encUNorm,
		field{chR, 0, 16}, field{chG, 16, 16}),
	R16G16B16A16UNorm: packed(R16G16B16A16UNorm, "R16G16B16A16_UNORM", 8, encUNorm,
		field{chR, 0, 16}, field{chG, 16, 16}, field{chB, 32, 16}, field{chA, 48, 16}),

	R16Float:          &floatFormat{tag: R16Float, name: "R16_FLOAT", width: 2, channels: []channel{chR}},
	R16G16B16A16Float: &floatFormat{tag: R16G16B16A16Float, name: "R16G16B16A16_FLOAT", width: 2, channels: []channel{chR, chG, chB, chA}},
	R32Float:          &floatFormat{tag: R32Float, name: "R32_FLOAT", width: 4, channels: []channel{chR}},
	R32G32B32A32Float: &floatFormat{tag: R32G32B32A32Float, name: "R32G32B32A32_FLOAT", width: 4, channels: []channel{chR, chG, chB, chA}},

	BC1:  &blockFormat{tag: BC1, name: "BC1_UNORM", blockBytes: 8, codec: bc1Codec},
	BC2:  &blockFormat{tag: BC2, name: "BC2_UNORM", blockBytes: 16, codec: bc2Codec},
	BC3:  &blockFormat{tag: BC3, name: "BC3_UNORM", blockBytes: 16, codec: bc3Codec},
	DXT2: &blockFormat{tag: DXT2, name: "DXT2", blockBytes: 16, codec: dxt2Codec},
	BC4:  &blockFormat{tag: BC4, name: "BC4_UNORM", blockBytes: 8},
	BC5:  &blockFormat{tag: BC5, name: "BC5_UNORM", blockBytes: 16},
	BC7:  &blockFormat{tag: BC7, name: "BC7_UNORM", blockBytes: 16},
}

var byName = func() map[string]Format {
	m := make(map[string]Format, len(formats))
	for _, f := range formats {
		if f != nil {
			m[f.Name()] = f
		}
	}
	return m
}()

// ByTag returns the format for t, or an UnsupportedFormat error when t has
// no descriptor.
func ByTag(t Tag) (Format, error) {
	f := t.Format()
	if f == nil {
		return nil, texerr.Unsupportedf("pixel: unknown format tag %d", uint8(t))
	}
	return f, nil
}

// Lookup returns the format registered under name.
func Lookup(name string) (Format, error) {
	f, ok := byName[name]
	if !ok {
		return nil, texerr.Unsupportedf("pixel: unknown format %q", name)
	}
	return f, nil
}

// All returns every known format in Tag order.
func All() []Format {
	out := make([]Format, 0, len(formats))
	for _, f := range formats {
		if f != nil {
			out = append(out, f)
		}
	}
	return out
}

// Equal reports whether a and b are the same format. Nil formats are never
// equal.
func Equal(a, b Format) bool {
	return a != nil && b != nil && a.Tag() == b.Tag()
}

// DecodeAll decodes src into a newly allocated colour slice.
func DecodeAll(f Format, src []byte, size Size) ([]Color, error) {
	dst := make([]Color, size.Volume())
	if err := f.Decode(src, size, dst); err != nil {
		return nil, err
	}
	return dst, nil
}

// EncodeAll encodes colours into a newly allocated byte slice.
func EncodeAll(f Format, src []Color, size Size) ([]byte, error) {
	total, _, _ := f.ByteCount(size)
	dst := make([]byte, total)
	if err := f.Encode(src, size, dst); err != nil {
		return nil, err
	}
	return dst, nil
}

// checkBuffers validates the argument lengths shared by every Decode and
// Encode implementation.
func checkBuffers(f Format, size Size, nbytes, ncolors int) error {
	if !size.Valid() {
		return texerr.Preconditionf("pixel: %s: invalid size %s", f.Name(), size)
	}
	total, _, _ := f.ByteCount(size)
	if nbytes != total {
		return texerr.Preconditionf("pixel: %s: byte buffer length %d, want %d", f.Name(), nbytes, total)
	}
	if ncolors != size.Volume() {
		return texerr.Preconditionf("pixel: %s: colour buffer length %d, want %d", f.Name(), ncolors, size.Volume())
	}
	return nil
}

func uniform(v float64) Color {
	return Color{v, v, v, v}
}

var (
	maxFloat32 = uniform(math.MaxFloat32)
	maxFloat16 = uniform(65504)
)
