package pixel

import (
	"math"

	"github.com/mauserzjeh/dxt"

	"github.com/goopsie/texforge/pkg/texerr"
)

// blockCodec converts whole 4x4 block grids. decode receives one depth
// slice of blocks and returns tightly packed 8-bit RGBA covering the
// block-aligned extent; encode packs one block of 16 RGBA texels.
type blockCodec struct {
	decode      func(data []byte, width, height uint) ([]byte, error)
	encode      func(px *[16][4]uint8, out []byte)
	premultiply bool
}

var (
	bc1Codec = &blockCodec{decode: dxt.DecodeDXT1, encode: encodeBC1}
	bc2Codec = &blockCodec{decode: dxt.DecodeDXT3, encode: encodeBC2}
	bc3Codec = &blockCodec{decode: dxt.DecodeDXT5, encode: encodeBC3}
	// DXT2 is BC2 with premultiplied colour; it is only ever read.
	dxt2Codec = &blockCodec{decode: dxt.DecodeDXT3, premultiply: true}
)

// blockFormat is a four-component format stored as 4x4 texel blocks.
// A nil codec marks a layout whose size is known but whose conversion is
// not implemented.
type blockFormat struct {
	tag        Tag
	name       string
	blockBytes int
	codec      *blockCodec
}

func (f *blockFormat) Tag() Tag         { return f.tag }
func (f *blockFormat) Name() string     { return f.name }
func (f *blockFormat) Normalized() bool { return true }
func (f *blockFormat) Compressed() bool { return true }
func (f *blockFormat) Min() Color       { return Color{} }
func (f *blockFormat) Max() Color       { return White }

// BlockBytes returns the encoded size of one 4x4 block.
func (f *blockFormat) BlockBytes() int { return f.blockBytes }

// Implemented reports whether colours can be converted to and from f.
func (f *blockFormat) Implemented() bool { return f.codec != nil }

func blockCount(n int) int {
	return max((n+3)/4, 1)
}

func (f *blockFormat) ByteCount(size Size) (total, rowPitch, slicePitch int) {
	rowPitch = blockCount(size.Width) * f.blockBytes
	slicePitch = rowPitch * blockCount(size.Height)
	return slicePitch * size.Depth, rowPitch, slicePitch
}

func (f *blockFormat) Decode(src []byte, size Size, dst []Color) error {
	if f.codec == nil || f.codec.decode == nil {
		return texerr.Unsupportedf("pixel: decoding %s is not implemented", f.name)
	}
	if err := checkBuffers(f, size, len(src), len(dst)); err != nil {
		return err
	}

	_, _, slicePitch := f.ByteCount(size)
	bw, bh := blockCount(size.Width)*4, blockCount(size.Height)*4
	for z := 0; z < size.Depth; z++ {
		rgba, err := f.codec.decode(src[z*slicePitch:(z+1)*slicePitch], uint(bw), uint(bh))
		if err != nil {
			return texerr.WrapMalformed(err, "pixel: decode %s slice %d", f.name, z)
		}
		if len(rgba) < bw*bh*4 {
			return texerr.Malformedf("pixel: decode %s slice %d: got %d bytes, want %d", f.name, z, len(rgba), bw*bh*4)
		}

		for y := 0; y < size.Height; y++ {
			for x := 0; x < size.Width; x++ {
				p := rgba[(y*bw+x)*4:]
				c := Color{
					R: float64(p[0]) / 255,
					G: float64(p[1]) / 255,
					B: float64(p[2]) / 255,
					A: float64(p[3]) / 255,
				}
				if f.codec.premultiply && c.A > 0 {
					c.R = math.Min(c.R/c.A, 1)
					c.G = math.Min(c.G/c.A, 1)
					c.B = math.Min(c.B/c.A, 1)
				}
				dst[(z*size.Height+y)*size.Width+x] = c
			}
		}
	}
	return nil
}

func (f *blockFormat) Encode(src []Color, size Size, dst []byte) error {
	if f.codec == nil || f.codec.encode == nil {
		return texerr.Unsupportedf("pixel: encoding %s is not implemented", f.name)
	}
	if err := checkBuffers(f, size, len(dst), len(src)); err != nil {
		return err
	}

	off := 0
	var px [16][4]uint8
	for z := 0; z < size.Depth; z++ {
		for by := 0; by < blockCount(size.Height); by++ {
			for bx := 0; bx < blockCount(size.Width); bx++ {
				for i := 0; i < 16; i++ {
					// Texels past the edge repeat the last row/column so
					// they do not pull the endpoints.
					x := min(bx*4+i%4, size.Width-1)
					y := min(by*4+i/4, size.Height-1)
					px[i] = quantize8(src[(z*size.Height+y)*size.Width+x])
				}
				f.codec.encode(&px, dst[off:off+f.blockBytes])
				off += f.blockBytes
			}
		}
	}
	return nil
}

func quantize8(c Color) [4]uint8 {
	q := func(v float64) uint8 {
		return uint8(math.Round(clamp(v, 0, 1) * 255))
	}
	return [4]uint8{q(c.R), q(c.G), q(c.B), q(c.A)}
}
