package pixel

import (
	"encoding/binary"
	"math"

	"github.com/x448/float16"
)

// floatFormat stores every channel as an IEEE float of the same width
// (2 or 4 bytes). Values are not normalized.
type floatFormat struct {
	tag      Tag
	name     string
	width    int
	channels []channel
}

func (f *floatFormat) Tag() Tag         { return f.tag }
func (f *floatFormat) Name() string     { return f.name }
func (f *floatFormat) Normalized() bool { return false }
func (f *floatFormat) Compressed() bool { return false }

// BytesPerPixel returns the pixel stride.
func (f *floatFormat) BytesPerPixel() int { return f.width * len(f.channels) }

func (f *floatFormat) limit() Color {
	if f.width == 2 {
		return maxFloat16
	}
	return maxFloat32
}

func (f *floatFormat) Min() Color { return f.limit().Scale(-1) }
func (f *floatFormat) Max() Color { return f.limit() }

func (f *floatFormat) ByteCount(size Size) (total, rowPitch, slicePitch int) {
	rowPitch = size.Width * f.BytesPerPixel()
	slicePitch = rowPitch * size.Height
	return slicePitch * size.Depth, rowPitch, slicePitch
}

func (f *floatFormat) Decode(src []byte, size Size, dst []Color) error {
	if err := checkBuffers(f, size, len(src), len(dst)); err != nil {
		return err
	}
	off := 0
	for i := range dst {
		c := Color{A: 1}
		for _, ch := range f.channels {
			var v float64
			if f.width == 2 {
				v = float64(float16.Frombits(binary.LittleEndian.Uint16(src[off:])).Float32())
			} else {
				v = float64(math.Float32frombits(binary.LittleEndian.Uint32(src[off:])))
			}
			setChannel(&c, ch, v)
			off += f.width
		}
		dst[i] = c
	}
	return nil
}

func (f *floatFormat) Encode(src []Color, size Size, dst []byte) error {
	if err := checkBuffers(f, size, len(dst), len(src)); err != nil {
		return err
	}
	off := 0
	for _, c := range src {
		for _, ch := range f.channels {
			v := float32(getChannel(c, ch))
			if f.width == 2 {
				binary.LittleEndian.PutUint16(dst[off:], float16.Fromfloat32(v).Bits())
			} else {
				binary.LittleEndian.PutUint32(dst[off:], math.Float32bits(v))
			}
			off += f.width
		}
	}
	return nil
}
