package pixel

import (
	"math"
)

type channel uint8

const (
	chR channel = iota
	chG
	chB
	chA
	chL // luminance: decodes into R, G and B
	chX // padding: ignored on decode, written as all ones
)

type encoding uint8

const (
	encUNorm encoding = iota
	encSNorm
	encUInt
)

// field is one channel stored in bits [shift, shift+bits) of the
// little-endian pixel word.
type field struct {
	ch    channel
	shift uint
	bits  uint
}

func (f field) mask() uint64 {
	return (uint64(1) << f.bits) - 1
}

// packedFormat is an uncompressed layout of at most 8 bytes per pixel whose
// channels are integer bit fields.
type packedFormat struct {
	tag    Tag
	name   string
	bpp    int
	enc    encoding
	srgb   bool
	fields []field
}

func packed(tag Tag, name string, bpp int, enc encoding, fields ...field) *packedFormat {
	return &packedFormat{tag: tag, name: name, bpp: bpp, enc: enc, fields: fields}
}

func rgba8(tag Tag, name string, enc encoding, srgb bool) *packedFormat {
	f := packed(tag, name, 4, enc,
		field{chR, 0, 8}, field{chG, 8, 8}, field{chB, 16, 8}, field{chA, 24, 8})
	f.srgb = srgb
	return f
}

func (f *packedFormat) Tag() Tag         { return f.tag }
func (f *packedFormat) Name() string     { return f.name }
func (f *packedFormat) Normalized() bool { return f.enc != encUInt }
func (f *packedFormat) Compressed() bool { return false }

// BytesPerPixel returns the pixel stride.
func (f *packedFormat) BytesPerPixel() int { return f.bpp }

func (f *packedFormat) Min() Color {
	lo, _ := f.bounds()
	return lo
}

func (f *packedFormat) Max() Color {
	_, hi := f.bounds()
	return hi
}

func (f *packedFormat) bounds() (lo, hi Color) {
	lo, hi = Color{A: 1}, Color{A: 1}
	for _, fd := range f.fields {
		var l, h float64
		switch f.enc {
		case encUNorm:
			l, h = 0, 1
		case encSNorm:
			l, h = -1, 1
		case encUInt:
			l, h = 0, float64(fd.mask())
		}
		setChannel(&lo, fd.ch, l)
		setChannel(&hi, fd.ch, h)
	}
	return lo, hi
}

func (f *packedFormat) ByteCount(size Size) (total, rowPitch, slicePitch int) {
	rowPitch = size.Width * f.bpp
	slicePitch = rowPitch * size.Height
	return slicePitch * size.Depth, rowPitch, slicePitch
}

func (f *packedFormat) Decode(src []byte, size Size, dst []Color) error {
	if err := checkBuffers(f, size, len(src), len(dst)); err != nil {
		return err
	}
	for i := range dst {
		word := readWord(src[i*f.bpp : (i+1)*f.bpp])
		c := Color{A: 1}
		for _, fd := range f.fields {
			if fd.ch == chX {
				continue
			}
			v := f.decodeField(fd, (word>>fd.shift)&fd.mask())
			if f.srgb && fd.ch <= chB {
				v = srgbToLinear(v)
			}
			setChannel(&c, fd.ch, v)
		}
		dst[i] = c
	}
	return nil
}

func (f *packedFormat) Encode(src []Color, size Size, dst []byte) error {
	if err := checkBuffers(f, size, len(dst), len(src)); err != nil {
		return err
	}
	for i, c := range src {
		var word uint64
		for _, fd := range f.fields {
			var raw uint64
			if fd.ch == chX {
				raw = fd.mask()
			} else {
				v := getChannel(c, fd.ch)
				if f.srgb && fd.ch <= chB {
					v = linearToSrgb(clamp(v, 0, 1))
				}
				raw = f.encodeField(fd, v)
			}
			word |= (raw & fd.mask()) << fd.shift
		}
		writeWord(dst[i*f.bpp:(i+1)*f.bpp], word)
	}
	return nil
}

func (f *packedFormat) decodeField(fd field, raw uint64) float64 {
	switch f.enc {
	case encSNorm:
		smax := float64(fd.mask() >> 1)
		v := int64(raw)
		if raw&(1<<(fd.bits-1)) != 0 {
			v -= int64(1) << fd.bits
		}
		return math.Max(float64(v)/smax, -1)
	case encUInt:
		return float64(raw)
	default:
		return float64(raw) / float64(fd.mask())
	}
}

func (f *packedFormat) encodeField(fd field, v float64) uint64 {
	switch f.enc {
	case encSNorm:
		smax := float64(fd.mask() >> 1)
		return uint64(int64(math.Round(clamp(v, -1, 1) * smax)))
	case encUInt:
		return uint64(math.Round(clamp(v, 0, float64(fd.mask()))))
	default:
		return uint64(math.Round(clamp(v, 0, 1) * float64(fd.mask())))
	}
}

func readWord(b []byte) uint64 {
	var w uint64
	for i := len(b) - 1; i >= 0; i-- {
		w = w<<8 | uint64(b[i])
	}
	return w
}

func writeWord(b []byte, w uint64) {
	for i := range b {
		b[i] = byte(w)
		w >>= 8
	}
}

func getChannel(c Color, ch channel) float64 {
	switch ch {
	case chR:
		return c.R
	case chG:
		return c.G
	case chB:
		return c.B
	case chA:
		return c.A
	case chL:
		return c.Luma()
	}
	return 0
}

func setChannel(c *Color, ch channel, v float64) {
	switch ch {
	case chR:
		c.R = v
	case chG:
		c.G = v
	case chB:
		c.B = v
	case chA:
		c.A = v
	case chL:
		c.R, c.G, c.B = v, v, v
	}
}
