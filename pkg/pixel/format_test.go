package pixel

import (
	"bytes"
	"math"
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/goopsie/texforge/pkg/texerr"
)

func TestTable(t *testing.T) {
	for tag := Tag(1); tag < tagCount; tag++ {
		f := tag.Format()
		if f == nil {
			t.Fatalf("tag %d has no descriptor", tag)
		}
		if f.Tag() != tag {
			t.Errorf("%s: Tag() = %d, want %d", f.Name(), f.Tag(), tag)
		}
		got, err := Lookup(f.Name())
		if err != nil {
			t.Fatalf("Lookup(%q): %v", f.Name(), err)
		}
		if !Equal(got, f) {
			t.Errorf("Lookup(%q) returned %s", f.Name(), got.Name())
		}
	}

	if Unknown.Format() != nil {
		t.Error("Unknown should have no descriptor")
	}
	if _, err := ByTag(tagCount); !errors.Is(err, texerr.ErrUnsupportedFormat) {
		t.Errorf("ByTag(out of range) = %v, want unsupported", err)
	}
	if _, err := Lookup("R9G9B9E5_SHAREDEXP"); !errors.Is(err, texerr.ErrUnsupportedFormat) {
		t.Errorf("Lookup(unknown) = %v, want unsupported", err)
	}
	if Equal(nil, nil) {
		t.Error("nil formats compared equal")
	}
	if len(All()) != int(tagCount)-1 {
		t.Errorf("All() returned %d formats, want %d", len(All()), tagCount-1)
	}
}

func TestByteCount(t *testing.T) {
	tests := []struct {
		tag                Tag
		size               Size
		total, row, slice int
	}{
		{R8G8B8A8UNorm, Size{3, 5, 2}, 120, 12, 60},
		{R8G8B8UNorm, Size{7, 1, 1}, 21, 21, 21},
		{B5G6R5UNorm, Size{4, 4, 1}, 32, 8, 32},
		{R16G16B16A16Float, Size{2, 2, 1}, 32, 16, 32},
		{R32G32B32A32Float, Size{1, 1, 3}, 48, 16, 16},
		{BC1, Size{4, 4, 1}, 8, 8, 8},
		{BC1, Size{5, 5, 1}, 32, 16, 32},
		{BC1, Size{1, 1, 1}, 8, 8, 8},
		{BC3, Size{8, 4, 2}, 64, 32, 32},
		{BC7, Size{6, 2, 1}, 32, 32, 32},
	}
	for _, tt := range tests {
		t.Run(tt.tag.String()+"/"+tt.size.String(), func(t *testing.T) {
			total, row, slice := tt.tag.Format().ByteCount(tt.size)
			if total != tt.total || row != tt.row || slice != tt.slice {
				t.Errorf("ByteCount = (%d, %d, %d), want (%d, %d, %d)",
					total, row, slice, tt.total, tt.row, tt.slice)
			}
		})
	}
}

func TestUncompressedByteCountMatchesStride(t *testing.T) {
	type strider interface{ BytesPerPixel() int }
	sizes := []Size{{1, 1, 1}, {3, 7, 1}, {16, 9, 4}}
	for _, f := range All() {
		if f.Compressed() {
			continue
		}
		bpp := f.(strider).BytesPerPixel()
		for _, s := range sizes {
			total, row, _ := f.ByteCount(s)
			if total != s.Volume()*bpp || row != s.Width*bpp {
				t.Errorf("%s %s: total %d row %d, bpp %d", f.Name(), s, total, row, bpp)
			}
		}
	}
}

// Every 8-bit integer layout must reproduce its bytes exactly.
func TestEightBitRoundTrip(t *testing.T) {
	tags := []Tag{
		R8G8B8A8UNorm, R8G8B8A8UNormSRGB, R8G8B8A8SNorm, R8G8B8A8UInt,
		B8G8R8A8UNorm, R8G8B8UNorm, R8UNorm, A8UNorm, R8G8UNorm,
	}
	size := Size{16, 4, 2}
	for _, tag := range tags {
		t.Run(tag.String(), func(t *testing.T) {
			f := tag.Format()
			total, _, _ := f.ByteCount(size)
			src := make([]byte, total)
			for i := range src {
				src[i] = byte(i*37 + 11)
			}
			if tag == R8G8B8A8SNorm {
				// -128 and -127 both decode to -1.
				for i := range src {
					if src[i] == 0x80 {
						src[i] = 0x81
					}
				}
			}

			colors, err := DecodeAll(f, src, size)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			got, err := EncodeAll(f, colors, size)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			if !bytes.Equal(got, src) {
				t.Errorf("round trip mismatch:\n got %x\nwant %x", got[:16], src[:16])
			}
		})
	}
}

func TestDecodeValues(t *testing.T) {
	tests := []struct {
		name string
		tag  Tag
		src  []byte
		want Color
	}{
		{"rgba8", R8G8B8A8UNorm, []byte{255, 0, 51, 255}, Color{1, 0, 0.2, 1}},
		{"bgra8", B8G8R8A8UNorm, []byte{255, 0, 51, 0}, Color{0.2, 0, 1, 0}},
		{"bgrx8", B8G8R8X8UNorm, []byte{0, 0, 255, 0}, Color{1, 0, 0, 1}},
		{"snorm", R8G8B8A8SNorm, []byte{0x7f, 0x81, 0x80, 0}, Color{1, -1, -1, 0}},
		{"uint", R8G8B8A8UInt, []byte{1, 2, 3, 200}, Color{1, 2, 3, 200}},
		{"r8 missing channels", R8UNorm, []byte{255}, Color{1, 0, 0, 1}},
		{"a8", A8UNorm, []byte{0}, Color{0, 0, 0, 0}},
		{"l8", L8UNorm, []byte{255}, Color{1, 1, 1, 1}},
		{"565", B5G6R5UNorm, []byte{0x00, 0xf8}, Color{1, 0, 0, 1}},
		{"5551", B5G5R5A1UNorm, []byte{0x1f, 0x80}, Color{0, 0, 1, 1}},
		{"1010102", R10G10B10A2UNorm, []byte{0xff, 0x03, 0, 0xc0}, Color{1, 0, 0, 1}},
		{"r16", R16UNorm, []byte{0xff, 0xff}, Color{1, 0, 0, 1}},
		{"half", R16Float, []byte{0x00, 0x3c}, Color{1, 0, 0, 1}},
		{"float", R32Float, []byte{0, 0, 0xc0, 0xbf}, Color{-1.5, 0, 0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeAll(tt.tag.Format(), tt.src, Size{1, 1, 1})
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !near(got[0], tt.want, 1e-6) {
				t.Errorf("got %v, want %v", got[0], tt.want)
			}
		})
	}
}

func TestEncodeClampsAndWritesPadding(t *testing.T) {
	dst, err := EncodeAll(B8G8R8X8UNorm.Format(), []Color{{2, -1, 0.5, 0}}, Size{1, 1, 1})
	if err != nil {
		t.Fatal(err)
	}
	if want := []byte{128, 0, 255, 255}; !bytes.Equal(dst, want) {
		t.Errorf("got %v, want %v", dst, want)
	}
}

func TestLuminanceEncodesLuma(t *testing.T) {
	dst, err := EncodeAll(L8UNorm.Format(), []Color{{0, 1, 0, 1}}, Size{1, 1, 1})
	if err != nil {
		t.Fatal(err)
	}
	if want := byte(math.Round(0.587 * 255)); dst[0] != want {
		t.Errorf("got %d, want %d", dst[0], want)
	}
}

func TestSRGB(t *testing.T) {
	f := R8G8B8A8UNormSRGB.Format()
	got, err := DecodeAll(f, []byte{188, 0, 255, 188}, Size{1, 1, 1})
	if err != nil {
		t.Fatal(err)
	}
	// Alpha stays linear.
	if math.Abs(got[0].R-0.5029) > 1e-3 || got[0].B != 1 || math.Abs(got[0].A-188.0/255) > 1e-9 {
		t.Errorf("got %v", got[0])
	}
}

func TestFloatRoundTrip(t *testing.T) {
	src := []Color{{0.5, -2, 1024, 1}, {-65504, 0.25, 0, 0}}
	for _, tag := range []Tag{R16G16B16A16Float, R32G32B32A32Float} {
		t.Run(tag.String(), func(t *testing.T) {
			f := tag.Format()
			b, err := EncodeAll(f, src, Size{2, 1, 1})
			if err != nil {
				t.Fatal(err)
			}
			got, err := DecodeAll(f, b, Size{2, 1, 1})
			if err != nil {
				t.Fatal(err)
			}
			for i := range src {
				if got[i] != src[i] {
					t.Errorf("pixel %d: got %v, want %v", i, got[i], src[i])
				}
			}
		})
	}
}

func TestMinMax(t *testing.T) {
	if got := R8G8B8A8SNorm.Format().Min(); got != (Color{-1, -1, -1, -1}) {
		t.Errorf("snorm min = %v", got)
	}
	if got := R8G8B8A8UInt.Format().Max(); got != (Color{255, 255, 255, 255}) {
		t.Errorf("uint max = %v", got)
	}
	if got := R8UNorm.Format().Max(); got != (Color{1, 0, 0, 1}) {
		t.Errorf("r8 max = %v", got)
	}
	if got := R16Float.Format().Max(); got.R != 65504 {
		t.Errorf("half max = %v", got)
	}
	if R8G8B8A8UInt.Format().Normalized() || R32Float.Format().Normalized() {
		t.Error("uint and float formats must not be normalized")
	}
	if !BC1.Format().Compressed() || R8UNorm.Format().Compressed() {
		t.Error("compressed flag wrong")
	}
}

func TestBufferPreconditions(t *testing.T) {
	f := R8G8B8A8UNorm.Format()
	tests := []struct {
		name    string
		size    Size
		nbytes  int
		ncolors int
	}{
		{"short bytes", Size{2, 2, 1}, 15, 4},
		{"long colours", Size{2, 2, 1}, 16, 5},
		{"zero size", Size{0, 2, 1}, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.Decode(make([]byte, tt.nbytes), tt.size, make([]Color, tt.ncolors))
			if !errors.Is(err, texerr.ErrPrecondition) {
				t.Errorf("decode: got %v, want precondition", err)
			}
			err = f.Encode(make([]Color, tt.ncolors), tt.size, make([]byte, tt.nbytes))
			if !errors.Is(err, texerr.ErrPrecondition) {
				t.Errorf("encode: got %v, want precondition", err)
			}
		})
	}
}

func near(a, b Color, eps float64) bool {
	return math.Abs(a.R-b.R) <= eps && math.Abs(a.G-b.G) <= eps &&
		math.Abs(a.B-b.B) <= eps && math.Abs(a.A-b.A) <= eps
}
