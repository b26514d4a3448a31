package raster

import (
	"image"
	"image/color"
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/goopsie/texforge/pkg/pixel"
	"github.com/goopsie/texforge/pkg/texerr"
	"github.com/goopsie/texforge/pkg/texture"
)

func TestResourceRoundTrip(t *testing.T) {
	res, err := texture.New(pixel.Size{Width: 4, Height: 2, Depth: 1}, 0, 2, pixel.R8G8B8A8UNorm.Format())
	if err != nil {
		t.Fatal(err)
	}
	b, _ := res.Subresource(0, 1)
	for i := range b {
		b[i] = byte(i * 7)
	}

	img, err := FromResource(res, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	if img.Size() != (pixel.Size{Width: 4, Height: 2, Depth: 1}) {
		t.Fatalf("size %s", img.Size())
	}
	if got := img.At(1, 0, 0).R; !nearly(got, 28.0/255) {
		t.Errorf("(1,0).R = %v", got)
	}

	if err := img.ToResource(res, 0, 0); err != nil {
		t.Fatal(err)
	}
	a, _ := res.Subresource(0, 0)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("byte %d: got %d, want %d", i, a[i], b[i])
		}
	}

	if err := img.ToResource(res, 1, 0); !errors.Is(err, texerr.ErrPrecondition) {
		t.Errorf("wrong mip size: got %v", err)
	}
	if _, err := FromResource(res, 5, 0); !errors.Is(err, texerr.ErrPrecondition) {
		t.Errorf("bad mip: got %v", err)
	}
}

func TestResourceFromMipmaps(t *testing.T) {
	src := ramp(t, pixel.Size{Width: 4, Height: 4, Depth: 1})
	src = Map(src, func(c pixel.Color) pixel.Color { return c.Scale(1.0 / 15) })
	chain, err := GenerateMipmaps(src, Point)
	if err != nil {
		t.Fatal(err)
	}
	res, err := ResourceFromMipmaps(chain, pixel.R8UNorm.Format())
	if err != nil {
		t.Fatal(err)
	}
	if res.MipLevels() != 3 || res.ArraySize() != 1 {
		t.Fatalf("%d mips, %d slices", res.MipLevels(), res.ArraySize())
	}
	b, _ := res.Subresource(1, 0)
	// Point sampling picks source pixels 0, 2, 8 and 10.
	want := []byte{0, 34, 136, 170}
	for i := range want {
		if b[i] != want[i] {
			t.Errorf("mip 1 byte %d = %d, want %d", i, b[i], want[i])
		}
	}
	if _, err := ResourceFromMipmaps(nil, pixel.R8UNorm.Format()); !errors.Is(err, texerr.ErrPrecondition) {
		t.Errorf("empty chain: got %v", err)
	}
}

func TestStdlibBridge(t *testing.T) {
	src := image.NewNRGBA(image.Rect(2, 3, 4, 4))
	src.SetNRGBA(3, 3, color.NRGBA{R: 255, G: 0, B: 51, A: 255})

	img, err := FromImage(src)
	if err != nil {
		t.Fatal(err)
	}
	if img.Size() != (pixel.Size{Width: 2, Height: 1, Depth: 1}) {
		t.Fatalf("size %s", img.Size())
	}
	c := img.At(1, 0, 0)
	if !nearly(c.R, 1) || !nearly(c.B, 0.2) || c.A != 1 {
		t.Errorf("got %v", c)
	}
	if got := img.At(0, 0, 0); got != pixel.Transparent {
		t.Errorf("unset pixel = %v", got)
	}

	out, err := img.ToNRGBA64(0)
	if err != nil {
		t.Fatal(err)
	}
	got := color.NRGBAModel.Convert(out.At(1, 0)).(color.NRGBA)
	if got != (color.NRGBA{R: 255, G: 0, B: 51, A: 255}) {
		t.Errorf("round trip = %v", got)
	}
	if _, err := img.ToNRGBA64(1); !errors.Is(err, texerr.ErrPrecondition) {
		t.Errorf("bad slice: got %v", err)
	}
}
