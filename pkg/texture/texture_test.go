package texture

import (
	"bytes"
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/goopsie/texforge/pkg/pixel"
	"github.com/goopsie/texforge/pkg/texerr"
)

func TestMipLevels(t *testing.T) {
	tests := []struct {
		size pixel.Size
		want int
	}{
		{pixel.Size{Width: 1, Height: 1, Depth: 1}, 1},
		{pixel.Size{Width: 256, Height: 256, Depth: 1}, 9},
		{pixel.Size{Width: 5, Height: 3, Depth: 1}, 3},
		{pixel.Size{Width: 1, Height: 1, Depth: 64}, 7},
		{pixel.Size{Width: 1024, Height: 1, Depth: 1}, 11},
	}
	for _, tt := range tests {
		if got := MipLevels(tt.size); got != tt.want {
			t.Errorf("MipLevels(%s) = %d, want %d", tt.size, got, tt.want)
		}
	}
}

func TestMipSliceSize(t *testing.T) {
	tests := []struct {
		size pixel.Size
		mip  int
		want pixel.Size
	}{
		{pixel.Size{Width: 5, Height: 5, Depth: 1}, 1, pixel.Size{Width: 2, Height: 2, Depth: 1}},
		{pixel.Size{Width: 1, Height: 1, Depth: 1}, 5, pixel.Size{Width: 1, Height: 1, Depth: 1}},
		{pixel.Size{Width: 256, Height: 64, Depth: 8}, 3, pixel.Size{Width: 32, Height: 8, Depth: 1}},
		{pixel.Size{Width: 256, Height: 64, Depth: 8}, 8, pixel.Size{Width: 1, Height: 1, Depth: 1}},
	}
	for _, tt := range tests {
		if got := MipSliceSize(tt.size, tt.mip); got != tt.want {
			t.Errorf("MipSliceSize(%s, %d) = %s, want %s", tt.size, tt.mip, got, tt.want)
		}
	}
}

func TestNew(t *testing.T) {
	rgba := pixel.R8G8B8A8UNorm.Format()

	t.Run("FullChain", func(t *testing.T) {
		r, err := New(pixel.Size{Width: 8, Height: 4, Depth: 1}, 0, 2, rgba)
		if err != nil {
			t.Fatal(err)
		}
		if r.MipLevels() != 4 || r.ArraySize() != 2 || r.Len() != 8 {
			t.Fatalf("got %d mips, %d slices, %d subresources", r.MipLevels(), r.ArraySize(), r.Len())
		}
		for mip, want := range []int{128, 32, 8, 4} {
			b, err := r.Subresource(mip, 1)
			if err != nil {
				t.Fatal(err)
			}
			if len(b) != want {
				t.Errorf("mip %d: %d bytes, want %d", mip, len(b), want)
			}
		}
		if r.ByteLen() != 2*(128+32+8+4) {
			t.Errorf("ByteLen = %d", r.ByteLen())
		}
	})

	t.Run("ClampsZeroSize", func(t *testing.T) {
		r, err := New(pixel.Size{Width: 0, Height: 4, Depth: 0}, 1, 1, rgba)
		if err != nil {
			t.Fatal(err)
		}
		if r.Size() != (pixel.Size{Width: 1, Height: 4, Depth: 1}) {
			t.Errorf("size = %s", r.Size())
		}
	})

	t.Run("CompressedSizing", func(t *testing.T) {
		r, err := New(pixel.Size{Width: 16, Height: 16, Depth: 1}, 0, 1, pixel.BC1.Format())
		if err != nil {
			t.Fatal(err)
		}
		for mip, want := range []int{128, 32, 8, 8, 8} {
			b, _ := r.Subresource(mip, 0)
			if len(b) != want {
				t.Errorf("mip %d: %d bytes, want %d", mip, len(b), want)
			}
		}
	})

	failures := []struct {
		name   string
		size   pixel.Size
		mips   int
		array  int
		format pixel.Format
	}{
		{"NegativeSize", pixel.Size{Width: -1, Height: 4, Depth: 1}, 1, 1, rgba},
		{"TooManyMips", pixel.Size{Width: 4, Height: 4, Depth: 1}, 4, 1, rgba},
		{"NegativeMips", pixel.Size{Width: 4, Height: 4, Depth: 1}, -1, 1, rgba},
		{"ZeroArray", pixel.Size{Width: 4, Height: 4, Depth: 1}, 1, 0, rgba},
		{"NilFormat", pixel.Size{Width: 4, Height: 4, Depth: 1}, 1, 1, nil},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(tt.size, tt.mips, tt.array, tt.format)
			if !errors.Is(err, texerr.ErrPrecondition) {
				t.Errorf("got %v, want precondition", err)
			}
			if r != nil {
				t.Error("resource returned on failure")
			}
		})
	}
}

func TestSubresourceBounds(t *testing.T) {
	r, err := New(pixel.Size{Width: 4, Height: 4, Depth: 1}, 0, 2, pixel.R8UNorm.Format())
	if err != nil {
		t.Fatal(err)
	}
	for _, idx := range [][2]int{{-1, 0}, {3, 0}, {0, 2}, {0, -1}} {
		if _, err := r.Subresource(idx[0], idx[1]); !errors.Is(err, texerr.ErrPrecondition) {
			t.Errorf("Subresource(%d, %d): got %v, want precondition", idx[0], idx[1], err)
		}
	}
}

func TestSetSubresource(t *testing.T) {
	r, err := New(pixel.Size{Width: 4, Height: 4, Depth: 1}, 0, 1, pixel.R8UNorm.Format())
	if err != nil {
		t.Fatal(err)
	}

	t.Run("Match", func(t *testing.T) {
		b := bytes.Repeat([]byte{7}, 4)
		if !r.SetSubresource(1, 0, b) {
			t.Fatal("rejected matching buffer")
		}
		got, _ := r.Subresource(1, 0)
		if !bytes.Equal(got, b) {
			t.Errorf("got %v", got)
		}
	})

	t.Run("LengthMismatch", func(t *testing.T) {
		if r.SetSubresource(0, 0, make([]byte, 15)) {
			t.Error("accepted short buffer")
		}
		got, _ := r.Subresource(0, 0)
		if len(got) != 16 {
			t.Errorf("buffer resized to %d", len(got))
		}
	})

	t.Run("OutOfRange", func(t *testing.T) {
		if r.SetSubresource(3, 0, make([]byte, 1)) {
			t.Error("accepted out-of-range mip")
		}
	})
}

func TestEachOrder(t *testing.T) {
	r, err := New(pixel.Size{Width: 4, Height: 4, Depth: 1}, 3, 2, pixel.R8UNorm.Format())
	if err != nil {
		t.Fatal(err)
	}
	var got [][2]int
	err = r.Each(func(mip, slice int, b []byte) error {
		if r.Index(mip, slice) != len(got) {
			t.Errorf("Index(%d, %d) = %d, want %d", mip, slice, r.Index(mip, slice), len(got))
		}
		got = append(got, [2]int{mip, slice})
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	want := [][2]int{{0, 0}, {1, 0}, {2, 0}, {0, 1}, {1, 1}, {2, 1}}
	if len(got) != len(want) {
		t.Fatalf("visited %d subresources, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("step %d: got %v, want %v", i, got[i], want[i])
		}
	}

	stop := errors.New("stop")
	n := 0
	err = r.Each(func(mip, slice int, b []byte) error {
		n++
		return stop
	})
	if !errors.Is(err, stop) || n != 1 {
		t.Errorf("Each did not stop on error: err %v after %d calls", err, n)
	}
}

func TestSetCubemap(t *testing.T) {
	rgba := pixel.R8G8B8A8UNorm.Format()

	cube, err := New(pixel.Size{Width: 4, Height: 4, Depth: 1}, 1, 6, rgba)
	if err != nil {
		t.Fatal(err)
	}
	if err := cube.SetCubemap(true); err != nil {
		t.Fatalf("SetCubemap: %v", err)
	}
	if !cube.Cubemap() {
		t.Error("cubemap flag not set")
	}

	volume, err := New(pixel.Size{Width: 4, Height: 4, Depth: 2}, 1, 6, rgba)
	if err != nil {
		t.Fatal(err)
	}
	if err := volume.SetCubemap(true); !errors.Is(err, texerr.ErrPrecondition) {
		t.Errorf("volume cubemap: got %v, want precondition", err)
	}
	if volume.Cubemap() {
		t.Error("flag set after failure")
	}

	partial, err := New(pixel.Size{Width: 4, Height: 4, Depth: 1}, 1, 4, rgba)
	if err != nil {
		t.Fatal(err)
	}
	if err := partial.SetCubemap(true); !errors.Is(err, texerr.ErrPrecondition) {
		t.Errorf("4 slices: got %v, want precondition", err)
	}
	if err := partial.SetCubemap(false); err != nil {
		t.Errorf("clearing flag: %v", err)
	}
}
