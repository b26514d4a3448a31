package bundle

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/goopsie/texforge/pkg/dds"
	"github.com/goopsie/texforge/pkg/pixel"
	"github.com/goopsie/texforge/pkg/texerr"
	"github.com/goopsie/texforge/pkg/texture"
)

func newResource(t testing.TB, width, height int, tag pixel.Tag, seed byte) *texture.Resource {
	t.Helper()
	res, err := texture.New(pixel.Size2D(width, height), 1, 1, tag.Format())
	if err != nil {
		t.Fatal(err)
	}
	err = res.Each(func(mip, slice int, b []byte) error {
		for i := range b {
			b[i] = seed + byte(i)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func TestManifest(t *testing.T) {
	t.Run("MarshalUnmarshal", func(t *testing.T) {
		original := &Manifest{
			Header: Header{PackageCount: 2},
			Entries: []Entry{
				{FrameIndex: 0, DataOffset: 0, Size: 1024, Format: uint32(pixel.BC1), Width: 64, Height: 64, Depth: 1, MipLevels: 7, ArraySize: 1},
				{FrameIndex: 1, DataOffset: 0, Size: 2048, Format: uint32(pixel.R8G8B8A8UNorm), Width: 16, Height: 16, Depth: 1, MipLevels: 1, ArraySize: 6, Flags: FlagCubemap},
			},
			Frames: []Frame{
				{PackageIndex: 0, Offset: 0, CompressedSize: 512, Length: 1024},
				{PackageIndex: 1, Offset: 0, CompressedSize: 1024, Length: 2048},
			},
			Names: []string{"ui/icon.dds", "env/sky.dds"},
		}

		data, err := original.MarshalBinary()
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}

		decoded := &Manifest{}
		if err := decoded.UnmarshalBinary(data); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}

		if decoded.PackageCount() != 2 {
			t.Errorf("PackageCount: got %d, want 2", decoded.PackageCount())
		}
		if decoded.FileCount() != 2 {
			t.Fatalf("FileCount: got %d, want 2", decoded.FileCount())
		}
		for i := range original.Entries {
			if decoded.Entries[i] != original.Entries[i] {
				t.Errorf("entry %d: got %+v, want %+v", i, decoded.Entries[i], original.Entries[i])
			}
			if decoded.Names[i] != original.Names[i] {
				t.Errorf("name %d: got %q, want %q", i, decoded.Names[i], original.Names[i])
			}
		}

		e, ok := decoded.Lookup("env/sky.dds")
		if !ok || !e.Cubemap() || e.Tag() != pixel.R8G8B8A8UNorm {
			t.Errorf("Lookup: got %+v, %v", e, ok)
		}
		if _, ok := decoded.Lookup("missing.dds"); ok {
			t.Error("Lookup of a missing name succeeded")
		}
	})

	t.Run("Malformed", func(t *testing.T) {
		valid := &Manifest{
			Header:  Header{PackageCount: 1},
			Entries: []Entry{{Size: 4}},
			Frames:  []Frame{{Length: 4, CompressedSize: 30}},
			Names:   []string{"a.dds"},
		}
		data, err := valid.MarshalBinary()
		if err != nil {
			t.Fatal(err)
		}

		badMagic := append([]byte(nil), data...)
		badMagic[0] = 'X'

		badFrame := &Manifest{
			Header:  Header{PackageCount: 1},
			Entries: []Entry{{FrameIndex: 3}},
			Frames:  []Frame{{}},
			Names:   []string{"a.dds"},
		}
		badFrameData, err := badFrame.MarshalBinary()
		if err != nil {
			t.Fatal(err)
		}

		tests := []struct {
			name string
			data []byte
		}{
			{"Empty", nil},
			{"BadMagic", badMagic},
			{"Truncated", data[:len(data)-3]},
			{"FrameIndex", badFrameData},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := (&Manifest{}).UnmarshalBinary(tt.data)
				if !errors.Is(err, texerr.ErrMalformed) {
					t.Errorf("got %v, want malformed", err)
				}
			})
		}
	})

	t.Run("NameCountMismatch", func(t *testing.T) {
		m := &Manifest{Entries: make([]Entry, 2), Names: []string{"a"}}
		if _, err := m.MarshalBinary(); !errors.Is(err, texerr.ErrPrecondition) {
			t.Errorf("got %v, want precondition", err)
		}
	})
}

func TestBuildAndRead(t *testing.T) {
	dir := t.TempDir()
	files := []ScannedFile{
		{Name: "a.dds", Resource: newResource(t, 16, 16, pixel.R8G8B8A8UNorm, 1)},
		{Name: "sub/b.dds", Resource: newResource(t, 8, 8, pixel.BC1, 2)},
		{Name: "sub/c.dds", Resource: newResource(t, 32, 4, pixel.B5G6R5UNorm, 3)},
	}

	b := NewBuilder(dir, "textures")
	b.SetFrameSize(512)
	b.SetMaxPackageSize(64)
	m, err := b.Build(files)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(m.Frames) < 2 {
		t.Errorf("frames: got %d, want at least 2", len(m.Frames))
	}
	if m.PackageCount() < 2 {
		t.Errorf("packages: got %d, want at least 2", m.PackageCount())
	}

	pkg, err := Open(dir, "textures")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer pkg.Close()

	for _, f := range files {
		t.Run(f.Name, func(t *testing.T) {
			got, err := pkg.Resource(f.Name)
			if err != nil {
				t.Fatal(err)
			}
			if got.Size() != f.Resource.Size() || !pixel.Equal(got.Format(), f.Resource.Format()) {
				t.Fatalf("got %s %s, want %s %s", got.Format().Name(), got.Size(), f.Resource.Format().Name(), f.Resource.Size())
			}
			want, _ := f.Resource.Subresource(0, 0)
			data, _ := got.Subresource(0, 0)
			if !bytes.Equal(data, want) {
				t.Error("pixel data differs")
			}

			e, _ := pkg.Manifest().Lookup(f.Name)
			if e.TextureSize() != f.Resource.Size() || e.MipLevels != 1 {
				t.Errorf("entry layout: %+v", e)
			}
		})
	}

	if _, err := pkg.Resource("missing.dds"); !errors.Is(err, texerr.ErrPrecondition) {
		t.Errorf("missing name: got %v, want precondition", err)
	}
}

func TestBuildDuplicateName(t *testing.T) {
	files := []ScannedFile{
		{Name: "a.dds", Resource: newResource(t, 4, 4, pixel.R8UNorm, 0)},
		{Name: "a.dds", Resource: newResource(t, 4, 4, pixel.R8UNorm, 0)},
	}
	_, err := NewBuilder(t.TempDir(), "dup").Build(files)
	if !errors.Is(err, texerr.ErrPrecondition) {
		t.Errorf("got %v, want precondition", err)
	}
}

func TestScanAndExtract(t *testing.T) {
	src := t.TempDir()
	write := func(name string, res *texture.Resource) {
		path := filepath.Join(src, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		var buf bytes.Buffer
		if err := dds.Encode(&buf, res); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
			t.Fatal(err)
		}
	}
	write("one.dds", newResource(t, 4, 4, pixel.R8G8B8A8UNorm, 5))
	write("nested/two.DDS", newResource(t, 8, 8, pixel.BC3, 6))
	if err := os.WriteFile(filepath.Join(src, "readme.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	files, err := ScanFiles(src)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("scanned %d files, want 2", len(files))
	}
	for _, f := range files {
		if f.Info == nil || f.Size == 0 {
			t.Errorf("%s: missing header or size", f.Name)
		}
	}

	data := t.TempDir()
	if _, err := NewBuilder(data, "all").Build(files); err != nil {
		t.Fatalf("build: %v", err)
	}
	pkg, err := Open(data, "all")
	if err != nil {
		t.Fatal(err)
	}
	defer pkg.Close()

	t.Run("All", func(t *testing.T) {
		out := t.TempDir()
		if err := pkg.Extract(out); err != nil {
			t.Fatal(err)
		}
		for _, f := range files {
			want, err := os.ReadFile(f.Path)
			if err != nil {
				t.Fatal(err)
			}
			got, err := os.ReadFile(filepath.Join(out, filepath.FromSlash(f.Name)))
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(got, want) {
				t.Errorf("%s: extracted bytes differ", f.Name)
			}
		}
	})

	t.Run("FormatFilter", func(t *testing.T) {
		out := t.TempDir()
		if err := pkg.Extract(out, WithFormatFilter(pixel.BC3)); err != nil {
			t.Fatal(err)
		}
		if _, err := os.Stat(filepath.Join(out, "one.dds")); !os.IsNotExist(err) {
			t.Errorf("one.dds extracted despite filter: %v", err)
		}
		if _, err := os.Stat(filepath.Join(out, "nested", "two.DDS")); err != nil {
			t.Errorf("two.DDS not extracted: %v", err)
		}
	})
}
