package bundle

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/goopsie/texforge/pkg/archive"
	"github.com/goopsie/texforge/pkg/dds"
	"github.com/goopsie/texforge/pkg/texerr"
)

const (
	// DefaultFrameSize is the uncompressed size at which a frame is closed.
	DefaultFrameSize = 16 << 20

	// MaxPackageSize is the maximum size of a single package file.
	MaxPackageSize = math.MaxInt32
)

// Builder writes packages and a manifest from a set of textures.
type Builder struct {
	outputDir        string
	packageName      string
	compressionLevel int
	frameSize        int
	maxPackageSize   int64
	ddsOpts          []dds.EncodeOption

	pkg       *os.File
	pkgOffset int64
}

// NewBuilder creates a new bundle builder. Packages are written to
// <outputDir>/packages/<packageName>_N and the manifest to
// <outputDir>/manifests/<packageName>.
func NewBuilder(outputDir, packageName string) *Builder {
	return &Builder{
		outputDir:        outputDir,
		packageName:      packageName,
		compressionLevel: archive.DefaultCompressionLevel,
		frameSize:        DefaultFrameSize,
		maxPackageSize:   MaxPackageSize,
	}
}

// SetCompressionLevel sets the zstd compression level for frames.
func (b *Builder) SetCompressionLevel(level int) {
	b.compressionLevel = level
}

// SetFrameSize sets the uncompressed size at which a frame is closed.
func (b *Builder) SetFrameSize(size int) {
	b.frameSize = max(size, 1)
}

// SetMaxPackageSize sets the size at which a new package file is started.
func (b *Builder) SetMaxPackageSize(size int64) {
	b.maxPackageSize = min(max(size, 1), MaxPackageSize)
}

// SetDDSOptions sets the options used to encode in-memory resources.
func (b *Builder) SetDDSOptions(opts ...dds.EncodeOption) {
	b.ddsOpts = opts
}

// Build writes files into packages and returns the manifest, which is also
// written to the manifests directory.
func (b *Builder) Build(files []ScannedFile) (*Manifest, error) {
	manifest := &Manifest{
		Entries: make([]Entry, 0, len(files)),
		Names:   make([]string, 0, len(files)),
	}

	for _, dir := range []string{"packages", "manifests"} {
		if err := os.MkdirAll(filepath.Join(b.outputDir, dir), 0755); err != nil {
			return nil, errors.Wrapf(err, "bundle: create %s dir", dir)
		}
	}
	defer b.closePackage()

	seen := make(map[string]struct{}, len(files))
	var currentFrame bytes.Buffer

	for _, file := range files {
		if _, dup := seen[file.Name]; dup {
			return nil, texerr.Preconditionf("bundle: duplicate name %q", file.Name)
		}
		seen[file.Name] = struct{}{}

		data, info, err := b.load(file)
		if err != nil {
			return nil, errors.Wrapf(err, "bundle: read %s", file.Name)
		}

		manifest.Entries = append(manifest.Entries, entryFor(info, uint32(len(manifest.Frames)), uint32(currentFrame.Len()), uint32(len(data))))
		manifest.Names = append(manifest.Names, file.Name)
		currentFrame.Write(data)

		if currentFrame.Len() >= b.frameSize {
			if err := b.writeFrame(manifest, currentFrame.Bytes()); err != nil {
				return nil, err
			}
			currentFrame.Reset()
		}
	}

	if currentFrame.Len() > 0 {
		if err := b.writeFrame(manifest, currentFrame.Bytes()); err != nil {
			return nil, err
		}
	}
	if err := b.closePackage(); err != nil {
		return nil, err
	}

	manifestPath := filepath.Join(b.outputDir, "manifests", b.packageName)
	if err := WriteFile(manifestPath, manifest); err != nil {
		return nil, err
	}
	return manifest, nil
}

// load returns the DDS bytes of file and their parsed header.
func (b *Builder) load(file ScannedFile) ([]byte, *dds.Info, error) {
	var data []byte
	switch {
	case file.Path != "":
		var err error
		if data, err = os.ReadFile(file.Path); err != nil {
			return nil, nil, err
		}
	case file.Resource != nil:
		var buf bytes.Buffer
		if err := dds.Encode(&buf, file.Resource, b.ddsOpts...); err != nil {
			return nil, nil, err
		}
		data = buf.Bytes()
	default:
		return nil, nil, texerr.Preconditionf("no source for %q", file.Name)
	}

	if len(data) > MaxPackageSize {
		return nil, nil, texerr.Preconditionf("%d bytes exceed the package size limit", len(data))
	}

	info := file.Info
	if info == nil {
		var err error
		if info, err = dds.DecodeHeader(bytes.NewReader(data)); err != nil {
			return nil, nil, err
		}
	}
	return data, info, nil
}

func entryFor(info *dds.Info, frame, offset, size uint32) Entry {
	e := Entry{
		FrameIndex: frame,
		DataOffset: offset,
		Size:       size,
		Format:     uint32(info.Format.Tag()),
		Width:      uint32(info.Size.Width),
		Height:     uint32(info.Size.Height),
		Depth:      uint32(info.Size.Depth),
		MipLevels:  uint32(info.MipLevels),
		ArraySize:  uint32(info.ArraySize),
	}
	if info.Cubemap {
		e.Flags |= FlagCubemap
	}
	return e
}

func (b *Builder) writeFrame(manifest *Manifest, data []byte) error {
	index := len(manifest.Frames)
	var container frameBuffer
	if err := archive.Encode(&container, data, archive.WithCompressionLevel(b.compressionLevel)); err != nil {
		return errors.Wrapf(err, "bundle: compress frame %d", index)
	}
	compressed := container.Bytes()

	// Start a new package when this frame would overflow the current one.
	if b.pkg == nil || (b.pkgOffset > 0 && b.pkgOffset+int64(len(compressed)) > b.maxPackageSize) {
		if err := b.openPackage(manifest); err != nil {
			return err
		}
	}

	if _, err := b.pkg.Write(compressed); err != nil {
		return errors.Wrapf(err, "bundle: write frame %d", index)
	}

	manifest.Frames = append(manifest.Frames, Frame{
		PackageIndex:   manifest.Header.PackageCount - 1,
		Offset:         uint32(b.pkgOffset),
		CompressedSize: uint32(len(compressed)),
		Length:         uint32(len(data)),
	})
	b.pkgOffset += int64(len(compressed))
	return nil
}

func (b *Builder) openPackage(manifest *Manifest) error {
	if err := b.closePackage(); err != nil {
		return err
	}
	index := manifest.Header.PackageCount
	path := filepath.Join(b.outputDir, "packages", fmt.Sprintf("%s_%d", b.packageName, index))
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "bundle: create package %d", index)
	}
	b.pkg = f
	b.pkgOffset = 0
	manifest.Header.PackageCount++
	return nil
}

func (b *Builder) closePackage() error {
	if b.pkg == nil {
		return nil
	}
	err := b.pkg.Close()
	b.pkg = nil
	return err
}

// frameBuffer is an in-memory io.WriteSeeker for building frame containers
// before they are appended to a package.
type frameBuffer struct {
	buf []byte
	pos int
}

func (f *frameBuffer) Write(p []byte) (int, error) {
	if end := f.pos + len(p); end > len(f.buf) {
		f.buf = append(f.buf, make([]byte, end-len(f.buf))...)
	}
	n := copy(f.buf[f.pos:], p)
	f.pos += n
	return n, nil
}

func (f *frameBuffer) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(f.pos) + offset
	case io.SeekEnd:
		abs = int64(len(f.buf)) + offset
	default:
		return 0, errors.Newf("invalid whence %d", whence)
	}
	if abs < 0 {
		return 0, errors.New("negative position")
	}
	f.pos = int(abs)
	return abs, nil
}

func (f *frameBuffer) Bytes() []byte {
	return f.buf
}
