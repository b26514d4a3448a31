package bundle

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/goopsie/texforge/pkg/archive"
	"github.com/goopsie/texforge/pkg/dds"
	"github.com/goopsie/texforge/pkg/pixel"
	"github.com/goopsie/texforge/pkg/texerr"
	"github.com/goopsie/texforge/pkg/texture"
)

// Package is an opened multi-part package file set.
type Package struct {
	manifest *Manifest
	files    []packageFile

	// Decompression cache
	lastFrameIdx  uint32
	lastFrameData []byte
}

type packageFile interface {
	io.ReaderAt
	io.Closer
}

// Open reads the manifest and opens the packages of the bundle named name
// under dataDir, as laid out by Builder.
func Open(dataDir, name string) (*Package, error) {
	m, err := ReadFile(filepath.Join(dataDir, "manifests", name))
	if err != nil {
		return nil, err
	}
	return OpenPackage(m, filepath.Join(dataDir, "packages", name))
}

// OpenPackage opens a multi-part package from the given base path.
// The path should be the package name without the _N suffix.
func OpenPackage(manifest *Manifest, basePath string) (*Package, error) {
	dir := filepath.Dir(basePath)
	stem := filepath.Base(basePath)
	count := manifest.PackageCount()

	pkg := &Package{
		manifest:     manifest,
		files:        make([]packageFile, count),
		lastFrameIdx: ^uint32(0), // Invalid index
	}

	for i := 0; i < count; i++ {
		path := filepath.Join(dir, fmt.Sprintf("%s_%d", stem, i))
		f, err := os.Open(path)
		if err != nil {
			pkg.Close()
			return nil, errors.Wrapf(err, "bundle: open package %d", i)
		}
		pkg.files[i] = f
	}

	return pkg, nil
}

// Close closes all package files.
func (p *Package) Close() error {
	var lastErr error
	for _, f := range p.files {
		if f != nil {
			if err := f.Close(); err != nil {
				lastErr = err
			}
		}
	}
	p.lastFrameData = nil
	return lastErr
}

// Manifest returns the associated manifest.
func (p *Package) Manifest() *Manifest {
	return p.manifest
}

// frame returns the decompressed frame at index, reusing the last frame
// read when possible.
func (p *Package) frame(index uint32) ([]byte, error) {
	if p.lastFrameData != nil && p.lastFrameIdx == index {
		return p.lastFrameData, nil
	}
	if int(index) >= len(p.manifest.Frames) {
		return nil, texerr.Malformedf("bundle: invalid frame index %d", index)
	}
	frame := p.manifest.Frames[index]
	if int(frame.PackageIndex) >= len(p.files) {
		return nil, texerr.Malformedf("bundle: invalid package index %d", frame.PackageIndex)
	}

	section := io.NewSectionReader(p.files[frame.PackageIndex], int64(frame.Offset), int64(frame.CompressedSize))
	data, err := archive.ReadAll(section)
	if err != nil {
		return nil, errors.Wrapf(err, "bundle: read frame %d", index)
	}
	if len(data) != int(frame.Length) {
		return nil, texerr.Malformedf("bundle: frame %d is %d bytes, want %d", index, len(data), frame.Length)
	}

	p.lastFrameIdx = index
	p.lastFrameData = data
	return data, nil
}

// ReadContent returns the DDS bytes of an entry. The slice aliases the
// frame cache and is only valid until the next read.
func (p *Package) ReadContent(e *Entry) ([]byte, error) {
	data, err := p.frame(e.FrameIndex)
	if err != nil {
		return nil, err
	}
	if uint64(len(data)) < uint64(e.DataOffset)+uint64(e.Size) {
		return nil, texerr.Malformedf("bundle: frame %d too short for content", e.FrameIndex)
	}
	return data[e.DataOffset : e.DataOffset+e.Size], nil
}

// Resource decodes the texture stored under name.
func (p *Package) Resource(name string) (*texture.Resource, error) {
	e, ok := p.manifest.Lookup(name)
	if !ok {
		return nil, texerr.Preconditionf("bundle: no texture named %q", name)
	}
	data, err := p.ReadContent(e)
	if err != nil {
		return nil, err
	}
	res, err := dds.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(err, "bundle: decode %s", name)
	}
	return res, nil
}

// Extract writes every texture in the package below outputDir, recreating
// the names as relative paths.
func (p *Package) Extract(outputDir string, opts ...ExtractOption) error {
	cfg := &extractConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	// Entries are stored in frame order, so each frame is decompressed once.
	createdDirs := make(map[string]struct{})
	for i := range p.manifest.Entries {
		e := &p.manifest.Entries[i]
		if len(cfg.allowedFormats) > 0 && !cfg.allowedFormats[e.Tag()] {
			continue
		}

		name := filepath.FromSlash(p.manifest.Names[i])
		if !filepath.IsLocal(name) {
			return texerr.Malformedf("bundle: entry name %q escapes the output directory", p.manifest.Names[i])
		}
		filePath := filepath.Join(outputDir, name)

		dir := filepath.Dir(filePath)
		if _, exists := createdDirs[dir]; !exists {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return errors.Wrapf(err, "bundle: create dir %s", dir)
			}
			createdDirs[dir] = struct{}{}
		}

		data, err := p.ReadContent(e)
		if err != nil {
			return err
		}
		if err := os.WriteFile(filePath, data, 0644); err != nil {
			return errors.Wrapf(err, "bundle: write file %s", filePath)
		}
	}

	return nil
}

// extractConfig holds extraction options.
type extractConfig struct {
	allowedFormats map[pixel.Tag]bool
}

// ExtractOption configures extraction behavior.
type ExtractOption func(*extractConfig)

// WithFormatFilter restricts extraction to textures in the given formats.
func WithFormatFilter(tags ...pixel.Tag) ExtractOption {
	return func(c *extractConfig) {
		if len(tags) > 0 {
			c.allowedFormats = make(map[pixel.Tag]bool, len(tags))
			for _, t := range tags {
				c.allowedFormats[t] = true
			}
		}
	}
}
