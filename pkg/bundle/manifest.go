// Package bundle packs many DDS textures into compressed frames spread over
// one or more package files, indexed by a manifest.
//
// Textures are grouped into frames of roughly equal uncompressed size. Each
// frame is stored as an archive container, so a reader only decompresses
// the frame holding the texture it asks for.
package bundle

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/goopsie/texforge/pkg/archive"
	"github.com/goopsie/texforge/pkg/pixel"
	"github.com/goopsie/texforge/pkg/texerr"
)

// Magic identifies a manifest.
var Magic = [4]byte{'T', 'X', 'B', 'M'}

// Version is the manifest layout version.
const Version = 1

// FlagCubemap marks an entry whose array slices are cube faces.
const FlagCubemap = 1 << 0

// Manifest indexes the textures stored in a bundle.
type Manifest struct {
	Header  Header
	Entries []Entry
	Frames  []Frame
	// Names holds the name of each entry, parallel to Entries.
	Names []string
}

// Header carries the section counts.
type Header struct {
	Magic        [4]byte
	Version      uint32
	PackageCount uint32
	EntryCount   uint32
	FrameCount   uint32
	_            uint32 // Padding
}

// Entry locates one DDS file inside a frame and records its layout.
type Entry struct {
	FrameIndex uint32 // Index into Frames
	DataOffset uint32 // Byte offset within the decompressed frame
	Size       uint32 // DDS file size in bytes
	Format     uint32 // pixel.Tag
	Width      uint32
	Height     uint32
	Depth      uint32
	MipLevels  uint32
	ArraySize  uint32
	Flags      uint32
}

// Frame locates a compressed frame within a package.
type Frame struct {
	PackageIndex   uint32 // Package file index
	Offset         uint32 // Byte offset of the container within the package
	CompressedSize uint32 // Container size including its header
	Length         uint32 // Decompressed frame size
}

// Tag returns the pixel format tag of the entry.
func (e *Entry) Tag() pixel.Tag {
	return pixel.Tag(e.Format)
}

// TextureSize returns the top-level texture size.
func (e *Entry) TextureSize() pixel.Size {
	return pixel.Size{Width: int(e.Width), Height: int(e.Height), Depth: int(e.Depth)}
}

// Cubemap reports whether the entry is a cubemap.
func (e *Entry) Cubemap() bool {
	return e.Flags&FlagCubemap != 0
}

// PackageCount returns the number of package files the manifest references.
func (m *Manifest) PackageCount() int {
	return int(m.Header.PackageCount)
}

// FileCount returns the number of textures in the manifest.
func (m *Manifest) FileCount() int {
	return len(m.Entries)
}

// Lookup returns the entry stored under name.
func (m *Manifest) Lookup(name string) (*Entry, bool) {
	for i, n := range m.Names {
		if n == name {
			return &m.Entries[i], true
		}
	}
	return nil, false
}

// UnmarshalBinary decodes a manifest from binary data.
func (m *Manifest) UnmarshalBinary(data []byte) error {
	reader := bytes.NewReader(data)

	if err := binary.Read(reader, binary.LittleEndian, &m.Header); err != nil {
		return texerr.WrapMalformed(err, "bundle: read header")
	}
	if m.Header.Magic != Magic {
		return texerr.Malformedf("bundle: invalid magic %q", m.Header.Magic[:])
	}
	if m.Header.Version != Version {
		return texerr.Malformedf("bundle: unsupported manifest version %d", m.Header.Version)
	}

	entryBytes := int64(m.Header.EntryCount) * int64(binary.Size(Entry{}))
	frameBytes := int64(m.Header.FrameCount) * int64(binary.Size(Frame{}))
	if entryBytes+frameBytes > int64(reader.Len()) {
		return texerr.Malformedf("bundle: %d entries and %d frames exceed manifest size %d",
			m.Header.EntryCount, m.Header.FrameCount, len(data))
	}

	m.Entries = make([]Entry, m.Header.EntryCount)
	if err := binary.Read(reader, binary.LittleEndian, &m.Entries); err != nil {
		return texerr.WrapMalformed(err, "bundle: read entries")
	}

	m.Frames = make([]Frame, m.Header.FrameCount)
	if err := binary.Read(reader, binary.LittleEndian, &m.Frames); err != nil {
		return texerr.WrapMalformed(err, "bundle: read frames")
	}

	m.Names = make([]string, m.Header.EntryCount)
	for i := range m.Names {
		var n uint16
		if err := binary.Read(reader, binary.LittleEndian, &n); err != nil {
			return texerr.WrapMalformed(err, "bundle: read name length")
		}
		name := make([]byte, n)
		if _, err := io.ReadFull(reader, name); err != nil {
			return texerr.WrapMalformed(err, "bundle: read name")
		}
		m.Names[i] = string(name)
	}

	for i, e := range m.Entries {
		if int(e.FrameIndex) >= len(m.Frames) {
			return texerr.Malformedf("bundle: entry %q references frame %d of %d", m.Names[i], e.FrameIndex, len(m.Frames))
		}
	}
	for i, f := range m.Frames {
		if f.PackageIndex >= m.Header.PackageCount {
			return texerr.Malformedf("bundle: frame %d references package %d of %d", i, f.PackageIndex, m.Header.PackageCount)
		}
	}
	return nil
}

// MarshalBinary encodes a manifest to binary data.
func (m *Manifest) MarshalBinary() ([]byte, error) {
	if len(m.Names) != len(m.Entries) {
		return nil, texerr.Preconditionf("bundle: %d names for %d entries", len(m.Names), len(m.Entries))
	}
	m.Header.Magic = Magic
	m.Header.Version = Version
	m.Header.EntryCount = uint32(len(m.Entries))
	m.Header.FrameCount = uint32(len(m.Frames))

	buf := bytes.NewBuffer(nil)
	sections := []any{
		m.Header,
		m.Entries,
		m.Frames,
	}
	for _, section := range sections {
		if err := binary.Write(buf, binary.LittleEndian, section); err != nil {
			return nil, errors.Wrap(err, "bundle: write section")
		}
	}

	for _, name := range m.Names {
		if len(name) > 0xffff {
			return nil, texerr.Preconditionf("bundle: name too long (%d bytes)", len(name))
		}
		_ = binary.Write(buf, binary.LittleEndian, uint16(len(name)))
		buf.WriteString(name)
	}

	return buf.Bytes(), nil
}

// ReadFile reads and parses a manifest from a file.
func ReadFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "bundle: open manifest")
	}
	defer f.Close()

	data, err := archive.ReadAll(f)
	if err != nil {
		return nil, errors.Wrap(err, "bundle: read archive")
	}

	manifest := &Manifest{}
	if err := manifest.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return manifest, nil
}

// WriteFile writes a manifest to a file.
func WriteFile(path string, m *Manifest) error {
	data, err := m.MarshalBinary()
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "bundle: create manifest")
	}
	defer f.Close()

	if err := archive.Encode(f, data); err != nil {
		return errors.Wrap(err, "bundle: encode archive")
	}
	return f.Close()
}
