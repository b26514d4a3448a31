// Package archive stores texture files in a zstd-compressed container.
//
// A container is a 24-byte header followed by a single zstd frame. The
// header records both the uncompressed and the compressed length so a
// reader can size its buffer up front. Builds with cgo compress through
// libzstd; pure Go builds use klauspost/compress.
package archive

import (
	"encoding/binary"
	"math"

	"github.com/goopsie/texforge/pkg/texerr"
)

// Magic identifies a container header.
var Magic = [4]byte{0x5a, 0x53, 0x54, 0x44} // "ZSTD"

const (
	// HeaderSize is the encoded size of a Header.
	HeaderSize = 24 // 4 + 4 + 8 + 8 bytes

	// headerLength is the value of the HeaderLength field: the two length
	// fields that follow it.
	headerLength = 16
)

// Header precedes the compressed payload.
type Header struct {
	Magic            [4]byte
	HeaderLength     uint32
	Length           uint64 // uncompressed payload size
	CompressedLength uint64 // size of the zstd frame
}

// Size returns the encoded size of the header.
func (h *Header) Size() int {
	return HeaderSize
}

// Validate checks the header fields.
func (h *Header) Validate() error {
	if h.Magic != Magic {
		return texerr.Malformedf("archive: invalid magic %x, want %x", h.Magic, Magic)
	}
	if h.HeaderLength != headerLength {
		return texerr.Malformedf("archive: header length %d, want %d", h.HeaderLength, headerLength)
	}
	if h.Length == 0 {
		return texerr.Malformedf("archive: empty payload")
	}
	if h.CompressedLength == 0 {
		return texerr.Malformedf("archive: empty compressed payload")
	}
	if h.Length > math.MaxInt64 || h.CompressedLength > math.MaxInt64 {
		return texerr.Malformedf("archive: lengths %d/%d out of range", h.Length, h.CompressedLength)
	}
	return nil
}

// MarshalBinary encodes the header.
func (h *Header) MarshalBinary() ([]byte, error) {
	buf := make([]byte, HeaderSize)
	h.EncodeTo(buf)
	return buf, nil
}

// EncodeTo writes the header to buf, which must hold HeaderSize bytes.
func (h *Header) EncodeTo(buf []byte) {
	copy(buf[0:4], h.Magic[:])
	binary.LittleEndian.PutUint32(buf[4:8], h.HeaderLength)
	binary.LittleEndian.PutUint64(buf[8:16], h.Length)
	binary.LittleEndian.PutUint64(buf[16:24], h.CompressedLength)
}

// UnmarshalBinary decodes and validates the header.
func (h *Header) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return texerr.Malformedf("archive: header is %d bytes, want %d", len(data), HeaderSize)
	}
	h.DecodeFrom(data)
	return h.Validate()
}

// DecodeFrom reads the header from buf without validating it.
func (h *Header) DecodeFrom(buf []byte) {
	copy(h.Magic[:], buf[0:4])
	h.HeaderLength = binary.LittleEndian.Uint32(buf[4:8])
	h.Length = binary.LittleEndian.Uint64(buf[8:16])
	h.CompressedLength = binary.LittleEndian.Uint64(buf[16:24])
}
