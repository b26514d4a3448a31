package archive

import (
	"bytes"
	"io"

	"github.com/goopsie/texforge/pkg/texerr"
)

// Reader decompresses the payload of a container.
type Reader struct {
	header    *Header
	zReader   io.ReadCloser
	headerBuf [HeaderSize]byte
}

// NewReader reads and validates the container header from r and returns a
// reader over the decompressed payload.
func NewReader(r io.Reader) (*Reader, error) {
	reader := &Reader{
		header: &Header{},
	}

	if _, err := io.ReadFull(r, reader.headerBuf[:]); err != nil {
		return nil, texerr.WrapMalformed(err, "archive: read header")
	}
	if err := reader.header.UnmarshalBinary(reader.headerBuf[:]); err != nil {
		return nil, err
	}

	zr, err := newDecompressor(io.LimitReader(r, int64(reader.header.CompressedLength)))
	if err != nil {
		return nil, texerr.WrapMalformed(err, "archive: create decompressor")
	}
	reader.zReader = zr
	return reader, nil
}

// Header returns the container header.
func (r *Reader) Header() *Header {
	return r.header
}

// Read reads decompressed payload bytes.
func (r *Reader) Read(p []byte) (n int, err error) {
	return r.zReader.Read(p)
}

// Close releases the decompressor.
func (r *Reader) Close() error {
	return r.zReader.Close()
}

// Length returns the uncompressed payload length.
func (r *Reader) Length() int {
	return int(r.header.Length)
}

// CompressedLength returns the compressed payload length.
func (r *Reader) CompressedLength() int {
	return int(r.header.CompressedLength)
}

// maxPrealloc caps the buffer ReadAll reserves from the header length.
const maxPrealloc = 64 << 20

// ReadAll returns the whole decompressed payload of a container.
func ReadAll(r io.Reader) ([]byte, error) {
	reader, err := NewReader(r)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	// The header length is untrusted; only preallocate a bounded amount and
	// let the buffer grow with what the stream actually yields.
	length := int64(reader.header.Length)
	var buf bytes.Buffer
	buf.Grow(int(min(length, maxPrealloc)))
	n, err := io.Copy(&buf, io.LimitReader(reader, length))
	if err != nil {
		return nil, texerr.WrapMalformed(err, "archive: read payload")
	}
	if n != length {
		return nil, texerr.Malformedf("archive: payload is %d bytes, header says %d", n, length)
	}
	return buf.Bytes(), nil
}
