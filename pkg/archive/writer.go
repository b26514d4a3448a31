package archive

import (
	"io"

	"github.com/cockroachdb/errors"

	"github.com/goopsie/texforge/pkg/dds"
)

// Writer compresses a payload into a container. The header is written
// first with a zero compressed length and patched on Close, so the
// destination must be seekable.
type Writer struct {
	dst     io.WriteSeeker
	zWriter io.WriteCloser
	header  *Header
	start   int64

	level   int
	ddsOpts []dds.EncodeOption
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithCompressionLevel sets the zstd compression level.
func WithCompressionLevel(level int) WriterOption {
	return func(w *Writer) {
		w.level = level
	}
}

// WithDDSOptions passes options to the DDS encoder used by WriteResource.
func WithDDSOptions(opts ...dds.EncodeOption) WriterOption {
	return func(w *Writer) {
		w.ddsOpts = append(w.ddsOpts, opts...)
	}
}

// NewWriter writes a container header to dst and returns a writer for a
// payload of uncompressedSize bytes.
func NewWriter(dst io.WriteSeeker, uncompressedSize uint64, opts ...WriterOption) (*Writer, error) {
	w := &Writer{
		dst:   dst,
		level: DefaultCompressionLevel,
		header: &Header{
			Magic:        Magic,
			HeaderLength: headerLength,
			Length:       uncompressedSize,
		},
	}
	for _, opt := range opts {
		opt(w)
	}

	start, err := dst.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, errors.Wrap(err, "archive: get position")
	}
	w.start = start

	headerBytes, err := w.header.MarshalBinary()
	if err != nil {
		return nil, errors.Wrap(err, "archive: marshal header")
	}
	if _, err := dst.Write(headerBytes); err != nil {
		return nil, errors.Wrap(err, "archive: write header")
	}

	w.zWriter, err = newCompressor(dst, w.level)
	if err != nil {
		return nil, errors.Wrap(err, "archive: create compressor")
	}
	return w, nil
}

// Write compresses p into the container.
func (w *Writer) Write(p []byte) (n int, err error) {
	return w.zWriter.Write(p)
}

// Close flushes the compressor and records the compressed length in the
// header. The destination is left positioned after the payload.
func (w *Writer) Close() error {
	if err := w.zWriter.Close(); err != nil {
		return errors.Wrap(err, "archive: close compressor")
	}

	end, err := w.dst.Seek(0, io.SeekCurrent)
	if err != nil {
		return errors.Wrap(err, "archive: get position")
	}
	w.header.CompressedLength = uint64(end - w.start - int64(w.header.Size()))

	if _, err := w.dst.Seek(w.start, io.SeekStart); err != nil {
		return errors.Wrap(err, "archive: seek to header")
	}
	headerBytes, err := w.header.MarshalBinary()
	if err != nil {
		return errors.Wrap(err, "archive: marshal header")
	}
	if _, err := w.dst.Write(headerBytes); err != nil {
		return errors.Wrap(err, "archive: rewrite header")
	}
	if _, err := w.dst.Seek(end, io.SeekStart); err != nil {
		return errors.Wrap(err, "archive: seek to end")
	}
	return nil
}

// Encode compresses data into a container written to dst.
func Encode(dst io.WriteSeeker, data []byte, opts ...WriterOption) error {
	w, err := NewWriter(dst, uint64(len(data)), opts...)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return errors.Wrap(err, "archive: write payload")
	}
	return w.Close()
}
