//go:build !cgo

package archive

import (
	"io"

	"github.com/klauspost/compress/zstd"
)

// DefaultCompressionLevel favours speed; texture payloads are already
// dense and gain little from higher levels.
const DefaultCompressionLevel = 1

func newCompressor(w io.Writer, level int) (io.WriteCloser, error) {
	return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
}

func newDecompressor(r io.Reader) (io.ReadCloser, error) {
	d, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return d.IOReadCloser(), nil
}
