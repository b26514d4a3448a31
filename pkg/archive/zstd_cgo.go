//go:build cgo

package archive

import (
	"io"

	"github.com/DataDog/zstd"
)

// DefaultCompressionLevel favours speed; texture payloads are already
// dense and gain little from higher levels.
const DefaultCompressionLevel = zstd.BestSpeed

func newCompressor(w io.Writer, level int) (io.WriteCloser, error) {
	return zstd.NewWriterLevel(w, level), nil
}

func newDecompressor(r io.Reader) (io.ReadCloser, error) {
	return zstd.NewReader(r), nil
}
