package pixel

import (
	"github.com/cockroachdb/errors"

	"github.com/goopsie/texforge/pkg/texerr"
)

// Convert re-encodes srcBytes (in src layout) into dstBytes (in dst layout)
// for an image of the given size. The data always passes through an
// intermediate []Color buffer of size.Volume() entries, so precision beyond
// what a float64 holds in the normalized range is lost.
func Convert(src, dst Format, srcBytes, dstBytes []byte, size Size) error {
	if src == nil || dst == nil {
		return texerr.Preconditionf("pixel: convert: nil format")
	}
	if !size.Valid() {
		return texerr.Preconditionf("pixel: convert: invalid size %s", size)
	}

	colors := make([]Color, size.Volume())
	if err := src.Decode(srcBytes, size, colors); err != nil {
		return errors.Wrapf(err, "convert %s to %s", src.Name(), dst.Name())
	}
	if err := dst.Encode(colors, size, dstBytes); err != nil {
		return errors.Wrapf(err, "convert %s to %s", src.Name(), dst.Name())
	}
	return nil
}
