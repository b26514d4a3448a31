// Package texerr defines the error kinds shared by the texture packages.
//
// Every error returned by pkg/pixel, pkg/texture, pkg/raster and pkg/dds is
// marked with exactly one of the kinds below, so callers can branch with
// errors.Is without parsing messages:
//
//	if errors.Is(err, texerr.ErrUnsupportedFormat) { ... }
package texerr

import "github.com/cockroachdb/errors"

var (
	// ErrMalformed marks input that does not follow the container layout:
	// bad magic, wrong header sizes, truncated streams.
	ErrMalformed = errors.New("malformed input")

	// ErrUnsupportedFormat marks pixel formats that exist in a container
	// but have no implemented conversion or mapping.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrPrecondition marks programmer errors caught at an API boundary:
	// out-of-range indices, non-positive sizes, mismatched buffer lengths.
	ErrPrecondition = errors.New("precondition violation")
)

// Malformedf returns a new error marked as ErrMalformed.
func Malformedf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrMalformed)
}

// WrapMalformed wraps err and marks the result as ErrMalformed.
func WrapMalformed(err error, format string, args ...interface{}) error {
	return errors.Mark(errors.Wrapf(err, format, args...), ErrMalformed)
}

// Unsupportedf returns a new error marked as ErrUnsupportedFormat.
func Unsupportedf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrUnsupportedFormat)
}

// Preconditionf returns a new error marked as ErrPrecondition.
func Preconditionf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrPrecondition)
}

// Kind reports which error kind err carries, or nil when it carries none.
func Kind(err error) error {
	for _, k := range []error{ErrMalformed, ErrUnsupportedFormat, ErrPrecondition} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
