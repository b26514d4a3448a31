// Package texture holds raw texture data independent of any file format.
//
// A Resource is a grid of subresources, one byte buffer per (mip level,
// array slice) pair, each sized for its mip level by the resource's pixel
// format. Codecs read and write subresources in the order Each visits them.
package texture

import (
	"math/bits"

	"github.com/goopsie/texforge/pkg/pixel"
	"github.com/goopsie/texforge/pkg/texerr"
)

// Resource owns the subresource buffers of one texture.
type Resource struct {
	size      pixel.Size
	mipLevels int
	arraySize int
	format    pixel.Format
	cubemap   bool

	// data is indexed by slice*mipLevels + mip.
	data [][]byte
}

// MipLevels returns the length of a full mip chain for size:
// floor(log2(max dimension)) + 1.
func MipLevels(size pixel.Size) int {
	m := max(size.Max(), 1)
	return bits.Len(uint(m))
}

// MipSliceSize returns the size of mip level mip of a texture of the given
// size. Each dimension is halved with floor division and kept at least 1.
func MipSliceSize(size pixel.Size, mip int) pixel.Size {
	return pixel.Size{
		Width:  max(size.Width>>mip, 1),
		Height: max(size.Height>>mip, 1),
		Depth:  max(size.Depth>>mip, 1),
	}
}

// New allocates a resource with every subresource zeroed. Dimensions below
// 1 are raised to 1; negative dimensions are rejected. A mipLevels of 0
// selects the full chain.
func New(size pixel.Size, mipLevels, arraySize int, format pixel.Format) (*Resource, error) {
	if format == nil {
		return nil, texerr.Preconditionf("texture: nil format")
	}
	if size.Width < 0 || size.Height < 0 || size.Depth < 0 {
		return nil, texerr.Preconditionf("texture: negative size %s", size)
	}
	size = pixel.Size{
		Width:  max(size.Width, 1),
		Height: max(size.Height, 1),
		Depth:  max(size.Depth, 1),
	}

	full := MipLevels(size)
	switch {
	case mipLevels == 0:
		mipLevels = full
	case mipLevels < 0 || mipLevels > full:
		return nil, texerr.Preconditionf("texture: %d mip levels for size %s, want 0..%d", mipLevels, size, full)
	}
	if arraySize < 1 {
		return nil, texerr.Preconditionf("texture: array size %d, want at least 1", arraySize)
	}

	r := &Resource{
		size:      size,
		mipLevels: mipLevels,
		arraySize: arraySize,
		format:    format,
		data:      make([][]byte, mipLevels*arraySize),
	}
	for slice := 0; slice < arraySize; slice++ {
		for mip := 0; mip < mipLevels; mip++ {
			total, _, _ := format.ByteCount(r.MipSliceSize(mip))
			r.data[r.Index(mip, slice)] = make([]byte, total)
		}
	}
	return r, nil
}

// Size returns the size of mip level 0.
func (r *Resource) Size() pixel.Size { return r.size }

// MipLevels returns the number of mip levels per array slice.
func (r *Resource) MipLevels() int { return r.mipLevels }

// ArraySize returns the number of array slices. For cubemaps this counts
// faces, so it is a multiple of six.
func (r *Resource) ArraySize() int { return r.arraySize }

// Format returns the pixel format of every subresource.
func (r *Resource) Format() pixel.Format { return r.format }

// Cubemap reports whether the array slices are cube faces.
func (r *Resource) Cubemap() bool { return r.cubemap }

// SetCubemap marks the array slices as groups of six cube faces. Volume
// textures cannot be cubemaps.
func (r *Resource) SetCubemap(cubemap bool) error {
	if cubemap {
		if r.size.Depth > 1 {
			return texerr.Preconditionf("texture: cubemap with depth %d", r.size.Depth)
		}
		if r.arraySize%6 != 0 {
			return texerr.Preconditionf("texture: cubemap with %d array slices", r.arraySize)
		}
	}
	r.cubemap = cubemap
	return nil
}

// MipSliceSize returns the size of mip level mip.
func (r *Resource) MipSliceSize(mip int) pixel.Size {
	return MipSliceSize(r.size, mip)
}

// Len returns the number of subresources.
func (r *Resource) Len() int { return len(r.data) }

// Index returns the flat subresource index of (mip, slice), which is also
// its position in codec order.
func (r *Resource) Index(mip, slice int) int {
	return slice*r.mipLevels + mip
}

func (r *Resource) inRange(mip, slice int) bool {
	return mip >= 0 && mip < r.mipLevels && slice >= 0 && slice < r.arraySize
}

// Subresource returns the buffer for (mip, slice). The buffer is owned by
// the resource; writes through it modify the texture.
func (r *Resource) Subresource(mip, slice int) ([]byte, error) {
	if !r.inRange(mip, slice) {
		return nil, texerr.Preconditionf("texture: subresource (%d, %d) outside %d mips x %d slices",
			mip, slice, r.mipLevels, r.arraySize)
	}
	return r.data[r.Index(mip, slice)], nil
}

// SetSubresource replaces the buffer for (mip, slice) with b. It reports
// false and leaves the resource unchanged when the indices are out of range
// or len(b) differs from the current buffer length.
func (r *Resource) SetSubresource(mip, slice int, b []byte) bool {
	if !r.inRange(mip, slice) {
		return false
	}
	i := r.Index(mip, slice)
	if len(b) != len(r.data[i]) {
		return false
	}
	r.data[i] = b
	return true
}

// Each calls fn for every subresource, all mips of slice 0 first, then all
// mips of slice 1, and so on. Iteration stops at the first error.
func (r *Resource) Each(fn func(mip, slice int, b []byte) error) error {
	for slice := 0; slice < r.arraySize; slice++ {
		for mip := 0; mip < r.mipLevels; mip++ {
			if err := fn(mip, slice, r.data[r.Index(mip, slice)]); err != nil {
				return err
			}
		}
	}
	return nil
}

// ByteLen returns the summed length of every subresource.
func (r *Resource) ByteLen() int {
	n := 0
	for _, b := range r.data {
		n += len(b)
	}
	return n
}
