package archive

import (
	"bytes"
	"io"

	"github.com/cockroachdb/errors"

	"github.com/goopsie/texforge/pkg/dds"
	"github.com/goopsie/texforge/pkg/texture"
)

// WriteResource encodes res as a DDS file and stores it compressed in dst.
func WriteResource(dst io.WriteSeeker, res *texture.Resource, opts ...WriterOption) error {
	cfg := &Writer{}
	for _, opt := range opts {
		opt(cfg)
	}

	var buf bytes.Buffer
	buf.Grow(res.ByteLen() + 148)
	if err := dds.Encode(&buf, res, cfg.ddsOpts...); err != nil {
		return errors.Wrap(err, "archive: encode dds")
	}
	return Encode(dst, buf.Bytes(), opts...)
}

// ReadResource decompresses a container written by WriteResource and
// decodes the DDS file inside it.
func ReadResource(r io.Reader) (*texture.Resource, error) {
	data, err := ReadAll(r)
	if err != nil {
		return nil, err
	}
	res, err := dds.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "archive: decode dds")
	}
	return res, nil
}
