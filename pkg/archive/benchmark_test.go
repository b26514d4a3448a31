package archive

import (
	"bytes"
	"testing"

	"github.com/goopsie/texforge/pkg/pixel"
	"github.com/goopsie/texforge/pkg/texture"
)

func BenchmarkHeader(b *testing.B) {
	header := &Header{
		Magic:            Magic,
		HeaderLength:     16,
		Length:           1024 * 1024,
		CompressedLength: 512 * 1024,
	}

	b.Run("EncodeTo", func(b *testing.B) {
		buf := make([]byte, HeaderSize)
		for i := 0; i < b.N; i++ {
			header.EncodeTo(buf)
		}
	})

	data, _ := header.MarshalBinary()

	b.Run("Unmarshal", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			h := &Header{}
			if err := h.UnmarshalBinary(data); err != nil {
				b.Fatal(err)
			}
		}
	})
}

func BenchmarkEncodeDecode(b *testing.B) {
	data := make([]byte, 1024*1024)
	for i := range data {
		data[i] = byte(i % 256)
	}

	b.Run("Encode", func(b *testing.B) {
		b.SetBytes(int64(len(data)))
		for i := 0; i < b.N; i++ {
			ws := &seekableBuffer{Buffer: &bytes.Buffer{}}
			if err := Encode(ws, data); err != nil {
				b.Fatal(err)
			}
		}
	})

	ws := &seekableBuffer{Buffer: &bytes.Buffer{}}
	if err := Encode(ws, data); err != nil {
		b.Fatal(err)
	}
	encoded := ws.Bytes()

	b.Run("Decode", func(b *testing.B) {
		b.SetBytes(int64(len(data)))
		for i := 0; i < b.N; i++ {
			if _, err := ReadAll(bytes.NewReader(encoded)); err != nil {
				b.Fatal(err)
			}
		}
	})
}

func BenchmarkWriteResource(b *testing.B) {
	res, err := texture.New(pixel.Size{Width: 256, Height: 256, Depth: 1}, 0, 1, pixel.R8G8B8A8UNorm.Format())
	if err != nil {
		b.Fatal(err)
	}
	for i := 0; i < b.N; i++ {
		ws := &seekableBuffer{Buffer: &bytes.Buffer{}}
		if err := WriteResource(ws, res); err != nil {
			b.Fatal(err)
		}
	}
}
