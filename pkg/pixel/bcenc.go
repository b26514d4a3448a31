package pixel

import "encoding/binary"

// Block encoders. Endpoints come from the bounding box of the block
// colours; every texel then takes the nearest palette entry.

func encodeBC1(px *[16][4]uint8, out []byte) {
	encodeColorBlock(px, true, out)
}

func encodeBC2(px *[16][4]uint8, out []byte) {
	var bits uint64
	for i, p := range px {
		a4 := (uint64(p[3])*15 + 127) / 255
		bits |= a4 << (4 * i)
	}
	binary.LittleEndian.PutUint64(out[0:8], bits)
	encodeColorBlock(px, false, out[8:16])
}

func encodeBC3(px *[16][4]uint8, out []byte) {
	encodeAlphaBlock(px, out[0:8])
	encodeColorBlock(px, false, out[8:16])
}

// encodeColorBlock writes the 8-byte colour part shared by BC1, BC2 and BC3.
// With punchThrough set, texels with alpha below 128 switch the block to
// three-colour mode and use the transparent index.
func encodeColorBlock(px *[16][4]uint8, punchThrough bool, out []byte) {
	lo := [3]int{255, 255, 255}
	hi := [3]int{0, 0, 0}
	transparent := false
	for _, p := range px {
		if punchThrough && p[3] < 128 {
			transparent = true
			continue
		}
		for c := 0; c < 3; c++ {
			lo[c] = min(lo[c], int(p[c]))
			hi[c] = max(hi[c], int(p[c]))
		}
	}
	if lo[0] > hi[0] {
		lo, hi = [3]int{}, [3]int{}
	}

	c0, c1 := pack565(hi), pack565(lo)
	if transparent {
		if c0 > c1 {
			c0, c1 = c1, c0
		}
	} else if c0 < c1 {
		c0, c1 = c1, c0
	}

	palette := colorPalette(c0, c1)
	candidates := 4
	if c0 <= c1 {
		candidates = 3
	}

	var indices uint32
	for i, p := range px {
		idx := 0
		if transparent && p[3] < 128 {
			idx = 3
		} else {
			best := -1
			for j := 0; j < candidates; j++ {
				d := 0
				for c := 0; c < 3; c++ {
					e := int(p[c]) - palette[j][c]
					d += e * e
				}
				if best < 0 || d < best {
					best, idx = d, j
				}
			}
		}
		indices |= uint32(idx) << (2 * i)
	}

	binary.LittleEndian.PutUint16(out[0:2], c0)
	binary.LittleEndian.PutUint16(out[2:4], c1)
	binary.LittleEndian.PutUint32(out[4:8], indices)
}

// encodeAlphaBlock writes the 8-byte interpolated alpha part of BC3.
func encodeAlphaBlock(px *[16][4]uint8, out []byte) {
	a0, a1 := 0, 255
	for _, p := range px {
		a0 = max(a0, int(p[3]))
		a1 = min(a1, int(p[3]))
	}

	var palette [8]int
	palette[0], palette[1] = a0, a1
	if a0 > a1 {
		for i := 2; i < 8; i++ {
			palette[i] = (a0*(8-i) + a1*(i-1)) / 7
		}
	} else {
		for i := 2; i < 6; i++ {
			palette[i] = (a0*(6-i) + a1*(i-1)) / 5
		}
		palette[6], palette[7] = 0, 255
	}

	var bits uint64
	for i, p := range px {
		idx, best := 0, -1
		for j, v := range palette {
			d := int(p[3]) - v
			d *= d
			if best < 0 || d < best {
				best, idx = d, j
			}
		}
		bits |= uint64(idx) << (3 * i)
	}

	out[0], out[1] = uint8(a0), uint8(a1)
	for i := 0; i < 6; i++ {
		out[2+i] = byte(bits >> (8 * i))
	}
}

func pack565(c [3]int) uint16 {
	r := uint16((c[0]*31 + 127) / 255)
	g := uint16((c[1]*63 + 127) / 255)
	b := uint16((c[2]*31 + 127) / 255)
	return r<<11 | g<<5 | b
}

func expand565(c uint16) [3]int {
	r5 := int(c>>11) & 0x1F
	g6 := int(c>>5) & 0x3F
	b5 := int(c) & 0x1F
	return [3]int{r5<<3 | r5>>2, g6<<2 | g6>>4, b5<<3 | b5>>2}
}

// colorPalette mirrors the decoder palette: four-colour mode when c0 > c1,
// otherwise three colours plus transparent black.
func colorPalette(c0, c1 uint16) [4][3]int {
	var p [4][3]int
	p[0], p[1] = expand565(c0), expand565(c1)
	for c := 0; c < 3; c++ {
		if c0 > c1 {
			p[2][c] = (2*p[0][c] + p[1][c]) / 3
			p[3][c] = (p[0][c] + 2*p[1][c]) / 3
		} else {
			p[2][c] = (p[0][c] + p[1][c]) / 2
		}
	}
	return p
}
