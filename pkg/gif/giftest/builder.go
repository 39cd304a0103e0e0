// Package giftest builds small, structurally valid GIF89a streams for tests.
//
//	data := giftest.New().GlobalTable(1).Loop(0).Frames(3).Build()
package giftest

import "encoding/binary"

// Builder assembles a GIF stream block by block.
type Builder struct {
	global int // global color table size exponent, -1 for none
	blocks [][]byte
}

// New returns a builder with no global color table.
func New() *Builder {
	return &Builder{global: -1}
}

// GlobalTable adds a global color table of 2^(n+1) entries.
func (b *Builder) GlobalTable(n int) *Builder {
	b.global = n
	return b
}

// Loop appends a NETSCAPE2.0 application extension.
func (b *Builder) Loop(count uint16) *Builder {
	blk := []byte{0x21, 0xFF, 11}
	blk = append(blk, "NETSCAPE2.0"...)
	blk = append(blk, 3, 1)
	blk = binary.LittleEndian.AppendUint16(blk, count)
	b.blocks = append(b.blocks, append(blk, 0))
	return b
}

// Comment appends a comment extension carrying text.
func (b *Builder) Comment(text string) *Builder {
	blk := []byte{0x21, 0xFE}
	blk = append(blk, subBlocks([]byte(text))...)
	b.blocks = append(b.blocks, blk)
	return b
}

// Frame appends a graphic control extension with the given delay and an
// image whose data sub-blocks are filled with marker.
func (b *Builder) Frame(delay uint16, marker byte) *Builder {
	b.blocks = append(b.blocks, FrameBytes(delay, marker, false))
	return b
}

// FrameLocal is like Frame but gives the image a local color table.
func (b *Builder) FrameLocal(delay uint16, marker byte) *Builder {
	b.blocks = append(b.blocks, FrameBytes(delay, marker, true))
	return b
}

// Frames appends n frames with distinct markers 1..n and delay 10.
func (b *Builder) Frames(n int) *Builder {
	for i := range n {
		b.Frame(10, byte(i+1))
	}
	return b
}

// Image appends an image with no graphic control extension.
func (b *Builder) Image(marker byte) *Builder {
	b.blocks = append(b.blocks, imageBytes(marker, false))
	return b
}

// Raw appends arbitrary bytes.
func (b *Builder) Raw(p ...byte) *Builder {
	b.blocks = append(b.blocks, p)
	return b
}

// Build returns the stream terminated with a trailer.
func (b *Builder) Build() []byte {
	return append(b.BuildOpen(), 0x3B)
}

// BuildOpen returns the stream without the trailer.
func (b *Builder) BuildOpen() []byte {
	out := []byte("GIF89a")
	packed := byte(0)
	if b.global >= 0 {
		packed = 0x80 | byte(b.global&0x07)
	}
	out = append(out, 1, 0, 1, 0, packed, 0, 0)
	if b.global >= 0 {
		out = append(out, make([]byte, 3*(1<<(b.global+1)))...)
	}
	for _, blk := range b.blocks {
		out = append(out, blk...)
	}
	return out
}

// FrameBytes returns one graphic control extension plus image.
func FrameBytes(delay uint16, marker byte, local bool) []byte {
	gce := []byte{0x21, 0xF9, 4, 0}
	gce = binary.LittleEndian.AppendUint16(gce, delay)
	gce = append(gce, 0, 0)
	return append(gce, imageBytes(marker, local)...)
}

func imageBytes(marker byte, local bool) []byte {
	img := []byte{0x2C, 0, 0, 0, 0, 1, 0, 1, 0}
	if local {
		img = append(img, 0x80)
		img = append(img, make([]byte, 6)...)
	} else {
		img = append(img, 0)
	}
	img = append(img, 2) // LZW minimum code size
	return append(img, subBlocks([]byte{marker, marker, marker})...)
}

// subBlocks splits p into length-prefixed sub-blocks with a terminator.
func subBlocks(p []byte) []byte {
	var out []byte
	for len(p) > 0 {
		n := min(len(p), 255)
		out = append(out, byte(n))
		out = append(out, p[:n]...)
		p = p[n:]
	}
	return append(out, 0)
}
