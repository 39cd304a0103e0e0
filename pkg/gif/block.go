package gif

// Block introducers and extension labels (GIF89a, sections 17-26).
const (
	tagExtension = 0x21
	tagImage     = 0x2C
	tagTrailer   = 0x3B

	labelGraphicControl = 0xF9
	labelComment        = 0xFE
	labelApplication    = 0xFF
)

const (
	headerLen           = 6
	screenDescriptorLen = 7
	imageDescriptorLen  = 9
	graphicControlLen   = 4

	// delayOffset is the position of the little-endian delay field counted
	// from the extension introducer: 21 F9 04 <packed> <lo> <hi>.
	delayOffset = 4
)

// signature is the only accepted header.
var signature = [headerLen]byte{'G', 'I', 'F', '8', '9', 'a'}

// Application identifiers whose first sub-block carries a loop count.
var loopApplications = []string{"NETSCAPE2.0", "ANIMEXTS1.0"}

// Block identifies the structural unit a section holds.
type Block uint8

const (
	BlockHeader Block = iota
	BlockApplication
	BlockComment
	BlockImage
	BlockFrame
	BlockTrailer
)

// String returns the block name used by inspect output.
func (b Block) String() string {
	switch b {
	case BlockHeader:
		return "header"
	case BlockApplication:
		return "application"
	case BlockComment:
		return "comment"
	case BlockImage:
		return "image"
	case BlockFrame:
		return "frame"
	case BlockTrailer:
		return "trailer"
	}
	return "unknown"
}

// colorTableSize returns the byte length of the color table flagged in a
// packed field, or 0 when the table flag (bit 7) is clear.
func colorTableSize(packed byte) int {
	if packed&0x80 == 0 {
		return 0
	}
	return 3 * (1 << ((packed & 0x07) + 1))
}
