package gif

import (
	"bytes"
	"slices"

	"github.com/matzehuels/gifshuffle/pkg/errors"
)

// blockKey is the (introducer, label) pair the scanner dispatches on.
// Label is zero for blocks that have none.
type blockKey struct {
	tag, label byte
}

var (
	keyApplication    = blockKey{tagExtension, labelApplication}
	keyComment        = blockKey{tagExtension, labelComment}
	keyGraphicControl = blockKey{tagExtension, labelGraphicControl}
	keyImage          = blockKey{tagImage, 0}
	keyTrailer        = blockKey{tagTrailer, 0}
)

// scanner walks a GIF stream once, front to back.
type scanner struct {
	data   []byte
	c      *Cursor
	layout *Layout
}

// Scan classifies data into sections. It validates only what is needed to
// find block boundaries; pixel data is never decoded.
//
// Failures carry one of the transform kinds from package errors:
// WrongHeader, UnknownBlock, UnknownExtensionBlock, MissingColorTable or
// BlockAndStreamEndMismatch.
func Scan(data []byte) (*Layout, error) {
	s := &scanner{data: data, c: NewCursor(data), layout: &Layout{}}
	if err := s.header(); err != nil {
		return nil, err
	}
	for {
		done, err := s.next()
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
	}
	s.layout.Trailing = s.c.Len()
	return s.layout, nil
}

// header consumes the signature, logical screen descriptor and global color
// table, emitting them as the first Start section.
func (s *scanner) header() error {
	sig, err := s.c.Read(headerLen)
	if err != nil || !bytes.Equal(sig, signature[:]) {
		return errors.New(errors.ErrCodeWrongHeader, "missing GIF89a signature")
	}
	lsd, err := s.c.Read(screenDescriptorLen)
	if err != nil {
		return errors.New(errors.ErrCodeUnknownBlock, "truncated logical screen descriptor")
	}
	packed := lsd[4]
	s.layout.GlobalColorTable = packed&0x80 != 0
	if err := s.c.Skip(colorTableSize(packed)); err != nil {
		return errors.New(errors.ErrCodeUnknownBlock, "truncated global color table")
	}
	s.emit(0, KindStart, BlockHeader)
	return nil
}

// next parses one block. It reports true once the trailer is reached.
func (s *scanner) next() (bool, error) {
	start := s.c.Pos()
	tag, err := s.c.ReadByte()
	if err != nil {
		return false, errors.New(errors.ErrCodeUnknownBlock, "stream ends at offset %d without trailer", start)
	}
	key := blockKey{tag: tag}
	if tag == tagExtension {
		if key.label, err = s.c.ReadByte(); err != nil {
			return false, errors.New(errors.ErrCodeUnknownBlock, "truncated extension at offset %d", start)
		}
	}

	switch key {
	case keyApplication:
		return false, s.application(start)
	case keyComment:
		return false, s.comment(start)
	case keyGraphicControl:
		return false, s.frame(start)
	case keyImage:
		if err := s.image(); err != nil {
			return false, err
		}
		s.emit(start, KindStart, BlockImage)
		return false, nil
	case keyTrailer:
		s.emit(start, KindEnd, BlockTrailer)
		return true, nil
	}

	if tag == tagExtension {
		return false, errors.New(errors.ErrCodeUnknownExtensionBlock,
			"extension label 0x%02X at offset %d", key.label, start)
	}
	return false, errors.New(errors.ErrCodeUnknownBlock, "block tag 0x%02X at offset %d", tag, start)
}

// application handles 21 FF. NETSCAPE2.0 and ANIMEXTS1.0 blocks carrying a
// 03 01 lo hi sub-block are recorded as the loop block.
func (s *scanner) application(start int) error {
	ident, err := s.fixedBlock()
	if err != nil {
		return errors.New(errors.ErrCodeUnknownBlock, "truncated application extension at offset %d", start)
	}
	first := s.c.Pos()
	if err := s.skipSubBlocks(); err != nil {
		return errors.New(errors.ErrCodeUnknownBlock, "unterminated application extension at offset %d", start)
	}
	if slices.Contains(loopApplications, string(ident)) {
		if at := loopSubBlock(s.data, first); at >= 0 {
			s.layout.Loop = &LoopBlock{Section: len(s.layout.Sections), Offset: at}
		}
	}
	s.emit(start, KindStart, BlockApplication)
	return nil
}

// loopSubBlock walks the sub-block chain starting at first and returns the
// offset of the loop count in the first 03 01 lo hi sub-block, or -1. The
// chain must already be known to be terminated within data.
func loopSubBlock(data []byte, first int) int {
	for p := first; data[p] != 0; p += int(data[p]) + 1 {
		if data[p] == 3 && data[p+1] == 1 {
			return p + 2
		}
	}
	return -1
}

// comment handles 21 FE.
func (s *scanner) comment(start int) error {
	if _, err := s.fixedBlock(); err != nil {
		return errors.New(errors.ErrCodeUnknownBlock, "truncated comment extension at offset %d", start)
	}
	if err := s.skipSubBlocks(); err != nil {
		return errors.New(errors.ErrCodeUnknownBlock, "unterminated comment extension at offset %d", start)
	}
	s.emit(start, KindStart, BlockComment)
	return nil
}

// frame handles 21 F9 followed by exactly one image: one animation frame.
func (s *scanner) frame(start int) error {
	size, err := s.c.ReadByte()
	if err != nil {
		return errors.New(errors.ErrCodeUnknownBlock, "truncated graphic control extension at offset %d", start)
	}
	if size != graphicControlLen {
		return errors.New(errors.ErrCodeUnknownExtensionBlock,
			"graphic control extension at offset %d has size %d, want %d", start, size, graphicControlLen)
	}
	// Parameters plus the block terminator.
	if err := s.c.Skip(graphicControlLen + 1); err != nil {
		return errors.New(errors.ErrCodeUnknownBlock, "truncated graphic control extension at offset %d", start)
	}
	at := s.c.Pos()
	tag, err := s.c.ReadByte()
	if err != nil || tag != tagImage {
		return errors.New(errors.ErrCodeUnknownBlock,
			"graphic control extension at offset %d is not followed by an image at offset %d", start, at)
	}
	if err := s.image(); err != nil {
		return err
	}
	s.emit(start, KindShuffle, BlockFrame)
	return nil
}

// image consumes an image descriptor (the 2C tag already read), its local
// color table and the LZW data chain.
func (s *scanner) image() error {
	at := s.c.Pos() - 1
	desc, err := s.c.Read(imageDescriptorLen)
	if err != nil {
		return errors.New(errors.ErrCodeUnknownBlock, "truncated image descriptor at offset %d", at)
	}
	packed := desc[imageDescriptorLen-1]
	if packed&0x80 == 0 && !s.layout.GlobalColorTable {
		return errors.New(errors.ErrCodeMissingColorTable, "image at offset %d", at)
	}
	if err := s.c.Skip(colorTableSize(packed)); err != nil {
		return errors.New(errors.ErrCodeUnknownBlock, "truncated local color table at offset %d", at)
	}
	// LZW minimum code size.
	if err := s.c.Skip(1); err != nil {
		return errors.New(errors.ErrCodeBlockAndStreamEndMismatch, "image at offset %d has no data", at)
	}
	if err := s.skipSubBlocks(); err != nil {
		return errors.New(errors.ErrCodeBlockAndStreamEndMismatch,
			"image data at offset %d runs past end of stream", at)
	}
	return nil
}

// fixedBlock reads a length byte and that many bytes.
func (s *scanner) fixedBlock() ([]byte, error) {
	n, err := s.c.ReadByte()
	if err != nil {
		return nil, err
	}
	return s.c.Read(int(n))
}

// skipSubBlocks advances over a chain of length-prefixed sub-blocks up to
// and including the zero-length terminator.
func (s *scanner) skipSubBlocks() error {
	for {
		n, err := s.c.ReadByte()
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		if err := s.c.Skip(int(n)); err != nil {
			return err
		}
	}
}

func (s *scanner) emit(start int, kind Kind, block Block) {
	s.layout.Sections = append(s.layout.Sections, Section{
		Start: start,
		End:   s.c.Pos(),
		Kind:  kind,
		Block: block,
	})
}
