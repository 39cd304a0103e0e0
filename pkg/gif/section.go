package gif

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
)

// Kind classifies how a section is treated during reassembly.
type Kind uint8

const (
	// KindStart sections are written first, in their original order.
	KindStart Kind = iota
	// KindShuffle sections are animation frames and get permuted.
	KindShuffle
	// KindEnd is the trailer, written last.
	KindEnd
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindStart:
		return "start"
	case KindShuffle:
		return "shuffle"
	case KindEnd:
		return "end"
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	for c := KindStart; c <= KindEnd; c++ {
		if c.String() == string(text) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("unknown section kind %q", text)
}

// MarshalText implements encoding.TextMarshaler.
func (b Block) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *Block) UnmarshalText(text []byte) error {
	for c := BlockHeader; c <= BlockTrailer; c++ {
		if c.String() == string(text) {
			*b = c
			return nil
		}
	}
	return fmt.Errorf("unknown block %q", text)
}

// Section is a half-open byte range [Start, End) of the input.
type Section struct {
	Start int   `json:"start"`
	End   int   `json:"end"`
	Kind  Kind  `json:"kind"`
	Block Block `json:"block"`
}

// Len returns the section length in bytes.
func (s Section) Len() int { return s.End - s.Start }

// LoopBlock locates the loop count inside an application extension.
type LoopBlock struct {
	Section int `json:"section"` // index into Layout.Sections
	Offset  int `json:"offset"`  // absolute offset of the little-endian count
}

// Layout is the classified structure of one GIF stream. It holds offsets
// only; the bytes stay in the caller's buffer.
type Layout struct {
	Sections         []Section  `json:"sections"`
	GlobalColorTable bool       `json:"global_color_table"`
	Loop             *LoopBlock `json:"loop,omitempty"`
	Trailing         int        `json:"trailing,omitempty"` // bytes after the trailer, dropped on output
}

// Frames returns the Shuffle sections in stream order.
func (l *Layout) Frames() []Section {
	var frames []Section
	for _, s := range l.Sections {
		if s.Kind == KindShuffle {
			frames = append(frames, s)
		}
	}
	return frames
}

// FrameCount returns the number of Shuffle sections.
func (l *Layout) FrameCount() int {
	n := 0
	for _, s := range l.Sections {
		if s.Kind == KindShuffle {
			n++
		}
	}
	return n
}

// Size returns the total length of all sections.
func (l *Layout) Size() int {
	n := 0
	for _, s := range l.Sections {
		n += s.Len()
	}
	return n
}

// LoopCount reads the loop count from data, reporting false when the
// stream carries no loop block.
func (l *Layout) LoopCount(data []byte) (uint16, bool) {
	if l.Loop == nil {
		return 0, false
	}
	return binary.LittleEndian.Uint16(data[l.Loop.Offset:]), true
}

// FrameDelay reads the delay, in hundredths of a second, of a frame section.
func FrameDelay(data []byte, s Section) uint16 {
	return binary.LittleEndian.Uint16(data[s.Start+delayOffset:])
}

// JSON returns the layout as indented JSON.
func (l *Layout) JSON() ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// ParseLayout decodes a layout produced by JSON.
func ParseLayout(data []byte) (*Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, err
	}
	return &l, nil
}
