package gif

import (
	"testing"

	"github.com/matzehuels/gifshuffle/pkg/errors"
	"github.com/matzehuels/gifshuffle/pkg/gif/giftest"
)

func TestScanSingleFrame(t *testing.T) {
	data := giftest.New().GlobalTable(0).Frames(1).Build()

	l, err := Scan(data)
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}

	want := []Section{
		{Start: 0, End: 19, Kind: KindStart, Block: BlockHeader},
		{Start: 19, End: 43, Kind: KindShuffle, Block: BlockFrame},
		{Start: 43, End: 44, Kind: KindEnd, Block: BlockTrailer},
	}
	if len(l.Sections) != len(want) {
		t.Fatalf("got %d sections, want %d: %+v", len(l.Sections), len(want), l.Sections)
	}
	for i, s := range l.Sections {
		if s != want[i] {
			t.Errorf("section %d = %+v, want %+v", i, s, want[i])
		}
	}
	if !l.GlobalColorTable {
		t.Error("GlobalColorTable = false, want true")
	}
	if l.Loop != nil {
		t.Errorf("Loop = %+v, want nil", l.Loop)
	}
}

func TestScanSectionsCoverInput(t *testing.T) {
	data := giftest.New().
		GlobalTable(2).
		Loop(3).
		Comment("hello").
		Frames(4).
		Image(9).
		FrameLocal(7, 42).
		Build()

	l, err := Scan(data)
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}

	pos := 0
	for i, s := range l.Sections {
		if s.Start != pos {
			t.Fatalf("section %d starts at %d, want %d", i, s.Start, pos)
		}
		if s.Len() <= 0 {
			t.Fatalf("section %d is empty", i)
		}
		pos = s.End
	}
	if pos != len(data) {
		t.Errorf("sections cover %d bytes, want %d", pos, len(data))
	}
	if last := l.Sections[len(l.Sections)-1]; last.Kind != KindEnd || last.Len() != 1 {
		t.Errorf("last section = %+v, want 1-byte end", last)
	}
	if l.FrameCount() != 5 {
		t.Errorf("FrameCount = %d, want 5", l.FrameCount())
	}
	if l.Size() != len(data) {
		t.Errorf("Size = %d, want %d", l.Size(), len(data))
	}

	blocks := []Block{BlockHeader, BlockApplication, BlockComment,
		BlockFrame, BlockFrame, BlockFrame, BlockFrame, BlockImage, BlockFrame, BlockTrailer}
	for i, b := range blocks {
		if l.Sections[i].Block != b {
			t.Errorf("section %d block = %v, want %v", i, l.Sections[i].Block, b)
		}
	}
	if l.Sections[7].Kind != KindStart {
		t.Errorf("bare image kind = %v, want start", l.Sections[7].Kind)
	}
}

func TestScanLoopBlock(t *testing.T) {
	data := giftest.New().GlobalTable(0).Loop(5).Frames(2).Build()

	l, err := Scan(data)
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if l.Loop == nil {
		t.Fatal("Loop = nil, want loop block")
	}
	if l.Loop.Section != 1 {
		t.Errorf("Loop.Section = %d, want 1", l.Loop.Section)
	}
	count, ok := l.LoopCount(data)
	if !ok || count != 5 {
		t.Errorf("LoopCount = %d, %v, want 5, true", count, ok)
	}
}

func TestScanLoopSubBlockPosition(t *testing.T) {
	netscape := func(sub ...byte) []byte {
		blk := append([]byte{0x21, 0xFF, 11}, "NETSCAPE2.0"...)
		return append(append(blk, sub...), 0)
	}
	tests := []struct {
		name      string
		block     []byte
		wantLoop  bool
		wantCount uint16
	}{
		{"loop only", netscape(3, 1, 4, 0), true, 4},
		{"buffering first", netscape(5, 2, 0, 1, 0, 0, 3, 1, 9, 0), true, 9},
		{"buffering only", netscape(5, 2, 0, 1, 0, 0), false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := giftest.New().GlobalTable(0).Raw(tt.block...).Frames(2).Build()
			l, err := Scan(data)
			if err != nil {
				t.Fatalf("Scan error: %v", err)
			}
			if (l.Loop != nil) != tt.wantLoop {
				t.Fatalf("Loop = %+v, want present=%v", l.Loop, tt.wantLoop)
			}
			if !tt.wantLoop {
				return
			}
			if count, ok := l.LoopCount(data); !ok || count != tt.wantCount {
				t.Errorf("LoopCount = %d, %v, want %d, true", count, ok, tt.wantCount)
			}
		})
	}
}

func TestScanFrameDelay(t *testing.T) {
	data := giftest.New().GlobalTable(0).Frame(25, 1).Frame(300, 2).Build()

	l, err := Scan(data)
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	frames := l.Frames()
	if got := FrameDelay(data, frames[0]); got != 25 {
		t.Errorf("delay[0] = %d, want 25", got)
	}
	if got := FrameDelay(data, frames[1]); got != 300 {
		t.Errorf("delay[1] = %d, want 300", got)
	}
}

func TestScanTrailing(t *testing.T) {
	data := append(giftest.New().GlobalTable(0).Frames(1).Build(), 0, 0, 0)

	l, err := Scan(data)
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if l.Trailing != 3 {
		t.Errorf("Trailing = %d, want 3", l.Trailing)
	}
	if l.Size() != len(data)-3 {
		t.Errorf("Size = %d, want %d", l.Size(), len(data)-3)
	}
}

func TestScanErrors(t *testing.T) {
	withGCT := func() *giftest.Builder { return giftest.New().GlobalTable(0) }
	truncatedData := withGCT().Frames(1).BuildOpen()
	truncatedData = truncatedData[:len(truncatedData)-3]

	tests := []struct {
		name string
		data []byte
		want errors.Code
	}{
		{"empty", nil, errors.ErrCodeWrongHeader},
		{"short header", []byte("GIF8"), errors.ErrCodeWrongHeader},
		{"gif87a", append([]byte("GIF87a"), make([]byte, 7)...), errors.ErrCodeWrongHeader},
		{"png", []byte("\x89PNG\r\n\x1a\n"), errors.ErrCodeWrongHeader},
		{"truncated screen descriptor", []byte("GIF89a\x01\x00"), errors.ErrCodeUnknownBlock},
		{"truncated global table", []byte("GIF89a\x01\x00\x01\x00\x81\x00\x00\x00"), errors.ErrCodeUnknownBlock},
		{"missing trailer", withGCT().Frames(2).BuildOpen(), errors.ErrCodeUnknownBlock},
		{"unknown tag", withGCT().Raw(0x00).Build(), errors.ErrCodeUnknownBlock},
		{
			"graphic control without image",
			withGCT().Raw(0x21, 0xF9, 4, 0, 10, 0, 0, 0).Comment("x").Build(),
			errors.ErrCodeUnknownBlock,
		},
		{"plain text extension", withGCT().Raw(0x21, 0x01, 12).Build(), errors.ErrCodeUnknownExtensionBlock},
		{"graphic control wrong size", withGCT().Raw(0x21, 0xF9, 5, 0, 0, 0, 0, 0, 0).Build(), errors.ErrCodeUnknownExtensionBlock},
		{"no color table", giftest.New().Frames(1).Build(), errors.ErrCodeMissingColorTable},
		{"bare image no color table", giftest.New().Image(1).Build(), errors.ErrCodeMissingColorTable},
		{"image data past end", truncatedData, errors.ErrCodeBlockAndStreamEndMismatch},
		{"unterminated comment", withGCT().Raw(0x21, 0xFE, 3, 'a').BuildOpen(), errors.ErrCodeUnknownBlock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Scan(tt.data)
			if err == nil {
				t.Fatal("Scan succeeded, want error")
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Scan error = %v, want %s", err, tt.want)
			}
		})
	}
}

func TestScanLocalColorTableWithoutGlobal(t *testing.T) {
	data := giftest.New().FrameLocal(10, 1).FrameLocal(10, 2).Build()

	l, err := Scan(data)
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if l.FrameCount() != 2 {
		t.Errorf("FrameCount = %d, want 2", l.FrameCount())
	}
}

func TestCursor(t *testing.T) {
	c := NewCursor([]byte{1, 2, 3, 4})

	b, err := c.Read(2)
	if err != nil || len(b) != 2 || b[0] != 1 {
		t.Fatalf("Read(2) = %v, %v", b, err)
	}
	if err := c.Skip(1); err != nil {
		t.Fatalf("Skip error: %v", err)
	}
	if c.Pos() != 3 || c.Len() != 1 {
		t.Errorf("Pos = %d, Len = %d", c.Pos(), c.Len())
	}
	if _, err := c.Read(2); err != errTruncated {
		t.Errorf("Read past end error = %v, want errTruncated", err)
	}
	if c.Pos() != 3 {
		t.Errorf("failed read moved cursor to %d", c.Pos())
	}
	if v, err := c.ReadByte(); err != nil || v != 4 {
		t.Errorf("ReadByte = %d, %v", v, err)
	}
	if _, err := c.ReadByte(); err != errTruncated {
		t.Errorf("ReadByte at end error = %v, want errTruncated", err)
	}
	if err := c.Skip(-1); err != errTruncated {
		t.Errorf("Skip(-1) error = %v, want errTruncated", err)
	}
}

func TestColorTableSize(t *testing.T) {
	tests := []struct {
		packed byte
		want   int
	}{
		{0x00, 0},
		{0x07, 0},
		{0x80, 6},
		{0x81, 12},
		{0x87, 768},
	}
	for _, tt := range tests {
		if got := colorTableSize(tt.packed); got != tt.want {
			t.Errorf("colorTableSize(0x%02X) = %d, want %d", tt.packed, got, tt.want)
		}
	}
}

func TestLayoutJSONRoundTrip(t *testing.T) {
	data := giftest.New().GlobalTable(0).Loop(2).Frames(2).Build()
	l, err := Scan(data)
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	raw, err := l.JSON()
	if err != nil {
		t.Fatalf("JSON error: %v", err)
	}
	got, err := ParseLayout(raw)
	if err != nil {
		t.Fatalf("ParseLayout error: %v", err)
	}
	if len(got.Sections) != len(l.Sections) || got.FrameCount() != 2 || got.Loop == nil {
		t.Errorf("ParseLayout = %+v", got)
	}
	for i := range l.Sections {
		if got.Sections[i] != l.Sections[i] {
			t.Errorf("section %d = %+v, want %+v", i, got.Sections[i], l.Sections[i])
		}
	}

	if _, err := ParseLayout([]byte(`{"sections":[{"kind":"middle"}]}`)); err == nil {
		t.Error("ParseLayout should reject unknown kinds")
	}
}

func TestDescribe(t *testing.T) {
	data := giftest.New().GlobalTable(0).Loop(3).Frame(5, 1).Frame(7, 2).Build()
	l, err := Scan(data)
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}

	info := Describe(data, l)
	if info.Frames != 2 || info.Size != len(data) {
		t.Errorf("Frames = %d, Size = %d", info.Frames, info.Size)
	}
	if info.Loop == nil || *info.Loop != 3 {
		t.Errorf("Loop = %v, want 3", info.Loop)
	}
	if len(info.Delays) != 2 || info.Delays[0] != 5 || info.Delays[1] != 7 {
		t.Errorf("Delays = %v, want [5 7]", info.Delays)
	}
	if got := info.TotalDelay(); got != 12 {
		t.Errorf("TotalDelay = %d, want 12", got)
	}

	bare := giftest.New().GlobalTable(0).Frames(1).Build()
	l, _ = Scan(bare)
	if info := Describe(bare, l); info.Loop != nil {
		t.Errorf("Loop = %v, want nil", *info.Loop)
	}
}
