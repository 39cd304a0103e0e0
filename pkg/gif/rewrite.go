package gif

import (
	"encoding/binary"
	"math"
)

// Delay bounds in milliseconds. The stored field counts hundredths of a
// second, so these map to 2 and 65535 ticks.
const (
	minDelayMillis = 20
	maxDelayMillis = 655350
)

// netscapeBlockLen is the size of a synthesized loop extension:
// 21 FF 0B "NETSCAPE2.0" 03 01 lo hi 00.
const netscapeBlockLen = 19

// DelayTicks converts a speed in tenths of a second to the stored delay in
// hundredths, clamped to the range browsers honor and the field can hold.
func DelayTicks(speed float64) uint16 {
	ms := speed * 100
	if math.IsNaN(ms) || ms < minDelayMillis {
		ms = minDelayMillis
	} else if ms > maxDelayMillis {
		ms = maxDelayMillis
	}
	return uint16(math.Round(ms / 10))
}

// LoopCount clamps a requested loop count to the 16-bit field. Zero means
// loop forever.
func LoopCount(loop uint32) uint16 {
	return uint16(min(loop, math.MaxUint16))
}

// NetscapeBlock returns an application extension that sets the loop count.
func NetscapeBlock(count uint16) []byte {
	b := make([]byte, 0, netscapeBlockLen)
	b = append(b, tagExtension, labelApplication, 11)
	b = append(b, "NETSCAPE2.0"...)
	b = append(b, 3, 1)
	b = binary.LittleEndian.AppendUint16(b, count)
	return append(b, 0)
}

// Rewriter applies the optional delay and loop overrides during assembly.
// The zero value changes nothing.
type Rewriter struct {
	delay    [2]byte
	setDelay bool
	loop     [2]byte
	setLoop  bool
}

// NewRewriter builds a Rewriter. A nil argument leaves that field untouched.
func NewRewriter(speed *float64, loop *uint32) *Rewriter {
	r := &Rewriter{}
	if speed != nil {
		binary.LittleEndian.PutUint16(r.delay[:], DelayTicks(*speed))
		r.setDelay = true
	}
	if loop != nil {
		binary.LittleEndian.PutUint16(r.loop[:], LoopCount(*loop))
		r.setLoop = true
	}
	return r
}

// Growth returns how many bytes the rewrite adds to a stream with layout l.
func (r *Rewriter) Growth(l *Layout) int {
	if r.insertsLoop(l) {
		return netscapeBlockLen
	}
	return 0
}

// insertsLoop reports whether a loop block must be synthesized.
func (r *Rewriter) insertsLoop(l *Layout) bool {
	return r.setLoop && l.Loop == nil
}

// loopBlock returns the block to insert after the header.
func (r *Rewriter) loopBlock() []byte {
	return NetscapeBlock(binary.LittleEndian.Uint16(r.loop[:]))
}
