// Package buffer models the host's "acquire N bytes / release buffer"
// capability and provides a fixed-capacity writer over acquired memory.
//
// The transform never grows an output slice implicitly: it asks an
// [Allocator] for exactly the bytes it needs, writes through a [Writer] that
// refuses to exceed capacity, and hands the buffer to the caller, who
// releases it when done.
//
//	alloc := buffer.NewLimited(64 << 20)
//	out, err := alloc.Acquire(n)
//	if err != nil {
//	    return err // ErrOutOfMemory
//	}
//	defer alloc.Release(out)
package buffer

import (
	"errors"
	"sync"
)

// Sentinel errors.
var (
	// ErrOutOfMemory is returned when an allocator cannot satisfy a request.
	ErrOutOfMemory = errors.New("out of memory")

	// ErrNoSpace is returned when a write would exceed the writer's capacity.
	ErrNoSpace = errors.New("no space left in buffer")
)

// Allocator acquires and releases byte buffers.
type Allocator interface {
	// Acquire returns a zeroed buffer of exactly n bytes.
	Acquire(n int) ([]byte, error)

	// Release returns a buffer obtained from Acquire. Releasing nil is a no-op.
	Release(b []byte)
}

// Heap allocates from the Go heap. Release is a no-op; the garbage
// collector reclaims the memory.
type Heap struct{}

// Acquire allocates n bytes.
func (Heap) Acquire(n int) ([]byte, error) {
	if n < 0 {
		return nil, ErrOutOfMemory
	}
	return make([]byte, n), nil
}

// Release does nothing.
func (Heap) Release([]byte) {}

// Limited is an allocator with a fixed byte budget. It tracks outstanding
// bytes so that every Acquire must be balanced by a Release before the
// budget is available again. Safe for concurrent use.
type Limited struct {
	mu    sync.Mutex
	limit int
	used  int
}

// NewLimited creates an allocator that never has more than limit bytes
// outstanding.
func NewLimited(limit int) *Limited {
	return &Limited{limit: limit}
}

// Acquire reserves n bytes from the budget.
func (l *Limited) Acquire(n int) ([]byte, error) {
	if n < 0 {
		return nil, ErrOutOfMemory
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.used+n > l.limit {
		return nil, ErrOutOfMemory
	}
	l.used += n
	return make([]byte, n), nil
}

// Release returns len(b) bytes to the budget.
func (l *Limited) Release(b []byte) {
	if b == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.used -= cap(b)
	if l.used < 0 {
		l.used = 0
	}
}

// InUse returns the number of bytes currently outstanding.
func (l *Limited) InUse() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.used
}

var (
	_ Allocator = Heap{}
	_ Allocator = (*Limited)(nil)
)
