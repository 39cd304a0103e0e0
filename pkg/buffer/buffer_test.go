package buffer

import (
	"bytes"
	"errors"
	"sync"
	"testing"
)

func TestHeap(t *testing.T) {
	var h Heap
	b, err := h.Acquire(16)
	if err != nil {
		t.Fatalf("Acquire error: %v", err)
	}
	if len(b) != 16 {
		t.Errorf("len = %d, want 16", len(b))
	}
	h.Release(b)

	if _, err := h.Acquire(-1); !errors.Is(err, ErrOutOfMemory) {
		t.Errorf("Acquire(-1) error = %v, want ErrOutOfMemory", err)
	}
}

func TestLimited(t *testing.T) {
	l := NewLimited(10)

	a, err := l.Acquire(6)
	if err != nil {
		t.Fatalf("Acquire(6) error: %v", err)
	}
	if _, err := l.Acquire(5); !errors.Is(err, ErrOutOfMemory) {
		t.Errorf("Acquire over budget error = %v, want ErrOutOfMemory", err)
	}
	if l.InUse() != 6 {
		t.Errorf("InUse = %d, want 6", l.InUse())
	}

	l.Release(a)
	if l.InUse() != 0 {
		t.Errorf("InUse after release = %d, want 0", l.InUse())
	}
	if _, err := l.Acquire(10); err != nil {
		t.Errorf("Acquire(10) after release error: %v", err)
	}

	l.Release(nil)
}

func TestLimitedConcurrent(t *testing.T) {
	l := NewLimited(1 << 20)
	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b, err := l.Acquire(1024)
			if err != nil {
				t.Errorf("Acquire error: %v", err)
				return
			}
			l.Release(b)
		}()
	}
	wg.Wait()
	if l.InUse() != 0 {
		t.Errorf("InUse = %d, want 0", l.InUse())
	}
}

func TestWriter(t *testing.T) {
	w := NewWriter(make([]byte, 5))

	if _, err := w.Write([]byte("abc")); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if _, err := w.Write([]byte("def")); !errors.Is(err, ErrNoSpace) {
		t.Errorf("overflow Write error = %v, want ErrNoSpace", err)
	}
	if w.Len() != 3 {
		t.Errorf("Len after failed write = %d, want 3", w.Len())
	}
	if _, err := w.Write([]byte("de")); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if w.Available() != 0 || w.Cap() != 5 {
		t.Errorf("Available = %d, Cap = %d", w.Available(), w.Cap())
	}
	if !bytes.Equal(w.Bytes(), []byte("abcde")) {
		t.Errorf("Bytes = %q", w.Bytes())
	}
}

func TestWriterPatchAt(t *testing.T) {
	w := NewWriter(make([]byte, 4))
	w.Write([]byte("abcd"))

	if err := w.PatchAt(1, []byte("XY")); err != nil {
		t.Fatalf("PatchAt error: %v", err)
	}
	if got := string(w.Bytes()); got != "aXYd" {
		t.Errorf("Bytes = %q, want aXYd", got)
	}
	if err := w.PatchAt(3, []byte("ZZ")); !errors.Is(err, ErrNoSpace) {
		t.Errorf("PatchAt past written error = %v, want ErrNoSpace", err)
	}
}
