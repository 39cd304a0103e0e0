package buffer

// Writer appends into a fixed-capacity byte slice. Unlike bytes.Buffer it
// never reallocates: a write that does not fit fails with ErrNoSpace and
// leaves the buffer unchanged.
type Writer struct {
	buf []byte
	n   int
}

// NewWriter returns a Writer over dst. Capacity is len(dst).
func NewWriter(dst []byte) *Writer {
	return &Writer{buf: dst}
}

// Write copies p to the buffer. It either writes all of p or nothing.
func (w *Writer) Write(p []byte) (int, error) {
	if len(p) > w.Available() {
		return 0, ErrNoSpace
	}
	copy(w.buf[w.n:], p)
	w.n += len(p)
	return len(p), nil
}

// PatchAt overwrites len(p) already-written bytes starting at off.
func (w *Writer) PatchAt(off int, p []byte) error {
	if off < 0 || off+len(p) > w.n {
		return ErrNoSpace
	}
	copy(w.buf[off:], p)
	return nil
}

// Len returns the number of bytes written.
func (w *Writer) Len() int { return w.n }

// Cap returns the total capacity.
func (w *Writer) Cap() int { return len(w.buf) }

// Available returns the number of bytes that can still be written.
func (w *Writer) Available() int { return len(w.buf) - w.n }

// Bytes returns the written portion of the buffer.
func (w *Writer) Bytes() []byte { return w.buf[:w.n] }
