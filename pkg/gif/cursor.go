package gif

import "errors"

// errTruncated reports a read past the end of the input. The scanner turns
// it into the kind that fits the block being parsed.
var errTruncated = errors.New("reading past end of buffer")

// Cursor is a forward-only, bounds-checked view over a byte slice.
type Cursor struct {
	data []byte
	pos  int
}

// NewCursor returns a Cursor positioned at the start of data.
func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Read returns the next n bytes and advances past them. The returned slice
// aliases the input.
func (c *Cursor) Read(n int) ([]byte, error) {
	if n < 0 || n > len(c.data)-c.pos {
		return nil, errTruncated
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// ReadByte returns the next byte.
func (c *Cursor) ReadByte() (byte, error) {
	if c.pos >= len(c.data) {
		return 0, errTruncated
	}
	b := c.data[c.pos]
	c.pos++
	return b, nil
}

// Skip advances n bytes without returning them.
func (c *Cursor) Skip(n int) error {
	if n < 0 || n > len(c.data)-c.pos {
		return errTruncated
	}
	c.pos += n
	return nil
}

// Pos returns the current offset.
func (c *Cursor) Pos() int { return c.pos }

// Len returns the number of unread bytes.
func (c *Cursor) Len() int { return len(c.data) - c.pos }
