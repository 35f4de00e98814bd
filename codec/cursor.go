// Copyright (c) LiteMQ Contributors
// SPDX-License-Identifier: Apache-2.0

package codec

// Cursor is a position tracked over a caller-owned byte range. Every
// operation checks remaining capacity before touching the buffer and
// advances the position only on success. On failure the position stays at
// the point of failure; callers must not assume rollback.
type Cursor struct {
	buf []byte
	pos int
}

// NewCursor returns a cursor over buf starting at position zero.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Pos returns the current position within the buffer.
func (c *Cursor) Pos() int {
	return c.pos
}

// Len returns the number of bytes remaining between the position and the
// end of the range.
func (c *Cursor) Len() int {
	return len(c.buf) - c.pos
}

// ReadByte reads a single byte. On failure it returns zero, not garbage.
func (c *Cursor) ReadByte() (byte, error) {
	if c.pos >= len(c.buf) {
		return 0, ErrBufferTooShort
	}
	b := c.buf[c.pos]
	c.pos++
	return b, nil
}

// WriteByte writes a single byte.
func (c *Cursor) WriteByte(b byte) error {
	if c.pos >= len(c.buf) {
		return ErrBufferTooShort
	}
	c.buf[c.pos] = b
	c.pos++
	return nil
}

// ReadData returns a view of the next n bytes without copying. A zero
// length request succeeds trivially and yields a nil view. The transfer is
// all-or-nothing; a short buffer fails without consuming anything.
func (c *Cursor) ReadData(n int) (View, error) {
	if n == 0 {
		return nil, nil
	}
	if n > c.Len() {
		return nil, ErrBufferTooShort
	}
	v := View(c.buf[c.pos : c.pos+n])
	c.pos += n
	return v, nil
}

// WriteData copies p into the buffer. A zero length write succeeds
// trivially; a short buffer fails without a partial transfer.
func (c *Cursor) WriteData(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	if len(p) > c.Len() {
		return ErrBufferTooShort
	}
	copy(c.buf[c.pos:], p)
	c.pos += len(p)
	return nil
}

// ReadNum reads a big-endian 16-bit integer.
func (c *Cursor) ReadNum() (uint16, error) {
	if c.Len() < 2 {
		return 0, ErrBufferTooShort
	}
	n := uint16(c.buf[c.pos])<<8 | uint16(c.buf[c.pos+1])
	c.pos += 2
	return n, nil
}

// WriteNum writes a big-endian 16-bit integer.
func (c *Cursor) WriteNum(n uint16) error {
	if c.Len() < 2 {
		return ErrBufferTooShort
	}
	c.buf[c.pos] = byte(n >> 8)
	c.buf[c.pos+1] = byte(n)
	c.pos += 2
	return nil
}

// ReadString reads a 16-bit length prefix followed by that many raw bytes.
// The returned view aliases the cursor's buffer; no copy is made.
func (c *Cursor) ReadString() (View, error) {
	n, err := c.ReadNum()
	if err != nil {
		return nil, err
	}
	return c.ReadData(int(n))
}

// WriteString writes s as a 16-bit length prefix followed by its bytes.
// The bytes are copied straight out of the string; no conversion allocates.
func (c *Cursor) WriteString(s string) error {
	if err := c.WriteNum(uint16(len(s))); err != nil {
		return err
	}
	if len(s) == 0 {
		return nil
	}
	if len(s) > c.Len() {
		return ErrBufferTooShort
	}
	copy(c.buf[c.pos:], s)
	c.pos += len(s)
	return nil
}

// WriteView writes v as a 16-bit length prefix followed by its bytes.
func (c *Cursor) WriteView(v View) error {
	if err := c.WriteNum(uint16(len(v))); err != nil {
		return err
	}
	return c.WriteData(v)
}
