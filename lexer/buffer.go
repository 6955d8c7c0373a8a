package lexer

import "io"

// Buffer holds a stretch of input bytes. Buffers chain to support
// streaming: the grapheme reader follows next when a cluster straddles
// the end of one buffer, and the lexing core advances to next when a
// buffer is exhausted. A buffer flagged EOF accepts no further appends.
type Buffer struct {
	data []byte
	eof  bool
	next *Buffer
	prev *Buffer
}

// NewBuffer wraps a byte slice as a complete input.
func NewBuffer(b []byte) *Buffer {
	return &Buffer{data: b, eof: true}
}

// NewStringBuffer wraps a string as a complete input.
func NewStringBuffer(s string) *Buffer {
	return NewBuffer([]byte(s))
}

// NewStreamBuffer returns an empty buffer awaiting Append calls.
func NewStreamBuffer() *Buffer {
	return &Buffer{}
}

// NewReaderBuffer reads r to completion into a single EOF buffer.
func NewReaderBuffer(r io.Reader) (*Buffer, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, Errorf(CodeFileRead, NewLocation(), "read: %s", err)
	}
	return NewBuffer(b), nil
}

// Append extends the buffer with more input bytes.
func (b *Buffer) Append(p []byte) error {
	if b.eof {
		return Errorf(CodeChainInsert, NewLocation(), "append to EOF buffer")
	}
	b.data = append(b.data, p...)
	return nil
}

// Chain links a successor buffer holding the bytes that follow this
// buffer's content.
func (b *Buffer) Chain(next *Buffer) error {
	if b.next != nil {
		return Errorf(CodeChainInsert, NewLocation(), "buffer already chained")
	}
	b.next = next
	next.prev = b
	return nil
}

// SetEOF marks that no further input will arrive.
func (b *Buffer) SetEOF() { b.eof = true }

// EOF reports whether the buffer accepts no further appends.
func (b *Buffer) EOF() bool { return b.eof }

// Written returns the number of bytes available in this buffer.
func (b *Buffer) Written() int { return len(b.data) }

// Bytes returns the buffer's content.
func (b *Buffer) Bytes() []byte { return b.data }

// Next returns the chained successor, if any.
func (b *Buffer) Next() *Buffer { return b.next }

// last follows the chain to its final buffer.
func (b *Buffer) last() *Buffer {
	for b.next != nil {
		b = b.next
	}
	return b
}

// atEOF reports whether the chain as a whole can still grow.
func (b *Buffer) atEOF() bool { return b.last().eof }

// cursor is a read position within a buffer chain.
type cursor struct {
	buf *Buffer
	off int
}

// peek returns the byte i positions ahead of the cursor, following the
// chain, without advancing.
func (c cursor) peek(i int) (byte, bool) {
	buf, off := c.buf, c.off+i
	for buf != nil {
		if off < len(buf.data) {
			return buf.data[off], true
		}
		off -= len(buf.data)
		buf = buf.next
	}
	return 0, false
}

// take advances the cursor n bytes, following the chain, and returns
// the bytes consumed. The bytes are only copied when the span straddles
// a buffer boundary.
func (c *cursor) take(n int) []byte {
	if c.off+n <= len(c.buf.data) {
		out := c.buf.data[c.off : c.off+n]
		c.off += n
		return out
	}
	out := make([]byte, 0, n)
	for n > 0 {
		avail := len(c.buf.data) - c.off
		if avail > n {
			avail = n
		}
		out = append(out, c.buf.data[c.off:c.off+avail]...)
		c.off += avail
		n -= avail
		if n > 0 {
			c.buf = c.buf.next
			c.off = 0
		}
	}
	return out
}

// rest returns all bytes from the cursor to the end of the chain. The
// result aliases the buffer when the tail lies in a single buffer.
func (c cursor) rest() []byte {
	if c.buf.next == nil {
		return c.buf.data[c.off:]
	}
	out := append([]byte{}, c.buf.data[c.off:]...)
	for buf := c.buf.next; buf != nil; buf = buf.next {
		out = append(out, buf.data...)
	}
	return out
}

// exhausted reports whether no byte is available at the cursor.
func (c cursor) exhausted() bool {
	_, ok := c.peek(0)
	return !ok
}
