package archive

import (
	"fmt"
	"slices"
)

// Buffer is a growable in-memory Storage with a separate read cursor.
// The zero value is an empty buffer ready to use.
type Buffer struct {
	data []byte
	off  int
}

// NewBuffer returns an empty Buffer with the given initial capacity.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{data: make([]byte, 0, capacity)}
}

// NewBufferBytes returns a Buffer whose unread contents are data.
// The Buffer takes ownership of data.
func NewBufferBytes(data []byte) *Buffer {
	return &Buffer{data: data}
}

// Write appends p to the buffer.
func (b *Buffer) Write(p []byte) int {
	b.data = append(b.data, p...)
	return len(p)
}

// Read consumes exactly len(p) bytes. Reading past the written data panics
// with an error wrapping ErrShortBuffer.
func (b *Buffer) Read(p []byte) {
	if len(b.data)-b.off < len(p) {
		panic(fmt.Errorf("%w: need %d bytes, %d unread", ErrShortBuffer, len(p), len(b.data)-b.off))
	}
	b.off += copy(p, b.data[b.off:])
}

// Reserve grows the buffer's capacity to hold at least n more bytes.
func (b *Buffer) Reserve(n int) {
	if n > 0 {
		b.data = slices.Grow(b.data, n)
	}
}

// Bytes returns the unread portion of the buffer.
// The slice aliases the buffer until the next Write.
func (b *Buffer) Bytes() []byte {
	return b.data[b.off:]
}

// Len returns the number of unread bytes.
func (b *Buffer) Len() int {
	return len(b.data) - b.off
}

// Reset discards all contents, keeping the allocated capacity.
func (b *Buffer) Reset() {
	b.data = b.data[:0]
	b.off = 0
}
