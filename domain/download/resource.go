// Package download provides the domain types shared by partial download
// responders and the resources they position.
package download

import (
	"github.com/helixml/byteserve/domain/byterange"
)

// Resource is a readable byte source of known length that can be positioned
// at a requested range. Implementations are not safe for concurrent use.
type Resource interface {
	// Length returns the total size of the resource in bytes.
	Length() int64
	// CurrentRange returns the range the resource is positioned for.
	CurrentRange() byterange.ByteRange
	// SetCurrentRange associates a range with the resource.
	SetCurrentRange(r byterange.ByteRange)
	// Skip advances the read position by up to n bytes and returns the
	// number of bytes actually skipped.
	Skip(n int64) (int64, error)
}

// Cursor tracks the position of a resource of fixed length. It implements
// Resource and is meant to be embedded by resources that do real I/O.
type Cursor struct {
	length   int64
	position int64
	current  byterange.ByteRange
}

// NewCursor creates a Cursor at position zero.
func NewCursor(length int64) *Cursor {
	return &Cursor{length: length}
}

// Length returns the total size.
func (c *Cursor) Length() int64 { return c.length }

// Position returns the current read position.
func (c *Cursor) Position() int64 { return c.position }

// CurrentRange returns the range set by SetCurrentRange.
func (c *Cursor) CurrentRange() byterange.ByteRange { return c.current }

// SetCurrentRange records r as the current range.
func (c *Cursor) SetCurrentRange(r byterange.ByteRange) { c.current = r }

// Skip moves the position forward, never past the end.
func (c *Cursor) Skip(n int64) (int64, error) {
	if n <= 0 {
		return 0, nil
	}
	remaining := c.length - c.position
	if n > remaining {
		n = remaining
	}
	c.position += n
	return n, nil
}

// Advance records n bytes as consumed by a read.
func (c *Cursor) Advance(n int64) {
	c.position += n
}
