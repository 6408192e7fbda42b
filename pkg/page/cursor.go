// Package page provides the byte-addressable cursor abstraction that sits
// between the node layout engine and a paged-buffer subsystem.
//
// A Cursor wraps exactly one page's worth of bytes. Every fixed-width
// get/put and every ReadBytes/WriteBytes advances the cursor's offset by
// the number of bytes touched — the same stream-style semantics as
// Neo4j's PageCursor, where callers skip fields they don't want by
// calling progressCursor explicitly. It never panics on data-driven
// errors (a corrupt offset, an oversized size word) — it records them as
// a sticky exception instead, mirroring the optimistic-read protocol of
// a concurrent page cache: a reader may transiently observe torn data
// under a concurrent writer and is expected to check the exception after
// the operation rather than have it thrown mid-read.
package page

import (
	"encoding/binary"
	"fmt"
)

// Cursor is an exclusive, byte-addressable view over one page.
type Cursor struct {
	data   []byte
	offset int
	err    error
}

// NewCursor wraps data as a page cursor. data is owned by the caller for
// the duration of the cursor's use; Cursor never copies it.
func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Size returns the total byte count of the page.
func (c *Cursor) Size() int {
	return len(c.data)
}

// Offset returns the current seek position.
func (c *Cursor) Offset() int {
	return c.offset
}

// SetOffset seeks within the page.
func (c *Cursor) SetOffset(off int) {
	c.offset = off
}

// Bytes returns the raw backing slice for callers that need direct slice
// access; the key/value layout and the defragmenter go through
// ReadBytes/WriteBytes and CopyTo instead.
func (c *Cursor) Bytes() []byte {
	return c.data
}

// SetCursorException records a sticky error. Subsequent reads through this
// cursor remain well-defined (no panics) but CheckCursorException will
// report the failure once the caller is ready to look.
func (c *Cursor) SetCursorException(err error) {
	if c.err == nil {
		c.err = err
	}
}

// CheckCursorException returns the first sticky error recorded on this
// cursor, or nil.
func (c *Cursor) CheckCursorException() error {
	return c.err
}

// ClearCursorException resets the sticky error state. The tree layer does
// not call it: it surfaces a recorded exception as an error and does not
// retry.
func (c *Cursor) ClearCursorException() {
	c.err = nil
}

func (c *Cursor) checkRange(off, n int) bool {
	if off < 0 || n < 0 || off+n > len(c.data) {
		c.SetCursorException(fmt.Errorf("page: out of range access at offset %d, length %d, page size %d", off, n, len(c.data)))
		return false
	}
	return true
}

// GetUint16 reads a little-endian uint16 at the current offset and advances
// past it. Returns 0 (and sets the cursor exception) on an out-of-range
// read, leaving the offset unchanged.
func (c *Cursor) GetUint16() uint16 {
	if !c.checkRange(c.offset, 2) {
		return 0
	}
	v := binary.LittleEndian.Uint16(c.data[c.offset:])
	c.offset += 2
	return v
}

// PutUint16 writes v as little-endian at the current offset and advances
// past it.
func (c *Cursor) PutUint16(v uint16) {
	if !c.checkRange(c.offset, 2) {
		return
	}
	binary.LittleEndian.PutUint16(c.data[c.offset:], v)
	c.offset += 2
}

// GetUint32 reads a little-endian uint32 at the current offset and advances
// past it.
func (c *Cursor) GetUint32() uint32 {
	if !c.checkRange(c.offset, 4) {
		return 0
	}
	v := binary.LittleEndian.Uint32(c.data[c.offset:])
	c.offset += 4
	return v
}

// PutUint32 writes v as little-endian at the current offset and advances
// past it.
func (c *Cursor) PutUint32(v uint32) {
	if !c.checkRange(c.offset, 4) {
		return
	}
	binary.LittleEndian.PutUint32(c.data[c.offset:], v)
	c.offset += 4
}

// GetUint64 reads a little-endian uint64 at the current offset and advances
// past it.
func (c *Cursor) GetUint64() uint64 {
	if !c.checkRange(c.offset, 8) {
		return 0
	}
	v := binary.LittleEndian.Uint64(c.data[c.offset:])
	c.offset += 8
	return v
}

// PutUint64 writes v as little-endian at the current offset and advances
// past it.
func (c *Cursor) PutUint64(v uint64) {
	if !c.checkRange(c.offset, 8) {
		return
	}
	binary.LittleEndian.PutUint64(c.data[c.offset:], v)
	c.offset += 8
}

// ReadBytes copies n bytes starting at the current offset into dst and
// advances past them.
func (c *Cursor) ReadBytes(dst []byte, n int) {
	if !c.checkRange(c.offset, n) {
		return
	}
	copy(dst, c.data[c.offset:c.offset+n])
	c.offset += n
}

// WriteBytes writes src at the current offset and advances past it.
func (c *Cursor) WriteBytes(src []byte) {
	if !c.checkRange(c.offset, len(src)) {
		return
	}
	copy(c.data[c.offset:c.offset+len(src)], src)
	c.offset += len(src)
}

// CopyTo moves length bytes from srcOffset in c to dstOffset in dst. It
// behaves like memmove for overlapping ranges within the same page, which
// is exactly what the defragmenter's upward-sliding compaction relies on.
// It does not affect either cursor's current Offset.
func (c *Cursor) CopyTo(srcOffset int, dst *Cursor, dstOffset, length int) {
	if length == 0 {
		return
	}
	if !c.checkRange(srcOffset, length) || !dst.checkRange(dstOffset, length) {
		return
	}
	// Go's builtin copy is already memmove-safe for overlapping slices,
	// which covers the same-page case used by the defragmenter.
	copy(dst.data[dstOffset:dstOffset+length], c.data[srcOffset:srcOffset+length])
}
