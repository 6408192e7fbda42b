// Package dynsize encodes the size and offset words used by the dynamic-size
// node layout: a key-size word with a tombstone bit in its high bit, a
// plain value-size word, and a plain page-offset word. Widths are
// compile-time constants and form the on-page format's versioning surface.
//
// Grounded on the DynamicSizeUtil collaborator referenced by Neo4j's
// TreeNodeDynamicSize.java.
package dynsize

import "dynpage/pkg/page"

const (
	// SizeWordBytes is the width of the keySize, valueSize, and deadSpace
	// words.
	SizeWordBytes = 2
	// OffsetWordBytes is the width of allocOffset and offset-array slots.
	// The layout requires this to equal the size-word width.
	OffsetWordBytes = 2

	// tombstoneBit is the high bit of the 16-bit keySize word.
	tombstoneBit = uint16(1) << 15
	// MaxSize is the largest representable size once the tombstone bit is
	// reserved.
	MaxSize = int(tombstoneBit - 1)
)

// PutKeySize writes a plain (non-tombstoned) key-size word at the cursor's
// current offset.
func PutKeySize(cursor *page.Cursor, size int) {
	cursor.PutUint16(uint16(size))
}

// ReadKeySize reads the key-size word, including any tombstone bit still
// set. Callers that need the bit stripped use StripTombstone.
func ReadKeySize(cursor *page.Cursor) int {
	return int(cursor.GetUint16())
}

// PutValueSize writes the value-size word.
func PutValueSize(cursor *page.Cursor, size int) {
	cursor.PutUint16(uint16(size))
}

// ReadValueSize reads the value-size word.
func ReadValueSize(cursor *page.Cursor) int {
	return int(cursor.GetUint16())
}

// PutKeyOffset writes a page-offset word (used for allocOffset and
// offset-array slots, which share the same width).
func PutKeyOffset(cursor *page.Cursor, offset int) {
	cursor.PutUint16(uint16(offset))
}

// ReadKeyOffset reads a page-offset word.
func ReadKeyOffset(cursor *page.Cursor) int {
	return int(cursor.GetUint16())
}

// PutTombstone sets the tombstone bit on the key-size word currently at the
// cursor, preserving the size bits already written there.
func PutTombstone(cursor *page.Cursor) {
	off := cursor.Offset()
	existing := cursor.GetUint16()
	cursor.SetOffset(off)
	cursor.PutUint16(existing | tombstoneBit)
}

// HasTombstone reports whether the tombstone bit is set in a raw key-size
// word.
func HasTombstone(rawKeySize int) bool {
	return rawKeySize&int(tombstoneBit) != 0
}

// StripTombstone clears the tombstone bit, returning the plain size.
func StripTombstone(rawKeySize int) int {
	return rawKeySize &^ int(tombstoneBit)
}
