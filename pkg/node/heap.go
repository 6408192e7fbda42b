package node

import (
	"dynpage/pkg/dynsize"
	"dynpage/pkg/gsp"
	"dynpage/pkg/page"
)

// placeCursorAtActualKey seeks cursor to the offset-array slot for pos,
// reads the stored blob offset, range-checks it against the page, and
// leaves the cursor positioned at the start of the blob itself.
func (n *Node[K, V]) placeCursorAtActualKey(cursor *page.Cursor, pos int, t Type) {
	cursor.SetOffset(n.keyPosOffset(pos, t))
	keyOffset := dynsize.ReadKeyOffset(cursor)
	if keyOffset < 0 || keyOffset > n.pageSize {
		cursor.SetCursorException(errKeyOffsetOutOfRange)
		return
	}
	cursor.SetOffset(keyOffset)
}

// KeyAt reads the key stored at logical position pos. For leaves it skips
// past the value-size word before delegating to the key codec; for
// internal nodes the blob holds only the key.
func (n *Node[K, V]) KeyAt(cursor *page.Cursor, pos int, t Type) K {
	n.placeCursorAtActualKey(cursor, pos, t)

	keySize := dynsize.ReadKeySize(cursor)
	if keySize > n.keyValueSizeCap || keySize < 0 {
		cursor.SetCursorException(errSizeExceedsCap)
	}
	if t == Leaf {
		cursor.SetOffset(cursor.Offset() + dynsize.SizeWordBytes)
	}
	return n.layout.ReadKey(cursor, keySize)
}

// ValueAt reads the value stored at logical leaf position pos.
func (n *Node[K, V]) ValueAt(cursor *page.Cursor, pos int) V {
	n.placeCursorAtActualKey(cursor, pos, Leaf)

	keySize := dynsize.ReadKeySize(cursor)
	valueSize := dynsize.ReadValueSize(cursor)
	if valueSize > n.keyValueSizeCap {
		cursor.SetCursorException(errSizeExceedsCap)
	}
	cursor.SetOffset(cursor.Offset() + keySize)
	return n.layout.ReadValue(cursor, valueSize)
}

// SetValueAt overwrites the value at logical leaf position pos in place,
// returning true on success. It returns false without mutating the page
// when the new value's serialized length differs from the stored one; the
// tree layer must then fall back to a remove+insert cycle.
//
// Note: the stored key size is read here with dynsize.ReadKeyOffset (the
// offset-width reader) rather than dynsize.ReadKeySize, mirroring a quirk
// present in the implementation this layout is grounded on. The two
// readers share a width in this layout so behavior is unaffected, but the
// quirk is preserved rather than silently fixed — see DESIGN.md Open
// Question #1.
func (n *Node[K, V]) SetValueAt(cursor *page.Cursor, value V, pos int) bool {
	n.placeCursorAtActualKey(cursor, pos, Leaf)

	keySize := dynsize.ReadKeyOffset(cursor)
	oldValueSize := dynsize.ReadValueSize(cursor)
	newValueSize := n.layout.ValueSize(value)
	if oldValueSize != newValueSize {
		return false
	}
	cursor.SetOffset(cursor.Offset() + keySize)
	n.layout.WriteValue(cursor, value)
	return true
}

// ChildAt reads the generation-safe child pointer to the left of the key at
// logical position pos in an internal node's offset-array interleave.
func (n *Node[K, V]) ChildAt(cursor *page.Cursor, pos int, stableGeneration, unstableGeneration uint64) uint64 {
	cursor.SetOffset(n.childOffset(pos))
	return gsp.ReadChild(cursor, stableGeneration, unstableGeneration, pos)
}

// SetChildAt overwrites the child pointer to the left of the key at
// logical position pos.
func (n *Node[K, V]) SetChildAt(cursor *page.Cursor, child uint64, pos int, unstableGeneration uint64) {
	cursor.SetOffset(n.childOffset(pos))
	gsp.WriteChild(cursor, child, unstableGeneration)
}
